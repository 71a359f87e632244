// Package driving defines interfaces that external actors (GUI glue, CLI,
// HTTP and MCP servers) use to interact with core services. These are the
// "driving" ports in hexagonal architecture terminology.
//
// Implementations of these interfaces live in internal/core/services.
package driving
