// Package html extracts readable text from saved web pages and HTML
// snapshots, dropping scripts, styles and markup and decoding entities.
package html
