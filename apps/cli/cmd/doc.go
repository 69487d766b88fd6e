// Package cmd implements the riqwest CLI commands using Cobra.
//
// Available commands:
//   - send: Send a request with an explicit method
//   - get, post, put, delete: Shorthands for send
//   - bench: Send the same request repeatedly and summarize latencies
//   - history: Show requests recorded with --history
//   - init: Create a .riqwest.yaml configuration file
//   - version: Show riqwest version information
//
// Request commands accept headers, payloads with {{...}} templates,
// response checks, and a watch mode that re-sends when the payload file changes.
package cmd
