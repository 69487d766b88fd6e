// Package output provides sinks for riqwest log records.
//
// Available sinks:
//   - Console: colored human-readable lines, all fields when verbose
//   - JSON: one JSON object per record
//   - Slog: forwards records to a log/slog logger
//
// Every sink implements the http.Logger interface and can be installed on a
// Registry with SetLogger.
package output
