// Package handlers provides ready-made error handlers for the riqwest
// response chain.
//
// Each constructor returns an http.HandlerFactory; register it with
// Registry.AddErrorHandler. A handler is built fresh for every response.
package handlers
