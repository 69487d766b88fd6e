// Package http provides the riqwest request/response pipeline.
//
// A Client owns a host, a port, default headers and a middleware pipeline.
// Each request goes through the same steps:
//   - the route is rooted and the payload runs through the middleware
//   - GET and DELETE payloads become a query string
//   - BuildCall maps the request onto transport options
//   - the configured ResponseFactory dispatches over the Transport
//   - the error handler chain from the Registry inspects the Response
//
// Logging and error handlers live in a Registry, which is filled during
// initialization and may be frozen before requests are issued concurrently
// from several clients.
package http
