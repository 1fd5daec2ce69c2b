// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It adapts the log submission and result endpoints
// to the analysis service and maps service errors to HTTP status codes.
package api
