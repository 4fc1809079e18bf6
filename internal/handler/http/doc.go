// Package http implements the HTTP transport of the note authority.
//
// It exposes the /notes collection and the version endpoint. Cross-cutting
// concerns such as request tracing, access logging and response compression
// are handled here before requests are delegated to the service layer.
package http
