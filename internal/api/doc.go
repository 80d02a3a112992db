// Package api exposes the HTTP surface of the service: request decoding
// and validation, error-to-status mapping, and the sanitized response
// shapes. Authorization decisions live in the service layer; handlers
// only translate between HTTP and service calls.
package api
