// Package httptransport provides an eliterpc.Transport that performs each call
// as a single HTTP exchange.
//
// Post methods send the encoded request as the body of an HTTP POST request.
// Get methods send an HTTP GET request addressed entirely by the protocol's
// locator suffix. Custom methods are not supported.
//
// Any response with a status code other than 200 OK is reported as an
// *eliterpc.HTTPStatusError and is never decoded.
package httptransport
