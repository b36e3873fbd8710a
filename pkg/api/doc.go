// Package api defines the wire types for the gatehouse HTTP API.
//
// The package has zero external dependencies and performs no I/O. It
// describes the user record served by the users routes, the success and
// failure envelopes every response is wrapped in, and the structured
// [APIError] that the transport layer maps to an HTTP status.
//
// Envelopes:
//   - success: {"success": true, "data": ...}
//   - failure: {"success": false, "error": "<message>"}
package api
