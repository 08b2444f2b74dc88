// Package connectivity decides whether the device has real internet access.
//
// A Checker issues one GET (redirects followed) to a highly available
// endpoint with a short timeout and maps the outcome:
//
//	HTTP 200          -> Connected
//	any other status  -> Limited
//	transport error   -> Disconnected (error text kept as the reason)
//
// Check never fails and never retries; polling belongs to the login loop.
package connectivity
