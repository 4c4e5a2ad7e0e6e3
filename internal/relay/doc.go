// Package relay is the HTTP client for the relay address REST API.
//
// The API exposes four operations on relay addresses:
//
//	GET    relayaddresses/        list every alias
//	POST   relayaddresses/        create an alias from an empty body
//	PATCH  relayaddresses/{id}/   partial update, returns the merged record
//	DELETE relayaddresses/{id}/   remove an alias
//
// Every request carries "Authorization: Token <value>" and an X-Request-ID.
// Any non-2xx response or transport failure is returned as *RemoteError.
//
// # Dry-run
//
// A client built with DryRun set never sends a write. Update logs the patch
// and returns the current server record unchanged, Delete and Create log and
// return ErrDryRun so callers leave their local view untouched.
package relay
