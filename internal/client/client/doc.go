// Package client is the REST adapter of the ExpertConnect API.
//
// A Client sends single-attempt JSON requests relative to a base URL. It adds
// "Authorization: Bearer <token>" whenever its Credentials return a token,
// tags each request with an X-Request-ID and reports it to an optional
// Recorder. There is no retry and no caching.
//
// Non-2xx responses are returned as *APIError, which unwraps to the sentinel
// for its status:
//
//	401        common.ErrAuthentication
//	403        common.ErrAuthorization
//	404        common.ErrNotFound
//	400, 422   common.ErrValidation (via *common.ValidationError)
//	5xx        common.ErrServer
//
// Requests that never completed wrap common.ErrNetwork together with the
// cause, so context.Canceled stays matchable.
//
// API groups the endpoint namespaces (Auth, Users, Categories, Credits,
// Meetings, Messaging, Admin) as interfaces for the services to depend on.
//
// InitDatabase and RunMigrations bootstrap the local SQLite database.
package client
