// Package services implements the [Service] interface for the TIDAL REST API.
//
// # Session
//
// [NewTidalService] validates a [TidalConfig] (access token first, then user id) and seeds the
// session headers with Accept, Content-Type and the bearer Authorization header. No request is
// made during construction.
//
// # Requests
//
// Endpoint methods merge caller [Params] over per-endpoint defaults and append countryCode and
// locale. GET params travel in the query string; PUT/POST params form the body. Each call makes
// exactly one HTTP request using a copy of the session headers, so per-call headers such as the
// If-None-Match sent by [TidalService.AddTracksToPlaylist] never reach other requests.
//
// # Token Refresh
//
// [TidalService.Refresh] posts the refresh_token grant to auth.tidal.com and swaps the access
// token and Authorization header for every later call. Requests already in flight keep the token
// they were built with.
//
// # Error Handling
//
// Every failure is a [*TidalError] whose [ErrorKind] is one of:
//   - [KindAccessToken] : no access token at construction
//   - [KindOptions] : no user id at construction
//   - [KindMissingParameters] : a required argument was empty, no request made
//   - [KindTooManyTracks] : more than [MaxTracksPerAdd] track ids, no request made
//   - [KindRequest] : the transport failed or the API answered non-2xx (Status, SubStatus set)
//
// Use errors.Is with the matching sentinel ([ErrTidalRequest], ...) or errors.As to branch.
package services
