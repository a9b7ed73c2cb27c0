// Package deezer is a small helper for the Deezer Connect OAuth flow.
//
// It builds the login URL an end user is redirected to, and exchanges the
// authorization code Deezer sends back for an access token. Nothing is
// stored, refreshed, retried or logged: every error is returned to the
// caller as-is.
package deezer
