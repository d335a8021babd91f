// Package transport builds the HTTP clients spiders fetch through.
//
// A client either dials directly or routes every connection through a
// SOCKS5 proxy such as a local Tor daemon. EmbeddedTor starts a private Tor
// daemon with tornago for users who do not run their own.
//
// Clients follow at most MaxRedirects redirects, keep cookies in a jar, and
// can inject a per-site Cookie header and extra headers into every request.
package transport
