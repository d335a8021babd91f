// Package fetch retrieves a page and materializes it as an HTML tree whose
// links are all absolute.
//
// # Fetching
//
// Fetch issues a GET request with the configured *http.Client, which follows
// redirects. The response body is decoded to UTF-8 (from the Content-Type
// label, a BOM, a <meta> declaration or, when enabled, statistical detection
// via chardet) and parsed with golang.org/x/net/html.
//
// # Absolutization
//
// The final, post-redirect URL is the document base. A <base href> element,
// if present, is resolved against it, becomes the base, and is removed. Then
// every link-bearing attribute, every srcset candidate and every url(...) in
// inline styles is resolved with the WHATWG URL parser. References that do
// not parse are left unchanged.
//
// # Status codes
//
// Non-2xx responses are not errors. Document.StatusCode carries the code and
// Document.CheckStatus turns it into an error for spiders that care.
//
// # Optional behavior
//
//   - WithRobots consults robots.txt before fetching and fails with
//     ErrDisallowed for disallowed URLs.
//   - WithBrowser renders pages in headless Chrome instead of issuing a
//     plain GET, for sites that build their content with JavaScript.
package fetch
