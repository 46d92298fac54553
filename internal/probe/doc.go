// Package probe issues the HTTP requests that verify tracking-pixel URLs.
//
// A Prober answers a single question for one URL: which status code did the
// server return, or why could no response be obtained. Classification of the
// answer into success, HTTP failure or timeout is left to the model package.
//
// HTTPProber is the production implementation. It can route requests through
// a SOCKS5 proxy, inject fixed headers into every request, and limit how many
// redirects are followed. Response bodies are read up to a small limit and
// discarded so connections can be reused.
package probe
