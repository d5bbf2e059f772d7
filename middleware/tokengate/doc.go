// Package tokengate implements the request authentication stage of the HTTP
// pipeline. Every non exempt request must carry a bearer access token; the
// gate validates it through a TokenValidator, attaches the resolved claims to
// the router locals and (optionally) the standard context, and rejects the
// request with a 401 envelope before routing otherwise.
//
// Exemptions are an allow list of exact paths and "*" suffixed prefixes,
// plus an unconditional bypass for OPTIONS pre-flight requests.
package tokengate
