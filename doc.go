// Package auth provides token based authentication primitives (JWT issuance
// and validation, refresh credential rotation, a Bun backed user directory,
// HTTP helpers) for services that delegate identity to an external provider.
//
// Login flow:
//   - An IdentityResolver exchanges a provider issued credential for the
//     remote identity it belongs to. The provider/kakao package ships the
//     Kakao implementation; any provider can be plugged in through the same
//     interface.
//   - Auther maps the remote identity onto a directory record (creating it on
//     first sight), issues a signed access token, and installs a fresh single
//     use refresh credential. Every successful login or refresh replaces the
//     stored refresh credential, so at most one is live per user.
//
// Request gating:
//   - middleware/tokengate rejects any request outside the exempt list that
//     does not carry a valid bearer access token, and exposes the validated
//     claims through router locals and the standard context (see ctx.go).
//
// Persistence:
//   - Users is a go-repository-bun repository over the users table. Refresh
//     rotation on the refresh path is a compare-and-swap on the stored value,
//     which keeps the credential single use under concurrent requests.
package auth
