// Package identity resolves the authenticated principal: user accounts
// with bcrypt-hashed passwords, HS256 access tokens, and a revocation
// blacklist keyed by the token's jti claim.
package identity
