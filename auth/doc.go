// Package auth groups the credential and token packages:
//
//   - auth/password: argon2id, argon2i and bcrypt verification, new hashes,
//     and the bounded CPU pool that runs them
//   - auth/jwt: HMAC-signed access and refresh tokens with second
//     granularity and no expiry leeway
//   - auth/authctx: verified access claims on the request context
//
// All packages follow the same conventions: Config structs with
// ApplyDefaults()/Validate(), constructor functions, and mapstructure tags
// for config file loading.
package auth
