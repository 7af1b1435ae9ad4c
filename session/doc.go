// Package session issues and refreshes session tokens.
//
// Service.Login resolves an identifier through a user.Store, verifies the
// password on the hashing pool and mints an access/refresh token pair.
// Service.Refresh turns a valid refresh token into a new access token
// with the same subject and role; refresh tokens are never rotated.
// No session state is kept on the server, so Logout has nothing to do
// beyond telling the caller to drop its tokens.
//
// Every failure is a single *errors.AppError from the closed taxonomy;
// storage and crypto causes are logged and never returned to clients.
package session
