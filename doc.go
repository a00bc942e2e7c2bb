// Package blog is a small blogging backend: users sign up, log in with a
// bearer token and manage the posts they wrote.
//
// Authentication:
//   - Gate owns signup, login and identity resolution. Resolution walks a
//     token through decode, subject lookup and the active check, and any
//     failure collapses to a small set of errors (ErrNoCredentials,
//     ErrInvalidCredentials, ErrInactiveAccount). Expired and forged tokens
//     look the same to the client.
//   - TokenService signs HMAC JWTs from an immutable TokenConfig. The subject
//     is the user email.
//   - Login never reveals whether the email or the password was wrong.
//
// Persistence:
//   - Users and Posts are bun repositories. Writes that need a read first run
//     inside RepositoryManager.RunInTx.
//
// HTTP:
//   - AuthController serves /signup, /login and /me. The identity middleware
//     lives in middleware/authware and hands the caller to handlers through
//     WithUser. Post routes live in the posts package.
//
// Activity sinks:
//   - ActivitySink receives signup and login events. Sinks run best-effort
//     (errors are logged) so they never block authentication.
package blog
