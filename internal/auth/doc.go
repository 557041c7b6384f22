// Package auth implements the SafeVault credential and access-control
// subsystem.
//
// It provides:
//   - Argon2id password hashing (OWASP 2025 recommendation)
//   - A SQLite-backed credential store keyed by unique username
//   - Whitelist sanitization of fragments used in LIKE pattern searches
//   - An authenticator that collapses every login failure into a single
//     non-specific rejection (no username enumeration)
//   - A pure role-based access decision function
//   - JWT session artifact issuance from an authenticated Identity
//
// The package holds no mutable state outside the database handle: every
// store operation is parameterised, context-aware, and relies on the
// users unique constraint as its only concurrency control.
package auth
