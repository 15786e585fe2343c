// PostPredict - Social Media Post Performance Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/postpredict

/*
Package auth provides password hashing, JWT issuance and validation, and a
keyed rate limiter.

Passwords are hashed with bcrypt at cost 12. Tokens are HS256 and carry the
user ID and email; the HTTP layer validates them and stores the claims in
the request context with ContextWithClaims.

RateLimiter keeps one token bucket per key (the API keys training requests
by user ID) and Cleanup drops buckets idle for more than an hour.
*/
package auth
