// Package auth signs and verifies the tenant cookie.
//
// Without a secret the customer_id cookie carries the raw tenant id. With
// auth.secret set, the cookie holds an HS256 token whose customer_id claim
// names the tenant.
package auth
