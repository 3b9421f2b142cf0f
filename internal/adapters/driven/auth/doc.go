// Package auth provides the session-backed token provider used by the
// REST client.
package auth
