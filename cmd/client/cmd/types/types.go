// Package types holds the context keys shared between the command
// packages.
package types

type contextKey string

// ClientAppKey carries the *client.App through the command context.
const ClientAppKey contextKey = "app"
