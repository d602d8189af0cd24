// Package config reads the runtime configuration from the environment:
// the Postgres connection for each supported client library, and the
// HTTP server settings.
package config
