// Package env holds build metadata, set at link time with
//
//	-ldflags "-X github.com/ostafen/giflet/internal/env.Version=..."
package env

const AppName = "giflet"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)
