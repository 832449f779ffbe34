// Package main is the entry point for the CRM auth service.
package main

import (
	"fmt"
	"os"

	"github.com/aussiebroadwan/crm/internal/auth/app"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if version != "dev" {
		app.BuildVersion = version
	}

	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
