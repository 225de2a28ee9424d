// Package main is the entry point for the chatdesk CLI.
package main

import (
	"fmt"
	"os"

	"github.com/lqhuy/chatdesk/internal/console"
)

// Version information (set by goreleaser)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var _ = []string{commit, date}

func main() {
	if err := console.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
