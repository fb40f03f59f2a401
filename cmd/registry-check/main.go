// registry-check validates a tool registry document without starting
// the daemon. It parses the file, compiles every schema, and confirms
// the built-in pattern library can bind to it. Exit status is non-zero
// on any problem, so it slots into CI.
package main

import (
	"flag"
	"fmt"
	"os"

	"eda-copilot/internal/common/logger"
	"eda-copilot/internal/intent"
	"eda-copilot/internal/registry"
)

func main() {
	path := flag.String("file", "", "registry document to check (default: the embedded registry)")
	flag.Parse()

	var (
		reg *registry.Registry
		err error
	)
	if *path != "" {
		reg, err = registry.Load(*path)
	} else {
		reg, err = registry.Default()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "registry-check: %v\n", err)
		os.Exit(1)
	}

	if _, err := intent.New(reg, logger.NewNoOpLogger()); err != nil {
		fmt.Fprintf(os.Stderr, "registry-check: pattern binding: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ok: %d tools (registry version %s)\n", reg.Len(), reg.Version)
	for _, ts := range reg.Specs() {
		fmt.Printf("  %-24s %-16s required=%v\n", ts.Name, ts.Category, ts.Required())
	}
}
