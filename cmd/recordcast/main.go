// Package main is the entry point for recordcast.
//
// recordcast builds records declared in a YAML schema file from input files
// and environment variables:
//
//	recordcast cast  --schema schemas.yaml --type Service --input service.yaml
//	recordcast order --schema schemas.yaml --type Service
//	recordcast diff  --schema schemas.yaml --type Service old.json new.json
//	recordcast import ./internal/config --struct Settings -o schemas.yaml
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
