// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

// Command gen-exports generates the export shim for a shared-object plugin.
// The shim publishes the version handshake symbols and the plugin
// constructor; it must be compiled into the plugin's main package.
//
// Usage:
//
//	gen-exports -constructor NewEcho -output zz_exports.go
//	gen-exports -constructor echo.New -import example.com/echo -output zz_exports.go
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tsunami-stream/tsunami/pkg/plugin"
)

func main() {
	constructor := flag.String("constructor", "", "zero-argument plugin constructor, e.g. NewEcho or echo.New")
	importPath := flag.String("import", "", "package to import for the constructor (optional)")
	output := flag.String("output", "zz_exports.go", "output file")
	flag.Parse()

	d := plugin.Declare{
		Constructor: *constructor,
		Import:      *importPath,
	}

	src, err := d.RenderExports()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating exports: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*output, src, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %s\n", *output)
}
