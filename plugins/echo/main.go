// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tsunami Contributors

// Package main implements an echo plugin for Tsunami. It logs every
// trigger value the host dispatches to it.
//
// Build as a shared object with the same toolchain as the host:
//
//	go build -buildmode=plugin -o echo.so ./plugins/echo
//
// The export surface in zz_exports.go is generated:
//
//	go run ./cmd/gen-exports -constructor NewEchoPlugin -output plugins/echo/zz_exports.go
package main

import (
	"log/slog"

	tsunami "github.com/tsunami-stream/tsunami/pkg/plugin"
)

// EchoPlugin logs trigger values.
type EchoPlugin struct {
	tsunami.Base
}

// NewEchoPlugin constructs a fresh plugin instance.
func NewEchoPlugin() tsunami.Plugin {
	return &EchoPlugin{}
}

// Name implements tsunami.Plugin.
func (p *EchoPlugin) Name() string { return "echo" }

// OnLoad implements tsunami.Plugin.
func (p *EchoPlugin) OnLoad() error {
	slog.Info("echo plugin loaded")
	return nil
}

// Trigger implements tsunami.Plugin.
func (p *EchoPlugin) Trigger(value uint64) error {
	slog.Info("echo trigger", "value", value)
	return nil
}

// OnUnload implements tsunami.Plugin.
func (p *EchoPlugin) OnUnload() error {
	slog.Info("echo plugin unloaded")
	return nil
}

func main() {}
