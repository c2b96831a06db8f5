//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the invitekit project using Mage.
//
// Usage:
//
//	mage build          Compile the invitekit binary to bin/
//	mage test:all       Run all tests
//	mage test:race      Run all tests with the race detector
//	mage test:cover     Run all tests and write coverage.out
//	mage lint           Run golangci-lint
//	mage vet            Run go vet
//	mage clean          Remove build artifacts
//	mage install        Install invitekit to GOPATH/bin
//	mage stats          Print Go LOC and documentation word counts
package main

const (
	binGo      = "go"
	binaryName = "invitekit"
	binaryDir  = "bin"
	cmdDir     = "./cmd/invitekit"
)

// Default is the target run by a bare "mage".
var Default = Build
