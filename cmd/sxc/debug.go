package main

import (
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/ha1tch/sxc/pkg/compiler"
)

// dumpManager prints the full IR arena to stderr for -d/-D and the ast
// subcommand. It tolerates a nil Manager so it can be called unconditionally
// even when Compile failed before building one.
func dumpManager(m *compiler.Manager) {
	if m == nil {
		return
	}
	spew.Fdump(os.Stderr, m)
}
