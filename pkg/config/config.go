package config

import (
	"fmt"
	"os"

	"modernc.org/libqbe"
)

// Config carries the per-invocation compiler settings.
type Config struct {
	QbeTarget  string
	TargetArch string
	WordSize   int
	DumpIR     bool
	Verbose    bool
}

func NewConfig() *Config {
	return &Config{}
}

// SetTarget configures the compiler for a specific architecture and QBE target.
func (c *Config) SetTarget(goos, goarch, qbeTarget string) {
	if qbeTarget == "" {
		c.QbeTarget = libqbe.DefaultTarget(goos, goarch)
	} else {
		c.QbeTarget = qbeTarget
	}

	c.TargetArch = goarch

	switch c.QbeTarget {
	case "amd64_sysv", "amd64_apple", "arm64", "arm64_apple", "rv64":
		c.WordSize = 8
	case "arm", "rv32":
		c.WordSize = 4
	default:
		fmt.Fprintf(os.Stderr, "hdc: warning: unrecognized or unsupported QBE target '%s'.\n", c.QbeTarget)
		fmt.Fprintf(os.Stderr, "hdc: warning: defaulting to 64-bit properties. Compilation may fail.\n")
		c.WordSize = 8
	}
}
