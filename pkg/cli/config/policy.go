package config

import (
	"log/slog"

	"github.com/mootai/moot/pkg/service/policy"
	"github.com/urfave/cli/v3"
)

// Policy holds the flag naming an alternative persona policy table
type Policy struct {
	file string
}

// Flags returns CLI flags for policy configuration
func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy-file",
			Usage:       "TOML persona policy table (empty for the built-in table)",
			Category:    "Policy",
			Sources:     cli.EnvVars("MOOT_POLICY_FILE"),
			Destination: &x.file,
		},
	}
}

// LogAttrs returns log attributes for the policy configuration
func (x *Policy) LogAttrs() []slog.Attr {
	return []slog.Attr{slog.String("file", x.file)}
}

// Configure loads and validates the policy table
func (x *Policy) Configure() (*policy.Table, error) {
	if x.file == "" {
		return policy.Default(), nil
	}
	return policy.LoadFile(x.file)
}
