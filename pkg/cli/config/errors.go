package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrMissingRequired = goerr.New("required option is missing")
	ErrUnknownChoice   = goerr.New("unknown option value")
)

// Context keys for error values
const (
	OptionKey = "option"
	ValueKey  = "value"
)

func unknownChoice(option, value string) error {
	return goerr.Wrap(ErrUnknownChoice, "unsupported value", goerr.V(OptionKey, option), goerr.V(ValueKey, value))
}

func missingRequired(option, reason string) error {
	return goerr.Wrap(ErrMissingRequired, reason, goerr.V(OptionKey, option))
}
