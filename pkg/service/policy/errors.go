package policy

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidPolicy  = goerr.New("invalid policy table")
	ErrMissingVersion = goerr.New("policy version is required")
	ErrMissingClause  = goerr.New("policy clause is missing")
)

const (
	PolicyPathKey = "policy_path"
	SectionKey    = "section"
	EntryKey      = "entry"
)
