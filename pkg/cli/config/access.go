package config

import (
	"log/slog"

	httpctrl "github.com/mootai/moot/pkg/controller/http"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

// Access holds CLI flags deciding who owns a request's artifacts
type Access struct {
	mode   string
	header string
	owner  string
}

// Flags returns CLI flags for access configuration
func (x *Access) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "access-mode",
			Usage:       "Owner identification (open: single fixed owner, header: owner from a trusted proxy header)",
			Category:    "Access",
			Value:       "open",
			Sources:     cli.EnvVars("MOOT_ACCESS_MODE"),
			Destination: &x.mode,
		},
		&cli.StringFlag{
			Name:        "access-owner-header",
			Usage:       "Header carrying the owner ID in header mode",
			Category:    "Access",
			Value:       "X-Moot-Owner",
			Sources:     cli.EnvVars("MOOT_ACCESS_OWNER_HEADER"),
			Destination: &x.header,
		},
		&cli.StringFlag{
			Name:        "access-owner",
			Usage:       "Owner ID of every request in open mode",
			Category:    "Access",
			Value:       string(httpctrl.DefaultOwner),
			Sources:     cli.EnvVars("MOOT_ACCESS_OWNER"),
			Destination: &x.owner,
		},
	}
}

// LogAttrs returns log attributes for the access configuration
func (x *Access) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("mode", x.mode),
		slog.String("header", x.header),
		slog.String("owner", x.owner),
	}
}

// Configure returns the owner resolver for the HTTP server
func (x *Access) Configure() (httpctrl.OwnerResolver, error) {
	switch x.mode {
	case "open", "":
		owner := model.OwnerID(x.owner)
		if err := owner.Validate(); err != nil {
			return nil, err
		}
		return httpctrl.FixedOwner(owner), nil

	case "header":
		if x.header == "" {
			return nil, missingRequired("access-owner-header", "access-owner-header is required in header mode")
		}
		return httpctrl.HeaderOwner(x.header), nil

	default:
		return nil, unknownChoice("access-mode", x.mode)
	}
}
