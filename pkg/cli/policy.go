package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/cli/config"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/service/policy"
	"github.com/urfave/cli/v3"
)

func cmdPolicy() *cli.Command {
	return &cli.Command{
		Name:    "policy",
		Aliases: []string{"p"},
		Usage:   "Inspect the persona policy table",
		Commands: []*cli.Command{
			cmdPolicyDump(),
			cmdPolicyValidate(),
			cmdPolicyShow(),
		},
	}
}

func cmdPolicyDump() *cli.Command {
	return &cli.Command{
		Name:  "dump",
		Usage: "Print the built-in policy table as TOML, a starting point for --policy-file",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := c.Root().Writer.Write(policy.DefaultSource())
			return err
		},
	}
}

func cmdPolicyValidate() *cli.Command {
	var policyCfg config.Policy

	return &cli.Command{
		Name:  "validate",
		Usage: "Check that a policy table covers every role, temperament and strategy",
		Flags: policyCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			table, err := policyCfg.Configure()
			if err != nil {
				_, _ = color.New(color.FgRed, color.Bold).Fprintln(c.Root().ErrWriter, "policy table is invalid")
				return goerr.Wrap(err, "policy validation failed")
			}

			_, _ = color.New(color.FgGreen, color.Bold).Fprintf(c.Root().Writer,
				"policy table %s is valid (%d temperaments, %d strategies)\n",
				table.Version, len(table.Temperaments), len(table.Strategies))
			return nil
		},
	}
}

func cmdPolicyShow() *cli.Command {
	var policyCfg config.Policy
	var role, identity, judgeType, userStrategy, opponentStrategy string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "role",
			Usage:       "Current role (judge, plaintiff or defendant)",
			Value:       string(types.RoleJudge),
			Destination: &role,
		},
		&cli.StringFlag{
			Name:        "identity",
			Usage:       "User identity (plaintiff or defendant)",
			Value:       string(types.RolePlaintiff),
			Destination: &identity,
		},
		&cli.StringFlag{
			Name:        "judge-type",
			Usage:       "Judge temperament",
			Destination: &judgeType,
		},
		&cli.StringFlag{
			Name:        "user-strategy",
			Usage:       "User's advocacy strategy",
			Destination: &userStrategy,
		},
		&cli.StringFlag{
			Name:        "opponent-strategy",
			Usage:       "Opponent's advocacy strategy",
			Destination: &opponentStrategy,
		},
	}
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:  "show",
		Usage: "Print the role label and instruction rendered for one persona",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			table, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load persona policy")
			}

			persona := model.PersonaConfig{
				CurrentRole:      types.Role(role).Normalize(),
				JudgeTemperament: types.JudgeTemperament(judgeType),
				UserIdentity:     types.Role(identity).Normalize(),
				UserStrategy:     types.Strategy(userStrategy),
				OpponentStrategy: types.Strategy(opponentStrategy),
			}

			w := c.Root().Writer
			_, _ = color.New(color.FgCyan, color.Bold).Fprintf(w, "# %s\n", table.RoleLabel(persona.CurrentRole))
			_, err = fmt.Fprintln(w, table.Instruction(persona))
			return err
		},
	}
}
