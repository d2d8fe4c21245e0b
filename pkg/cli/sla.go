package cli

import (
	"context"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSLA() *cli.Command {
	return &cli.Command{
		Name:  "sla",
		Usage: "Inspect SLA sweep executions",
		Commands: []*cli.Command{
			cmdSLAList(),
			cmdSLAShow(),
		},
	}
}

func cmdSLAList() *cli.Command {
	var (
		from, to      string
		executionType string
		page, limit   int
		engineCfg     engineConfig
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "from",
			Usage:       "Only executions at or after this RFC 3339 time",
			Destination: &from,
		},
		&cli.StringFlag{
			Name:        "to",
			Usage:       "Only executions before this RFC 3339 time (exclusive)",
			Destination: &to,
		},
		&cli.StringFlag{
			Name:        "type",
			Usage:       "Only executions of this type (scheduled, manual)",
			Destination: &executionType,
		},
		&cli.IntFlag{
			Name:        "page",
			Value:       1,
			Destination: &page,
		},
		&cli.IntFlag{
			Name:        "limit",
			Value:       model.DefaultPageLimit,
			Destination: &limit,
		},
	}
	flags = append(flags, engineCfg.Flags()...)

	return &cli.Command{
		Name:  "list",
		Usage: "List SLA executions, newest first",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			filter := model.SLAExecutionFilter{ExecutionType: types.ExecutionType(executionType)}
			for _, p := range []struct {
				value string
				dst   **time.Time
			}{{from, &filter.From}, {to, &filter.To}} {
				if p.value == "" {
					continue
				}
				t, err := time.Parse(time.RFC3339, p.value)
				if err != nil {
					return goerr.Wrap(model.ErrInvalidInput, "invalid time, expected RFC 3339", goerr.V("value", p.value))
				}
				*p.dst = &t
			}

			uc, _, cleanup, err := engineCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			executions, total, err := uc.SLA.ListExecutions(ctx, filter, model.Pagination{Page: page, Limit: limit})
			if err != nil {
				return err
			}

			printExecutionList(c.Root().Writer, executions, total)
			return nil
		},
	}
}

func cmdSLAShow() *cli.Command {
	var engineCfg engineConfig

	return &cli.Command{
		Name:      "show",
		Usage:     "Show one SLA execution with its released cases",
		ArgsUsage: "<execution-id>",
		Flags:     engineCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			id := c.Args().First()
			if id == "" {
				return goerr.Wrap(model.ErrInvalidInput, "execution ID is required")
			}

			uc, _, cleanup, err := engineCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			execution, err := uc.SLA.GetExecution(ctx, model.SLAExecutionID(id))
			if err != nil {
				return err
			}

			printExecution(c.Root().Writer, execution)
			return nil
		},
	}
}
