package cli

import (
	"context"
	"errors"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/esteira-credito/esteira/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdSweep() *cli.Command {
	var operator string
	var engineCfg engineConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "operator",
			Usage:       "User ID recorded as the trigger of this manual sweep",
			Value:       "cli",
			Sources:     cli.EnvVars("ESTEIRA_OPERATOR"),
			Destination: &operator,
		},
	}
	flags = append(flags, engineCfg.Flags()...)

	return &cli.Command{
		Name:  "sweep",
		Usage: "Run one manual SLA sweep and print its result",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			uc, _, cleanup, err := engineCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			// Operators with shell access act with full privileges
			actor := &model.Actor{ID: operator, Role: types.RoleSuperadmin}
			execution, err := uc.SLA.RunMaintenance(ctx, types.ExecutionTypeManual, actor)
			if err != nil {
				if errors.Is(err, model.ErrSLAEngineBusy) {
					logging.Default().Warn("Another SLA sweep is running, try again later")
				}
				return goerr.Wrap(err, "SLA sweep failed")
			}

			printExecution(c.Root().Writer, execution)
			return nil
		},
	}
}
