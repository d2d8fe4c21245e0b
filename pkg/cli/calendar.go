package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/esteira-credito/esteira/pkg/cli/config"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdCalendar() *cli.Command {
	return &cli.Command{
		Name:  "calendar",
		Usage: "Business calendar utilities",
		Commands: []*cli.Command{
			cmdCalendarCheck(),
		},
	}
}

func cmdCalendarCheck() *cli.Command {
	var from, to string
	var calendarCfg config.Calendar

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "from",
			Usage:       "Start instant, RFC 3339",
			Required:    true,
			Destination: &from,
		},
		&cli.StringFlag{
			Name:        "to",
			Usage:       "End instant, RFC 3339 (default: now)",
			Destination: &to,
		},
	}
	flags = append(flags, calendarCfg.Flags()...)

	return &cli.Command{
		Name:  "check",
		Usage: "Print the business hours between two instants with the configured calendar",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			calendar, err := calendarCfg.Configure()
			if err != nil {
				return err
			}

			fromAt, err := time.Parse(time.RFC3339, from)
			if err != nil {
				return goerr.Wrap(model.ErrInvalidInput, "invalid --from, expected RFC 3339", goerr.V("value", from))
			}
			toAt := time.Now()
			if to != "" {
				toAt, err = time.Parse(time.RFC3339, to)
				if err != nil {
					return goerr.Wrap(model.ErrInvalidInput, "invalid --to, expected RFC 3339", goerr.V("value", to))
				}
			}

			elapsed, err := calendar.ElapsedBusiness(fromAt, toAt)
			if err != nil {
				return goerr.Wrap(err, "failed to compute business hours")
			}

			w := c.Root().Writer
			headerColor.Fprintf(w, "%.2f business hours\n", elapsed.Hours())
			fmt.Fprintf(w, "  from:     %s\n", fromAt.In(calendar.Location()).Format(time.RFC3339))
			fmt.Fprintf(w, "  to:       %s\n", toAt.In(calendar.Location()).Format(time.RFC3339))
			fmt.Fprintf(w, "  timezone: %s\n", calendar.Location())
			return nil
		},
	}
}
