package cli

import (
	"context"
	"log/slog"

	"github.com/esteira-credito/esteira/pkg/repository/postgres"
	"github.com/esteira-credito/esteira/pkg/utils/logging"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Provision indexes and schemas for the repository backends",
		Commands: []*cli.Command{
			cmdMigrateFirestore(),
			cmdMigratePostgres(),
		},
	}
}

func cmdMigrateFirestore() *cli.Command {
	var projectID string
	var databaseID string
	var prefix string
	var dryRun bool

	return &cli.Command{
		Name:  "firestore",
		Usage: "Migrate Firestore composite indexes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "firestore-project-id",
				Usage:       "Firestore Project ID (required)",
				Required:    true,
				Sources:     cli.EnvVars("ESTEIRA_FIRESTORE_PROJECT_ID"),
				Destination: &projectID,
			},
			&cli.StringFlag{
				Name:        "firestore-database-id",
				Usage:       "Firestore Database ID",
				Sources:     cli.EnvVars("ESTEIRA_FIRESTORE_DATABASE_ID"),
				Destination: &databaseID,
			},
			&cli.StringFlag{
				Name:        "firestore-collection-prefix",
				Usage:       "Prefix added to every Firestore collection name",
				Sources:     cli.EnvVars("ESTEIRA_FIRESTORE_COLLECTION_PREFIX"),
				Destination: &prefix,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "Preview changes without applying",
				Destination: &dryRun,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			logger.Info("Migrate configuration",
				"projectID", projectID,
				"databaseID", databaseID,
				"prefix", prefix,
				"dryRun", dryRun)

			client, err := newIndexClient(ctx, logger, projectID, databaseID, prefix, dryRun)
			if err != nil {
				return err
			}
			defer func() {
				if err := client.Close(); err != nil {
					logger.Error("failed to close fireconf client", "error", err.Error())
				}
			}()

			if dryRun {
				logger.Info("Dry run mode - previewing changes")
				current, err := client.Import(ctx, indexCollections(prefix)...)
				if err != nil {
					return goerr.Wrap(err, "failed to import current indexes")
				}
				diff, err := client.DiffConfigs(current)
				if err != nil {
					return goerr.Wrap(err, "failed to diff index configuration")
				}
				logIndexDiff(logger, diff)
				return nil
			}

			logger.Info("Applying migrations")
			if err := client.Migrate(ctx); err != nil {
				return goerr.Wrap(err, "failed to apply migrations")
			}
			logger.Info("Migrations applied successfully")

			return nil
		},
	}
}

// getIndexConfig returns the composite indexes the Firestore queries need
func getIndexConfig(prefix string) *fireconf.Config {
	return &fireconf.Config{
		Collections: []fireconf.Collection{
			{
				Name: prefixed(prefix, "cases"),
				Indexes: []fireconf.Index{
					// ListAvailable: status ==, lock.active ==, created_at ASC
					{
						Fields: []fireconf.IndexField{
							{Path: "status", Order: fireconf.OrderAscending},
							{Path: "lock.active", Order: fireconf.OrderAscending},
							{Path: "created_at", Order: fireconf.OrderAscending},
						},
					},
					// ListLocked by owner: lock.active ==, lock.owner_id ==
					{
						Fields: []fireconf.IndexField{
							{Path: "lock.active", Order: fireconf.OrderAscending},
							{Path: "lock.owner_id", Order: fireconf.OrderAscending},
						},
					},
				},
			},
			{
				Name: prefixed(prefix, "sla_executions"),
				Indexes: []fireconf.Index{
					// List: executed_at DESC, id DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "executed_at", Order: fireconf.OrderDescending},
							{Path: "id", Order: fireconf.OrderDescending},
						},
					},
					// List by type: execution_type ==, executed_at DESC, id DESC
					{
						Fields: []fireconf.IndexField{
							{Path: "execution_type", Order: fireconf.OrderAscending},
							{Path: "executed_at", Order: fireconf.OrderDescending},
							{Path: "id", Order: fireconf.OrderDescending},
						},
					},
					// List count by type and time range: execution_type ==, executed_at range
					{
						Fields: []fireconf.IndexField{
							{Path: "execution_type", Order: fireconf.OrderAscending},
							{Path: "executed_at", Order: fireconf.OrderAscending},
						},
					},
				},
			},
		},
	}
}

func newIndexClient(ctx context.Context, logger *slog.Logger, projectID, databaseID, prefix string, dryRun bool) (*fireconf.Client, error) {
	if databaseID == "" {
		databaseID = "(default)"
	}

	client, err := fireconf.New(ctx, projectID, databaseID, getIndexConfig(prefix),
		fireconf.WithLogger(logger),
		fireconf.WithDryRun(dryRun),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create fireconf client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID))
	}
	return client, nil
}

func indexCollections(prefix string) []string {
	var names []string
	for _, c := range getIndexConfig(prefix).Collections {
		names = append(names, c.Name)
	}
	return names
}

// logIndexDiff reports pending index changes and returns how many
// collections would change.
func logIndexDiff(logger *slog.Logger, diff *fireconf.DiffResult) int {
	if len(diff.Collections) == 0 {
		logger.Info("No changes required")
		return 0
	}

	for _, c := range diff.Collections {
		logger.Info("Migration step",
			"collection", c.Name,
			"action", c.Action,
			"indexesToAdd", len(c.IndexesToAdd),
			"indexesToDelete", len(c.IndexesToDelete))
	}
	return len(diff.Collections)
}

// prefixed matches the collection naming of the firestore repository
func prefixed(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "_" + name
}

func cmdMigratePostgres() *cli.Command {
	var dsn string

	return &cli.Command{
		Name:  "postgres",
		Usage: "Apply the embedded PostgreSQL schema migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "postgres-dsn",
				Usage:       "PostgreSQL connection string (required)",
				Required:    true,
				Sources:     cli.EnvVars("ESTEIRA_POSTGRES_DSN"),
				Destination: &dsn,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			version, err := postgres.Migrate(dsn)
			if err != nil {
				return goerr.Wrap(err, "failed to apply postgres migrations")
			}
			logging.Default().Info("PostgreSQL migrations applied", "version", version)
			return nil
		},
	}
}
