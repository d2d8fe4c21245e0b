package config

import (
	"context"
	"log/slog"

	"cloud.google.com/go/storage"
	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/service/archive"
	"github.com/esteira-credito/esteira/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Archive holds CLI flags for archiving SLA executions to Cloud Storage
type Archive struct {
	bucket string
	prefix string
}

// Flags returns CLI flags for archive configuration
func (x *Archive) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket for SLA execution archives; archiving is disabled when empty",
			Category:    "Archive",
			Sources:     cli.EnvVars("ESTEIRA_ARCHIVE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object name prefix for SLA execution archives",
			Category:    "Archive",
			Value:       "sla-executions",
			Sources:     cli.EnvVars("ESTEIRA_ARCHIVE_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

func (x Archive) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

// Configure returns the archiver, or nil when no bucket is set. The returned
// function closes the storage client.
func (x *Archive) Configure(ctx context.Context) (interfaces.ExecutionArchiver, func(), error) {
	if x.bucket == "" {
		return nil, func() {}, nil
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create storage client")
	}
	logging.Default().Info("SLA execution archive enabled", "bucket", x.bucket, "prefix", x.prefix)

	closer := func() {
		if err := client.Close(); err != nil {
			logging.Default().Error("failed to close storage client", "error", err.Error())
		}
	}
	return archive.New(client, x.bucket, archive.WithPrefix(x.prefix)), closer, nil
}
