package cli

import (
	"context"

	"github.com/esteira-credito/esteira/pkg/cli/config"
	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/usecase"
	"github.com/esteira-credito/esteira/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// engineConfig groups the flags every command that touches cases needs
type engineConfig struct {
	repo     config.Repository
	calendar config.Calendar
	sla      config.SLA
	archive  config.Archive
}

func (x *engineConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.calendar.Flags()...)
	flags = append(flags, x.sla.Flags()...)
	flags = append(flags, x.archive.Flags()...)
	return flags
}

// Configure builds the use cases. The returned function waits for background
// tasks and closes the repository and the archive client.
func (x *engineConfig) Configure(ctx context.Context) (*usecase.UseCases, interfaces.Repository, func(), error) {
	calendar, err := x.calendar.Configure()
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to configure calendar")
	}
	slaOpts, err := x.sla.Configure()
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to configure SLA engine")
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	archiver, closeArchive, err := x.archive.Configure(ctx)
	if err != nil {
		_ = repo.Close()
		return nil, nil, nil, goerr.Wrap(err, "failed to configure archive")
	}

	opts := append([]usecase.Option{usecase.WithWorkingHours(calendar)}, slaOpts...)
	if archiver != nil {
		opts = append(opts, usecase.WithArchiver(archiver))
	}
	uc := usecase.New(repo, opts...)

	logging.Default().Info("Engine configured",
		"repository", x.repo,
		"calendar", x.calendar,
		"sla", x.sla,
		"archive", x.archive,
	)

	cleanup := func() {
		uc.Wait()
		closeArchive()
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}
	return uc, repo, cleanup, nil
}
