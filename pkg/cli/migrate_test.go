package cli_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/esteira-credito/esteira/pkg/cli"
	"github.com/m-mizutani/fireconf"
	"github.com/m-mizutani/gt"
)

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("")
	gt.Array(t, cfg.Collections).Length(2).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal("cases")
	gt.Value(t, cfg.Collections[1].Name).Equal("sla_executions")

	prefixed := cli.GetIndexConfig("staging")
	gt.Value(t, prefixed.Collections[0].Name).Equal("staging_cases")

	for _, col := range cfg.Collections {
		for _, idx := range col.Indexes {
			gt.Bool(t, len(idx.Fields) >= 2).True()
		}
	}
}

func TestGetIndexConfig_Valid(t *testing.T) {
	gt.NoError(t, cli.GetIndexConfig("").Validate())
	gt.NoError(t, cli.GetIndexConfig("staging").Validate())

	gt.Value(t, cli.IndexCollections("staging")).Equal([]string{"staging_cases", "staging_sla_executions"})
}

func TestNewIndexClient_RequiresProject(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	_, err := cli.NewIndexClient(context.Background(), logger, "", "", "", true)
	gt.Error(t, err)
}

func TestLogIndexDiff(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	gt.Number(t, cli.LogIndexDiff(logger, &fireconf.DiffResult{})).Equal(0)
	gt.String(t, buf.String()).Contains("No changes required")

	buf.Reset()
	diff := &fireconf.DiffResult{
		Collections: []fireconf.CollectionDiff{
			{
				Name:         "cases",
				Action:       fireconf.ActionModify,
				IndexesToAdd: cli.GetIndexConfig("").Collections[0].Indexes,
			},
		},
	}
	gt.Number(t, cli.LogIndexDiff(logger, diff)).Equal(1)
	gt.String(t, buf.String()).Contains("collection=cases")
	gt.String(t, buf.String()).Contains("indexesToAdd=2")
}
