package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/gt"
)

func newExecution(executedAt time.Time, execType types.ExecutionType) *model.SLAExecution {
	return &model.SLAExecution{
		ID:                model.NewSLAExecutionID(),
		ExecutedAt:        executedAt,
		ExecutionType:     execType,
		CasesExpiredCount: 1,
		DurationSeconds:   0.25,
		CasesReleased: []model.ReleasedCase{
			{CaseID: model.NewCaseID(), ClientID: "client-1", AssignedUserID: "user-a", Reason: types.ReleaseReasonExpiredNoInteraction},
		},
		Details: model.SLAExecutionDetails{Processed: 1, TotalCasesFound: 3},
	}
}

func runSLAExecutionRepositoryTest(t *testing.T, newRepo repoFactory) {
	t.Helper()

	t.Run("Create and Get round trip", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		e := newExecution(baseTime, types.ExecutionTypeManual)
		e.ExecutedByUserID = "admin-1"
		gt.NoError(t, repo.SLAExecution().Create(ctx, e)).Required()

		got, err := repo.SLAExecution().Get(ctx, e.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ExecutionType).Equal(types.ExecutionTypeManual)
		gt.Value(t, got.ExecutedByUserID).Equal("admin-1")
		gt.Value(t, got.CasesExpiredCount).Equal(1)
		gt.Value(t, got.Details).Equal(e.Details)
		gt.Array(t, got.CasesReleased).Length(1).Required()
		gt.Value(t, got.CasesReleased[0]).Equal(e.CasesReleased[0])
		gt.Bool(t, got.ExecutedAt.Equal(baseTime)).True()
	})

	t.Run("Get returns ErrNotFound for unknown execution", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.SLAExecution().Get(context.Background(), model.NewSLAExecutionID())
		gt.Error(t, err).Is(model.ErrNotFound)
	})

	t.Run("Get returns ErrNotFound for malformed id", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.SLAExecution().Get(context.Background(), model.SLAExecutionID("foo"))
		gt.Error(t, err).Is(model.ErrNotFound)
		gt.Error(t, err).IsNot(model.ErrStoreUnavailable)
	})

	t.Run("List filters, orders newest first and paginates", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		var all []*model.SLAExecution
		for i := 0; i < 5; i++ {
			execType := types.ExecutionTypeScheduled
			if i%2 == 1 {
				execType = types.ExecutionTypeManual
			}
			e := newExecution(baseTime.Add(time.Duration(i)*time.Hour), execType)
			gt.NoError(t, repo.SLAExecution().Create(ctx, e)).Required()
			all = append(all, e)
		}

		got, total, err := repo.SLAExecution().List(ctx, model.SLAExecutionFilter{}, model.Pagination{Page: 1, Limit: 2})
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(5)
		gt.Array(t, got).Length(2).Required()
		gt.Value(t, got[0].ID).Equal(all[4].ID)
		gt.Value(t, got[1].ID).Equal(all[3].ID)

		got, total, err = repo.SLAExecution().List(ctx, model.SLAExecutionFilter{}, model.Pagination{Page: 3, Limit: 2})
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(5)
		gt.Array(t, got).Length(1).Required()
		gt.Value(t, got[0].ID).Equal(all[0].ID)

		manual, total, err := repo.SLAExecution().List(ctx,
			model.SLAExecutionFilter{ExecutionType: types.ExecutionTypeManual}, model.Pagination{})
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(2)
		gt.Array(t, manual).Length(2)

		from := baseTime.Add(time.Hour)
		to := baseTime.Add(3 * time.Hour)
		window, total, err := repo.SLAExecution().List(ctx,
			model.SLAExecutionFilter{From: &from, To: &to}, model.Pagination{})
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(2)
		gt.Array(t, window).Length(2).Required()
		gt.Value(t, window[0].ID).Equal(all[2].ID)
		gt.Value(t, window[1].ID).Equal(all[1].ID)

		// total counts every match even when the page is past the end
		beyond, total, err := repo.SLAExecution().List(ctx,
			model.SLAExecutionFilter{ExecutionType: types.ExecutionTypeScheduled, From: &from},
			model.Pagination{Page: 4, Limit: 1})
		gt.NoError(t, err).Required()
		gt.Number(t, total).Equal(2)
		gt.Array(t, beyond).Length(0)
	})
}
