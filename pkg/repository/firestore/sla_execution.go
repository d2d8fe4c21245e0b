package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type slaExecutionDoc struct {
	ID                string                    `firestore:"id"`
	ExecutedAt        time.Time                 `firestore:"executed_at"`
	ExecutionType     string                    `firestore:"execution_type"`
	ExecutedByUserID  string                    `firestore:"executed_by_user_id"`
	CasesExpiredCount int                       `firestore:"cases_expired_count"`
	DurationSeconds   float64                   `firestore:"duration_seconds"`
	CasesReleased     []model.ReleasedCase      `firestore:"cases_released"`
	Details           model.SLAExecutionDetails `firestore:"details"`
}

func toSLAExecutionDoc(e *model.SLAExecution) *slaExecutionDoc {
	return &slaExecutionDoc{
		ID:                string(e.ID),
		ExecutedAt:        e.ExecutedAt,
		ExecutionType:     string(e.ExecutionType),
		ExecutedByUserID:  e.ExecutedByUserID,
		CasesExpiredCount: e.CasesExpiredCount,
		DurationSeconds:   e.DurationSeconds,
		CasesReleased:     e.CasesReleased,
		Details:           e.Details,
	}
}

func (d *slaExecutionDoc) toModel() *model.SLAExecution {
	released := d.CasesReleased
	if released == nil {
		released = []model.ReleasedCase{}
	}
	return &model.SLAExecution{
		ID:                model.SLAExecutionID(d.ID),
		ExecutedAt:        d.ExecutedAt,
		ExecutionType:     types.ExecutionType(d.ExecutionType),
		ExecutedByUserID:  d.ExecutedByUserID,
		CasesExpiredCount: d.CasesExpiredCount,
		DurationSeconds:   d.DurationSeconds,
		CasesReleased:     released,
		Details:           d.Details,
	}
}

type slaExecutionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSLAExecutionRepository(client *firestore.Client) *slaExecutionRepository {
	return &slaExecutionRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *slaExecutionRepository) executionsCollection() string {
	return collectionName(r.collectionPrefix, "sla_executions")
}

func (r *slaExecutionRepository) Create(ctx context.Context, e *model.SLAExecution) error {
	_, err := r.client.Collection(r.executionsCollection()).Doc(string(e.ID)).Create(ctx, toSLAExecutionDoc(e))
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(err, "sla execution already exists", goerr.V(model.ExecutionIDKey, e.ID))
		}
		return unavailable(err, "failed to create sla execution", goerr.V(model.ExecutionIDKey, e.ID))
	}
	return nil
}

func (r *slaExecutionRepository) Get(ctx context.Context, id model.SLAExecutionID) (*model.SLAExecution, error) {
	docSnap, err := r.client.Collection(r.executionsCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(model.ErrNotFound, "sla execution not found", goerr.V(model.ExecutionIDKey, id))
		}
		return nil, unavailable(err, "failed to get sla execution", goerr.V(model.ExecutionIDKey, id))
	}

	var d slaExecutionDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode sla execution", goerr.V(model.ExecutionIDKey, id))
	}
	return d.toModel(), nil
}

func (r *slaExecutionRepository) List(ctx context.Context, filter model.SLAExecutionFilter, page model.Pagination) ([]*model.SLAExecution, int, error) {
	page = page.Normalize()

	query := r.client.Collection(r.executionsCollection()).Query
	if filter.ExecutionType != "" {
		query = query.Where("execution_type", "==", string(filter.ExecutionType))
	}
	if filter.From != nil {
		query = query.Where("executed_at", ">=", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("executed_at", "<", *filter.To)
	}
	total, err := countDocuments(ctx, query)
	if err != nil {
		return nil, 0, unavailable(err, "failed to count sla executions")
	}

	query = query.OrderBy("executed_at", firestore.Desc).OrderBy("id", firestore.Desc).
		Offset(page.Offset()).
		Limit(page.Limit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	executions := make([]*model.SLAExecution, 0, page.Limit)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, 0, unavailable(err, "failed to iterate sla executions")
		}

		var d slaExecutionDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, 0, goerr.Wrap(err, "failed to decode sla execution", goerr.V("doc_id", docSnap.Ref.ID))
		}
		executions = append(executions, d.toModel())
	}

	return executions, total, nil
}

const countAlias = "total"

// countDocuments runs a server-side COUNT over query
func countDocuments(ctx context.Context, query firestore.Query) (int, error) {
	result, err := query.NewAggregationQuery().WithCount(countAlias).Get(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to run count aggregation")
	}

	value, ok := result[countAlias].(*firestorepb.Value)
	if !ok {
		return 0, goerr.New("count aggregation returned no value", goerr.V("result", result))
	}
	return int(value.GetIntegerValue()), nil
}
