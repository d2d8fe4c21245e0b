package usecase

import (
	"context"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

type AuditUseCase struct {
	repo interfaces.Repository
}

func NewAuditUseCase(repo interfaces.Repository) *AuditUseCase {
	return &AuditUseCase{repo: repo}
}

// Query returns the audit trail of an existing case in creation order
func (uc *AuditUseCase) Query(ctx context.Context, caseID model.CaseID) ([]*model.AuditLog, error) {
	if _, err := uc.repo.Case().Get(ctx, caseID); err != nil {
		return nil, goerr.Wrap(err, "failed to get case", goerr.V(CaseIDKey, caseID))
	}

	entries, err := uc.repo.Audit().Query(ctx, caseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query audit trail", goerr.V(CaseIDKey, caseID))
	}
	return entries, nil
}
