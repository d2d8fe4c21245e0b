package memory

import (
	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
)

// Repository is an alias for Memory to match the pattern
type Repository = Memory

// Memory is a process-local backend for development and tests
type Memory struct {
	caseRepo    *caseRepository
	audit       *auditRepository
	execution   *slaExecutionRepository
	interaction *interactionRepository
	guard       *sweepGuardRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	auditRepo := newAuditRepository()

	return &Memory{
		caseRepo:    newCaseRepository(auditRepo),
		audit:       auditRepo,
		execution:   newSLAExecutionRepository(),
		interaction: newInteractionRepository(),
		guard:       newSweepGuardRepository(),
	}
}

func (m *Memory) Case() interfaces.CaseRepository {
	return m.caseRepo
}

func (m *Memory) Audit() interfaces.AuditRepository {
	return m.audit
}

func (m *Memory) SLAExecution() interfaces.SLAExecutionRepository {
	return m.execution
}

func (m *Memory) Interaction() interfaces.InteractionRepository {
	return m.interaction
}

func (m *Memory) SweepGuard() interfaces.SweepGuardRepository {
	return m.guard
}

func (m *Memory) Close() error {
	return nil
}
