package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Case() CaseRepository
	Audit() AuditRepository
	SLAExecution() SLAExecutionRepository
	Interaction() InteractionRepository
	SweepGuard() SweepGuardRepository

	Close() error
}
