package model

import (
	"encoding/json"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Edge is a directed status transition
type Edge struct {
	From types.CaseStatus
	To   types.CaseStatus
}

// edgeRule describes who may take an edge and what it does to the case
// besides setting the status.
type edgeRule struct {
	roles map[types.Role]bool
	// releasesLock hands the case off to the next stage queue
	releasesLock bool
	// storesCalcResult copies the transition payload into Case.CalcResult
	storesCalcResult bool
	stamp            func(c *Case, now time.Time)
}

// StateMachine validates and applies status transitions against an explicit
// {role, from, to} authorization table. Transitions back to DISPONIVEL are
// not in the table: they are the release path, allowed for the system and
// superadmin from any non-terminal locked status.
type StateMachine struct {
	edges map[Edge]edgeRule
}

func rule(releasesLock bool, roles ...types.Role) edgeRule {
	r := edgeRule{roles: make(map[types.Role]bool, len(roles)), releasesLock: releasesLock}
	for _, role := range roles {
		r.roles[role] = true
	}
	return r
}

// NewStateMachine returns the loan-origination pipeline
func NewStateMachine() *StateMachine {
	calc := rule(true, types.RoleCalculista)
	calc.storesCalcResult = true

	toFinance := rule(true, types.RoleGerenteFechamento)
	toFinance.stamp = func(c *Case, now time.Time) {
		t := now
		c.ClosingApprovedAt = &t
	}

	activate := rule(true, types.RoleFinanceiro)
	activate.stamp = func(c *Case, now time.Time) {
		t := now
		c.FinanceActivationAt = &t
	}

	return &StateMachine{
		edges: map[Edge]edgeRule{
			{types.CaseStatusDisponivel, types.CaseStatusAtribuido}:                rule(false, types.RoleAtendente),
			{types.CaseStatusAtribuido, types.CaseStatusPendenteCalculo}:           rule(true, types.RoleAtendente),
			{types.CaseStatusAtribuido, types.CaseStatusCancelado}:                 rule(true, types.RoleAtendente),
			{types.CaseStatusPendenteCalculo, types.CaseStatusSimulacaoAprovada}:   calc,
			{types.CaseStatusPendenteCalculo, types.CaseStatusSimulacaoReprovada}:  calc,
			{types.CaseStatusSimulacaoReprovada, types.CaseStatusPendenteCalculo}:  rule(true, types.RoleAtendente),
			{types.CaseStatusSimulacaoReprovada, types.CaseStatusCancelado}:        rule(true, types.RoleAtendente),
			{types.CaseStatusSimulacaoAprovada, types.CaseStatusEmFechamento}:      rule(false, types.RoleGerenteFechamento),
			{types.CaseStatusEmFechamento, types.CaseStatusEnviadoFinanceiro}:      toFinance,
			{types.CaseStatusEmFechamento, types.CaseStatusCancelado}:              rule(true, types.RoleGerenteFechamento),
			{types.CaseStatusEnviadoFinanceiro, types.CaseStatusEncerradoAtivado}:  activate,
		},
	}
}

// IsEdge reports whether from -> to is a declared transition for the case
// lock state given.
func (sm *StateMachine) IsEdge(from, to types.CaseStatus, locked bool) bool {
	if to == types.CaseStatusDisponivel {
		return locked && from != types.CaseStatusDisponivel && !from.IsTerminal()
	}
	_, ok := sm.edges[Edge{From: from, To: to}]
	return ok
}

// Authorize reports whether actor may take from -> to. A nil actor is the
// system and may only release.
func (sm *StateMachine) Authorize(actor *Actor, from, to types.CaseStatus) bool {
	if to == types.CaseStatusDisponivel {
		return actor.IsSystem() || actor.IsSuperadmin()
	}
	if actor.IsSystem() {
		return false
	}
	if actor.IsSuperadmin() {
		return true
	}
	r, ok := sm.edges[Edge{From: from, To: to}]
	return ok && r.roles[actor.Role]
}

// Edges returns every declared edge except the release path
func (sm *StateMachine) Edges() []Edge {
	edges := make([]Edge, 0, len(sm.edges))
	for e := range sm.edges {
		edges = append(edges, e)
	}
	return edges
}

// Apply moves c to status to in place. The edge is checked first so that an
// undeclared pair always fails with ErrInvalidTransition regardless of who
// asks; then the role table; then lock ownership, which every actor other
// than the system and superadmin must hold. c is left untouched on error.
func (sm *StateMachine) Apply(c *Case, to types.CaseStatus, actor *Actor, payload json.RawMessage, now time.Time) error {
	from := c.Status
	if !sm.IsEdge(from, to, c.Lock.Active) {
		return goerr.Wrap(ErrInvalidTransition, "transition not allowed",
			goerr.V(CaseIDKey, c.ID), goerr.V(FromStatusKey, from), goerr.V(ToStatusKey, to))
	}

	if !sm.Authorize(actor, from, to) {
		return goerr.Wrap(ErrUnauthorized, "role not authorized for transition",
			goerr.V(CaseIDKey, c.ID),
			goerr.V(ActorIDKey, actor.UserID()),
			goerr.V(FromStatusKey, from),
			goerr.V(ToStatusKey, to))
	}

	if !actor.IsSystem() && !actor.IsSuperadmin() && !c.IsLockedBy(actor.ID) {
		return goerr.Wrap(ErrUnauthorized, "case is not locked by actor",
			goerr.V(CaseIDKey, c.ID), goerr.V(ActorIDKey, actor.ID), goerr.V("owner_id", c.Lock.OwnerID))
	}

	if to == types.CaseStatusDisponivel {
		release(c)
		return nil
	}

	r := sm.edges[Edge{From: from, To: to}]
	c.Status = to
	if r.releasesLock {
		c.clearLock()
	}
	if r.storesCalcResult && len(payload) > 0 {
		c.CalcResult = append(json.RawMessage(nil), payload...)
	}
	if r.stamp != nil {
		r.stamp(c, now)
	}
	return nil
}

// Acquire takes the exclusive lock on c for actor. It fails with
// ErrLockConflict when the case is already locked. A DISPONIVEL case moves to
// ATRIBUIDO through the transition table; any other status keeps its value
// but requires the actor's role to work it.
func (sm *StateMachine) Acquire(c *Case, actor *Actor, now time.Time) error {
	if actor.IsSystem() || actor.ID == "" {
		return goerr.Wrap(ErrUnauthorized, "lock requires a user", goerr.V(CaseIDKey, c.ID))
	}
	if c.Lock.Active {
		return goerr.Wrap(ErrLockConflict, "case is already locked",
			goerr.V(CaseIDKey, c.ID), goerr.V("owner_id", c.Lock.OwnerID))
	}
	if c.Status.IsTerminal() {
		return goerr.Wrap(ErrInvalidTransition, "case is closed",
			goerr.V(CaseIDKey, c.ID), goerr.V(FromStatusKey, c.Status))
	}
	if !actor.IsSuperadmin() && c.Status.WorkingRole() != actor.Role {
		return goerr.Wrap(ErrUnauthorized, "role does not work this queue",
			goerr.V(CaseIDKey, c.ID), goerr.V(RoleKey, actor.Role), goerr.V("status", c.Status))
	}

	locked := c.Clone()
	locked.takeLock(actor.ID, now)
	if locked.Status == types.CaseStatusDisponivel {
		if err := sm.Apply(locked, types.CaseStatusAtribuido, actor, nil, now); err != nil {
			return err
		}
	}
	*c = *locked
	return nil
}

// Release clears the lock on c and returns it to the shared queue. It is the
// single release path shared by explicit release and SLA reclamation; the
// caller is responsible for ownership checks.
func (sm *StateMachine) Release(c *Case, now time.Time) error {
	return sm.Apply(c, types.CaseStatusDisponivel, nil, nil, now)
}

func release(c *Case) {
	c.clearLock()
	c.Status = types.CaseStatusDisponivel
}
