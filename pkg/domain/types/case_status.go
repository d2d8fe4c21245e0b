package types

import "fmt"

// CaseStatus represents the pipeline stage of a case (atendimento)
type CaseStatus string

const (
	CaseStatusDisponivel         CaseStatus = "DISPONIVEL"
	CaseStatusAtribuido          CaseStatus = "ATRIBUIDO"
	CaseStatusPendenteCalculo    CaseStatus = "PENDENTE_CALCULO"
	CaseStatusSimulacaoAprovada  CaseStatus = "SIMULACAO_APROVADA"
	CaseStatusSimulacaoReprovada CaseStatus = "SIMULACAO_REPROVADA"
	CaseStatusEmFechamento       CaseStatus = "EM_FECHAMENTO"
	CaseStatusEnviadoFinanceiro  CaseStatus = "ENVIADO_FINANCEIRO"
	CaseStatusEncerradoAtivado   CaseStatus = "ENCERRADO_ATIVADO"
	CaseStatusCancelado          CaseStatus = "CANCELADO"
)

// AllCaseStatuses returns all valid case statuses
func AllCaseStatuses() []CaseStatus {
	return []CaseStatus{
		CaseStatusDisponivel,
		CaseStatusAtribuido,
		CaseStatusPendenteCalculo,
		CaseStatusSimulacaoAprovada,
		CaseStatusSimulacaoReprovada,
		CaseStatusEmFechamento,
		CaseStatusEnviadoFinanceiro,
		CaseStatusEncerradoAtivado,
		CaseStatusCancelado,
	}
}

// IsValid checks if the case status is valid
func (s CaseStatus) IsValid() bool {
	switch s {
	case CaseStatusDisponivel,
		CaseStatusAtribuido,
		CaseStatusPendenteCalculo,
		CaseStatusSimulacaoAprovada,
		CaseStatusSimulacaoReprovada,
		CaseStatusEmFechamento,
		CaseStatusEnviadoFinanceiro,
		CaseStatusEncerradoAtivado,
		CaseStatusCancelado:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition can leave the status
func (s CaseStatus) IsTerminal() bool {
	return s == CaseStatusEncerradoAtivado || s == CaseStatusCancelado
}

// WorkingRole returns the role whose queue holds cases in this status.
// Terminal statuses have no working role and return an empty Role.
func (s CaseStatus) WorkingRole() Role {
	switch s {
	case CaseStatusDisponivel, CaseStatusAtribuido, CaseStatusSimulacaoReprovada:
		return RoleAtendente
	case CaseStatusPendenteCalculo:
		return RoleCalculista
	case CaseStatusSimulacaoAprovada, CaseStatusEmFechamento:
		return RoleGerenteFechamento
	case CaseStatusEnviadoFinanceiro:
		return RoleFinanceiro
	default:
		return ""
	}
}

// String returns the string representation of the case status
func (s CaseStatus) String() string {
	return string(s)
}

// ParseCaseStatus parses a string into a CaseStatus
func ParseCaseStatus(s string) (CaseStatus, error) {
	status := CaseStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid case status: %s", s)
	}
	return status, nil
}
