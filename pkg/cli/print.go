package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/esteira-credito/esteira/pkg/domain/types"
	"github.com/fatih/color"
)

var (
	headerColor  = color.New(color.Bold)
	okColor      = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	subtleColor  = color.New(color.FgHiBlack)
	releaseColor = map[types.ReleaseReason]*color.Color{
		types.ReleaseReasonExpiredWithInteraction: color.New(color.FgCyan),
		types.ReleaseReasonExpiredNoInteraction:   color.New(color.FgMagenta),
	}
)

// printExecution writes one execution with its released cases
func printExecution(w io.Writer, e *model.SLAExecution) {
	headerColor.Fprintf(w, "SLA execution %s\n", e.ID)
	fmt.Fprintf(w, "  executed at:   %s\n", e.ExecutedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "  type:          %s\n", e.ExecutionType)
	if e.ExecutedByUserID != "" {
		fmt.Fprintf(w, "  triggered by:  %s\n", e.ExecutedByUserID)
	}
	fmt.Fprintf(w, "  duration:      %.3fs\n", e.DurationSeconds)
	fmt.Fprintf(w, "  candidates:    %d\n", e.Details.TotalCasesFound)
	okColor.Fprintf(w, "  released:      %d\n", e.CasesExpiredCount)
	if e.Details.AlreadyExpired > 0 {
		warnColor.Fprintf(w, "  skipped:       %d\n", e.Details.AlreadyExpired)
	}
	if e.Details.Errors > 0 {
		errorColor.Fprintf(w, "  errors:        %d\n", e.Details.Errors)
	}

	for _, rc := range e.CasesReleased {
		c, ok := releaseColor[rc.Reason]
		if !ok {
			c = subtleColor
		}
		fmt.Fprintf(w, "  - %s client=%s owner=%s ", rc.CaseID, rc.ClientID, rc.AssignedUserID)
		c.Fprintln(w, rc.Reason)
	}
}

// printExecutionList writes one line per execution
func printExecutionList(w io.Writer, executions []*model.SLAExecution, total int) {
	if len(executions) == 0 {
		subtleColor.Fprintln(w, "no SLA executions")
		return
	}

	for _, e := range executions {
		fmt.Fprintf(w, "%s  %s  %-9s  ", e.ID, e.ExecutedAt.Format(time.RFC3339), e.ExecutionType)
		okColor.Fprintf(w, "released=%d", e.CasesExpiredCount)
		fmt.Fprintf(w, " found=%d", e.Details.TotalCasesFound)
		if e.Details.Errors > 0 {
			errorColor.Fprintf(w, " errors=%d", e.Details.Errors)
		}
		fmt.Fprintln(w)
	}
	subtleColor.Fprintf(w, "%d of %d executions\n", len(executions), total)
}
