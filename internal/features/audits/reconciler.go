package audits

import (
	"fmt"

	"github.com/aryanracha/civiclens/internal/features/issues"
	"github.com/aryanracha/civiclens/internal/features/records"
)

// RuleOutcome is the deterministic result of comparing citizen evidence
// against a matched official record. Conclusive outcomes bind the final
// verdict; inconclusive ones are a baseline the verdict generator may refine.
type RuleOutcome struct {
	RiskLevel  string
	Rationale  string
	Conclusive bool
}

// Reconcile applies the discrepancy rule table.
//
// A record marked Completed while citizens still photograph potholes at the
// site is the canonical corruption signal and is always High risk. A Planned
// record with a freshly Submitted issue is the expected state of the world
// and is Low risk. Everything else is ambiguous and defaults to Medium
// pending deeper analysis.
func Reconcile(record *records.OfficialRecord, category, issueStatus string) RuleOutcome {
	if record.Status == records.StatusCompleted && category == issues.CategoryPothole {
		return RuleOutcome{
			RiskLevel: issues.RiskHigh,
			Rationale: fmt.Sprintf(
				"Official record %q is marked Completed, but citizen evidence reports an active pothole at the project site. The reported condition contradicts the claimed completion.",
				record.ProjectName),
			Conclusive: true,
		}
	}

	if record.Status == records.StatusPlanned && issueStatus == issues.StatusSubmitted {
		return RuleOutcome{
			RiskLevel: issues.RiskLow,
			Rationale: fmt.Sprintf(
				"Official record %q is still in the Planned phase; a newly submitted citizen report is consistent with work not having started yet.",
				record.ProjectName),
			Conclusive: true,
		}
	}

	return RuleOutcome{
		RiskLevel: issues.RiskMedium,
		Rationale: fmt.Sprintf(
			"Official record %q (status %s) neither confirms nor contradicts the citizen evidence on its face.",
			record.ProjectName, record.Status),
		Conclusive: false,
	}
}

// verificationStatus derives the issue's embedded verification summary from
// the audit outcome.
func verificationStatus(recordMatched bool, riskLevel string) string {
	if !recordMatched {
		return issues.VerificationNoRecord
	}
	if riskLevel == issues.RiskHigh || riskLevel == issues.RiskCritical {
		return issues.VerificationDiscrepancy
	}
	return issues.VerificationVerified
}
