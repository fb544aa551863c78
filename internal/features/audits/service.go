package audits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/features/issues"
	"github.com/aryanracha/civiclens/internal/features/records"
	"github.com/aryanracha/civiclens/internal/features/reports"
	"github.com/aryanracha/civiclens/internal/pkg/logger"
	"github.com/aryanracha/civiclens/internal/pkg/oracle"
)

// AuditStore is the ledger persistence surface.
type AuditStore interface {
	FindByReportID(ctx context.Context, reportID primitive.ObjectID) (*Audit, error)
	Insert(ctx context.Context, audit *Audit) (*Audit, error)
}

// ReportFinder resolves the report under audit.
type ReportFinder interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*reports.Report, error)
}

// IssueStore resolves the report's issue and receives the verification
// summary once the audit completes.
type IssueStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*issues.Issue, error)
	SetAuditVerification(ctx context.Context, id primitive.ObjectID, v issues.AuditVerification) error
}

// RecordMatcher finds candidate official records near a point, closest
// first.
type RecordMatcher interface {
	FindNearby(ctx context.Context, lng, lat, maxMeters float64) ([]records.OfficialRecord, error)
}

// Service runs the audit pipeline: match an official record, classify the
// evidence image, reconcile the two, and append the outcome to the ledger.
type Service struct {
	store   AuditStore
	reports ReportFinder
	issues  IssueStore
	records RecordMatcher
	oracle  oracle.Oracle
}

func NewService(store AuditStore, reportFinder ReportFinder, issueStore IssueStore, matcher RecordMatcher, o oracle.Oracle) *Service {
	return &Service{
		store:   store,
		reports: reportFinder,
		issues:  issueStore,
		records: matcher,
		oracle:  o,
	}
}

// departmentKeywords biases record matching toward the department that would
// plausibly own the reported category. Keywords are matched case-insensitively
// against the record's department name.
var departmentKeywords = map[string][]string{
	issues.CategoryPothole:     {"public works", "road"},
	issues.CategoryTraffic:     {"public works", "traffic"},
	issues.CategoryGarbage:     {"sanitation", "waste"},
	issues.CategoryWaterSupply: {"water"},
	issues.CategoryStreetlight: {"electric", "power", "street light"},
}

// Run audits a report, or returns the existing ledger entry when the report
// was already audited. Auditing is idempotent per report.
func (s *Service) Run(ctx context.Context, reportID primitive.ObjectID) (*Audit, error) {
	existing, err := s.store.FindByReportID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	report, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	issue, err := s.issues.GetByID(ctx, report.IssueID)
	if err != nil {
		return nil, err
	}

	var logs []LogEntry
	logs = appendLog(logs, LogTypeSystem, "Audit initiated for report %s", reportID.Hex())

	record, classification, logs := s.gatherSignals(ctx, issue, report, logs)

	audit := &Audit{
		ReportID: reportID,
		IssueID:  issue.ID,
		Status:   StatusCompleted,
		Evidence: EvidenceSnapshot{
			IssueID:     issue.ID,
			Category:    issue.Category,
			Description: report.Description,
			ImageURL:    report.ImageURL,
		},
	}
	if classification != nil {
		audit.Evidence.CVPrediction = classification.Prediction
		audit.Evidence.CVConfidence = classification.Probability
	}

	recordMatched := record != nil
	if recordMatched {
		audit.OfficialRecord = snapshotRecord(record)
		verdict, verdictLogs := s.reconcileAndJudge(ctx, record, issue, report, classification, logs)
		logs = verdictLogs
		audit.Verdict = verdict.RiskLevel
		audit.Confidence = verdict.Confidence
		audit.Reasoning = verdict.Reasoning
	} else {
		logs = appendLog(logs, LogTypeWarning,
			"No official record found within %.0fm of the issue location", records.MatchRadiusMeters)
		audit.Verdict = issues.RiskMedium
		audit.Confidence = 60
		audit.Reasoning = "No official government record exists within 500m of the reported location. The issue cannot be cross-checked; the absence of a project record is itself worth noting."
	}

	logs = appendLog(logs, LogTypeSuccess, "Verdict generated: %s risk (%.0f%% confidence)",
		audit.Verdict, audit.Confidence)
	logs = appendLog(logs, LogTypeSystem, "Recording audit to the ledger")
	audit.AILogs = logs

	saved, err := s.store.Insert(ctx, audit)
	if err != nil {
		return nil, err
	}

	verification := issues.AuditVerification{
		Status:    verificationStatus(recordMatched, saved.Verdict),
		RiskLevel: saved.Verdict,
		Reasoning: saved.Reasoning,
	}
	if saved.OfficialRecord != nil {
		verification.OfficialRecordID = &saved.OfficialRecord.RecordID
	}
	if err := s.issues.SetAuditVerification(ctx, issue.ID, verification); err != nil {
		logger.Warn("failed to write verification summary to issue %s: %v", issue.ID.Hex(), err)
	}

	return saved, nil
}

// gatherSignals runs record matching and image classification concurrently.
// Both are best-effort: a failed classification degrades the evidence, a
// failed match degrades to the no-record path.
func (s *Service) gatherSignals(ctx context.Context, issue *issues.Issue, report *reports.Report, logs []LogEntry) (*records.OfficialRecord, *oracle.Classification, []LogEntry) {
	type matchResult struct {
		record *records.OfficialRecord
		err    error
	}
	type classifyResult struct {
		classification *oracle.Classification
		err            error
	}

	matchCh := make(chan matchResult, 1)
	classifyCh := make(chan classifyResult, 1)

	go func() {
		record, err := s.matchRecord(ctx, issue)
		matchCh <- matchResult{record: record, err: err}
	}()

	go func() {
		if report.ImageURL == "" {
			classifyCh <- classifyResult{}
			return
		}
		c, err := s.oracle.ClassifyImage(ctx, report.ImageURL)
		classifyCh <- classifyResult{classification: c, err: err}
	}()

	match := <-matchCh
	classify := <-classifyCh

	logs = appendLog(logs, LogTypeAction, "Searching official records within %.0fm of the issue location",
		records.MatchRadiusMeters)
	switch {
	case match.err != nil:
		logs = appendLog(logs, LogTypeError, "Record lookup failed: %v", match.err)
	case match.record != nil:
		logs = appendLog(logs, LogTypeSuccess, "Matched official record %q (%s)",
			match.record.ProjectName, match.record.Department)
	}

	if report.ImageURL != "" {
		switch {
		case classify.err != nil:
			logs = appendLog(logs, LogTypeWarning, "Image classification unavailable: %v", classify.err)
		case classify.classification != nil:
			logs = appendLog(logs, LogTypeAction, "Evidence image classified as %q (%.1f%% confidence)",
				classify.classification.Prediction, classify.classification.Probability*100)
		}
	}

	return match.record, classify.classification, logs
}

// matchRecord picks the official record covering the issue location. Within
// the match radius, a record whose department plausibly owns the issue's
// category wins over a merely-nearer record from an unrelated department;
// failing that, nearest wins.
func (s *Service) matchRecord(ctx context.Context, issue *issues.Issue) (*records.OfficialRecord, error) {
	candidates, err := s.records.FindNearby(ctx,
		issue.Location.Lng(), issue.Location.Lat(), records.MatchRadiusMeters)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	for i := range candidates {
		if departmentHandles(candidates[i].Department, issue.Category) {
			return &candidates[i], nil
		}
	}
	return &candidates[0], nil
}

func departmentHandles(department, category string) bool {
	dept := strings.ToLower(department)
	for _, kw := range departmentKeywords[category] {
		if strings.Contains(dept, kw) {
			return true
		}
	}
	return false
}

// reconcileAndJudge applies the rule table and asks the verdict generator to
// refine it. Conclusive rule outcomes bind the risk level regardless of what
// the generator says; when the generator is unreachable on an inconclusive
// outcome, the audit fails high with the conservative fallback verdict.
func (s *Service) reconcileAndJudge(ctx context.Context, record *records.OfficialRecord, issue *issues.Issue, report *reports.Report, classification *oracle.Classification, logs []LogEntry) (*oracle.Verdict, []LogEntry) {
	outcome := Reconcile(record, issue.Category, issue.Status)
	logs = appendLog(logs, LogTypeAction, "Comparing citizen evidence against official record %q",
		record.ProjectName)

	generated, err := s.oracle.GenerateVerdict(ctx, oracle.VerdictRequest{
		Record: &oracle.RecordSnapshot{
			ProjectName: record.ProjectName,
			Department:  record.Department,
			Status:      record.Status,
			Budget:      record.Budget.Formatted,
			Contractor:  record.Contractor.Name,
		},
		Evidence: oracle.Evidence{
			Category:     issue.Category,
			Description:  report.Description,
			ImageURL:     report.ImageURL,
			CVPrediction: classification,
		},
	})

	if err != nil {
		logs = appendLog(logs, LogTypeError, "Verdict generation failed: %v", err)
		if outcome.Conclusive {
			return &oracle.Verdict{
				RiskLevel:  outcome.RiskLevel,
				Confidence: 90,
				Reasoning:  outcome.Rationale,
			}, logs
		}
		return oracle.FallbackVerdict(), logs
	}

	if outcome.Conclusive {
		// The rule binds the level; the generator contributes narrative.
		reasoning := generated.Reasoning
		if reasoning == "" {
			reasoning = outcome.Rationale
		}
		return &oracle.Verdict{
			RiskLevel:  outcome.RiskLevel,
			Confidence: generated.Confidence,
			Reasoning:  reasoning,
		}, logs
	}

	if !validRisk(generated.RiskLevel) {
		generated.RiskLevel = outcome.RiskLevel
	}
	return generated, logs
}

func validRisk(level string) bool {
	switch level {
	case issues.RiskLow, issues.RiskMedium, issues.RiskHigh, issues.RiskCritical:
		return true
	}
	return false
}

func snapshotRecord(record *records.OfficialRecord) *RecordSnapshot {
	return &RecordSnapshot{
		RecordID:    record.ID,
		ProjectName: record.ProjectName,
		Department:  record.Department,
		Status:      record.Status,
		Budget:      record.Budget.Formatted,
		Contractor:  record.Contractor.Name,
	}
}

func appendLog(logs []LogEntry, logType, format string, args ...interface{}) []LogEntry {
	return append(logs, LogEntry{
		Message:   fmt.Sprintf(format, args...),
		Type:      logType,
		Timestamp: time.Now(),
	})
}
