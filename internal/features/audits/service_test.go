package audits

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/features/issues"
	"github.com/aryanracha/civiclens/internal/features/records"
	"github.com/aryanracha/civiclens/internal/features/reports"
	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
	"github.com/aryanracha/civiclens/internal/pkg/oracle"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

type fakeAuditStore struct {
	byReport map[primitive.ObjectID]*Audit
	inserts  int
}

func newFakeAuditStore() *fakeAuditStore {
	return &fakeAuditStore{byReport: map[primitive.ObjectID]*Audit{}}
}

func (f *fakeAuditStore) FindByReportID(_ context.Context, reportID primitive.ObjectID) (*Audit, error) {
	return f.byReport[reportID], nil
}

// Insert mimics the unique reportId index: a concurrent winner's entry is
// returned instead of writing a second one.
func (f *fakeAuditStore) Insert(_ context.Context, audit *Audit) (*Audit, error) {
	f.inserts++
	if existing, ok := f.byReport[audit.ReportID]; ok {
		return existing, nil
	}
	audit.ID = primitive.NewObjectID()
	f.byReport[audit.ReportID] = audit
	return audit, nil
}

type fakeReportFinder struct {
	reports map[primitive.ObjectID]*reports.Report
}

func (f *fakeReportFinder) GetByID(_ context.Context, id primitive.ObjectID) (*reports.Report, error) {
	r, ok := f.reports[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return r, nil
}

type fakeIssueStore struct {
	issues        map[primitive.ObjectID]*issues.Issue
	verifications map[primitive.ObjectID]issues.AuditVerification
}

func newFakeIssueStore() *fakeIssueStore {
	return &fakeIssueStore{
		issues:        map[primitive.ObjectID]*issues.Issue{},
		verifications: map[primitive.ObjectID]issues.AuditVerification{},
	}
}

func (f *fakeIssueStore) GetByID(_ context.Context, id primitive.ObjectID) (*issues.Issue, error) {
	issue, ok := f.issues[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return issue, nil
}

func (f *fakeIssueStore) SetAuditVerification(_ context.Context, id primitive.ObjectID, v issues.AuditVerification) error {
	f.verifications[id] = v
	return nil
}

// fakeMatcher applies $near semantics: records within maxMeters of the
// point, closest first.
type fakeMatcher struct {
	records []records.OfficialRecord
	err     error
}

func (f *fakeMatcher) FindNearby(_ context.Context, lng, lat, maxMeters float64) ([]records.OfficialRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	type candidate struct {
		record records.OfficialRecord
		dist   float64
	}
	var within []candidate
	for _, r := range f.records {
		d := geoutil.HaversineMeters(lat, lng, r.Location.Lat(), r.Location.Lng())
		if d <= maxMeters {
			within = append(within, candidate{record: r, dist: d})
		}
	}
	for i := 0; i < len(within); i++ {
		for j := i + 1; j < len(within); j++ {
			if within[j].dist < within[i].dist {
				within[i], within[j] = within[j], within[i]
			}
		}
	}
	out := make([]records.OfficialRecord, len(within))
	for i, c := range within {
		out[i] = c.record
	}
	return out, nil
}

type fakeOracle struct {
	verdict        *oracle.Verdict
	verdictErr     error
	classification *oracle.Classification
	classifyErr    error
	verdictCalls   int
	classifyCalls  int
}

func (f *fakeOracle) ExtractDocument(_ context.Context, _ []byte, _ string) (*oracle.DocumentFields, error) {
	return nil, errors.New("not used in audits")
}

func (f *fakeOracle) GenerateVerdict(_ context.Context, _ oracle.VerdictRequest) (*oracle.Verdict, error) {
	f.verdictCalls++
	return f.verdict, f.verdictErr
}

func (f *fakeOracle) ClassifyImage(_ context.Context, _ string) (*oracle.Classification, error) {
	f.classifyCalls++
	return f.classification, f.classifyErr
}

type pipeline struct {
	store   *fakeAuditStore
	reports *fakeReportFinder
	issues  *fakeIssueStore
	matcher *fakeMatcher
	oracle  *fakeOracle
	svc     *Service

	reportID primitive.ObjectID
	issueID  primitive.ObjectID
}

func newPipeline(category, issueStatus string, nearby ...records.OfficialRecord) *pipeline {
	p := &pipeline{
		store:    newFakeAuditStore(),
		reports:  &fakeReportFinder{reports: map[primitive.ObjectID]*reports.Report{}},
		issues:   newFakeIssueStore(),
		matcher:  &fakeMatcher{records: nearby},
		oracle:   &fakeOracle{verdict: &oracle.Verdict{RiskLevel: issues.RiskMedium, Confidence: 70, Reasoning: "generated reasoning"}},
		reportID: primitive.NewObjectID(),
		issueID:  primitive.NewObjectID(),
	}

	p.issues.issues[p.issueID] = &issues.Issue{
		ID:       p.issueID,
		Title:    "Pothole on MG Road",
		Category: category,
		Status:   issueStatus,
		Location: geoutil.NewPoint(19.0760, 72.8777),
	}
	p.reports.reports[p.reportID] = &reports.Report{
		ID:          p.reportID,
		IssueID:     p.issueID,
		UserID:      primitive.NewObjectID(),
		ImageURL:    "https://res.cloudinary.com/demo/pothole.jpg",
		Description: "Deep pothole, axle-breaking",
	}

	p.svc = NewService(p.store, p.reports, p.issues, p.matcher, p.oracle)
	return p
}

func recordAt(lat, lng float64, status, department string) records.OfficialRecord {
	return records.OfficialRecord{
		ID:          primitive.NewObjectID(),
		ProjectName: "MG Road Resurfacing",
		Department:  department,
		Status:      status,
		Budget:      records.Budget{Amount: 855000000, Currency: "INR", Formatted: "₹85,50,00,000"},
		Contractor:  records.Contractor{Name: "Apex Infra"},
		Location:    geoutil.NewPoint(lat, lng),
	}
}

func TestRun_CompletedRecordWithPotholeEvidenceIsHighRisk(t *testing.T) {
	p := newPipeline(issues.CategoryPothole, issues.StatusSubmitted,
		recordAt(19.0761, 72.8777, records.StatusCompleted, "Public Works Department"))

	audit, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	assert.Equal(t, issues.RiskHigh, audit.Verdict)
	assert.Equal(t, StatusCompleted, audit.Status)
	require.NotNil(t, audit.OfficialRecord)
	assert.Equal(t, "MG Road Resurfacing", audit.OfficialRecord.ProjectName)

	verification := p.issues.verifications[p.issueID]
	assert.Equal(t, issues.VerificationDiscrepancy, verification.Status)
	assert.Equal(t, issues.RiskHigh, verification.RiskLevel)
	require.NotNil(t, verification.OfficialRecordID)
	assert.Equal(t, audit.OfficialRecord.RecordID, *verification.OfficialRecordID)
}

func TestRun_PlannedRecordWithSubmittedIssueIsLowRisk(t *testing.T) {
	p := newPipeline(issues.CategoryPothole, issues.StatusSubmitted,
		recordAt(19.0761, 72.8777, records.StatusPlanned, "Public Works Department"))

	audit, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	assert.Equal(t, issues.RiskLow, audit.Verdict)
	assert.Equal(t, issues.VerificationVerified, p.issues.verifications[p.issueID].Status)
}

func TestRun_NeutralCaseUsesGeneratedVerdict(t *testing.T) {
	p := newPipeline(issues.CategoryGarbage, issues.StatusInProgress,
		recordAt(19.0761, 72.8777, records.StatusInProgress, "Sanitation Department"))
	p.oracle.verdict = &oracle.Verdict{RiskLevel: issues.RiskMedium, Confidence: 72, Reasoning: "status plausible but budget unusually high"}

	audit, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	assert.Equal(t, issues.RiskMedium, audit.Verdict)
	assert.Equal(t, 72.0, audit.Confidence)
	assert.Equal(t, "status plausible but budget unusually high", audit.Reasoning)
	assert.Equal(t, 1, p.oracle.verdictCalls)
}

func TestRun_GeneratorFailureOnNeutralCaseFailsHigh(t *testing.T) {
	p := newPipeline(issues.CategoryGarbage, issues.StatusInProgress,
		recordAt(19.0761, 72.8777, records.StatusInProgress, "Sanitation Department"))
	p.oracle.verdict = nil
	p.oracle.verdictErr = errors.New("model overloaded")

	audit, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	fallback := oracle.FallbackVerdict()
	assert.Equal(t, fallback.RiskLevel, audit.Verdict)
	assert.Equal(t, fallback.Confidence, audit.Confidence)
	assert.Equal(t, issues.VerificationDiscrepancy, p.issues.verifications[p.issueID].Status)
}

func TestRun_GeneratorFailureOnConclusiveRuleKeepsRuleVerdict(t *testing.T) {
	p := newPipeline(issues.CategoryPothole, issues.StatusSubmitted,
		recordAt(19.0761, 72.8777, records.StatusCompleted, "Public Works Department"))
	p.oracle.verdict = nil
	p.oracle.verdictErr = errors.New("model overloaded")

	audit, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	assert.Equal(t, issues.RiskHigh, audit.Verdict)
	assert.NotEmpty(t, audit.Reasoning)
}

func TestRun_NoRecordWithinRadius(t *testing.T) {
	// The only record sits ~1.1km away, outside the 500m match radius.
	p := newPipeline(issues.CategoryPothole, issues.StatusSubmitted,
		recordAt(19.0860, 72.8777, records.StatusCompleted, "Public Works Department"))

	audit, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	assert.Nil(t, audit.OfficialRecord)
	assert.Equal(t, issues.RiskMedium, audit.Verdict)
	assert.Equal(t, issues.VerificationNoRecord, p.issues.verifications[p.issueID].Status)
	assert.Zero(t, p.oracle.verdictCalls, "verdict generation is skipped when no record matches")
}

func TestRun_PrefersDepartmentThatOwnsTheCategory(t *testing.T) {
	near := recordAt(19.07601, 72.8777, records.StatusInProgress, "Parks and Recreation")
	far := recordAt(19.0763, 72.8777, records.StatusCompleted, "Public Works Department")
	p := newPipeline(issues.CategoryPothole, issues.StatusSubmitted, near, far)

	audit, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	require.NotNil(t, audit.OfficialRecord)
	assert.Equal(t, "Public Works Department", audit.OfficialRecord.Department,
		"an in-radius record from the owning department beats a nearer unrelated one")
}

func TestRun_IsIdempotentPerReport(t *testing.T) {
	p := newPipeline(issues.CategoryPothole, issues.StatusSubmitted,
		recordAt(19.0761, 72.8777, records.StatusCompleted, "Public Works Department"))

	first, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)
	second, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, p.store.inserts, "re-running must not append a second ledger entry")
	assert.Equal(t, 1, p.oracle.verdictCalls, "re-running must not re-invoke the verdict generator")
}

func TestRun_UnknownReport(t *testing.T) {
	p := newPipeline(issues.CategoryPothole, issues.StatusSubmitted)

	_, err := p.svc.Run(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestRun_LogTranscriptOrder(t *testing.T) {
	p := newPipeline(issues.CategoryPothole, issues.StatusSubmitted,
		recordAt(19.0761, 72.8777, records.StatusCompleted, "Public Works Department"))
	p.oracle.classification = &oracle.Classification{Prediction: "pothole", Probability: 0.93}

	audit, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	types := make([]string, len(audit.AILogs))
	for i, entry := range audit.AILogs {
		types[i] = entry.Type
		assert.False(t, entry.Timestamp.IsZero())
	}
	// initiation, record search, record match, CV classification,
	// comparison, verdict, persistence.
	assert.Equal(t, []string{
		LogTypeSystem,
		LogTypeAction,
		LogTypeSuccess,
		LogTypeAction,
		LogTypeAction,
		LogTypeSuccess,
		LogTypeSystem,
	}, types)
}

func TestRun_ClassificationFailureDegradesToWarning(t *testing.T) {
	p := newPipeline(issues.CategoryPothole, issues.StatusSubmitted,
		recordAt(19.0761, 72.8777, records.StatusCompleted, "Public Works Department"))
	p.oracle.classifyErr = errors.New("cv service down")

	audit, err := p.svc.Run(context.Background(), p.reportID)
	require.NoError(t, err)

	assert.Equal(t, issues.RiskHigh, audit.Verdict, "a failed classification does not block the audit")
	assert.Empty(t, audit.Evidence.CVPrediction)

	var warned bool
	for _, entry := range audit.AILogs {
		if entry.Type == LogTypeWarning {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestReconcile_RuleTable(t *testing.T) {
	completed := recordAt(19, 72, records.StatusCompleted, "Public Works Department")
	planned := recordAt(19, 72, records.StatusPlanned, "Public Works Department")
	inProgress := recordAt(19, 72, records.StatusInProgress, "Public Works Department")

	cases := []struct {
		name        string
		record      records.OfficialRecord
		category    string
		issueStatus string
		risk        string
		conclusive  bool
	}{
		{"completed vs pothole", completed, issues.CategoryPothole, issues.StatusSubmitted, issues.RiskHigh, true},
		{"planned vs submitted", planned, issues.CategoryGarbage, issues.StatusSubmitted, issues.RiskLow, true},
		{"in progress is neutral", inProgress, issues.CategoryPothole, issues.StatusSubmitted, issues.RiskMedium, false},
		{"completed vs garbage is neutral", completed, issues.CategoryGarbage, issues.StatusInProgress, issues.RiskMedium, false},
		{"planned vs in-progress issue is neutral", planned, issues.CategoryPothole, issues.StatusInProgress, issues.RiskMedium, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := Reconcile(&tc.record, tc.category, tc.issueStatus)
			assert.Equal(t, tc.risk, outcome.RiskLevel)
			assert.Equal(t, tc.conclusive, outcome.Conclusive)
			assert.NotEmpty(t, outcome.Rationale)
		})
	}
}
