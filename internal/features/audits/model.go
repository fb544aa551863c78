package audits

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusCompleted is the only audit status: entries are written once the
// pipeline finishes, never in a partial state.
const StatusCompleted = "completed"

// Log entry types, in the order the pipeline emits them.
const (
	LogTypeSystem  = "system"
	LogTypeAction  = "action"
	LogTypeSuccess = "success"
	LogTypeWarning = "warning"
	LogTypeError   = "error"
)

// LogEntry is one line of the audit's pipeline transcript.
type LogEntry struct {
	Message   string    `bson:"message" json:"message"`
	Type      string    `bson:"type" json:"type"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// RecordSnapshot freezes the matched official record at audit time so the
// ledger stays meaningful even if the record is later edited or deleted.
type RecordSnapshot struct {
	RecordID    primitive.ObjectID `bson:"recordId" json:"recordId"`
	ProjectName string             `bson:"projectName" json:"projectName"`
	Department  string             `bson:"department" json:"department"`
	Status      string             `bson:"status" json:"status"`
	Budget      string             `bson:"budget" json:"budget"`
	Contractor  string             `bson:"contractor" json:"contractor"`
}

// EvidenceSnapshot freezes the citizen-submitted side of the comparison.
type EvidenceSnapshot struct {
	IssueID      primitive.ObjectID `bson:"issueId" json:"issueId"`
	Category     string             `bson:"category" json:"category"`
	Description  string             `bson:"description" json:"description"`
	ImageURL     string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CVPrediction string             `bson:"cvPrediction,omitempty" json:"cvPrediction,omitempty"`
	CVConfidence float64            `bson:"cvConfidence,omitempty" json:"cvConfidence,omitempty"`
}

// Audit is one append-only ledger entry: the outcome of cross-checking a
// citizen report against the official record registry. At most one audit
// exists per report; a unique index on reportId enforces this.
type Audit struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ReportID       primitive.ObjectID `bson:"reportId" json:"reportId"`
	IssueID        primitive.ObjectID `bson:"issueId" json:"issueId"`
	Status         string             `bson:"status" json:"status"`
	Verdict        string             `bson:"verdict" json:"verdict"`
	Confidence     float64            `bson:"confidence" json:"confidence"`
	Reasoning      string             `bson:"reasoning" json:"reasoning"`
	OfficialRecord *RecordSnapshot    `bson:"officialRecord,omitempty" json:"officialRecord,omitempty"`
	Evidence       EvidenceSnapshot   `bson:"evidence" json:"evidence"`
	AILogs         []LogEntry         `bson:"aiLogs" json:"aiLogs"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
