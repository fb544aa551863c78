package issues

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
)

// Issue categories
const (
	CategoryPothole     = "pothole"
	CategoryTraffic     = "traffic"
	CategoryWaterSupply = "water supply"
	CategoryGarbage     = "garbage"
	CategoryStreetlight = "streetlight"
)

// Issue statuses
const (
	StatusSubmitted  = "Submitted"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
)

// Audit verification statuses
const (
	VerificationPending     = "Pending"
	VerificationVerified    = "Verified"
	VerificationDiscrepancy = "Discrepancy"
	VerificationNoRecord    = "No Record"
)

// Risk levels
const (
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// DuplicateRadiusMeters is how close (same category, not resolved) a new
// report must land to be absorbed into an existing issue.
const DuplicateRadiusMeters = 50.0

// AuditVerification is the embedded summary of the latest audit outcome.
type AuditVerification struct {
	Status           string              `bson:"status" json:"status"`
	RiskLevel        string              `bson:"riskLevel" json:"riskLevel"`
	OfficialRecordID *primitive.ObjectID `bson:"officialRecordId,omitempty" json:"officialRecordId,omitempty"`
	Reasoning        string              `bson:"reasoning,omitempty" json:"reasoning,omitempty"`
	AIAnalysis       interface{}         `bson:"aiAnalysis,omitempty" json:"aiAnalysis,omitempty"`
}

// Issue is a civic complaint location-cluster. At most one open issue exists
// per (50m cluster, category); the resolver enforces this at creation time.
type Issue struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title              string               `bson:"title" json:"title"`
	Category           string               `bson:"category" json:"category"`
	Status             string               `bson:"status" json:"status"`
	Location           geoutil.Point        `bson:"location" json:"location"`
	Address            string               `bson:"address" json:"address"`
	FirstReportedBy    primitive.ObjectID   `bson:"firstReportedBy" json:"firstReportedBy"`
	DefaultImageURL    string               `bson:"defaultImageUrl,omitempty" json:"defaultImageUrl,omitempty"`
	DefaultDescription string               `bson:"defaultDescription" json:"defaultDescription"`
	ReportIDs          []primitive.ObjectID `bson:"reportIds" json:"reportIds"`
	FollowerIDs        []primitive.ObjectID `bson:"followerIds" json:"followerIds"`
	AssignedTo         *primitive.ObjectID  `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	AuditVerification  AuditVerification    `bson:"auditVerification" json:"auditVerification"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// UpdateStatusRequest is the admin payload for an issue status transition.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// AssignRequest is the admin payload for department assignment.
type AssignRequest struct {
	DepartmentID string `json:"departmentId" binding:"required"`
}

// FollowRequest is the payload for following an issue.
type FollowRequest struct {
	IssueID string `json:"issueId" binding:"required"`
}
