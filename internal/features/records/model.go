package records

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
)

// Official record statuses as they appear in government project documents.
const (
	StatusCompleted        = "Completed"
	StatusInProgress       = "In Progress"
	StatusPlanned          = "Planned"
	StatusStalled          = "Stalled"
	StatusActive           = "Active"
	StatusMaintenancePhase = "Maintenance Phase"
	StatusRecentlyRepaired = "Recently Repaired"
)

// MatchRadiusMeters is how far from a citizen issue an official record may
// sit and still be considered the project covering that location.
const MatchRadiusMeters = 500.0

// Budget holds the project's sanctioned budget.
type Budget struct {
	Amount    float64 `bson:"amount" json:"amount"`
	Currency  string  `bson:"currency" json:"currency"`
	Formatted string  `bson:"formatted,omitempty" json:"formatted,omitempty"`
}

// Contractor identifies the company awarded the work.
type Contractor struct {
	Name        string `bson:"name" json:"name"`
	ContactInfo string `bson:"contactInfo,omitempty" json:"contactInfo,omitempty"`
}

// OfficialRecord is a government project record extracted from an uploaded
// contract document.
type OfficialRecord struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProjectName    string             `bson:"projectName" json:"projectName"`
	Department     string             `bson:"department" json:"department"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	Status         string             `bson:"status" json:"status"`
	Budget         Budget             `bson:"budget" json:"budget"`
	Contractor     Contractor         `bson:"contractor" json:"contractor"`
	StartDate      *time.Time         `bson:"startDate,omitempty" json:"startDate,omitempty"`
	CompletionDate *time.Time         `bson:"completionDate,omitempty" json:"completionDate,omitempty"`
	Location       geoutil.Point      `bson:"location" json:"location"`
	Address        string             `bson:"address,omitempty" json:"address,omitempty"`
	DocumentURL    string             `bson:"documentUrl,omitempty" json:"documentUrl,omitempty"`
	UploadedBy     primitive.ObjectID `bson:"uploadedBy" json:"uploadedBy"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
