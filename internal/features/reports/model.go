package reports

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is a single citizen submission evidencing an issue. A report always
// references an existing issue; a user may file at most one report per issue.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	IssueID     primitive.ObjectID `bson:"issueId" json:"issueId"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	ImageURL    string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Description string             `bson:"description" json:"description"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UpdateReportRequest is the admin edit payload.
type UpdateReportRequest struct {
	Description *string `json:"description" binding:"omitempty,min=1"`
	ImageURL    *string `json:"imageUrl" binding:"omitempty,url"`
}
