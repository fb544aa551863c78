package audits

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository handles database interactions for the audit ledger
type Repository struct {
	collection *mongo.Collection
}

// NewRepository initializes the repository. The unique index on reportId is
// what makes concurrent audit requests for the same report converge on a
// single ledger entry.
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("audits")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reportId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "issueId", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	})

	return &Repository{collection: collection}
}

// FindByReportID returns the audit for a report, or nil when none exists.
func (r *Repository) FindByReportID(ctx context.Context, reportID primitive.ObjectID) (*Audit, error) {
	var audit Audit
	err := r.collection.FindOne(ctx, bson.M{"reportId": reportID}).Decode(&audit)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &audit, nil
}

// Insert writes a completed audit. When a concurrent run already inserted an
// audit for the same report, the duplicate-key error is swallowed and the
// winning entry is returned instead, so callers always see one canonical
// audit per report.
func (r *Repository) Insert(ctx context.Context, audit *Audit) (*Audit, error) {
	if audit.ID.IsZero() {
		audit.ID = primitive.NewObjectID()
	}
	audit.CreatedAt = time.Now()
	audit.UpdatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, audit)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return r.FindByReportID(ctx, audit.ReportID)
		}
		return nil, err
	}
	return audit, nil
}

// GetAll retrieves ledger entries newest-first
func (r *Repository) GetAll(ctx context.Context) ([]Audit, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []Audit
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// FindByIssueID retrieves all audits recorded against an issue
func (r *Repository) FindByIssueID(ctx context.Context, issueID primitive.ObjectID) ([]Audit, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"issueId": issueID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []Audit
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
