package issues

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aryanracha/civiclens/internal/pkg/geoutil"
	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

// Repository handles database interactions for the issues feature
type Repository struct {
	collection *mongo.Collection
}

// NewRepository initializes the repository and creates necessary indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("issues")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
		{
			Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "createdAt", Value: -1}},
		},
	})

	return &Repository{collection: collection}
}

// FindNearbyOpen returns the nearest non-resolved issue of the given
// category within maxMeters of the point, or nil when none exists. $near
// sorts candidates by ascending distance, so the first document is the
// closest match.
func (r *Repository) FindNearbyOpen(ctx context.Context, lng, lat float64, category string, maxMeters float64) (*Issue, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": maxMeters,
			},
		},
		"category": category,
		"status":   bson.M{"$ne": StatusResolved},
	}

	var issue Issue
	err := r.collection.FindOne(ctx, filter).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

// Insert creates a new issue
func (r *Repository) Insert(ctx context.Context, issue *Issue) error {
	if issue.ID.IsZero() {
		issue.ID = primitive.NewObjectID()
	}
	issue.CreatedAt = time.Now()
	issue.UpdatedAt = time.Now()
	if issue.ReportIDs == nil {
		issue.ReportIDs = []primitive.ObjectID{}
	}
	if issue.FollowerIDs == nil {
		issue.FollowerIDs = []primitive.ObjectID{}
	}

	_, err := r.collection.InsertOne(ctx, issue)
	return err
}

// PushReportID appends a report id to the issue's ordered report list
func (r *Repository) PushReportID(ctx context.Context, issueID, reportID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": issueID},
		bson.M{
			"$push": bson.M{"reportIds": reportID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// GetByID finds an issue by its ID
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Issue, error) {
	var issue Issue
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &issue, nil
}

// GetAll retrieves issues newest-first
func (r *Repository) GetAll(ctx context.Context) ([]Issue, error) {
	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []Issue
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// GetByIDs retrieves issues for the given ids, newest-first
func (r *Repository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]Issue, error) {
	if len(ids) == 0 {
		return []Issue{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []Issue
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// FindByUser retrieves issues the user first reported or follows,
// newest-first.
func (r *Repository) FindByUser(ctx context.Context, userID primitive.ObjectID) ([]Issue, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"firstReportedBy": userID},
			{"followerIds": userID},
		},
	}

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []Issue
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CountAll returns the total number of issues.
func (r *Repository) CountAll(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// CountByStatus returns the number of issues in the given status.
func (r *Repository) CountByStatus(ctx context.Context, status string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"status": status})
}

// CountByRiskLevels returns the number of issues whose latest audit landed
// on any of the given risk levels.
func (r *Repository) CountByRiskLevels(ctx context.Context, levels []string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"auditVerification.riskLevel": bson.M{"$in": levels},
	})
}

// CountPendingAudits returns the number of issues not yet audited.
func (r *Repository) CountPendingAudits(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{
		"auditVerification.status": VerificationPending,
	})
}

// FindRecent returns the newest issues for the dashboard live feed, trimmed
// to the fields the feed renders.
func (r *Repository) FindRecent(ctx context.Context, limit int) ([]Issue, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"title": 1, "category": 1, "status": 1, "createdAt": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []Issue
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// FindForMap retrieves issues for map display, optionally filtered by
// category, status and a bounding circle. The circle radius is expressed
// in angular radians for $centerSphere.
func (r *Repository) FindForMap(ctx context.Context, category, status string, center *geoutil.Point, radiusKm float64) ([]Issue, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	if status != "" {
		filter["status"] = status
	}
	if center != nil && radiusKm > 0 {
		filter["location"] = bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": []interface{}{
					center.Coordinates,
					geoutil.KmToRadians(radiusKm),
				},
			},
		}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []Issue
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// FindNearby returns issues within maxMeters of the point, closest first.
func (r *Repository) FindNearby(ctx context.Context, lng, lat, maxMeters float64) ([]Issue, error) {
	filter := bson.M{
		"location": bson.M{
			"$near": bson.M{
				"$geometry": bson.M{
					"type":        "Point",
					"coordinates": []float64{lng, lat},
				},
				"$maxDistance": maxMeters,
			},
		},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []Issue
	if err = cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateStatus transitions an issue's status
func (r *Repository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) (*Issue, error) {
	return r.findOneAndSet(ctx, id, bson.M{"status": status})
}

// Assign sets the issue's department
func (r *Repository) Assign(ctx context.Context, id, departmentID primitive.ObjectID) (*Issue, error) {
	return r.findOneAndSet(ctx, id, bson.M{"assignedTo": departmentID})
}

// SetAuditVerification stores the embedded audit summary on the issue
func (r *Repository) SetAuditVerification(ctx context.Context, id primitive.ObjectID, v AuditVerification) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"auditVerification": v, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Follow adds a follower to the issue, at most once
func (r *Repository) Follow(ctx context.Context, issueID, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": issueID},
		bson.M{
			"$addToSet": bson.M{"followerIds": userID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	if result.ModifiedCount == 0 {
		return apperrors.ErrDuplicate
	}
	return nil
}

// Unfollow removes a follower from the issue
func (r *Repository) Unfollow(ctx context.Context, issueID, userID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": issueID},
		bson.M{
			"$pull": bson.M{"followerIds": userID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Delete removes an issue permanently (admin action)
func (r *Repository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *Repository) findOneAndSet(ctx context.Context, id primitive.ObjectID, updates bson.M) (*Issue, error) {
	updates["updatedAt"] = time.Now()

	var issue Issue
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": updates},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&issue)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &issue, nil
}
