package departments

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/aryanracha/civiclens/pkg/errors"
)

// Repository handles database interactions for the departments feature
type Repository struct {
	collection *mongo.Collection
}

// NewRepository initializes the repository and creates necessary indexes
func NewRepository(db *mongo.Database) *Repository {
	collection := db.Collection("departments")

	_, _ = collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "categoriesHandled", Value: 1}},
		},
	})

	return &Repository{collection: collection}
}

// Create inserts a new department
func (r *Repository) Create(ctx context.Context, dept *Department) error {
	dept.CreatedAt = time.Now()
	dept.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, dept)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicate
		}
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		dept.ID = oid
	}
	return nil
}

// GetAll returns every department
func (r *Repository) GetAll(ctx context.Context) ([]Department, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var depts []Department
	if err = cursor.All(ctx, &depts); err != nil {
		return nil, err
	}
	return depts, nil
}

// GetByID finds a department by its ID
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Department, error) {
	var dept Department
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&dept)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &dept, nil
}

// FindByCategory returns the first department whose categoriesHandled set
// contains the given category, or (zero, false) when none does.
func (r *Repository) FindByCategory(ctx context.Context, category string) (primitive.ObjectID, bool, error) {
	var dept Department
	err := r.collection.FindOne(ctx, bson.M{"categoriesHandled": category}).Decode(&dept)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, false, nil
		}
		return primitive.NilObjectID, false, err
	}
	return dept.ID, true, nil
}
