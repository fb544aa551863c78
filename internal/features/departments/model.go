package departments

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Department is a municipal unit that handles one or more issue categories.
type Department struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Zone              string             `bson:"zone" json:"zone"`
	CategoriesHandled []string           `bson:"categoriesHandled" json:"categoriesHandled"`
	AdminID           primitive.ObjectID `bson:"adminId" json:"adminId"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CreateDepartmentRequest is the payload for creating a department.
type CreateDepartmentRequest struct {
	Name              string   `json:"name" binding:"required"`
	Zone              string   `json:"zone" binding:"required"`
	CategoriesHandled []string `json:"categoriesHandled" binding:"required,min=1"`
}
