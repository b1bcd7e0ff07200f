package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// DefaultImageURL is the placeholder assigned when a product is created or
// kept without an uploaded image.
const DefaultImageURL = "https://images.pexels.com/photos/417074/pexels-photo-417074.jpeg?cs=srgb&dl=pexels-souvenirpixels-417074.jpg&fm=jpg"

type Product struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Price       float64            `json:"price" bson:"price"`
	Description string             `json:"description" bson:"description"`
	Category    string             `json:"category" bson:"category"`
	Image       string             `json:"image" bson:"image"`
}

// ProductInput carries the client-supplied fields of a create or update
// request. The image reference is never part of it; only the lifecycle
// service assigns image paths.
type ProductInput struct {
	Title       string  `validate:"required"`
	Price       float64 `validate:"required"`
	Description string  `validate:"required"`
	Category    string  `validate:"required"`
}
