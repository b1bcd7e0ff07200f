package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel"

	"product-catalog/internal/apperr"
	"product-catalog/internal/logger"
	"product-catalog/internal/model"
)

// ProductRepository is the document-store adapter: it owns the products
// collection and maps driver errors onto the shared taxonomy. A missing
// document is apperr.ErrNotFound; any other driver failure surfaces as a
// StorageError without further interpretation.
type ProductRepository struct {
	collection *mongo.Collection
}

var ProductRepositoryTracer = otel.Tracer("ProductRepository")

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{
		collection: db.Collection("products"),
	}
}

func (r *ProductRepository) Insert(ctx context.Context, product *model.Product) error {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.Insert")
	defer span.End()
	logger.Info(ctx, "Repository")

	product.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return apperr.Storage("insert product", err)
	}
	return nil
}

func (r *ProductRepository) FindAll(ctx context.Context, limit int64) ([]model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()
	logger.Info(ctx, "Repository")

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperr.Storage("find products", err)
	}
	defer cursor.Close(ctx)

	var products []model.Product
	for cursor.Next(ctx) {
		var product model.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, apperr.Storage("decode product", err)
		}
		products = append(products, product)
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Storage("iterate products", err)
	}
	return products, nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()
	logger.Info(ctx, "Repository")

	var product model.Product
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("find product", err)
	}
	return &product, nil
}

// UpdateByID replaces the client-owned fields and, when updated.Image is
// non-empty, the image reference. It returns the pre-update document so the
// caller can release the superseded file.
func (r *ProductRepository) UpdateByID(ctx context.Context, id primitive.ObjectID, updated *model.Product) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.UpdateByID")
	defer span.End()
	logger.Info(ctx, "Repository")

	set := bson.M{
		"title":       updated.Title,
		"price":       updated.Price,
		"description": updated.Description,
		"category":    updated.Category,
	}
	if updated.Image != "" {
		set["image"] = updated.Image
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var previous model.Product
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&previous)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("update product", err)
	}
	return &previous, nil
}

// DeleteByID removes the document and returns it, so the caller can clean
// up the associated file.
func (r *ProductRepository) DeleteByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	ctx, span := ProductRepositoryTracer.Start(ctx, "ProductRepository.DeleteByID")
	defer span.End()
	logger.Info(ctx, "Repository")

	var deleted model.Product
	err := r.collection.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&deleted)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage("delete product", err)
	}
	return &deleted, nil
}
