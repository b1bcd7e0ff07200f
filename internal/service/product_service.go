package service

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel"

	"product-catalog/internal/apperr"
	"product-catalog/internal/logger"
	"product-catalog/internal/model"
	"product-catalog/internal/storage"
)

// ProductStore is the document-store side of the product lifecycle.
type ProductStore interface {
	Insert(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, limit int64) ([]model.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
	UpdateByID(ctx context.Context, id primitive.ObjectID, updated *model.Product) (*model.Product, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error)
}

// FileStore is the file side. Store yields the reference recorded on the
// product; Delete by that reference must tolerate the default placeholder
// and missing files.
type FileStore interface {
	Store(up *storage.Upload) (string, error)
	Delete(ref string) error
}

// ProductService keeps a product record and its image file consistent
// across create, update and delete. The file and the document are separate
// resources with no shared transaction; when the document write fails after
// a file was stored, the file is removed again before the error surfaces.
type ProductService struct {
	repo         ProductStore
	files        FileStore
	defaultImage string
	listLimit    int64
	validate     *validator.Validate
}

var ProductServiceTracer = otel.Tracer("ProductService")

func NewProductService(repo ProductStore, files FileStore, defaultImage string, listLimit int64) *ProductService {
	return &ProductService{
		repo:         repo,
		files:        files,
		defaultImage: defaultImage,
		listLimit:    listLimit,
		validate:     validator.New(),
	}
}

func (s *ProductService) checkInput(in *model.ProductInput) error {
	if err := s.validate.Struct(in); err != nil {
		return apperr.Validation("please fill all required fields")
	}
	return nil
}

// Create stores the optional upload first, then inserts the record carrying
// its reference. An insert failure triggers the compensating delete of the
// just-stored file so no orphan remains.
func (s *ProductService) Create(ctx context.Context, in *model.ProductInput, up *storage.Upload) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Create")
	defer span.End()
	logger.Info(ctx, "Service")

	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	image := s.defaultImage
	if up != nil {
		ref, err := s.files.Store(up)
		if err != nil {
			return nil, err
		}
		image = ref
	}

	product := &model.Product{
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		Image:       image,
	}

	if err := s.repo.Insert(ctx, product); err != nil {
		if up != nil {
			s.discard(ctx, image)
		}
		return nil, err
	}

	return product, nil
}

func (s *ProductService) List(ctx context.Context) ([]model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.List")
	defer span.End()
	logger.Info(ctx, "Service")

	return s.repo.FindAll(ctx, s.listLimit)
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.GetByID")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.ErrNotFound
	}
	return s.repo.FindByID(ctx, objID)
}

// Update replaces the record's fields and optionally its image. A new file
// is stored before the document update; if the update misses or fails, the
// new file is removed again. On success the superseded file is released
// best-effort.
func (s *ProductService) Update(ctx context.Context, id string, in *model.ProductInput, up *storage.Upload) (*model.Product, error) {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Update")
	defer span.End()
	logger.Info(ctx, "Service")

	if err := s.checkInput(in); err != nil {
		return nil, err
	}

	newImage := ""
	if up != nil {
		ref, err := s.files.Store(up)
		if err != nil {
			return nil, err
		}
		newImage = ref
	}

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		if newImage != "" {
			s.discard(ctx, newImage)
		}
		return nil, apperr.ErrNotFound
	}

	previous, err := s.repo.UpdateByID(ctx, objID, &model.Product{
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		Image:       newImage,
	})
	if err != nil {
		if newImage != "" {
			s.discard(ctx, newImage)
		}
		return nil, err
	}

	image := previous.Image
	if newImage != "" {
		image = newImage
		if previous.Image != s.defaultImage && previous.Image != newImage {
			s.discard(ctx, previous.Image)
		}
	}

	return &model.Product{
		ID:          objID,
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Category:    in.Category,
		Image:       image,
	}, nil
}

// Delete removes the record first, then releases its file best-effort. The
// default placeholder never triggers a file deletion.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	ctx, span := ProductServiceTracer.Start(ctx, "ProductService.Delete")
	defer span.End()
	logger.Info(ctx, "Service")

	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return apperr.ErrNotFound
	}

	deleted, err := s.repo.DeleteByID(ctx, objID)
	if err != nil {
		return err
	}

	if deleted.Image != "" && deleted.Image != s.defaultImage {
		s.discard(ctx, deleted.Image)
	}
	return nil
}

// discard removes a file that is orphaned or superseded. Failures are
// logged and never change the outcome of the enclosing operation.
func (s *ProductService) discard(ctx context.Context, ref string) {
	if err := s.files.Delete(ref); err != nil {
		logger.Warn(ctx, "Failed to delete image file",
			slog.String("ref", ref),
			slog.String("error", err.Error()),
		)
	}
}
