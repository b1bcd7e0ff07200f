package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	"product-catalog/internal/apperr"
	"product-catalog/internal/logger"
	"product-catalog/internal/model"
	"product-catalog/internal/service"
	"product-catalog/internal/storage"
)

type ProductHandler struct {
	service  *service.ProductService
	maxBytes int64
}

var ProductHandlerTracer = otel.Tracer("HttpProductHandler")

func NewProductHandler(service *service.ProductService, maxUploadBytes int64) *ProductHandler {
	return &ProductHandler{
		service:  service,
		maxBytes: maxUploadBytes,
	}
}

// parseForm reads the multipart body into a ProductInput and an optional
// upload descriptor. The returned closer releases the temporary file and
// must be called after the service is done with the upload.
func (h *ProductHandler) parseForm(w http.ResponseWriter, r *http.Request) (*model.ProductInput, *storage.Upload, func(), error) {
	// Form fields plus multipart framing ride on top of the file cap.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return nil, nil, nil, apperr.Validation("invalid multipart form: %v", err)
	}

	in := &model.ProductInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
	}
	if raw := r.FormValue("price"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, nil, nil, apperr.Validation("price must be a number")
		}
		in.Price = price
	}

	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, func() {}, nil
	}
	if err != nil {
		return nil, nil, nil, apperr.Validation("invalid image upload: %v", err)
	}

	up := &storage.Upload{
		Reader:      file,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Filename:    header.Filename,
	}
	return in, up, func() { _ = file.Close() }, nil
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, span := ProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Create")
	defer span.End()
	logger.Info(ctx, "Handler")

	in, up, closeUpload, err := h.parseForm(w, r)
	if err != nil {
		writeError(w, err, "Failed to create product")
		return
	}
	defer closeUpload()

	created, err := h.service.Create(ctx, in, up)
	if err != nil {
		writeError(w, err, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, "Product created successfully", created)
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := ProductHandlerTracer.Start(r.Context(), "HttpProductHandler.List")
	defer span.End()
	logger.Info(ctx, "Handler")

	products, err := h.service.List(ctx)
	if err != nil {
		writeError(w, err, "Failed to retrieve products")
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	ctx, span := ProductHandlerTracer.Start(r.Context(), "HttpProductHandler.GetByID")
	defer span.End()
	logger.Info(ctx, "Handler")

	product, err := h.service.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "Failed to retrieve product")
		return
	}
	writeJSON(w, http.StatusOK, "Product retrieved successfully", product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, span := ProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Update")
	defer span.End()
	logger.Info(ctx, "Handler")

	in, up, closeUpload, err := h.parseForm(w, r)
	if err != nil {
		writeError(w, err, "Failed to update product")
		return
	}
	defer closeUpload()

	updated, err := h.service.Update(ctx, chi.URLParam(r, "id"), in, up)
	if err != nil {
		writeError(w, err, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, "Product updated successfully", updated)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := ProductHandlerTracer.Start(r.Context(), "HttpProductHandler.Delete")
	defer span.End()
	logger.Info(ctx, "Handler")

	if err := h.service.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, "Product deleted successfully", nil)
}
