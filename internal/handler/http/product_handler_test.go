package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"product-catalog/internal/apperr"
	"product-catalog/internal/model"
	"product-catalog/internal/service"
	"product-catalog/internal/storage"
)

// memStore is an in-memory ProductStore for exercising the full
// router/handler/service path without a database.
type memStore struct {
	products  map[primitive.ObjectID]*model.Product
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{products: make(map[primitive.ObjectID]*model.Product)}
}

func (m *memStore) Insert(ctx context.Context, p *model.Product) error {
	if m.insertErr != nil {
		return apperr.Storage("insert product", m.insertErr)
	}
	p.ID = primitive.NewObjectID()
	clone := *p
	m.products[p.ID] = &clone
	return nil
}

func (m *memStore) FindAll(ctx context.Context, limit int64) ([]model.Product, error) {
	var out []model.Product
	for _, p := range m.products {
		out = append(out, *p)
		if limit > 0 && int64(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (m *memStore) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memStore) UpdateByID(ctx context.Context, id primitive.ObjectID, updated *model.Product) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	previous := *p
	p.Title = updated.Title
	p.Price = updated.Price
	p.Description = updated.Description
	p.Category = updated.Category
	if updated.Image != "" {
		p.Image = updated.Image
	}
	return &previous, nil
}

func (m *memStore) DeleteByID(ctx context.Context, id primitive.ObjectID) (*model.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	delete(m.products, id)
	return p, nil
}

type testEnv struct {
	router    http.Handler
	repo      *memStore
	uploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewDiskStore(dir, 1<<20)
	require.NoError(t, err)

	repo := newMemStore()
	svc := service.NewProductService(repo, files, model.DefaultImageURL, 0)
	handler := NewProductHandler(svc, 1<<20)

	router := NewRouter(handler, nil, RouterConfig{
		UploadDir:      dir,
		AllowedOrigins: []string{"*"},
	})
	return &testEnv{router: router, repo: repo, uploadDir: dir}
}

type formFile struct {
	name, contentType string
	content           []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, file *formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if file != nil {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, file.name))
		hdr.Set("Content-Type", file.contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(file.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func penFields() map[string]string {
	return map[string]string{
		"title":       "Pen",
		"price":       "10",
		"description": "blue pen",
		"category":    "stationery",
	}
}

type envelopeBody struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelopeBody {
	t.Helper()
	var env envelopeBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeProduct(t *testing.T, rec *httptest.ResponseRecorder) model.Product {
	t.Helper()
	env := decodeEnvelope(t, rec)
	var p model.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p
}

func TestCreateProductWithoutFile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, http.MethodPost, "/product/create", penFields(), nil))
	require.Equal(t, http.StatusCreated, rec.Code)

	p := decodeProduct(t, rec)
	assert.Equal(t, "Pen", p.Title)
	assert.Equal(t, float64(10), p.Price)
	assert.Equal(t, model.DefaultImageURL, p.Image)
	assert.False(t, p.ID.IsZero())
}

func TestCreateProductMissingPrice(t *testing.T) {
	env := newTestEnv(t)

	fields := penFields()
	delete(fields, "price")

	rec := env.do(multipartRequest(t, http.MethodPost, "/product/create", fields, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.repo.products)
}

func TestCreateProductNonNumericPrice(t *testing.T) {
	env := newTestEnv(t)

	fields := penFields()
	fields["price"] = "ten"

	rec := env.do(multipartRequest(t, http.MethodPost, "/product/create", fields, nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.repo.products)
}

func TestCreateProductWithImageServedStatically(t *testing.T) {
	env := newTestEnv(t)

	content := []byte("GIF89a fake image")
	rec := env.do(multipartRequest(t, http.MethodPost, "/product/create", penFields(),
		&formFile{name: "pen.gif", contentType: "image/gif", content: content}))
	require.Equal(t, http.StatusCreated, rec.Code)

	p := decodeProduct(t, rec)
	require.True(t, strings.HasPrefix(p.Image, storage.PublicPrefix))

	fileRec := env.do(httptest.NewRequest(http.MethodGet, p.Image, nil))
	require.Equal(t, http.StatusOK, fileRec.Code)
	assert.Equal(t, content, fileRec.Body.Bytes())
}

func TestCreateProductRejectsBadMimeType(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, http.MethodPost, "/product/create", penFields(),
		&formFile{name: "notes.txt", contentType: "text/plain", content: []byte("hello")}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.repo.products)

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateProductStorageFailure(t *testing.T) {
	env := newTestEnv(t)
	env.repo.insertErr = fmt.Errorf("connection reset")

	rec := env.do(multipartRequest(t, http.MethodPost, "/product/create", penFields(),
		&formFile{name: "pen.png", contentType: "image/png", content: []byte("png")}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// Compensating delete: no orphaned file.
	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGetProductUnknownID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/product/products/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Product not found", decodeEnvelope(t, rec).Message)
}

func TestListProducts(t *testing.T) {
	env := newTestEnv(t)

	created := env.do(multipartRequest(t, http.MethodPost, "/product/create", penFields(), nil))
	require.Equal(t, http.StatusCreated, created.Code)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/product/products", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeEnvelope(t, rec)
	assert.Equal(t, "Products retrieved successfully", body.Message)

	var products []model.Product
	require.NoError(t, json.Unmarshal(body.Data, &products))
	assert.Len(t, products, 1)
}

func TestUpdateProductReplacesImage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, http.MethodPost, "/product/create", penFields(),
		&formFile{name: "old.png", contentType: "image/png", content: []byte("old bytes")}))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeProduct(t, rec)

	fields := penFields()
	fields["title"] = "Fancy pen"
	upd := env.do(multipartRequest(t, http.MethodPut, "/product/products/"+created.ID.Hex(), fields,
		&formFile{name: "new.png", contentType: "image/png", content: []byte("new bytes")}))
	require.Equal(t, http.StatusOK, upd.Code)

	updated := decodeProduct(t, upd)
	assert.Equal(t, "Fancy pen", updated.Title)
	assert.NotEqual(t, created.Image, updated.Image)

	// New file resolvable, old one gone.
	newFile := env.do(httptest.NewRequest(http.MethodGet, updated.Image, nil))
	assert.Equal(t, http.StatusOK, newFile.Code)
	oldFile := env.do(httptest.NewRequest(http.MethodGet, created.Image, nil))
	assert.Equal(t, http.StatusNotFound, oldFile.Code)
}

func TestUpdateProductUnknownID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, http.MethodPut, "/product/products/"+primitive.NewObjectID().Hex(), penFields(),
		&formFile{name: "pen.png", contentType: "image/png", content: []byte("png")}))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpdateProductMissingField(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, http.MethodPost, "/product/create", penFields(), nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeProduct(t, rec)

	fields := penFields()
	delete(fields, "title")
	upd := env.do(multipartRequest(t, http.MethodPut, "/product/products/"+created.ID.Hex(), fields, nil))
	assert.Equal(t, http.StatusBadRequest, upd.Code)
}

func TestDeleteThenList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(multipartRequest(t, http.MethodPost, "/product/create", penFields(), nil))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeProduct(t, rec)

	del := env.do(httptest.NewRequest(http.MethodDelete, "/product/products/"+created.ID.Hex(), nil))
	require.Equal(t, http.StatusOK, del.Code)
	assert.Equal(t, "Product deleted successfully", decodeEnvelope(t, del).Message)

	list := env.do(httptest.NewRequest(http.MethodGet, "/product/products", nil))
	require.Equal(t, http.StatusOK, list.Code)
	var products []model.Product
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, list).Data, &products))
	for _, p := range products {
		assert.NotEqual(t, created.ID, p.ID)
	}

	get := env.do(httptest.NewRequest(http.MethodGet, "/product/products/"+created.ID.Hex(), nil))
	assert.Equal(t, http.StatusNotFound, get.Code)
}

func TestDeleteProductUnknownID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodDelete, "/product/products/"+primitive.NewObjectID().Hex(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
