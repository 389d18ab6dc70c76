package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/akinalp/shopapi/models"
	"github.com/akinalp/shopapi/pkg"
	"github.com/akinalp/shopapi/services"
)

// multipartOverhead is the room left for form fields and part headers on top
// of the image size cap.
const multipartOverhead = 1 << 20

var errMissingProductID = fmt.Errorf("%w: product id is required", pkg.ErrValidation)

// ProductHandler serves the catalog endpoints.
//
// Create and update accept either a JSON body or multipart/form-data with the
// text fields title, description, price, quantity, image and an optional file
// part named "image".
type ProductHandler struct {
	productService services.ProductService
	uploads        services.UploadService
	maxUploadSize  int64
}

// NewProductHandler is the constructor.
func NewProductHandler(productService services.ProductService, uploads services.UploadService, maxUploadSize int64) *ProductHandler {
	if maxUploadSize <= 0 {
		maxUploadSize = services.DefaultMaxUploadSize
	}
	return &ProductHandler{
		productService: productService,
		uploads:        uploads,
		maxUploadSize:  maxUploadSize,
	}
}

// Create godoc
// POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	fields, image, cleanup, err := h.readProduct(w, r)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	defer cleanup()

	req := &models.CreateProductRequest{
		Title:       fields.Title,
		Description: fields.Description,
		Price:       fields.Price,
		Quantity:    fields.Quantity,
		Image:       fields.Image,
	}

	product, err := h.productService.Create(r.Context(), req, image)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusCreated, product)
}

// List godoc
// GET /api/getProducts
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, products)
}

// Get godoc
// GET /api/product/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseProductID(r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	product, err := h.productService.Get(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, product)
}

// Update godoc
// PUT /api/updateProducts/{id}
// PUT /api/updateProducts (id in the body or form)
//
// Fields left out keep their stored value. Without a new file and without an
// "image" field the stored image is kept; "image": "" clears it. Any other
// image value is rejected: paths only come from uploads.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, image, cleanup, err := h.readProduct(w, r)
	if err != nil {
		pkg.Error(w, err)
		return
	}
	defer cleanup()

	id, err := resolveProductID(r, fields.ID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	product, err := h.productService.Update(r.Context(), id, fields, image)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, product)
}

// Delete godoc
// DELETE /api/deleteProduct/{id}
// DELETE /api/deleteProduct?id=N
// DELETE /api/deleteProduct with body { "id": N }
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var bodyID *int64
	if r.PathValue("id") == "" && r.URL.Query().Get("id") == "" {
		var body struct {
			ID *int64 `json:"id"`
		}
		if err := decodeJSONBody(w, r, &body, true); err != nil {
			pkg.Error(w, err)
			return
		}
		bodyID = body.ID
	}

	id, err := resolveProductID(r, bodyID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSONWithMessage(w, http.StatusOK, "product deleted", map[string]int64{"id": id})
}

// readProduct parses the product fields of a JSON or multipart request.
// The returned cleanup releases the spooled upload; it is safe to call when
// there was no upload.
func (h *ProductHandler) readProduct(w http.ResponseWriter, r *http.Request) (*models.UpdateProductRequest, *services.ImageFile, func(), error) {
	noop := func() {}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		var fields models.UpdateProductRequest
		if err := decodeJSON(w, r, &fields); err != nil {
			return nil, nil, noop, err
		}
		return &fields, nil, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, nil, noop, fmt.Errorf("%w: failed to parse multipart form", pkg.ErrValidation)
	}

	values := url.Values{}
	var image *services.ImageFile
	cleanup := noop

	fail := func(err error) (*models.UpdateProductRequest, *services.ImageFile, func(), error) {
		cleanup()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, noop, pkg.ErrFileTooLarge
		}
		if errors.Is(err, pkg.ErrValidation) {
			return nil, nil, noop, err
		}
		return nil, nil, noop, fmt.Errorf("%w: failed to parse multipart form", pkg.ErrValidation)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(err)
		}

		if part.FormName() == "image" && part.FileName() != "" {
			if image != nil {
				part.Close()
				return fail(fmt.Errorf("%w: only one image may be uploaded", pkg.ErrValidation))
			}
			img, release, err := h.spoolImage(part)
			part.Close()
			if err != nil {
				return fail(err)
			}
			image, cleanup = img, release
			continue
		}

		value, err := io.ReadAll(io.LimitReader(part, multipartOverhead))
		part.Close()
		if err != nil {
			return fail(err)
		}
		values.Add(part.FormName(), string(value))
	}

	fields, err := formProductFields(values)
	if err != nil {
		return fail(err)
	}
	return fields, image, cleanup, nil
}

// spoolImage copies a file part to a temp file once its name has passed the
// extension check. The extension is checked from the part header, before any
// content is read, so a disallowed type is reported as such at any size.
func (h *ProductHandler) spoolImage(part *multipart.Part) (*services.ImageFile, func(), error) {
	if err := h.uploads.CheckName(part.FileName()); err != nil {
		return nil, nil, err
	}

	tmp, err := os.CreateTemp("", "shopapi-upload-*")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", pkg.ErrStorageWriteFailed, err)
	}
	release := func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}

	n, err := io.Copy(tmp, io.LimitReader(part, h.maxUploadSize+1))
	if err != nil {
		release()
		return nil, nil, err
	}
	if n > h.maxUploadSize {
		release()
		return nil, nil, fmt.Errorf("%w (max %dMB)", pkg.ErrFileTooLarge, h.maxUploadSize/(1<<20))
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		release()
		return nil, nil, fmt.Errorf("%w: %w", pkg.ErrStorageWriteFailed, err)
	}

	return &services.ImageFile{Name: part.FileName(), Size: n, Reader: tmp}, release, nil
}

// formProductFields reads the text fields of a multipart form. A field that
// is absent stays nil; a field that is present but not a number is a
// validation error.
func formProductFields(values url.Values) (*models.UpdateProductRequest, error) {
	get := func(key string) (string, bool) {
		v, ok := values[key]
		if !ok || len(v) == 0 {
			return "", false
		}
		return v[0], true
	}

	var fields models.UpdateProductRequest

	if v, ok := get("title"); ok {
		fields.Title = &v
	}
	if v, ok := get("description"); ok {
		fields.Description = &v
	}
	if v, ok := get("image"); ok {
		fields.Image = &v
	}
	if v, ok := get("price"); ok {
		price, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: price must be a number", pkg.ErrValidation)
		}
		fields.Price = &price
	}
	if v, ok := get("quantity"); ok {
		quantity, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("%w: quantity must be an integer", pkg.ErrValidation)
		}
		fields.Quantity = &quantity
	}
	if v, ok := get("id"); ok {
		id, err := parseProductID(v)
		if err != nil {
			return nil, err
		}
		fields.ID = &id
	}

	return &fields, nil
}

// resolveProductID picks the product id from the path, then the body, then
// the query string.
func resolveProductID(r *http.Request, bodyID *int64) (int64, error) {
	if v := r.PathValue("id"); v != "" {
		return parseProductID(v)
	}
	if bodyID != nil {
		return *bodyID, nil
	}
	if v := r.URL.Query().Get("id"); v != "" {
		return parseProductID(v)
	}
	return 0, errMissingProductID
}

func parseProductID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid product id %q", pkg.ErrValidation, raw)
	}
	return id, nil
}
