package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/domain"
	"github.com/imamaffandi/gloam-storefront/internal/httpclient"
)

// ProductGateway performs product CRUD against the backend API. The backend
// returns bare JSON arrays and objects, not an envelope.
type ProductGateway struct {
	client
	logger *slog.Logger
}

// NewProductGateway creates a product gateway rooted at baseURL.
func NewProductGateway(baseURL string, doer HTTPDoer, logger *slog.Logger) *ProductGateway {
	return &ProductGateway{
		client: newClient(baseURL, doer),
		logger: logger,
	}
}

// List fetches every product, including unavailable ones. The admin panel
// uses this view.
func (g *ProductGateway) List(ctx context.Context) ([]domain.Product, error) {
	req, err := g.newRequest(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("list products", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "products")
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, apperrors.Upstream("list products", fmt.Errorf("decode response: %w", err))
	}
	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}

// ListAvailable fetches the availability-filtered list from the backend's
// dedicated endpoint. The public storefront uses this view.
func (g *ProductGateway) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	req, err := g.newRequest(ctx, http.MethodGet, "/products/available", nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("list available products", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "products")
	}

	var products []domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, apperrors.Upstream("list available products", fmt.Errorf("decode response: %w", err))
	}
	if products == nil {
		products = []domain.Product{}
	}

	return products, nil
}

// Get fetches a single product by its backend id.
func (g *ProductGateway) Get(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	req, err := g.newRequest(ctx, http.MethodGet, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("get product", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "products")
	}

	var product domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
		return nil, apperrors.Upstream("get product", fmt.Errorf("decode response: %w", err))
	}

	return &product, nil
}

// Create submits a new product. Images travel inline as base64 data URIs
// inside the JSON body.
func (g *ProductGateway) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	req, err := g.newRequest(ctx, http.MethodPost, "/products", product)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("create product", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "products")
	}

	var created domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, apperrors.Upstream("create product", fmt.Errorf("decode response: %w", err))
	}

	g.logger.InfoContext(ctx, "product created",
		slog.String("product_id", created.ID),
		slog.String("name", created.Name),
	)

	return &created, nil
}

// Update replaces a product's fields on the backend.
func (g *ProductGateway) Update(ctx context.Context, id string, product *domain.Product) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	req, err := g.newRequest(ctx, http.MethodPut, "/products/"+url.PathEscape(id), product)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("update product", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "products")
	}

	var updated domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, apperrors.Upstream("update product", fmt.Errorf("decode response: %w", err))
	}

	g.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", id),
	)

	return &updated, nil
}

// UploadImages pushes raw image files to an existing product as a
// multipart form, the backend's alternate upload path for images too large
// to inline. The returned product carries the stored image references.
func (g *ProductGateway) UploadImages(ctx context.Context, id string, files []Upload) (*domain.Product, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if len(files) == 0 {
		return nil, apperrors.InvalidInput("at least one file is required")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := mw.CreateFormFile("images", f.Name)
		if err != nil {
			return nil, fmt.Errorf("create multipart field: %w", err)
		}
		if _, err := io.Copy(part, f.Reader); err != nil {
			return nil, fmt.Errorf("write multipart field %s: %w", f.Name, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalize multipart body: %w", err)
	}

	endpoint := g.baseURL + "/products/" + url.PathEscape(id) + "/images"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("upload product images", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "products")
	}

	var updated domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, apperrors.Upstream("upload product images", fmt.Errorf("decode response: %w", err))
	}

	g.logger.InfoContext(ctx, "product images uploaded",
		slog.String("product_id", id),
		slog.Int("count", len(files)),
	)

	return &updated, nil
}

// Delete removes a product from the backend.
func (g *ProductGateway) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("product id is required")
	}

	req, err := g.newRequest(ctx, http.MethodDelete, "/products/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return apperrors.Upstream("delete product", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return httpclient.ParseResponseError(resp, "products")
	}

	g.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
	)

	return nil
}
