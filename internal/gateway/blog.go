package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/domain"
	"github.com/imamaffandi/gloam-storefront/internal/httpclient"
)

// BlogGateway performs blog CRUD against the backend API.
type BlogGateway struct {
	client
	logger *slog.Logger
}

// NewBlogGateway creates a blog gateway rooted at baseURL.
func NewBlogGateway(baseURL string, doer HTTPDoer, logger *slog.Logger) *BlogGateway {
	return &BlogGateway{
		client: newClient(baseURL, doer),
		logger: logger,
	}
}

// List fetches every blog post.
func (g *BlogGateway) List(ctx context.Context) ([]domain.Blog, error) {
	req, err := g.newRequest(ctx, http.MethodGet, "/blogs", nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("list blogs", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "blogs")
	}

	var blogs []domain.Blog
	if err := json.NewDecoder(resp.Body).Decode(&blogs); err != nil {
		return nil, apperrors.Upstream("list blogs", fmt.Errorf("decode response: %w", err))
	}
	if blogs == nil {
		blogs = []domain.Blog{}
	}

	return blogs, nil
}

// Get fetches a single blog post by its backend id.
func (g *BlogGateway) Get(ctx context.Context, id string) (*domain.Blog, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("blog id is required")
	}

	req, err := g.newRequest(ctx, http.MethodGet, "/blogs/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("get blog", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "blogs")
	}

	var blog domain.Blog
	if err := json.NewDecoder(resp.Body).Decode(&blog); err != nil {
		return nil, apperrors.Upstream("get blog", fmt.Errorf("decode response: %w", err))
	}

	return &blog, nil
}

// Create submits a new blog post.
func (g *BlogGateway) Create(ctx context.Context, blog *domain.Blog) (*domain.Blog, error) {
	req, err := g.newRequest(ctx, http.MethodPost, "/blogs", blog)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("create blog", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, httpclient.ParseResponseError(resp, "blogs")
	}

	var created domain.Blog
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, apperrors.Upstream("create blog", fmt.Errorf("decode response: %w", err))
	}

	g.logger.InfoContext(ctx, "blog created",
		slog.String("blog_id", created.ID),
		slog.String("title", created.Title),
	)

	return &created, nil
}

// Update replaces a blog post's fields on the backend.
func (g *BlogGateway) Update(ctx context.Context, id string, blog *domain.Blog) (*domain.Blog, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("blog id is required")
	}

	req, err := g.newRequest(ctx, http.MethodPut, "/blogs/"+url.PathEscape(id), blog)
	if err != nil {
		return nil, err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return nil, apperrors.Upstream("update blog", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "blogs")
	}

	var updated domain.Blog
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return nil, apperrors.Upstream("update blog", fmt.Errorf("decode response: %w", err))
	}

	g.logger.InfoContext(ctx, "blog updated",
		slog.String("blog_id", id),
	)

	return &updated, nil
}

// Delete removes a blog post from the backend.
func (g *BlogGateway) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("blog id is required")
	}

	req, err := g.newRequest(ctx, http.MethodDelete, "/blogs/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	resp, err := g.http.Do(ctx, req)
	if err != nil {
		return apperrors.Upstream("delete blog", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return httpclient.ParseResponseError(resp, "blogs")
	}

	g.logger.InfoContext(ctx, "blog deleted",
		slog.String("blog_id", id),
	)

	return nil
}
