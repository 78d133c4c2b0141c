package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/imamaffandi/gloam-storefront/internal/admin"
	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/domain"
	"github.com/imamaffandi/gloam-storefront/internal/httputil"
	"github.com/imamaffandi/gloam-storefront/internal/validator"
)

const (
	homeProductLimit = 6
	homeBlogLimit    = 3
)

// PublicProductStore adds the backend's availability-filtered listing to
// the admin product view.
type PublicProductStore interface {
	admin.ProductStore
	ListAvailable(ctx context.Context) ([]domain.Product, error)
}

// PublicHandler serves the storefront pages' data: catalog, product and
// blog detail, the home page payload, and the contact form intake.
type PublicHandler struct {
	products PublicProductStore
	blogs    admin.BlogStore
	catalog  func() domain.Catalog
	logger   *slog.Logger
}

// NewPublicHandler creates the public storefront handler.
func NewPublicHandler(products PublicProductStore, blogs admin.BlogStore, catalog domain.Catalog, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		products: products,
		blogs:    blogs,
		catalog:  func() domain.Catalog { return catalog },
		logger:   logger,
	}
}

// HomePayload is everything the landing page renders: a product carousel
// and the latest posts.
type HomePayload struct {
	Carousel []domain.Product `json:"carousel"`
	Posts    []domain.Blog    `json:"posts"`
}

// Home handles GET /api/v1/home. Products and blogs load concurrently;
// if one side fails the page still gets the other.
func (h *PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var wg sync.WaitGroup
	var products []domain.Product
	var blogs []domain.Blog
	var productErr, blogErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		products, productErr = h.products.ListAvailable(ctx)
	}()
	go func() {
		defer wg.Done()
		blogs, blogErr = h.blogs.List(ctx)
	}()
	wg.Wait()

	if productErr != nil && blogErr != nil {
		httputil.WriteError(w, r, productErr, h.logger)
		return
	}
	if productErr != nil {
		h.logger.WarnContext(ctx, "home page products unavailable", slog.String("error", productErr.Error()))
		products = []domain.Product{}
	}
	if blogErr != nil {
		h.logger.WarnContext(ctx, "home page blogs unavailable", slog.String("error", blogErr.Error()))
		blogs = []domain.Blog{}
	}

	if len(products) > homeProductLimit {
		products = products[:homeProductLimit]
	}
	if len(blogs) > homeBlogLimit {
		blogs = blogs[:homeBlogLimit]
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: HomePayload{
		Carousel: products,
		Posts:    blogs,
	}})
}

// CatalogPayload is the product grid plus the configured filter options.
type CatalogPayload struct {
	Products   []domain.Product `json:"products"`
	Categories []string         `json:"categories"`
	Sizes      []string         `json:"sizes"`
	Colors     []string         `json:"colors"`
}

// Catalog handles GET /api/v1/catalog. Only available products are shown
// to the public.
func (h *PublicHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListAvailable(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cat := h.catalog()
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: CatalogPayload{
		Products:   products,
		Categories: cat.Categories,
		Sizes:      cat.Sizes,
		Colors:     cat.Colors,
	}})
}

// ProductDetail handles GET /api/v1/products/{id}. Unavailable products
// 404 for the public even though they still exist for the admin.
func (h *PublicHandler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !product.IsAvailable {
		httputil.WriteError(w, r, apperrors.NotFound("product", id), h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

// Blogs handles GET /api/v1/blogs.
func (h *PublicHandler) Blogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.blogs.List(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: blogs})
}

// BlogDetail handles GET /api/v1/blogs/{id}.
func (h *PublicHandler) BlogDetail(w http.ResponseWriter, r *http.Request) {
	blog, err := h.blogs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: blog})
}

// ContactRequest is the contact form submission body.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// ContactReceipt acknowledges an accepted contact message.
type ContactReceipt struct {
	TicketID string `json:"ticketId"`
}

// Contact handles POST /api/v1/contact. There is no ticketing backend;
// messages land in the structured log under a ticket id the sender can
// quote.
func (h *PublicHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	ticketID := uuid.New().String()
	h.logger.InfoContext(r.Context(), "contact message received",
		slog.String("ticket_id", ticketID),
		slog.String("name", req.Name),
		slog.String("email", req.Email),
		slog.Int("message_len", len(req.Message)),
	)

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{Data: ContactReceipt{TicketID: ticketID}})
}
