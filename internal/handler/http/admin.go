package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/imamaffandi/gloam-storefront/internal/admin"
	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/gateway"
	"github.com/imamaffandi/gloam-storefront/internal/httputil"
	"github.com/imamaffandi/gloam-storefront/internal/imaging"
	"github.com/imamaffandi/gloam-storefront/internal/logger"
)

// maxUploadMemory bounds the in-memory portion of a multipart parse.
const maxUploadMemory = 32 << 20

// AdminHandler serves the admin panel: list views, the draft form
// lifecycle, and destructive actions.
type AdminHandler struct {
	manager    *admin.Manager
	reconciler *admin.Reconciler
	uploader   *gateway.ProductGateway
	logger     *slog.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(manager *admin.Manager, reconciler *admin.Reconciler, uploader *gateway.ProductGateway, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		manager:    manager,
		reconciler: reconciler,
		uploader:   uploader,
		logger:     logger,
	}
}

// PanelState is the full admin panel view: both lists plus the open draft,
// if any.
type PanelState struct {
	admin.Snapshot
	Draft *admin.Draft `json:"draft,omitempty"`
}

// State handles GET /api/v1/admin/state.
func (h *AdminHandler) State(w http.ResponseWriter, r *http.Request) {
	username := logger.AdminUserFromContext(r.Context())

	if _, err := h.reconciler.Products(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if _, err := h.reconciler.Blogs(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	state := PanelState{Snapshot: h.reconciler.Snapshot()}
	draft, err := h.manager.Current(r.Context(), username)
	if err == nil {
		state.Draft = draft
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: state})
}

// Products handles GET /api/v1/admin/products. The admin list includes
// unavailable products.
func (h *AdminHandler) Products(w http.ResponseWriter, r *http.Request) {
	products, err := h.reconciler.Products(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// Blogs handles GET /api/v1/admin/blogs.
func (h *AdminHandler) Blogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := h.reconciler.Blogs(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: blogs})
}

// CurrentForm handles GET /api/v1/admin/form.
func (h *AdminHandler) CurrentForm(w http.ResponseWriter, r *http.Request) {
	draft, err := h.manager.Current(r.Context(), logger.AdminUserFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: draft})
}

// OpenProductCreate handles POST /api/v1/admin/form/product.
func (h *AdminHandler) OpenProductCreate(w http.ResponseWriter, r *http.Request) {
	draft, err := h.manager.OpenProductCreate(r.Context(), logger.AdminUserFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: draft})
}

// OpenProductEdit handles POST /api/v1/admin/form/product/{id}.
func (h *AdminHandler) OpenProductEdit(w http.ResponseWriter, r *http.Request) {
	draft, err := h.manager.OpenProductEdit(r.Context(), logger.AdminUserFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: draft})
}

// OpenBlogCreate handles POST /api/v1/admin/form/blog.
func (h *AdminHandler) OpenBlogCreate(w http.ResponseWriter, r *http.Request) {
	draft, err := h.manager.OpenBlogCreate(r.Context(), logger.AdminUserFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: draft})
}

// OpenBlogEdit handles POST /api/v1/admin/form/blog/{id}.
func (h *AdminHandler) OpenBlogEdit(w http.ResponseWriter, r *http.Request) {
	draft, err := h.manager.OpenBlogEdit(r.Context(), logger.AdminUserFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: draft})
}

// PatchProduct handles PATCH /api/v1/admin/form/product.
func (h *AdminHandler) PatchProduct(w http.ResponseWriter, r *http.Request) {
	var patch admin.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	draft, err := h.manager.PatchProduct(r.Context(), logger.AdminUserFromContext(r.Context()), patch)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: draft})
}

// PatchBlog handles PATCH /api/v1/admin/form/blog.
func (h *AdminHandler) PatchBlog(w http.ResponseWriter, r *http.Request) {
	var patch admin.BlogPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("invalid request body: "+err.Error()), h.logger)
		return
	}

	draft, err := h.manager.PatchBlog(r.Context(), logger.AdminUserFromContext(r.Context()), patch)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: draft})
}

// IngestImages handles POST /api/v1/admin/form/images. Files arrive as
// the multipart field "images".
func (h *AdminHandler) IngestImages(w http.ResponseWriter, r *http.Request) {
	files, closeAll, err := multipartFiles(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	defer closeAll()

	draft, err := h.manager.IngestImages(r.Context(), logger.AdminUserFromContext(r.Context()), files)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: draft})
}

// RemoveImage handles DELETE /api/v1/admin/form/images/{index}.
func (h *AdminHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("image index must be a number"), h.logger)
		return
	}

	draft, err := h.manager.RemoveImage(r.Context(), logger.AdminUserFromContext(r.Context()), idx)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: draft})
}

// Submit handles POST /api/v1/admin/form/submit.
func (h *AdminHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Submit(r.Context(), logger.AdminUserFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.reconciler.Snapshot()})
}

// Cancel handles DELETE /api/v1/admin/form.
func (h *AdminHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Cancel(r.Context(), logger.AdminUserFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteProduct handles DELETE /api/v1/admin/products/{id}?confirm=true.
func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	confirm := r.URL.Query().Get("confirm") == "true"
	if err := h.reconciler.DeleteProduct(r.Context(), chi.URLParam(r, "id"), confirm); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.reconciler.Snapshot()})
}

// DeleteBlog handles DELETE /api/v1/admin/blogs/{id}?confirm=true.
func (h *AdminHandler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	confirm := r.URL.Query().Get("confirm") == "true"
	if err := h.reconciler.DeleteBlog(r.Context(), chi.URLParam(r, "id"), confirm); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.reconciler.Snapshot()})
}

// UploadProductImages handles POST /api/v1/admin/products/{id}/images,
// the direct multipart path that bypasses the draft form.
func (h *AdminHandler) UploadProductImages(w http.ResponseWriter, r *http.Request) {
	files, closeAll, err := multipartFiles(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	defer closeAll()

	uploads := make([]gateway.Upload, len(files))
	for i, f := range files {
		uploads[i] = gateway.Upload{Name: f.Name, Reader: f.Reader}
	}

	product, err := h.uploader.UploadImages(r.Context(), chi.URLParam(r, "id"), uploads)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	if _, err := h.reconciler.RefreshProducts(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "product list refresh after upload failed",
			slog.String("error", err.Error()),
		)
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: product})
}

func multipartFiles(r *http.Request) ([]imaging.File, func(), error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return nil, nil, apperrors.InvalidInput("invalid multipart body: " + err.Error())
	}

	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		return nil, nil, apperrors.InvalidInput("multipart field \"images\" is required")
	}

	files := make([]imaging.File, 0, len(headers))
	closers := make([]func() error, 0, len(headers))
	closeAll := func() {
		for _, c := range closers {
			_ = c()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, apperrors.InvalidInput("open uploaded file " + fh.Filename + ": " + err.Error())
		}
		closers = append(closers, f.Close)
		files = append(files, imaging.File{Name: fh.Filename, Reader: f})
	}

	return files, closeAll, nil
}
