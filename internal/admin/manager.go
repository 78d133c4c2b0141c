package admin

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/domain"
	"github.com/imamaffandi/gloam-storefront/internal/imaging"
)

// ProductStore is the product slice of the backend gateway.
type ProductStore interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, id string, product *domain.Product) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

// BlogStore is the blog slice of the backend gateway.
type BlogStore interface {
	List(ctx context.Context) ([]domain.Blog, error)
	Get(ctx context.Context, id string) (*domain.Blog, error)
	Create(ctx context.Context, blog *domain.Blog) (*domain.Blog, error)
	Update(ctx context.Context, id string, blog *domain.Blog) (*domain.Blog, error)
	Delete(ctx context.Context, id string) error
}

// ProductPatch carries partial edits to an open product draft. Nil fields
// are left untouched.
type ProductPatch struct {
	Name           *string   `json:"name"`
	Description    *string   `json:"description"`
	Price          *string   `json:"price"`
	Stock          *string   `json:"stock"`
	Category       *string   `json:"category"`
	Sizes          *[]string `json:"sizes"`
	SelectedColors *[]string `json:"selectedColors"`
	OtherColor     *string   `json:"otherColor"`
	IsAvailable    *bool     `json:"isAvailable"`
}

// BlogPatch carries partial edits to an open blog draft.
type BlogPatch struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

// Manager orchestrates the admin draft workflow. Every operation loads the
// draft from the store, mutates it, and saves it back, so the form survives
// process restarts and works across stateless requests.
type Manager struct {
	drafts     *DraftStore
	products   ProductStore
	blogs      BlogStore
	pipeline   *imaging.Pipeline
	reconciler *Reconciler
	catalog    domain.Catalog
	logger     *slog.Logger

	mu         sync.Mutex
	submitting map[string]struct{}
}

// NewManager creates the admin workflow manager.
func NewManager(
	drafts *DraftStore,
	products ProductStore,
	blogs BlogStore,
	pipeline *imaging.Pipeline,
	reconciler *Reconciler,
	catalog domain.Catalog,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		drafts:     drafts,
		products:   products,
		blogs:      blogs,
		pipeline:   pipeline,
		reconciler: reconciler,
		catalog:    catalog,
		logger:     logger,
		submitting: make(map[string]struct{}),
	}
}

// Current returns the open draft, or ErrNotFound when no form is open.
func (m *Manager) Current(ctx context.Context, username string) (*Draft, error) {
	return m.drafts.Get(ctx, username)
}

// OpenProductCreate opens an empty product form, discarding any draft that
// was open before.
func (m *Manager) OpenProductCreate(ctx context.Context, username string) (*Draft, error) {
	draft := NewProductDraft()
	if err := m.drafts.Save(ctx, username, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// OpenProductEdit fetches the product and opens a pre-populated form.
func (m *Manager) OpenProductEdit(ctx context.Context, username, id string) (*Draft, error) {
	product, err := m.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	draft := DraftFromProduct(product, m.catalog)
	if err := m.drafts.Save(ctx, username, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// OpenBlogCreate opens an empty blog form, discarding any open draft.
func (m *Manager) OpenBlogCreate(ctx context.Context, username string) (*Draft, error) {
	draft := NewBlogDraft()
	if err := m.drafts.Save(ctx, username, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// OpenBlogEdit fetches the blog and opens a pre-populated form.
func (m *Manager) OpenBlogEdit(ctx context.Context, username, id string) (*Draft, error) {
	blog, err := m.blogs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	draft := DraftFromBlog(blog)
	if err := m.drafts.Save(ctx, username, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// PatchProduct applies partial edits to the open product draft.
func (m *Manager) PatchProduct(ctx context.Context, username string, patch ProductPatch) (*Draft, error) {
	draft, err := m.drafts.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if draft.Kind != KindProduct {
		return nil, apperrors.InvalidInput("open draft is not a product form")
	}

	f := &draft.Product
	if patch.Name != nil {
		f.Name = *patch.Name
	}
	if patch.Description != nil {
		f.Description = *patch.Description
	}
	if patch.Price != nil {
		f.Price = *patch.Price
	}
	if patch.Stock != nil {
		f.Stock = *patch.Stock
	}
	if patch.Category != nil {
		f.Category = *patch.Category
	}
	if patch.Sizes != nil {
		f.Sizes = append([]string{}, (*patch.Sizes)...)
	}
	if patch.SelectedColors != nil {
		f.SelectedColors = append([]string{}, (*patch.SelectedColors)...)
	}
	if patch.OtherColor != nil {
		f.OtherColor = *patch.OtherColor
	}
	if patch.IsAvailable != nil {
		f.IsAvailable = *patch.IsAvailable
	}

	if err := m.drafts.Save(ctx, username, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// PatchBlog applies partial edits to the open blog draft.
func (m *Manager) PatchBlog(ctx context.Context, username string, patch BlogPatch) (*Draft, error) {
	draft, err := m.drafts.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if draft.Kind != KindBlog {
		return nil, apperrors.InvalidInput("open draft is not a blog form")
	}

	if patch.Title != nil {
		draft.Blog.Title = *patch.Title
	}
	if patch.Content != nil {
		draft.Blog.Content = *patch.Content
	}

	if err := m.drafts.Save(ctx, username, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// IngestImages runs uploaded files through the pipeline and attaches the
// resulting previews to the open draft. Product drafts accumulate images;
// blog drafts keep only the most recent upload since a blog has one image.
func (m *Manager) IngestImages(ctx context.Context, username string, files []imaging.File) (*Draft, error) {
	draft, err := m.drafts.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	previews, err := m.pipeline.Ingest(ctx, files)
	if err != nil {
		return nil, err
	}

	switch draft.Kind {
	case KindProduct:
		draft.Images.Append(previews)
	case KindBlog:
		draft.Images.Replace(previews[:1])
	}

	if err := m.drafts.Save(ctx, username, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// RemoveImage drops the preview at the given index from the open draft.
func (m *Manager) RemoveImage(ctx context.Context, username string, idx int) (*Draft, error) {
	draft, err := m.drafts.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	draft.Images.RemoveAt(idx)

	if err := m.drafts.Save(ctx, username, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Submit validates the open draft and pushes it to the backend. While the
// push is in flight the draft is parked in the submitting phase and a
// second submit for the same admin is rejected, so one open form never
// creates two entities. On success the draft is discarded and the affected
// list refreshed. On failure the draft survives untouched apart from the
// recorded error, so the admin can fix and retry without re-entering
// anything.
func (m *Manager) Submit(ctx context.Context, username string) error {
	m.mu.Lock()
	if _, inFlight := m.submitting[username]; inFlight {
		m.mu.Unlock()
		return apperrors.Conflict("submit already in progress")
	}
	m.submitting[username] = struct{}{}
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		delete(m.submitting, username)
		m.mu.Unlock()
	}()

	draft, err := m.drafts.Get(ctx, username)
	if err != nil {
		return err
	}

	mode := draft.Phase
	if mode == PhaseSubmitting {
		// Leftover from an interrupted submit. The entity id decides
		// create versus update.
		mode = PhaseCreating
		if draft.EntityID != "" {
			mode = PhaseEditing
		}
	}

	draft.Phase = PhaseSubmitting
	if err := m.drafts.Save(ctx, username, draft); err != nil {
		return err
	}

	switch draft.Kind {
	case KindProduct:
		err = m.submitProduct(ctx, draft, mode)
	case KindBlog:
		err = m.submitBlog(ctx, draft, mode)
	default:
		err = apperrors.InvalidInput("unknown draft kind")
	}

	if err != nil {
		draft.Phase = mode
		draft.LastError = err.Error()
		if saveErr := m.drafts.Save(ctx, username, draft); saveErr != nil {
			m.logger.ErrorContext(ctx, "failed to record submit error on draft",
				slog.String("admin_user", username),
				slog.String("error", saveErr.Error()),
			)
		}
		return err
	}

	if err := m.drafts.Delete(ctx, username); err != nil {
		m.logger.ErrorContext(ctx, "failed to discard draft after submit",
			slog.String("admin_user", username),
			slog.String("error", err.Error()),
		)
	}

	m.logger.InfoContext(ctx, "draft submitted",
		slog.String("admin_user", username),
		slog.String("kind", string(draft.Kind)),
		slog.String("phase", string(mode)),
	)

	return nil
}

func (m *Manager) submitProduct(ctx context.Context, draft *Draft, mode Phase) error {
	product, err := draft.ToProduct(m.catalog)
	if err != nil {
		return err
	}

	if mode == PhaseEditing {
		_, err = m.products.Update(ctx, draft.EntityID, product)
	} else {
		_, err = m.products.Create(ctx, product)
	}
	if err != nil {
		return err
	}

	if _, err := m.reconciler.RefreshProducts(ctx); err != nil {
		m.logger.WarnContext(ctx, "product list refresh after submit failed",
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (m *Manager) submitBlog(ctx context.Context, draft *Draft, mode Phase) error {
	blog, err := draft.ToBlog()
	if err != nil {
		return err
	}

	if mode == PhaseEditing {
		_, err = m.blogs.Update(ctx, draft.EntityID, blog)
	} else {
		_, err = m.blogs.Create(ctx, blog)
	}
	if err != nil {
		return err
	}

	if _, err := m.reconciler.RefreshBlogs(ctx); err != nil {
		m.logger.WarnContext(ctx, "blog list refresh after submit failed",
			slog.String("error", err.Error()),
		)
	}
	return nil
}

// Cancel discards the open draft without submitting. Closing a form that
// was never opened is not an error.
func (m *Manager) Cancel(ctx context.Context, username string) error {
	if err := m.drafts.Delete(ctx, username); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return nil
}
