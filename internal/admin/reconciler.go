package admin

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/domain"
)

// Reconciler keeps the admin panel's product and blog lists in step with
// the backend. The two lists load and refresh independently: a product
// mutation never triggers a blog fetch and vice versa.
type Reconciler struct {
	products ProductStore
	blogs    BlogStore
	logger   *slog.Logger

	mu             sync.RWMutex
	productList    []domain.Product
	blogList       []domain.Blog
	productsLoaded bool
	blogsLoaded    bool
	deleting       map[string]struct{}
}

// Snapshot is a point-in-time view of the reconciler state for rendering.
type Snapshot struct {
	Products       []domain.Product `json:"products"`
	Blogs          []domain.Blog    `json:"blogs"`
	ProductsLoaded bool             `json:"productsLoaded"`
	BlogsLoaded    bool             `json:"blogsLoaded"`
	DeletingIDs    []string         `json:"deletingIds"`
}

// NewReconciler creates a reconciler over the given gateways.
func NewReconciler(products ProductStore, blogs BlogStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		products: products,
		blogs:    blogs,
		logger:   logger,
		deleting: make(map[string]struct{}),
	}
}

// Load fetches both lists concurrently. A failure on one list does not
// block the other from loading; both errors are reported together.
func (r *Reconciler) Load(ctx context.Context) error {
	var wg sync.WaitGroup
	var productErr, blogErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		_, productErr = r.RefreshProducts(ctx)
	}()
	go func() {
		defer wg.Done()
		_, blogErr = r.RefreshBlogs(ctx)
	}()
	wg.Wait()

	return errors.Join(productErr, blogErr)
}

// RefreshProducts re-fetches the product list from the backend and swaps
// it into the cache.
func (r *Reconciler) RefreshProducts(ctx context.Context) ([]domain.Product, error) {
	list, err := r.products.List(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.productList = list
	r.productsLoaded = true
	r.mu.Unlock()

	return list, nil
}

// RefreshBlogs re-fetches the blog list from the backend and swaps it into
// the cache.
func (r *Reconciler) RefreshBlogs(ctx context.Context) ([]domain.Blog, error) {
	list, err := r.blogs.List(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.blogList = list
	r.blogsLoaded = true
	r.mu.Unlock()

	return list, nil
}

// Products returns the cached product list, fetching it first if it has
// never loaded.
func (r *Reconciler) Products(ctx context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	loaded := r.productsLoaded
	list := r.productList
	r.mu.RUnlock()

	if loaded {
		return list, nil
	}
	return r.RefreshProducts(ctx)
}

// Blogs returns the cached blog list, fetching it first if it has never
// loaded.
func (r *Reconciler) Blogs(ctx context.Context) ([]domain.Blog, error) {
	r.mu.RLock()
	loaded := r.blogsLoaded
	list := r.blogList
	r.mu.RUnlock()

	if loaded {
		return list, nil
	}
	return r.RefreshBlogs(ctx)
}

// Snapshot returns a copy of the current state.
func (r *Reconciler) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deleting := make([]string, 0, len(r.deleting))
	for id := range r.deleting {
		deleting = append(deleting, id)
	}
	sort.Strings(deleting)

	return Snapshot{
		Products:       append([]domain.Product{}, r.productList...),
		Blogs:          append([]domain.Blog{}, r.blogList...),
		ProductsLoaded: r.productsLoaded,
		BlogsLoaded:    r.blogsLoaded,
		DeletingIDs:    deleting,
	}
}

// DeleteProduct removes a product and refreshes the product list only.
// The confirm flag must be set; a repeated delete for an id already in
// flight is rejected instead of hitting the backend twice.
func (r *Reconciler) DeleteProduct(ctx context.Context, id string, confirm bool) error {
	return r.delete(ctx, string(KindProduct)+":"+id, confirm, func() error {
		if err := r.products.Delete(ctx, id); err != nil {
			return err
		}
		if _, err := r.RefreshProducts(ctx); err != nil {
			r.logger.WarnContext(ctx, "product list refresh after delete failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil
	})
}

// DeleteBlog removes a blog post and refreshes the blog list only.
func (r *Reconciler) DeleteBlog(ctx context.Context, id string, confirm bool) error {
	return r.delete(ctx, string(KindBlog)+":"+id, confirm, func() error {
		if err := r.blogs.Delete(ctx, id); err != nil {
			return err
		}
		if _, err := r.RefreshBlogs(ctx); err != nil {
			r.logger.WarnContext(ctx, "blog list refresh after delete failed",
				slog.String("blog_id", id),
				slog.String("error", err.Error()),
			)
		}
		return nil
	})
}

func (r *Reconciler) delete(ctx context.Context, key string, confirm bool, do func() error) error {
	if !confirm {
		return apperrors.InvalidInput("deletion requires confirmation")
	}

	r.mu.Lock()
	if _, inFlight := r.deleting[key]; inFlight {
		r.mu.Unlock()
		return apperrors.Conflict("delete already in progress")
	}
	r.deleting[key] = struct{}{}
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		delete(r.deleting, key)
		r.mu.Unlock()
	}()

	return do()
}
