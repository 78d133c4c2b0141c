package admin

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/domain"
	"github.com/imamaffandi/gloam-storefront/internal/imaging"
)

const adminUser = "admin"

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeProducts is an in-memory ProductStore that counts list calls and
// can be told to fail or stall.
type fakeProducts struct {
	mu            sync.Mutex
	items         map[string]domain.Product
	nextID        int
	listCalls     int
	failCreate    error
	failUpdate    error
	blockCreate   chan struct{}
	createStarted chan struct{}
	blockDel      chan struct{}
	delStarted    chan struct{}
	blockDelID    string
}

func newFakeProducts() *fakeProducts {
	return &fakeProducts{items: map[string]domain.Product{}}
}

func (f *fakeProducts) List(ctx context.Context) ([]domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]domain.Product, 0, len(f.items))
	for _, p := range f.items {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProducts) Get(ctx context.Context, id string) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("products", id)
	}
	return &p, nil
}

func (f *fakeProducts) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if f.createStarted != nil {
		f.createStarted <- struct{}{}
	}
	if f.blockCreate != nil {
		<-f.blockCreate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return nil, f.failCreate
	}
	f.nextID++
	created := *product
	created.ID = "p" + string(rune('0'+f.nextID))
	f.items[created.ID] = created
	return &created, nil
}

func (f *fakeProducts) Update(ctx context.Context, id string, product *domain.Product) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	if _, ok := f.items[id]; !ok {
		return nil, apperrors.NotFound("products", id)
	}
	updated := *product
	updated.ID = id
	f.items[id] = updated
	return &updated, nil
}

func (f *fakeProducts) Delete(ctx context.Context, id string) error {
	if f.blockDelID == "" || id == f.blockDelID {
		if f.delStarted != nil {
			f.delStarted <- struct{}{}
		}
		if f.blockDel != nil {
			<-f.blockDel
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFound("products", id)
	}
	delete(f.items, id)
	return nil
}

// fakeBlogs is an in-memory BlogStore.
type fakeBlogs struct {
	mu        sync.Mutex
	items     map[string]domain.Blog
	nextID    int
	listCalls int
}

func newFakeBlogs() *fakeBlogs {
	return &fakeBlogs{items: map[string]domain.Blog{}}
}

func (f *fakeBlogs) List(ctx context.Context) ([]domain.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]domain.Blog, 0, len(f.items))
	for _, b := range f.items {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBlogs) Get(ctx context.Context, id string) (*domain.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.items[id]
	if !ok {
		return nil, apperrors.NotFound("blogs", id)
	}
	return &b, nil
}

func (f *fakeBlogs) Create(ctx context.Context, blog *domain.Blog) (*domain.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := *blog
	created.ID = "b" + string(rune('0'+f.nextID))
	f.items[created.ID] = created
	return &created, nil
}

func (f *fakeBlogs) Update(ctx context.Context, id string, blog *domain.Blog) (*domain.Blog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return nil, apperrors.NotFound("blogs", id)
	}
	updated := *blog
	updated.ID = id
	f.items[id] = updated
	return &updated, nil
}

func (f *fakeBlogs) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return apperrors.NotFound("blogs", id)
	}
	delete(f.items, id)
	return nil
}

type fixture struct {
	manager    *Manager
	reconciler *Reconciler
	drafts     *DraftStore
	products   *fakeProducts
	blogs      *fakeBlogs
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	products := newFakeProducts()
	blogs := newFakeBlogs()
	drafts := NewDraftStore(client, time.Hour)
	reconciler := NewReconciler(products, blogs, testLogger())
	pipeline := imaging.NewPipeline(0, testLogger())
	manager := NewManager(drafts, products, blogs, pipeline, reconciler, testCatalog(), testLogger())

	return &fixture{
		manager:    manager,
		reconciler: reconciler,
		drafts:     drafts,
		products:   products,
		blogs:      blogs,
	}
}

func fillProductDraft(t *testing.T, fx *fixture) {
	t.Helper()
	_, err := fx.manager.PatchProduct(context.Background(), adminUser, ProductPatch{
		Name:     ptr("Washed Tee"),
		Category: ptr("Shirt"),
		Price:    ptr("250000"),
		Stock:    ptr("8"),
	})
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }

func TestManager_CreateProductLifecycle(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	// No form open yet.
	_, err := fx.manager.Current(ctx, adminUser)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	draft, err := fx.manager.OpenProductCreate(ctx, adminUser)
	require.NoError(t, err)
	assert.Equal(t, PhaseCreating, draft.Phase)
	assert.True(t, draft.Product.IsAvailable)

	fillProductDraft(t, fx)

	require.NoError(t, fx.manager.Submit(ctx, adminUser))

	// Successful submit closes the form and the new product shows up.
	_, err = fx.manager.Current(ctx, adminUser)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	products, err := fx.reconciler.Products(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Washed Tee", products[0].Name)
}

func TestManager_EditProductPrepopulates(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.products.items["p1"] = domain.Product{
		ID: "p1", Name: "Hoodie", Price: 480000, Stock: 2,
		Category: "Hoodies", Colors: []string{"Black", "Mauve"}, IsAvailable: true,
	}

	draft, err := fx.manager.OpenProductEdit(ctx, adminUser, "p1")
	require.NoError(t, err)

	assert.Equal(t, PhaseEditing, draft.Phase)
	assert.Equal(t, "Hoodie", draft.Product.Name)
	assert.Equal(t, []string{"Black"}, draft.Product.SelectedColors)
	assert.Equal(t, "Mauve", draft.Product.OtherColor)

	_, err = fx.manager.PatchProduct(ctx, adminUser, ProductPatch{Name: ptr("Renamed Hoodie")})
	require.NoError(t, err)
	require.NoError(t, fx.manager.Submit(ctx, adminUser))

	assert.Equal(t, "Renamed Hoodie", fx.products.items["p1"].Name)
	assert.ElementsMatch(t, []string{"Black", "Mauve"}, fx.products.items["p1"].Colors)
}

func TestManager_OpeningBlogFormEvictsProductDraft(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.manager.OpenProductCreate(ctx, adminUser)
	require.NoError(t, err)
	fillProductDraft(t, fx)

	_, err = fx.manager.OpenBlogCreate(ctx, adminUser)
	require.NoError(t, err)

	draft, err := fx.manager.Current(ctx, adminUser)
	require.NoError(t, err)
	assert.Equal(t, KindBlog, draft.Kind)
	assert.Empty(t, draft.Product.Name)
}

func TestManager_SubmitFailureKeepsDraft(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.manager.OpenProductCreate(ctx, adminUser)
	require.NoError(t, err)
	fillProductDraft(t, fx)

	fx.products.failCreate = apperrors.Upstream("create product", errors.New("backend down"))

	err = fx.manager.Submit(ctx, adminUser)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUpstream)

	// Everything the admin typed is still there, plus the recorded error.
	draft, err := fx.manager.Current(ctx, adminUser)
	require.NoError(t, err)
	assert.Equal(t, "Washed Tee", draft.Product.Name)
	assert.Equal(t, "250000", draft.Product.Price)
	assert.NotEmpty(t, draft.LastError)

	// Retry succeeds once the backend recovers.
	fx.products.failCreate = nil
	require.NoError(t, fx.manager.Submit(ctx, adminUser))
	_, err = fx.manager.Current(ctx, adminUser)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestManager_DuplicateSubmitRejected(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.manager.OpenProductCreate(ctx, adminUser)
	require.NoError(t, err)
	fillProductDraft(t, fx)

	fx.products.createStarted = make(chan struct{}, 1)
	fx.products.blockCreate = make(chan struct{})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- fx.manager.Submit(ctx, adminUser)
	}()

	<-fx.products.createStarted

	// Second click on the same open form: rejected before it reaches
	// the gateway.
	err = fx.manager.Submit(ctx, adminUser)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// The parked draft reports the in-flight phase.
	draft, err := fx.manager.Current(ctx, adminUser)
	require.NoError(t, err)
	assert.Equal(t, PhaseSubmitting, draft.Phase)

	close(fx.products.blockCreate)
	require.NoError(t, <-firstDone)

	// Exactly one product came out of the form.
	assert.Len(t, fx.products.items, 1)
	_, err = fx.manager.Current(ctx, adminUser)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestManager_InvalidNumbersNeverReachGateway(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.manager.OpenProductCreate(ctx, adminUser)
	require.NoError(t, err)
	_, err = fx.manager.PatchProduct(ctx, adminUser, ProductPatch{
		Name:     ptr("Tee"),
		Category: ptr("Shirt"),
		Price:    ptr("not-a-price"),
		Stock:    ptr("5"),
	})
	require.NoError(t, err)

	err = fx.manager.Submit(ctx, adminUser)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Empty(t, fx.products.items)
}

func TestManager_CancelDiscardsDraft(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.manager.OpenProductCreate(ctx, adminUser)
	require.NoError(t, err)
	fillProductDraft(t, fx)

	require.NoError(t, fx.manager.Cancel(ctx, adminUser))

	_, err = fx.manager.Current(ctx, adminUser)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Empty(t, fx.products.items)

	// Cancelling with nothing open is fine.
	require.NoError(t, fx.manager.Cancel(ctx, adminUser))
}

func TestManager_IngestImages(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.manager.OpenProductCreate(ctx, adminUser)
	require.NoError(t, err)

	draft, err := fx.manager.IngestImages(ctx, adminUser, []imaging.File{
		{Name: "a.png", Reader: bytes.NewReader(pngBytes)},
		{Name: "b.png", Reader: bytes.NewReader(pngBytes)},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, draft.Images.Len())

	// Products accumulate across uploads.
	draft, err = fx.manager.IngestImages(ctx, adminUser, []imaging.File{
		{Name: "c.png", Reader: bytes.NewReader(pngBytes)},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, draft.Images.Len())
	assert.Equal(t, "a.png", draft.Images.Previews[0].Name)

	draft, err = fx.manager.RemoveImage(ctx, adminUser, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, draft.Images.Len())
	assert.Equal(t, "b.png", draft.Images.Previews[0].Name)
}

func TestManager_BlogKeepsSingleImage(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.manager.OpenBlogCreate(ctx, adminUser)
	require.NoError(t, err)

	draft, err := fx.manager.IngestImages(ctx, adminUser, []imaging.File{
		{Name: "first.png", Reader: bytes.NewReader(pngBytes)},
	})
	require.NoError(t, err)
	require.Equal(t, 1, draft.Images.Len())

	// A second upload replaces rather than accumulates.
	draft, err = fx.manager.IngestImages(ctx, adminUser, []imaging.File{
		{Name: "second.png", Reader: bytes.NewReader(pngBytes)},
	})
	require.NoError(t, err)
	require.Equal(t, 1, draft.Images.Len())
	assert.Equal(t, "second.png", draft.Images.Previews[0].Name)
}

func TestReconciler_LoadFetchesBothListsConcurrently(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.products.items["p1"] = domain.Product{ID: "p1", Name: "Tee"}
	fx.blogs.items["b1"] = domain.Blog{ID: "b1", Title: "Lookbook"}

	require.NoError(t, fx.reconciler.Load(ctx))

	snap := fx.reconciler.Snapshot()
	assert.True(t, snap.ProductsLoaded)
	assert.True(t, snap.BlogsLoaded)
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Blogs, 1)
}

func TestReconciler_MutationRefreshesOnlyAffectedList(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	require.NoError(t, fx.reconciler.Load(ctx))
	productCalls := fx.products.listCalls
	blogCalls := fx.blogs.listCalls

	_, err := fx.manager.OpenProductCreate(ctx, adminUser)
	require.NoError(t, err)
	fillProductDraft(t, fx)
	require.NoError(t, fx.manager.Submit(ctx, adminUser))

	assert.Equal(t, productCalls+1, fx.products.listCalls)
	assert.Equal(t, blogCalls, fx.blogs.listCalls)
}

func TestReconciler_DeleteRequiresConfirmation(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.products.items["p1"] = domain.Product{ID: "p1"}

	err := fx.reconciler.DeleteProduct(ctx, "p1", false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, fx.products.items, "p1")

	require.NoError(t, fx.reconciler.DeleteProduct(ctx, "p1", true))
	assert.NotContains(t, fx.products.items, "p1")
}

func TestReconciler_DuplicateDeleteRejected(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.products.items["p1"] = domain.Product{ID: "p1"}
	fx.products.delStarted = make(chan struct{}, 1)
	fx.products.blockDel = make(chan struct{})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- fx.reconciler.DeleteProduct(ctx, "p1", true)
	}()

	<-fx.products.delStarted

	// Same row, second click: rejected while the first is in flight.
	err := fx.reconciler.DeleteProduct(ctx, "p1", true)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	snap := fx.reconciler.Snapshot()
	assert.Equal(t, []string{"product:p1"}, snap.DeletingIDs)

	close(fx.products.blockDel)
	require.NoError(t, <-firstDone)

	// The guard clears once the delete finishes.
	assert.Empty(t, fx.reconciler.Snapshot().DeletingIDs)
}

func TestReconciler_DeletesOnDifferentRowsProceed(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.products.items["p1"] = domain.Product{ID: "p1"}
	fx.products.items["p2"] = domain.Product{ID: "p2"}
	fx.products.blockDelID = "p1"
	fx.products.delStarted = make(chan struct{}, 1)
	fx.products.blockDel = make(chan struct{})

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- fx.reconciler.DeleteProduct(ctx, "p1", true)
	}()

	<-fx.products.delStarted

	// A different row is not held up by the one in flight.
	require.NoError(t, fx.reconciler.DeleteProduct(ctx, "p2", true))
	assert.NotContains(t, fx.products.items, "p2")
	assert.Equal(t, []string{"product:p1"}, fx.reconciler.Snapshot().DeletingIDs)

	close(fx.products.blockDel)
	require.NoError(t, <-firstDone)
	assert.NotContains(t, fx.products.items, "p1")
}

func TestReconciler_DeleteBlogRefreshesBlogListOnly(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	fx.blogs.items["b1"] = domain.Blog{ID: "b1"}
	require.NoError(t, fx.reconciler.Load(ctx))
	productCalls := fx.products.listCalls

	require.NoError(t, fx.reconciler.DeleteBlog(ctx, "b1", true))

	assert.Empty(t, fx.reconciler.Snapshot().Blogs)
	assert.Equal(t, productCalls, fx.products.listCalls)
}

func TestDraftStore_ExpiresWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewDraftStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, adminUser, NewProductDraft()))

	_, err := store.Get(ctx, adminUser)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = store.Get(ctx, adminUser)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
