package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/domain"
	"github.com/imamaffandi/gloam-storefront/internal/imaging"
)

func testCatalog() domain.Catalog {
	return domain.Catalog{
		Categories: []string{"Shirt", "Pants", "Hoodies"},
		Sizes:      []string{"S", "M", "L"},
		Colors:     []string{"Black", "White", "Red"},
	}
}

func TestDraftFromProduct_PrepopulatesForm(t *testing.T) {
	product := &domain.Product{
		ID:          "p1",
		Name:        "Washed Tee",
		Description: "heavyweight cotton",
		Price:       250000.5,
		Stock:       12,
		Category:    "Shirt",
		Sizes:       []string{"M", "L"},
		Colors:      []string{"black", "Neon Pink", "Mauve"},
		Images:      []string{"data:image/png;base64,COVER"},
		IsAvailable: true,
	}

	draft := DraftFromProduct(product, testCatalog())

	assert.Equal(t, KindProduct, draft.Kind)
	assert.Equal(t, PhaseEditing, draft.Phase)
	assert.Equal(t, "p1", draft.EntityID)
	assert.Equal(t, "250000.5", draft.Product.Price)
	assert.Equal(t, "12", draft.Product.Stock)
	// The stored "black" matches the palette entry and comes back in
	// palette casing; custom colors join into the free-text buffer.
	assert.Equal(t, []string{"Black"}, draft.Product.SelectedColors)
	assert.Equal(t, "Neon Pink, Mauve", draft.Product.OtherColor)
	assert.Equal(t, 1, draft.Images.Len())
}

func TestDraft_ToProduct_RoundTripsColors(t *testing.T) {
	original := &domain.Product{
		ID:          "p1",
		Name:        "Washed Tee",
		Price:       100,
		Stock:       3,
		Category:    "Shirt",
		Colors:      []string{"Black", "Neon Pink"},
		IsAvailable: true,
	}

	draft := DraftFromProduct(original, testCatalog())
	rebuilt, err := draft.ToProduct(testCatalog())
	require.NoError(t, err)

	assert.ElementsMatch(t, original.Colors, rebuilt.Colors)
}

func TestDraft_ToProduct_MergesOtherColors(t *testing.T) {
	draft := NewProductDraft()
	draft.Product.Name = "Tee"
	draft.Product.Category = "Shirt"
	draft.Product.Price = "100"
	draft.Product.Stock = "5"
	draft.Product.SelectedColors = []string{"Black"}
	draft.Product.OtherColor = "Olive, black, Olive"

	product, err := draft.ToProduct(testCatalog())
	require.NoError(t, err)

	assert.Equal(t, []string{"Black", "Olive"}, product.Colors)
}

func TestDraft_ToProduct_RejectsGarbageNumbers(t *testing.T) {
	tests := []struct {
		name  string
		price string
		stock string
	}{
		{name: "non-numeric price", price: "abc", stock: "5"},
		{name: "negative price", price: "-10", stock: "5"},
		{name: "empty price", price: "", stock: "5"},
		{name: "fractional stock", price: "100", stock: "2.5"},
		{name: "negative stock", price: "100", stock: "-1"},
		{name: "non-numeric stock", price: "100", stock: "lots"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := NewProductDraft()
			draft.Product.Name = "Tee"
			draft.Product.Category = "Shirt"
			draft.Product.Price = tt.price
			draft.Product.Stock = tt.stock

			_, err := draft.ToProduct(testCatalog())
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestDraft_ToProduct_RequiresNameAndCategory(t *testing.T) {
	draft := NewProductDraft()
	draft.Product.Price = "100"
	draft.Product.Stock = "1"

	_, err := draft.ToProduct(testCatalog())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	draft.Product.Name = "Tee"
	_, err = draft.ToProduct(testCatalog())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDraft_ToProduct_ImagesKeepOrder(t *testing.T) {
	draft := NewProductDraft()
	draft.Product.Name = "Tee"
	draft.Product.Category = "Shirt"
	draft.Product.Price = "100"
	draft.Product.Stock = "1"
	draft.Images.Append([]imaging.Preview{
		{ID: "1", Src: "data:image/png;base64,COVER"},
		{ID: "2", Src: "data:image/png;base64,SECOND"},
	})

	product, err := draft.ToProduct(testCatalog())
	require.NoError(t, err)
	assert.Equal(t, []string{"data:image/png;base64,COVER", "data:image/png;base64,SECOND"}, product.Images)
}

func TestDraft_ToBlog(t *testing.T) {
	blog := &domain.Blog{ID: "b1", Title: "Lookbook", Content: "body", Image: "data:image/png;base64,X"}
	draft := DraftFromBlog(blog)

	assert.Equal(t, PhaseEditing, draft.Phase)
	assert.Equal(t, 1, draft.Images.Len())

	rebuilt, err := draft.ToBlog()
	require.NoError(t, err)
	assert.Equal(t, blog.Image, rebuilt.Image)
	assert.Equal(t, blog.Title, rebuilt.Title)
}

func TestDraft_ToBlog_RequiresTitleAndContent(t *testing.T) {
	draft := NewBlogDraft()
	_, err := draft.ToBlog()
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	draft.Blog.Title = "Lookbook"
	_, err = draft.ToBlog()
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestDraft_KindMismatch(t *testing.T) {
	product := NewProductDraft()
	_, err := product.ToBlog()
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	blog := NewBlogDraft()
	_, err = blog.ToProduct(testCatalog())
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
