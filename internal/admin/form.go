// Package admin implements the content management workflow: one draft form
// at a time per admin, image ingestion into the draft, submission through
// the backend gateway, and list reconciliation after mutations.
package admin

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/imamaffandi/gloam-storefront/internal/apperrors"
	"github.com/imamaffandi/gloam-storefront/internal/domain"
	"github.com/imamaffandi/gloam-storefront/internal/imaging"
)

// EntityKind identifies which content type a draft edits.
type EntityKind string

const (
	KindProduct EntityKind = "product"
	KindBlog    EntityKind = "blog"
)

// Phase is the lifecycle stage of a draft form.
type Phase string

const (
	// PhaseCreating is an open form with no backing entity yet.
	PhaseCreating Phase = "creating"
	// PhaseEditing is an open form pre-populated from an existing entity.
	PhaseEditing Phase = "editing"
	// PhaseSubmitting is set while a submit is pushing the draft to the
	// backend.
	PhaseSubmitting Phase = "submitting"
)

// ProductForm holds the product fields as the admin typed them. Price and
// stock stay raw strings until submission so a half-typed value never
// corrupts the draft.
type ProductForm struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          string   `json:"price"`
	Stock          string   `json:"stock"`
	Category       string   `json:"category"`
	Sizes          []string `json:"sizes"`
	SelectedColors []string `json:"selectedColors"`
	OtherColor     string   `json:"otherColor"`
	IsAvailable    bool     `json:"isAvailable"`
}

// BlogForm holds the blog fields as typed.
type BlogForm struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Draft is the persisted state of the single open admin form. Exactly one
// draft exists per admin session; opening another form replaces it.
type Draft struct {
	Kind      EntityKind       `json:"kind"`
	Phase     Phase            `json:"phase"`
	EntityID  string           `json:"entityId,omitempty"`
	Product   ProductForm      `json:"product"`
	Blog      BlogForm         `json:"blog"`
	Images    imaging.ImageSet `json:"images"`
	LastError string           `json:"lastError,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NewProductDraft returns an empty product draft in the creating phase.
// New products default to available, matching how the form opens.
func NewProductDraft() *Draft {
	return &Draft{
		Kind:  KindProduct,
		Phase: PhaseCreating,
		Product: ProductForm{
			Sizes:          []string{},
			SelectedColors: []string{},
			IsAvailable:    true,
		},
		UpdatedAt: time.Now().UTC(),
	}
}

// NewBlogDraft returns an empty blog draft in the creating phase.
func NewBlogDraft() *Draft {
	return &Draft{
		Kind:      KindBlog,
		Phase:     PhaseCreating,
		UpdatedAt: time.Now().UTC(),
	}
}

// DraftFromProduct builds an editing draft pre-populated from an existing
// product. Palette colors land in the checkbox selection; everything else
// joins into the free-text color buffer.
func DraftFromProduct(p *domain.Product, catalog domain.Catalog) *Draft {
	palette, other := catalog.SplitPalette(p.Colors)

	return &Draft{
		Kind:     KindProduct,
		Phase:    PhaseEditing,
		EntityID: p.ID,
		Product: ProductForm{
			Name:           p.Name,
			Description:    p.Description,
			Price:          formatPrice(p.Price),
			Stock:          strconv.Itoa(p.Stock),
			Category:       p.Category,
			Sizes:          append([]string{}, p.Sizes...),
			SelectedColors: palette,
			OtherColor:     strings.Join(other, ", "),
			IsAvailable:    p.IsAvailable,
		},
		Images:    imaging.FromSources(p.Images),
		UpdatedAt: time.Now().UTC(),
	}
}

// DraftFromBlog builds an editing draft pre-populated from an existing blog.
func DraftFromBlog(b *domain.Blog) *Draft {
	draft := &Draft{
		Kind:     KindBlog,
		Phase:    PhaseEditing,
		EntityID: b.ID,
		Blog: BlogForm{
			Title:   b.Title,
			Content: b.Content,
		},
		UpdatedAt: time.Now().UTC(),
	}
	if b.Image != "" {
		draft.Images = imaging.FromSources([]string{b.Image})
	}
	return draft
}

// ToProduct validates and coerces the draft into a product ready to submit.
// Garbage numeric input is rejected here, before the backend ever sees it.
func (d *Draft) ToProduct(catalog domain.Catalog) (*domain.Product, error) {
	if d.Kind != KindProduct {
		return nil, apperrors.InvalidInput("draft is not a product form")
	}

	f := d.Product
	if strings.TrimSpace(f.Name) == "" {
		return nil, apperrors.InvalidInput("name is required")
	}
	if strings.TrimSpace(f.Category) == "" {
		return nil, apperrors.InvalidInput("category is required")
	}

	price, err := parsePrice(f.Price)
	if err != nil {
		return nil, err
	}
	stock, err := parseStock(f.Stock)
	if err != nil {
		return nil, err
	}

	return &domain.Product{
		ID:          d.EntityID,
		Name:        strings.TrimSpace(f.Name),
		Description: strings.TrimSpace(f.Description),
		Price:       price,
		Stock:       stock,
		Category:    f.Category,
		Sizes:       append([]string{}, f.Sizes...),
		Colors:      domain.MergeColors(f.SelectedColors, f.OtherColor),
		Images:      d.Images.Sources(),
		IsAvailable: f.IsAvailable,
	}, nil
}

// ToBlog validates and coerces the draft into a blog ready to submit. Only
// the first image in the set is used; blogs carry a single image.
func (d *Draft) ToBlog() (*domain.Blog, error) {
	if d.Kind != KindBlog {
		return nil, apperrors.InvalidInput("draft is not a blog form")
	}

	f := d.Blog
	if strings.TrimSpace(f.Title) == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if strings.TrimSpace(f.Content) == "" {
		return nil, apperrors.InvalidInput("content is required")
	}

	blog := &domain.Blog{
		ID:      d.EntityID,
		Title:   strings.TrimSpace(f.Title),
		Content: f.Content,
	}
	if srcs := d.Images.Sources(); len(srcs) > 0 {
		blog.Image = srcs[0]
	}
	return blog, nil
}

func parsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperrors.InvalidInput("price is required")
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, apperrors.InvalidInput(fmt.Sprintf("price %q is not a number", raw))
	}
	if price < 0 {
		return 0, apperrors.InvalidInput("price cannot be negative")
	}
	return price, nil
}

func parseStock(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, apperrors.InvalidInput("stock is required")
	}
	stock, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("stock %q is not a whole number", raw))
	}
	if stock < 0 {
		return 0, apperrors.InvalidInput("stock cannot be negative")
	}
	return stock, nil
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}
