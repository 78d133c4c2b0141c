package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeColors(t *testing.T) {
	tests := []struct {
		name     string
		selected []string
		freeText string
		want     []string
	}{
		{
			name:     "free text duplicates collapse",
			selected: []string{"Black", "Red"},
			freeText: "Red, Green, Green",
			want:     []string{"Black", "Red", "Green"},
		},
		{
			name:     "empty free text",
			selected: []string{"Black"},
			freeText: "",
			want:     []string{"Black"},
		},
		{
			name:     "blank entries dropped",
			selected: nil,
			freeText: " , Neon Pink, ,",
			want:     []string{"Neon Pink"},
		},
		{
			name:     "case-insensitive dedup keeps first spelling",
			selected: []string{"Black"},
			freeText: "black, BLACK, Olive",
			want:     []string{"Black", "Olive"},
		},
		{
			name:     "no selection only free text",
			selected: nil,
			freeText: "Mauve,Taupe",
			want:     []string{"Mauve", "Taupe"},
		},
		{
			name:     "everything empty",
			selected: nil,
			freeText: "",
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeColors(tt.selected, tt.freeText)
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestCatalog_SplitPalette(t *testing.T) {
	cat := Catalog{Colors: []string{"Black", "White", "Red"}}

	palette, other := cat.SplitPalette([]string{"Black", "Neon Pink", "red", "Mauve"})

	assert.Equal(t, []string{"Black", "Red"}, palette)
	assert.Equal(t, []string{"Neon Pink", "Mauve"}, other)
}

func TestCatalog_SplitPalette_Empty(t *testing.T) {
	cat := Catalog{Colors: []string{"Black"}}

	palette, other := cat.SplitPalette(nil)

	assert.Empty(t, palette)
	assert.Empty(t, other)
}

func TestCatalog_MembershipChecks(t *testing.T) {
	cat := Catalog{
		Categories: []string{"Shirt", "Pants"},
		Sizes:      []string{"XS", "S"},
		Colors:     []string{"Black"},
	}

	assert.True(t, cat.IsCategory("shirt"))
	assert.False(t, cat.IsCategory("Hat"))
	assert.True(t, cat.IsSize("xs"))
	assert.True(t, cat.IsPaletteColor("BLACK"))
	assert.False(t, cat.IsPaletteColor("Neon Pink"))
}

func TestProduct_CoverImage(t *testing.T) {
	p := &Product{Images: []string{"data:image/png;base64,AAA", "data:image/png;base64,BBB"}}
	assert.Equal(t, "data:image/png;base64,AAA", p.CoverImage())

	empty := &Product{}
	assert.Equal(t, "", empty.CoverImage())
}
