package domain

import "strings"

// Catalog carries the configured enumerations offered by the admin form.
// The lists are configuration, not a server-enforced contract: the backend
// accepts any category string, so membership checks are advisory and
// case-insensitive.
type Catalog struct {
	Categories []string
	Sizes      []string
	Colors     []string
}

// IsCategory reports whether the given value matches a configured category,
// ignoring case.
func (c Catalog) IsCategory(v string) bool {
	return containsFold(c.Categories, v)
}

// IsSize reports whether the given value matches a configured size,
// ignoring case.
func (c Catalog) IsSize(v string) bool {
	return containsFold(c.Sizes, v)
}

// IsPaletteColor reports whether the given value matches a configured
// palette color, ignoring case.
func (c Catalog) IsPaletteColor(v string) bool {
	return containsFold(c.Colors, v)
}

// SplitPalette partitions an entity's colors into the configured palette
// selection (in palette casing) and the remaining custom colors (in entity
// casing, original order preserved). Used to rebuild the admin form's
// free-text color buffer when editing.
func (c Catalog) SplitPalette(colors []string) (palette, other []string) {
	for _, col := range colors {
		if p, ok := c.paletteMatch(col); ok {
			if !containsFold(palette, p) {
				palette = append(palette, p)
			}
			continue
		}
		if !containsFold(other, col) {
			other = append(other, col)
		}
	}
	return palette, other
}

func (c Catalog) paletteMatch(v string) (string, bool) {
	for _, p := range c.Colors {
		if strings.EqualFold(p, v) {
			return p, true
		}
	}
	return "", false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}
