package domain

// Product represents a catalog product as stored by the backend API.
// Images are inline base64 data URIs. Their order is significant: the
// entry at index 0 renders as the cover image everywhere.
type Product struct {
	ID          string   `json:"_id,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Category    string   `json:"category"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Images      []string `json:"images"`
	IsAvailable bool     `json:"isAvailable"`
}

// CoverImage returns the primary image data URI, or "" when the product
// has no images.
func (p *Product) CoverImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
