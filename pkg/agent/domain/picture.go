package domain

import "context"

// Picture is what the analysis core needs from one picture-of-the-day entry.
type Picture struct {
	// Reference is the image URL used as the analysis subject.
	Reference string `json:"reference"`
	// Summary is human-readable text describing the entry (title, explanation, ...).
	Summary string `json:"summary"`
	// IsImage is false for video entries, which cannot be analyzed.
	IsImage bool `json:"is_image"`
}

// SearchPayload is the result of a date-range search. Raw is returned to callers
// unmodified; References lists the image URLs in result order.
type SearchPayload struct {
	Raw        string   `json:"raw"`
	References []string `json:"references"`
}

// PictureSource supplies picture-of-the-day entries. date may be empty for today.
type PictureSource interface {
	Picture(ctx context.Context, date string, hd bool) (Picture, error)
	Search(ctx context.Context, startDate, endDate string, count int) (SearchPayload, error)
}
