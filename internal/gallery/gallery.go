// Package gallery holds the listing view logic shared by the uploader
// dashboard and the buyer gallery commands.
package gallery

import "github.com/photomart/cli/internal/models"

// Stats summarizes an uploader's dashboard counts.
type Stats struct {
	Total     int
	Published int
	Drafts    int
}

// Summarize counts published photos and drafts still needing metadata.
func Summarize(photos []models.Photo) Stats {
	stats := Stats{Total: len(photos)}
	for _, photo := range photos {
		if photo.HasCompleteMetadata {
			stats.Published++
		} else {
			stats.Drafts++
		}
	}
	return stats
}

// SplitDrafts partitions photos into buyer-visible and draft groups,
// preserving order.
func SplitDrafts(photos []models.Photo) (published, drafts []models.Photo) {
	for _, photo := range photos {
		if photo.HasCompleteMetadata {
			published = append(published, photo)
		} else {
			drafts = append(drafts, photo)
		}
	}
	return published, drafts
}

// BuyerVisible filters out drafts. Buyer-facing rendering must never show a
// photo whose metadata is incomplete, even if one leaks into a listing page.
func BuyerVisible(photos []models.Photo) []models.Photo {
	visible := make([]models.Photo, 0, len(photos))
	for _, photo := range photos {
		if photo.HasCompleteMetadata {
			visible = append(visible, photo)
		}
	}
	return visible
}

// Title returns the photo title or a placeholder for drafts.
func Title(p models.Photo) string {
	if p.Title != nil && *p.Title != "" {
		return *p.Title
	}
	return "Untitled"
}

// StatusLabel renders the visibility state shown on the uploader dashboard.
func StatusLabel(p models.Photo) string {
	if p.HasCompleteMetadata {
		return "Visible"
	}
	return "Draft"
}
