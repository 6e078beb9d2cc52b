package query

import (
	"math"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// BundleStats summarises the bundle library. Historical and Promo both count "both".
type BundleStats struct {
	Total      int     `json:"total"`
	Historical int     `json:"historical"`
	Promo      int     `json:"promo"`
	StorageMB  float64 `json:"storageMB"`
}

func NewBundleStats(bundles []domain.Bundle) BundleStats {
	var s BundleStats
	for _, b := range bundles {
		s.Total++
		switch b.Usage {
		case "historical":
			s.Historical++
		case "promo":
			s.Promo++
		case "both":
			s.Historical++
			s.Promo++
		}
		s.StorageMB += b.SizeMB()
	}
	s.StorageMB = math.Round(s.StorageMB*100) / 100
	return s
}

// ComplaintStats counts complaints per status.
type ComplaintStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Reviewed int `json:"reviewed"`
	Resolved int `json:"resolved"`
}

// NewComplaintStats counts with DefaultVocabulary.
func NewComplaintStats(complaints []domain.Complaint) ComplaintStats {
	return DefaultVocabulary.ComplaintStats(complaints)
}
