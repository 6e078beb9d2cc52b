package query

import (
	"golang.org/x/text/language"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// Vocabulary holds the complaint and echo category values used by the upstream
// API. Filters on any other value are ignored, so these must match the wire.
type Vocabulary struct {
	ComplaintPending  string
	ComplaintReviewed string
	ComplaintResolved string
	Severities        []string
	EchoStatuses      []string
	EchoTypes         []string
}

// DefaultVocabulary is the set of labels rendered by the admin console.
var DefaultVocabulary = Vocabulary{
	ComplaintPending:  "대기",
	ComplaintReviewed: "검토됨",
	ComplaintResolved: "해결됨",
	Severities:        []string{"낮음", "보통", "높음"},
	EchoStatuses:      []string{"활성", "신고됨", "숨김"},
	EchoTypes:         []string{"텍스트", "이미지"},
}

// WithDefaults fills every empty entry of v from DefaultVocabulary.
func (v Vocabulary) WithDefaults() Vocabulary {
	d := DefaultVocabulary
	if v.ComplaintPending == "" {
		v.ComplaintPending = d.ComplaintPending
	}
	if v.ComplaintReviewed == "" {
		v.ComplaintReviewed = d.ComplaintReviewed
	}
	if v.ComplaintResolved == "" {
		v.ComplaintResolved = d.ComplaintResolved
	}
	if len(v.Severities) == 0 {
		v.Severities = d.Severities
	}
	if len(v.EchoStatuses) == 0 {
		v.EchoStatuses = d.EchoStatuses
	}
	if len(v.EchoTypes) == 0 {
		v.EchoTypes = d.EchoTypes
	}
	return v
}

func (v Vocabulary) ComplaintSchema() Schema {
	return Schema{
		Fields: map[string]Field{
			"status":   {Values: []string{v.ComplaintPending, v.ComplaintReviewed, v.ComplaintResolved}},
			"severity": {Values: v.Severities},
		},
		Locale: language.Korean,
	}
}

func (v Vocabulary) EchoSchema() Schema {
	return Schema{
		Fields: map[string]Field{
			"status": {Values: v.EchoStatuses},
			"type":   {Values: v.EchoTypes},
		},
		Locale: language.Korean,
	}
}

// ComplaintStats counts complaints into the three status buckets of v.
func (v Vocabulary) ComplaintStats(complaints []domain.Complaint) ComplaintStats {
	var s ComplaintStats
	for _, c := range complaints {
		s.Total++
		switch c.Status {
		case v.ComplaintPending:
			s.Pending++
		case v.ComplaintReviewed:
			s.Reviewed++
		case v.ComplaintResolved:
			s.Resolved++
		}
	}
	return s
}
