package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

func TestID_UnmarshalNumberOrString(t *testing.T) {
	var got []struct {
		ID domain.ID `json:"id"`
	}
	if err := json.Unmarshal([]byte(`[{"id":42},{"id":"c-7"},{"id":null}]`), &got); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.ID{"42", "c-7", ""}
	for i, w := range want {
		if got[i].ID != w {
			t.Errorf("item %d: expected %q, got %q", i, w, got[i].ID)
		}
	}
}

func TestBundle_LayoutFallbacks(t *testing.T) {
	size := 12.5
	b := domain.Bundle{
		LayoutJSON: &domain.BundleLayout{Status: "draft", UpdatedAt: "2024-02-03T04:05:06Z", TotalSizeMB: &size},
	}

	if b.SizeMB() != 12.5 {
		t.Errorf("expected size from layoutJson, got %v", b.SizeMB())
	}
	if b.EffectiveStatus() != "draft" {
		t.Errorf("expected status from layoutJson, got %q", b.EffectiveStatus())
	}
	if !b.Timestamp().Equal(time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)) {
		t.Errorf("unexpected timestamp %v", b.Timestamp())
	}

	b.CreatedAt = "2024-01-01"
	if b.Timestamp().Month() != time.January {
		t.Errorf("createdAt should win over layoutJson.updatedAt, got %v", b.Timestamp())
	}
}

func TestBundle_MissingValuesDefault(t *testing.T) {
	var b domain.Bundle
	if b.SizeMB() != 0 {
		t.Errorf("expected 0 size, got %v", b.SizeMB())
	}
	if !b.Timestamp().IsZero() {
		t.Errorf("expected zero time, got %v", b.Timestamp())
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		zero bool
	}{
		{"2024-06-01T10:00:00.123Z", false},
		{"2024-06-01 10:00", false},
		{"2024-06-01", false},
		{"1717236000000", false},
		{"yesterday", true},
		{"", true},
	}
	for _, tt := range tests {
		if got := domain.ParseTimestamp(tt.in); got.IsZero() != tt.zero {
			t.Errorf("ParseTimestamp(%q) = %v", tt.in, got)
		}
	}
}

func TestGeoJSONPoint(t *testing.T) {
	p := &domain.GeoJSONPoint{Type: "Point", Coordinates: []float64{126.97, 37.57}}
	pt, ok := p.Point()
	if !ok || pt.Latitude != 37.57 || pt.Longitude != 126.97 {
		t.Errorf("unexpected point %+v ok=%v", pt, ok)
	}

	var missing *domain.GeoJSONPoint
	if _, ok := missing.Point(); ok {
		t.Error("nil location should not convert")
	}
}

func TestFinalizeResult_ID(t *testing.T) {
	if id := (domain.FinalizeResult{"id": float64(17)}).ID(); id != "17" {
		t.Errorf("expected 17, got %q", id)
	}
	if id := (domain.FinalizeResult{}).ID(); id != "" {
		t.Errorf("expected empty id, got %q", id)
	}
}
