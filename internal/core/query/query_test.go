package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/core/query"
)

func ptr(f float64) *float64 { return &f }

func bundleNames(bs []domain.Bundle) []string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Name
	}
	return names
}

func sampleBundles() []domain.Bundle {
	return []domain.Bundle{
		{BundleID: "b1", Name: "덕수궁 석조전", Usage: "historical", Status: "published", UpdatedAt: "2024-03-01T09:00:00Z", TotalSizeMB: ptr(120)},
		{BundleID: "b2", Name: "Summer Promo", Usage: "promo", Status: "draft", UpdatedAt: "2024-05-10T09:00:00Z", TotalSizeMB: ptr(40)},
		{BundleID: "b3", Name: "경복궁", Usage: "both", Status: "published", CreatedAt: "2024-04-01", LayoutJSON: &domain.BundleLayout{TotalSizeMB: ptr(300)}},
		{BundleID: "b4", Name: "Lamp Post Pack", Usage: "promo", Tags: []string{"street"}, Prefabs: []domain.Prefab{{ID: "p1", Name: "Lamp", Tags: []string{"light"}}}},
	}
}

func TestApply_SortScenario(t *testing.T) {
	records := []domain.Bundle{
		{Name: "나", UpdatedAt: "2024-01-01"},
		{Name: "가", UpdatedAt: "2024-06-01"},
	}

	recent := query.Apply(records, query.Spec{SortKey: query.SortRecent}, query.BundleSchema)
	assert.Equal(t, []string{"가", "나"}, bundleNames(recent))
	assert.Equal(t, "2024-06-01", recent[0].UpdatedAt)

	byName := query.Apply(records, query.Spec{SortKey: query.SortName}, query.BundleSchema)
	assert.Equal(t, []string{"가", "나"}, bundleNames(byName))

	// Same names, reversed timestamps: recency and name order disagree.
	records[0].UpdatedAt, records[1].UpdatedAt = "2024-06-01", "2024-01-01"
	recent = query.Apply(records, query.Spec{SortKey: query.SortRecent}, query.BundleSchema)
	assert.Equal(t, []string{"나", "가"}, bundleNames(recent))
}

func TestApply_NameSortMixesScripts(t *testing.T) {
	records := []domain.Bundle{{Name: "하늘"}, {Name: "Alpha"}, {Name: "가람"}, {Name: "beta"}}

	got := query.Apply(records, query.Spec{SortKey: query.SortName}, query.BundleSchema)

	names := bundleNames(got)
	assert.Less(t, indexOf(names, "가람"), indexOf(names, "하늘"))
	assert.Less(t, indexOf(names, "Alpha"), indexOf(names, "beta"))
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}

func TestApply_SizeSortUsesLayoutFallback(t *testing.T) {
	got := query.Apply(sampleBundles(), query.Spec{SortKey: query.SortSize}, query.BundleSchema)
	assert.Equal(t, []string{"b3", "b1", "b2", "b4"}, []string{got[0].BundleID, got[1].BundleID, got[2].BundleID, got[3].BundleID})
}

func TestApply_RecentSortsMissingTimestampsLast(t *testing.T) {
	got := query.Apply(sampleBundles(), query.Spec{SortKey: "recent"}, query.BundleSchema)
	require.Len(t, got, 4)
	assert.Equal(t, "b2", got[0].BundleID)
	assert.Equal(t, "b3", got[1].BundleID)
	assert.Equal(t, "b1", got[2].BundleID)
	assert.Equal(t, "b4", got[3].BundleID)
}

func TestApply_StableTies(t *testing.T) {
	records := []domain.Bundle{
		{BundleID: "x1", TotalSizeMB: ptr(5)},
		{BundleID: "x2", TotalSizeMB: ptr(5)},
		{BundleID: "x3", TotalSizeMB: ptr(9)},
		{BundleID: "x4", TotalSizeMB: ptr(5)},
	}
	got := query.Apply(records, query.Spec{SortKey: query.SortSize}, query.BundleSchema)
	assert.Equal(t, "x3", got[0].BundleID)
	assert.Equal(t, "x1", got[1].BundleID)
	assert.Equal(t, "x2", got[2].BundleID)
	assert.Equal(t, "x4", got[3].BundleID)
}

func TestApply_NestedFreeText(t *testing.T) {
	records := []domain.Bundle{{
		Name:    "Bundle A",
		Tags:    []string{},
		Prefabs: []domain.Prefab{{Name: "x", Tags: []string{"lamp"}}},
	}}

	assert.Len(t, query.Apply(records, query.Spec{FreeText: "lamp"}, query.BundleSchema), 1)
	assert.Len(t, query.Apply(records, query.Spec{FreeText: "LAMP"}, query.BundleSchema), 1)
	assert.Empty(t, query.Apply(records, query.Spec{FreeText: "nonexistent"}, query.BundleSchema))
}

func TestApply_CombinedUsageMatchesEitherFilter(t *testing.T) {
	historical := query.Apply(sampleBundles(), query.Spec{CategoryFilters: map[string]string{"usage": "historical"}}, query.BundleSchema)
	assert.ElementsMatch(t, []string{"b1", "b3"}, ids(historical))

	promo := query.Apply(sampleBundles(), query.Spec{CategoryFilters: map[string]string{"usage": "promo"}}, query.BundleSchema)
	assert.ElementsMatch(t, []string{"b2", "b3", "b4"}, ids(promo))

	both := query.Apply(sampleBundles(), query.Spec{CategoryFilters: map[string]string{"usage": "both"}}, query.BundleSchema)
	assert.ElementsMatch(t, []string{"b3"}, ids(both))
}

func TestApply_FiltersCombine(t *testing.T) {
	got := query.Apply(sampleBundles(), query.Spec{
		FreeText:        "궁",
		CategoryFilters: map[string]string{"usage": "historical", "status": "published"},
	}, query.BundleSchema)
	assert.ElementsMatch(t, []string{"b1", "b3"}, ids(got))
}

func ids(bs []domain.Bundle) []string {
	out := make([]string, len(bs))
	for i, b := range bs {
		out[i] = b.BundleID
	}
	return out
}

func TestApply_UnknownAndAllFiltersDoNotNarrow(t *testing.T) {
	for _, filters := range []map[string]string{
		{"usage": "all"},
		{"usage": ""},
		{"usage": "hologram"},
		{"colour": "red"},
	} {
		got := query.Apply(sampleBundles(), query.Spec{CategoryFilters: filters}, query.BundleSchema)
		assert.Len(t, got, 4, "filters %v", filters)
	}
}

func TestApply_EmptyInput(t *testing.T) {
	got := query.Apply([]domain.Bundle{}, query.Spec{FreeText: "x", SortKey: query.SortName}, query.BundleSchema)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got = query.Apply[domain.Bundle](nil, query.Spec{}, query.BundleSchema)
	assert.Empty(t, got)
}

func TestApply_Idempotent(t *testing.T) {
	specs := []query.Spec{
		{SortKey: query.SortRecent},
		{SortKey: query.SortSize, FreeText: "p"},
		{SortKey: query.SortName, CategoryFilters: map[string]string{"usage": "promo"}},
	}
	for _, spec := range specs {
		once := query.Apply(sampleBundles(), spec, query.BundleSchema)
		twice := query.Apply(once, spec, query.BundleSchema)
		assert.Equal(t, once, twice)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	input := sampleBundles()
	before := sampleBundles()

	out := query.Apply(input, query.Spec{SortKey: query.SortName}, query.BundleSchema)
	require.Len(t, out, len(input))

	assert.Equal(t, before, input)
	out[0].Name = "changed"
	assert.Equal(t, before[0].Name, input[0].Name)
}

func TestApply_ComplaintsAndEchoes(t *testing.T) {
	complaints := []domain.Complaint{
		{ID: "1", Title: "도로 파손", Status: "대기", Severity: "높음", Confidence: 0.7},
		{ID: "2", Title: "Broken lamp", Status: "해결됨", Severity: "낮음", Confidence: 0.9},
		{ID: "3", Title: "불법 주차", Status: "대기", Severity: "낮음", Confidence: 0.4},
	}
	got := query.Apply(complaints, query.Spec{
		CategoryFilters: map[string]string{"status": "대기"},
		SortKey:         query.SortSize,
	}, query.ComplaintSchema)
	require.Len(t, got, 2)
	assert.Equal(t, domain.ID("1"), got[0].ID)

	echoes := []domain.Echo{
		{ID: "e1", Content: "Hello from Jongno", Writer: "mina", Type: "텍스트", Views: 3},
		{ID: "e2", Content: "사진", Writer: "jun", Type: "이미지", Views: 10},
	}
	gotEchoes := query.Apply(echoes, query.Spec{FreeText: "MINA"}, query.EchoSchema)
	require.Len(t, gotEchoes, 1)
	assert.Equal(t, domain.ID("e1"), gotEchoes[0].ID)
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, query.SortSize, query.ParseSortKey("size"))
	assert.Equal(t, query.SortName, query.ParseSortKey(" Name "))
	assert.Equal(t, query.SortRecent, query.ParseSortKey(""))
	assert.Equal(t, query.SortRecent, query.ParseSortKey("popularity"))
}

func TestApply_CustomVocabulary(t *testing.T) {
	complaints := []domain.Complaint{
		{ID: "1", Status: "open"},
		{ID: "2", Status: "closed"},
	}
	spec := query.Spec{CategoryFilters: map[string]string{"status": "open"}}

	assert.Len(t, query.Apply(complaints, spec, query.ComplaintSchema), 2, "unknown value does not narrow")

	v := query.Vocabulary{ComplaintPending: "open", ComplaintResolved: "closed"}.WithDefaults()
	got := query.Apply(complaints, spec, v.ComplaintSchema())
	require.Len(t, got, 1)
	assert.Equal(t, domain.ID("1"), got[0].ID)
	assert.Equal(t, "검토됨", v.ComplaintReviewed)
}
