package casing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/echoadmin/internal/pkg/casing"
)

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"bundleUrl":      "bundle_url",
		"totalSizeMB":    "total_size_m_b",
		"created_at":     "created_at",
		"already_Snake":  "already_snake",
		"id":             "id",
		"placementGroup": "placement_group",
	}
	for in, want := range tests {
		assert.Equal(t, want, casing.ToSnake(in), in)
	}
}

func TestToCamel(t *testing.T) {
	tests := map[string]string{
		"bundle_url":    "bundleUrl",
		"created_at":    "createdAt",
		"S3_url":        "S3Url",
		"layout_json":   "layoutJson",
		"plain":         "plain",
		"trailing_":     "trailing_",
		"report_count":  "reportCount",
		"double__under": "double_Under",
	}
	for in, want := range tests {
		assert.Equal(t, want, casing.ToCamel(in), in)
	}
}

func TestTransformKeys_Deep(t *testing.T) {
	in := map[string]any{
		"bundle_id": "b1",
		"layout_json": map[string]any{
			"placement_groups": []any{
				map[string]any{"prefab_id": "p1", "is_active": true},
			},
		},
		"tags": []any{"tag_one"},
	}

	got := casing.TransformKeys(in, casing.Camel)

	assert.Equal(t, map[string]any{
		"bundleId": "b1",
		"layoutJson": map[string]any{
			"placementGroups": []any{
				map[string]any{"prefabId": "p1", "isActive": true},
			},
		},
		"tags": []any{"tag_one"},
	}, got)

	back := casing.TransformKeys(got, casing.Snake)
	assert.Equal(t, in, back)
}

func TestTransformKeys_Scalars(t *testing.T) {
	assert.Equal(t, 3.0, casing.TransformKeys(3.0, casing.Camel))
	assert.Nil(t, casing.TransformKeys(nil, casing.Snake))
}
