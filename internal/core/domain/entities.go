package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// ID accepts both string and numeric identifiers from the upstream API.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Location3D is a placement position with altitude in meters.
type Location3D struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// Vector3 holds rotation (degrees) or scale factors.
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Transform3D places one prefab instance in the world.
type Transform3D struct {
	Location Location3D `json:"location"`
	Rotation Vector3    `json:"rotation"`
	Scale    Vector3    `json:"scale"`
}

// Prefab is a single asset inside a bundle.
type Prefab struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	SizeMB float64  `json:"sizeMB"`
	Tags   []string `json:"tags"`
}

// PlacementGroup places one prefab at several transforms.
type PlacementGroup struct {
	GroupID    string        `json:"groupId"`
	PrefabID   string        `json:"prefabId"`
	Transforms []Transform3D `json:"transforms"`
	Active     *bool         `json:"active,omitempty"`
}

// BundleLayout is the layout JSON uploaded with a bundle, echoed back by the server.
type BundleLayout struct {
	BundleID        string           `json:"bundleId"`
	BundleURL       string           `json:"bundleUrl"`
	Prefabs         []Prefab         `json:"prefabs"`
	PlacementGroups []PlacementGroup `json:"placementGroups"`
	Name            string           `json:"name"`
	Version         string           `json:"version"`
	Status          string           `json:"status"`
	Usage           string           `json:"usage"`
	OS              string           `json:"os"`
	UpdatedAt       string           `json:"updatedAt,omitempty"`
	TotalSizeMB     *float64         `json:"totalSizeMB,omitempty"`
	Tags            []string         `json:"tags"`
	Description     string           `json:"description,omitempty"`
}

// Bundle is a VR asset bundle registered with the platform.
type Bundle struct {
	BundleID        string           `json:"bundleId"`
	BundleURL       string           `json:"bundleUrl"`
	Prefabs         []Prefab         `json:"prefabs"`
	PlacementGroups []PlacementGroup `json:"placementGroups"`
	Name            string           `json:"name"`
	Version         string           `json:"version"`
	Status          string           `json:"status"`
	Usage           string           `json:"usage"`
	OS              string           `json:"os"`
	CreatedAt       string           `json:"createdAt,omitempty"`
	UpdatedAt       string           `json:"updatedAt,omitempty"`
	TotalSizeMB     *float64         `json:"totalSizeMB,omitempty"`
	Tags            []string         `json:"tags"`
	Description     string           `json:"description,omitempty"`
	Height          *float64         `json:"height,omitempty"`
	LayoutJSON      *BundleLayout    `json:"layoutJson,omitempty"`
	Location        *GeoJSONPoint    `json:"location,omitempty"`
}

// Some responses only carry size, status or timestamps inside layoutJson.

func (b Bundle) SizeMB() float64 {
	if b.TotalSizeMB != nil {
		return *b.TotalSizeMB
	}
	if b.LayoutJSON != nil && b.LayoutJSON.TotalSizeMB != nil {
		return *b.LayoutJSON.TotalSizeMB
	}
	return 0
}

func (b Bundle) EffectiveStatus() string {
	if b.Status != "" {
		return b.Status
	}
	if b.LayoutJSON != nil {
		return b.LayoutJSON.Status
	}
	return ""
}

func (b Bundle) Timestamp() time.Time {
	for _, v := range []string{b.UpdatedAt, b.CreatedAt, b.layoutUpdatedAt()} {
		if v == "" {
			continue
		}
		return ParseTimestamp(v)
	}
	return time.Time{}
}

func (b Bundle) layoutUpdatedAt() string {
	if b.LayoutJSON == nil {
		return ""
	}
	return b.LayoutJSON.UpdatedAt
}

func (b Bundle) SearchFields() []string {
	return append([]string{b.Name, b.BundleID}, b.Tags...)
}

func (b Bundle) NestedSearchFields() [][]string {
	nested := make([][]string, 0, len(b.Prefabs))
	for _, p := range b.Prefabs {
		nested = append(nested, append([]string{p.Name}, p.Tags...))
	}
	return nested
}

func (b Bundle) Category(field string) string {
	switch field {
	case "usage":
		return b.Usage
	case "status":
		return b.EffectiveStatus()
	case "os":
		return b.OS
	}
	return ""
}

func (b Bundle) SortSize() float64   { return b.SizeMB() }
func (b Bundle) SortTime() time.Time { return b.Timestamp() }
func (b Bundle) SortName() string    { return b.Name }

// GpsLocation is a plain lat/lon pair.
type GpsLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Asset is one prefab row flattened out of its bundle for the asset table.
type Asset struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	BundleKey string       `json:"bundleKey"`
	Version   string       `json:"version"`
	Kind      string       `json:"category"`
	SizeMB    float64      `json:"sizeMB"`
	UpdatedAt string       `json:"updatedAt"`
	Status    string       `json:"status"`
	Usage     string       `json:"usage"`
	Tags      []string     `json:"tags"`
	Location  *GpsLocation `json:"location,omitempty"`
}

func (a Asset) SearchFields() []string {
	return append([]string{a.Name, a.BundleKey, a.Version, a.Kind}, a.Tags...)
}

func (a Asset) NestedSearchFields() [][]string { return nil }

func (a Asset) Category(field string) string {
	switch field {
	case "usage":
		return a.Usage
	case "status":
		return a.Status
	case "category":
		return a.Kind
	}
	return ""
}

func (a Asset) SortSize() float64   { return a.SizeMB }
func (a Asset) SortTime() time.Time { return ParseTimestamp(a.UpdatedAt) }
func (a Asset) SortName() string    { return a.Name }

// Complaint is a civic complaint or AI diagnosis reported by citizens.
type Complaint struct {
	ID          ID            `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Severity    string        `json:"severity,omitempty"`
	Confidence  float64       `json:"confidence,omitempty"`
	District    string        `json:"district,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	ImageURL    string        `json:"s3Url,omitempty"`
	CreatedAt   string        `json:"createdAt,omitempty"`
	UpdatedAt   string        `json:"updatedAt,omitempty"`
	Location    *GeoJSONPoint `json:"location,omitempty"`
}

func (c Complaint) SearchFields() []string {
	return append([]string{c.Title, c.ID.String(), c.Description, c.District}, c.Tags...)
}

func (c Complaint) NestedSearchFields() [][]string { return nil }

func (c Complaint) Category(field string) string {
	switch field {
	case "status":
		return c.Status
	case "severity":
		return c.Severity
	}
	return ""
}

// SortSize orders complaints by diagnosis confidence.
func (c Complaint) SortSize() float64 { return c.Confidence }

func (c Complaint) SortTime() time.Time {
	if c.UpdatedAt != "" {
		return ParseTimestamp(c.UpdatedAt)
	}
	return ParseTimestamp(c.CreatedAt)
}

func (c Complaint) SortName() string { return c.Title }

// Echo is an AR "echo" message left by a user at a location.
type Echo struct {
	ID          ID            `json:"id"`
	Writer      string        `json:"writer"`
	Content     string        `json:"content"`
	Type        string        `json:"type,omitempty"`
	Status      string        `json:"status,omitempty"`
	ImageKey    string        `json:"imageKey,omitempty"`
	Likes       int           `json:"likes"`
	Views       int           `json:"views"`
	ReportCount int           `json:"reportCount"`
	CreatedAt   string        `json:"createdAt,omitempty"`
	Location    *GeoJSONPoint `json:"location,omitempty"`
}

func (e Echo) SearchFields() []string {
	return []string{e.Content, e.Writer, e.ID.String()}
}

func (e Echo) NestedSearchFields() [][]string { return nil }

func (e Echo) Category(field string) string {
	switch field {
	case "status":
		return e.Status
	case "type":
		return e.Type
	}
	return ""
}

// SortSize orders echoes by view count.
func (e Echo) SortSize() float64   { return float64(e.Views) }
func (e Echo) SortTime() time.Time { return ParseTimestamp(e.CreatedAt) }
func (e Echo) SortName() string    { return e.Content }

// ChangeCount is a counter with its change against the previous period.
type ChangeCount struct {
	Count      int     `json:"count"`
	ChangeRate float64 `json:"changeRate,omitempty"`
	Change     int     `json:"change,omitempty"`
}

// DashboardSummary is GET /dashboard/summary.
type DashboardSummary struct {
	TotalDiagnoses ChangeCount `json:"totalDiagnoses"`
	ResolutionRate struct {
		Rate       float64 `json:"rate"`
		ChangeRate float64 `json:"changeRate"`
	} `json:"resolutionRate"`
	EchoCount ChangeCount `json:"echoCount"`
}

// AiSummary is GET /dashboard/ai-summary.
type AiSummary struct {
	Total    ChangeCount `json:"total"`
	Resolved ChangeCount `json:"resolved"`
	Pending  ChangeCount `json:"pending"`
}

// WeeklyDiagnosis is one bar of the weekly diagnosis chart.
type WeeklyDiagnosis struct {
	Date     string `json:"date"`
	Total    int    `json:"total"`
	Resolved int    `json:"resolved"`
}

// TagDistribution is one slice of the diagnosis type pie chart.
type TagDistribution struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// HourlyComplaint is one point of the hourly complaint line chart.
type HourlyComplaint struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses the timestamp formats the upstream API emits.
// Unparseable or empty values return the zero time so they sort as oldest.
func ParseTimestamp(v string) time.Time {
	if v == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}
