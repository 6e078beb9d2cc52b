package upstream_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/echoadmin/internal/adapters/upstream"
	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/pkg/config"
)

func newClient(t *testing.T, h http.HandlerFunc) *upstream.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return upstream.New(config.UpstreamConfig{BaseURL: srv.URL + "/", Timeout: 5, Token: "tok"})
}

func TestListBundles_NormalizesSnakeCase(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bundles", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[{"bundle_id":"b1","name":"경복궁","total_size_mb":12.5,"layout_json":{"placement_groups":[{"group_id":"g1","prefab_id":"p1"}]},"location":{"type":"Point","coordinates":[126.97,37.57]}}]`)
	})

	bundles, err := c.ListBundles(context.Background())
	require.NoError(t, err)
	require.Len(t, bundles, 1)
	b := bundles[0]
	assert.Equal(t, "b1", b.BundleID)
	require.NotNil(t, b.LayoutJSON)
	require.Len(t, b.LayoutJSON.PlacementGroups, 1)
	assert.Equal(t, "p1", b.LayoutJSON.PlacementGroups[0].PrefabID)
	pt, ok := b.Location.Point()
	require.True(t, ok)
	assert.InDelta(t, 37.57, pt.Latitude, 1e-9)
}

func TestListComplaints_AcceptsEnvelope(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[{"id":7,"title":"pothole","status":"대기","S3_url":"s3://b/k.jpg"}],"total":1}`)
	})

	complaints, err := c.ListComplaints(context.Background())
	require.NoError(t, err)
	require.Len(t, complaints, 1)
	assert.Equal(t, domain.ID("7"), complaints[0].ID)
	assert.Equal(t, "s3://b/k.jpg", complaints[0].ImageURL)
}

func TestGetComplaint_NotFound(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"complaint 9 not found"}`)
	})

	_, err := c.GetComplaint(context.Background(), "9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	msg, ok := domain.ServerMessage(err)
	assert.True(t, ok)
	assert.Equal(t, "complaint 9 not found", msg)
}

func TestResolveComplaint_EmptyBody(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/complaints/complaints-list/12/resolve", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	got, err := c.ResolveComplaint(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, domain.ID("12"), got.ID)
	assert.Empty(t, got.Status)
}

func TestPresignComplaintImage(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "s3://bucket/a.jpg", body["S3_url"])
		_, _ = io.WriteString(w, `{"presigned_url":"https://signed/a.jpg"}`)
	})

	got, err := c.PresignComplaintImage(context.Background(), "s3://bucket/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://signed/a.jpg", got)
}

func TestListEchoes_WalksPages(t *testing.T) {
	pages := 0
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		pages++
		if r.URL.Query().Get("page") == "1" {
			items := make([]map[string]any, 200)
			for i := range items {
				items[i] = map[string]any{"id": i, "content": "x"}
			}
			_ = json.NewEncoder(w).Encode(items)
			return
		}
		_, _ = io.WriteString(w, `[{"id":"last","content":"tail","report_count":2}]`)
	})

	echoes, err := c.ListEchoes(context.Background())
	require.NoError(t, err)
	assert.Len(t, echoes, 201)
	assert.Equal(t, 2, pages)
	assert.Equal(t, 2, echoes[200].ReportCount)
}

func TestDashboardEndpoints(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/dashboard/summary":
			_, _ = io.WriteString(w, `{"total_diagnoses":{"count":10,"change_rate":5},"resolution_rate":{"rate":40,"change_rate":-2},"echo_count":{"count":3,"change":1}}`)
		case "/dashboard/hourly-complaint-distribution":
			_, _ = io.WriteString(w, `[{"hour":9,"count":4}]`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	sum, err := c.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, sum.TotalDiagnoses.Count)
	assert.InDelta(t, -2, sum.ResolutionRate.ChangeRate, 1e-9)

	hourly, err := c.HourlyComplaints(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.HourlyComplaint{{Hour: 9, Count: 4}}, hourly)

	_, err = c.WeeklyDiagnoses(context.Background())
	var serr *upstream.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusInternalServerError, serr.Status)
}

func TestInitiateAndFinalizeUpload(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bundles/initiate-upload":
			var body struct {
				Files []domain.FileInfo `json:"files"`
			}
			if assert.NoError(t, json.NewDecoder(r.Body).Decode(&body)) && assert.Len(t, body.Files, 1) {
				assert.Equal(t, "city.bundle", body.Files[0].FileName)
			}
			_, _ = io.WriteString(w, `{"upload_id":"u1","urls":[{"file_name":"city.bundle","url":"https://s3/x"}]}`)
		case "/bundles/finalize-upload":
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "u1", r.FormValue("uploadId"))
			assert.Equal(t, "palace,joseon", r.FormValue("tags"))
			f, hdr, err := r.FormFile("layoutFile")
			if !assert.NoError(t, err) {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			defer f.Close()
			assert.Equal(t, "layout.json", hdr.Filename)
			data, _ := io.ReadAll(f)
			assert.Equal(t, `{"prefabs":[]}`, string(data))
			_, _ = io.WriteString(w, `{"id":"bundle-1","bundle_url":"https://cdn/b"}`)
		}
	})

	presigned, err := c.InitiateUpload(context.Background(), []domain.FileInfo{{FileName: "city.bundle", FileType: "application/octet-stream"}})
	require.NoError(t, err)
	assert.Equal(t, "u1", presigned.UploadID)
	u, ok := presigned.URLFor("city.bundle")
	require.True(t, ok)
	assert.Equal(t, "https://s3/x", u)

	result, err := c.FinalizeUpload(context.Background(), domain.FinalizeRequest{
		UploadID:  "u1",
		Metadata:  domain.BundleMetadata{Name: "n", Version: "1", Tags: []string{"palace", "joseon"}},
		Reference: &domain.NamedFile{Slot: domain.SlotLayout, Name: "layout.json", Data: []byte(`{"prefabs":[]}`)},
	})
	require.NoError(t, err)
	assert.Equal(t, "bundle-1", result.ID())
	assert.Equal(t, "https://cdn/b", result["bundleUrl"])
}

func TestFinalizeUpload_ServerMessage(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"message":["name must be unique","version is invalid"]}`)
	})

	_, err := c.FinalizeUpload(context.Background(), domain.FinalizeRequest{UploadID: "u1"})
	msg, ok := domain.ServerMessage(err)
	require.True(t, ok)
	assert.Equal(t, "name must be unique, version is invalid", msg)
}

func TestStoragePut(t *testing.T) {
	var gotType, gotAuth string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		if strings.HasSuffix(r.URL.Path, "/denied") {
			w.WriteHeader(http.StatusForbidden)
		}
	}))
	defer srv.Close()

	s := upstream.NewStorage(time.Second)
	require.NoError(t, s.Put(context.Background(), srv.URL+"/ok", "model/gltf-binary", []byte("abc")))
	assert.Equal(t, "model/gltf-binary", gotType)
	assert.Empty(t, gotAuth)
	assert.Equal(t, "abc", string(gotBody))

	err := s.Put(context.Background(), srv.URL+"/denied", "text/plain", []byte("x"))
	var serr *upstream.StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusForbidden, serr.Status)
}

func TestStoragePut_StalledTransferTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	s := upstream.NewStorage(50 * time.Millisecond)
	start := time.Now()
	err := s.Put(context.Background(), srv.URL+"/slow", "application/octet-stream", []byte("abc"))

	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}
