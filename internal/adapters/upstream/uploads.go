package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/samirrijal/echoadmin/internal/core/domain"
	"github.com/samirrijal/echoadmin/internal/pkg/metrics"
)

// InitiateUpload asks for one presigned PUT URL per file.
func (c *Client) InitiateUpload(ctx context.Context, files []domain.FileInfo) (*domain.PresignedUpload, error) {
	var out domain.PresignedUpload
	in := map[string]any{"files": files}
	if err := c.sendJSON(ctx, "initiate_upload", http.MethodPost, "/bundles/initiate-upload", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FinalizeUpload registers the transferred files. The layout file travels in
// the multipart body as "layoutFile"; tags are sent as a comma separated string.
func (c *Client) FinalizeUpload(ctx context.Context, req domain.FinalizeRequest) (domain.FinalizeResult, error) {
	body, contentType, err := finalizeForm(req)
	if err != nil {
		return nil, err
	}
	var out domain.FinalizeResult
	if err := c.do(ctx, "finalize_upload", http.MethodPost, "/bundles/finalize-upload", body, contentType, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = domain.FinalizeResult{}
	}
	return out, nil
}

func finalizeForm(req domain.FinalizeRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"uploadId", req.UploadID},
		{"name", req.Metadata.Name},
		{"version", req.Metadata.Version},
		{"usage", req.Metadata.Usage},
		{"os", req.Metadata.OS},
		{"tags", strings.Join(req.Metadata.Tags, ",")},
		{"description", req.Metadata.Description},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	if ref := req.Reference; ref != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="layoutFile"; filename=%q`, ref.Name))
		ct := ref.ContentType
		if ct == "" {
			ct = "application/json"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create layout part: %w", err)
		}
		if _, err := part.Write(ref.Data); err != nil {
			return nil, "", fmt.Errorf("write layout part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// Storage PUTs file bodies straight to presigned object-storage URLs.
// It never sends the upstream bearer token.
type Storage struct {
	http *http.Client
}

// NewStorage creates a Storage whose every PUT is bounded by timeout.
func NewStorage(timeout time.Duration) *Storage {
	return &Storage{http: &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}}
}

func (s *Storage) Put(ctx context.Context, url, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build put: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(body))

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("put: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Status: resp.StatusCode}
	}
	metrics.UploadBytes.Add(float64(len(body)))
	return nil
}
