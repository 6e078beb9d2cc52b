package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/samirrijal/echoadmin/internal/core/domain"
)

// echoPageSize is the page size used to walk the echo list.
const echoPageSize = 200

// maxEchoPages bounds the walk if the server ignores the limit parameter.
const maxEchoPages = 50

func (c *Client) ListBundles(ctx context.Context) ([]domain.Bundle, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "list_bundles", "/bundles", &raw); err != nil {
		return nil, err
	}
	return listOf[domain.Bundle](raw)
}

func (c *Client) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "list_complaints", "/complaints/complaints-list", &raw); err != nil {
		return nil, err
	}
	return listOf[domain.Complaint](raw)
}

func (c *Client) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "get_complaint", "/complaints/complaints-list/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}
	return oneOf[domain.Complaint](raw)
}

// ResolveComplaint marks a complaint resolved. Servers that answer without a
// body get a minimal complaint carrying only the id.
func (c *Client) ResolveComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	var raw json.RawMessage
	path := "/complaints/complaints-list/" + url.PathEscape(id) + "/resolve"
	if err := c.do(ctx, "resolve_complaint", http.MethodPatch, path, nil, "", &raw); err != nil {
		return nil, err
	}
	complaint := &domain.Complaint{}
	if len(raw) > 0 {
		decoded, err := oneOf[domain.Complaint](raw)
		if err != nil {
			return nil, err
		}
		complaint = decoded
	}
	if complaint.ID == "" {
		complaint.ID = domain.ID(id)
	}
	return complaint, nil
}

// PresignComplaintImage exchanges a stored object URL for a time-limited GET URL.
func (c *Client) PresignComplaintImage(ctx context.Context, objectURL string) (string, error) {
	var resp struct {
		PresignedURL string `json:"presignedUrl"`
	}
	in := map[string]string{"S3_url": objectURL}
	if err := c.sendJSON(ctx, "presign_image", http.MethodPost, "/complaints/presigned-url", in, &resp); err != nil {
		return "", err
	}
	if resp.PresignedURL == "" {
		return "", fmt.Errorf("presign: empty presigned_url in response")
	}
	return resp.PresignedURL, nil
}

// ListEchoes walks every page of the echo list.
func (c *Client) ListEchoes(ctx context.Context) ([]domain.Echo, error) {
	var all []domain.Echo
	for page := 1; page <= maxEchoPages; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(echoPageSize))

		var raw json.RawMessage
		if err := c.getJSON(ctx, "list_echoes", "/echo/echo-list?"+q.Encode(), &raw); err != nil {
			return nil, err
		}
		items, err := listOf[domain.Echo](raw)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < echoPageSize {
			break
		}
	}
	if all == nil {
		all = []domain.Echo{}
	}
	return all, nil
}

func (c *Client) GetEcho(ctx context.Context, id string) (*domain.Echo, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "get_echo", "/echo/echo-list/"+url.PathEscape(id), &raw); err != nil {
		return nil, err
	}
	return oneOf[domain.Echo](raw)
}

func (c *Client) DeleteEcho(ctx context.Context, id string) error {
	return c.do(ctx, "delete_echo", http.MethodDelete, "/echo/echo-list/"+url.PathEscape(id), nil, "", nil)
}

func (c *Client) Summary(ctx context.Context) (*domain.DashboardSummary, error) {
	var out domain.DashboardSummary
	if err := c.getJSON(ctx, "dashboard_summary", "/dashboard/summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AiSummary(ctx context.Context) (*domain.AiSummary, error) {
	var out domain.AiSummary
	if err := c.getJSON(ctx, "dashboard_ai_summary", "/dashboard/ai-summary", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) WeeklyDiagnoses(ctx context.Context) ([]domain.WeeklyDiagnosis, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "dashboard_weekly", "/dashboard/weekly-diagnoses", &raw); err != nil {
		return nil, err
	}
	return listOf[domain.WeeklyDiagnosis](raw)
}

func (c *Client) TagDistribution(ctx context.Context) ([]domain.TagDistribution, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "dashboard_tags", "/dashboard/tag-distribution", &raw); err != nil {
		return nil, err
	}
	return listOf[domain.TagDistribution](raw)
}

func (c *Client) HourlyComplaints(ctx context.Context) ([]domain.HourlyComplaint, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, "dashboard_hourly", "/dashboard/hourly-complaint-distribution", &raw); err != nil {
		return nil, err
	}
	return listOf[domain.HourlyComplaint](raw)
}
