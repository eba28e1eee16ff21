package sdk

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/accessmatic/dashboard/sdk/go/routes"
)

// DocumentStatus is the processing state of an uploaded document.
type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document describes a document submitted for accessibility remediation.
type Document struct {
	ID                 ID             `json:"id"`
	Filename           string         `json:"filename"`
	Status             DocumentStatus `json:"status"`
	AccessibilityScore *float64       `json:"accessibility_score,omitempty"`
	PageCount          int            `json:"page_count,omitempty"`
	IssuesCount        int            `json:"issues_count,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          *time.Time     `json:"updated_at,omitempty"`
}

// DocumentListOptions contains the query parameters forwarded to GET /documents.
type DocumentListOptions struct {
	Status DocumentStatus
	Search string
	Limit  int
	Offset int
}

func (o DocumentListOptions) query() url.Values {
	params := url.Values{}
	if o.Status != "" {
		params.Set("status", string(o.Status))
	}
	if s := strings.TrimSpace(o.Search); s != "" {
		params.Set("search", s)
	}
	if o.Limit > 0 {
		params.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		params.Set("offset", strconv.Itoa(o.Offset))
	}
	return params
}

// DocumentsClient wraps the document listing endpoint.
type DocumentsClient struct {
	client *Client
}

// List returns the organization's documents. There is no cursor handling;
// use Limit and Offset to page.
func (d *DocumentsClient) List(ctx context.Context, opts DocumentListOptions) ([]Document, error) {
	if d == nil || d.client == nil {
		return nil, errNotInitialized("documents")
	}
	status, raw, err := d.client.do(ctx, routes.Documents, routes.Documents, RequestOptions{Query: opts.query()})
	if err != nil {
		return nil, err
	}
	var docs []Document
	if err := decodeCollection(status, raw, "documents", &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
