// Package hubspot implements the ObjectClient port against the HubSpot CRM v3 objects API.
package hubspot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
	"github.com/ericfisherdev/cobjpanel/internal/domain/port/driven"
)

// DefaultBaseURL is the production HubSpot API host.
const DefaultBaseURL = "https://api.hubapi.com"

// maxErrorBody caps how much of a failed response body is read for error detail.
const maxErrorBody = 1 << 20

// Compile-time interface satisfaction check.
var _ driven.ObjectClient = (*Client)(nil)

// Client implements the driven.ObjectClient port over plain HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient creates a HubSpot API client with the following transport stack:
//  1. httpcache (ETag revalidation of list reads; lists are never served
//     from cache without asking the API)
//  2. net/http default transport
//
// The client enforces a 30-second timeout as a safety net alongside context cancellation.
func NewClient(baseURL, token string) (*Client, error) {
	httpClient := &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   30 * time.Second,
	}
	return NewClientWithHTTPClient(httpClient, baseURL, token)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parsing base URL: %q is not absolute", baseURL)
	}

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(u.String(), "/"),
		token:   token,
	}, nil
}

// objectResponse is a single CRM object as returned by list and create calls.
// HubSpot reports unset properties as JSON null.
type objectResponse struct {
	ID         string             `json:"id"`
	Properties map[string]*string `json:"properties"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	Archived   bool               `json:"archived"`
}

// listResponse is the envelope of a list call. Paging is ignored.
type listResponse struct {
	Results []objectResponse `json:"results"`
}

// createRequest is the JSON body sent to create an object.
type createRequest struct {
	Properties map[string]string `json:"properties"`
}

// errorResponse is the structured error body HubSpot returns on failure.
type errorResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
	Category      string `json:"category"`
}

// ListObjects fetches up to limit records of objectType in a single request.
// limit is clamped to model.MaxPageSize; no further pages are requested.
func (c *Client) ListObjects(ctx context.Context, objectType string, properties []string, limit int) (model.RecordList, error) {
	if limit <= 0 || limit > model.MaxPageSize {
		limit = model.MaxPageSize
	}

	query := url.Values{}
	query.Set("properties", strings.Join(properties, ","))
	query.Set("limit", strconv.Itoa(limit))

	httpReq, err := c.newRequest(ctx, http.MethodGet, c.objectsURL(objectType)+"?"+query.Encode(), nil)
	if err != nil {
		return nil, &model.FetchError{ObjectType: objectType, Err: err}
	}
	// A cached list is always stale to us, so every call goes out; httpcache
	// turns it into an If-None-Match revalidation when it holds an ETag.
	httpReq.Header.Set("Cache-Control", "max-age=0")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &model.FetchError{ObjectType: objectType, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.FetchError{ObjectType: objectType, Remote: readRemoteError(resp)}
	}

	var body listResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &model.FetchError{ObjectType: objectType, Err: fmt.Errorf("decoding list response: %w", err)}
	}

	records := make(model.RecordList, 0, len(body.Results))
	for _, obj := range body.Results {
		records = append(records, mapRecord(obj))
	}

	slog.Debug("hubspot: listed objects",
		"object_type", objectType,
		"count", len(records),
		"from_cache", resp.Header.Get(httpcache.XFromCache) == "1",
	)

	return records, nil
}

// CreateObject creates a single record of objectType. The properties object is
// always sent, empty when the set is empty.
func (c *Client) CreateObject(ctx context.Context, objectType string, properties model.PropertySet) (model.Record, error) {
	bodyBytes, err := json.Marshal(createRequest{Properties: properties.Map()})
	if err != nil {
		return model.Record{}, &model.CreateError{ObjectType: objectType, Err: fmt.Errorf("marshaling create request: %w", err)}
	}

	httpReq, err := c.newRequest(ctx, http.MethodPost, c.objectsURL(objectType), bytes.NewReader(bodyBytes))
	if err != nil {
		return model.Record{}, &model.CreateError{ObjectType: objectType, Err: err}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.Record{}, &model.CreateError{ObjectType: objectType, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.Record{}, &model.CreateError{ObjectType: objectType, Remote: readRemoteError(resp)}
	}

	var obj objectResponse
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return model.Record{}, &model.CreateError{ObjectType: objectType, Err: fmt.Errorf("decoding create response: %w", err)}
	}

	slog.Debug("hubspot: created object", "object_type", objectType, "id", obj.ID)

	return mapRecord(obj), nil
}

func (c *Client) objectsURL(objectType string) string {
	return c.baseURL + "/crm/v3/objects/" + url.PathEscape(objectType)
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("creating %s request: %w", method, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return httpReq, nil
}

// readRemoteError builds a RemoteError from a non-success response. A body that
// is not HubSpot's JSON error shape leaves Message empty.
func readRemoteError(resp *http.Response) *model.RemoteError {
	remote := &model.RemoteError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return remote
	}

	var body errorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		slog.Warn("hubspot: undecodable error body", "status", resp.StatusCode, "error", err)
		return remote
	}

	remote.Status = body.Status
	remote.Message = body.Message
	remote.Category = body.Category
	remote.CorrelationID = body.CorrelationID
	return remote
}

func mapRecord(obj objectResponse) model.Record {
	props := make(map[string]string, len(obj.Properties))
	for k, v := range obj.Properties {
		if v != nil {
			props[k] = *v
		}
	}

	return model.Record{
		ID:         obj.ID,
		Properties: props,
		CreatedAt:  obj.CreatedAt,
		UpdatedAt:  obj.UpdatedAt,
		Archived:   obj.Archived,
	}
}
