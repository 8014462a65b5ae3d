// Package sdk is the client for the upstream forms/case-management system
// whose folder tree and case records this plugin mirrors. All calls are
// remote; nothing here touches local state.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Translation is the per-language payload accepted by the hierarchy's folder
// endpoints.
type Translation struct {
	LanguageID  int64  `json:"language_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Client is the surface of the external hierarchy this workflow consumes.
type Client interface {
	// CaseDelete removes a materialized case.
	CaseDelete(ctx context.Context, caseID int64) error
	// CaseCreate materializes a case for a site inside a folder and returns
	// its id.
	CaseCreate(ctx context.Context, folderID, siteID int64) (int64, error)
	// FolderCreate creates a folder under parentID carrying the translations
	// and returns the new folder id.
	FolderCreate(ctx context.Context, translations []Translation, parentID int64) (int64, error)
	// FolderUpdate replaces a folder's translations. A nil parentID preserves
	// the current parent.
	FolderUpdate(ctx context.Context, folderID int64, translations []Translation, parentID *int64) error
	// FolderLookup finds a direct child of parentID whose name matches
	// exactly. The second return is false when no such folder exists.
	FolderLookup(ctx context.Context, parentID int64, name string) (int64, bool, error)
}

// HTTPClientOptions configure an HTTPClient. Zero values fall back to sane
// defaults.
type HTTPClientOptions struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// HTTPClient implements Client against the hierarchy's JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient builds a hierarchy client for the given options.
func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &HTTPClient{baseURL: baseURL, token: opts.Token, httpClient: httpClient}
}

var _ Client = (*HTTPClient)(nil)

func (c *HTTPClient) CaseDelete(ctx context.Context, caseID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cases/%d", caseID), nil, nil)
}

func (c *HTTPClient) CaseCreate(ctx context.Context, folderID, siteID int64) (int64, error) {
	req := map[string]int64{"folder_id": folderID, "site_id": siteID}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/cases", req, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *HTTPClient) FolderCreate(ctx context.Context, translations []Translation, parentID int64) (int64, error) {
	req := map[string]any{"parent_id": parentID, "translations": translations}
	var resp struct {
		ID int64 `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/folders", req, &resp); err != nil {
		return 0, err
	}
	return resp.ID, nil
}

func (c *HTTPClient) FolderUpdate(ctx context.Context, folderID int64, translations []Translation, parentID *int64) error {
	req := map[string]any{"translations": translations}
	if parentID != nil {
		req["parent_id"] = *parentID
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/folders/%d", folderID), req, nil)
}

func (c *HTTPClient) FolderLookup(ctx context.Context, parentID int64, name string) (int64, bool, error) {
	var resp struct {
		Folders []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"folders"`
	}
	path := fmt.Sprintf("/api/folders?parent_id=%d", parentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, false, err
	}
	for _, f := range resp.Folders {
		if f.Name == name {
			return f.ID, true, nil
		}
	}
	return 0, false, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, payload, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("sdk base url is required")
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal sdk payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build sdk request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sdk request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("sdk %s %s returned status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode sdk response: %w", err)
		}
	}
	return nil
}
