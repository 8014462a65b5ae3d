// Package convert renders editable office documents to PDF by calling a
// remote conversion service. The result is validated as a parseable PDF
// before it is handed back, so a broken rendition never reaches storage.
package convert

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// Converter produces a PDF rendition of an office document.
type Converter interface {
	// ConvertToPdf sends the named file's bytes to the converter and returns
	// the PDF rendition.
	ConvertToPdf(ctx context.Context, filename string, data []byte) ([]byte, error)
}

// HTTPConverterOptions configure an HTTPConverter. Zero values fall back to
// sane defaults.
type HTTPConverterOptions struct {
	BaseURL    string
	HTTPClient *http.Client
}

// HTTPConverter talks to a LibreOffice-based conversion service over HTTP.
type HTTPConverter struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPConverter builds a converter client for the given options.
func NewHTTPConverter(opts HTTPConverterOptions) *HTTPConverter {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	return &HTTPConverter{baseURL: baseURL, httpClient: httpClient}
}

var _ Converter = (*HTTPConverter)(nil)

// ConvertToPdf posts the file to the converter's libreoffice route and
// returns the response body after validating it parses as a PDF.
func (c *HTTPConverter) ConvertToPdf(ctx context.Context, filename string, data []byte) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("converter base url is required")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/forms/libreoffice/convert", &body)
	if err != nil {
		return nil, fmt.Errorf("build convert request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("convert request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("converter returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read converted pdf: %w", err)
	}
	if err := ValidatePDF(out); err != nil {
		return nil, fmt.Errorf("converted output is not a valid pdf: %w", err)
	}
	return out, nil
}

// ValidatePDF checks that data parses as a PDF document.
func ValidatePDF(data []byte) error {
	reader := bytes.NewReader(data)
	doc, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return fmt.Errorf("new pdf reader: %w", err)
	}
	if doc.NumPage() < 0 {
		return fmt.Errorf("pdf has no page tree")
	}
	return nil
}
