package convert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPConverter_ConvertToPdf(t *testing.T) {
	ctx := context.Background()

	t.Run("missing base url", func(t *testing.T) {
		c := NewHTTPConverter(HTTPConverterOptions{})
		_, err := c.ConvertToPdf(ctx, "a.docx", []byte("x"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "base url")
	})

	t.Run("posts multipart to libreoffice route", func(t *testing.T) {
		var gotPath, gotFilename string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, r.ParseMultipartForm(1<<20))
			f, fh, err := r.FormFile("files")
			require.NoError(t, err)
			defer f.Close()
			gotFilename = fh.Filename
			// Deliberately not a PDF; the client must reject it.
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("not a pdf"))
		}))
		defer srv.Close()

		c := NewHTTPConverter(HTTPConverterOptions{BaseURL: srv.URL})
		_, err := c.ConvertToPdf(ctx, "report.docx", []byte("doc-bytes"))

		assert.Equal(t, "/forms/libreoffice/convert", gotPath)
		assert.Equal(t, "report.docx", gotFilename)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not a valid pdf")
	})

	t.Run("non-200 surfaces status and snippet", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "conversion backend down", http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := NewHTTPConverter(HTTPConverterOptions{BaseURL: srv.URL})
		_, err := c.ConvertToPdf(ctx, "report.docx", []byte("doc-bytes"))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "503")
		assert.Contains(t, err.Error(), "conversion backend down")
	})
}

func TestValidatePDF(t *testing.T) {
	assert.Error(t, ValidatePDF([]byte("plainly not a pdf")))
	assert.Error(t, ValidatePDF(nil))
}
