package sdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClient_CaseDelete(t *testing.T) {
	var gotMethod, gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientOptions{BaseURL: srv.URL, Token: "secret"})
	err := c.CaseDelete(context.Background(), 42)

	assert.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/cases/42", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestHTTPClient_FolderCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/folders", r.URL.Path)

		var body struct {
			ParentID     int64         `json:"parent_id"`
			Translations []Translation `json:"translations"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, int64(7), body.ParentID)
		require.Len(t, body.Translations, 2)

		json.NewEncoder(w).Encode(map[string]int64{"id": 99})
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientOptions{BaseURL: srv.URL})
	id, err := c.FolderCreate(context.Background(), []Translation{
		{LanguageID: 1, Name: "Dokumenter"},
		{LanguageID: 2, Name: "Documents"},
	}, 7)

	assert.NoError(t, err)
	assert.Equal(t, int64(99), id)
}

func TestHTTPClient_FolderLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "parent_id=7", r.URL.RawQuery)
		json.NewEncoder(w).Encode(map[string]any{
			"folders": []map[string]any{
				{"id": 11, "name": "25. Andet"},
				{"id": 12, "name": "26. Dokumenter"},
			},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientOptions{BaseURL: srv.URL})

	t.Run("found by exact name", func(t *testing.T) {
		id, found, err := c.FolderLookup(context.Background(), 7, "26. Dokumenter")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(12), id)
	})

	t.Run("not found", func(t *testing.T) {
		_, found, err := c.FolderLookup(context.Background(), 7, "27. Missing")
		assert.NoError(t, err)
		assert.False(t, found)
	})
}

func TestHTTPClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "case is gone", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(HTTPClientOptions{BaseURL: srv.URL})
	err := c.CaseDelete(context.Background(), 5)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "case is gone")
}

func TestHTTPClient_MissingBaseURL(t *testing.T) {
	c := NewHTTPClient(HTTPClientOptions{})
	err := c.CaseDelete(context.Background(), 5)
	assert.Error(t, err)
}
