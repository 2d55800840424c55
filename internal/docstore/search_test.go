// internal/docstore/search_test.go
package docstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chronocost/internal/common/config"
	"chronocost/internal/common/database"
	"chronocost/internal/common/logger"
)

// esServer fakes the few Elasticsearch endpoints the index uses.
func esServer(t *testing.T, handler http.HandlerFunc) *database.ElasticsearchClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	es, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return es
}

func testDocument() *Document {
	return &Document{
		DatabaseID:   "db",
		CollectionID: "projects",
		ID:           "p-1",
		Data:         json.RawMessage(`{"userId":"u-1","projectName":"Ring Road","riskScore":0.62}`),
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestSearchIndex_Index(t *testing.T) {
	var got map[string]interface{}
	es := esServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/projects/_doc/p-1", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	})

	idx := NewSearchIndex(es, "projects", BreakerSettings{FailureThreshold: 3, Timeout: time.Minute}, logger.NewTestLogger(t))
	require.NoError(t, idx.Index(context.Background(), testDocument()))

	assert.Equal(t, "p-1", got["id"])
	assert.Equal(t, "u-1", got["userId"])
	assert.Equal(t, "2026-03-01T10:00:00Z", got["createdAt"])
}

func TestSearchIndex_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	es := esServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	idx := NewSearchIndex(es, "projects", BreakerSettings{FailureThreshold: 2, Timeout: time.Minute}, logger.NewTestLogger(t))

	for i := 0; i < 2; i++ {
		assert.ErrorIs(t, idx.Index(context.Background(), testDocument()), ErrIndexFailed)
	}
	assert.Equal(t, "open", idx.State())

	err := idx.Index(context.Background(), testDocument())
	assert.ErrorIs(t, err, ErrIndexFailed)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSearchIndex_Search(t *testing.T) {
	var query map[string]interface{}
	es := esServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/projects/_search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &query)
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[
			{"_id":"p-1","_score":1.5,"_source":{"projectName":"Ring Road","userId":"u-1"}}
		]}}`))
	})

	idx := NewSearchIndex(es, "projects", BreakerSettings{}, logger.NewTestLogger(t))
	hits, err := idx.Search(context.Background(), "u-1", "ring", 10)

	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "p-1", hits[0].ID)
	assert.InDelta(t, 1.5, hits[0].Score, 1e-9)
	assert.Equal(t, "Ring Road", hits[0].Source["projectName"])
	assert.EqualValues(t, 10, query["size"])
}

func TestSearchIndex_SearchError(t *testing.T) {
	es := esServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad query"}`))
	})

	idx := NewSearchIndex(es, "projects", BreakerSettings{}, logger.NewTestLogger(t))
	_, err := idx.Search(context.Background(), "u-1", "", 0)
	assert.ErrorIs(t, err, ErrSearchFailed)
}

func TestSearchIndex_EnsureMapping(t *testing.T) {
	var created bool
	es := esServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			created = true
			body, _ := io.ReadAll(r.Body)
			assert.Contains(t, string(body), `"userId"`)
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		}
	})

	idx := NewSearchIndex(es, "projects", BreakerSettings{}, logger.NewTestLogger(t))
	require.NoError(t, idx.EnsureMapping(context.Background()))
	assert.True(t, created)
}

func TestBuildSearchQuery(t *testing.T) {
	q := BuildSearchQuery("u-1", "", 5)
	raw, err := json.Marshal(q)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"match_all"`)
	assert.Contains(t, string(raw), `{"term":{"userId":"u-1"}}`)

	raw, err = json.Marshal(BuildSearchQuery("u-1", "bridge", 5))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"multi_match"`)
}
