// internal/docstore/search.go
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sony/gobreaker/v2"

	"chronocost/internal/common/database"
	"chronocost/internal/common/logger"
)

var (
	ErrIndexFailed  = errors.New("INDEX_FAILED")
	ErrSearchFailed = errors.New("SEARCH_FAILED")
)

// ProjectsMapping is the index mapping for project records.
const ProjectsMapping = `{
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0
  },
  "mappings": {
    "properties": {
      "id":                       { "type": "keyword" },
      "userId":                   { "type": "keyword" },
      "companyName":              { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "projectName":              { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
      "projectType":              { "type": "keyword" },
      "location":                 { "type": "keyword" },
      "terrain":                  { "type": "keyword" },
      "categories":               { "type": "keyword" },
      "estimatedBudget":          { "type": "double" },
      "estimatedDuration":        { "type": "integer" },
      "scopeDescription":         { "type": "text" },
      "riskFactors":              { "type": "text" },
      "hasHistoricalData":        { "type": "boolean" },
      "riskScore":                { "type": "double" },
      "riskMethod":               { "type": "keyword" },
      "historicalProjectCount":   { "type": "integer" },
      "historicalAvgDuration":    { "type": "double" },
      "historicalAvgCost":        { "type": "double" },
      "historicalDelayFrequency": { "type": "double" },
      "createdAt":                { "type": "date" }
    }
  }
}`

// BreakerSettings bounds how long a failing cluster is retried.
type BreakerSettings struct {
	FailureThreshold uint32
	Timeout          time.Duration
}

// SearchIndex mirrors documents into Elasticsearch for per-user search.
// Calls go through a circuit breaker so a dead cluster costs one fast
// failure instead of a timeout per submission.
type SearchIndex struct {
	es      *database.ElasticsearchClient
	index   string
	breaker *gobreaker.CircuitBreaker[any]
	log     logger.Logger
}

func NewSearchIndex(es *database.ElasticsearchClient, index string, settings BreakerSettings, log logger.Logger) *SearchIndex {
	log = log.WithFields(map[string]interface{}{"component": "search-index", "index": index})

	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "elasticsearch:" + index,
		MaxRequests: 1,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	})

	return &SearchIndex{es: es, index: index, breaker: breaker, log: log}
}

// EnsureMapping creates the index on first start.
func (s *SearchIndex) EnsureMapping(ctx context.Context) error {
	return s.es.EnsureIndex(ctx, s.index, ProjectsMapping)
}

// Index writes doc's fields plus its id and creation time.
func (s *SearchIndex) Index(ctx context.Context, doc *Document) error {
	source := map[string]interface{}{}
	if err := json.Unmarshal(doc.Data, &source); err != nil {
		return fmt.Errorf("%w: decode document: %v", ErrIndexFailed, err)
	}
	source["id"] = doc.ID
	source["createdAt"] = doc.CreatedAt.Format(time.RFC3339Nano)

	body, err := json.Marshal(source)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}

	_, err = s.breaker.Execute(func() (any, error) {
		req := esapi.IndexRequest{
			Index:      s.index,
			DocumentID: doc.ID,
			Body:       bytes.NewReader(body),
		}
		res, err := req.Do(ctx, s.es.Client)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		if res.IsError() {
			return nil, fmt.Errorf("index response error: %s", res.Status())
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	return nil
}

// SearchHit is one matching project source.
type SearchHit struct {
	ID     string                 `json:"id"`
	Score  float64                `json:"score"`
	Source map[string]interface{} `json:"source"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string                 `json:"_id"`
			Score  *float64               `json:"_score"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// BuildSearchQuery restricts results to userID and, when query is set,
// matches it against the free text fields.
func BuildSearchQuery(userID, query string, size int) map[string]interface{} {
	var must interface{} = map[string]interface{}{"match_all": map[string]interface{}{}}
	if query != "" {
		must = map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  query,
				"fields": []string{"projectName^3", "companyName^2", "scopeDescription", "riskFactors"},
			},
		}
	}

	return map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   must,
				"filter": []interface{}{map[string]interface{}{"term": map[string]interface{}{"userId": userID}}},
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}},
		},
	}
}

// Search returns the caller's projects matching query, best first.
func (s *SearchIndex) Search(ctx context.Context, userID, query string, size int) ([]SearchHit, error) {
	if size <= 0 || size > 100 {
		size = 20
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(BuildSearchQuery(userID, query, size)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	out, err := s.breaker.Execute(func() (any, error) {
		req := esapi.SearchRequest{
			Index: []string{s.index},
			Body:  &buf,
		}
		res, err := req.Do(ctx, s.es.Client)
		if err != nil {
			return nil, err
		}
		defer res.Body.Close()
		if res.IsError() {
			return nil, fmt.Errorf("search response error: %s", res.Status())
		}

		var parsed searchResponse
		if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
			return nil, err
		}
		return parsed, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	parsed := out.(searchResponse)
	hits := make([]SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hit := SearchHit{ID: h.ID, Source: h.Source}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// State reports the breaker state for readiness checks.
func (s *SearchIndex) State() string {
	return s.breaker.State().String()
}
