package aggregator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const upstreamPayload = `{
	"count": 2,
	"results": [
		{
			"id": "ext-1",
			"title": "Go Developer",
			"description": "Write Go services.",
			"company": {"display_name": "Acme Corp"},
			"location": {"display_name": "Berlin, Germany"},
			"salary_min": 60000,
			"salary_max": 80000,
			"redirect_url": "https://jobs.example.com/ext-1",
			"contract_time": "full_time"
		},
		{
			"id": "ext-2",
			"title": "Data Analyst",
			"description": "Analyze things.",
			"company": {"display_name": "Data Inc"},
			"location": {"display_name": "Remote"},
			"salary_min": 0,
			"salary_max": 50000,
			"redirect_url": "https://jobs.example.com/ext-2",
			"contract_time": "part_time"
		}
	]
}`

func TestSearchNormalizesResults(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		assert.Contains(t, r.URL.Path, "/us/search/1")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(upstreamPayload))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "app-id", "app-key", "us")
	listings, err := client.Search(context.Background(), SearchParams{
		Query:        "go developer",
		Location:     "berlin",
		ContractType: "full_time",
	})
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, []string{"go developer"}, gotQuery["what"])
	assert.Equal(t, []string{"berlin"}, gotQuery["where"])
	assert.Equal(t, []string{"full_time"}, gotQuery["contract_time"])
	assert.Equal(t, []string{"app-id"}, gotQuery["app_id"])

	first := listings[0]
	assert.Equal(t, "ext-1", first.ExternalID)
	assert.Equal(t, "Go Developer", first.Title)
	assert.Equal(t, "Acme Corp", first.Company)
	assert.Equal(t, "Berlin, Germany", first.Location)
	assert.Equal(t, "60000 - 80000", first.Salary)
	assert.Equal(t, "full_time", first.ContractType)
	assert.Equal(t, "https://jobs.example.com/ext-1", first.URL)
	assert.NotEmpty(t, first.Raw)

	second := listings[1]
	assert.Equal(t, "50000", second.Salary)
	assert.Equal(t, "part_time", second.ContractType)
}

// Upstream failures keep their original status and body so callers can
// relay them.
func TestSearchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "app-id", "app-key", "us")
	_, err := client.Search(context.Background(), SearchParams{Query: "go"})
	require.Error(t, err)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusTooManyRequests, upErr.Status)
	assert.Equal(t, `{"error":"rate limited"}`, upErr.Body)
	assert.Equal(t, "application/json", upErr.ContentType)
}

func TestSearchUnreachableUpstream(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", "app-id", "app-key", "us")
	_, err := client.Search(context.Background(), SearchParams{Query: "go"})
	require.Error(t, err)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Zero(t, upErr.Status)
}

func TestSearchSkipsMalformedResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"count":2,"results":[{"id":"ok","title":"Fine"},"not an object"]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "app-id", "app-key", "us")
	listings, err := client.Search(context.Background(), SearchParams{})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "ok", listings[0].ExternalID)
}

func TestConfigured(t *testing.T) {
	assert.True(t, NewClient("", "id", "key", "us").Configured())
	assert.False(t, NewClient("", "", "", "us").Configured())
}

func TestCachedSearcherWithoutRedisDelegates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(upstreamPayload))
	}))
	defer srv.Close()

	cached := NewCachedSearcher(NewClient(srv.URL, "id", "key", "us"), nil, 0)

	for i := 0; i < 2; i++ {
		listings, err := cached.Search(context.Background(), SearchParams{Query: "go"})
		require.NoError(t, err)
		assert.Len(t, listings, 2)
	}
	assert.Equal(t, 2, calls, "no redis means no caching")
}

func TestFormatSalary(t *testing.T) {
	assert.Equal(t, "", formatSalary(0, 0))
	assert.Equal(t, "1000", formatSalary(1000, 0))
	assert.Equal(t, "2000", formatSalary(0, 2000))
	assert.Equal(t, "1000 - 2000", formatSalary(1000, 2000))
	assert.Equal(t, "1500", formatSalary(1500, 1500))
}
