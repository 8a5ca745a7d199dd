package ashby

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtier-engine/internal/scrape/types"
)

func TestFetchMapsBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai", r.URL.Path)
		_, _ = w.Write([]byte(`{"jobs":[
 {"id":"j1","title":"ML Engineer","location":"San Francisco","department":"Research",
  "jobPostingUrl":"https://jobs.ashbyhq.com/openai/j1","publishedAt":"2026-10-01T08:30:00.000+00:00"},
 {"id":"j2","title":"Hidden","isListed":false,"jobUrl":"https://jobs.ashbyhq.com/openai/j2"},
 {"id":"j3","title":"Data Engineer","jobUrl":"https://jobs.ashbyhq.com/openai/j3","publishedAt":"garbage"}
]}`))
	}))
	defer srv.Close()

	res, err := New(Config{BaseURL: srv.URL}, nil).Fetch(context.Background(),
		types.Target{Token: "openai", CompanyID: "OPENAI", CompanyName: "OpenAI"})
	require.NoError(t, err)
	require.Len(t, res.Jobs, 2)

	assert.Equal(t, "ashby-openai-j1", res.Jobs[0].ID)
	assert.Equal(t, "Research", res.Jobs[0].Department)
	require.NotNil(t, res.Jobs[0].PostedAt)
	assert.Equal(t, 2026, res.Jobs[0].PostedAt.Year())

	assert.Equal(t, "ashby-openai-j3", res.Jobs[1].ID)
	assert.Equal(t, "https://jobs.ashbyhq.com/openai/j3", res.Jobs[1].URL)
	assert.Equal(t, "Remote", res.Jobs[1].Location)
	assert.Nil(t, res.Jobs[1].PostedAt)
}

func TestFetchUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}, nil).Fetch(context.Background(), types.Target{Token: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ashby API error: 401")
}
