package greenhouse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtier-engine/internal/domain"
	"jobtier-engine/internal/scrape/types"
)

const boardJSON = `{"jobs":[
 {"id":101,"title":"Software Engineer, Backend","location":{"name":"New York, NY"},
  "departments":[{"name":"Engineering"},{"name":"Infra"}],
  "absolute_url":"https://boards.greenhouse.io/acme/jobs/101?utm_source=x","updated_at":"2026-10-10T12:00:00-04:00"},
 {"id":102,"title":"Recruiter","location":{"name":""},"departments":[],"absolute_url":"https://boards.greenhouse.io/acme/jobs/102","updated_at":""},
 {"id":103,"title":"   ","location":{"name":"x"},"absolute_url":"https://x"}
]}`

func TestFetchMapsJobs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme/jobs", r.URL.Path)
		_, _ = w.Write([]byte(boardJSON))
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL}, nil)
	fixed := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	res, err := s.Fetch(context.Background(), types.Target{Token: "acme", CompanyID: "ACME_INC", CompanyName: "Acme"})
	require.NoError(t, err)
	require.Len(t, res.Jobs, 2)

	j := res.Jobs[0]
	assert.Equal(t, "gh-acme-101", j.ID)
	assert.Equal(t, "ACME_INC", j.CompanyID)
	assert.Equal(t, "Acme", j.CompanyName)
	assert.Equal(t, "Engineering", j.Department)
	assert.Equal(t, "New York, NY", j.Location)
	assert.Equal(t, "https://boards.greenhouse.io/acme/jobs/101", j.URL)
	assert.Equal(t, domain.PlatformGreenhouse, j.Platform)
	require.NotNil(t, j.PostedAt)
	assert.Equal(t, time.Date(2026, 10, 10, 16, 0, 0, 0, time.UTC), *j.PostedAt)
	assert.Equal(t, fixed, j.ScrapedAt)

	assert.Equal(t, "Remote", res.Jobs[1].Location)
	assert.Nil(t, res.Jobs[1].PostedAt)
}

func TestFetchNon2xxIsSourceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}, nil).Fetch(context.Background(), types.Target{Token: "gone"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "greenhouse")
	assert.Contains(t, err.Error(), "404")
}

func TestFetchMalformedBodyIsParseFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobs": [`))
	}))
	defer srv.Close()

	_, err := New(Config{BaseURL: srv.URL}, nil).Fetch(context.Background(), types.Target{Token: "acme"})
	require.Error(t, err)
	assert.True(t, types.IsParseFailure(err))
}

func TestFetchEmptyBoard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jobs":[]}`))
	}))
	defer srv.Close()

	res, err := New(Config{BaseURL: srv.URL}, nil).Fetch(context.Background(), types.Target{Token: "acme"})
	require.NoError(t, err)
	assert.Empty(t, res.Jobs)
}
