package walkscore

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walkability/walkscore-proxy/internal/models"
)

var seattle = models.ScoreQuery{Lat: "47.6085", Lon: "-122.3295", Address: "Seattle WA"}

func TestBuildURL(t *testing.T) {
	got := BuildURL("https://api.walkscore.com/score", "k&y", seattle)

	assert.Equal(t,
		"https://api.walkscore.com/score?format=json&lat=47.6085&lon=-122.3295&address=Seattle%20WA&transit=1&bike=1&wsapikey=k%26y",
		got,
	)
}

func TestBuildURL_EscapesReservedCharacters(t *testing.T) {
	q := models.ScoreQuery{Lat: "1", Lon: "2", Address: "1 Main St & 2nd Ave, #4=?"}

	got := BuildURL("http://stub/score?x=1", "key", q)

	assert.True(t, strings.HasPrefix(got, "http://stub/score?x=1&format=json&"))
	assert.Contains(t, got, "&address=1%20Main%20St%20%26%202nd%20Ave%2C%20%234%3D%3F&")
}

func TestScore_PassesThroughBody(t *testing.T) {
	var gotQuery string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"walkscore":75}`))
	}))
	defer upstream.Close()

	c := New(Options{BaseURL: upstream.URL, APIKey: "secret"})
	res, err := c.Score(context.Background(), seattle)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, `{"walkscore":75}`, string(res.Body))
	assert.Equal(t, "format=json&lat=47.6085&lon=-122.3295&address=Seattle%20WA&transit=1&bike=1&wsapikey=secret", gotQuery)
}

func TestScore_PreservesUpstreamStatus(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"status":40}`))
	}))
	defer upstream.Close()

	c := New(Options{BaseURL: upstream.URL, APIKey: "secret"})
	res, err := c.Score(context.Background(), seattle)

	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Equal(t, `{"status":40}`, string(res.Body))
}

func TestScore_DoesNotFollowRedirects(t *testing.T) {
	followed := false
	mux := http.NewServeMux()
	mux.HandleFunc("/score", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/moved")
		w.WriteHeader(http.StatusFound)
		_, _ = w.Write([]byte(`{"redirect":true}`))
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		followed = true
		_, _ = w.Write([]byte(`{"followed":true}`))
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	c := New(Options{BaseURL: upstream.URL + "/score", APIKey: "secret"})
	res, err := c.Score(context.Background(), seattle)

	require.NoError(t, err)
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, `{"redirect":true}`, string(res.Body))
	assert.False(t, followed)
}

func TestScore_MissingAPIKey(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1"})

	_, err := c.Score(context.Background(), seattle)

	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.False(t, c.Configured())
}

func TestScore_MissingParams(t *testing.T) {
	c := New(Options{BaseURL: "http://127.0.0.1:1", APIKey: "secret"})

	for name, q := range map[string]models.ScoreQuery{
		"lat":     {Lon: "1", Address: "a"},
		"lon":     {Lat: "1", Address: "a"},
		"address": {Lat: "1", Lon: "1"},
		"all":     {},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Score(context.Background(), q)
			assert.ErrorIs(t, err, ErrMissingParams)
		})
	}
}

func TestScore_ConnectionRefused(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	addr := upstream.URL
	upstream.Close()

	c := New(Options{BaseURL: addr, APIKey: "supersecretkey"})
	_, err := c.Score(context.Background(), seattle)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.NotEmpty(t, upErr.Err.Error())
	assert.NotContains(t, upErr.Err.Error(), "supersecretkey")
}

func TestScore_Timeout(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()
	defer close(release)

	c := New(Options{BaseURL: upstream.URL, APIKey: "secret", Timeout: 50 * time.Millisecond})
	start := time.Now()
	_, err := c.Score(context.Background(), seattle)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestScore_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer upstream.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := New(Options{BaseURL: upstream.URL, APIKey: "secret", Timeout: time.Minute})
	_, err := c.Score(ctx, seattle)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScore_BodyTooLarge(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer upstream.Close()

	c := New(Options{BaseURL: upstream.URL, APIKey: "secret", MaxBodyBytes: 16})
	_, err := c.Score(context.Background(), seattle)

	assert.ErrorIs(t, err, ErrBodyTooLarge)
}
