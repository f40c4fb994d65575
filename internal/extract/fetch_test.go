package extract

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
)

func TestFetcher_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "gapfill")
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer server.Close()

	f := NewFetcher(nil, 5*time.Second, "", 0)
	d, err := f.Fetch(context.Background(), server.URL+"/api/tag")
	require.NoError(t, err)
	assert.Equal(t, "Baking day", d.Title)
	assert.Len(t, d.Turns, 2)
}

func TestFetcher_YAMLByExtension(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte(strings.Replace(sampleYAML, "title: Baking day\n", "", 1)))
	}))
	defer server.Close()

	f := NewFetcher(nil, 5*time.Second, "", 0)
	d, err := f.Fetch(context.Background(), server.URL+"/units/at_the-bakery.yaml")
	require.NoError(t, err)
	assert.Equal(t, "at the bakery", d.Title, "title from URL slug")
	assert.Len(t, d.Turns, 2)
}

func TestFetcher_Errors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/big":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(strings.Repeat(" ", 200) + sampleJSON))
		case "/empty":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"dialogue": []}`))
		}
	}))
	defer server.Close()

	f := NewFetcher(nil, 5*time.Second, "", 100)

	_, err := f.Fetch(context.Background(), server.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, err = f.Fetch(context.Background(), server.URL+"/big")
	assert.True(t, errors.Is(err, ErrTooLarge), "got %v", err)

	_, err = f.Fetch(context.Background(), server.URL+"/empty")
	assert.True(t, errors.Is(err, ErrEmptyDialogue), "got %v", err)
}

func TestFetcher_TooManyRedirects(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	f := NewFetcher(nil, 5*time.Second, "", 0)
	_, err := f.Fetch(context.Background(), server.URL+"/loop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirects")
}

func TestNewFetcher_LeavesCallerClientAlone(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+r.URL.Path+"x", http.StatusFound)
	}))
	defer server.Close()

	client := server.Client()
	require.Nil(t, client.CheckRedirect)

	f := NewFetcher(client, 5*time.Second, "", 0)
	assert.Nil(t, client.CheckRedirect)
	assert.NotSame(t, client, f.httpClient)

	_, err := f.Fetch(context.Background(), server.URL+"/loop")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redirects")
}

type recordingThrottle struct {
	keys []string
	err  error
}

func (r *recordingThrottle) Wait(_ context.Context, key string) error {
	r.keys = append(r.keys, key)
	return r.err
}

func TestFetcher_Throttle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleJSON))
	}))
	defer server.Close()

	throttle := &recordingThrottle{}
	f := NewFetcher(nil, 5*time.Second, "", 0, WithThrottle(throttle))
	_, err := f.Fetch(context.Background(), server.URL+"/d.json")
	require.NoError(t, err)
	require.Len(t, throttle.keys, 1)
	assert.Equal(t, strings.TrimPrefix(server.URL, "http://"), throttle.keys[0])

	throttle.err = context.DeadlineExceeded
	_, err = f.Fetch(context.Background(), server.URL+"/d.json")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://tagger.local/d/1"))
	assert.True(t, IsURL("http://localhost:8080/d.json"))
	assert.False(t, IsURL("dialogues/d.json"))
	assert.False(t, IsURL("ftp://host/d.json"))
}

func TestSubjectFromURL(t *testing.T) {
	tests := map[string]string{
		"https://example.com/units/coffee_shop-chat.json": "coffee shop chat",
		"https://example.com/":                            "example.com",
		"https://example.com/a/b/":                        "b",
	}
	for in, want := range tests {
		assert.Equal(t, want, SubjectFromURL(in), in)
	}
}
