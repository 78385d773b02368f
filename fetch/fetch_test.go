package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type allowAllGate struct{}

func (allowAllGate) IsAllowed(context.Context, string) bool { return true }

type denyAllGate struct{}

func (denyAllGate) IsAllowed(context.Context, string) bool { return false }

func TestFetchSuccess(t *testing.T) {
	var gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAgent = r.Header.Get("User-Agent")
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	f := New(allowAllGate{}, "AncerLarinsBot/1.0")
	body, ok := f.Fetch(context.Background(), srv.URL+"/page")

	assert.True(t, ok)
	assert.Equal(t, "<html>ok</html>", string(body))
	assert.Equal(t, "AncerLarinsBot/1.0", gotAgent)
}

func TestFetchBlockedMakesNoRequest(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
	}))
	defer srv.Close()

	f := New(denyAllGate{}, "AncerLarinsBot/1.0")
	body, ok := f.Fetch(context.Background(), srv.URL+"/page")

	assert.False(t, ok)
	assert.Nil(t, body)
	assert.Equal(t, 0, hits, "blocked fetch must not touch the network")
}

func TestFetchFailuresReturnEmpty(t *testing.T) {
	t.Run("non-success status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		f := New(allowAllGate{}, "AncerLarinsBot/1.0")
		_, ok := f.Fetch(context.Background(), srv.URL+"/missing")
		assert.False(t, ok)
	})

	t.Run("transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		base := srv.URL
		srv.Close()

		f := New(allowAllGate{}, "AncerLarinsBot/1.0")
		_, ok := f.Fetch(context.Background(), base+"/gone")
		assert.False(t, ok)
	})
}
