package posting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skillmatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client that does not sleep between retries.
// httptest servers listen on loopback, so private networks are allowed.
func newTestClient() *Client {
	c := NewClient(Options{AllowPrivateNetworks: true})
	c.backoff = func(int) time.Duration { return 0 }
	return c
}

func TestNewClient(t *testing.T) {
	client := NewClient(Options{})

	assert.NotNil(t, client)
	assert.Equal(t, DefaultUserAgent, client.userAgent)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)

	custom := NewClient(Options{Timeout: 5 * time.Second, UserAgent: "test-agent", RequestsPerMinute: 30})
	assert.Equal(t, "test-agent", custom.userAgent)
	assert.Equal(t, 5*time.Second, custom.httpClient.Timeout)
	assert.InDelta(t, 0.5, float64(custom.rateLimiter.Limit()), 1e-9)
	assert.Equal(t, 30, custom.rateLimiter.Burst())
}

func TestSetDebug(t *testing.T) {
	client := NewClient(Options{})

	client.SetDebug(true)
	assert.True(t, client.debug)

	client.SetDebug(false)
	assert.False(t, client.debug)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestFetchPosting_HTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body>
			<nav>Home Jobs Kubernetes</nav>
			<div class="job-description"><h2>Requirements</h2><ul><li>Python</li><li>SQL</li></ul></div>
			<footer>Docker</footer>
		</body></html>`))
	}))
	defer server.Close()

	text, err := newTestClient().FetchPosting(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "Requirements\nPython\nSQL", text)
}

func TestFetchPosting_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("We need <Python> and SQL"))
	}))
	defer server.Close()

	text, err := newTestClient().FetchPosting(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "We need <Python> and SQL", text)
}

func TestFetchPosting_NotFound(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	text, err := newTestClient().FetchPosting(context.Background(), server.URL)

	assert.Empty(t, text)
	assert.ErrorIs(t, err, domain.ErrPostingNotFound)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))

	var fetchErr *Error
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, server.URL, fetchErr.URL)
}

func TestFetchPosting_ServerError_Retries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Docker"))
	}))
	defer server.Close()

	text, err := newTestClient().FetchPosting(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, "Docker", text)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestFetchPosting_TooManyRequests_Retries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("Git"))
	}))
	defer server.Close()

	_, err := newTestClient().FetchPosting(context.Background(), server.URL)

	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestFetchPosting_ClientError_NoRetry(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient().FetchPosting(context.Background(), server.URL)

	assert.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.Contains(t, err.Error(), "HTTP status 403")
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestFetchPosting_AllRetriesFail(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient().FetchPosting(context.Background(), server.URL)

	assert.ErrorIs(t, err, domain.ErrFetchFailure)
	assert.Equal(t, int32(maxAttempts), atomic.LoadInt32(&attempts))
}

func TestFetchPosting_InvalidURL(t *testing.T) {
	tests := []string{
		"",
		"not a url",
		"ftp://example.com/job",
		"http://",
	}

	for _, rawURL := range tests {
		t.Run(rawURL, func(t *testing.T) {
			_, err := newTestClient().FetchPosting(context.Background(), rawURL)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		})
	}
}

func TestFetchPosting_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := newTestClient().FetchPosting(ctx, server.URL)

	assert.ErrorIs(t, err, domain.ErrFetchFailure)
}

func TestFetchPosting_RefusesPrivateAddresses(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("Python"))
	}))
	defer server.Close()

	client := NewClient(Options{})
	client.backoff = func(int) time.Duration { return 0 }

	_, err := client.FetchPosting(context.Background(), server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.NotErrorIs(t, err, domain.ErrFetchFailure)
	assert.Contains(t, err.Error(), "not publicly routable")
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits), "no connection may reach the server")

	t.Run("allowed when configured", func(t *testing.T) {
		text, err := newTestClient().FetchPosting(context.Background(), server.URL)
		require.NoError(t, err)
		assert.Equal(t, "Python", text)
	})
}

func TestCheckDialAddress(t *testing.T) {
	tests := []struct {
		address string
		blocked bool
	}{
		{"127.0.0.1:80", true},
		{"127.8.9.10:8080", true},
		{"10.1.2.3:443", true},
		{"172.16.0.1:443", true},
		{"192.168.1.1:80", true},
		{"169.254.169.254:80", true},
		{"0.0.0.0:80", true},
		{"100.64.0.1:80", true},
		{"[::1]:80", true},
		{"[::]:80", true},
		{"[::ffff:127.0.0.1]:80", true},
		{"[fe80::1]:80", true},
		{"[fd00::1]:443", true},
		{"8.8.8.8:443", false},
		{"93.184.216.34:80", false},
		{"[2001:4860:4860::8888]:443", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			err := checkDialAddress(tt.address)
			var blocked *blockedAddressError
			if tt.blocked {
				assert.True(t, errors.As(err, &blocked), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	t.Run("malformed address", func(t *testing.T) {
		err := checkDialAddress("bad")
		require.Error(t, err)
		var blocked *blockedAddressError
		assert.False(t, errors.As(err, &blocked))
	})
}

func TestDebugLog(t *testing.T) {
	client := NewClient(Options{})

	client.debug = false
	client.debugLog("test message %s", "arg")

	client.debug = true
	client.debugLog("test message %s", "arg")
}

func TestReadLimitedBody(t *testing.T) {
	t.Run("reads within limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("short content"))
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 1000)
		require.NoError(t, err)
		assert.Equal(t, "short content", string(body))
	})

	t.Run("truncates beyond limit", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for i := 0; i < 100; i++ {
				w.Write([]byte("0123456789"))
			}
		}))
		defer server.Close()

		resp, err := http.Get(server.URL)
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := readLimitedBody(resp.Body, 100)
		require.NoError(t, err)
		assert.Len(t, body, 100)
	})
}
