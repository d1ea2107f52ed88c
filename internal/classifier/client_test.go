// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/sporeid/internal/codec"
	"github.com/pdiddy/sporeid/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// go-cache runs a janitor per cache until the cache is collected.
		goleak.IgnoreAnyFunction("github.com/patrickmn/go-cache.(*janitor).Run"),
	)
}

const scenarioBody = `{
	"familia_predicha": "Agaricus campestris",
	"confianza": 0.873,
	"confianza_pct": "87.3%",
	"top3": [
		{"familia": "Agaricus campestris", "probabilidad": 0.873},
		{"familia": "Amanita muscaria", "probabilidad": 0.09}
	],
	"status": "ok"
}`

func testInput() types.MeasurementInput {
	return types.MeasurementInput{
		SporeSizeUm:      140,
		SporeShape:       types.ShapeOval,
		WallType:         types.WallDouble,
		Ornamentation:    types.OrnamentGranular,
		GeneITS:          1,
		GeneticCluster:   1,
		GCContent:        44.5,
		HabitatType:      types.HabitatForest,
		ElevationM:       2800,
		MeanTempC:        12.5,
		PH:               0.31,
		ConductivityDsM:  -0.77,
		NitrogenTotalPct: 0.05,
		Texture:          types.TextureClay,
	}
}

func testConfig(baseURL string) types.ServerConfig {
	return types.ServerConfig{
		BaseURL:        baseURL,
		ConnectTimeout: time.Second,
		ReadTimeout:    300 * time.Millisecond,
		HealthTimeout:  150 * time.Millisecond,
	}
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(testConfig(baseURL))
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// closedAddr returns a loopback address with nothing listening on it.
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

// --- New ---

func TestNewDefaults(t *testing.T) {
	c, err := New(types.ServerConfig{})
	require.NoError(t, err)
	defer c.Close()

	cfg := c.Config()
	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultConnectTimeout, cfg.ConnectTimeout)
	assert.Equal(t, DefaultReadTimeout, cfg.ReadTimeout)
	assert.Equal(t, DefaultHealthTimeout, cfg.HealthTimeout)
	assert.Equal(t, DefaultFamiliesTTL, cfg.FamiliesTTL)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
}

func TestNewRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     types.ServerConfig
		wantMsg string
	}{
		{"no scheme", types.ServerConfig{BaseURL: "localhost"}, "must be http(s)://host[:port]"},
		{"no host", types.ServerConfig{BaseURL: "http://"}, "must be http(s)://host[:port]"},
		{"ftp scheme", types.ServerConfig{BaseURL: "ftp://example.org"}, "must be http(s)://host[:port]"},
		{"unparseable", types.ServerConfig{BaseURL: "http://[::1"}, "parsing base URL"},
		{
			"health not shorter than read",
			types.ServerConfig{BaseURL: "http://localhost:5000", ReadTimeout: 2 * time.Second, HealthTimeout: 2 * time.Second},
			"health timeout",
		},
		{
			"health not shorter than connect",
			types.ServerConfig{BaseURL: "http://localhost:5000", ConnectTimeout: time.Second, HealthTimeout: 3 * time.Second},
			"health timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

// --- Classify ---

func TestClassifySuccess(t *testing.T) {
	var got map[string]json.RawMessage
	var contentType, requestID string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, PredictPath, r.URL.Path)
		contentType = r.Header.Get("Content-Type")
		requestID = r.Header.Get("X-Request-ID")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, scenarioBody)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	res := c.Classify(context.Background(), testInput())

	s, ok := res.(types.Success)
	require.True(t, ok, "expected Success, got %#v", res)
	assert.Equal(t, "Agaricus campestris", s.Family)
	assert.Equal(t, "87.3%", s.ConfidencePercentLabel)
	require.Len(t, s.Top3, 2)
	assert.Equal(t, types.FamilyProbability{Family: "Agaricus campestris", Probability: 0.873}, s.Top3[0])

	assert.Equal(t, "application/json", contentType)
	assert.NotEmpty(t, requestID)
	assert.Len(t, got, 17)
	for _, name := range codec.RequestFields {
		assert.Contains(t, got, name)
	}
}

func TestClassifyTrailingSlashBaseURL(t *testing.T) {
	var path string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		fmt.Fprint(w, scenarioBody)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL+"/")
	_, ok := c.Classify(context.Background(), testInput()).(types.Success)
	assert.True(t, ok)
	assert.Equal(t, PredictPath, path)
}

func TestClassifyServerErrors(t *testing.T) {
	statuses := []int{
		http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
		http.StatusCreated,
	}
	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
				// A body that would decode fine if anyone looked at it.
				fmt.Fprint(w, scenarioBody)
			}))
			defer ts.Close()

			c := newTestClient(t, ts.URL)
			res := c.Classify(context.Background(), testInput())

			f, ok := res.(types.Failure)
			require.True(t, ok, "expected Failure, got %#v", res)
			assert.Equal(t, fmt.Sprintf("server error: %d", status), f.Message)
			assert.Equal(t, types.FailureServer, f.Kind)
		})
	}
}

func TestClassifyServerError500Message(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "boom", "status": "error"}`, http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	f, ok := c.Classify(context.Background(), testInput()).(types.Failure)
	require.True(t, ok)
	assert.Equal(t, "server error: 500", f.Message)
}

func TestClassifyUndecodableBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"familia_predicha": "X", "confianza": "high"}`)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	f, ok := c.Classify(context.Background(), testInput()).(types.Failure)
	require.True(t, ok)
	assert.Equal(t, types.FailureEncoding, f.Kind)
	assert.Contains(t, f.Message, `"confianza"`)
}

func TestClassifyTransportFaults(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		c := newTestClient(t, "http://"+closedAddr(t))

		var res types.ClassificationResult
		require.NotPanics(t, func() { res = c.Classify(context.Background(), testInput()) })

		f, ok := res.(types.Failure)
		require.True(t, ok)
		assert.Equal(t, types.FailureTransport, f.Kind)
		assert.Contains(t, f.Message, "connection refused")
	})

	t.Run("response headers time out", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			<-release
		}))
		defer ts.Close()
		defer close(release)

		c := newTestClient(t, ts.URL)
		start := time.Now()
		f, ok := c.Classify(context.Background(), testInput()).(types.Failure)
		require.True(t, ok)
		assert.Equal(t, types.FailureTransport, f.Kind)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("body read times out", func(t *testing.T) {
		release := make(chan struct{})
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, `{"familia_predicha": "Agar`)
			w.(http.Flusher).Flush()
			<-release
		}))
		defer ts.Close()
		defer close(release)

		c := newTestClient(t, ts.URL)
		f, ok := c.Classify(context.Background(), testInput()).(types.Failure)
		require.True(t, ok)
		assert.Equal(t, types.FailureTransport, f.Kind)
		assert.Contains(t, f.Message, "read timeout")
	})

	t.Run("connection dropped mid-response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\nContent-Length: 500\r\n\r\n{\"familia"))
			conn.Close()
		}))
		defer ts.Close()

		c := newTestClient(t, ts.URL)
		f, ok := c.Classify(context.Background(), testInput()).(types.Failure)
		require.True(t, ok)
		assert.Equal(t, types.FailureTransport, f.Kind)
	})
}

func TestClassifyConcurrentCallsAreIndependent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, scenarioBody)
	}))
	defer ts.Close()

	c := newTestClient(t, ts.URL)

	const n = 8
	var wg sync.WaitGroup
	results := make([]types.ClassificationResult, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = c.Classify(context.Background(), testInput())
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(n), atomic.LoadInt32(&calls))
	for _, r := range results {
		assert.IsType(t, types.Success{}, r)
	}
}

// --- IsAvailable ---

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    bool
	}{
		{
			"200 with json body",
			func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"status":"ok","mensaje":"Clasificador activo"}`)
			},
			true,
		},
		{
			"200 with empty body",
			func(w http.ResponseWriter, _ *http.Request) {},
			true,
		},
		{
			"503",
			func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			false,
		},
		{
			"204",
			func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) },
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var method, path string
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				method, path = r.Method, r.URL.Path
				tt.handler(w, r)
			}))
			defer ts.Close()

			c := newTestClient(t, ts.URL)
			assert.Equal(t, tt.want, c.IsAvailable(context.Background()))
			assert.Equal(t, http.MethodGet, method)
			assert.Equal(t, HealthPath, path)
		})
	}
}

func TestIsAvailableStalledBody(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{`)
		w.(http.Flusher).Flush()
		<-release
	}))
	defer ts.Close()
	defer close(release)

	c := newTestClient(t, ts.URL)
	assert.True(t, c.IsAvailable(context.Background()), "200 headers decide availability")
}

func TestClassifyOversizedBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"familia_predicha": "`+strings.Repeat("a", 2<<20)+`", "confianza": 0.5, "confianza_pct": "50%"}`)
	}))
	defer ts.Close()

	cfg := testConfig(ts.URL)
	cfg.ReadTimeout = 5 * time.Second
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	f, ok := c.Classify(context.Background(), testInput()).(types.Failure)
	require.True(t, ok)
	assert.Equal(t, types.FailureTransport, f.Kind)
	assert.Contains(t, f.Message, "exceeds 1 MiB")
}

func TestIsAvailableUnreachable(t *testing.T) {
	c := newTestClient(t, "http://"+closedAddr(t))
	assert.NotPanics(t, func() {
		assert.False(t, c.IsAvailable(context.Background()))
	})
}

func TestIsAvailableSlowServer(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	c := newTestClient(t, ts.URL)
	start := time.Now()
	assert.False(t, c.IsAvailable(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}

func TestRequestHeaders(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantAuth string
	}{
		{"no token", "", ""},
		{"bearer token", "tok_abc", "Bearer tok_abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mu sync.Mutex
			seen := map[string]http.Header{}
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				mu.Lock()
				seen[r.URL.Path] = r.Header.Clone()
				mu.Unlock()
				switch r.URL.Path {
				case PredictPath:
					fmt.Fprint(w, scenarioBody)
				case FamiliesPath:
					fmt.Fprint(w, `{"familias": ["Agaricaceae"], "total": 1}`)
				}
			}))
			defer ts.Close()

			cfg := testConfig(ts.URL)
			cfg.APIToken = tt.token
			cfg.UserAgent = "sporeid-test"
			c, err := New(cfg)
			require.NoError(t, err)
			defer c.Close()

			c.Classify(context.Background(), testInput())
			c.IsAvailable(context.Background())
			_, err = c.Families(context.Background())
			require.NoError(t, err)

			mu.Lock()
			defer mu.Unlock()
			for _, path := range []string{PredictPath, HealthPath, FamiliesPath} {
				h, ok := seen[path]
				require.True(t, ok, "no request to %s", path)
				assert.Equal(t, tt.wantAuth, h.Get("Authorization"), path)
				assert.Equal(t, "sporeid-test", h.Get("User-Agent"), path)
			}
		})
	}
}
