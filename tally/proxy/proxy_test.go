package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vouchrit/tally"
	"github.com/vouchrit/tally/tally/transport"
)

type fakeUpstream struct {
	mu       sync.Mutex
	bodies   []string
	reply    string
	postErr  error
	probeErr error
}

func (f *fakeUpstream) Post(_ context.Context, body string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bodies = append(f.bodies, body)
	if f.postErr != nil {
		return nil, f.postErr
	}
	return []byte(f.reply), nil
}

func (f *fakeUpstream) Probe(context.Context) ([]tally.Company, error) {
	if f.probeErr != nil {
		return nil, f.probeErr
	}
	return []tally.Company{{ID: "1", Name: "ABC Traders"}}, nil
}

func do(t *testing.T, h http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestForward(t *testing.T) {
	up := &fakeUpstream{reply: "<RESPONSE><CREATED>1</CREATED></RESPONSE>"}
	h := New(up, Options{}).Routes()

	rec := do(t, h, http.MethodPost, "/tally", "<ENVELOPE/>")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, up.reply, rec.Body.String())
	assert.Equal(t, "application/xml; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, []string{"<ENVELOPE/>"}, up.bodies)
}

func TestForwardErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{"timeout", &transport.Error{Reason: transport.ReasonTimeout, Timeout: 30 * time.Second}, http.StatusGatewayTimeout, "timeout"},
		{"http error", &transport.Error{Reason: transport.ReasonHTTPError, Status: 500}, http.StatusBadGateway, "http-error"},
		{"network", &transport.Error{Reason: transport.ReasonNetwork, Err: errors.New("refused")}, http.StatusBadGateway, "network"},
		{"other", errors.New("boom"), http.StatusBadGateway, "network"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&fakeUpstream{postErr: tt.err}, Options{}).Routes()
			rec := do(t, h, http.MethodPost, "/tally", "<ENVELOPE/>")
			assert.Equal(t, tt.status, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.reason, body.Reason)
			assert.Equal(t, tt.err.Error(), body.Error)
		})
	}
}

func TestHealth(t *testing.T) {
	h := New(&fakeUpstream{}, Options{}).Routes()
	rec := do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","companies":[{"id":"1","name":"ABC Traders"}]}`, rec.Body.String())

	h = New(&fakeUpstream{probeErr: errors.New("unable to reach tally proxy")}, Options{}).Routes()
	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unreachable"`)
}

func TestMetrics(t *testing.T) {
	h := New(&fakeUpstream{reply: "<RESPONSE/>"}, Options{}).Routes()
	do(t, h, http.MethodPost, "/tally", "<ENVELOPE/>")
	do(t, h, http.MethodPost, "/tally", "<ENVELOPE/>")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	out, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(out), `tallybridge_forwards_total{outcome="ok"} 2`)
	assert.Contains(t, string(out), `tallybridge_http_requests_total{code="200",route="/tally"} 2`)
}

func TestCORS(t *testing.T) {
	h := New(&fakeUpstream{reply: "<RESPONSE/>"}, Options{AllowedOrigin: "https://app.vouchrit.com"}).Routes()

	rec := do(t, h, http.MethodOptions, "/tally", "",
		"Origin", "https://app.vouchrit.com",
		"Access-Control-Request-Method", "POST")
	assert.Equal(t, "https://app.vouchrit.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(t, h, http.MethodPost, "/tally", "<ENVELOPE/>", "Origin", "https://evil.example")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	h := New(&fakeUpstream{reply: "<RESPONSE/>"}, Options{RateLimit: 2}).Routes()
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/tally", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/tally", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodPost, "/tally", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code, "health is not limited")
}

func TestListenAndServeShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- New(&fakeUpstream{}, Options{}).ListenAndServe(ctx, "127.0.0.1:0")
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
