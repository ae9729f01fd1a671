package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
)

// procedureFunc answers one tRPC call. A nil result becomes an upstream error entry;
// a status other than 200 fails the whole HTTP request.
type procedureFunc func(input gjson.Result) (result interface{}, status int)

// fakeWarEra is an httptest server speaking the tRPC batch protocol
type fakeWarEra struct {
	t          *testing.T
	server     *httptest.Server
	mu         sync.Mutex
	procedures map[string]procedureFunc
	rest       map[string]interface{}
	requests   []*http.Request
	headers    http.Header
}

func newFakeWarEra(t *testing.T) *fakeWarEra {
	f := &fakeWarEra{
		t:          t,
		procedures: make(map[string]procedureFunc),
		rest:       make(map[string]interface{}),
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeWarEra) on(procedure string, fn procedureFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.procedures[procedure] = fn
}

func (f *fakeWarEra) onJSON(path string, body interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rest[path] = body
}

func (f *fakeWarEra) dropJSON(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rest, path)
}

func (f *fakeWarEra) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeWarEra) lastHeaders() http.Header {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.headers
}

func (f *fakeWarEra) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.headers = r.Header.Clone()
	rest, isREST := f.rest[r.URL.Path]
	f.mu.Unlock()

	if isREST {
		writeJSON(w, http.StatusOK, rest)
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/trpc/") {
		http.NotFound(w, r)
		return
	}

	procedures := strings.Split(strings.TrimPrefix(r.URL.Path, "/trpc/"), ",")
	inputs := gjson.Parse(r.URL.Query().Get("input"))

	out := make([]interface{}, len(procedures))
	for i, name := range procedures {
		f.mu.Lock()
		fn, ok := f.procedures[name]
		f.mu.Unlock()
		if !ok {
			out[i] = map[string]interface{}{"error": map[string]interface{}{"message": "unknown procedure"}}
			continue
		}
		result, status := fn(inputs.Get(strconv.Itoa(i)))
		if status != 0 && status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		if result == nil {
			out[i] = map[string]interface{}{"error": map[string]interface{}{"message": "not found"}}
			continue
		}
		out[i] = map[string]interface{}{"result": map[string]interface{}{"data": result}}
	}

	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// newTestClient returns a client without pacing whose sleeps go to a mock clock
func newTestClient(f *fakeWarEra, maxRetries int) (*Client, *shared.MockClock) {
	clock := shared.NewMockClock(testNow)
	client := NewClient(ClientOptions{
		BaseURL:     f.server.URL,
		Token:       "test-token",
		Fingerprint: "test-fp",
		MaxRetries:  maxRetries,
		BackoffBase: time.Second,
	}, clock)
	return client, clock
}

// ok wraps a constant result
func ok(result interface{}) procedureFunc {
	return func(gjson.Result) (interface{}, int) { return result, http.StatusOK }
}

// failing always answers with the given status
func failing(status int) procedureFunc {
	return func(gjson.Result) (interface{}, int) { return nil, status }
}
