package plank

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	gorilla "github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/plankhq/plank.go/pkg/connection"
)

// fakeService is an in-memory stand-in for the remote API. Documents
// are stored per kind/id; collection endpoints resolve to child
// documents. It also serves the /1/events websocket endpoint.
type fakeService struct {
	t *testing.T

	mu          sync.Mutex
	docs        map[string]map[string]any // "boards/<id>" -> document
	collections map[string][]string       // "boards/<id>/lists" -> doc keys
	hits        map[string]int            // "GET /1/boards/<id>" -> count
	nextID      int

	// beforeReply, when set, runs while the request is held open, so a
	// test can interleave client calls with an in-flight request.
	// Set it through setBeforeReply.
	beforeReply func(method, path string)

	upgrader gorilla.Upgrader
	streamMu sync.Mutex
	stream   *gorilla.Conn
}

func newFakeService(t *testing.T) *fakeService {
	return &fakeService{
		t:           t,
		docs:        make(map[string]map[string]any),
		collections: make(map[string][]string),
		hits:        make(map[string]int),
	}
}

func (f *fakeService) put(key string, doc map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[key] = doc
}

func (f *fakeService) addChild(collection, childKey string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections[collection] = append(f.collections[collection], childKey)
}

func (f *fakeService) setBeforeReply(fn func(method, path string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeReply = fn
}

func (f *fakeService) hitCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/1/events" {
		f.serveStream(w, r)
		return
	}
	if r.URL.Path == "/health" {
		return
	}

	f.mu.Lock()
	f.hits[r.Method+" "+r.URL.Path]++
	f.mu.Unlock()

	if r.URL.Query().Get("key") == "" || r.URL.Query().Get("token") == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	f.mu.Lock()
	hook := f.beforeReply
	f.mu.Unlock()
	if hook != nil {
		hook(r.Method, r.URL.Path)
	}

	key := strings.TrimPrefix(r.URL.Path, "/1/")
	switch r.Method {
	case http.MethodGet:
		f.handleGet(w, r, key)
	case http.MethodPut:
		f.handlePut(w, r, key)
	case http.MethodPost:
		f.handlePost(w, r, key)
	case http.MethodDelete:
		f.handleDelete(w, key)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (f *fakeService) handleGet(w http.ResponseWriter, r *http.Request, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if doc, ok := f.docs[key]; ok {
		writeJSON(w, filterFields(doc, r.URL.Query().Get("fields")))
		return
	}
	if children, ok := f.collections[key]; ok {
		out := make([]map[string]any, 0, len(children))
		for _, childKey := range children {
			out = append(out, f.docs[childKey])
		}
		writeJSON(w, out)
		return
	}
	http.Error(w, "no such resource", http.StatusNotFound)
}

func (f *fakeService) handlePut(w http.ResponseWriter, r *http.Request, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.docs[key]
	if !ok {
		// membership grants and similar child PUTs have no document
		writeJSON(w, map[string]any{})
		return
	}
	var patch map[string]any
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil && patch == nil {
		patch = map[string]any{}
	}
	for k, v := range patch {
		doc[k] = v
	}
	writeJSON(w, doc)
}

func (f *fakeService) handlePost(w http.ResponseWriter, r *http.Request, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && body == nil {
		body = map[string]any{}
	}

	// child mutation endpoints (idLabels, idMembers, comments) ack with
	// an empty document
	for _, suffix := range []string{"/idLabels", "/idMembers", "/comments"} {
		if strings.HasSuffix(key, suffix) {
			writeJSON(w, map[string]any{})
			return
		}
	}

	f.nextID++
	id := newTestID(f.nextID)
	body["id"] = id

	kind := key
	if i := strings.LastIndex(key, "/"); i >= 0 {
		kind = key[i+1:]
	}
	docKey := kind + "/" + id
	f.docs[docKey] = body
	if kind != key {
		f.collections[key] = append(f.collections[key], docKey)
	}
	writeJSON(w, body)
}

func (f *fakeService) handleDelete(w http.ResponseWriter, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, key)
	writeJSON(w, map[string]any{})
}

func (f *fakeService) serveStream(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	f.streamMu.Lock()
	f.stream = conn
	f.streamMu.Unlock()

	for {
		var in map[string]any
		if err := conn.ReadJSON(&in); err != nil {
			return
		}
		switch in["type"] {
		case "subscribe", "unsubscribe":
			if err := conn.WriteJSON(map[string]any{"type": "ack", "id": in["id"]}); err != nil {
				return
			}
		}
	}
}

// pushEvent emits an event frame on the connected stream.
func (f *fakeService) pushEvent(modelID string, delta map[string]any) error {
	f.streamMu.Lock()
	defer f.streamMu.Unlock()
	return f.stream.WriteJSON(map[string]any{
		"type":    "event",
		"modelId": modelID,
		"delta":   delta,
	})
}

func filterFields(doc map[string]any, fields string) map[string]any {
	if fields == "" {
		return doc
	}
	out := map[string]any{"id": doc["id"]}
	for _, f := range strings.Split(fields, ",") {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newTestID derives a distinct valid object ID from n.
func newTestID(n int) string {
	const hex = "0123456789abcdef"
	id := []byte("5f0000000000000000000000")
	for i := len(id) - 1; n > 0 && i >= 2; i-- {
		id[i] = hex[n%16]
		n /= 16
	}
	return string(id)
}

// newTestClient wires a Client to a fake service with an isolated
// identity cache.
func newTestClient(t *testing.T) (*Client, *fakeService) {
	t.Helper()
	fake := newFakeService(t)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	c := New(connection.NewConfig(u, "test-key", "test-token"))
	c.cache = newIdentityCache()
	t.Cleanup(func() { _ = c.Close() })
	return c, fake
}
