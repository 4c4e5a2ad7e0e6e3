package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/roach88/fxrelay/internal/alias"
)

// FakeToken is the API token FakeRelay accepts by default.
const FakeToken = "test-token"

// RecordedRequest is one request received by FakeRelay.
type RecordedRequest struct {
	Method        string
	Path          string
	Body          string
	Authorization string
	RequestID     string
}

// FakeRelay is an in-memory relay API served over httptest.
//
// It implements the list/get/create/patch/delete contract, records every
// request, and can be told to fail the next call of a given method.
type FakeRelay struct {
	Server *httptest.Server

	// Normalize, when set, post-processes records the server returns from
	// create and patch, standing in for server-side validation.
	Normalize func(alias.Alias) alias.Alias

	mu       sync.Mutex
	token    string
	aliases  map[int64]alias.Alias
	nextID   int64
	requests []RecordedRequest
	failures map[string][]int
	clock    *StepClock
}

// NewFakeRelay starts a fake server seeded with aliases. The server is closed
// when the test finishes.
func NewFakeRelay(t testing.TB, seed ...alias.Alias) *FakeRelay {
	t.Helper()

	f := &FakeRelay{
		token:    FakeToken,
		aliases:  make(map[int64]alias.Alias),
		nextID:   1,
		failures: make(map[string][]int),
		clock:    NewStepClock(time.Hour),
	}
	for _, a := range seed {
		f.aliases[a.ID] = a
		if a.ID >= f.nextID {
			f.nextID = a.ID + 1
		}
	}

	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the API root to pass as relay.Options.BaseURL.
func (f *FakeRelay) URL() string {
	return f.Server.URL + "/api/v1/"
}

// FailNext makes the next request with the given method answer status.
// Calls queue up: FailNext("GET", 500); FailNext("GET", 502) fails two GETs.
func (f *FakeRelay) FailNext(method string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], status)
}

// Put inserts or replaces an alias on the server side.
func (f *FakeRelay) Put(a alias.Alias) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aliases[a.ID] = a
	if a.ID >= f.nextID {
		f.nextID = a.ID + 1
	}
}

// Alias returns the server-side record for id.
func (f *FakeRelay) Alias(id int64) (alias.Alias, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.aliases[id]
	return a, ok
}

// Len returns the number of aliases stored on the server.
func (f *FakeRelay) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.aliases)
}

// Requests returns every request received so far.
func (f *FakeRelay) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]RecordedRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// RequestsFor returns the requests received with the given method.
func (f *FakeRelay) RequestsFor(method string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.Method == method {
			out = append(out, r)
		}
	}
	return out
}

func (f *FakeRelay) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, RecordedRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Body:          string(body),
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get("X-Request-ID"),
	})

	if r.Header.Get("Authorization") != "Token "+f.token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Invalid token."})
		return
	}

	if queued := f.failures[r.Method]; len(queued) > 0 {
		f.failures[r.Method] = queued[1:]
		writeJSON(w, queued[0], map[string]string{"detail": fmt.Sprintf("injected failure %d", queued[0])})
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/api/v1/relayaddresses/")
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			f.list(w)
		case http.MethodPost:
			f.create(w)
		default:
			writeJSON(w, http.StatusMethodNotAllowed, nil)
		}
		return
	}

	id, err := strconv.ParseInt(strings.TrimSuffix(rest, "/"), 10, 64)
	if err != nil || !strings.HasSuffix(rest, "/") {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	current, exists := f.aliases[id]
	if !exists {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, current)
	case http.MethodPatch:
		var patch alias.Patch
		if err := json.Unmarshal(body, &patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": err.Error()})
			return
		}
		updated := f.normalize(current.Apply(patch))
		f.aliases[id] = updated
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		delete(f.aliases, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, nil)
	}
}

func (f *FakeRelay) list(w http.ResponseWriter) {
	out := make([]alias.Alias, 0, len(f.aliases))
	for _, a := range f.aliases {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (f *FakeRelay) create(w http.ResponseWriter) {
	id := f.nextID
	f.nextID++
	a := f.normalize(alias.Alias{
		ID:          id,
		FullAddress: fmt.Sprintf("mask%d@mozmail.test", id),
		CreatedAt:   f.clock.Now(),
		Enabled:     true,
	})
	f.aliases[id] = a
	writeJSON(w, http.StatusCreated, a)
}

func (f *FakeRelay) normalize(a alias.Alias) alias.Alias {
	if f.Normalize != nil {
		return f.Normalize(a)
	}
	return a
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// SampleAlias builds an alias with deterministic defaults for tests.
func SampleAlias(id int64, description string) alias.Alias {
	return alias.Alias{
		ID:           id,
		Description:  description,
		FullAddress:  fmt.Sprintf("mask%d@mozmail.test", id),
		CreatedAt:    Epoch.Add(time.Duration(id) * 24 * time.Hour),
		Enabled:      true,
		NumForwarded: id * 3,
		NumBlocked:   id,
	}
}
