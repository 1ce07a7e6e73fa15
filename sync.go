package plank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/plankhq/plank.go/pkg/models"
)

// Resource is implemented by every domain object in this package. The
// methods are unexported: the set of resource kinds is fixed by the
// service, and the sync machinery relies on each implementation being
// backed by a syncState.
type Resource interface {
	// kind is the plural REST collection name, e.g. "boards".
	kind() string
	remoteID() models.ID
	// setRemoteID fills the ID before the object is published through
	// the identity cache. The ID never changes afterwards.
	setRemoteID(id models.ID)
	// applyField decodes one remote field into the local object.
	// Unknown fields are ignored, not an error: the service grows
	// fields over time.
	applyField(name string, raw json.RawMessage) error
	base() *syncState
}

// syncState is embedded in every domain object. It tracks which remote
// fields have been loaded locally and which carry unflushed local
// modifications.
type syncState struct {
	client *Client

	mu     sync.RWMutex
	loaded map[string]bool
	// dirty maps remote field names to their pending local values,
	// already encoded for the flush body.
	dirty map[string]json.RawMessage
}

func (s *syncState) base() *syncState { return s }

func (s *syncState) attach(c *Client) {
	s.client = c
	if s.loaded == nil {
		s.loaded = make(map[string]bool)
	}
	if s.dirty == nil {
		s.dirty = make(map[string]json.RawMessage)
	}
}

// setLocal records a local modification: the caller has already written
// the struct field under s.mu; this marks it dirty for the next Flush.
func (s *syncState) setLocal(field string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", field, err)
	}
	s.dirty[field] = raw
	s.loaded[field] = true
	return nil
}

type mergeMode int

const (
	// mergePartial applies exactly the keys present in the document.
	mergePartial mergeMode = iota
	// mergeEvent is mergePartial, except keys with unflushed local
	// modifications are left alone. Every fetch-path merge uses it;
	// only an explicit Refresh may clobber dirty fields.
	mergeEvent
	// mergeRefresh discards local modifications and applies the
	// document as the new truth.
	mergeRefresh
)

// merge applies a partial remote document to r. Keys absent from the
// document never clobber local values.
func merge(r Resource, doc map[string]json.RawMessage, mode mergeMode) error {
	s := r.base()
	s.mu.Lock()
	defer s.mu.Unlock()

	if mode == mergeRefresh {
		s.dirty = make(map[string]json.RawMessage)
	}

	for name, raw := range doc {
		if mode == mergeEvent {
			if _, dirty := s.dirty[name]; dirty {
				continue
			}
		}
		if err := r.applyField(name, raw); err != nil {
			return &FieldError{Kind: r.kind(), ID: r.remoteID(), Field: name, cause: err}
		}
		s.loaded[name] = true
	}
	return nil
}

// ensure loads a single remote field unless it is already present
// locally, either from a previous fetch or as an unflushed local value.
// Absent an explicit Refresh, a field is fetched at most once.
func (c *Client) ensure(ctx context.Context, r Resource, field string) error {
	s := r.base()
	s.mu.RLock()
	_, dirty := s.dirty[field]
	have := s.loaded[field] || dirty
	s.mu.RUnlock()
	if have {
		return nil
	}

	query := url.Values{}
	query.Set("fields", field)

	var doc map[string]json.RawMessage
	if err := c.get(ctx, resourcePath(r), query, &doc); err != nil {
		return &FieldError{Kind: r.kind(), ID: r.remoteID(), Field: field, cause: err}
	}
	if err := merge(r, doc, mergeEvent); err != nil {
		return err
	}

	// The service omits unset fields from the response. Record the
	// field as loaded anyway so its zero value is trusted from now on.
	s.mu.Lock()
	s.loaded[field] = true
	s.mu.Unlock()
	return nil
}

// Refresh reloads the full remote document for r, discarding any
// unflushed local modifications.
func Refresh(ctx context.Context, r Resource) error {
	c := r.base().client
	var doc map[string]json.RawMessage
	if err := c.get(ctx, resourcePath(r), nil, &doc); err != nil {
		return err
	}
	return merge(r, doc, mergeRefresh)
}

// Flush writes all locally modified fields of r to the service in one
// partial update. Fields the caller never touched are not sent, so they
// cannot clobber concurrent modifications made elsewhere. The service
// responds with the updated document, which is merged back.
func Flush(ctx context.Context, r Resource) error {
	s := r.base()

	s.mu.RLock()
	body := make(map[string]json.RawMessage, len(s.dirty))
	for name, raw := range s.dirty {
		body[name] = raw
	}
	s.mu.RUnlock()

	if len(body) == 0 {
		return nil
	}

	var doc map[string]json.RawMessage
	if err := s.client.do(ctx, http.MethodPut, resourcePath(r), nil, body, &doc); err != nil {
		return err
	}

	// Only the values that went out on the wire are clean now. A Set
	// made while the PUT was in flight stays dirty for the next Flush,
	// and the merge below leaves it alone.
	s.mu.Lock()
	for name, raw := range body {
		if cur, ok := s.dirty[name]; ok && bytes.Equal(cur, raw) {
			delete(s.dirty, name)
		}
	}
	s.mu.Unlock()

	return merge(r, doc, mergeEvent)
}

func resourcePath(r Resource) string {
	return "/1/" + r.kind() + "/" + r.remoteID().String()
}

// readField evaluates f under the read lock, for getters over fields
// that ensure has made present.
func readField[T any](s *syncState, f func() T) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f()
}
