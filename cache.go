package plank

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/plankhq/plank.go/pkg/constants"
	"github.com/plankhq/plank.go/pkg/models"
)

// identityCache is the process-wide registry of canonical objects,
// keyed by kind and remote ID. Every fetch path resolves through it, so
// one remote entity is never represented by two divergent local
// objects.
type identityCache struct {
	mu      sync.RWMutex
	objects map[string]Resource
}

// processCache is shared by every Client built with New or FromEnv.
// Tests use isolated caches.
var processCache = newIdentityCache()

func newIdentityCache() *identityCache {
	return &identityCache{objects: make(map[string]Resource)}
}

func cacheKey(kind string, id models.ID) string {
	return kind + "/" + id.String()
}

// lookupOrCreate returns the canonical object for (kind, id), creating
// it with mk on first sight.
func (ic *identityCache) lookupOrCreate(kind string, id models.ID, mk func() Resource) Resource {
	key := cacheKey(kind, id)

	ic.mu.RLock()
	r, ok := ic.objects[key]
	ic.mu.RUnlock()
	if ok {
		return r
	}

	ic.mu.Lock()
	defer ic.mu.Unlock()
	if r, ok := ic.objects[key]; ok {
		return r
	}
	r = mk()
	ic.objects[key] = r
	return r
}

func (ic *identityCache) remove(kind string, id models.ID) {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	delete(ic.objects, cacheKey(kind, id))
}

func (ic *identityCache) len() int {
	ic.mu.RLock()
	defer ic.mu.RUnlock()
	return len(ic.objects)
}

// canonical resolves a remote document to its canonical local object
// and merges the document into it. The document must carry an id.
func canonical[T any, PT interface {
	*T
	Resource
}](c *Client, doc map[string]json.RawMessage) (PT, error) {
	rawID, ok := doc["id"]
	if !ok {
		return nil, fmt.Errorf("%w: document without id", constants.ErrInvalidResponse)
	}
	var id models.ID
	if err := json.Unmarshal(rawID, &id); err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrInvalidResponse, err)
	}
	if err := id.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrInvalidResponse, err)
	}

	kind := PT(new(T)).kind()
	r := c.cache.lookupOrCreate(kind, id, func() Resource {
		pt := PT(new(T))
		pt.base().attach(c)
		pt.setRemoteID(id)
		return pt
	})

	pt, ok := r.(PT)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s cached with a different type", constants.ErrInvalidResponse, kind, id)
	}
	// mergeEvent: a re-fetch of a cached object must not clobber fields
	// with unflushed local modifications.
	if err := merge(pt, doc, mergeEvent); err != nil {
		return nil, err
	}
	return pt, nil
}

// canonicalList resolves a collection response, one canonical object
// per document.
func canonicalList[T any, PT interface {
	*T
	Resource
}](c *Client, docs []map[string]json.RawMessage) ([]PT, error) {
	out := make([]PT, 0, len(docs))
	for _, doc := range docs {
		pt, err := canonical[T, PT](c, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, pt)
	}
	return out, nil
}
