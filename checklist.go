package plank

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/plankhq/plank.go/pkg/models"
)

// CheckItem is one entry of a checklist. Items are owned by their
// checklist and carried inline in its document, so they are plain
// values rather than identity-cached resources.
type CheckItem struct {
	ID    models.ID       `json:"id"`
	Name  string          `json:"name"`
	State string          `json:"state"`
	Pos   models.Position `json:"pos"`
}

// Done reports whether the item has been checked off.
func (i CheckItem) Done() bool {
	return i.State == "complete"
}

// Checklist is a to-do list on a card.
type Checklist struct {
	syncState

	ID models.ID

	name    string
	idCard  models.ID
	idBoard models.ID
	pos     models.Position
	items   []CheckItem
}

func (cl *Checklist) kind() string             { return "checklists" }
func (cl *Checklist) remoteID() models.ID      { return cl.ID }
func (cl *Checklist) setRemoteID(id models.ID) { cl.ID = id }

func (cl *Checklist) applyField(name string, raw json.RawMessage) error {
	switch name {
	case "id":
		if cl.ID != "" {
			return nil
		}
		return json.Unmarshal(raw, &cl.ID)
	case "name":
		return json.Unmarshal(raw, &cl.name)
	case "idCard":
		return json.Unmarshal(raw, &cl.idCard)
	case "idBoard":
		return json.Unmarshal(raw, &cl.idBoard)
	case "pos":
		return json.Unmarshal(raw, &cl.pos)
	case "checkItems":
		return json.Unmarshal(raw, &cl.items)
	}
	return nil
}

// Name reads the checklist's name under the sync lock.
func (cl *Checklist) Name() string {
	return readField(&cl.syncState, func() string { return cl.name })
}

// Items returns the checklist entries in board order.
func (cl *Checklist) Items(ctx context.Context) ([]CheckItem, error) {
	if err := cl.client.ensure(ctx, cl, "checkItems"); err != nil {
		return nil, err
	}
	return readField(&cl.syncState, func() []CheckItem {
		items := make([]CheckItem, len(cl.items))
		copy(items, cl.items)
		return items
	}), nil
}

// Card resolves the card the checklist belongs to.
func (cl *Checklist) Card(ctx context.Context) (*Card, error) {
	if err := cl.client.ensure(ctx, cl, "idCard"); err != nil {
		return nil, err
	}
	idCard := readField(&cl.syncState, func() models.ID { return cl.idCard })
	return cl.client.GetCard(ctx, idCard)
}

func (cl *Checklist) SetName(name string) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.name = name
	return cl.setLocal("name", name)
}

// AddItem appends an entry to the checklist.
func (cl *Checklist) AddItem(ctx context.Context, name string) (CheckItem, error) {
	body := map[string]any{"name": name, "pos": models.Bottom()}
	var item CheckItem
	if err := cl.client.do(ctx, http.MethodPost, resourcePath(cl)+"/checkItems", nil, body, &item); err != nil {
		return CheckItem{}, err
	}

	cl.mu.Lock()
	cl.items = append(cl.items, item)
	cl.mu.Unlock()
	return item, nil
}

// SetItemState checks or unchecks an entry.
func (cl *Checklist) SetItemState(ctx context.Context, item CheckItem, done bool) error {
	state := "incomplete"
	if done {
		state = "complete"
	}
	body := map[string]any{"state": state}
	path := resourcePath(cl) + "/checkItems/" + item.ID.String()
	if err := cl.client.do(ctx, http.MethodPut, path, nil, body, nil); err != nil {
		return err
	}

	cl.mu.Lock()
	for i := range cl.items {
		if cl.items[i].ID == item.ID {
			cl.items[i].State = state
		}
	}
	cl.mu.Unlock()
	return nil
}

// DeleteItem removes an entry from the checklist.
func (cl *Checklist) DeleteItem(ctx context.Context, item CheckItem) error {
	path := resourcePath(cl) + "/checkItems/" + item.ID.String()
	if err := cl.client.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return err
	}

	cl.mu.Lock()
	items := cl.items[:0]
	for _, it := range cl.items {
		if it.ID != item.ID {
			items = append(items, it)
		}
	}
	cl.items = items
	cl.mu.Unlock()
	return nil
}

// Delete removes the checklist from its card and drops it from the
// identity cache.
func (cl *Checklist) Delete(ctx context.Context) error {
	if err := cl.client.do(ctx, http.MethodDelete, resourcePath(cl), nil, nil, nil); err != nil {
		return err
	}
	cl.client.cache.remove(cl.kind(), cl.ID)
	return nil
}
