package plank

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/plankhq/plank.go/pkg/models"
)

// Board is a project board. ID is set at creation and immutable; the
// name is filled whenever the board is fetched; everything else loads
// lazily on first access.
type Board struct {
	syncState

	ID models.ID

	name           string
	desc           string
	closed         bool
	pinned         bool
	starred        bool
	url            string
	shortURL       string
	idOrganization models.ID
}

func (b *Board) kind() string             { return "boards" }
func (b *Board) remoteID() models.ID      { return b.ID }
func (b *Board) setRemoteID(id models.ID) { b.ID = id }

func (b *Board) applyField(name string, raw json.RawMessage) error {
	switch name {
	case "id":
		if b.ID != "" {
			return nil
		}
		return json.Unmarshal(raw, &b.ID)
	case "name":
		return json.Unmarshal(raw, &b.name)
	case "desc":
		return json.Unmarshal(raw, &b.desc)
	case "closed":
		return json.Unmarshal(raw, &b.closed)
	case "pinned":
		return json.Unmarshal(raw, &b.pinned)
	case "starred":
		return json.Unmarshal(raw, &b.starred)
	case "url":
		return json.Unmarshal(raw, &b.url)
	case "shortUrl":
		return json.Unmarshal(raw, &b.shortURL)
	case "idOrganization":
		if string(raw) == "null" {
			b.idOrganization = ""
			return nil
		}
		return json.Unmarshal(raw, &b.idOrganization)
	}
	return nil
}

// Name returns the board's name. It is filled whenever the board is
// fetched and kept current by live events, so it reads under the sync
// lock rather than as a plain field.
func (b *Board) Name() string {
	return readField(&b.syncState, func() string { return b.name })
}

// --------------------------------------------------
// Lazy fields
// --------------------------------------------------

func (b *Board) Description(ctx context.Context) (string, error) {
	if err := b.client.ensure(ctx, b, "desc"); err != nil {
		return "", err
	}
	return readField(&b.syncState, func() string { return b.desc }), nil
}

func (b *Board) Closed(ctx context.Context) (bool, error) {
	if err := b.client.ensure(ctx, b, "closed"); err != nil {
		return false, err
	}
	return readField(&b.syncState, func() bool { return b.closed }), nil
}

func (b *Board) Starred(ctx context.Context) (bool, error) {
	if err := b.client.ensure(ctx, b, "starred"); err != nil {
		return false, err
	}
	return readField(&b.syncState, func() bool { return b.starred }), nil
}

func (b *Board) URL(ctx context.Context) (string, error) {
	if err := b.client.ensure(ctx, b, "url"); err != nil {
		return "", err
	}
	return readField(&b.syncState, func() string { return b.url }), nil
}

func (b *Board) ShortURL(ctx context.Context) (string, error) {
	if err := b.client.ensure(ctx, b, "shortUrl"); err != nil {
		return "", err
	}
	return readField(&b.syncState, func() string { return b.shortURL }), nil
}

// Organization resolves the board's owning organization, or nil for a
// personal board.
func (b *Board) Organization(ctx context.Context) (*Organization, error) {
	if err := b.client.ensure(ctx, b, "idOrganization"); err != nil {
		return nil, err
	}
	idOrg := readField(&b.syncState, func() models.ID { return b.idOrganization })
	if idOrg.IsZero() {
		return nil, nil
	}
	return b.client.GetOrganization(ctx, idOrg)
}

// --------------------------------------------------
// Local modifications
// --------------------------------------------------

func (b *Board) SetName(name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
	return b.setLocal("name", name)
}

func (b *Board) SetDescription(desc string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.desc = desc
	return b.setLocal("desc", desc)
}

func (b *Board) SetClosed(closed bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = closed
	return b.setLocal("closed", closed)
}

// --------------------------------------------------
// Children
// --------------------------------------------------

// Lists fetches the board's lists, open and archived.
func (b *Board) Lists(ctx context.Context) ([]*List, error) {
	var docs []map[string]json.RawMessage
	if err := b.client.get(ctx, resourcePath(b)+"/lists", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[List](b.client, docs)
}

// Cards fetches all cards on the board across its lists.
func (b *Board) Cards(ctx context.Context) ([]*Card, error) {
	var docs []map[string]json.RawMessage
	if err := b.client.get(ctx, resourcePath(b)+"/cards", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Card](b.client, docs)
}

// Members fetches the members with access to the board.
func (b *Board) Members(ctx context.Context) ([]*Member, error) {
	var docs []map[string]json.RawMessage
	if err := b.client.get(ctx, resourcePath(b)+"/members", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Member](b.client, docs)
}

// Labels fetches the labels defined on the board.
func (b *Board) Labels(ctx context.Context) ([]*Label, error) {
	var docs []map[string]json.RawMessage
	if err := b.client.get(ctx, resourcePath(b)+"/labels", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Label](b.client, docs)
}

// AddList creates a list on the board at the given position.
func (b *Board) AddList(ctx context.Context, name string, pos models.Position) (*List, error) {
	body := map[string]any{"name": name, "pos": pos}
	var doc map[string]json.RawMessage
	if err := b.client.do(ctx, http.MethodPost, resourcePath(b)+"/lists", nil, body, &doc); err != nil {
		return nil, err
	}
	return canonical[List](b.client, doc)
}

// AddLabel defines a label on the board.
func (b *Board) AddLabel(ctx context.Context, name string, color models.Color) (*Label, error) {
	if err := color.Validate(); err != nil {
		return nil, err
	}
	body := map[string]any{"name": name, "color": color}
	var doc map[string]json.RawMessage
	if err := b.client.do(ctx, http.MethodPost, resourcePath(b)+"/labels", nil, body, &doc); err != nil {
		return nil, err
	}
	return canonical[Label](b.client, doc)
}

// AddMember grants a member access to the board.
func (b *Board) AddMember(ctx context.Context, m *Member) error {
	return b.client.do(ctx, http.MethodPut, resourcePath(b)+"/members/"+m.ID.String(), nil, nil, nil)
}

// RemoveMember revokes a member's access to the board.
func (b *Board) RemoveMember(ctx context.Context, m *Member) error {
	return b.client.do(ctx, http.MethodDelete, resourcePath(b)+"/members/"+m.ID.String(), nil, nil, nil)
}

// Delete permanently deletes the board and drops it from the identity
// cache.
func (b *Board) Delete(ctx context.Context) error {
	if err := b.client.do(ctx, http.MethodDelete, resourcePath(b), nil, nil, nil); err != nil {
		return err
	}
	b.client.cache.remove(b.kind(), b.ID)
	return nil
}
