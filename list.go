package plank

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/plankhq/plank.go/pkg/models"
)

// List is a column of cards on a board.
type List struct {
	syncState

	ID models.ID

	name       string
	closed     bool
	idBoard    models.ID
	pos        models.Position
	subscribed bool
}

func (l *List) kind() string             { return "lists" }
func (l *List) remoteID() models.ID      { return l.ID }
func (l *List) setRemoteID(id models.ID) { l.ID = id }

func (l *List) applyField(name string, raw json.RawMessage) error {
	switch name {
	case "id":
		if l.ID != "" {
			return nil
		}
		return json.Unmarshal(raw, &l.ID)
	case "name":
		return json.Unmarshal(raw, &l.name)
	case "closed":
		return json.Unmarshal(raw, &l.closed)
	case "idBoard":
		return json.Unmarshal(raw, &l.idBoard)
	case "pos":
		return json.Unmarshal(raw, &l.pos)
	case "subscribed":
		return json.Unmarshal(raw, &l.subscribed)
	}
	return nil
}

// Name reads the list's name under the sync lock.
func (l *List) Name() string {
	return readField(&l.syncState, func() string { return l.name })
}

func (l *List) Closed(ctx context.Context) (bool, error) {
	if err := l.client.ensure(ctx, l, "closed"); err != nil {
		return false, err
	}
	return readField(&l.syncState, func() bool { return l.closed }), nil
}

func (l *List) Position(ctx context.Context) (models.Position, error) {
	if err := l.client.ensure(ctx, l, "pos"); err != nil {
		return models.Position{}, err
	}
	return readField(&l.syncState, func() models.Position { return l.pos }), nil
}

// Board resolves the board the list belongs to.
func (l *List) Board(ctx context.Context) (*Board, error) {
	if err := l.client.ensure(ctx, l, "idBoard"); err != nil {
		return nil, err
	}
	idBoard := readField(&l.syncState, func() models.ID { return l.idBoard })
	return l.client.GetBoard(ctx, idBoard)
}

func (l *List) SetName(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.name = name
	return l.setLocal("name", name)
}

func (l *List) SetPosition(pos models.Position) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pos = pos
	return l.setLocal("pos", pos)
}

// Archive closes the list. Takes effect on the next Flush.
func (l *List) Archive() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return l.setLocal("closed", true)
}

// Cards fetches the open cards in the list.
func (l *List) Cards(ctx context.Context) ([]*Card, error) {
	var docs []map[string]json.RawMessage
	if err := l.client.get(ctx, resourcePath(l)+"/cards", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Card](l.client, docs)
}

// AddCard creates a card at the bottom of the list.
func (l *List) AddCard(ctx context.Context, name string) (*Card, error) {
	body := map[string]any{"name": name, "idList": l.ID, "pos": models.Bottom()}
	var doc map[string]json.RawMessage
	if err := l.client.do(ctx, http.MethodPost, "/1/cards", nil, body, &doc); err != nil {
		return nil, err
	}
	return canonical[Card](l.client, doc)
}
