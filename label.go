package plank

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/plankhq/plank.go/pkg/models"
)

// Label is a colored tag defined on a board and applied to cards.
type Label struct {
	syncState

	ID models.ID

	name    string
	idBoard models.ID
	color   models.Color
	uses    int
}

func (l *Label) kind() string             { return "labels" }
func (l *Label) remoteID() models.ID      { return l.ID }
func (l *Label) setRemoteID(id models.ID) { l.ID = id }

func (l *Label) applyField(name string, raw json.RawMessage) error {
	switch name {
	case "id":
		if l.ID != "" {
			return nil
		}
		return json.Unmarshal(raw, &l.ID)
	case "name":
		return json.Unmarshal(raw, &l.name)
	case "idBoard":
		return json.Unmarshal(raw, &l.idBoard)
	case "color":
		if string(raw) == "null" {
			l.color = ""
			return nil
		}
		return json.Unmarshal(raw, &l.color)
	case "uses":
		return json.Unmarshal(raw, &l.uses)
	}
	return nil
}

// Name reads the label's name under the sync lock.
func (l *Label) Name() string {
	return readField(&l.syncState, func() string { return l.name })
}

// Color returns the label color, empty for colorless labels.
func (l *Label) Color(ctx context.Context) (models.Color, error) {
	if err := l.client.ensure(ctx, l, "color"); err != nil {
		return "", err
	}
	return readField(&l.syncState, func() models.Color { return l.color }), nil
}

// Uses returns how many cards currently carry the label.
func (l *Label) Uses(ctx context.Context) (int, error) {
	if err := l.client.ensure(ctx, l, "uses"); err != nil {
		return 0, err
	}
	return readField(&l.syncState, func() int { return l.uses }), nil
}

// Board resolves the board the label is defined on.
func (l *Label) Board(ctx context.Context) (*Board, error) {
	if err := l.client.ensure(ctx, l, "idBoard"); err != nil {
		return nil, err
	}
	idBoard := readField(&l.syncState, func() models.ID { return l.idBoard })
	return l.client.GetBoard(ctx, idBoard)
}

func (l *Label) SetName(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.name = name
	return l.setLocal("name", name)
}

func (l *Label) SetColor(color models.Color) error {
	if err := color.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.color = color
	return l.setLocal("color", color)
}

// Delete removes the label from its board and every card, and drops it
// from the identity cache.
func (l *Label) Delete(ctx context.Context) error {
	if err := l.client.do(ctx, http.MethodDelete, resourcePath(l), nil, nil, nil); err != nil {
		return err
	}
	l.client.cache.remove(l.kind(), l.ID)
	return nil
}
