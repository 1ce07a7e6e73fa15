package plank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/plankhq/plank.go/pkg/models"
)

// Card is a single work item on a board.
type Card struct {
	syncState

	ID models.ID

	name        string
	desc        string
	closed      bool
	idList      models.ID
	idBoard     models.ID
	idMembers   []models.ID
	idLabels    []models.ID
	due         models.Date
	dueComplete bool
	pos         models.Position
	url         string
	shortURL    string
}

func (c *Card) kind() string             { return "cards" }
func (c *Card) remoteID() models.ID      { return c.ID }
func (c *Card) setRemoteID(id models.ID) { c.ID = id }

func (c *Card) applyField(name string, raw json.RawMessage) error {
	switch name {
	case "id":
		if c.ID != "" {
			return nil
		}
		return json.Unmarshal(raw, &c.ID)
	case "name":
		return json.Unmarshal(raw, &c.name)
	case "desc":
		return json.Unmarshal(raw, &c.desc)
	case "closed":
		return json.Unmarshal(raw, &c.closed)
	case "idList":
		return json.Unmarshal(raw, &c.idList)
	case "idBoard":
		return json.Unmarshal(raw, &c.idBoard)
	case "idMembers":
		return json.Unmarshal(raw, &c.idMembers)
	case "idLabels":
		return json.Unmarshal(raw, &c.idLabels)
	case "due":
		return json.Unmarshal(raw, &c.due)
	case "dueComplete":
		return json.Unmarshal(raw, &c.dueComplete)
	case "pos":
		return json.Unmarshal(raw, &c.pos)
	case "url":
		return json.Unmarshal(raw, &c.url)
	case "shortUrl":
		return json.Unmarshal(raw, &c.shortURL)
	}
	return nil
}

// Name reads the card's name under the sync lock.
func (c *Card) Name() string {
	return readField(&c.syncState, func() string { return c.name })
}

// --------------------------------------------------
// Lazy fields
// --------------------------------------------------

func (c *Card) Description(ctx context.Context) (string, error) {
	if err := c.client.ensure(ctx, c, "desc"); err != nil {
		return "", err
	}
	return readField(&c.syncState, func() string { return c.desc }), nil
}

func (c *Card) Closed(ctx context.Context) (bool, error) {
	if err := c.client.ensure(ctx, c, "closed"); err != nil {
		return false, err
	}
	return readField(&c.syncState, func() bool { return c.closed }), nil
}

// Due returns the card's due date. The zero Date means no due date is
// set.
func (c *Card) Due(ctx context.Context) (models.Date, error) {
	if err := c.client.ensure(ctx, c, "due"); err != nil {
		return models.Date{}, err
	}
	return readField(&c.syncState, func() models.Date { return c.due }), nil
}

func (c *Card) DueComplete(ctx context.Context) (bool, error) {
	if err := c.client.ensure(ctx, c, "dueComplete"); err != nil {
		return false, err
	}
	return readField(&c.syncState, func() bool { return c.dueComplete }), nil
}

func (c *Card) Position(ctx context.Context) (models.Position, error) {
	if err := c.client.ensure(ctx, c, "pos"); err != nil {
		return models.Position{}, err
	}
	return readField(&c.syncState, func() models.Position { return c.pos }), nil
}

func (c *Card) URL(ctx context.Context) (string, error) {
	if err := c.client.ensure(ctx, c, "url"); err != nil {
		return "", err
	}
	return readField(&c.syncState, func() string { return c.url }), nil
}

// List resolves the list the card sits in.
func (c *Card) List(ctx context.Context) (*List, error) {
	if err := c.client.ensure(ctx, c, "idList"); err != nil {
		return nil, err
	}
	idList := readField(&c.syncState, func() models.ID { return c.idList })
	return c.client.GetList(ctx, idList)
}

// Board resolves the board the card sits on.
func (c *Card) Board(ctx context.Context) (*Board, error) {
	if err := c.client.ensure(ctx, c, "idBoard"); err != nil {
		return nil, err
	}
	idBoard := readField(&c.syncState, func() models.ID { return c.idBoard })
	return c.client.GetBoard(ctx, idBoard)
}

// Members resolves the members assigned to the card.
func (c *Card) Members(ctx context.Context) ([]*Member, error) {
	if err := c.client.ensure(ctx, c, "idMembers"); err != nil {
		return nil, err
	}
	ids := readField(&c.syncState, func() []models.ID { return c.idMembers })
	members := make([]*Member, 0, len(ids))
	for _, id := range ids {
		m, err := c.client.GetMember(ctx, id.String())
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

// --------------------------------------------------
// Local modifications
// --------------------------------------------------

func (c *Card) SetName(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
	return c.setLocal("name", name)
}

func (c *Card) SetDescription(desc string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.desc = desc
	return c.setLocal("desc", desc)
}

func (c *Card) SetDue(due models.Date) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.due = due
	return c.setLocal("due", due)
}

func (c *Card) SetDueComplete(done bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dueComplete = done
	return c.setLocal("dueComplete", done)
}

func (c *Card) SetPosition(pos models.Position) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = pos
	return c.setLocal("pos", pos)
}

// Archive closes the card. Takes effect on the next Flush.
func (c *Card) Archive() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return c.setLocal("closed", true)
}

// --------------------------------------------------
// Immediate operations
// --------------------------------------------------

// Move moves the card to another list, at the given position.
func (c *Card) Move(ctx context.Context, l *List, pos models.Position) error {
	body := map[string]any{"idList": l.ID, "pos": pos}
	var doc map[string]json.RawMessage
	if err := c.client.do(ctx, http.MethodPut, resourcePath(c), nil, body, &doc); err != nil {
		return err
	}
	return merge(c, doc, mergeEvent)
}

// AddLabel applies a board label to the card.
func (c *Card) AddLabel(ctx context.Context, label *Label) error {
	body := map[string]any{"value": label.ID}
	if err := c.client.do(ctx, http.MethodPost, resourcePath(c)+"/idLabels", nil, body, nil); err != nil {
		return err
	}
	return Refresh(ctx, c)
}

// RemoveLabel removes a label from the card.
func (c *Card) RemoveLabel(ctx context.Context, label *Label) error {
	if err := c.client.do(ctx, http.MethodDelete, resourcePath(c)+"/idLabels/"+label.ID.String(), nil, nil, nil); err != nil {
		return err
	}
	return Refresh(ctx, c)
}

// Assign assigns a member to the card.
func (c *Card) Assign(ctx context.Context, m *Member) error {
	body := map[string]any{"value": m.ID}
	if err := c.client.do(ctx, http.MethodPost, resourcePath(c)+"/idMembers", nil, body, nil); err != nil {
		return err
	}
	return Refresh(ctx, c)
}

// Unassign removes a member from the card.
func (c *Card) Unassign(ctx context.Context, m *Member) error {
	if err := c.client.do(ctx, http.MethodDelete, resourcePath(c)+"/idMembers/"+m.ID.String(), nil, nil, nil); err != nil {
		return err
	}
	return Refresh(ctx, c)
}

// Comment posts a comment on the card.
func (c *Card) Comment(ctx context.Context, text string) error {
	query := url.Values{}
	query.Set("text", text)
	return c.client.do(ctx, http.MethodPost, resourcePath(c)+"/comments", query, nil, nil)
}

// Attachments fetches the card's attachments.
func (c *Card) Attachments(ctx context.Context) ([]*Attachment, error) {
	var docs []map[string]json.RawMessage
	if err := c.client.get(ctx, resourcePath(c)+"/attachments", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Attachment](c.client, docs)
}

// Attach attaches a URL to the card.
func (c *Card) Attach(ctx context.Context, name, fileURL string) (*Attachment, error) {
	body := map[string]any{"name": name, "url": fileURL}
	var doc map[string]json.RawMessage
	if err := c.client.do(ctx, http.MethodPost, resourcePath(c)+"/attachments", nil, body, &doc); err != nil {
		return nil, err
	}
	return canonical[Attachment](c.client, doc)
}

// Checklists fetches the card's checklists.
func (c *Card) Checklists(ctx context.Context) ([]*Checklist, error) {
	var docs []map[string]json.RawMessage
	if err := c.client.get(ctx, resourcePath(c)+"/checklists", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Checklist](c.client, docs)
}

// AddChecklist creates a checklist on the card.
func (c *Card) AddChecklist(ctx context.Context, name string) (*Checklist, error) {
	body := map[string]any{"name": name}
	var doc map[string]json.RawMessage
	if err := c.client.do(ctx, http.MethodPost, resourcePath(c)+"/checklists", nil, body, &doc); err != nil {
		return nil, err
	}
	return canonical[Checklist](c.client, doc)
}

// Delete permanently deletes the card and drops it from the identity
// cache.
func (c *Card) Delete(ctx context.Context) error {
	if err := c.client.do(ctx, http.MethodDelete, resourcePath(c), nil, nil, nil); err != nil {
		return err
	}
	c.client.cache.remove(c.kind(), c.ID)
	return nil
}
