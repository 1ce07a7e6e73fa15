package plank

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/plankhq/plank.go/pkg/models"
)

// Organization groups boards and members under one owner, typically a
// team or a company.
type Organization struct {
	syncState

	ID models.ID

	name        string
	displayName string
	desc        string
	url         string
	website     string
}

func (o *Organization) kind() string             { return "organizations" }
func (o *Organization) remoteID() models.ID      { return o.ID }
func (o *Organization) setRemoteID(id models.ID) { o.ID = id }

func (o *Organization) applyField(name string, raw json.RawMessage) error {
	switch name {
	case "id":
		if o.ID != "" {
			return nil
		}
		return json.Unmarshal(raw, &o.ID)
	case "name":
		return json.Unmarshal(raw, &o.name)
	case "displayName":
		return json.Unmarshal(raw, &o.displayName)
	case "desc":
		return json.Unmarshal(raw, &o.desc)
	case "url":
		return json.Unmarshal(raw, &o.url)
	case "website":
		if string(raw) == "null" {
			o.website = ""
			return nil
		}
		return json.Unmarshal(raw, &o.website)
	}
	return nil
}

// Name reads the organization's short name under the sync lock.
func (o *Organization) Name() string {
	return readField(&o.syncState, func() string { return o.name })
}

func (o *Organization) DisplayName(ctx context.Context) (string, error) {
	if err := o.client.ensure(ctx, o, "displayName"); err != nil {
		return "", err
	}
	return readField(&o.syncState, func() string { return o.displayName }), nil
}

func (o *Organization) Description(ctx context.Context) (string, error) {
	if err := o.client.ensure(ctx, o, "desc"); err != nil {
		return "", err
	}
	return readField(&o.syncState, func() string { return o.desc }), nil
}

func (o *Organization) Website(ctx context.Context) (string, error) {
	if err := o.client.ensure(ctx, o, "website"); err != nil {
		return "", err
	}
	return readField(&o.syncState, func() string { return o.website }), nil
}

// Boards fetches the organization's boards.
func (o *Organization) Boards(ctx context.Context) ([]*Board, error) {
	var docs []map[string]json.RawMessage
	if err := o.client.get(ctx, resourcePath(o)+"/boards", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Board](o.client, docs)
}

// Members fetches the organization's members.
func (o *Organization) Members(ctx context.Context) ([]*Member, error) {
	var docs []map[string]json.RawMessage
	if err := o.client.get(ctx, resourcePath(o)+"/members", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Member](o.client, docs)
}

// AddMember adds a member to the organization.
func (o *Organization) AddMember(ctx context.Context, m *Member) error {
	return o.client.do(ctx, http.MethodPut, resourcePath(o)+"/members/"+m.ID.String(), nil, nil, nil)
}

// RemoveMember removes a member from the organization.
func (o *Organization) RemoveMember(ctx context.Context, m *Member) error {
	return o.client.do(ctx, http.MethodDelete, resourcePath(o)+"/members/"+m.ID.String(), nil, nil, nil)
}

func (o *Organization) SetDisplayName(displayName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.displayName = displayName
	return o.setLocal("displayName", displayName)
}

func (o *Organization) SetDescription(desc string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.desc = desc
	return o.setLocal("desc", desc)
}

// Delete permanently deletes the organization and drops it from the
// identity cache.
func (o *Organization) Delete(ctx context.Context) error {
	if err := o.client.do(ctx, http.MethodDelete, resourcePath(o), nil, nil, nil); err != nil {
		return err
	}
	o.client.cache.remove(o.kind(), o.ID)
	return nil
}
