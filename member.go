package plank

import (
	"context"
	"encoding/json"

	"github.com/plankhq/plank.go/pkg/models"
)

// Member is a person with an account on the service.
type Member struct {
	syncState

	ID models.ID

	username  string
	fullName  string
	initials  string
	bio       string
	url       string
	avatarURL string
}

func (m *Member) kind() string             { return "members" }
func (m *Member) remoteID() models.ID      { return m.ID }
func (m *Member) setRemoteID(id models.ID) { m.ID = id }

func (m *Member) applyField(name string, raw json.RawMessage) error {
	switch name {
	case "id":
		if m.ID != "" {
			return nil
		}
		return json.Unmarshal(raw, &m.ID)
	case "username":
		return json.Unmarshal(raw, &m.username)
	case "fullName":
		return json.Unmarshal(raw, &m.fullName)
	case "initials":
		return json.Unmarshal(raw, &m.initials)
	case "bio":
		return json.Unmarshal(raw, &m.bio)
	case "url":
		return json.Unmarshal(raw, &m.url)
	case "avatarUrl":
		if string(raw) == "null" {
			m.avatarURL = ""
			return nil
		}
		return json.Unmarshal(raw, &m.avatarURL)
	}
	return nil
}

// Username reads the member's handle under the sync lock.
func (m *Member) Username() string {
	return readField(&m.syncState, func() string { return m.username })
}

func (m *Member) FullName(ctx context.Context) (string, error) {
	if err := m.client.ensure(ctx, m, "fullName"); err != nil {
		return "", err
	}
	return readField(&m.syncState, func() string { return m.fullName }), nil
}

func (m *Member) Initials(ctx context.Context) (string, error) {
	if err := m.client.ensure(ctx, m, "initials"); err != nil {
		return "", err
	}
	return readField(&m.syncState, func() string { return m.initials }), nil
}

func (m *Member) Bio(ctx context.Context) (string, error) {
	if err := m.client.ensure(ctx, m, "bio"); err != nil {
		return "", err
	}
	return readField(&m.syncState, func() string { return m.bio }), nil
}

func (m *Member) AvatarURL(ctx context.Context) (string, error) {
	if err := m.client.ensure(ctx, m, "avatarUrl"); err != nil {
		return "", err
	}
	return readField(&m.syncState, func() string { return m.avatarURL }), nil
}

// Boards fetches the boards the member can see.
func (m *Member) Boards(ctx context.Context) ([]*Board, error) {
	var docs []map[string]json.RawMessage
	if err := m.client.get(ctx, resourcePath(m)+"/boards", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Board](m.client, docs)
}

// Cards fetches the cards assigned to the member.
func (m *Member) Cards(ctx context.Context) ([]*Card, error) {
	var docs []map[string]json.RawMessage
	if err := m.client.get(ctx, resourcePath(m)+"/cards", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Card](m.client, docs)
}

func (m *Member) SetFullName(fullName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fullName = fullName
	return m.setLocal("fullName", fullName)
}

func (m *Member) SetBio(bio string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bio = bio
	return m.setLocal("bio", bio)
}
