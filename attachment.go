package plank

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/plankhq/plank.go/pkg/models"
)

// Attachment is a file or URL attached to a card.
type Attachment struct {
	syncState

	ID models.ID

	name     string
	idCard   models.ID
	url      string
	bytes    int64
	date     models.Date
	mimeType string
	isUpload bool
}

func (a *Attachment) kind() string             { return "attachments" }
func (a *Attachment) remoteID() models.ID      { return a.ID }
func (a *Attachment) setRemoteID(id models.ID) { a.ID = id }

func (a *Attachment) applyField(name string, raw json.RawMessage) error {
	switch name {
	case "id":
		if a.ID != "" {
			return nil
		}
		return json.Unmarshal(raw, &a.ID)
	case "name":
		return json.Unmarshal(raw, &a.name)
	case "idCard":
		return json.Unmarshal(raw, &a.idCard)
	case "url":
		return json.Unmarshal(raw, &a.url)
	case "bytes":
		if string(raw) == "null" {
			a.bytes = 0
			return nil
		}
		return json.Unmarshal(raw, &a.bytes)
	case "date":
		return json.Unmarshal(raw, &a.date)
	case "mimeType":
		return json.Unmarshal(raw, &a.mimeType)
	case "isUpload":
		return json.Unmarshal(raw, &a.isUpload)
	}
	return nil
}

// Name reads the attachment's display name under the sync lock.
func (a *Attachment) Name() string {
	return readField(&a.syncState, func() string { return a.name })
}

func (a *Attachment) URL(ctx context.Context) (string, error) {
	if err := a.client.ensure(ctx, a, "url"); err != nil {
		return "", err
	}
	return readField(&a.syncState, func() string { return a.url }), nil
}

// Bytes returns the attachment size. Zero for URL attachments, which
// are not stored by the service.
func (a *Attachment) Bytes(ctx context.Context) (int64, error) {
	if err := a.client.ensure(ctx, a, "bytes"); err != nil {
		return 0, err
	}
	return readField(&a.syncState, func() int64 { return a.bytes }), nil
}

func (a *Attachment) Date(ctx context.Context) (models.Date, error) {
	if err := a.client.ensure(ctx, a, "date"); err != nil {
		return models.Date{}, err
	}
	return readField(&a.syncState, func() models.Date { return a.date }), nil
}

func (a *Attachment) MimeType(ctx context.Context) (string, error) {
	if err := a.client.ensure(ctx, a, "mimeType"); err != nil {
		return "", err
	}
	return readField(&a.syncState, func() string { return a.mimeType }), nil
}

// Card resolves the card the attachment belongs to.
func (a *Attachment) Card(ctx context.Context) (*Card, error) {
	if err := a.client.ensure(ctx, a, "idCard"); err != nil {
		return nil, err
	}
	idCard := readField(&a.syncState, func() models.ID { return a.idCard })
	return a.client.GetCard(ctx, idCard)
}

// Delete removes the attachment from its card and drops it from the
// identity cache.
func (a *Attachment) Delete(ctx context.Context) error {
	if err := a.client.ensure(ctx, a, "idCard"); err != nil {
		return err
	}
	idCard := readField(&a.syncState, func() models.ID { return a.idCard })
	path := "/1/cards/" + idCard.String() + "/attachments/" + a.ID.String()
	if err := a.client.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return err
	}
	a.client.cache.remove(a.kind(), a.ID)
	return nil
}
