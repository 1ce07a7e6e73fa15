package plank

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/plankhq/plank.go/pkg/models"
)

// Webhook asks the service to POST change notifications for one model
// to a callback URL. The verification token is generated client-side at
// creation time; the service echoes it in every delivery so the
// receiver can authenticate the caller.
type Webhook struct {
	syncState

	ID models.ID

	description       string
	callbackURL       string
	idModel           models.ID
	active            bool
	verificationToken string
}

func (w *Webhook) kind() string             { return "webhooks" }
func (w *Webhook) remoteID() models.ID      { return w.ID }
func (w *Webhook) setRemoteID(id models.ID) { w.ID = id }

func (w *Webhook) applyField(name string, raw json.RawMessage) error {
	switch name {
	case "id":
		if w.ID != "" {
			return nil
		}
		return json.Unmarshal(raw, &w.ID)
	case "description":
		return json.Unmarshal(raw, &w.description)
	case "callbackURL":
		return json.Unmarshal(raw, &w.callbackURL)
	case "idModel":
		return json.Unmarshal(raw, &w.idModel)
	case "active":
		return json.Unmarshal(raw, &w.active)
	case "verificationToken":
		return json.Unmarshal(raw, &w.verificationToken)
	}
	return nil
}

func (w *Webhook) CallbackURL(ctx context.Context) (string, error) {
	if err := w.client.ensure(ctx, w, "callbackURL"); err != nil {
		return "", err
	}
	return readField(&w.syncState, func() string { return w.callbackURL }), nil
}

func (w *Webhook) Active(ctx context.Context) (bool, error) {
	if err := w.client.ensure(ctx, w, "active"); err != nil {
		return false, err
	}
	return readField(&w.syncState, func() bool { return w.active }), nil
}

// VerificationToken returns the token deliveries are signed with.
func (w *Webhook) VerificationToken(ctx context.Context) (string, error) {
	if err := w.client.ensure(ctx, w, "verificationToken"); err != nil {
		return "", err
	}
	return readField(&w.syncState, func() string { return w.verificationToken }), nil
}

func (w *Webhook) SetDescription(desc string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.description = desc
	return w.setLocal("description", desc)
}

func (w *Webhook) SetActive(active bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.active = active
	return w.setLocal("active", active)
}

// Delete removes the webhook and drops it from the identity cache.
func (w *Webhook) Delete(ctx context.Context) error {
	if err := w.client.do(ctx, http.MethodDelete, resourcePath(w), nil, nil, nil); err != nil {
		return err
	}
	w.client.cache.remove(w.kind(), w.ID)
	return nil
}

// CreateWebhook registers a webhook for changes to the given model.
func (c *Client) CreateWebhook(ctx context.Context, description, callbackURL string, model Resource) (*Webhook, error) {
	body := map[string]any{
		"description":       description,
		"callbackURL":       callbackURL,
		"idModel":           model.remoteID(),
		"verificationToken": uuid.NewString(),
	}
	var doc map[string]json.RawMessage
	if err := c.do(ctx, http.MethodPost, "/1/webhooks", nil, body, &doc); err != nil {
		return nil, err
	}
	return canonical[Webhook](c, doc)
}

// Webhooks lists the webhooks registered by the current token.
func (c *Client) Webhooks(ctx context.Context) ([]*Webhook, error) {
	var docs []map[string]json.RawMessage
	if err := c.get(ctx, "/1/webhooks", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Webhook](c, docs)
}
