package plank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/plankhq/plank.go/pkg/connection"
	"github.com/plankhq/plank.go/pkg/connection/ws"
	"github.com/plankhq/plank.go/pkg/logger"
	"github.com/plankhq/plank.go/pkg/models"
)

// Client is the entry point to the service. It is safe for concurrent
// use. All clients built with New share the process-wide identity
// cache.
type Client struct {
	config *connection.Config
	conn   connection.Connection
	logger logger.Logger
	cache  *identityCache

	streamMu sync.Mutex
	stream   *ws.Connection
}

func New(config *connection.Config) *Client {
	log := config.Logger
	if log == nil {
		log = logger.New(nil)
	}
	return &Client{
		config: config,
		conn:   connection.NewHTTPConnection(config),
		logger: log,
		cache:  processCache,
	}
}

// FromURLString builds a Client for the endpoint at s, such as
// "https://api.plank.example", with the given API key and member token.
func FromURLString(s, key, token string) (*Client, error) {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint url %q: %w", s, err)
	}
	return New(connection.NewConfig(u, key, token)), nil
}

// FromEnv builds a Client from the PLANK_URL, PLANK_KEY and PLANK_TOKEN
// environment variables.
func FromEnv() (*Client, error) {
	return FromURLString(
		getEnvOrDefault("PLANK_URL", "https://api.plank.example"),
		getEnvOrDefault("PLANK_KEY", ""),
		getEnvOrDefault("PLANK_TOKEN", ""),
	)
}

// Connect verifies the endpoint is reachable. Calling it is optional;
// the first request fails with the same error otherwise.
func (c *Client) Connect(ctx context.Context) error {
	return c.conn.Connect(ctx)
}

func (c *Client) Close() error {
	c.streamMu.Lock()
	stream := c.stream
	c.stream = nil
	c.streamMu.Unlock()
	if stream != nil {
		if err := stream.Close(); err != nil {
			c.logger.Warn("closing event stream", "error", err.Error())
		}
	}
	return c.conn.Close()
}

// --------------------------------------------------
// Typed entry points
// --------------------------------------------------

func (c *Client) GetBoard(ctx context.Context, id models.ID) (*Board, error) {
	return getResource[Board](ctx, c, "boards", id)
}

func (c *Client) GetList(ctx context.Context, id models.ID) (*List, error) {
	return getResource[List](ctx, c, "lists", id)
}

func (c *Client) GetCard(ctx context.Context, id models.ID) (*Card, error) {
	return getResource[Card](ctx, c, "cards", id)
}

func (c *Client) GetOrganization(ctx context.Context, id models.ID) (*Organization, error) {
	return getResource[Organization](ctx, c, "organizations", id)
}

func (c *Client) GetLabel(ctx context.Context, id models.ID) (*Label, error) {
	return getResource[Label](ctx, c, "labels", id)
}

func (c *Client) GetChecklist(ctx context.Context, id models.ID) (*Checklist, error) {
	return getResource[Checklist](ctx, c, "checklists", id)
}

// GetMember fetches a member by ID or username. The special username
// "me" resolves to the member the token belongs to.
func (c *Client) GetMember(ctx context.Context, idOrUsername string) (*Member, error) {
	var doc map[string]json.RawMessage
	if err := c.get(ctx, "/1/members/"+idOrUsername, nil, &doc); err != nil {
		return nil, err
	}
	return canonical[Member](c, doc)
}

// Me fetches the member the token belongs to.
func (c *Client) Me(ctx context.Context) (*Member, error) {
	return c.GetMember(ctx, "me")
}

// Boards lists the boards visible to the current member.
func (c *Client) Boards(ctx context.Context) ([]*Board, error) {
	var docs []map[string]json.RawMessage
	if err := c.get(ctx, "/1/members/me/boards", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Board](c, docs)
}

// Organizations lists the organizations the current member belongs to.
func (c *Client) Organizations(ctx context.Context) ([]*Organization, error) {
	var docs []map[string]json.RawMessage
	if err := c.get(ctx, "/1/members/me/organizations", nil, &docs); err != nil {
		return nil, err
	}
	return canonicalList[Organization](c, docs)
}

// CreateBoard creates a board owned by the current member.
func (c *Client) CreateBoard(ctx context.Context, name string) (*Board, error) {
	var doc map[string]json.RawMessage
	body := map[string]any{"name": name}
	if err := c.do(ctx, http.MethodPost, "/1/boards", nil, body, &doc); err != nil {
		return nil, err
	}
	return canonical[Board](c, doc)
}

// SearchResult groups the matches of one search call by kind.
type SearchResult struct {
	Boards        []*Board
	Cards         []*Card
	Members       []*Member
	Organizations []*Organization
}

// Search runs a full-text search across boards, cards, members and
// organizations.
func (c *Client) Search(ctx context.Context, queryText string) (*SearchResult, error) {
	query := url.Values{}
	query.Set("query", queryText)

	var raw struct {
		Boards        []map[string]json.RawMessage `json:"boards"`
		Cards         []map[string]json.RawMessage `json:"cards"`
		Members       []map[string]json.RawMessage `json:"members"`
		Organizations []map[string]json.RawMessage `json:"organizations"`
	}
	if err := c.get(ctx, "/1/search", query, &raw); err != nil {
		return nil, err
	}

	result := &SearchResult{}
	var err error
	if result.Boards, err = canonicalList[Board](c, raw.Boards); err != nil {
		return nil, err
	}
	if result.Cards, err = canonicalList[Card](c, raw.Cards); err != nil {
		return nil, err
	}
	if result.Members, err = canonicalList[Member](c, raw.Members); err != nil {
		return nil, err
	}
	if result.Organizations, err = canonicalList[Organization](c, raw.Organizations); err != nil {
		return nil, err
	}
	return result, nil
}

// --------------------------------------------------
// Live sync
// --------------------------------------------------

// Sync subscribes r to the event stream and merges incoming deltas into
// it until stop is called or the stream ends. Fields with unflushed
// local modifications are not overwritten by deltas. stop may be called
// more than once.
func (c *Client) Sync(ctx context.Context, r Resource) (stop func(), err error) {
	stream, err := c.eventStream(ctx)
	if err != nil {
		return nil, err
	}

	events, err := stream.Subscribe(ctx, r.remoteID())
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case ev, open := <-events:
				if !open {
					return
				}
				if err := merge(r, ev.Delta, mergeEvent); err != nil {
					c.logger.Warn("event merge failed",
						"kind", r.kind(), "id", r.remoteID().String(), "error", err.Error())
				}
			}
		}
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			close(done)
			if err := stream.Unsubscribe(context.Background(), r.remoteID()); err != nil {
				c.logger.Warn("unsubscribe failed", "id", r.remoteID().String(), "error", err.Error())
			}
		})
	}
	return stop, nil
}

func (c *Client) eventStream(ctx context.Context) (*ws.Connection, error) {
	c.streamMu.Lock()
	defer c.streamMu.Unlock()
	if c.stream != nil && c.stream.State() == ws.StateConnected {
		return c.stream, nil
	}

	stream := ws.New(c.config)
	if err := stream.Connect(ctx); err != nil {
		return nil, err
	}
	c.stream = stream
	return stream, nil
}

// --------------------------------------------------
// Transport helpers
// --------------------------------------------------

func getResource[T any, PT interface {
	*T
	Resource
}](ctx context.Context, c *Client, kind string, id models.ID) (PT, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	var doc map[string]json.RawMessage
	if err := c.get(ctx, "/1/"+kind+"/"+id.String(), nil, &doc); err != nil {
		return nil, err
	}
	return canonical[T, PT](c, doc)
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dest any) error {
	return c.conn.Do(ctx, &connection.Request{Path: path, Query: query}, dest)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	return c.conn.Do(ctx, &connection.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	}, dest)
}
