package plank

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plankhq/plank.go/pkg/models"
)

func seedBoard(fake *fakeService) string {
	fake.put("boards/5f0000000000000000000001", map[string]any{
		"id":     "5f0000000000000000000001",
		"name":   "Welcome Board",
		"desc":   "remote description",
		"closed": false,
		"url":    "https://plank.example/b/abc",
	})
	return "5f0000000000000000000001"
}

func TestLazyFieldFetchedOnce(t *testing.T) {
	c, fake := newTestClient(t)
	id := seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	hitsAfterGet := fake.hitCount("GET", "/1/boards/"+id)

	for i := 0; i < 3; i++ {
		desc, err := board.Description(context.Background())
		require.NoError(t, err)
		require.Equal(t, "remote description", desc)
	}

	// the full GetBoard fetch already loaded desc, so the lazy getter
	// issued no further requests
	require.Equal(t, hitsAfterGet, fake.hitCount("GET", "/1/boards/"+id))
}

func TestLazyFieldPartialFetch(t *testing.T) {
	c, fake := newTestClient(t)
	id := seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.Equal(t, 1, fake.hitCount("GET", "/1/boards/"+id))

	// "starred" was absent from the first fetch, so accessing it
	// triggers exactly one partial field GET
	fake.put("boards/"+id, map[string]any{
		"id":      id,
		"name":    "Welcome Board",
		"desc":    "remote description",
		"starred": true,
	})

	starred, err := board.Starred(context.Background())
	require.NoError(t, err)
	require.True(t, starred)
	require.Equal(t, 2, fake.hitCount("GET", "/1/boards/"+id))

	// second access is served from the local copy
	_, err = board.Starred(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, fake.hitCount("GET", "/1/boards/"+id))

	// and the partial fetch did not clobber fields loaded earlier
	desc, err := board.Description(context.Background())
	require.NoError(t, err)
	require.Equal(t, "remote description", desc)
}

func TestPartialMergeDoesNotClobber(t *testing.T) {
	c, fake := newTestClient(t)
	seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	// a partial document carrying only "closed" must leave other
	// fields untouched
	require.NoError(t, merge(board, map[string]json.RawMessage{
		"closed": json.RawMessage(`true`),
	}, mergePartial))

	require.Equal(t, "Welcome Board", board.Name())
	desc, err := board.Description(context.Background())
	require.NoError(t, err)
	require.Equal(t, "remote description", desc)
	closed, err := board.Closed(context.Background())
	require.NoError(t, err)
	require.True(t, closed)
}

func TestFlushSendsOnlyDirtyFields(t *testing.T) {
	c, fake := newTestClient(t)
	id := seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.NoError(t, board.SetDescription("local description"))

	require.NoError(t, Flush(context.Background(), board))
	require.Equal(t, 1, fake.hitCount("PUT", "/1/boards/"+id))

	// the service-side document now carries the new desc but kept its
	// other fields
	require.Equal(t, "local description", fake.docs["boards/"+id]["desc"])
	require.Equal(t, "Welcome Board", fake.docs["boards/"+id]["name"])

	// flushed state is clean: another Flush is a no-op
	require.NoError(t, Flush(context.Background(), board))
	require.Equal(t, 1, fake.hitCount("PUT", "/1/boards/"+id))
}

func TestFlushWithoutChangesIsNoOp(t *testing.T) {
	c, fake := newTestClient(t)
	id := seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.NoError(t, Flush(context.Background(), board))
	require.Equal(t, 0, fake.hitCount("PUT", "/1/boards/"+id))
}

func TestRefreshDiscardsLocalModifications(t *testing.T) {
	c, fake := newTestClient(t)
	seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.NoError(t, board.SetDescription("local description"))

	require.NoError(t, Refresh(context.Background(), board))
	desc, err := board.Description(context.Background())
	require.NoError(t, err)
	require.Equal(t, "remote description", desc)

	// nothing left to flush after the refresh
	require.NoError(t, Flush(context.Background(), board))
	require.Equal(t, 0, fake.hitCount("PUT", "/1/boards/5f0000000000000000000001"))
}

func TestEventMergeRespectsDirtyFields(t *testing.T) {
	c, fake := newTestClient(t)
	seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.NoError(t, board.SetDescription("local description"))

	delta := map[string]json.RawMessage{
		"desc": json.RawMessage(`"event description"`),
		"name": json.RawMessage(`"event name"`),
	}
	require.NoError(t, merge(board, delta, mergeEvent))

	// the clean field moved with the event, the dirty one did not
	require.Equal(t, "event name", board.Name())
	desc, err := board.Description(context.Background())
	require.NoError(t, err)
	require.Equal(t, "local description", desc)
}

func TestRefetchKeepsDirtyFields(t *testing.T) {
	c, fake := newTestClient(t)
	id := seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.NoError(t, board.SetDescription("local description"))

	// fetching the board again resolves to the same object; the server
	// copy of desc must not overwrite the unflushed local value
	again, err := c.GetBoard(context.Background(), models.ID(id))
	require.NoError(t, err)
	require.Same(t, board, again)

	desc, err := board.Description(context.Background())
	require.NoError(t, err)
	require.Equal(t, "local description", desc)

	// what the object reports is what the next Flush persists
	require.NoError(t, Flush(context.Background(), board))
	require.Equal(t, "local description", fake.docs["boards/"+id]["desc"])
}

func TestFlushKeepsModificationsMadeWhileInFlight(t *testing.T) {
	c, fake := newTestClient(t)
	id := seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.NoError(t, board.SetDescription("local description"))

	// rename the board while the PUT for desc is still held open
	fake.setBeforeReply(func(method, _ string) {
		if method == http.MethodPut {
			fake.setBeforeReply(nil)
			_ = board.SetName("renamed meanwhile")
		}
	})
	require.NoError(t, Flush(context.Background(), board))

	// the in-flight rename survived the flush and is still pending
	require.Equal(t, "renamed meanwhile", board.Name())
	require.NoError(t, Flush(context.Background(), board))
	require.Equal(t, "renamed meanwhile", fake.docs["boards/"+id]["name"])
	require.Equal(t, 2, fake.hitCount("PUT", "/1/boards/"+id))
}

func TestEnsureTrustsAbsentFieldZeroValue(t *testing.T) {
	c, fake := newTestClient(t)
	id := "5f0000000000000000000001"
	// document without a desc at all: the service omits unset fields
	fake.put("boards/"+id, map[string]any{"id": id, "name": "Bare"})

	board, err := c.GetBoard(context.Background(), models.ID(id))
	require.NoError(t, err)

	desc, err := board.Description(context.Background())
	require.NoError(t, err)
	require.Equal(t, "", desc)
	hits := fake.hitCount("GET", "/1/boards/"+id)

	_, err = board.Description(context.Background())
	require.NoError(t, err)
	require.Equal(t, hits, fake.hitCount("GET", "/1/boards/"+id))
}

func TestMergeRejectsMalformedField(t *testing.T) {
	c, fake := newTestClient(t)
	seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	err = merge(board, map[string]json.RawMessage{
		"closed": json.RawMessage(`"not-a-bool"`),
	}, mergePartial)

	var fieldErr *FieldError
	require.ErrorAs(t, err, &fieldErr)
	require.Equal(t, "closed", fieldErr.Field)
	require.Equal(t, "boards", fieldErr.Kind)
}
