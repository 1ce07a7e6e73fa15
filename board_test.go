package plank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plankhq/plank.go/pkg/models"
)

func TestBoardLists(t *testing.T) {
	c, fake := newTestClient(t)
	id := seedBoard(fake)
	fake.put("lists/5f0000000000000000000010", map[string]any{
		"id": "5f0000000000000000000010", "name": "To Do", "idBoard": id, "pos": 16384,
	})
	fake.put("lists/5f0000000000000000000011", map[string]any{
		"id": "5f0000000000000000000011", "name": "Done", "idBoard": id, "pos": 32768,
	})
	fake.addChild("boards/"+id+"/lists", "lists/5f0000000000000000000010")
	fake.addChild("boards/"+id+"/lists", "lists/5f0000000000000000000011")

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	lists, err := board.Lists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 2)
	require.Equal(t, "To Do", lists[0].Name())

	// lists resolve back to the canonical board
	viaList, err := lists[0].Board(context.Background())
	require.NoError(t, err)
	require.Same(t, board, viaList)

	pos, err := lists[0].Position(context.Background())
	require.NoError(t, err)
	require.Equal(t, float64(16384), pos.Value())
}

func TestBoardAddList(t *testing.T) {
	c, fake := newTestClient(t)
	seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	list, err := board.AddList(context.Background(), "Doing", models.Bottom())
	require.NoError(t, err)
	require.Equal(t, "Doing", list.Name())
	require.NoError(t, list.ID.Validate())

	lists, err := board.Lists(context.Background())
	require.NoError(t, err)
	require.Len(t, lists, 1)
	require.Same(t, list, lists[0])
}

func TestBoardAddLabelValidatesColor(t *testing.T) {
	c, fake := newTestClient(t)
	seedBoard(fake)

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	_, err = board.AddLabel(context.Background(), "bug", models.Color("magenta"))
	require.Error(t, err)

	label, err := board.AddLabel(context.Background(), "bug", models.Red)
	require.NoError(t, err)
	require.Equal(t, "bug", label.Name())
}

func TestBoardOrganization(t *testing.T) {
	c, fake := newTestClient(t)
	fake.put("organizations/5f0000000000000000000099", map[string]any{
		"id": "5f0000000000000000000099", "name": "acme", "displayName": "Acme Inc",
	})
	fake.put("boards/5f0000000000000000000001", map[string]any{
		"id":             "5f0000000000000000000001",
		"name":           "Welcome Board",
		"idOrganization": "5f0000000000000000000099",
	})

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	org, err := board.Organization(context.Background())
	require.NoError(t, err)
	require.Equal(t, "acme", org.Name())

	display, err := org.DisplayName(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Acme Inc", display)
}

func TestBoardWithoutOrganization(t *testing.T) {
	c, fake := newTestClient(t)
	fake.put("boards/5f0000000000000000000001", map[string]any{
		"id":             "5f0000000000000000000001",
		"name":           "Personal",
		"idOrganization": nil,
	})

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	org, err := board.Organization(context.Background())
	require.NoError(t, err)
	require.Nil(t, org)
}

func TestListArchiveFlush(t *testing.T) {
	c, fake := newTestClient(t)
	fake.put("lists/5f0000000000000000000010", map[string]any{
		"id": "5f0000000000000000000010", "name": "To Do", "closed": false,
	})

	list, err := c.GetList(context.Background(), "5f0000000000000000000010")
	require.NoError(t, err)
	require.NoError(t, list.Archive())
	require.NoError(t, Flush(context.Background(), list))

	require.Equal(t, true, fake.docs["lists/5f0000000000000000000010"]["closed"])
}
