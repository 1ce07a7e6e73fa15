package plank

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/plankhq/plank.go/pkg/models"
)

func TestIdentityCacheSamePointer(t *testing.T) {
	c, fake := newTestClient(t)
	fake.put("boards/5f0000000000000000000001", map[string]any{
		"id":   "5f0000000000000000000001",
		"name": "Welcome Board",
	})

	first, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	second, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestIdentityCacheAcrossPaths(t *testing.T) {
	c, fake := newTestClient(t)
	fake.put("boards/5f0000000000000000000001", map[string]any{
		"id":   "5f0000000000000000000001",
		"name": "Welcome Board",
	})
	fake.put("cards/5f0000000000000000000002", map[string]any{
		"id":      "5f0000000000000000000002",
		"name":    "A card",
		"idBoard": "5f0000000000000000000001",
	})

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)

	card, err := c.GetCard(context.Background(), "5f0000000000000000000002")
	require.NoError(t, err)
	viaCard, err := card.Board(context.Background())
	require.NoError(t, err)

	require.Same(t, board, viaCard)
}

func TestIdentityCacheMergesInsteadOfReplacing(t *testing.T) {
	c, fake := newTestClient(t)
	fake.put("boards/5f0000000000000000000001", map[string]any{
		"id":   "5f0000000000000000000001",
		"name": "Welcome Board",
		"desc": "original",
	})

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	desc, err := board.Description(context.Background())
	require.NoError(t, err)
	require.Equal(t, "original", desc)

	// a later fetch through another path must not reset loaded fields
	again, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.Same(t, board, again)
	desc, err = again.Description(context.Background())
	require.NoError(t, err)
	require.Equal(t, "original", desc)
}

func TestIdentityCacheConcurrentLookup(t *testing.T) {
	cache := newIdentityCache()
	id := models.ID("5f0000000000000000000001")

	var wg sync.WaitGroup
	results := make([]Resource, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.lookupOrCreate("boards", id, func() Resource {
				b := &Board{ID: id}
				b.attach(nil)
				return b
			})
		}(i)
	}
	wg.Wait()

	for _, r := range results[1:] {
		require.Same(t, results[0], r)
	}
	require.Equal(t, 1, cache.len())
}

func TestDeleteRemovesFromCache(t *testing.T) {
	c, fake := newTestClient(t)
	fake.put("boards/5f0000000000000000000001", map[string]any{
		"id":   "5f0000000000000000000001",
		"name": "Doomed",
	})

	board, err := c.GetBoard(context.Background(), "5f0000000000000000000001")
	require.NoError(t, err)
	require.NoError(t, board.Delete(context.Background()))
	require.Equal(t, 0, c.cache.len())
}
