package thread

import (
	"testing"
	"time"

	"chanboard/internal/models"
	"chanboard/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func reply(id uint, parent uint, t int) models.Reply {
	r := models.Reply{ID: id, PostID: 1, Content: "r", CreatedAt: base.Add(time.Duration(t) * time.Second)}
	if parent != 0 {
		p := parent
		r.ParentID = &p
	}
	return r
}

func ids(nodes []*models.ReplyNode) []uint {
	out := make([]uint, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestBuildForestNestsByParent(t *testing.T) {
	// A(t=1), B(parent=A,t=2), C(t=3), D(parent=B,t=4)
	flat := []models.Reply{reply(1, 0, 1), reply(2, 1, 2), reply(3, 0, 3), reply(4, 2, 4)}

	forest, err := BuildForest(flat)
	require.NoError(t, err)

	assert.Equal(t, []uint{1, 3}, ids(forest))
	a, c := forest[0], forest[1]
	assert.Equal(t, []uint{2}, ids(a.Replies))
	assert.Equal(t, []uint{4}, ids(a.Replies[0].Replies))
	assert.Empty(t, a.Replies[0].Replies[0].Replies)
	assert.NotNil(t, c.Replies)
	assert.Empty(t, c.Replies)
	assert.Equal(t, 4, Size(forest))
}

func TestBuildForestKeepsInputOrderForSiblings(t *testing.T) {
	flat := []models.Reply{
		reply(10, 0, 1),
		reply(11, 10, 2),
		reply(12, 0, 3),
		reply(13, 10, 4),
		reply(14, 10, 4), // same timestamp, later in input
		reply(15, 12, 5),
	}

	forest, err := BuildForest(flat)
	require.NoError(t, err)

	assert.Equal(t, []uint{10, 12}, ids(forest))
	assert.Equal(t, []uint{11, 13, 14}, ids(forest[0].Replies))
	assert.Equal(t, []uint{15}, ids(forest[1].Replies))
}

func TestBuildForestParentAfterChildInInput(t *testing.T) {
	// a clock skew can put a child before its parent; linking still works
	flat := []models.Reply{reply(2, 1, 1), reply(1, 0, 2)}

	forest, err := BuildForest(flat)
	require.NoError(t, err)
	assert.Equal(t, []uint{1}, ids(forest))
	assert.Equal(t, []uint{2}, ids(forest[0].Replies))
}

func TestBuildForestEmpty(t *testing.T) {
	forest, err := BuildForest(nil)
	require.NoError(t, err)
	assert.NotNil(t, forest)
	assert.Len(t, forest, 0)
}

func TestBuildForestRejectsMalformedInput(t *testing.T) {
	cases := map[string][]models.Reply{
		"self parent":    {reply(1, 1, 1)},
		"two node cycle": {reply(1, 0, 1), reply(2, 3, 2), reply(3, 2, 3)},
		"missing parent": {reply(1, 0, 1), reply(2, 99, 2)},
		"duplicate id":   {reply(1, 0, 1), reply(1, 0, 2)},
	}

	for name, flat := range cases {
		t.Run(name, func(t *testing.T) {
			done := make(chan struct{})
			var err error
			go func() {
				defer close(done)
				_, err = BuildForest(flat)
			}()

			select {
			case <-done:
			case <-time.After(2 * time.Second):
				t.Fatal("BuildForest did not terminate")
			}
			require.Error(t, err)
			assert.True(t, utils.IsErrorCode(err, utils.ErrValidation))
		})
	}
}

func TestBuildForestDeepChain(t *testing.T) {
	const depth = 50000
	flat := make([]models.Reply, 0, depth)
	flat = append(flat, reply(1, 0, 0))
	for i := uint(2); i <= depth; i++ {
		flat = append(flat, reply(i, i-1, int(i)))
	}

	forest, err := BuildForest(flat)
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Equal(t, depth, Size(forest))
}

func TestSubtree(t *testing.T) {
	flat := []models.Reply{
		reply(1, 0, 1),
		reply(2, 1, 2),
		reply(3, 0, 3),
		reply(4, 2, 4),
		reply(5, 1, 5),
		reply(6, 3, 6),
	}

	assert.Equal(t, []uint{1, 2, 5, 4}, Subtree(flat, 1))
	assert.Equal(t, []uint{3, 6}, Subtree(flat, 3))
	assert.Equal(t, []uint{4}, Subtree(flat, 4))
	assert.Nil(t, Subtree(flat, 42))
}

func TestSubtreeTerminatesOnCycle(t *testing.T) {
	flat := []models.Reply{reply(1, 2, 1), reply(2, 1, 2)}
	assert.ElementsMatch(t, []uint{1, 2}, Subtree(flat, 1))
}
