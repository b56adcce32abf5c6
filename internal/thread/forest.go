// Package thread assembles flat, creation-ordered replies into nested trees.
// It does no I/O.
package thread

import (
	"chanboard/internal/models"
	"chanboard/internal/utils"
)

// BuildForest nests replies under their parents. Input must be ordered by
// creation time; roots and every children list keep that relative order.
//
// Malformed input (duplicate ids, a parent missing from the input, or a
// parent cycle) yields a validation error instead of a partial forest.
func BuildForest(replies []models.Reply) ([]*models.ReplyNode, error) {
	forest := make([]*models.ReplyNode, 0)
	if len(replies) == 0 {
		return forest, nil
	}

	// pass 1: index
	nodes := make(map[uint]*models.ReplyNode, len(replies))
	order := make([]*models.ReplyNode, len(replies))
	for i := range replies {
		r := replies[i]
		if _, dup := nodes[r.ID]; dup {
			return nil, utils.NewValidationError("duplicate reply id %d in thread", r.ID)
		}
		n := &models.ReplyNode{Reply: r, Replies: make([]*models.ReplyNode, 0)}
		nodes[r.ID] = n
		order[i] = n
	}

	// pass 2: link in input order
	for _, n := range order {
		if n.ParentID == nil {
			forest = append(forest, n)
			continue
		}
		parent, ok := nodes[*n.ParentID]
		if !ok {
			return nil, utils.NewValidationError("reply %d references missing parent %d", n.ID, *n.ParentID)
		}
		parent.Replies = append(parent.Replies, n)
	}

	// Nodes on a parent cycle are never reachable from a root.
	if reached := countReachable(forest); reached != len(replies) {
		return nil, utils.NewValidationError("thread contains a reply cycle (%d of %d replies reachable)", reached, len(replies))
	}

	return forest, nil
}

func countReachable(roots []*models.ReplyNode) int {
	visited := make(map[uint]struct{})
	stack := make([]*models.ReplyNode, 0, len(roots))
	stack = append(stack, roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[n.ID]; seen {
			continue
		}
		visited[n.ID] = struct{}{}
		stack = append(stack, n.Replies...)
	}
	return len(visited)
}

// Subtree returns rootID followed by every descendant of it found in replies,
// breadth first. The result is empty when rootID is not present.
func Subtree(replies []models.Reply, rootID uint) []uint {
	children := make(map[uint][]uint, len(replies))
	found := false
	for _, r := range replies {
		if r.ID == rootID {
			found = true
		}
		if r.ParentID != nil {
			children[*r.ParentID] = append(children[*r.ParentID], r.ID)
		}
	}
	if !found {
		return nil
	}

	visited := map[uint]struct{}{rootID: {}}
	ids := []uint{rootID}
	for i := 0; i < len(ids); i++ {
		for _, child := range children[ids[i]] {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			ids = append(ids, child)
		}
	}
	return ids
}

// Size counts every node in a forest.
func Size(forest []*models.ReplyNode) int {
	return countReachable(forest)
}
