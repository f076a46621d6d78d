package arena

import "github.com/castling-labs/puct/game"

// TryReuse implements spec.md §4.E: locate, within the current tree, the
// node whose board matches newRoot, and make it the new root if found and
// non-leaf; otherwise clear the tree. prevRoot is the board the current
// tree's root was built from (nil if this is the very first search of a
// match, in which case the tree is simply cleared).
//
// Depth 2 is searched because exactly two plies separate the engine's prior
// root from its next root in alternating play: the opponent's reply, then
// the engine's own next move (grounded on
// original_source/src/tree.rs::try_use_subtree/recurse_find).
func (t *Tree) TryReuse(newRoot game.Capability, prevRoot game.Capability) {
	if t.IsEmpty() {
		return
	}
	if prevRoot == nil {
		t.Clear()
		return
	}

	found := t.recurseFind(t.root, prevRoot, newRoot, 2)
	if found == None || !t.hasChildren(found) {
		t.Clear()
		return
	}
	if found == t.root {
		return
	}

	oldRoot := t.root
	oldMark := t.nodes[oldRoot].mark
	t.markSubtree(found)
	t.MakeRoot(found)
	t.DeleteSubtree(oldRoot, oldMark)
}

func (t *Tree) hasChildren(ptr int32) bool {
	return len(t.nodes[ptr].Actions) > 0
}

// recurseFind walks the tree from start, replaying thisBoard forward by one
// edge move per level, looking for a position IsSame to board.
func (t *Tree) recurseFind(start int32, thisBoard, board game.Capability, depth uint8) int32 {
	if thisBoard.IsSame(board) {
		return start
	}
	if start == None || depth == 0 {
		return None
	}

	n := &t.nodes[start]
	for i := range n.Actions {
		childIdx := n.Actions[i].Child
		if childIdx == None {
			continue
		}
		childBoard := thisBoard.Clone()
		childBoard.MakeMove(game.Move(n.Actions[i].Move))

		if found := t.recurseFind(childIdx, childBoard, board, depth-1); found != None {
			return found
		}
	}
	return None
}

// markSubtree flips the mark of every node reachable from ptr to the
// opposite of ptr's current mark, so a subsequent DeleteSubtree(oldRoot,
// oldMark) frees everything except this subtree.
func (t *Tree) markSubtree(ptr int32) {
	if ptr == None {
		return
	}
	n := &t.nodes[ptr]
	n.mark = n.mark.Flip()
	for i := range n.Actions {
		t.markSubtree(n.Actions[i].Child)
	}
}
