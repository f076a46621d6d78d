package arena

import "fmt"

// ttStub is a deliberately unused placeholder for a transposition table
// slot. spec.md §5/§9 Q4: the layout reserves room for one, but selection
// never reads it — implementing transposition is an explicit non-goal of
// this core.
type ttStub struct {
	capacity int
}

// Tree is the spec's "Arena": a fixed-capacity, pre-allocated pool of Nodes
// addressed by stable int32 indices, with an intrusive free list threaded
// through Node.fwdLink.
type Tree struct {
	nodes         []Node
	freeHead      int32
	root          int32
	used          int
	mark          Mark
	transposition ttStub
}

// nodeSize is used only to size the arena from a megabyte budget; it is a
// rough accounting figure, not meant to be exact down to the byte (the
// Actions slice header and its backing array dominate real usage).
const nodeSize = 96

// NewMB sizes the arena from a byte budget in megabytes, following the
// teacher's and monty's Tree::new_mb convention. There is no transposition
// table wired into selection here, so the whole budget goes to nodes; the
// unused ttStub is sized from the node capacity in NewCap.
func NewMB(mb int) *Tree {
	bytes := mb * 1024 * 1024
	cap := bytes / nodeSize
	if cap < 1 {
		cap = 1
	}
	return NewCap(cap)
}

// NewCap builds an arena with an exact node capacity.
func NewCap(capacity int) *Tree {
	t := &Tree{
		nodes:         make([]Node, capacity),
		root:          None,
		mark:          MarkVar1,
		transposition: ttStub{capacity: capacity / 8},
	}
	for i := 0; i < capacity-1; i++ {
		t.nodes[i].fwdLink = int32(i + 1)
	}
	if capacity > 0 {
		t.nodes[capacity-1].fwdLink = None
		t.freeHead = 0
	} else {
		t.freeHead = None
	}
	return t
}

// Cap returns the arena's total node capacity.
func (t *Tree) Cap() int { return len(t.nodes) }

// Len returns the number of nodes currently in use.
func (t *Tree) Len() int { return t.used }

// Remaining returns the number of free slots.
func (t *Tree) Remaining() int { return t.Cap() - t.used }

// IsEmpty reports whether the arena holds no nodes.
func (t *Tree) IsEmpty() bool { return t.used == 0 }

// Root returns the current root index, or None if there is none.
func (t *Tree) Root() int32 { return t.root }

// Node returns a pointer to the node at idx. Callers must only pass indices
// obtained from Push, Root, or an Edge.Child — passing a free or
// out-of-range index is a programming error (spec §7).
func (t *Tree) Node(idx int32) *Node {
	return &t.nodes[idx]
}

// Push allocates a fresh node from the free list, tagged with the arena's
// current generation mark, and returns its index. Returns None if the
// arena is full (spec §4.C: capacity exhaustion is not an error, the
// caller fails the iteration gracefully).
func (t *Tree) Push() int32 {
	if t.freeHead == None {
		return None
	}
	idx := t.freeHead
	n := &t.nodes[idx]
	t.freeHead = n.fwdLink
	n.reset()
	n.mark = t.mark
	t.used++
	return idx
}

// Delete returns a single node to the free list, zero-initialising it.
func (t *Tree) Delete(idx int32) {
	n := &t.nodes[idx]
	n.reset()
	n.fwdLink = t.freeHead
	t.freeHead = idx
	t.used--
	if t.used < 0 {
		panic("arena: delete underflow, used < 0")
	}
}

// DeleteSubtree recursively frees every node reachable from ptr whose mark
// equals badMark (spec §4.C). Used by Clear (badMark = the current root's
// own mark, freeing everything) and by TryReuse (badMark = the previous
// generation's mark, freeing everything except the kept subtree, whose
// mark was flipped first).
func (t *Tree) DeleteSubtree(ptr int32, badMark Mark) {
	if ptr == None {
		return
	}
	n := &t.nodes[ptr]
	if n.mark != badMark {
		return
	}
	for i := range n.Actions {
		t.DeleteSubtree(n.Actions[i].Child, badMark)
	}
	t.Delete(ptr)
}

// Clear frees the entire tree.
func (t *Tree) Clear() {
	if t.used == 0 {
		t.root = None
		return
	}
	root := t.root
	t.DeleteSubtree(root, t.nodes[root].mark)
	if t.used != 0 {
		panic(fmt.Sprintf("arena: clear left %d nodes allocated", t.used))
	}
	t.root = None
	t.mark = MarkEmpty
}

// MakeRoot installs node as the tree's root, adopting its mark as the
// tree's current generation and resetting its state to Ongoing (mirrors
// original_source/src/tree.rs::make_root_node).
func (t *Tree) MakeRoot(node int32) {
	t.root = node
	t.mark = t.nodes[node].mark
	t.nodes[node].State = State{Outcome: Ongoing}
}
