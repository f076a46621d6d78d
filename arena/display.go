package arena

import (
	"fmt"
	"io"
)

// Display writes a plain-text tree dump rooted at idx, descending at most
// depth levels, mirroring original_source/src/tree.rs's
// display/display_recurse box-drawing layout. A diagnostic dump, not part
// of the search hot path.
func (t *Tree) Display(w io.Writer, idx int32, depth int) error {
	if idx == None {
		return nil
	}
	bars := make([]bool, depth+1)
	for i := range bars {
		bars[i] = true
	}
	return t.displayRecurse(w, idx, depth, 0, bars, 0, 1.0)
}

func (t *Tree) displayRecurse(w io.Writer, idx int32, depthLeft, ply int, bars []bool, mov int32, policy float32) error {
	n := &t.nodes[idx]
	if depthLeft == 0 || n.Visits == 0 {
		return nil
	}

	label := "root"
	if ply > 0 {
		for _, bar := range bars[:ply-1] {
			if bar {
				fmt.Fprint(w, "│   ")
			} else {
				fmt.Fprint(w, "    ")
			}
		}
		if bars[ply-1] {
			fmt.Fprint(w, "├─> ")
		} else {
			fmt.Fprint(w, "└─> ")
		}
		label = fmt.Sprintf("%d", mov)
	}

	q := n.Q()
	if ply%2 == 0 {
		q = 1 - q
	}

	if _, err := fmt.Fprintf(w, "%s Q(%.2f%%) N(%d) P(%.2f%%) S(%s)\n", label, q*100, n.Visits, policy*100, n.State); err != nil {
		return err
	}

	type activeChild struct {
		ptr    int32
		mov    int32
		policy float32
	}
	var active []activeChild
	for i := range n.Actions {
		e := &n.Actions[i]
		if e.Child != None && t.nodes[e.Child].Visits > 0 {
			active = append(active, activeChild{e.Child, e.Move, e.Policy})
		}
	}

	end := len(active) - 1
	for i, a := range active {
		if i == end {
			bars[ply] = false
		}
		if err := t.displayRecurse(w, a.ptr, depthLeft-1, ply+1, bars, a.mov, a.policy); err != nil {
			return err
		}
		bars[ply] = true
	}
	return nil
}
