package arena

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
)

// DOT renders the subtree rooted at ptr (down to maxDepth edges) as a
// Graphviz digraph: one node per arena slot, labelled with its Q/visits/
// state, one edge per materialised Edge, labelled with its move and prior.
// A diagnostic dump, not part of the search hot path.
func (t *Tree) DOT(ptr int32, maxDepth int) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("tree"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	if ptr == None {
		return g.String(), nil
	}
	if err := t.dotRecurse(g, ptr, maxDepth); err != nil {
		return "", err
	}
	return g.String(), nil
}

func (t *Tree) dotRecurse(g *gographviz.Graph, ptr int32, depthLeft int) error {
	n := &t.nodes[ptr]
	name := fmt.Sprintf("n%d", ptr)
	label := fmt.Sprintf("\"Q=%.3f N=%d %s\"", n.Q(), n.Visits, n.State)
	if err := g.AddNode("tree", name, map[string]string{"label": label}); err != nil {
		return err
	}
	if depthLeft == 0 {
		return nil
	}
	for i := range n.Actions {
		e := &n.Actions[i]
		if e.Child == None {
			continue
		}
		if err := t.dotRecurse(g, e.Child, depthLeft-1); err != nil {
			return err
		}
		childName := fmt.Sprintf("n%d", e.Child)
		edgeLabel := fmt.Sprintf("\"mov=%d p=%.3f\"", e.Move, e.Policy)
		if err := g.AddEdge(name, childName, true, map[string]string{"label": edgeLabel}); err != nil {
			return err
		}
	}
	return nil
}
