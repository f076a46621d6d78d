package arena

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDisplaySkipsUnvisitedChildrenAndLabelsRoot(t *testing.T) {
	tree := NewCap(8)
	root := tree.Push()
	tree.MakeRoot(root)

	visited := tree.Push()
	unvisited := tree.Push()

	rootNode := tree.Node(root)
	rootNode.Visits = 5
	rootNode.Sum = 2.5
	rootNode.Actions = []Edge{
		{Move: 10, Policy: 0.6, Child: visited},
		{Move: 20, Policy: 0.4, Child: unvisited},
	}

	vn := tree.Node(visited)
	vn.Visits = 3
	vn.Sum = 1.5

	var buf bytes.Buffer
	require.NoError(t, tree.Display(&buf, root, 4))

	out := buf.String()
	require.Contains(t, out, "root")
	require.Contains(t, out, "N(5)")
	require.Contains(t, out, "N(3)")
	require.Equal(t, 2, strings.Count(out, "\n"), "one line per visited node: root + the one visited child, the zero-visit sibling skipped")
}

func TestDisplayOnEmptyTreeWritesNothing(t *testing.T) {
	tree := NewCap(4)
	var buf bytes.Buffer
	require.NoError(t, tree.Display(&buf, None, 4))
	require.Empty(t, buf.String())
}
