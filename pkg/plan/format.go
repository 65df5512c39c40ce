package plan

import (
	"strings"
)

// FormatPlan renders the plan tree, one node per line, children indented
// under their parent.
func FormatPlan(n Node) string {
	var sb strings.Builder
	formatNode(n, 0, &sb)
	return sb.String()
}

func formatNode(n Node, depth int, sb *strings.Builder) {
	if depth > 0 {
		sb.WriteString(strings.Repeat("   ", depth-1))
		sb.WriteString("-> ")
	}
	sb.WriteString(n.Explain())
	sb.WriteString("\n")
	for _, child := range n.Children() {
		formatNode(child, depth+1, sb)
	}
}
