package graph

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	rootStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	nodeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	typeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	isolateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// RenderASCII draws one spanning tree per connected component. Links that
// close a cycle are shown once and marked "(see above)".
func RenderASCII(g *Graph) string {
	if g.Len() == 0 {
		return "No objects."
	}

	visited := make(map[int64]bool)
	var sb strings.Builder
	for i, comp := range g.Components() {
		if i > 0 {
			sb.WriteString("\n")
		}
		renderNode(&sb, g, comp[0], 0, "", true, visited)
	}
	return sb.String()
}

func renderNode(sb *strings.Builder, g *Graph, id, parent int64, prefix string, isLast bool, visited map[int64]bool) {
	o := g.nodes[id]
	if o == nil {
		return
	}

	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if prefix == "" && parent == 0 {
		connector = ""
	}

	style := nodeStyle
	if parent == 0 {
		style = rootStyle
		if len(g.Neighbors(id)) == 0 {
			style = isolateStyle
		}
	}
	label := style.Render(fmt.Sprintf("%d %s", o.ID, o.Name)) + " " + typeStyle.Render("["+o.Type+"]")

	if visited[id] {
		sb.WriteString(prefix + connector + label + " (see above)\n")
		return
	}
	visited[id] = true
	sb.WriteString(prefix + connector + label + "\n")

	var children []int64
	for _, n := range g.Neighbors(id) {
		if n != parent {
			children = append(children, n)
		}
	}

	childPrefix := prefix
	if parent == 0 {
		childPrefix = "    "
	} else if isLast {
		childPrefix += "    "
	} else {
		childPrefix += "│   "
	}

	for i, child := range children {
		renderNode(sb, g, child, id, childPrefix, i == len(children)-1, visited)
	}
}
