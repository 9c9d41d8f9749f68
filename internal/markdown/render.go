package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	matchStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
)

func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return "", fmt.Errorf("creating renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return out, nil
}

func RenderField(label, value string) string {
	return labelStyle.Render(label+":") + " " + value
}

func RenderEntityHeader(title string, fields []string) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title))
	sb.WriteString("\n")
	for _, f := range fields {
		sb.WriteString("  " + f + "\n")
	}
	return sb.String()
}

// Highlight styles every case-insensitive occurrence of query in s.
func Highlight(s, query string) string {
	if query == "" {
		return s
	}
	lower, q := strings.ToLower(s), strings.ToLower(query)
	if len(lower) != len(s) {
		// Case folding changed byte offsets; fall back to plain text.
		return s
	}
	var sb strings.Builder
	for {
		idx := strings.Index(lower, q)
		if idx < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:idx])
		sb.WriteString(matchStyle.Render(s[idx : idx+len(q)]))
		s, lower = s[idx+len(q):], lower[idx+len(q):]
	}
}
