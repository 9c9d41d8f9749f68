package markdown

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rogersnm/linkbook/internal/model"
)

var (
	headerRowStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	cellStyle      = lipgloss.NewStyle()
)

const maxDescription = 48

func RenderObjectTable(objects []model.ManagedObject) string {
	if len(objects) == 0 {
		return "No objects found."
	}
	rows := make([][]string, len(objects))
	for i, o := range objects {
		rows[i] = []string{
			strconv.FormatInt(o.ID, 10),
			o.Name,
			o.Type,
			truncate(o.Description, maxDescription),
			strconv.Itoa(len(o.RelatedObjectIDs)),
		}
	}
	return renderTable([]string{"ID", "Name", "Type", "Description", "Links"}, rows)
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8"))).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerRowStyle
			}
			return cellStyle
		})
	return t.Render()
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
