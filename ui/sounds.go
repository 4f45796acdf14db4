package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lixenwraith/focus-alarm/audio"
)

var (
	listName     = lipgloss.NewStyle().Bold(true).Width(14)
	listSelected = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10")).Width(14)
	listDuration = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(8).Align(lipgloss.Right)
	listDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("7")).PaddingLeft(2)
)

// SoundList renders the catalog as an aligned table; selected is marked
func SoundList(cat *audio.Catalog, selected string) string {
	var sb strings.Builder
	for _, r := range cat.Recipes() {
		marker, name := "  ", listName
		if r.Name == selected {
			marker, name = "* ", listSelected
		}
		dur := fmt.Sprintf("%dms", r.Duration().Milliseconds())
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			marker,
			name.Render(r.Name),
			listDuration.Render(dur),
			listDesc.Render(r.Description),
		))
		sb.WriteByte('\n')
	}
	return sb.String()
}
