package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hasteapp/hastecore/pkg/types"
)

const previewWidth = 64

var (
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(6)
	kindStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Width(7)
	pinStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	timeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	sourceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// printItems renders one line per item: id, kind, pin marker, preview,
// source app and timestamp.
func printItems(items []*types.Item) {
	if len(items) == 0 {
		fmt.Println("no items")
		return
	}
	for _, item := range items {
		pin := "  "
		if item.Pinned {
			pin = pinStyle.Render("* ")
		}
		line := idStyle.Render(fmt.Sprintf("%d", item.ID)) +
			kindStyle.Render(string(item.Kind)) +
			pin +
			preview(item.ContentRef)
		if item.SourceApp != "" {
			line += "  " + sourceStyle.Render(item.SourceApp)
		}
		line += "  " + timeStyle.Render(formatTime(item.CreatedAt))
		fmt.Println(line)
	}
}

// preview collapses newlines and truncates content for single-line display.
func preview(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	runes := []rune(flat)
	if len(runes) > previewWidth {
		return string(runes[:previewWidth-1]) + "…"
	}
	return flat
}

func formatTime(millis int64) string {
	return time.UnixMilli(millis).Local().Format("2006-01-02 15:04")
}
