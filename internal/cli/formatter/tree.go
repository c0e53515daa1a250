package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single task line in a tree display.
type TreeItem struct {
	ID      int64
	Title   string
	Level   int
	IsLast  bool
	Closed  bool
	Deleted bool
	Detail  string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders items in depth-first order as an indented tree using
// box-drawing connectors. Closed tasks are dimmed, deleted tasks struck
// through, and detail badges are right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}

	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// open[l] reports whether the branch at level l continues below the
	// current line, which decides between a pipe and a blank.
	var open []bool
	for idx, item := range items {
		for len(open) <= item.Level {
			open = append(open, false)
		}
		var prefix strings.Builder
		if item.Level > 0 {
			for l := 1; l < item.Level; l++ {
				if open[l] {
					prefix.WriteString(treePipe)
				} else {
					prefix.WriteString(treeBlank)
				}
			}
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}
		open[item.Level] = !item.IsLast

		title := StyleDim.Render(fmt.Sprintf("#%d ", item.ID)) + item.Title
		switch {
		case item.Deleted:
			title = StyleRed.Strikethrough(true).Render(fmt.Sprintf("#%d %s", item.ID, item.Title))
		case item.Closed:
			title = Dim(fmt.Sprintf("#%d %s", item.ID, item.Title))
		}

		content := prefix.String() + title
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}
	return b.String()
}
