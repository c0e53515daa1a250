package formatter

import (
	"regexp"
	"strings"
	"testing"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansiRe = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}

func TestRenderTree_Connectors(t *testing.T) {
	out := stripANSI(RenderTree([]TreeItem{
		{ID: 1, Title: "Root", Level: 0, IsLast: true},
		{ID: 2, Title: "Development", Level: 1},
		{ID: 4, Title: "Backend", Level: 2, IsLast: true, Detail: "2h"},
		{ID: 3, Title: "Operations", Level: 1, IsLast: true, Closed: true},
	}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "#1 Root", strings.TrimSpace(lines[0]))
	assert.True(t, strings.HasPrefix(lines[1], "├─ #2 Development"))
	assert.True(t, strings.HasPrefix(lines[2], "│  └─ #4 Backend"))
	assert.Contains(t, lines[2], "[ 2h ]")
	assert.True(t, strings.HasPrefix(lines[3], "└─ #3 Operations"))
}

func TestRenderTree_Empty(t *testing.T) {
	assert.Equal(t, "", RenderTree(nil))
}

func TestRenderTable_RightAligned(t *testing.T) {
	out := stripANSI(RenderTable([]string{"NAME", "N"}, [][]string{{"a", "5"}, {"bb", "10"}}, 1))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "a      5", lines[2])
	assert.Equal(t, "bb    10", lines[3])
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "0m", FormatMinutes(0))
	assert.Equal(t, "45m", FormatMinutes(45))
	assert.Equal(t, "2h", FormatMinutes(120))
	assert.Equal(t, "1h 30m", FormatMinutes(90))
}

func TestFormatPersonDays(t *testing.T) {
	assert.Equal(t, "--", stripANSI(FormatPersonDays(decimal.NullDecimal{})))
	assert.Equal(t, "12.5 PD", FormatPersonDays(decimal.NewNullDecimal(decimal.RequireFromString("12.50"))))
}

func TestFormatAccessRules(t *testing.T) {
	rule := &domain.GroupTaskAccess{GroupID: 7, Recursive: true}
	rule.SetEntry(domain.AccessEntry{Type: domain.AccessTasks, Select: true, Update: true})
	out := stripANSI(FormatAccessRules([]*domain.GroupTaskAccess{rule}))
	assert.Contains(t, out, "TASKS")
	assert.Contains(t, out, "s-u-")
	assert.Contains(t, out, "true")
}

func TestFormatNode(t *testing.T) {
	maxHours := 40
	out := stripANSI(FormatNode(NodeDetail{
		Task: &domain.Task{
			ID: 4, Title: "Backend", Status: domain.TaskOpened,
			BookingStatus: domain.BookingOpened, MaxHours: &maxHours,
		},
		Path:       []string{"Development", "Backend"},
		Bookable:   true,
		Minutes:    90,
		PersonDays: decimal.NewNullDecimal(decimal.NewFromInt(5)),
	}))
	assert.Contains(t, out, "BACKEND")
	assert.Contains(t, out, "Development › Backend")
	assert.Contains(t, out, "1h 30m")
	assert.Contains(t, out, "5 PD")
	assert.Contains(t, out, "bookable")
}
