package formatter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/tasktree/internal/domain"
	"github.com/shopspring/decimal"
)

// NodeDetail carries the figures the node view shows next to the task record.
type NodeDetail struct {
	Task        *domain.Task
	Path        []string
	Project     *domain.Project
	Bookable    bool
	Minutes     int64
	PersonDays  decimal.NullDecimal
	Ordered     decimal.NullDecimal
	Children    int
	AccessRules []*domain.GroupTaskAccess
}

// FormatNode renders the detail view of one task.
func FormatNode(d NodeDetail) string {
	t := d.Task
	status := StyleGreen.Render(string(t.Status))
	if t.Status == domain.TaskClosed {
		status = Dim(string(t.Status))
	}
	if t.Deleted {
		status = StyleRed.Render("deleted")
	}

	pairs := [][2]string{
		{"ID", strconv.FormatInt(t.ID, 10)},
		{"Status", status},
		{"Booking", BookingIndicator(d.Bookable, t.BookingStatus)},
	}
	if len(d.Path) > 0 {
		pairs = append(pairs, [2]string{"Path", FormatPath(d.Path)})
	}
	if d.Project != nil {
		pairs = append(pairs, [2]string{"Project", d.Project.Name})
	}
	if t.MaxHours != nil {
		pairs = append(pairs, [2]string{"Max hours", strconv.Itoa(*t.MaxHours)})
	}
	if t.Kost2List != nil {
		mode := "allow"
		if t.Kost2IsDenyList {
			mode = "deny"
		}
		pairs = append(pairs, [2]string{"Kost2 " + mode, *t.Kost2List})
	}
	pairs = append(pairs,
		[2]string{"Booked", FormatMinutes(d.Minutes)},
		[2]string{"Person days", FormatPersonDays(d.PersonDays)},
		[2]string{"Ordered", FormatPersonDays(d.Ordered)},
		[2]string{"Children", strconv.Itoa(d.Children)},
	)

	body := KeyValue(pairs)
	if len(d.AccessRules) > 0 {
		body += "\n\n" + FormatAccessRules(d.AccessRules)
	}
	return RenderBox(t.Title, body)
}

// FormatPath joins titles top-down into a breadcrumb ending in the task.
func FormatPath(titles []string) string {
	if len(titles) == 0 {
		return ""
	}
	parts := append([]string(nil), titles...)
	parts[len(parts)-1] = Bold(parts[len(parts)-1])
	return strings.Join(parts, Dim(" › "))
}

// FormatAccessRules renders one row per group with the granted operations
// per access type, e.g. "siud" for full rights.
func FormatAccessRules(rules []*domain.GroupTaskAccess) string {
	types := []domain.AccessType{
		domain.AccessTasks,
		domain.AccessTimesheets,
		domain.AccessOwnTimesheets,
		domain.AccessTaskAccessManagement,
	}
	headers := []string{"GROUP", "RECURSIVE"}
	for _, at := range types {
		headers = append(headers, strings.ToUpper(string(at)))
	}

	sorted := append([]*domain.GroupTaskAccess(nil), rules...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GroupID < sorted[j].GroupID })

	rows := make([][]string, 0, len(sorted))
	for _, r := range sorted {
		row := []string{strconv.FormatInt(r.GroupID, 10), fmt.Sprint(r.Recursive)}
		for _, at := range types {
			e, ok := r.Entry(at)
			if !ok {
				row = append(row, Dim("-"))
				continue
			}
			row = append(row, opFlags(e))
		}
		rows = append(rows, row)
	}
	return RenderTable(headers, rows, 0)
}

func opFlags(e domain.AccessEntry) string {
	flags := []byte("----")
	if e.Select {
		flags[0] = 's'
	}
	if e.Insert {
		flags[1] = 'i'
	}
	if e.Update {
		flags[2] = 'u'
	}
	if e.Delete {
		flags[3] = 'd'
	}
	return string(flags)
}

// FormatKost2List renders cost-center codes as a table.
func FormatKost2List(list []*domain.Kost2) string {
	if len(list) == 0 {
		return Dim("No cost centers.")
	}
	rows := make([][]string, 0, len(list))
	for _, k := range list {
		rows = append(rows, []string{k.Code, string(k.State), k.Description})
	}
	return RenderTable([]string{"CODE", "STATE", "DESCRIPTION"}, rows)
}

// FormatOrderPositions renders order positions with their workload.
func FormatOrderPositions(positions []domain.OrderContribution) string {
	if len(positions) == 0 {
		return Dim("No order positions.")
	}
	rows := make([][]string, 0, len(positions))
	for _, p := range positions {
		rows = append(rows, []string{p.Key(), strconv.FormatInt(p.TaskID, 10), p.Title, FormatPersonDays(p.PersonDays)})
	}
	return RenderTable([]string{"POSITION", "TASK", "TITLE", "PERSON DAYS"}, rows, 1, 3)
}
