// Package report renders the bi-weekly self-feedback report: tasks grouped
// by category, ordered by the persisted category sort order, as an HTML
// fragment or a Markdown document.
package report

import (
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/reginabally/task-tracker/internal/model"
)

const (
	// manualReviewLabel is the category whose slack-ping tasks collapse
	// into a single count line.
	manualReviewLabel = "Manual Review Work"
	// slackPingTag marks answered Slack pings.
	slackPingTag = "slack-ping"
	// fallbackSortOrder pushes categories missing from the sort-order
	// lookup below every configured one.
	fallbackSortOrder = 999
	// noDescription is rendered for tasks without a description.
	noDescription = "(No description)"
)

type group struct {
	label     string
	tasks     []model.TaskDetail
	sortOrder int
}

// RenderHTML renders the report as an HTML fragment. Categories come from
// the persisted ordering; uncategorized tasks and empty groups are omitted.
func RenderHTML(tasks []model.TaskDetail, categories []model.Category) string {
	var b strings.Builder
	for _, g := range groupTasks(tasks, categories) {
		b.WriteString("<h3>" + html.EscapeString(g.label) + "</h3>")
		b.WriteString("<ul>")

		regular, slackPings := splitSlackPings(g)
		if slackPings > 0 {
			b.WriteString("<li>" + slackPingLine(slackPings) + "</li>")
		}
		for _, task := range regular {
			b.WriteString("<li>" + html.EscapeString(description(task)))
			if task.Link != "" {
				b.WriteString(` <a href="` + html.EscapeString(task.Link) + `">#</a>`)
			}
			b.WriteString("</li>")
		}

		b.WriteString("</ul>")
	}
	return b.String()
}

// RenderMarkdown renders the report as a Markdown document with one
// heading and bullet list per category.
func RenderMarkdown(tasks []model.TaskDetail, categories []model.Category) string {
	var b strings.Builder
	for _, g := range groupTasks(tasks, categories) {
		b.WriteString("### " + g.label + "\n\n")

		regular, slackPings := splitSlackPings(g)
		if slackPings > 0 {
			b.WriteString("- " + slackPingLine(slackPings) + "\n")
		}
		for _, task := range regular {
			b.WriteString("- " + description(task))
			if task.Link != "" {
				b.WriteString(" [#](" + task.Link + ")")
			}
			b.WriteString("\n")
		}

		b.WriteString("\n")
	}
	return b.String()
}

// groupTasks buckets tasks by category and orders the buckets by the
// persisted sort order, ties broken by label. Tasks within a bucket are
// ordered by date ascending. Uncategorized tasks are skipped.
func groupTasks(tasks []model.TaskDetail, categories []model.Category) []group {
	orderByName := make(map[string]int, len(categories))
	for _, cat := range categories {
		orderByName[cat.Name] = cat.SortOrder
	}

	byName := make(map[string]*group)
	var ordered []*group
	for _, task := range tasks {
		if task.Category == nil {
			continue
		}
		g, ok := byName[task.Category.Name]
		if !ok {
			sortOrder, known := orderByName[task.Category.Name]
			if !known {
				sortOrder = fallbackSortOrder
			}
			g = &group{label: task.Category.Label, sortOrder: sortOrder}
			byName[task.Category.Name] = g
			ordered = append(ordered, g)
		}
		g.tasks = append(g.tasks, task)
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].sortOrder != ordered[j].sortOrder {
			return ordered[i].sortOrder < ordered[j].sortOrder
		}
		return ordered[i].label < ordered[j].label
	})

	groups := make([]group, 0, len(ordered))
	for _, g := range ordered {
		sort.SliceStable(g.tasks, func(i, j int) bool {
			return g.tasks[i].Date.Before(g.tasks[j].Date)
		})
		groups = append(groups, *g)
	}
	return groups
}

// splitSlackPings separates the slack-ping count from the renderable tasks
// of a group. Outside the manual-review category every task renders and
// the count is zero; inside it, slack-ping-tagged tasks leave the list and
// surface only through the count.
func splitSlackPings(g group) ([]model.TaskDetail, int) {
	if g.label != manualReviewLabel {
		return g.tasks, 0
	}

	var regular []model.TaskDetail
	pings := 0
	for _, task := range g.tasks {
		if task.HasTag(slackPingTag) {
			pings++
			continue
		}
		regular = append(regular, task)
	}
	return regular, pings
}

func slackPingLine(count int) string {
	noun := "pings"
	if count == 1 {
		noun = "ping"
	}
	return fmt.Sprintf("%d Slack %s answered", count, noun)
}

func description(task model.TaskDetail) string {
	if task.Description == "" {
		return noDescription
	}
	return task.Description
}
