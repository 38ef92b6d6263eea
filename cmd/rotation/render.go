package main

import (
	"fmt"
	"strings"

	"github.com/arnavshah/rotation-api-go/pkg/models"
	"github.com/arnavshah/rotation-api-go/pkg/scheduler"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")).
			Padding(0, 1)

	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	lockedStyle = cellStyle.Foreground(lipgloss.Color("170"))
	emptyStyle  = cellStyle.Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// renderTable lays weeks out one row per week and one column per task
func renderTable(tasks []models.Task, weeks []scheduler.WeekAssignment) string {
	headers := make([]string, 0, len(tasks)+1)
	headers = append(headers, "Week")
	for _, t := range tasks {
		headers = append(headers, string(t.Name))
	}

	rows := make([][]string, len(weeks))
	for i, wa := range weeks {
		row := make([]string, 0, len(tasks)+1)
		week := wa.Week.ID()
		if wa.Locked {
			week += " *"
		}
		row = append(row, week)
		for _, people := range wa.Assignment.Ordered(tasks) {
			row = append(row, joinPeople(people))
		}
		rows[i] = row
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(weeks) && weeks[row].Locked:
				return lockedStyle
			case row >= 0 && row < len(rows) && col < len(rows[row]) && rows[row][col] == "-":
				return emptyStyle
			default:
				return cellStyle
			}
		})
	return t.String()
}

func joinPeople(people []models.Person) string {
	if len(people) == 0 {
		return "-"
	}
	names := make([]string, len(people))
	for i, p := range people {
		names[i] = string(p)
	}
	return strings.Join(names, ", ")
}

// summary reports the fairness score and whether the timeline ended early
func summary(requested int, weeks []scheduler.WeekAssignment, fairness float64, err error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fairness: %.1f%%\n", fairness)
	if len(weeks) < requested {
		reason := "timeline ended"
		if err != nil {
			reason = err.Error()
		}
		sb.WriteString(noticeStyle.Render(fmt.Sprintf("Only %d of %d weeks could be generated: %s", len(weeks), requested, reason)))
		sb.WriteString("\n")
	}
	return sb.String()
}

// currentWeek finds the generated week containing today, if any
func currentWeek(weeks []scheduler.WeekAssignment, today models.Week) (scheduler.WeekAssignment, bool) {
	for _, wa := range weeks {
		if wa.Week == today {
			return wa, true
		}
	}
	return scheduler.WeekAssignment{}, false
}
