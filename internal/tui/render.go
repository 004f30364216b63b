package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/JeremyKalmus/town-view-sub001/internal/source/diff"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/feed"
	"github.com/JeremyKalmus/town-view-sub001/internal/source/gitlog"
	"github.com/JeremyKalmus/town-view-sub001/internal/tui/styles"
)

const commitRowHeight = 2

func recordKey(r feed.Record, _ int) string {
	return r.Key()
}

func commitKey(c gitlog.Commit, _ int) string {
	return c.Key()
}

func rowKey(r diff.Row, _ int) string {
	return r.Key()
}

func recordText(r feed.Record) string {
	return strings.Join([]string{r.Kind, r.Agent, r.Title, r.Body}, " ")
}

func commitText(c gitlog.Commit) string {
	return c.Short() + " " + c.Author + " " + c.Subject
}

func rowText(r diff.Row) string {
	return r.Text
}

func marker(selected bool) string {
	if selected {
		return "▌"
	}
	return " "
}

// renderRecord draws a feed record as a header line followed by its body
// wrapped to the width, so records differ in height.
func renderRecord(r feed.Record, _ int, width int, selected bool) string {
	t := styles.CurrentTheme()
	kind := r.Kind
	if kind == "" {
		kind = "event"
	}
	header := marker(selected) + " "
	if !r.Time.IsZero() {
		header += t.S().Subtle.Render(r.Time.Local().Format("15:04")) + " "
	}
	header += kindStyle(kind).Render(kind)
	if r.Agent != "" {
		header += " " + t.S().Muted.Render(r.Agent)
	}
	title := t.S().Base.Bold(true)
	if selected {
		title = t.S().Selected.Bold(true)
	}
	header += " " + title.Render(r.Title)
	header = ansi.Truncate(header, width, "…")
	if r.Body == "" {
		return header
	}
	body := t.S().Muted.
		Width(max(1, width-2)).
		PaddingLeft(2).
		Render(r.Body)
	return header + "\n" + body
}

func kindStyle(kind string) lipgloss.Style {
	t := styles.CurrentTheme()
	switch kind {
	case feed.KindMail:
		return t.S().Base.Foreground(t.Warning)
	case feed.KindIssue:
		return t.S().Base.Foreground(t.Error)
	case feed.KindAgent:
		return t.S().Base.Foreground(t.Success)
	case feed.KindTelemetry:
		return t.S().Base.Foreground(t.Info)
	default:
		return t.S().Subtle
	}
}

// renderCommit draws a commit in exactly two lines.
func renderCommit(c gitlog.Commit, _ int, width int, selected bool) string {
	t := styles.CurrentTheme()
	subject := t.S().Base
	if selected {
		subject = t.S().Selected
	}
	first := marker(selected) + " " +
		t.S().Title.Render(c.Short()) + " " +
		subject.Render(c.Subject)
	second := "   " + t.S().Muted.Render(c.Author+" · "+relativeTime(c.When, time.Now()))
	return ansi.Truncate(first, width, "…") + "\n" + ansi.Truncate(second, width, "…")
}

func renderRow(r diff.Row, _ int, width int, selected bool) string {
	if selected {
		t := styles.CurrentTheme()
		return t.S().Selected.Render(ansi.Truncate(r.Text, width, "…"))
	}
	return r.Render(width)
}

func relativeTime(when, now time.Time) string {
	d := now.Sub(when)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return when.Format("2006-01-02")
	}
}
