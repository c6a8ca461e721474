package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MKhiriev/go-note-keeper/models"
)

const (
	titleColMax  = 40
	timeLayout   = "2006-01-02 15:04"
	statusSynced = "synced"
	statusQueued = "queued"
)

// RenderNoteList renders notes as a table: ID, title, tags, status, updated.
func RenderNoteList(notes []models.PlainNote) string {
	if len(notes) == 0 {
		return renderPage("NOTES", "no notes yet", "notes add --title ... to create one")
	}

	header := []string{"ID", "TITLE", "TAGS", "STATUS", "UPDATED"}
	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{
			n.ID,
			fitText(n.Title, titleColMax),
			valueOrDash(strings.Join(n.Tags, ",")),
			statusLabel(n),
			n.UpdatedAt.Local().Format(timeLayout),
		})
	}

	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	writeRow(&b, header, widths)
	for i, w := range widths {
		if i > 0 {
			b.WriteString("─┼─")
		}
		b.WriteString(strings.Repeat("─", w))
	}
	b.WriteString("\n")
	for _, row := range rows {
		styled := append([]string(nil), row...)
		styled[3] = statusStyle(row[3]).Render(padRight(row[3], widths[3]))
		writeRow(&b, styled, widths)
	}

	return renderPage("NOTES", strings.TrimRight(b.String(), "\n"), fmt.Sprintf("%d note(s)", len(notes)))
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(" │ ")
		}
		b.WriteString(padRight(cell, widths[i]))
	}
	b.WriteString("\n")
}

// RenderNote renders a single note with its metadata.
func RenderNote(note models.PlainNote) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ID:       %s\n", note.ID)
	fmt.Fprintf(&b, "Tags:     %s\n", valueOrDash(strings.Join(note.Tags, ", ")))
	fmt.Fprintf(&b, "Status:   %s\n", statusStyle(statusLabel(note)).Render(statusLabel(note)))
	fmt.Fprintf(&b, "Created:  %s\n", note.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(&b, "Updated:  %s\n", note.UpdatedAt.Local().Format(timeLayout))
	b.WriteString("\n")

	content := valueOrDash(note.Content)
	if note.DecryptionFailed {
		content = errorStyle.Render(content)
	}
	b.WriteString(boxStyle.Render(content))

	return renderPage(valueOrDash(note.Title), b.String(), "")
}

// RenderSyncReport summarizes one drain.
func RenderSyncReport(report models.SyncReport, remaining int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Replayed:  %d\n", report.Total-report.Deferred)
	fmt.Fprintf(&b, "Synced:    %s\n", syncedStyle.Render(fmt.Sprint(report.Synced)))
	failed := fmt.Sprint(report.Failed)
	if report.Failed > 0 {
		failed = errorStyle.Render(failed)
	}
	fmt.Fprintf(&b, "Failed:    %s\n", failed)
	if report.Deferred > 0 {
		fmt.Fprintf(&b, "Deferred:  %d\n", report.Deferred)
	}
	fmt.Fprintf(&b, "Queued:    %d\n", remaining)
	fmt.Fprintf(&b, "Refreshed: %t\n", report.Hydrated)
	fmt.Fprintf(&b, "Took:      %s", report.Duration.Round(time.Millisecond))

	return renderPage("SYNC", b.String(), "")
}

// RenderBuildInfo renders the version command output.
func RenderBuildInfo(info models.AppBuildInfo) string {
	var b strings.Builder

	b.WriteString("Application: go-note-keeper\n")
	fmt.Fprintf(&b, "Version:     %s\n", info.BuildVersion())
	fmt.Fprintf(&b, "Date:        %s\n", info.BuildDate())
	fmt.Fprintf(&b, "Commit:      %s", info.BuildCommit())

	return renderPage("ABOUT", b.String(), "")
}

// RenderError renders a failed command for stderr: the user-facing message
// and, below it, the wrapped error chain.
func RenderError(msg string, err error) string {
	out := errorStyle.Render("error: ") + msg
	if err != nil && err.Error() != msg {
		out += "\n" + helpStyle.Render("  "+err.Error())
	}
	return out
}

func statusLabel(note models.PlainNote) string {
	if note.SyncStatus == models.SyncStatusSynced {
		return statusSynced
	}
	return statusQueued
}

func statusStyle(label string) lipgloss.Style {
	if label == statusSynced {
		return syncedStyle
	}
	return pendingStyle
}
