// Package diff turns unified diffs into list rows, one row per line.
package diff

import (
	"strconv"
	"strings"

	"github.com/aymanbagabas/go-udiff"
)

type Kind int

const (
	KindContext Kind = iota
	KindHeader
	KindHunk
	KindAdd
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindHunk:
		return "hunk"
	case KindAdd:
		return "add"
	case KindDelete:
		return "delete"
	default:
		return "context"
	}
}

// Row is one line of a unified diff. OldLine and NewLine are 1-based line
// numbers in the respective file, 0 when the line does not exist there.
type Row struct {
	ID      string
	Kind    Kind
	File    string
	Text    string
	OldLine int
	NewLine int
}

// Key returns the row position within its diff. Diffs are replaced
// wholesale, so the position is a stable identity for one diff.
func (r Row) Key() string {
	return r.ID
}

// Content returns the line without its diff marker.
func (r Row) Content() string {
	switch r.Kind {
	case KindAdd, KindDelete, KindContext:
		if r.Text != "" {
			return r.Text[1:]
		}
	}
	return r.Text
}

// Rows diffs two documents and returns the unified diff as rows. Identical
// documents yield no rows.
func Rows(oldName, before, newName, after string) []Row {
	return Parse(udiff.Unified(oldName, newName, before, after))
}

// Parse splits unified diff text, as produced by udiff or git, into rows.
func Parse(unified string) []Row {
	unified = strings.TrimSuffix(unified, "\n")
	if unified == "" {
		return nil
	}

	lines := strings.Split(unified, "\n")
	rows := make([]Row, 0, len(lines))
	var file string
	var oldLine, newLine int
	for i, line := range lines {
		row := Row{ID: strconv.Itoa(i), Text: line}
		switch {
		case strings.HasPrefix(line, "+++ ") && i > 0 && strings.HasPrefix(lines[i-1], "--- "):
			row.Kind = KindHeader
			if name := fileName(line[4:]); name != "" {
				file = name
			}
		case strings.HasPrefix(line, "--- ") && i+1 < len(lines) && strings.HasPrefix(lines[i+1], "+++ "):
			row.Kind = KindHeader
			file = fileName(line[4:])
		case strings.HasPrefix(line, "diff "),
			strings.HasPrefix(line, "index "),
			strings.HasPrefix(line, "new file"),
			strings.HasPrefix(line, "deleted file"),
			strings.HasPrefix(line, "similarity "),
			strings.HasPrefix(line, "rename "):
			row.Kind = KindHeader
			if strings.HasPrefix(line, "diff ") {
				file = ""
			}
		case strings.HasPrefix(line, "@@"):
			row.Kind = KindHunk
			oldLine, newLine = hunkStart(line)
		case strings.HasPrefix(line, "+"):
			row.Kind = KindAdd
			row.NewLine = newLine
			newLine++
		case strings.HasPrefix(line, "-"):
			row.Kind = KindDelete
			row.OldLine = oldLine
			oldLine++
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file"
			row.Kind = KindHeader
		default:
			row.Kind = KindContext
			row.OldLine = oldLine
			row.NewLine = newLine
			oldLine++
			newLine++
		}
		row.File = file
		rows = append(rows, row)
	}
	return rows
}

func fileName(s string) string {
	s, _, _ = strings.Cut(s, "\t")
	if s == "/dev/null" {
		return ""
	}
	for _, prefix := range []string{"a/", "b/"} {
		if after, ok := strings.CutPrefix(s, prefix); ok {
			return after
		}
	}
	return s
}

// hunkStart parses "@@ -a,b +c,d @@" into the first old and new line.
func hunkStart(line string) (int, int) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return 0, 0
	}
	return rangeStart(fields[1], "-"), rangeStart(fields[2], "+")
}

func rangeStart(field, sign string) int {
	field, ok := strings.CutPrefix(field, sign)
	if !ok {
		return 0
	}
	start, _, _ := strings.Cut(field, ",")
	n, err := strconv.Atoi(start)
	if err != nil {
		return 0
	}
	return n
}
