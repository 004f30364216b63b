package diff

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/rivo/uniseg"
)

const (
	highlightStyle = "monokai"
	tabWidth       = 4
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#858392")).Bold(true)
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00A4FF"))
	addStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#12C78F"))
	deleteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EB4268"))
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#605F6B"))
	contextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#DFDBDD"))
)

// lexers by file extension
var lexerCache sync.Map

func lexerFor(file string) chroma.Lexer {
	ext := strings.ToLower(filepath.Ext(file))
	if ext == "" {
		ext = strings.ToLower(filepath.Base(file))
	}
	if cached, ok := lexerCache.Load(ext); ok {
		lexer, _ := cached.(chroma.Lexer)
		return lexer
	}
	lexer := lexers.Match(file)
	if lexer != nil {
		lexer = chroma.Coalesce(lexer)
	}
	lexerCache.Store(ext, lexer)
	return lexer
}

// highlight colors code with the lexer matching file. Unknown languages and
// lexer failures return code unchanged.
func highlight(file, code string) string {
	if file == "" || code == "" {
		return code
	}
	lexer := lexerFor(file)
	if lexer == nil {
		return code
	}
	it, err := lexer.Tokenise(nil, code+"\n")
	if err != nil {
		return code
	}
	style := styles.Get(highlightStyle)
	var buf bytes.Buffer
	if err := formatters.TTY256.Format(&buf, style, it); err != nil {
		return code
	}
	return strings.TrimRight(buf.String(), "\n")
}

// expandTabs replaces tabs with spaces up to the next tab stop. Columns are
// counted in grapheme clusters so wide characters before a tab keep the
// stops aligned.
func expandTabs(s string, width int) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	var b strings.Builder
	col := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		var w int
		cluster, s, w, state = uniseg.FirstGraphemeClusterInString(s, state)
		if cluster == "\t" {
			n := width - col%width
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteString(cluster)
		col += w
	}
	return b.String()
}

func gutter(n int) string {
	if n == 0 {
		return "    "
	}
	return fmt.Sprintf("%4d", n)
}

// Render draws the row as a single terminal line no wider than width.
func (r Row) Render(width int) string {
	var line string
	switch r.Kind {
	case KindHeader:
		line = headerStyle.Render(r.Text)
	case KindHunk:
		line = hunkStyle.Render(r.Text)
	default:
		nums := gutterStyle.Render(gutter(r.OldLine) + " " + gutter(r.NewLine) + " ")
		code := highlight(r.File, expandTabs(r.Content(), tabWidth))
		switch r.Kind {
		case KindAdd:
			line = nums + addStyle.Render("+") + code
		case KindDelete:
			line = nums + deleteStyle.Render("-") + code
		default:
			line = nums + contextStyle.Render(" ") + code
		}
	}
	if width > 0 {
		line = ansi.Truncate(line, width, "…")
	}
	return line
}
