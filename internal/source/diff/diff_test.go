package diff

import (
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(rows []Row) []Kind {
	out := make([]Kind, len(rows))
	for i, r := range rows {
		out[i] = r.Kind
	}
	return out
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	require.NoError(t, err)
	return n
}

func TestRows(t *testing.T) {
	t.Parallel()

	t.Run("classifies every line", func(t *testing.T) {
		t.Parallel()
		rows := Rows("a.txt", "one\ntwo\n", "b.txt", "one\nthree\n")
		require.Equal(t, []Kind{KindHeader, KindHeader, KindHunk, KindContext, KindDelete, KindAdd}, kinds(rows))

		assert.Equal(t, "b.txt", rows[3].File)
		assert.Equal(t, 1, rows[3].OldLine)
		assert.Equal(t, 1, rows[3].NewLine)
		assert.Equal(t, 2, rows[4].OldLine)
		assert.Equal(t, 0, rows[4].NewLine)
		assert.Equal(t, "two", rows[4].Content())
		assert.Equal(t, 0, rows[5].OldLine)
		assert.Equal(t, 2, rows[5].NewLine)
		assert.Equal(t, "three", rows[5].Content())
	})

	t.Run("ids are positions", func(t *testing.T) {
		t.Parallel()
		rows := Rows("a", "x\n", "b", "y\n")
		for i, r := range rows {
			assert.Equal(t, r.ID, r.Key())
			assert.Equal(t, i, mustAtoi(t, r.ID))
		}
	})

	t.Run("identical documents have no rows", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, Rows("a", "same\n", "b", "same\n"))
		assert.Empty(t, Parse(""))
	})
}

func TestParseGitPatch(t *testing.T) {
	t.Parallel()
	patch := strings.Join([]string{
		"diff --git a/town.go b/town.go",
		"index 1111111..2222222 100644",
		"--- a/town.go",
		"+++ b/town.go",
		"@@ -10,3 +10,4 @@ func Mayor() {",
		" \tfmt.Println(\"mayor\")",
		"--- a decremented comment",
		"+\tfmt.Println(\"deacon\")",
		"+\tfmt.Println(\"witness\")",
		"\\ No newline at end of file",
		"diff --git a/gone.txt b/gone.txt",
		"deleted file mode 100644",
		"--- a/gone.txt",
		"+++ /dev/null",
		"@@ -1 +0,0 @@",
		"-bye",
		"",
	}, "\n")

	rows := Parse(patch)
	require.Len(t, rows, 16)
	assert.Equal(t, []Kind{
		KindHeader, KindHeader, KindHeader, KindHeader, KindHunk,
		KindContext, KindDelete, KindAdd, KindAdd, KindHeader,
		KindHeader, KindHeader, KindHeader, KindHeader, KindHunk, KindDelete,
	}, kinds(rows))

	assert.Equal(t, "town.go", rows[5].File)
	assert.Equal(t, 10, rows[5].OldLine)
	assert.Equal(t, 11, rows[6].OldLine)
	assert.Equal(t, 11, rows[7].NewLine)
	assert.Equal(t, 12, rows[8].NewLine)
	assert.Equal(t, "gone.txt", rows[15].File)
	assert.Equal(t, 1, rows[15].OldLine)
}

func TestRender(t *testing.T) {
	t.Parallel()
	rows := Rows("main.go", "package main\n", "main.go", "package main\n\nfunc main() {}\n")
	require.NotEmpty(t, rows)

	for _, r := range rows {
		out := r.Render(80)
		assert.NotContains(t, out, "\n")
		assert.LessOrEqual(t, ansi.StringWidth(out), 80)
	}

	last := rows[len(rows)-1]
	require.Equal(t, KindAdd, last.Kind)
	assert.Contains(t, ansi.Strip(last.Render(80)), "+func main() {}")

	narrow := last.Render(10)
	assert.LessOrEqual(t, ansi.StringWidth(narrow), 10)
}

func TestExpandTabs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no tabs", expandTabs("no tabs", 4))
	assert.Equal(t, "    x", expandTabs("\tx", 4))
	assert.Equal(t, "ab  x", expandTabs("ab\tx", 4))
	assert.Equal(t, "        x", expandTabs("\t\tx", 4))
	assert.Equal(t, "日本    x", expandTabs("日本\tx", 4), "wide runes count two columns")
	assert.Equal(t, "é   x", expandTabs("é\tx", 4), "accented letters take one column")

	rows := Rows("main.go", "", "main.go", "\treturn nil\n")
	require.NotEmpty(t, rows)
	last := rows[len(rows)-1]
	assert.NotContains(t, last.Render(80), "\t")
}
