package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/JeremyKalmus/town-view-sub001/internal/source/feed"
)

func sampleRecords() []feed.Record {
	return []feed.Record{
		{ID: "1", Kind: feed.KindAgent, Agent: "mayor", Title: "started"},
		{ID: "2", Kind: feed.KindMail, Agent: "witness", Title: "handoff", Body: "see hq-7\nthanks"},
		{ID: "3", Kind: feed.KindIssue, Agent: "mayor", Title: "filed hq-7"},
		{ID: "4", Kind: feed.KindTelemetry, Title: "cpu 40%"},
	}
}

func TestGroupByAgent(t *testing.T) {
	t.Parallel()

	groups := groupByAgent(sampleRecords())
	require.Len(t, groups, 3)
	assert.Equal(t, "mayor", groups[0].Agent)
	assert.Len(t, groups[0].Records, 2)
	assert.Equal(t, "witness", groups[1].Agent)
	assert.Equal(t, "town", groups[2].Agent)
	assert.Empty(t, groupByAgent(nil))
}

func TestFilterKinds(t *testing.T) {
	t.Parallel()

	t.Run("no kinds keeps everything", func(t *testing.T) {
		t.Parallel()
		assert.Len(t, filterKinds(sampleRecords(), nil), 4)
	})

	t.Run("keeps matching kinds in order", func(t *testing.T) {
		t.Parallel()
		out := filterKinds(sampleRecords(), []string{feed.KindIssue, feed.KindAgent, feed.KindAgent})
		require.Len(t, out, 2)
		assert.Equal(t, "1", out[0].ID)
		assert.Equal(t, "3", out[1].ID)
	})

	t.Run("unknown kinds match nothing", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, filterKinds(sampleRecords(), []string{"weather"}))
	})
}

func TestFormatFeed(t *testing.T) {
	t.Parallel()

	groups := groupByAgent(sampleRecords())

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, formatFeed(&buf, groups, "text", false))
		assert.Contains(t, buf.String(), "mayor (2)")
		assert.Contains(t, buf.String(), "[mail] handoff")
	})

	t.Run("text counts use digit grouping", func(t *testing.T) {
		t.Parallel()
		records := make([]feed.Record, 1204)
		for i := range records {
			records[i] = feed.Record{Kind: feed.KindTelemetry, Agent: "deacon", Title: "tick"}
		}
		var buf bytes.Buffer
		require.NoError(t, formatFeed(&buf, groupByAgent(records), "text", false))
		assert.Contains(t, buf.String(), "deacon (1,204)")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, formatFeed(&buf, groups, "JSON", true))
		var decoded []AgentActivity
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 3)
		assert.Equal(t, "filed hq-7", decoded[0].Records[1].Title)
	})

	t.Run("yaml", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, formatFeed(&buf, groups, "yaml", true))
		var decoded []map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		require.Len(t, decoded, 3)
		assert.Equal(t, "witness", decoded[1]["agent"])
	})

	t.Run("markdown includes bodies on export", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, formatFeed(&buf, groups, "md", true))
		assert.Contains(t, buf.String(), "## witness")
		assert.Contains(t, buf.String(), "  > thanks")

		buf.Reset()
		require.NoError(t, formatFeed(&buf, groups, "markdown", false))
		assert.NotContains(t, buf.String(), "thanks")
	})

	t.Run("empty feed", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, formatFeed(&buf, nil, "text", false))
		assert.Equal(t, "No records found.\n", buf.String())
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		assert.Error(t, formatFeed(&bytes.Buffer{}, groups, "xml", false))
	})
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, float64(5), parseValue("5"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, "/srv/feed.jsonl", parseValue("/srv/feed.jsonl"))
	assert.Equal(t, []any{"a"}, parseValue(`["a"]`))
}
