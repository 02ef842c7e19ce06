package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vytor/wordflash/internal/models"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestImportStatsExportRoundTrip(t *testing.T) {
	color.NoColor = true
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite3")
	t.Setenv("DB_PATH", "file:"+filepath.Join(dir, "wordflash.db"))
	t.Setenv("LOG_LEVEL", "ERROR")

	csvPath := filepath.Join(dir, "cards.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("learner_id,content_id,content_type\nalice,hello,word\nalice,see you,phrase\n"), 0o600))

	out := run(t, "import", csvPath)
	assert.Contains(t, out, "imported 2 of 2 rows")

	out = run(t, "stats", "--learner", "alice")
	assert.Contains(t, out, "Cards for alice")
	assert.Contains(t, out, "total")

	exportPath := filepath.Join(dir, "alice.yaml")
	run(t, "export", "--learner", "alice", "-o", exportPath)

	raw, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var doc exportDocument
	require.NoError(t, yaml.Unmarshal(raw, &doc))
	assert.Equal(t, "alice", doc.LearnerID)
	require.Len(t, doc.Cards, 2)
	types := map[string]models.ContentType{}
	for _, c := range doc.Cards {
		types[c.ContentID] = c.ContentType
	}
	assert.Equal(t, models.ContentTypePhrase, types["see you"])
	assert.Equal(t, models.ContentTypeWord, types["hello"])
}

func TestInvalidConfigurationFails(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"stats", "--learner", "alice"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}

func TestPrintStats(t *testing.T) {
	color.NoColor = true
	var out bytes.Buffer
	printStats(&out, "bob", models.StatsSummary{Total: 3, DueToday: 2, AverageRetention: 66.67})
	assert.Contains(t, out.String(), "Cards for bob")
	assert.Contains(t, out.String(), "66.67%")
}
