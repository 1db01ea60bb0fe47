package validate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const legacySchema = `{
  "$id": "urn:jel:legacy-header",
  "type": "object",
  "properties": {
    "minutes": { "type": "integer" }
  }
}`

func legacyFixture(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	path := filepath.Join(root, "contracts", "mechanic", "timebank", "remaining.schema.json")
	writeFile(t, path, legacySchema)
	writeFile(t, filepath.Join(root, "contracts", "shared", "clock.schema.json"),
		`{"$id": "shared:clock"}`)
	return root, path
}

func TestFindLegacyContracts(t *testing.T) {
	root, path := legacyFixture(t)

	issues := newValidator(t, root).FindLegacyContracts()
	require.Len(t, issues, 1, "already-migrated schemas are not flagged")
	assert.Equal(t, IssueLegacyContract, issues[0].Type)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Equal(t, path, issues[0].Location)
	assert.Contains(t, issues[0].Message, "urn:jel:legacy-header")
	assert.Contains(t, issues[0].Suggestion, "mechanic:timebank:remaining")
}

func TestFixLegacyContractsDryRun(t *testing.T) {
	root, path := legacyFixture(t)

	fixes := newValidator(t, root).FixLegacyContracts(true)
	require.Len(t, fixes, 1)
	assert.Equal(t, FixDryRun, fixes[0].Status)
	assert.Equal(t, "urn:jel:legacy-header", fixes[0].OldID)
	assert.Equal(t, "mechanic:timebank:remaining", fixes[0].NewID)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, legacySchema, string(raw), "dry run writes nothing")
	assert.NoFileExists(t, path+".bak")
}

func TestFixLegacyContractsApply(t *testing.T) {
	root, path := legacyFixture(t)

	fixes := newValidator(t, root).FixLegacyContracts(false)
	require.Len(t, fixes, 1)
	assert.Equal(t, FixFixed, fixes[0].Status)
	assert.Equal(t, path+".bak", fixes[0].Backup)

	backup, err := os.ReadFile(path + ".bak")
	require.NoError(t, err)
	assert.Equal(t, legacySchema, string(backup), "backup holds the original bytes")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc), "rewritten document stays valid JSON")
	assert.Equal(t, "mechanic:timebank:remaining", doc["$id"])
	assert.Contains(t, string(raw), `"type": "object"`, "formatting outside $id survives")

	// A second pass finds nothing left to fix.
	assert.Empty(t, newValidator(t, root).FixLegacyContracts(false))
}

func TestContractIDFromPath(t *testing.T) {
	dir := filepath.Join("repo", "contracts")
	got := contractIDFromPath(filepath.Join(dir, "a", "b", "c.schema.json"), dir)
	assert.Equal(t, "a:b:c", got)
}
