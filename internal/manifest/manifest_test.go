package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWagon(t *testing.T) {
	path := writeFile(t, t.TempDir(), "_mechanic.yaml", `
wagon: mechanic
description: Repair scheduling
produce:
  - contract: mechanic:timebank:remaining
    telemetry: mechanic:session:duration
consume:
  - contract: contracts/shared/clock.schema.json
    telemetry:
      - mechanic:session:heartbeat
      - mechanic:session:idle
wmbt:
  C004: {}
  D001: {}
`)

	w, err := LoadWagon(path)
	require.NoError(t, err)
	assert.Equal(t, "mechanic", w.Wagon)
	assert.Equal(t, "Repair scheduling", w.Description)

	require.Len(t, w.Produce, 1)
	assert.Equal(t, "mechanic:timebank:remaining", w.Produce[0].Contract)
	assert.Equal(t, RefList{"mechanic:session:duration"}, w.Produce[0].Telemetry,
		"scalar telemetry decodes as a one-element list")

	require.Len(t, w.Consume, 1)
	assert.Equal(t, RefList{"mechanic:session:heartbeat", "mechanic:session:idle"}, w.Consume[0].Telemetry)

	assert.Equal(t, []string{"C004", "D001"}, w.WMBTIDs())
}

func TestLoadTrain(t *testing.T) {
	dir := t.TempDir()

	t.Run("scalar and mapping wagon refs", func(t *testing.T) {
		path := writeFile(t, dir, "0025-onboarding.yaml", `
id: 0025-onboarding
wagons:
  - mechanic
  - wagon: dispatcher
  - slug: billing
`)
		tr, err := LoadTrain(path)
		require.NoError(t, err)
		assert.Equal(t, "0025-onboarding", tr.ID)
		assert.Equal(t, []WagonRef{"mechanic", "dispatcher", "billing"}, tr.Wagons)
	})

	t.Run("missing id falls back to file stem", func(t *testing.T) {
		path := writeFile(t, dir, "0030-billing-revamp.yaml", `
wagons: [billing]
`)
		tr, err := LoadTrain(path)
		require.NoError(t, err)
		assert.Equal(t, "0030-billing-revamp", tr.ID)
	})
}

func TestWMBTDocDeclaredURN(t *testing.T) {
	path := writeFile(t, t.TempDir(), "C004.yaml", `
identity:
  urn: wmbt:mechanic:C004
acceptances:
  - identity:
      urn: acc:mechanic:C004-E2E-019-user-connection
  - urn: acc:mechanic:C004-UNIT-001-clock-skew
`)

	doc, err := LoadWMBT(path)
	require.NoError(t, err)
	assert.Equal(t, "wmbt:mechanic:C004", doc.DeclaredURN())
	require.Len(t, doc.Acceptances, 2)
	assert.Equal(t, "acc:mechanic:C004-E2E-019-user-connection", doc.Acceptances[0].DeclaredURN())
	assert.Equal(t, "acc:mechanic:C004-UNIT-001-clock-skew", doc.Acceptances[1].DeclaredURN())
}

func TestSchemaID(t *testing.T) {
	dir := t.TempDir()

	t.Run("json dollar id", func(t *testing.T) {
		path := writeFile(t, dir, "remaining.schema.json", `{"$id": "mechanic:timebank:remaining"}`)
		id, err := SchemaID(path)
		require.NoError(t, err)
		assert.Equal(t, "mechanic:timebank:remaining", id)
	})

	t.Run("yaml plain id fallback", func(t *testing.T) {
		path := writeFile(t, dir, "duration.yaml", "id: mechanic:session:duration\n")
		id, err := SchemaID(path)
		require.NoError(t, err)
		assert.Equal(t, "mechanic:session:duration", id)
	})

	t.Run("no id present", func(t *testing.T) {
		path := writeFile(t, dir, "bare.yaml", "name: something\n")
		id, err := SchemaID(path)
		require.NoError(t, err)
		assert.Empty(t, id)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeFile(t, dir, "broken.schema.json", `{"$id": `)
		_, err := SchemaID(path)
		assert.Error(t, err)
	})
}
