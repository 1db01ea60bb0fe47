package urn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComponent(t *testing.T) {
	p, err := Parse("component:mechanic:timebank:TimebankPanel:frontend:presentation")
	require.NoError(t, err)
	assert.Equal(t, "mechanic", p.Wagon)
	assert.Equal(t, "timebank", p.Feature)
	assert.Equal(t, "TimebankPanel", p.Name)
	assert.Equal(t, "frontend", p.Side)
	assert.Equal(t, "presentation", p.Layer)
}

func TestParseTestForms(t *testing.T) {
	t.Run("acceptance shape wins first", func(t *testing.T) {
		p, err := Parse("test:maintain-ux:dark-mode:C004-E2E-019-user-connection")
		require.NoError(t, err)
		assert.Equal(t, TestFormAcceptance, p.TestForm)
		assert.Equal(t, "maintain-ux", p.Wagon)
		assert.Equal(t, "dark-mode", p.Feature)
		assert.Equal(t, "C004", p.WMBTID)
		assert.Equal(t, "E2E", p.Harness)
		assert.Equal(t, "019", p.Sequence)
		assert.Equal(t, "user-connection", p.Slug)
	})

	t.Run("journey shape", func(t *testing.T) {
		p, err := Parse("test:train:0025-onboarding:E2E-001-full-login-flow")
		require.NoError(t, err)
		assert.Equal(t, TestFormJourney, p.TestForm)
		assert.Equal(t, "0025-onboarding", p.TrainID)
		assert.Equal(t, "E2E", p.Harness)
		assert.Equal(t, "001", p.Sequence)
		assert.Equal(t, "full-login-flow", p.Slug)
	})

	t.Run("legacy dotted shape", func(t *testing.T) {
		p, err := Parse("test:mechanic.timebank.remaining-panel")
		require.NoError(t, err)
		assert.Equal(t, TestFormLegacy, p.TestForm)
		assert.Equal(t, "mechanic", p.Wagon)
		assert.Equal(t, "timebank", p.Feature)
		assert.Equal(t, "remaining-panel", p.TestCase)
	})
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("no-family")
	assert.Error(t, err)

	_, err = Parse("mystery:thing")
	assert.Error(t, err)
}
