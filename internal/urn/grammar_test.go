package urn

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	t.Run("wagon", func(t *testing.T) {
		assert.True(t, Validate("wagon:resolve-dilemmas", FamilyWagon))
		assert.True(t, Validate("wagon:a", FamilyWagon))
		assert.False(t, Validate("wagon:Resolve", FamilyWagon), "uppercase is rejected")
		assert.False(t, Validate("wagon:-leading", FamilyWagon), "must start with a letter")
		assert.False(t, Validate("wagon:", FamilyWagon))
		assert.False(t, Validate("feature:resolve-dilemmas", FamilyWagon), "family prefix must match")
	})

	t.Run("feature", func(t *testing.T) {
		assert.True(t, Validate("feature:maintain-ux:dark-mode", FamilyFeature))
		assert.False(t, Validate("feature:maintain-ux", FamilyFeature), "feature slug is required")
	})

	t.Run("wmbt", func(t *testing.T) {
		assert.True(t, Validate("wmbt:maintain-ux:C004", FamilyWMBT))
		assert.False(t, Validate("wmbt:maintain-ux:X004", FamilyWMBT), "X is not a step code")
		assert.False(t, Validate("wmbt:maintain-ux:C04", FamilyWMBT), "three digits required")
	})

	t.Run("acc", func(t *testing.T) {
		assert.True(t, Validate("acc:maintain-ux:C004-E2E-019-user-connection", FamilyAcc))
		assert.True(t, Validate("acc:maintain-ux:C004-E2E-019", FamilyAcc), "slug is optional")
		assert.False(t, Validate("acc:maintain-ux:C004-NOPE-019", FamilyAcc), "unknown harness")
	})

	t.Run("component", func(t *testing.T) {
		assert.True(t, Validate("component:mechanic:timebank:TimebankPanel:frontend:presentation", FamilyComponent))
		assert.True(t, Validate("component:trains:runner:TrainRunner:backend:assembly", FamilyComponent))
		assert.False(t, Validate("component:mechanic:timebank:TimebankPanel:sideways:presentation", FamilyComponent))
		assert.False(t, Validate("component:mechanic:timebank:TimebankPanel:frontend:basement", FamilyComponent))
	})

	t.Run("contract and telemetry", func(t *testing.T) {
		assert.True(t, Validate("contract:mechanic:timebank:remaining", FamilyContract))
		assert.True(t, Validate("contract:mechanic:timebank:remaining.v2", FamilyContract))
		assert.True(t, Validate("telemetry:mechanic:session:duration", FamilyTelemetry))
	})

	t.Run("train and migration", func(t *testing.T) {
		assert.True(t, Validate("train:0025-onboarding", FamilyTrain))
		assert.False(t, Validate("train:onboarding", FamilyTrain), "train id starts with NNNN-")
		assert.True(t, Validate("migration:20250101120000_create_timebank", FamilyMigration))
		assert.False(t, Validate("migration:2025_create_timebank", FamilyMigration), "timestamp must be 14 digits")
	})

	t.Run("test forms", func(t *testing.T) {
		assert.True(t, Validate("test:maintain-ux:dark-mode:C004-E2E-019-user-connection", FamilyTest), "acceptance form")
		assert.True(t, Validate("test:train:0025-onboarding:E2E-001-full-login-flow", FamilyTest), "journey form")
		assert.True(t, Validate("test:mechanic:timebank.remaining-panel", FamilyTest), "legacy dotted form")
	})

	t.Run("unknown family", func(t *testing.T) {
		assert.False(t, Validate("mystery:anything", "mystery"))
	})
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, "wagon", FamilyOf("wagon:resolve-dilemmas"))
	assert.Equal(t, "acc", FamilyOf("acc:maintain-ux:C004-E2E-019"))
	assert.Equal(t, "", FamilyOf("no-colon-here"))
}

func TestKnownFamily(t *testing.T) {
	for _, f := range Families() {
		assert.True(t, KnownFamily(f))
	}
	assert.False(t, KnownFamily("mystery"))
}
