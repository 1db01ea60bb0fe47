package urn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "maintain-ux", NormalizeID("Maintain_UX"))
	assert.Equal(t, "a-b-c", NormalizeID("a  b--c"))
	assert.Equal(t, "trimmed", NormalizeID("--trimmed--"))
}

func TestWagon(t *testing.T) {
	u, err := Wagon("Resolve Dilemmas")
	require.NoError(t, err)
	assert.Equal(t, "wagon:resolve-dilemmas", u)

	_, err = Wagon("9lives")
	assert.Error(t, err, "must start with a letter")
}

func TestFeature(t *testing.T) {
	u, err := Feature("maintain-ux", "Dark Mode")
	require.NoError(t, err)
	assert.Equal(t, "feature:maintain-ux:dark-mode", u)
}

func TestWMBT(t *testing.T) {
	u, err := WMBT("maintain-ux", "c004")
	require.NoError(t, err)
	assert.Equal(t, "wmbt:maintain-ux:C004", u)

	_, err = WMBT("maintain-ux", "X004")
	assert.Error(t, err, "X is not a step code")
}

func TestAcceptanceRoundTrip(t *testing.T) {
	u, err := Acceptance("maintain-ux", "C004", "E2E", 19, "user-connection")
	require.NoError(t, err)
	require.Equal(t, "acc:maintain-ux:C004-E2E-019-user-connection", u)

	p, err := Parse(u)
	require.NoError(t, err)
	assert.Equal(t, FamilyAcc, p.Family)
	assert.Equal(t, "maintain-ux", p.Wagon)
	assert.Equal(t, "C004", p.WMBTID)
	assert.Equal(t, "E2E", p.Harness)
	assert.Equal(t, "019", p.Sequence)
	assert.Equal(t, "user-connection", p.Slug)
}

func TestAcceptanceRejects(t *testing.T) {
	_, err := Acceptance("maintain-ux", "C004", "NOPE", 19, "slug")
	assert.Error(t, err, "unknown harness")

	_, err = Acceptance("maintain-ux", "C004", "E2E", 0, "slug")
	assert.Error(t, err, "sequence must be positive")

	_, err = Acceptance("maintain-ux", "C004", "E2E", 1000, "slug")
	assert.Error(t, err, "sequence capped at 999")
}

func TestComponent(t *testing.T) {
	u, err := Component("mechanic", "timebank", "TimebankPanel", "frontend", "presentation")
	require.NoError(t, err)
	assert.Equal(t, "component:mechanic:timebank:TimebankPanel:frontend:presentation", u)

	t.Run("trains components must be assembly", func(t *testing.T) {
		_, err := Component("trains", "runner", "TrainRunner", "backend", "domain")
		assert.Error(t, err)

		u, err := Component("trains", "runner", "TrainRunner", "backend", "assembly")
		require.NoError(t, err)
		assert.Equal(t, "component:trains:runner:TrainRunner:backend:assembly", u)
	})
}

func TestContractAndTelemetry(t *testing.T) {
	u, err := Contract("mechanic", []string{"timebank", "remaining"}, "")
	require.NoError(t, err)
	assert.Equal(t, "contract:mechanic:timebank:remaining", u)

	u, err = Contract("mechanic", []string{"timebank", "remaining"}, "v2")
	require.NoError(t, err)
	assert.Equal(t, "contract:mechanic:timebank:remaining.v2", u)

	u, err = Telemetry("mechanic", []string{"session", "duration"}, "")
	require.NoError(t, err)
	assert.Equal(t, "telemetry:mechanic:session:duration", u)
}

func TestTrain(t *testing.T) {
	u, err := Train("0025-onboarding")
	require.NoError(t, err)
	assert.Equal(t, "train:0025-onboarding", u)

	_, err = Train("onboarding")
	assert.Error(t, err, "train id must start with NNNN-")
}

func TestTestBuilders(t *testing.T) {
	u, err := TestAcceptance("maintain-ux", "dark-mode", "C004", "E2E", "19", "user-connection")
	require.NoError(t, err)
	assert.Equal(t, "test:maintain-ux:dark-mode:C004-E2E-019-user-connection", u)

	u, err = TestJourney("0025-onboarding", "E2E", "1", "full-login-flow")
	require.NoError(t, err)
	assert.Equal(t, "test:train:0025-onboarding:E2E-001-full-login-flow", u)
}

func TestNormalizeStep(t *testing.T) {
	for in, want := range map[string]string{
		"D": "D", "d": "D", "define": "D", "locate": "L", "conclude": "K",
	} {
		got, err := NormalizeStep(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := NormalizeStep("q")
	assert.Error(t, err)
}

func TestStepFromID(t *testing.T) {
	name, err := StepFromID("C004")
	require.NoError(t, err)
	assert.Equal(t, StepLegend["C"], name)
}

func TestParseSequence(t *testing.T) {
	got, err := ParseSequence("7")
	require.NoError(t, err)
	assert.Equal(t, "007", got)

	_, err = ParseSequence("1234")
	assert.Error(t, err)
}
