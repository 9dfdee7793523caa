package governance

import (
	"context"
	"testing"

	"github.com/assayhq/assay/core/pkg/capabilities"
	"github.com/stretchr/testify/assert"
)

func TestEvolutionGovernance(t *testing.T) {
	gov := NewEvolutionGovernance()

	// C0/C1
	ok, _ := gov.EvaluateChange(context.Background(), ChangeClassC0, true)
	assert.True(t, ok)
	ok, _ = gov.EvaluateChange(context.Background(), ChangeClassC0, false)
	assert.False(t, ok)

	// C2
	ok, _ = gov.EvaluateChange(context.Background(), ChangeClassC2, true)
	assert.True(t, ok)
	ok, _ = gov.EvaluateChange(context.Background(), ChangeClassC2, false)
	assert.False(t, ok)

	// C3
	ok, _ = gov.EvaluateChange(context.Background(), ChangeClassC3, true)
	assert.False(t, ok) // Always manual

	// Unknown
	ok, _ = gov.EvaluateChange(context.Background(), "unknown", true)
	assert.False(t, ok)
}

func TestComputePowerDelta(t *testing.T) {
	existing := []capabilities.Capability{
		{ID: "cap-1", EffectClass: "E1"},
	}
	
	newModule := ModuleBundle{
		Capabilities: []capabilities.Capability{
			{ID: "cap-1", EffectClass: "E1"}, // Existing
			{ID: "cap-2", EffectClass: "E2"}, // New (+5)
			{ID: "cap-3", EffectClass: "E4"}, // New (+20)
		},
	}

	delta := ComputePowerDelta(existing, newModule)
	
	assert.Len(t, delta.NewCapabilities, 2)
	assert.Equal(t, 25, delta.RiskScoreDelta)
}
