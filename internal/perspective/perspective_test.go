package perspective

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKindKnownIDs(t *testing.T) {
	for _, k := range All() {
		assert.Equal(t, k, ParseKind(k.ID()))
	}
}

func TestParseKindUnknownDefaultsToPreciseMatch(t *testing.T) {
	assert.Equal(t, PreciseMatch, ParseKind("balanced"))
	assert.Equal(t, PreciseMatch, ParseKind(""))
}

func TestKindIDOutOfRange(t *testing.T) {
	assert.Equal(t, "precise-match", Kind(-1).ID())
	assert.Equal(t, "precise-match", Kind(99).ID())
}

func TestDefaultSizes(t *testing.T) {
	assert.Equal(t, 10, Default(PreciseMatch).Size)
	assert.Equal(t, 20, Default(EnhancedRecall).Size)
	assert.Equal(t, 0, Default(StatisticalAnalysis).Size)
	assert.Equal(t, 0, Default(TimeSeries).Size)
}

func TestDefaultEnhancedRecallTuning(t *testing.T) {
	p := Default(EnhancedRecall)
	assert.Equal(t, "AUTO", p.Fuzziness)
	assert.Equal(t, "75%", p.MinimumShouldMatch)
	assert.True(t, p.BoostFields)
}

func TestDefaultsAreIndependentCopies(t *testing.T) {
	a := Default(PreciseMatch)
	a.Conventions[0] = "mutated"

	b := Default(PreciseMatch)
	assert.Equal(t, "message", b.Conventions[0])
}

func TestDefaultsOrder(t *testing.T) {
	set := Defaults()
	assert.Len(t, set, 4)
	assert.Equal(t, PreciseMatch, set[0].Kind)
	assert.Equal(t, TimeSeries, set[3].Kind)
}
