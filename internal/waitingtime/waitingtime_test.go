package waitingtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedianOfEmptyIsZero(t *testing.T) {
	e := New()
	assert.Equal(t, int64(0), e.Median("QuickMatch"))
}

func TestMedianOddCount(t *testing.T) {
	e := New()
	e.Observe("QuickMatch", 10)
	e.Observe("QuickMatch", 5)
	e.Observe("QuickMatch", 20)
	assert.Equal(t, int64(10), e.Median("QuickMatch"))
}

func TestBoundedAtTenSamples(t *testing.T) {
	e := New()
	for i := int64(1); i <= 15; i++ {
		e.Observe("QuickMatch", i)
	}
	assert.Len(t, e.samples["QuickMatch"], MaxSamples)
	// Most recent 10 observations are 6..15.
	assert.Equal(t, int64(15), e.samples["QuickMatch"][0])
}

func TestResetWipesAllModes(t *testing.T) {
	e := New()
	e.Observe("QuickMatch", 10)
	e.Observe("Ranked", 20)
	e.Reset()
	assert.Equal(t, int64(0), e.Median("QuickMatch"))
	assert.Empty(t, e.GameModes())
}
