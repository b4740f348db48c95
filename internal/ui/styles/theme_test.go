package styles

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentWidth(t *testing.T) {
	assert.Equal(t, 60, ContentWidth(60))
	assert.Equal(t, MaxWidth, ContentWidth(200))
}

func TestTierColorsAreDistinct(t *testing.T) {
	seen := map[string]ProgressTier{}
	for _, tier := range []ProgressTier{ProgressNeutral, ProgressWarning, ProgressInProgress, ProgressComplete} {
		c := string(tier.Color())
		_, dup := seen[c]
		assert.False(t, dup, "tier %s reuses color %s", tier, c)
		seen[c] = tier
	}
}

func TestProgressBarWidth(t *testing.T) {
	for _, pct := range []float64{-5, 0, 33.3, 50, 100, 140} {
		bar := ProgressBar(pct, 10, ProgressInProgress)
		cells := strings.Count(bar, "█") + strings.Count(bar, "░")
		assert.Equal(t, 10, cells, "percentage %v", pct)
	}

	assert.Equal(t, 5, strings.Count(ProgressBar(50, 10, ProgressInProgress), "█"))
	assert.Equal(t, 0, strings.Count(ProgressBar(0, 10, ProgressNeutral), "█"))
	assert.Equal(t, 10, strings.Count(ProgressBar(100, 10, ProgressComplete), "█"))
}
