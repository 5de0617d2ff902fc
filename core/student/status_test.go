package student

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusStyles(t *testing.T) {
	styles := StatusStyles()
	assert.Len(t, styles, len(AllStatuses))

	// funnel order is preserved
	for i, status := range AllStatuses {
		assert.Equal(t, status, styles[i].Value)
	}

	colors := map[string]string{
		StatusNotStarted:         "muted",
		StatusWebsiteWorkStarted: "blue",
		StatusStoreReady:         "purple",
		StatusStartedSelling:     "amber",
		StatusScaling:            "green",
		StatusCompleted:          "emerald",
	}
	for _, style := range styles {
		assert.Equal(t, colors[style.Value], style.Color)
		assert.NotEmpty(t, style.Label)
	}
}

func TestStyleFor(t *testing.T) {
	assert.Equal(t, "Scaling", StyleFor(StatusScaling).Label)

	// unknown statuses render as "not started" instead of blowing up
	for _, status := range []string{"", "lol", "NOT_STARTED"} {
		assert.Equal(t, StyleFor(StatusNotStarted), StyleFor(status))
	}
}

func TestPlanByName(t *testing.T) {
	plan, ok := PlanByName("Starter Kit")
	assert.True(t, ok)
	assert.Equal(t, int64(6999), plan.Amount)

	_, ok = PlanByName("starter kit") // case-sensitive
	assert.False(t, ok)
}
