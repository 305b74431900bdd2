package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPricingTiers(t *testing.T) {
	tiers := PricingTiers()
	require.Len(t, tiers, 4)

	names := make([]string, 0, len(tiers))
	popular := 0
	for _, tier := range tiers {
		names = append(names, tier.Name)
		assert.NotEmpty(t, tier.Price)
		assert.NotEmpty(t, tier.Messages)
		assert.NotEmpty(t, tier.Features)
		if tier.Popular {
			popular++
		}
	}
	assert.Equal(t, []string{"Free", "Starter", "Pro", "Max"}, names)
	assert.Equal(t, 1, popular)
	assert.Equal(t, "Pro", tiers[2].Name)
	assert.True(t, tiers[2].Popular)
}
