// internal/avatars/models_test.go
package avatars

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarDecode_ToleratesSparsePayloads(t *testing.T) {
	t.Run("full payload with v2 data", func(t *testing.T) {
		payload := `{
			"name": "Busy Professional",
			"summary": "Time-starved knowledge worker",
			"demographics": {"ageRange": "30-45", "occupation": "manager"},
			"pains": ["no time to cook"],
			"v2_avatar_data": {
				"corePains": [{"label": "time scarcity", "intensity": 4, "quotes": ["I never cook"]}],
				"buyingTriggers": ["payday"],
				"narrative": "Works late most days."
			}
		}`

		var a Avatar
		require.NoError(t, json.Unmarshal([]byte(payload), &a))
		assert.Equal(t, "Busy Professional", a.Name)
		assert.Equal(t, "30-45", a.Demographics.AgeRange)
		require.NotNil(t, a.V2Data)
		require.Len(t, a.V2Data.CorePains, 1)
		assert.Equal(t, 4, a.V2Data.CorePains[0].Intensity)
	})

	t.Run("minimal payload", func(t *testing.T) {
		var a Avatar
		require.NoError(t, json.Unmarshal([]byte(`{"name":"Bare"}`), &a))
		assert.Equal(t, "Bare", a.Name)
		assert.Nil(t, a.V2Data)
		assert.Empty(t, a.Pains)
	})

	t.Run("unknown fields survive in Raw", func(t *testing.T) {
		payload := `{
			"name": "Early Adopter",
			"psychographics": {"riskTolerance": "high"},
			"generation_batch": 7
		}`

		var a Avatar
		require.NoError(t, json.Unmarshal([]byte(payload), &a))
		assert.Equal(t, "Early Adopter", a.Name)

		require.NotNil(t, a.Raw)
		assert.Equal(t, "Early Adopter", a.Raw["name"])
		assert.Contains(t, a.Raw, "psychographics")
		assert.Equal(t, float64(7), a.Raw["generation_batch"])
	})
}

func TestMarketingAngleDecode(t *testing.T) {
	payload := `{
		"title": "Reclaim Your Evenings",
		"subtitle": "Dinner in ten minutes",
		"urgency": 4,
		"novelty": 3,
		"proofStrength": 2,
		"fit": 5,
		"ltv": 3,
		"overall_score": 4
	}`

	var angle MarketingAngle
	require.NoError(t, json.Unmarshal([]byte(payload), &angle))
	assert.Equal(t, "Reclaim Your Evenings", angle.Title)
	assert.Equal(t, 4, angle.Urgency)
	// The overall score arrives snake_cased from the pipeline.
	assert.Equal(t, 4, angle.OverallScore)
}
