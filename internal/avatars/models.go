// internal/avatars/models.go
package avatars

import "encoding/json"

// Avatar is a synthesized customer persona produced by the upstream pipeline.
// Everything is optional: the pipeline's output schema drifts, so decoding
// tolerates missing fields and the raw payload is kept for passthrough.
type Avatar struct {
	Name         string                 `json:"name,omitempty"`
	Summary      string                 `json:"summary,omitempty"`
	Demographics Demographics           `json:"demographics,omitempty"`
	Pains        []string               `json:"pains,omitempty"`
	Desires      []string               `json:"desires,omitempty"`
	Objections   []string               `json:"objections,omitempty"`
	V2Data       *AvatarV2Data          `json:"v2_avatar_data,omitempty"`
	Raw          map[string]interface{} `json:"-"`
}

// UnmarshalJSON decodes the known fields and keeps the complete payload in
// Raw, so fields the pipeline adds before this model learns about them still
// round-trip through submission params.
func (a *Avatar) UnmarshalJSON(data []byte) error {
	type plain Avatar
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*a = Avatar(decoded)
	return json.Unmarshal(data, &a.Raw)
}

type Demographics struct {
	AgeRange   string `json:"ageRange,omitempty"`
	Gender     string `json:"gender,omitempty"`
	Location   string `json:"location,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Income     string `json:"income,omitempty"`
}

// AvatarV2Data is the nested second-generation persona payload.
type AvatarV2Data struct {
	CorePains      []TraitCluster `json:"corePains,omitempty"`
	CoreDesires    []TraitCluster `json:"coreDesires,omitempty"`
	BuyingTriggers []string       `json:"buyingTriggers,omitempty"`
	Narrative      string         `json:"narrative,omitempty"`
}

type TraitCluster struct {
	Label     string   `json:"label"`
	Intensity int      `json:"intensity,omitempty"`
	Quotes    []string `json:"quotes,omitempty"`
}

// MarketingAngle is one positioning strategy paired with an avatar.
type MarketingAngle struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Quotes   []string `json:"quotes,omitempty"`

	// 1-5 integer scales
	Urgency       int `json:"urgency"`
	Novelty       int `json:"novelty"`
	ProofStrength int `json:"proofStrength"`
	Fit           int `json:"fit"`
	LTV           int `json:"ltv"`

	OverallScore int `json:"overall_score"`
}
