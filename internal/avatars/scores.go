// internal/avatars/scores.go
package avatars

// ScoreDescription is the qualitative rendering of a 1-5 score.
type ScoreDescription struct {
	Level       string `json:"level"`
	Description string `json:"description"`
}

// Metric names the scored dimensions of a marketing angle.
type Metric string

const (
	MetricUrgency       Metric = "urgency"
	MetricNovelty       Metric = "novelty"
	MetricProofStrength Metric = "proofStrength"
	MetricFit           Metric = "fit"
	MetricLTV           Metric = "ltv"
)

// The tables are total over 1-5; anything else falls through to Unknown.
var urgencyDescriptions = map[int]ScoreDescription{
	1: {Level: "Low", Description: "Audience feels no time pressure; the problem is a background annoyance."},
	2: {Level: "Mild", Description: "The problem surfaces occasionally but rarely drives action."},
	3: {Level: "Moderate", Description: "The problem interferes with daily life often enough to prompt research."},
	4: {Level: "High", Description: "Audience is actively seeking a solution and comparing options now."},
	5: {Level: "Critical", Description: "The pain is acute; audience will act on the first credible offer."},
}

var noveltyDescriptions = map[int]ScoreDescription{
	1: {Level: "Saturated", Description: "The angle repeats claims the audience has seen many times."},
	2: {Level: "Familiar", Description: "A common framing with a small twist."},
	3: {Level: "Fresh", Description: "A framing most of the audience has not encountered recently."},
	4: {Level: "Distinctive", Description: "A clearly differentiated mechanism or story."},
	5: {Level: "Breakthrough", Description: "A genuinely new claim or mechanism for this market."},
}

var proofDescriptions = map[int]ScoreDescription{
	1: {Level: "Unsupported", Description: "No evidence available beyond assertion."},
	2: {Level: "Anecdotal", Description: "Isolated testimonials or self-reported outcomes."},
	3: {Level: "Credible", Description: "Consistent testimonials plus some demonstrable results."},
	4: {Level: "Strong", Description: "Data, demonstrations, or third-party validation back the claim."},
	5: {Level: "Irrefutable", Description: "Overwhelming, independently verifiable evidence."},
}

var fitDescriptions = map[int]ScoreDescription{
	1: {Level: "Poor", Description: "The angle barely connects to this persona's stated pains."},
	2: {Level: "Weak", Description: "Partial overlap with the persona's priorities."},
	3: {Level: "Good", Description: "The angle addresses several of the persona's core pains."},
	4: {Level: "Strong", Description: "The angle speaks directly to the persona's dominant pain."},
	5: {Level: "Perfect", Description: "The angle mirrors the persona's own language and priorities."},
}

var ltvDescriptions = map[int]ScoreDescription{
	1: {Level: "One-off", Description: "Buyers acquired through this angle rarely purchase again."},
	2: {Level: "Low", Description: "Limited repeat-purchase potential."},
	3: {Level: "Average", Description: "Typical retention for this market."},
	4: {Level: "High", Description: "Buyers tend to repurchase or upgrade."},
	5: {Level: "Compounding", Description: "The angle attracts the market's highest-retention segment."},
}

var metricTables = map[Metric]map[int]ScoreDescription{
	MetricUrgency:       urgencyDescriptions,
	MetricNovelty:       noveltyDescriptions,
	MetricProofStrength: proofDescriptions,
	MetricFit:           fitDescriptions,
	MetricLTV:           ltvDescriptions,
}

// DescribeScore maps a metric score to its qualitative label. The table is
// total for inputs 1-5 inclusive; any other input, and any unknown metric,
// returns {Unknown, ""}.
func DescribeScore(metric Metric, score int) ScoreDescription {
	if table, ok := metricTables[metric]; ok {
		if desc, ok := table[score]; ok {
			return desc
		}
	}
	return ScoreDescription{Level: "Unknown", Description: ""}
}
