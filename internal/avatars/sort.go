// internal/avatars/sort.go
package avatars

import "sort"

// SortAnglesByScore returns a copy of angles ordered by overall score
// descending. The sort is stable: two angles with equal score keep their
// original relative order.
func SortAnglesByScore(angles []MarketingAngle) []MarketingAngle {
	sorted := make([]MarketingAngle, len(angles))
	copy(sorted, angles)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OverallScore > sorted[j].OverallScore
	})

	return sorted
}
