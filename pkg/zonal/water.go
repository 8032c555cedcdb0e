package zonal

import "github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"

// Water statistic keys.
const (
	WaterKey    = "WATER"
	NotWaterKey = "NOT_WATER"
	NoDataKey   = "NO_DATA"
)

// AggregateWaterStats folds per-geometry land cover counts into water,
// non-water and nodata pixel counts.
func AggregateWaterStats(counts []map[eligibility.LandCover]int) map[string][]int {
	out := map[string][]int{
		WaterKey:    make([]int, len(counts)),
		NotWaterKey: make([]int, len(counts)),
		NoDataKey:   make([]int, len(counts)),
	}
	water := make(map[eligibility.LandCover]bool, len(eligibility.Water))
	for _, c := range eligibility.Water {
		water[c] = true
	}
	for i, byClass := range counts {
		for class, n := range byClass {
			switch {
			case class == eligibility.LandCoverNoData:
				out[NoDataKey][i] += n
			case water[class]:
				out[WaterKey][i] += n
			default:
				out[NotWaterKey][i] += n
			}
		}
	}
	return out
}
