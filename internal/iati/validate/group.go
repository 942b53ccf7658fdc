package validate

import (
	"math"

	"aims/internal/iati/models"
)

// PercentTolerance is how far an allocation group's percentage sum may drift
// from 100 before the group is rejected. Exact float equality would reject
// legitimate published data (e.g. three 33.33 shares), so the comparison is
// banded. Confirmed against nothing stronger than common registry practice;
// kept as a single constant so a standards ruling changes one line.
const PercentTolerance = 0.01

// PercentageSum enforces the allocation invariant over one sibling group:
// the percentages must total 100 within tolerance, or the group must carry no
// percentages at all (a lone unpercentaged allocation implicitly takes 100%).
// An empty group always passes.
func PercentageSum(label string, percentages []*float64) Outcome {
	var o Outcome
	if len(percentages) == 0 {
		return o
	}

	var sum float64
	declared := 0
	for _, p := range percentages {
		if p == nil {
			continue
		}
		if math.IsNaN(*p) {
			o.errorf("%s group contains an unreadable percentage", label)
			return o
		}
		declared++
		sum += *p
	}
	if declared == 0 {
		return o
	}
	if declared < len(percentages) {
		o.warnf("%s group mixes allocations with and without percentages; missing ones count as 0", label)
	}
	if math.Abs(sum-100) > PercentTolerance {
		o.errorf("%s percentages sum to %g, expected 100", label, sum)
	}
	return o
}

// SectorGroups buckets sector allocations by vocabulary before applying the
// percentage-sum rule: IATI permits a full 100% allocation per vocabulary in
// parallel, so summing across vocabularies would reject valid documents.
func SectorGroups(sectors []models.SectorAllocation) Outcome {
	var o Outcome
	byVocab := make(map[string][]*float64)
	order := make([]string, 0, 2)
	for _, s := range sectors {
		if _, seen := byVocab[s.Vocabulary]; !seen {
			order = append(order, s.Vocabulary)
		}
		byVocab[s.Vocabulary] = append(byVocab[s.Vocabulary], s.Percentage)
	}
	for _, vocab := range order {
		res := PercentageSum("sector (vocabulary "+vocab+")", byVocab[vocab])
		o.Errors = append(o.Errors, res.Errors...)
		o.Warnings = append(o.Warnings, res.Warnings...)
	}
	return o
}

// CountryRegionExclusion enforces that recipient-country and recipient-region
// never appear together at the same scope.
func CountryRegionExclusion(countries []models.CountryAllocation, regions []models.RegionAllocation) Outcome {
	var o Outcome
	if len(countries) > 0 && len(regions) > 0 {
		o.errorf("recipient-country and recipient-region are mutually exclusive at the same scope")
	}
	return o
}

// CountryPercentages adapts country allocations for PercentageSum.
func CountryPercentages(countries []models.CountryAllocation) []*float64 {
	out := make([]*float64, len(countries))
	for i := range countries {
		out[i] = countries[i].Percentage
	}
	return out
}

// RegionPercentages adapts region allocations for PercentageSum.
func RegionPercentages(regions []models.RegionAllocation) []*float64 {
	out := make([]*float64, len(regions))
	for i := range regions {
		out[i] = regions[i].Percentage
	}
	return out
}
