package models

// Result is one <result> with its indicators.
type Result struct {
	Type              string      `json:"type"`
	AggregationStatus *bool       `json:"aggregation_status,omitempty"`
	Title             Narratives  `json:"title,omitempty"`
	Description       Narratives  `json:"description,omitempty"`
	Indicators        []Indicator `json:"indicators,omitempty"`
}

// Indicator is one <indicator> of a result.
type Indicator struct {
	Measure     string             `json:"measure"`
	Ascending   *bool              `json:"ascending,omitempty"`
	Title       Narratives         `json:"title,omitempty"`
	Description Narratives         `json:"description,omitempty"`
	Baseline    *IndicatorBaseline `json:"baseline,omitempty"`
	Periods     []IndicatorPeriod  `json:"periods,omitempty"`
}

// IndicatorBaseline is the <baseline> of an indicator.
type IndicatorBaseline struct {
	Year    string     `json:"year,omitempty"`
	Value   string     `json:"value,omitempty"`
	Comment Narratives `json:"comment,omitempty"`
}

// IndicatorPeriod is one reporting <period> of an indicator.
type IndicatorPeriod struct {
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	Target      string `json:"target,omitempty"`
	Actual      string `json:"actual,omitempty"`
}
