package models

// ParsedActivity is the typed intermediate representation of one
// <iati-activity> element. It is produced once per parse, never mutated
// afterwards, and owned exclusively by the pipeline run that created it.
//
// Every repeatable IATI element is a slice here even when publishers usually
// emit a single occurrence; assigning repeatable elements to scalar slots is
// how data silently went missing before, so the IR forbids it structurally.
type ParsedActivity struct {
	IATIIdentifier string `json:"iati_identifier"`
	LastUpdated    string `json:"last_updated,omitempty"`
	Language       string `json:"language,omitempty"`
	Humanitarian   bool   `json:"humanitarian,omitempty"`

	ReportingOrg *ParticipatingOrg `json:"reporting_org,omitempty"`

	Title       Narratives `json:"title,omitempty"`
	Description Narratives `json:"description,omitempty"`

	Status string `json:"activity_status,omitempty"`

	// Activity date codes per the IATI ActivityDateType codelist:
	// 1 planned start, 2 actual start, 3 planned end, 4 actual end.
	PlannedStart string `json:"planned_start,omitempty"`
	ActualStart  string `json:"actual_start,omitempty"`
	PlannedEnd   string `json:"planned_end,omitempty"`
	ActualEnd    string `json:"actual_end,omitempty"`

	Defaults ActivityDefaults `json:"defaults"`

	Sectors            []SectorAllocation    `json:"sectors,omitempty"`
	RecipientCountries []CountryAllocation   `json:"recipient_countries,omitempty"`
	RecipientRegions   []RegionAllocation    `json:"recipient_regions,omitempty"`
	ParticipatingOrgs  []ParticipatingOrg    `json:"participating_orgs,omitempty"`
	Transactions       []Transaction         `json:"transactions,omitempty"`
	Budgets            []Budget              `json:"budgets,omitempty"`
	Disbursements      []PlannedDisbursement `json:"planned_disbursements,omitempty"`
	Locations          []Location            `json:"locations,omitempty"`
	Contacts           []Contact             `json:"contacts,omitempty"`
	Documents          []DocumentLink        `json:"documents,omitempty"`
	PolicyMarkers      []PolicyMarker        `json:"policy_markers,omitempty"`
	Tags               []Tag                 `json:"tags,omitempty"`
	HumanitarianScopes []HumanitarianScope   `json:"humanitarian_scopes,omitempty"`
	RelatedActivities  []RelatedActivity     `json:"related_activities,omitempty"`
	Conditions         *ConditionSet         `json:"conditions,omitempty"`
	FinancingTerms     *FinancingTerms       `json:"financing_terms,omitempty"`
	Results            []Result              `json:"results,omitempty"`
}

// ActivityDefaults carries activity-level defaults that cascade onto
// sub-entities which omit the corresponding attribute.
type ActivityDefaults struct {
	Currency    string `json:"currency,omitempty"`
	AidType     string `json:"aid_type,omitempty"`
	FlowType    string `json:"flow_type,omitempty"`
	FinanceType string `json:"finance_type,omitempty"`
	TiedStatus  string `json:"tied_status,omitempty"`
}
