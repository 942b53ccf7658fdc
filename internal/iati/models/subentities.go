package models

// SectorAllocation is one <sector> occurrence, at activity or transaction
// scope. Percentage is nil when the attribute is absent, which is distinct
// from an explicit zero.
type SectorAllocation struct {
	CodeRef
	Percentage *float64   `json:"percentage,omitempty"`
	Narratives Narratives `json:"narratives,omitempty"`
}

// CountryAllocation is one <recipient-country> occurrence.
type CountryAllocation struct {
	Code       string     `json:"code"`
	Percentage *float64   `json:"percentage,omitempty"`
	Narratives Narratives `json:"narratives,omitempty"`
}

// RegionAllocation is one <recipient-region> occurrence.
type RegionAllocation struct {
	CodeRef
	Percentage *float64   `json:"percentage,omitempty"`
	Narratives Narratives `json:"narratives,omitempty"`
}

// ParticipatingOrg is a <participating-org> or <reporting-org> reference.
type ParticipatingOrg struct {
	Ref        string     `json:"ref,omitempty"`
	Type       string     `json:"type,omitempty"`
	Role       string     `json:"role,omitempty"`
	ActivityID string     `json:"activity_id,omitempty"`
	Narratives Narratives `json:"narratives,omitempty"`
}

// Name returns the organisation's preferred narrative text.
func (o ParticipatingOrg) Name() string { return o.Narratives.Preferred("en") }

// TransactionParty is the provider-org or receiver-org of a transaction.
type TransactionParty struct {
	Ref                string     `json:"ref,omitempty"`
	Type               string     `json:"type,omitempty"`
	ProviderActivityID string     `json:"provider_activity_id,omitempty"`
	Narratives         Narratives `json:"narratives,omitempty"`
}

// Transaction is one <transaction> with its own allocations. The sector,
// country, region and aid-type children are slices because IATI allows them
// to repeat per transaction.
type Transaction struct {
	Ref          string `json:"ref,omitempty"`
	Type         string `json:"type"`
	Date         string `json:"date"`
	Value        float64 `json:"value"`
	Currency     string  `json:"currency,omitempty"`
	ValueDate    string  `json:"value_date,omitempty"`
	Humanitarian bool    `json:"humanitarian,omitempty"`

	Description Narratives        `json:"description,omitempty"`
	ProviderOrg *TransactionParty `json:"provider_org,omitempty"`
	ReceiverOrg *TransactionParty `json:"receiver_org,omitempty"`

	Sectors            []SectorAllocation  `json:"sectors,omitempty"`
	RecipientCountries []CountryAllocation `json:"recipient_countries,omitempty"`
	RecipientRegions   []RegionAllocation  `json:"recipient_regions,omitempty"`
	AidTypes           []CodeRef           `json:"aid_types,omitempty"`

	FlowType    string `json:"flow_type,omitempty"`
	FinanceType string `json:"finance_type,omitempty"`
	TiedStatus  string `json:"tied_status,omitempty"`
}

// Budget is one <budget> period.
type Budget struct {
	Type        string  `json:"type,omitempty"`
	Status      string  `json:"status,omitempty"`
	PeriodStart string  `json:"period_start"`
	PeriodEnd   string  `json:"period_end"`
	Value       float64 `json:"value"`
	Currency    string  `json:"currency,omitempty"`
	ValueDate   string  `json:"value_date,omitempty"`
}

// PlannedDisbursement is one <planned-disbursement> period.
type PlannedDisbursement struct {
	Type        string            `json:"type,omitempty"`
	PeriodStart string            `json:"period_start"`
	PeriodEnd   string            `json:"period_end"`
	Value       float64           `json:"value"`
	Currency    string            `json:"currency,omitempty"`
	ValueDate   string            `json:"value_date,omitempty"`
	ProviderOrg *TransactionParty `json:"provider_org,omitempty"`
	ReceiverOrg *TransactionParty `json:"receiver_org,omitempty"`
}

// LocationID is the gazetteer reference of a location.
type LocationID struct {
	Vocabulary string `json:"vocabulary,omitempty"`
	Code       string `json:"code,omitempty"`
}

// Location is one <location>.
type Location struct {
	Ref                string      `json:"ref,omitempty"`
	Reach              string      `json:"reach,omitempty"`
	ID                 *LocationID `json:"id,omitempty"`
	Name               Narratives  `json:"name,omitempty"`
	Description        Narratives  `json:"description,omitempty"`
	ActivityDesc       Narratives  `json:"activity_description,omitempty"`
	AdminVocabulary    string      `json:"admin_vocabulary,omitempty"`
	AdminLevel         string      `json:"admin_level,omitempty"`
	AdminCode          string      `json:"admin_code,omitempty"`
	PointLatitude      string      `json:"point_latitude,omitempty"`
	PointLongitude     string      `json:"point_longitude,omitempty"`
	Exactness          string      `json:"exactness,omitempty"`
	Class              string      `json:"class,omitempty"`
	FeatureDesignation string      `json:"feature_designation,omitempty"`
}

// Contact is one <contact-info>.
type Contact struct {
	Type           string     `json:"type,omitempty"`
	Organisation   Narratives `json:"organisation,omitempty"`
	Department     Narratives `json:"department,omitempty"`
	PersonName     Narratives `json:"person_name,omitempty"`
	JobTitle       Narratives `json:"job_title,omitempty"`
	Telephone      string     `json:"telephone,omitempty"`
	Email          string     `json:"email,omitempty"`
	Website        string     `json:"website,omitempty"`
	MailingAddress Narratives `json:"mailing_address,omitempty"`
}

// DocumentLink is one <document-link>.
type DocumentLink struct {
	URL          string     `json:"url"`
	Format       string     `json:"format,omitempty"`
	Title        Narratives `json:"title,omitempty"`
	Description  Narratives `json:"description,omitempty"`
	Categories   []string   `json:"categories,omitempty"`
	Languages    []string   `json:"languages,omitempty"`
	DocumentDate string     `json:"document_date,omitempty"`
}

// PolicyMarker is one <policy-marker>.
type PolicyMarker struct {
	CodeRef
	Significance string     `json:"significance,omitempty"`
	Narratives   Narratives `json:"narratives,omitempty"`
}

// Tag is one <tag>.
type Tag struct {
	CodeRef
	Narratives Narratives `json:"narratives,omitempty"`
}

// HumanitarianScope is one <humanitarian-scope>.
type HumanitarianScope struct {
	Type string `json:"type"`
	CodeRef
	Narratives Narratives `json:"narratives,omitempty"`
}

// Condition is a single condition attached to the activity.
type Condition struct {
	Type       string     `json:"type"`
	Narratives Narratives `json:"narratives,omitempty"`
}

// ConditionSet mirrors <conditions attached="...">; the attached flag is
// meaningful even when the list is empty.
type ConditionSet struct {
	Attached   bool        `json:"attached"`
	Conditions []Condition `json:"conditions,omitempty"`
}

// LoanTerms is the <loan-terms> block of <crs-add>.
type LoanTerms struct {
	Rate1              *float64 `json:"rate_1,omitempty"`
	Rate2              *float64 `json:"rate_2,omitempty"`
	RepaymentType      string   `json:"repayment_type,omitempty"`
	RepaymentPlan      string   `json:"repayment_plan,omitempty"`
	CommitmentDate     string   `json:"commitment_date,omitempty"`
	FirstRepaymentDate string   `json:"first_repayment_date,omitempty"`
	FinalRepaymentDate string   `json:"final_repayment_date,omitempty"`
}

// OtherFlag is one <other-flags> occurrence of <crs-add>.
type OtherFlag struct {
	Code        string `json:"code"`
	Significant bool   `json:"significant"`
}

// FinancingTerms is the <crs-add> element: CRS loan terms and flags.
type FinancingTerms struct {
	OtherFlags []OtherFlag `json:"other_flags,omitempty"`
	LoanTerms  *LoanTerms  `json:"loan_terms,omitempty"`
}

// RelatedActivity is one <related-activity> reference.
type RelatedActivity struct {
	Ref  string `json:"ref"`
	Type string `json:"type"`
}
