package models

// Importable field identifiers. These are the stable ids the diff stage keys
// its descriptors by and the merge stage accepts; they never change once
// published because reviewers' saved selections reference them.
const (
	FieldTitle              = "title"
	FieldDescription        = "description"
	FieldStatus             = "activity_status"
	FieldPlannedStart       = "planned_start"
	FieldActualStart        = "actual_start"
	FieldPlannedEnd         = "planned_end"
	FieldActualEnd          = "actual_end"
	FieldDefaultCurrency    = "default_currency"
	FieldDefaultAidType     = "default_aid_type"
	FieldDefaultFlowType    = "default_flow_type"
	FieldDefaultFinanceType = "default_finance_type"
	FieldDefaultTiedStatus  = "default_tied_status"

	FieldSectors            = "sectors"
	FieldRecipientCountries = "recipient_countries"
	FieldRecipientRegions   = "recipient_regions"
	FieldParticipatingOrgs  = "participating_orgs"
	FieldTransactions       = "transactions"
	FieldBudgets            = "budgets"
	FieldDisbursements      = "planned_disbursements"
	FieldLocations          = "locations"
	FieldContacts           = "contacts"
	FieldDocuments          = "documents"
	FieldPolicyMarkers      = "policy_markers"
	FieldTags               = "tags"
	FieldHumanitarianScopes = "humanitarian_scopes"
	FieldRelatedActivities  = "related_activities"
	FieldConditions         = "conditions"
	FieldFinancingTerms     = "financing_terms"
	FieldResults            = "results"
)

// ScalarFields lists the activity-level scalar field ids in display order.
var ScalarFields = []string{
	FieldTitle,
	FieldDescription,
	FieldStatus,
	FieldPlannedStart,
	FieldActualStart,
	FieldPlannedEnd,
	FieldActualEnd,
	FieldDefaultCurrency,
	FieldDefaultAidType,
	FieldDefaultFlowType,
	FieldDefaultFinanceType,
	FieldDefaultTiedStatus,
}

// CollectionFields lists the collection-valued field ids in display order.
var CollectionFields = []string{
	FieldSectors,
	FieldRecipientCountries,
	FieldRecipientRegions,
	FieldParticipatingOrgs,
	FieldTransactions,
	FieldBudgets,
	FieldDisbursements,
	FieldLocations,
	FieldContacts,
	FieldDocuments,
	FieldPolicyMarkers,
	FieldTags,
	FieldHumanitarianScopes,
	FieldRelatedActivities,
	FieldConditions,
	FieldFinancingTerms,
	FieldResults,
}
