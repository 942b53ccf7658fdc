// Package codelists holds the IATI controlled vocabularies the import
// pipeline resolves codes against. Registries are plain maps initialized at
// package load and never mutated afterwards, so they are safe to share across
// concurrent parses.
//
// Only the subset of each codelist the pipeline needs is carried; lookups on
// codes outside the subset simply report the code as unknown. Extending a
// registry is a data change, not a code change.
package codelists

// Vocabulary identifiers the parser and validators branch on.
const (
	SectorVocabularyDAC5 = "1" // OECD DAC CRS purpose codes, 5 digit
	SectorVocabularyDAC3 = "2" // OECD DAC CRS purpose codes, 3 digit

	DefaultSectorVocabulary = SectorVocabularyDAC5
	DefaultRegionVocabulary = "1" // OECD DAC region codes
	DefaultAidVocabulary    = "1" // OECD DAC aid type
	DefaultLanguage         = "en"
)

var organisationTypes = map[string]string{
	"10": "Government",
	"11": "Local Government",
	"15": "Other Public Sector",
	"21": "International NGO",
	"22": "National NGO",
	"23": "Regional NGO",
	"24": "Partner Country based NGO",
	"30": "Public Private Partnership",
	"40": "Multilateral",
	"60": "Foundation",
	"70": "Private Sector",
	"71": "Private Sector in Provider Country",
	"72": "Private Sector in Aid Recipient Country",
	"73": "Private Sector in Third Country",
	"80": "Academic, Training and Research",
	"90": "Other",
}

var organisationRoles = map[string]string{
	"1": "Funding",
	"2": "Accountable",
	"3": "Extending",
	"4": "Implementing",
}

var activityStatuses = map[string]string{
	"1": "Pipeline/identification",
	"2": "Implementation",
	"3": "Finalisation",
	"4": "Closed",
	"5": "Cancelled",
	"6": "Suspended",
}

var transactionTypes = map[string]string{
	"1":  "Incoming Funds",
	"2":  "Outgoing Commitment",
	"3":  "Disbursement",
	"4":  "Expenditure",
	"5":  "Interest Payment",
	"6":  "Loan Repayment",
	"7":  "Reimbursement",
	"8":  "Purchase of Equity",
	"9":  "Sale of Equity",
	"10": "Credit Guarantee",
	"11": "Incoming Commitment",
	"12": "Outgoing Pledge",
	"13": "Incoming Pledge",
}

var aidTypes = map[string]string{
	"A01": "General budget support",
	"A02": "Sector budget support",
	"B01": "Core support to NGOs and other private bodies",
	"B02": "Core contributions to multilateral institutions",
	"B03": "Contributions to pooled programmes and funds",
	"B04": "Basket funds/pooled funding",
	"C01": "Project-type interventions",
	"D01": "Donor country personnel",
	"D02": "Other technical assistance",
	"E01": "Scholarships/training in donor country",
	"E02": "Imputed student costs",
	"F01": "Debt relief",
	"G01": "Administrative costs not included elsewhere",
	"H01": "Development awareness",
	"H02": "Refugees/asylum seekers in donor countries",
}

var flowTypes = map[string]string{
	"10": "ODA",
	"20": "OOF",
	"21": "Non-export credit OOF",
	"22": "Officially supported export credits",
	"30": "Private Development Finance",
	"35": "Private Market",
	"36": "Private Foreign Direct Investment",
	"37": "Other Private flows at market terms",
	"40": "Non flow",
	"50": "Other flows",
}

var financeTypes = map[string]string{
	"100":  "Grant",
	"110":  "Standard grant",
	"210":  "Standard loan",
	"310":  "Capital subscription on deposit basis",
	"311":  "Capital subscription on encashment basis",
	"410":  "Aid loan excluding debt reorganisation",
	"421":  "Reimbursable grant",
	"510":  "Common equity",
	"520":  "Shares in collective investment vehicles",
	"610":  "Debt forgiveness: ODA claims (P)",
	"620":  "Debt rescheduling: ODA claims (P)",
	"700":  "Foreign direct investment",
	"1100": "Guarantees/insurance",
}

var tiedStatuses = map[string]string{
	"3": "Partially tied",
	"4": "Tied",
	"5": "Untied",
}

var budgetTypes = map[string]string{
	"1": "Original",
	"2": "Revised",
}

var budgetStatuses = map[string]string{
	"1": "Indicative",
	"2": "Committed",
}

var sectorVocabularies = map[string]string{
	"1":  "OECD DAC CRS Purpose Codes (5 digit)",
	"2":  "OECD DAC CRS Purpose Codes (3 digit)",
	"3":  "Classification of the Functions of Government (UN)",
	"4":  "Statistical classification of economic activities in the EC",
	"5":  "National Taxonomy for Exempt Entities (USA)",
	"6":  "AidData",
	"7":  "SDG Goal",
	"8":  "SDG Target",
	"9":  "SDG Indicator",
	"10": "Humanitarian Global Clusters",
	"11": "North American Industry Classification System (NAICS)",
	"12": "UN Sustainable Development Cooperation Framework",
	"98": "Reporting Organisation 2",
	"99": "Reporting Organisation",
}

var regionVocabularies = map[string]string{
	"1":  "OECD DAC",
	"2":  "UN",
	"99": "Reporting Organisation",
}

var policyMarkers = map[string]string{
	"1":  "Gender Equality",
	"2":  "Aid to Environment",
	"3":  "Participatory Development/Good Governance",
	"4":  "Trade Development",
	"5":  "Biological Diversity",
	"6":  "Climate Change - Mitigation",
	"7":  "Climate Change - Adaptation",
	"8":  "Desertification",
	"9":  "Reproductive, Maternal, Newborn and Child Health",
	"10": "Disaster Risk Reduction",
	"11": "Disability",
	"12": "Nutrition",
}

var policySignificances = map[string]string{
	"0": "Not targeted",
	"1": "Significant objective",
	"2": "Principal objective",
	"3": "Principal objective AND in support of an action programme",
	"4": "Explicit primary objective",
}

var locationReaches = map[string]string{
	"1": "Activity",
	"2": "Intended Beneficiaries",
}

var locationClasses = map[string]string{
	"1": "Administrative Region",
	"2": "Populated Place",
	"3": "Structure",
	"4": "Site",
	"5": "Other Topographical Feature",
}

var locationExactnesses = map[string]string{
	"1": "Exact",
	"2": "Approximate",
	"3": "Extrapolated",
}

var documentCategories = map[string]string{
	"A01": "Pre- and post-project impact appraisal",
	"A02": "Objectives / Purpose of activity",
	"A03": "Intended ultimate beneficiaries",
	"A04": "Conditions",
	"A05": "Budget",
	"A06": "Summary information about contract",
	"A07": "Review of project performance and evaluation",
	"A08": "Results, outcomes and outputs",
	"A09": "Memorandum of understanding",
	"A10": "Tender",
	"A11": "Contract",
	"A12": "Activity web page",
	"B01": "Annual report",
	"B02": "Institutional Strategy paper",
	"B03": "Country strategy paper",
	"B04": "Aid Allocation Policy",
	"B05": "Procurement Policy and Procedure",
}

var conditionTypes = map[string]string{
	"1": "Policy",
	"2": "Performance",
	"3": "Fiduciary",
}

var contactTypes = map[string]string{
	"1": "General Enquiries",
	"2": "Project Management",
	"3": "Financial Management",
	"4": "Communications",
}

var humanitarianScopeTypes = map[string]string{
	"1": "Emergency",
	"2": "Appeal",
}

var relatedActivityTypes = map[string]string{
	"1": "Parent",
	"2": "Child",
	"3": "Sibling",
	"4": "Co-funded",
	"5": "Third Party",
}

var resultTypes = map[string]string{
	"1": "Output",
	"2": "Outcome",
	"3": "Impact",
	"9": "Other",
}

var indicatorMeasures = map[string]string{
	"1": "Unit",
	"2": "Percentage",
	"3": "Nominal",
	"4": "Ordinal",
	"5": "Qualitative",
}

var tagVocabularies = map[string]string{
	"1":  "Agrovoc",
	"2":  "UN Sustainable Development Goals (SDG)",
	"3":  "UN Sustainable Development Goals (SDG) Targets",
	"99": "Reporting Organisation",
}

func lookup(m map[string]string, code string) (string, bool) {
	name, ok := m[code]
	return name, ok
}

func OrganisationType(code string) (string, bool)    { return lookup(organisationTypes, code) }
func OrganisationRole(code string) (string, bool)    { return lookup(organisationRoles, code) }
func ActivityStatus(code string) (string, bool)      { return lookup(activityStatuses, code) }
func TransactionType(code string) (string, bool)     { return lookup(transactionTypes, code) }
func AidType(code string) (string, bool)             { return lookup(aidTypes, code) }
func FlowType(code string) (string, bool)            { return lookup(flowTypes, code) }
func FinanceType(code string) (string, bool)         { return lookup(financeTypes, code) }
func TiedStatus(code string) (string, bool)          { return lookup(tiedStatuses, code) }
func BudgetType(code string) (string, bool)          { return lookup(budgetTypes, code) }
func BudgetStatus(code string) (string, bool)        { return lookup(budgetStatuses, code) }
func SectorVocabulary(code string) (string, bool)    { return lookup(sectorVocabularies, code) }
func RegionVocabulary(code string) (string, bool)    { return lookup(regionVocabularies, code) }
func PolicyMarker(code string) (string, bool)        { return lookup(policyMarkers, code) }
func PolicySignificance(code string) (string, bool)  { return lookup(policySignificances, code) }
func LocationReach(code string) (string, bool)       { return lookup(locationReaches, code) }
func LocationClass(code string) (string, bool)       { return lookup(locationClasses, code) }
func LocationExactness(code string) (string, bool)   { return lookup(locationExactnesses, code) }
func DocumentCategory(code string) (string, bool)    { return lookup(documentCategories, code) }
func ConditionType(code string) (string, bool)       { return lookup(conditionTypes, code) }
func ContactType(code string) (string, bool)         { return lookup(contactTypes, code) }
func HumanitarianScope(code string) (string, bool)   { return lookup(humanitarianScopeTypes, code) }
func RelatedActivityType(code string) (string, bool) { return lookup(relatedActivityTypes, code) }
func ResultType(code string) (string, bool)          { return lookup(resultTypes, code) }
func IndicatorMeasure(code string) (string, bool)    { return lookup(indicatorMeasures, code) }
func TagVocabulary(code string) (string, bool)       { return lookup(tagVocabularies, code) }

// MapOrganisationType folds an IATI organisation type code onto the coarse
// AIMS organisation categories used by the persisted model.
func MapOrganisationType(code string) string {
	switch code {
	case "10", "11", "15":
		return "government"
	case "21":
		return "ingo"
	case "22", "23", "24":
		return "ngo"
	case "30", "40":
		return "multilateral"
	case "60", "70", "71", "72", "73":
		return "private"
	case "80":
		return "academic"
	default:
		return "other"
	}
}
