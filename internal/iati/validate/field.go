package validate

import (
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"aims/internal/iati/codelists"
	"aims/internal/iati/models"
)

// maxPeriodDays is the longest span a period-bounded sub-entity may cover.
// IATI caps budget and disbursement periods at one year; 366 admits leap
// years.
const maxPeriodDays = 366

var (
	digitsRe = regexp.MustCompile(`^[0-9]+$`)
	emailRe  = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	countryRe = regexp.MustCompile(`^[A-Z]{2}$`)
)

// Sector validates one sector allocation. The accepted lexical shape of the
// code depends on the declared vocabulary: 5 digits under the DAC-5 scheme,
// 3 digits under DAC-3, free-form under reporting-organisation vocabularies.
func Sector(s models.SectorAllocation) Outcome {
	var o Outcome
	if s.Code == "" {
		o.errorf("sector code is required")
		return o
	}
	if _, known := codelists.SectorVocabulary(s.Vocabulary); !known {
		o.warnf("sector vocabulary %q is not a known IATI vocabulary", s.Vocabulary)
	}
	switch s.Vocabulary {
	case codelists.SectorVocabularyDAC5:
		if !digitsRe.MatchString(s.Code) || len(s.Code) != 5 {
			o.errorf("sector code %q must be a 5-digit DAC CRS purpose code under vocabulary 1", s.Code)
		}
	case codelists.SectorVocabularyDAC3:
		if !digitsRe.MatchString(s.Code) || len(s.Code) != 3 {
			o.errorf("sector code %q must be a 3-digit DAC category code under vocabulary 2", s.Code)
		}
	}
	percentageInRange(&o, "sector", s.Percentage)
	return o
}

// Country validates one recipient-country allocation.
func Country(c models.CountryAllocation) Outcome {
	var o Outcome
	if c.Code == "" {
		o.errorf("recipient-country code is required")
	} else if !countryRe.MatchString(c.Code) {
		o.errorf("recipient-country code %q is not an ISO 3166-1 alpha-2 code", c.Code)
	}
	percentageInRange(&o, "recipient-country", c.Percentage)
	return o
}

// Region validates one recipient-region allocation.
func Region(r models.RegionAllocation) Outcome {
	var o Outcome
	if r.Code == "" {
		o.errorf("recipient-region code is required")
	} else if r.Vocabulary == codelists.DefaultRegionVocabulary && !digitsRe.MatchString(r.Code) {
		o.errorf("recipient-region code %q must be numeric under the OECD DAC vocabulary", r.Code)
	}
	if _, known := codelists.RegionVocabulary(r.Vocabulary); !known {
		o.warnf("recipient-region vocabulary %q is not a known IATI vocabulary", r.Vocabulary)
	}
	percentageInRange(&o, "recipient-region", r.Percentage)
	return o
}

// Transaction validates one transaction and its nested allocations.
func Transaction(tx models.Transaction) Outcome {
	var o Outcome
	if tx.Type == "" {
		o.errorf("transaction-type is required")
	} else if _, ok := codelists.TransactionType(tx.Type); !ok {
		o.errorf("transaction-type %q is not in the TransactionType codelist", tx.Type)
	}
	requiredDate(&o, "transaction-date", tx.Date)
	monetaryValue(&o, "value", tx.Value)
	optionalDate(&o, "value-date", tx.ValueDate)
	currencyShape(&o, tx.Currency)

	if tx.FlowType != "" {
		if _, ok := codelists.FlowType(tx.FlowType); !ok {
			o.errorf("flow-type %q is not in the FlowType codelist", tx.FlowType)
		}
	}
	if tx.FinanceType != "" {
		if _, ok := codelists.FinanceType(tx.FinanceType); !ok {
			o.errorf("finance-type %q is not in the FinanceType codelist", tx.FinanceType)
		}
	}
	if tx.TiedStatus != "" {
		if _, ok := codelists.TiedStatus(tx.TiedStatus); !ok {
			o.errorf("tied-status %q is not in the TiedStatus codelist", tx.TiedStatus)
		}
	}
	for _, at := range tx.AidTypes {
		if at.Vocabulary == codelists.DefaultAidVocabulary {
			if _, ok := codelists.AidType(at.Code); !ok {
				o.errorf("aid-type %q is not in the AidType codelist", at.Code)
			}
		}
	}

	for i, s := range tx.Sectors {
		o.merge(indexed("sector", i), Sector(s))
	}
	for i, c := range tx.RecipientCountries {
		o.merge(indexed("recipient-country", i), Country(c))
	}
	for i, r := range tx.RecipientRegions {
		o.merge(indexed("recipient-region", i), Region(r))
	}
	return o
}

// Budget validates one budget period.
func Budget(b models.Budget) Outcome {
	var o Outcome
	if b.Type != "" {
		if _, ok := codelists.BudgetType(b.Type); !ok {
			o.errorf("budget type %q is not in the BudgetType codelist", b.Type)
		}
	}
	if b.Status != "" {
		if _, ok := codelists.BudgetStatus(b.Status); !ok {
			o.errorf("budget status %q is not in the BudgetStatus codelist", b.Status)
		}
	}
	period(&o, b.PeriodStart, b.PeriodEnd)
	monetaryValue(&o, "value", b.Value)
	optionalDate(&o, "value-date", b.ValueDate)
	currencyShape(&o, b.Currency)
	return o
}

// Disbursement validates one planned disbursement.
func Disbursement(d models.PlannedDisbursement) Outcome {
	var o Outcome
	if d.Type != "" {
		if _, ok := codelists.BudgetType(d.Type); !ok {
			o.errorf("planned-disbursement type %q is not in the BudgetType codelist", d.Type)
		}
	}
	period(&o, d.PeriodStart, d.PeriodEnd)
	monetaryValue(&o, "value", d.Value)
	optionalDate(&o, "value-date", d.ValueDate)
	currencyShape(&o, d.Currency)
	return o
}

// Org validates one participating organisation.
func Org(p models.ParticipatingOrg) Outcome {
	var o Outcome
	if p.Role == "" {
		o.errorf("participating-org role is required")
	} else if _, ok := codelists.OrganisationRole(p.Role); !ok {
		o.errorf("participating-org role %q is not in the OrganisationRole codelist", p.Role)
	}
	if p.Type != "" {
		if _, ok := codelists.OrganisationType(p.Type); !ok {
			o.errorf("organisation type %q is not in the OrganisationType codelist", p.Type)
		}
	}
	if p.Ref == "" {
		o.warnf("participating-org has no ref; it cannot be matched to a registered organisation")
	} else if strings.ContainsAny(p.Ref, " \t") {
		o.warnf("participating-org ref %q contains whitespace", p.Ref)
	}
	if p.Narratives.Empty() {
		o.warnf("participating-org has no name narrative")
	}
	return o
}

// Location validates one location.
func Location(l models.Location) Outcome {
	var o Outcome
	if l.Reach != "" {
		if _, ok := codelists.LocationReach(l.Reach); !ok {
			o.errorf("location-reach %q is not in the GeographicLocationReach codelist", l.Reach)
		}
	}
	if l.Class != "" {
		if _, ok := codelists.LocationClass(l.Class); !ok {
			o.errorf("location-class %q is not in the GeographicLocationClass codelist", l.Class)
		}
	}
	if l.Exactness != "" {
		if _, ok := codelists.LocationExactness(l.Exactness); !ok {
			o.errorf("exactness %q is not in the GeographicExactness codelist", l.Exactness)
		}
	}
	if l.PointLatitude != "" || l.PointLongitude != "" {
		lat, latErr := strconv.ParseFloat(l.PointLatitude, 64)
		lng, lngErr := strconv.ParseFloat(l.PointLongitude, 64)
		if latErr != nil || lngErr != nil {
			o.errorf("location point %q,%q is not a coordinate pair", l.PointLatitude, l.PointLongitude)
		} else if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			o.errorf("location point %g,%g is out of range", lat, lng)
		}
	}
	if l.Name.Empty() && l.ID == nil {
		o.warnf("location has neither a name nor a gazetteer reference")
	}
	return o
}

// Contact validates one contact record.
func Contact(c models.Contact) Outcome {
	var o Outcome
	if c.Type != "" {
		if _, ok := codelists.ContactType(c.Type); !ok {
			o.errorf("contact type %q is not in the ContactType codelist", c.Type)
		}
	}
	if c.Email != "" && !emailRe.MatchString(c.Email) {
		o.errorf("contact email %q is not a valid address", c.Email)
	}
	if c.Website != "" {
		urlShape(&o, "contact website", c.Website)
	}
	if c.Email == "" && c.PersonName.Empty() && c.Organisation.Empty() && c.Telephone == "" {
		o.errorf("contact carries no identifying information")
	}
	return o
}

// Document validates one document link.
func Document(d models.DocumentLink) Outcome {
	var o Outcome
	if d.URL == "" {
		o.errorf("document-link url is required")
	} else {
		urlShape(&o, "document-link url", d.URL)
	}
	for _, c := range d.Categories {
		if _, ok := codelists.DocumentCategory(c); !ok {
			o.errorf("document category %q is not in the DocumentCategory codelist", c)
		}
	}
	if d.Format == "" {
		o.warnf("document-link has no format (MIME type)")
	}
	optionalDate(&o, "document-date", d.DocumentDate)
	return o
}

// Marker validates one policy marker.
func Marker(m models.PolicyMarker) Outcome {
	var o Outcome
	if m.Code == "" {
		o.errorf("policy-marker code is required")
	} else if m.Vocabulary == "1" {
		if _, ok := codelists.PolicyMarker(m.Code); !ok {
			o.errorf("policy-marker %q is not in the PolicyMarker codelist", m.Code)
		}
	}
	if m.Significance != "" {
		if _, ok := codelists.PolicySignificance(m.Significance); !ok {
			o.errorf("policy-marker significance %q is not in the PolicySignificance codelist", m.Significance)
		}
	} else if m.Vocabulary == "1" {
		o.errorf("policy-marker significance is required under the OECD DAC vocabulary")
	}
	return o
}

// TagEntry validates one tag.
func TagEntry(t models.Tag) Outcome {
	var o Outcome
	if t.Code == "" {
		o.errorf("tag code is required")
	}
	if t.Vocabulary == "" {
		o.errorf("tag vocabulary is required")
	} else if _, known := codelists.TagVocabulary(t.Vocabulary); !known {
		o.warnf("tag vocabulary %q is not a known IATI vocabulary", t.Vocabulary)
	}
	return o
}

// Scope validates one humanitarian scope.
func Scope(h models.HumanitarianScope) Outcome {
	var o Outcome
	if h.Type == "" {
		o.errorf("humanitarian-scope type is required")
	} else if _, ok := codelists.HumanitarianScope(h.Type); !ok {
		o.errorf("humanitarian-scope type %q is not in the HumanitarianScopeType codelist", h.Type)
	}
	if h.Code == "" {
		o.errorf("humanitarian-scope code is required")
	}
	return o
}

// Related validates one related-activity reference.
func Related(r models.RelatedActivity) Outcome {
	var o Outcome
	if r.Ref == "" {
		o.errorf("related-activity ref is required")
	}
	if r.Type == "" {
		o.errorf("related-activity type is required")
	} else if _, ok := codelists.RelatedActivityType(r.Type); !ok {
		o.errorf("related-activity type %q is not in the RelatedActivityType codelist", r.Type)
	}
	return o
}

// ConditionSet validates the conditions block.
func ConditionSet(c models.ConditionSet) Outcome {
	var o Outcome
	for i, cond := range c.Conditions {
		if cond.Type == "" {
			o.errorf("condition[%d] type is required", i)
		} else if _, ok := codelists.ConditionType(cond.Type); !ok {
			o.errorf("condition[%d] type %q is not in the ConditionType codelist", i, cond.Type)
		}
		if cond.Narratives.Empty() {
			o.errorf("condition[%d] has no narrative text", i)
		}
	}
	if !c.Attached && len(c.Conditions) > 0 {
		o.warnf("conditions are listed but attached is false")
	}
	return o
}

// Financing validates CRS loan terms and flags.
func Financing(f models.FinancingTerms) Outcome {
	var o Outcome
	if lt := f.LoanTerms; lt != nil {
		percentageInRange(&o, "loan-terms rate-1", lt.Rate1)
		percentageInRange(&o, "loan-terms rate-2", lt.Rate2)
		optionalDate(&o, "commitment-date", lt.CommitmentDate)
		optionalDate(&o, "repayment-first-date", lt.FirstRepaymentDate)
		optionalDate(&o, "repayment-final-date", lt.FinalRepaymentDate)
		dateOrdered(&o, "commitment-date", lt.CommitmentDate, "repayment-first-date", lt.FirstRepaymentDate)
		dateOrdered(&o, "repayment-first-date", lt.FirstRepaymentDate, "repayment-final-date", lt.FinalRepaymentDate)
	}
	return o
}

// ResultEntry validates one result with its indicators.
func ResultEntry(r models.Result) Outcome {
	var o Outcome
	if r.Type == "" {
		o.errorf("result type is required")
	} else if _, ok := codelists.ResultType(r.Type); !ok {
		o.errorf("result type %q is not in the ResultType codelist", r.Type)
	}
	for i, ind := range r.Indicators {
		prefix := indexed("indicator", i)
		if ind.Measure == "" {
			o.errorf("%s: measure is required", prefix)
		} else if _, ok := codelists.IndicatorMeasure(ind.Measure); !ok {
			o.errorf("%s: measure %q is not in the IndicatorMeasure codelist", prefix, ind.Measure)
		}
		for j, p := range ind.Periods {
			var po Outcome
			period(&po, p.PeriodStart, p.PeriodEnd)
			// Indicator periods have no length cap; drop that error if raised.
			po.Errors = dropPeriodLength(po.Errors)
			o.merge(prefix+indexed(" period", j), po)
		}
	}
	return o
}

// ScalarFieldOutcomes validates the activity's own scalar fields, one
// outcome per importable field id so auto-selectability is decided per field.
// Date-ordering violations attach to the end-date field of the pair.
func ScalarFieldOutcomes(a *models.ParsedActivity) map[string]Outcome {
	out := make(map[string]Outcome, len(models.ScalarFields))

	var title Outcome
	if a.Title.Empty() {
		title.errorf("activity title is required")
	}
	out[models.FieldTitle] = title

	out[models.FieldDescription] = Outcome{}

	var status Outcome
	if a.Status != "" {
		if _, ok := codelists.ActivityStatus(a.Status); !ok {
			status.errorf("activity-status %q is not in the ActivityStatus codelist", a.Status)
		}
	} else {
		status.warnf("activity-status is not reported")
	}
	out[models.FieldStatus] = status

	var plannedStart, actualStart, plannedEnd, actualEnd Outcome
	optionalDate(&plannedStart, "planned start", a.PlannedStart)
	optionalDate(&actualStart, "actual start", a.ActualStart)
	optionalDate(&plannedEnd, "planned end", a.PlannedEnd)
	optionalDate(&actualEnd, "actual end", a.ActualEnd)
	dateOrdered(&plannedEnd, "planned start", a.PlannedStart, "planned end", a.PlannedEnd)
	dateOrdered(&actualEnd, "actual start", a.ActualStart, "actual end", a.ActualEnd)
	out[models.FieldPlannedStart] = plannedStart
	out[models.FieldActualStart] = actualStart
	out[models.FieldPlannedEnd] = plannedEnd
	out[models.FieldActualEnd] = actualEnd

	var currency Outcome
	currencyShape(&currency, a.Defaults.Currency)
	out[models.FieldDefaultCurrency] = currency

	var aid Outcome
	if a.Defaults.AidType != "" {
		if _, ok := codelists.AidType(a.Defaults.AidType); !ok {
			aid.errorf("default-aid-type %q is not in the AidType codelist", a.Defaults.AidType)
		}
	}
	out[models.FieldDefaultAidType] = aid

	var flow Outcome
	if a.Defaults.FlowType != "" {
		if _, ok := codelists.FlowType(a.Defaults.FlowType); !ok {
			flow.errorf("default-flow-type %q is not in the FlowType codelist", a.Defaults.FlowType)
		}
	}
	out[models.FieldDefaultFlowType] = flow

	var finance Outcome
	if a.Defaults.FinanceType != "" {
		if _, ok := codelists.FinanceType(a.Defaults.FinanceType); !ok {
			finance.errorf("default-finance-type %q is not in the FinanceType codelist", a.Defaults.FinanceType)
		}
	}
	out[models.FieldDefaultFinanceType] = finance

	var tied Outcome
	if a.Defaults.TiedStatus != "" {
		if _, ok := codelists.TiedStatus(a.Defaults.TiedStatus); !ok {
			tied.errorf("default-tied-status %q is not in the TiedStatus codelist", a.Defaults.TiedStatus)
		}
	}
	out[models.FieldDefaultTiedStatus] = tied

	return out
}

// --- shared field rules ---

func percentageInRange(o *Outcome, label string, p *float64) {
	if p == nil {
		return
	}
	if math.IsNaN(*p) {
		o.errorf("%s percentage is not a number", label)
		return
	}
	if *p < 0 || *p > 100 {
		o.errorf("%s percentage %g is outside [0,100]", label, *p)
	}
}

func monetaryValue(o *Outcome, label string, v float64) {
	if math.IsNaN(v) {
		o.errorf("%s is missing or not a number", label)
		return
	}
	if v < 0 {
		o.errorf("%s %g is negative", label, v)
	}
}

func requiredDate(o *Outcome, label, s string) {
	if s == "" {
		o.errorf("%s is required", label)
		return
	}
	if _, err := models.ParseISODate(s); err != nil {
		o.errorf("%s %q is not a valid ISO date", label, s)
	}
}

func optionalDate(o *Outcome, label, s string) {
	if s == "" {
		return
	}
	if _, err := models.ParseISODate(s); err != nil {
		o.errorf("%s %q is not a valid ISO date", label, s)
	}
}

func dateOrdered(o *Outcome, startLabel, start, endLabel, end string) {
	if start == "" || end == "" {
		return
	}
	s, err1 := models.ParseISODate(start)
	e, err2 := models.ParseISODate(end)
	if err1 != nil || err2 != nil {
		return // parse errors already reported
	}
	if e.Before(s) {
		o.errorf("%s %s is after %s %s", startLabel, start, endLabel, end)
	}
}

const periodLengthMsg = "period spans more than 366 days"

// period applies the full period-bounded rules: both ends required and
// parseable, start before end, span capped at maxPeriodDays.
func period(o *Outcome, start, end string) {
	requiredDate(o, "period-start", start)
	requiredDate(o, "period-end", end)
	s, err1 := models.ParseISODate(start)
	e, err2 := models.ParseISODate(end)
	if err1 != nil || err2 != nil {
		return
	}
	if e.Before(s) {
		o.errorf("period-start %s is after period-end %s", start, end)
		return
	}
	if e.Sub(s) > maxPeriodDays*24*time.Hour {
		o.errorf("%s (%s to %s)", periodLengthMsg, start, end)
	}
}

func dropPeriodLength(errs []string) []string {
	out := errs[:0]
	for _, e := range errs {
		if !strings.HasPrefix(e, periodLengthMsg) {
			out = append(out, e)
		}
	}
	return out
}

func currencyShape(o *Outcome, currency string) {
	if currency == "" {
		return
	}
	if len(currency) != 3 || strings.ToUpper(currency) != currency {
		o.errorf("currency %q is not an ISO 4217 code", currency)
	}
}

func urlShape(o *Outcome, label, raw string) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		o.errorf("%s %q is not an http(s) URL", label, raw)
	}
}

func indexed(name string, i int) string {
	return name + "[" + strconv.Itoa(i) + "]"
}
