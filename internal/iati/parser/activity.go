package parser

import (
	"math"
	"strconv"
	"strings"

	"aims/internal/iati/codelists"
	"aims/internal/iati/models"
)

// parseActivity extracts one typed activity from its element node. The
// iati-identifier is the only structurally required piece; everything else
// degrades to absent fields for the validators to report on.
func parseActivity(n *node) (*models.ParsedActivity, error) {
	identifier := n.child("iati-identifier").trimmedText()
	if identifier == "" {
		return nil, &ParseError{Message: "iati-activity is missing its iati-identifier"}
	}

	a := &models.ParsedActivity{
		IATIIdentifier: identifier,
		LastUpdated:    n.attr("last-updated-datetime"),
		Language:       n.attr("lang"),
		Humanitarian:   parseFlag(n.attr("humanitarian")),
		Title:          narratives(n.child("title")),
		Description:    narratives(n.child("description")),
		Status:         n.child("activity-status").attr("code"),
	}

	a.Defaults = models.ActivityDefaults{
		Currency:    n.attr("default-currency"),
		AidType:     n.child("default-aid-type").attr("code"),
		FlowType:    n.child("default-flow-type").attr("code"),
		FinanceType: n.child("default-finance-type").attr("code"),
		TiedStatus:  n.child("default-tied-status").attr("code"),
	}

	if ro := n.child("reporting-org"); ro != nil {
		a.ReportingOrg = &models.ParticipatingOrg{
			Ref:        ro.attr("ref"),
			Type:       ro.attr("type"),
			Narratives: narratives(ro),
		}
	}

	for _, d := range n.all("activity-date") {
		iso := d.attr("iso-date")
		switch d.attr("type") {
		case "1":
			a.PlannedStart = iso
		case "2":
			a.ActualStart = iso
		case "3":
			a.PlannedEnd = iso
		case "4":
			a.ActualEnd = iso
		}
	}

	for _, s := range n.all("sector") {
		a.Sectors = append(a.Sectors, parseSector(s))
	}
	for _, c := range n.all("recipient-country") {
		a.RecipientCountries = append(a.RecipientCountries, models.CountryAllocation{
			Code:       c.attr("code"),
			Percentage: parsePercentage(c.attr("percentage")),
			Narratives: narratives(c),
		})
	}
	for _, r := range n.all("recipient-region") {
		a.RecipientRegions = append(a.RecipientRegions, parseRegion(r))
	}
	for _, p := range n.all("participating-org") {
		a.ParticipatingOrgs = append(a.ParticipatingOrgs, models.ParticipatingOrg{
			Ref:        p.attr("ref"),
			Type:       p.attr("type"),
			Role:       p.attr("role"),
			ActivityID: p.attr("activity-id"),
			Narratives: narratives(p),
		})
	}
	for _, t := range n.all("transaction") {
		a.Transactions = append(a.Transactions, parseTransaction(t, a.Defaults))
	}
	for _, b := range n.all("budget") {
		a.Budgets = append(a.Budgets, models.Budget{
			Type:        b.attr("type"),
			Status:      b.attr("status"),
			PeriodStart: b.child("period-start").attr("iso-date"),
			PeriodEnd:   b.child("period-end").attr("iso-date"),
			Value:       parseValue(b.child("value").trimmedText()),
			Currency:    firstNonEmpty(b.child("value").attr("currency"), a.Defaults.Currency),
			ValueDate:   b.child("value").attr("value-date"),
		})
	}
	for _, d := range n.all("planned-disbursement") {
		a.Disbursements = append(a.Disbursements, models.PlannedDisbursement{
			Type:        d.attr("type"),
			PeriodStart: d.child("period-start").attr("iso-date"),
			PeriodEnd:   d.child("period-end").attr("iso-date"),
			Value:       parseValue(d.child("value").trimmedText()),
			Currency:    firstNonEmpty(d.child("value").attr("currency"), a.Defaults.Currency),
			ValueDate:   d.child("value").attr("value-date"),
			ProviderOrg: parseParty(d.child("provider-org"), "provider-activity-id"),
			ReceiverOrg: parseParty(d.child("receiver-org"), "receiver-activity-id"),
		})
	}
	for _, l := range n.all("location") {
		a.Locations = append(a.Locations, parseLocation(l))
	}
	for _, c := range n.all("contact-info") {
		a.Contacts = append(a.Contacts, models.Contact{
			Type:           c.attr("type"),
			Organisation:   narratives(c.child("organisation")),
			Department:     narratives(c.child("department")),
			PersonName:     narratives(c.child("person-name")),
			JobTitle:       narratives(c.child("job-title")),
			Telephone:      c.child("telephone").trimmedText(),
			Email:          c.child("email").trimmedText(),
			Website:        c.child("website").trimmedText(),
			MailingAddress: narratives(c.child("mailing-address")),
		})
	}
	for _, d := range n.all("document-link") {
		a.Documents = append(a.Documents, parseDocumentLink(d))
	}
	for _, p := range n.all("policy-marker") {
		a.PolicyMarkers = append(a.PolicyMarkers, models.PolicyMarker{
			CodeRef: models.CodeRef{
				Code:       p.attr("code"),
				Vocabulary: firstNonEmpty(p.attr("vocabulary"), "1"),
			},
			Significance: p.attr("significance"),
			Narratives:   narratives(p),
		})
	}
	for _, t := range n.all("tag") {
		a.Tags = append(a.Tags, models.Tag{
			CodeRef: models.CodeRef{
				Code:       t.attr("code"),
				Vocabulary: t.attr("vocabulary"),
			},
			Narratives: narratives(t),
		})
	}
	for _, h := range n.all("humanitarian-scope") {
		a.HumanitarianScopes = append(a.HumanitarianScopes, models.HumanitarianScope{
			Type: h.attr("type"),
			CodeRef: models.CodeRef{
				Code:       h.attr("code"),
				Vocabulary: h.attr("vocabulary"),
			},
			Narratives: narratives(h),
		})
	}
	for _, r := range n.all("related-activity") {
		a.RelatedActivities = append(a.RelatedActivities, models.RelatedActivity{
			Ref:  r.attr("ref"),
			Type: r.attr("type"),
		})
	}
	if c := n.child("conditions"); c != nil {
		set := &models.ConditionSet{Attached: parseFlag(c.attr("attached"))}
		for _, cond := range c.all("condition") {
			set.Conditions = append(set.Conditions, models.Condition{
				Type:       cond.attr("type"),
				Narratives: narratives(cond),
			})
		}
		a.Conditions = set
	}
	if crs := n.child("crs-add"); crs != nil {
		a.FinancingTerms = parseFinancingTerms(crs)
	}
	for _, r := range n.all("result") {
		a.Results = append(a.Results, parseResult(r))
	}

	return a, nil
}

func parseSector(s *node) models.SectorAllocation {
	return models.SectorAllocation{
		CodeRef: models.CodeRef{
			Code:       s.attr("code"),
			Vocabulary: firstNonEmpty(s.attr("vocabulary"), codelists.DefaultSectorVocabulary),
		},
		Percentage: parsePercentage(s.attr("percentage")),
		Narratives: narratives(s),
	}
}

func parseRegion(r *node) models.RegionAllocation {
	return models.RegionAllocation{
		CodeRef: models.CodeRef{
			Code:       r.attr("code"),
			Vocabulary: firstNonEmpty(r.attr("vocabulary"), codelists.DefaultRegionVocabulary),
		},
		Percentage: parsePercentage(r.attr("percentage")),
		Narratives: narratives(r),
	}
}

func parseParty(p *node, activityIDAttr string) *models.TransactionParty {
	if p == nil {
		return nil
	}
	return &models.TransactionParty{
		Ref:                p.attr("ref"),
		Type:               p.attr("type"),
		ProviderActivityID: p.attr(activityIDAttr),
		Narratives:         narratives(p),
	}
}

// parseTransaction extracts one transaction, cascading activity defaults onto
// attributes the transaction omits. The sector, country, region and aid-type
// children accumulate into slices: IATI allows each to repeat and the old
// last-wins assignment is exactly the bug this parser exists to not have.
func parseTransaction(t *node, defaults models.ActivityDefaults) models.Transaction {
	value := t.child("value")

	tx := models.Transaction{
		Ref:          t.attr("ref"),
		Type:         t.child("transaction-type").attr("code"),
		Date:         t.child("transaction-date").attr("iso-date"),
		Value:        parseValue(value.trimmedText()),
		Currency:     firstNonEmpty(value.attr("currency"), defaults.Currency),
		ValueDate:    value.attr("value-date"),
		Humanitarian: parseFlag(t.attr("humanitarian")),
		Description:  narratives(t.child("description")),
		ProviderOrg:  parseParty(t.child("provider-org"), "provider-activity-id"),
		ReceiverOrg:  parseParty(t.child("receiver-org"), "receiver-activity-id"),
		FlowType:     firstNonEmpty(t.child("flow-type").attr("code"), defaults.FlowType),
		FinanceType:  firstNonEmpty(t.child("finance-type").attr("code"), defaults.FinanceType),
		TiedStatus:   firstNonEmpty(t.child("tied-status").attr("code"), defaults.TiedStatus),
	}

	for _, s := range t.all("sector") {
		tx.Sectors = append(tx.Sectors, parseSector(s))
	}
	for _, c := range t.all("recipient-country") {
		tx.RecipientCountries = append(tx.RecipientCountries, models.CountryAllocation{
			Code:       c.attr("code"),
			Percentage: parsePercentage(c.attr("percentage")),
			Narratives: narratives(c),
		})
	}
	for _, r := range t.all("recipient-region") {
		tx.RecipientRegions = append(tx.RecipientRegions, parseRegion(r))
	}
	for _, at := range t.all("aid-type") {
		tx.AidTypes = append(tx.AidTypes, models.CodeRef{
			Code:       at.attr("code"),
			Vocabulary: firstNonEmpty(at.attr("vocabulary"), codelists.DefaultAidVocabulary),
		})
	}
	if len(tx.AidTypes) == 0 && defaults.AidType != "" {
		tx.AidTypes = []models.CodeRef{{Code: defaults.AidType, Vocabulary: codelists.DefaultAidVocabulary}}
	}

	return tx
}

func parseLocation(l *node) models.Location {
	loc := models.Location{
		Ref:                l.attr("ref"),
		Reach:              l.child("location-reach").attr("code"),
		Name:               narratives(l.child("name")),
		Description:        narratives(l.child("description")),
		ActivityDesc:       narratives(l.child("activity-description")),
		Exactness:          l.child("exactness").attr("code"),
		Class:              l.child("location-class").attr("code"),
		FeatureDesignation: l.child("feature-designation").attr("code"),
	}
	if id := l.child("location-id"); id != nil {
		loc.ID = &models.LocationID{Vocabulary: id.attr("vocabulary"), Code: id.attr("code")}
	}
	if admin := l.child("administrative"); admin != nil {
		loc.AdminVocabulary = admin.attr("vocabulary")
		loc.AdminLevel = admin.attr("level")
		loc.AdminCode = admin.attr("code")
	}
	if point := l.child("point"); point != nil {
		if pos := point.child("pos").trimmedText(); pos != "" {
			parts := strings.Fields(pos)
			if len(parts) == 2 {
				loc.PointLatitude = parts[0]
				loc.PointLongitude = parts[1]
			}
		}
	}
	return loc
}

func parseDocumentLink(d *node) models.DocumentLink {
	doc := models.DocumentLink{
		URL:          d.attr("url"),
		Format:       d.attr("format"),
		Title:        narratives(d.child("title")),
		Description:  narratives(d.child("description")),
		DocumentDate: d.child("document-date").attr("iso-date"),
	}
	for _, c := range d.all("category") {
		doc.Categories = append(doc.Categories, c.attr("code"))
	}
	for _, l := range d.all("language") {
		doc.Languages = append(doc.Languages, l.attr("code"))
	}
	return doc
}

func parseFinancingTerms(crs *node) *models.FinancingTerms {
	ft := &models.FinancingTerms{}
	for _, f := range crs.all("other-flags") {
		ft.OtherFlags = append(ft.OtherFlags, models.OtherFlag{
			Code:        f.attr("code"),
			Significant: parseFlag(f.attr("significance")),
		})
	}
	if lt := crs.child("loan-terms"); lt != nil {
		ft.LoanTerms = &models.LoanTerms{
			Rate1:              parsePercentage(lt.attr("rate-1")),
			Rate2:              parsePercentage(lt.attr("rate-2")),
			RepaymentType:      lt.child("repayment-type").attr("code"),
			RepaymentPlan:      lt.child("repayment-plan").attr("code"),
			CommitmentDate:     lt.child("commitment-date").attr("iso-date"),
			FirstRepaymentDate: lt.child("repayment-first-date").attr("iso-date"),
			FinalRepaymentDate: lt.child("repayment-final-date").attr("iso-date"),
		}
	}
	return ft
}

func parseResult(r *node) models.Result {
	result := models.Result{
		Type:              r.attr("type"),
		AggregationStatus: parseOptionalFlag(r.attr("aggregation-status")),
		Title:             narratives(r.child("title")),
		Description:       narratives(r.child("description")),
	}
	for _, ind := range r.all("indicator") {
		indicator := models.Indicator{
			Measure:     ind.attr("measure"),
			Ascending:   parseOptionalFlag(ind.attr("ascending")),
			Title:       narratives(ind.child("title")),
			Description: narratives(ind.child("description")),
		}
		if b := ind.child("baseline"); b != nil {
			indicator.Baseline = &models.IndicatorBaseline{
				Year:    b.attr("year"),
				Value:   b.attr("value"),
				Comment: narratives(b.child("comment")),
			}
		}
		for _, p := range ind.all("period") {
			indicator.Periods = append(indicator.Periods, models.IndicatorPeriod{
				PeriodStart: p.child("period-start").attr("iso-date"),
				PeriodEnd:   p.child("period-end").attr("iso-date"),
				Target:      p.child("target").attr("value"),
				Actual:      p.child("actual").attr("value"),
			})
		}
		result.Indicators = append(result.Indicators, indicator)
	}
	return result
}

// parseValue turns a monetary text into a float. Unparseable text becomes
// NaN so the field validator can report it instead of the parser failing the
// whole document.
func parseValue(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// parsePercentage behaves like parseValue but keeps absence distinct from
// zero: a missing attribute yields nil.
func parsePercentage(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		nan := math.NaN()
		return &nan
	}
	return &v
}

func parseFlag(s string) bool {
	return s == "1" || strings.EqualFold(s, "true")
}

func parseOptionalFlag(s string) *bool {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v := parseFlag(s)
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
