package diff

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	activitymodels "aims/internal/activity/models"
	"aims/internal/iati/models"
)

// labels maps field ids to the names shown to reviewers.
var labels = map[string]string{
	models.FieldTitle:              "Title",
	models.FieldDescription:        "Description",
	models.FieldStatus:             "Activity status",
	models.FieldPlannedStart:       "Planned start date",
	models.FieldActualStart:        "Actual start date",
	models.FieldPlannedEnd:         "Planned end date",
	models.FieldActualEnd:          "Actual end date",
	models.FieldDefaultCurrency:    "Default currency",
	models.FieldDefaultAidType:     "Default aid type",
	models.FieldDefaultFlowType:    "Default flow type",
	models.FieldDefaultFinanceType: "Default finance type",
	models.FieldDefaultTiedStatus:  "Default tied status",
	models.FieldSectors:            "Sectors",
	models.FieldRecipientCountries: "Recipient countries",
	models.FieldRecipientRegions:   "Recipient regions",
	models.FieldParticipatingOrgs:  "Participating organisations",
	models.FieldTransactions:       "Transactions",
	models.FieldBudgets:            "Budgets",
	models.FieldDisbursements:      "Planned disbursements",
	models.FieldLocations:          "Locations",
	models.FieldContacts:           "Contacts",
	models.FieldDocuments:          "Document links",
	models.FieldPolicyMarkers:      "Policy markers",
	models.FieldTags:               "Tags",
	models.FieldHumanitarianScopes: "Humanitarian scopes",
	models.FieldRelatedActivities:  "Related activities",
	models.FieldConditions:         "Conditions",
	models.FieldFinancingTerms:     "Financing terms",
	models.FieldResults:            "Results",
}

// Label returns the reviewer-facing name of a field id.
func Label(fieldID string) string {
	if l, ok := labels[fieldID]; ok {
		return l
	}
	return fieldID
}

// ScalarValue returns the canonical stored form of a scalar field and whether
// the document provides it at all. Narrative-valued fields canonicalize to
// JSON so every language survives the round trip.
func ScalarValue(fieldID string, a *models.ParsedActivity) (string, bool) {
	switch fieldID {
	case models.FieldTitle:
		return narrativeValue(a.Title)
	case models.FieldDescription:
		return narrativeValue(a.Description)
	case models.FieldStatus:
		return a.Status, a.Status != ""
	case models.FieldPlannedStart:
		return a.PlannedStart, a.PlannedStart != ""
	case models.FieldActualStart:
		return a.ActualStart, a.ActualStart != ""
	case models.FieldPlannedEnd:
		return a.PlannedEnd, a.PlannedEnd != ""
	case models.FieldActualEnd:
		return a.ActualEnd, a.ActualEnd != ""
	case models.FieldDefaultCurrency:
		return a.Defaults.Currency, a.Defaults.Currency != ""
	case models.FieldDefaultAidType:
		return a.Defaults.AidType, a.Defaults.AidType != ""
	case models.FieldDefaultFlowType:
		return a.Defaults.FlowType, a.Defaults.FlowType != ""
	case models.FieldDefaultFinanceType:
		return a.Defaults.FinanceType, a.Defaults.FinanceType != ""
	case models.FieldDefaultTiedStatus:
		return a.Defaults.TiedStatus, a.Defaults.TiedStatus != ""
	}
	return "", false
}

func narrativeValue(n models.Narratives) (string, bool) {
	if n.Empty() {
		return "", false
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

// Items returns the canonical rows of a collection field together with their
// natural keys, and whether the document provides the collection at all.
// Unreadable numbers are dropped from the payload; the validator has already
// reported them and fields with errors never reach the writer.
func Items(fieldID string, a *models.ParsedActivity) ([]activitymodels.CollectionItem, bool, error) {
	entries, present, err := rawEntries(fieldID, a)
	if err != nil || !present {
		return nil, present, err
	}
	items := make([]activitymodels.CollectionItem, 0, len(entries))
	seen := make(map[string]int, len(entries))
	for _, e := range entries {
		payload, err := json.Marshal(e.value)
		if err != nil {
			return nil, true, fmt.Errorf("encode %s item: %w", fieldID, err)
		}
		key := e.key
		if key == "" {
			sum := sha256.Sum256(payload)
			key = fmt.Sprintf("%x", sum[:8])
		}
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s#%d", key, n)
		}
		items = append(items, activitymodels.CollectionItem{NaturalKey: key, Payload: payload})
	}
	return items, true, nil
}

type entry struct {
	key   string
	value any
}

func rawEntries(fieldID string, a *models.ParsedActivity) ([]entry, bool, error) {
	switch fieldID {
	case models.FieldSectors:
		out := make([]entry, len(a.Sectors))
		for i, s := range a.Sectors {
			s.Percentage = cleanPct(s.Percentage)
			out[i] = entry{key: s.Vocabulary + "|" + s.Code, value: s}
		}
		return out, len(out) > 0, nil
	case models.FieldRecipientCountries:
		out := make([]entry, len(a.RecipientCountries))
		for i, c := range a.RecipientCountries {
			c.Percentage = cleanPct(c.Percentage)
			out[i] = entry{key: strings.ToUpper(c.Code), value: c}
		}
		return out, len(out) > 0, nil
	case models.FieldRecipientRegions:
		out := make([]entry, len(a.RecipientRegions))
		for i, r := range a.RecipientRegions {
			r.Percentage = cleanPct(r.Percentage)
			out[i] = entry{key: r.Vocabulary + "|" + r.Code, value: r}
		}
		return out, len(out) > 0, nil
	case models.FieldParticipatingOrgs:
		out := make([]entry, len(a.ParticipatingOrgs))
		for i, p := range a.ParticipatingOrgs {
			key := p.Role + "|" + p.Ref
			if p.Ref == "" {
				key = p.Role + "|" + strings.ToLower(strings.TrimSpace(p.Name()))
			}
			out[i] = entry{key: key, value: p}
		}
		return out, len(out) > 0, nil
	case models.FieldTransactions:
		out := make([]entry, len(a.Transactions))
		for i, tx := range a.Transactions {
			tx.Value = cleanVal(tx.Value)
			tx.Sectors = cleanSectors(tx.Sectors)
			tx.RecipientCountries = cleanCountries(tx.RecipientCountries)
			tx.RecipientRegions = cleanRegions(tx.RecipientRegions)
			key := ""
			if tx.Ref != "" {
				key = "ref|" + tx.Ref
			}
			out[i] = entry{key: key, value: tx}
		}
		return out, len(out) > 0, nil
	case models.FieldBudgets:
		out := make([]entry, len(a.Budgets))
		for i, b := range a.Budgets {
			b.Value = cleanVal(b.Value)
			out[i] = entry{key: b.Type + "|" + b.PeriodStart + "|" + b.PeriodEnd, value: b}
		}
		return out, len(out) > 0, nil
	case models.FieldDisbursements:
		out := make([]entry, len(a.Disbursements))
		for i, d := range a.Disbursements {
			d.Value = cleanVal(d.Value)
			out[i] = entry{key: d.Type + "|" + d.PeriodStart + "|" + d.PeriodEnd, value: d}
		}
		return out, len(out) > 0, nil
	case models.FieldLocations:
		out := make([]entry, len(a.Locations))
		for i, l := range a.Locations {
			key := l.Ref
			if key == "" && l.ID != nil {
				key = l.ID.Vocabulary + "|" + l.ID.Code
			}
			if key == "" || key == "|" {
				key = strings.ToLower(strings.TrimSpace(l.Name.Preferred("")))
			}
			out[i] = entry{key: key, value: l}
		}
		return out, len(out) > 0, nil
	case models.FieldContacts:
		out := make([]entry, len(a.Contacts))
		for i, c := range a.Contacts {
			out[i] = entry{key: ContactKey(c), value: c}
		}
		return out, len(out) > 0, nil
	case models.FieldDocuments:
		out := make([]entry, len(a.Documents))
		for i, d := range a.Documents {
			out[i] = entry{key: d.URL, value: d}
		}
		return out, len(out) > 0, nil
	case models.FieldPolicyMarkers:
		out := make([]entry, len(a.PolicyMarkers))
		for i, m := range a.PolicyMarkers {
			out[i] = entry{key: m.Vocabulary + "|" + m.Code, value: m}
		}
		return out, len(out) > 0, nil
	case models.FieldTags:
		out := make([]entry, len(a.Tags))
		for i, t := range a.Tags {
			out[i] = entry{key: t.Vocabulary + "|" + t.Code, value: t}
		}
		return out, len(out) > 0, nil
	case models.FieldHumanitarianScopes:
		out := make([]entry, len(a.HumanitarianScopes))
		for i, h := range a.HumanitarianScopes {
			out[i] = entry{key: h.Type + "|" + h.Vocabulary + "|" + h.Code, value: h}
		}
		return out, len(out) > 0, nil
	case models.FieldRelatedActivities:
		out := make([]entry, len(a.RelatedActivities))
		for i, r := range a.RelatedActivities {
			out[i] = entry{key: r.Type + "|" + r.Ref, value: r}
		}
		return out, len(out) > 0, nil
	case models.FieldConditions:
		if a.Conditions == nil {
			return nil, false, nil
		}
		return []entry{{key: "conditions", value: *a.Conditions}}, true, nil
	case models.FieldFinancingTerms:
		if a.FinancingTerms == nil {
			return nil, false, nil
		}
		ft := *a.FinancingTerms
		if ft.LoanTerms != nil {
			lt := *ft.LoanTerms
			lt.Rate1 = cleanPct(lt.Rate1)
			lt.Rate2 = cleanPct(lt.Rate2)
			ft.LoanTerms = &lt
		}
		return []entry{{key: "financing_terms", value: ft}}, true, nil
	case models.FieldResults:
		out := make([]entry, len(a.Results))
		for i, r := range a.Results {
			out[i] = entry{key: r.Type + "|" + strings.ToLower(strings.TrimSpace(r.Title.Preferred(""))), value: r}
		}
		return out, len(out) > 0, nil
	}
	return nil, false, fmt.Errorf("unknown collection field %q", fieldID)
}

// ContactKey is the identity of a contact for dedup purposes: the
// case-insensitive pair of email and person name.
func ContactKey(c models.Contact) string {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	name := strings.ToLower(strings.TrimSpace(c.PersonName.Preferred("")))
	if email == "" && name == "" {
		return ""
	}
	return email + "|" + name
}

func cleanPct(p *float64) *float64 {
	if p == nil || math.IsNaN(*p) {
		return nil
	}
	return p
}

func cleanVal(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func cleanSectors(in []models.SectorAllocation) []models.SectorAllocation {
	if len(in) == 0 {
		return in
	}
	out := make([]models.SectorAllocation, len(in))
	for i, s := range in {
		s.Percentage = cleanPct(s.Percentage)
		out[i] = s
	}
	return out
}

func cleanCountries(in []models.CountryAllocation) []models.CountryAllocation {
	if len(in) == 0 {
		return in
	}
	out := make([]models.CountryAllocation, len(in))
	for i, c := range in {
		c.Percentage = cleanPct(c.Percentage)
		out[i] = c
	}
	return out
}

func cleanRegions(in []models.RegionAllocation) []models.RegionAllocation {
	if len(in) == 0 {
		return in
	}
	out := make([]models.RegionAllocation, len(in))
	for i, r := range in {
		r.Percentage = cleanPct(r.Percentage)
		out[i] = r
	}
	return out
}
