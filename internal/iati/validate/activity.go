package validate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"aims/internal/iati/models"
)

// Activity runs the full rule set over one parsed activity and returns the
// outcomes keyed by importable field id. Validation is accumulation, never
// early exit: one invalid transaction must not stop the rest of the document
// from being reviewed, so this function returns no error.
//
// Field validation of independent collections fans out across goroutines;
// each collection's outcome is assembled in its own goroutine and written to
// its own map slot, so no locking is needed.
func Activity(ctx context.Context, a *models.ParsedActivity) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(models.ScalarFields)+len(models.CollectionFields))
	slots := make(map[string]*Outcome, len(models.CollectionFields))
	for _, id := range models.CollectionFields {
		slots[id] = &Outcome{}
	}

	g, _ := errgroup.WithContext(ctx)

	var scalars map[string]Outcome
	g.Go(func() error {
		scalars = ScalarFieldOutcomes(a)
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldSectors]
		for i, s := range a.Sectors {
			o.merge(indexed("sector", i), Sector(s))
		}
		groups := SectorGroups(a.Sectors)
		o.Errors = append(o.Errors, groups.Errors...)
		o.Warnings = append(o.Warnings, groups.Warnings...)
		return nil
	})

	g.Go(func() error {
		co := slots[models.FieldRecipientCountries]
		for i, c := range a.RecipientCountries {
			co.merge(indexed("recipient-country", i), Country(c))
		}
		sum := PercentageSum("recipient-country", CountryPercentages(a.RecipientCountries))
		co.Errors = append(co.Errors, sum.Errors...)
		co.Warnings = append(co.Warnings, sum.Warnings...)

		ro := slots[models.FieldRecipientRegions]
		for i, r := range a.RecipientRegions {
			ro.merge(indexed("recipient-region", i), Region(r))
		}
		sum = PercentageSum("recipient-region", RegionPercentages(a.RecipientRegions))
		ro.Errors = append(ro.Errors, sum.Errors...)
		ro.Warnings = append(ro.Warnings, sum.Warnings...)

		// Mutual exclusion affects both collections equally.
		excl := CountryRegionExclusion(a.RecipientCountries, a.RecipientRegions)
		co.Errors = append(co.Errors, excl.Errors...)
		ro.Errors = append(ro.Errors, excl.Errors...)
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldTransactions]
		for i, tx := range a.Transactions {
			o.merge(indexed("transaction", i), Transaction(tx))
			excl := CountryRegionExclusion(tx.RecipientCountries, tx.RecipientRegions)
			o.merge(indexed("transaction", i), excl)
			groups := SectorGroups(tx.Sectors)
			o.merge(indexed("transaction", i), groups)
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldBudgets]
		for i, b := range a.Budgets {
			o.merge(indexed("budget", i), Budget(b))
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldDisbursements]
		for i, d := range a.Disbursements {
			o.merge(indexed("planned-disbursement", i), Disbursement(d))
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldParticipatingOrgs]
		for i, p := range a.ParticipatingOrgs {
			o.merge(indexed("participating-org", i), Org(p))
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldLocations]
		for i, l := range a.Locations {
			o.merge(indexed("location", i), Location(l))
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldContacts]
		for i, c := range a.Contacts {
			o.merge(indexed("contact", i), Contact(c))
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldDocuments]
		for i, d := range a.Documents {
			o.merge(indexed("document-link", i), Document(d))
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldPolicyMarkers]
		for i, m := range a.PolicyMarkers {
			o.merge(indexed("policy-marker", i), Marker(m))
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldTags]
		for i, t := range a.Tags {
			o.merge(indexed("tag", i), TagEntry(t))
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldHumanitarianScopes]
		for i, h := range a.HumanitarianScopes {
			o.merge(indexed("humanitarian-scope", i), Scope(h))
		}
		return nil
	})

	g.Go(func() error {
		o := slots[models.FieldRelatedActivities]
		for i, r := range a.RelatedActivities {
			o.merge(indexed("related-activity", i), Related(r))
		}
		return nil
	})

	g.Go(func() error {
		if a.Conditions != nil {
			*slots[models.FieldConditions] = ConditionSet(*a.Conditions)
		}
		if a.FinancingTerms != nil {
			*slots[models.FieldFinancingTerms] = Financing(*a.FinancingTerms)
		}
		o := slots[models.FieldResults]
		for i, r := range a.Results {
			o.merge(indexed("result", i), ResultEntry(r))
		}
		return nil
	})

	_ = g.Wait() // validators never return errors; Wait orders the writes

	for id, o := range scalars {
		outcomes[id] = o
	}
	for id, o := range slots {
		outcomes[id] = *o
	}
	return outcomes
}
