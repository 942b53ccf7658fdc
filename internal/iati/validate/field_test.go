package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"aims/internal/iati/models"
)

type FieldSuite struct {
	suite.Suite
}

func TestFieldSuite(t *testing.T) {
	suite.Run(t, new(FieldSuite))
}

func pct(v float64) *float64 { return &v }

func narr(text string) models.Narratives {
	return models.Narratives{{Text: text}}
}

// TestSector verifies the code shape depends on the declared vocabulary.
func (s *FieldSuite) TestSector() {
	s.Run("accepts a 5-digit code under DAC-5", func() {
		o := Sector(models.SectorAllocation{CodeRef: models.CodeRef{Code: "14010", Vocabulary: "1"}})
		s.Empty(o.Errors)
	})

	s.Run("rejects a 3-digit code under DAC-5", func() {
		o := Sector(models.SectorAllocation{CodeRef: models.CodeRef{Code: "111", Vocabulary: "1"}})
		s.NotEmpty(o.Errors)
	})

	s.Run("accepts the same 3-digit code under DAC-3", func() {
		o := Sector(models.SectorAllocation{CodeRef: models.CodeRef{Code: "111", Vocabulary: "2"}})
		s.Empty(o.Errors)
	})

	s.Run("free-form codes pass under reporting-org vocabularies", func() {
		o := Sector(models.SectorAllocation{CodeRef: models.CodeRef{Code: "AG-WATER", Vocabulary: "99"}})
		s.Empty(o.Errors)
	})

	s.Run("unknown vocabulary warns but does not block", func() {
		o := Sector(models.SectorAllocation{CodeRef: models.CodeRef{Code: "X", Vocabulary: "42"}})
		s.Empty(o.Errors)
		s.NotEmpty(o.Warnings)
	})

	s.Run("missing code is an error", func() {
		o := Sector(models.SectorAllocation{CodeRef: models.CodeRef{Vocabulary: "1"}})
		s.NotEmpty(o.Errors)
	})

	s.Run("percentage outside the unit range is an error", func() {
		o := Sector(models.SectorAllocation{CodeRef: models.CodeRef{Code: "14010", Vocabulary: "1"}, Percentage: pct(120)})
		s.NotEmpty(o.Errors)
	})
}

// TestCountryAndRegion verifies geography code shapes.
func (s *FieldSuite) TestCountryAndRegion() {
	s.Run("accepts ISO alpha-2 country codes", func() {
		s.Empty(Country(models.CountryAllocation{Code: "KE"}).Errors)
	})

	s.Run("rejects lowercase and three-letter codes", func() {
		s.NotEmpty(Country(models.CountryAllocation{Code: "ke"}).Errors)
		s.NotEmpty(Country(models.CountryAllocation{Code: "KEN"}).Errors)
	})

	s.Run("DAC region codes must be numeric", func() {
		s.Empty(Region(models.RegionAllocation{CodeRef: models.CodeRef{Code: "298", Vocabulary: "1"}}).Errors)
		s.NotEmpty(Region(models.RegionAllocation{CodeRef: models.CodeRef{Code: "AF", Vocabulary: "1"}}).Errors)
	})
}

// TestTransaction verifies codelist resolution and value rules.
func (s *FieldSuite) TestTransaction() {
	valid := models.Transaction{
		Type:     "3",
		Date:     "2024-06-01",
		Value:    1000,
		Currency: "EUR",
	}

	s.Run("a complete disbursement passes", func() {
		s.Empty(Transaction(valid).Errors)
	})

	s.Run("unknown transaction type is an error", func() {
		tx := valid
		tx.Type = "99"
		s.NotEmpty(Transaction(tx).Errors)
	})

	s.Run("missing date is an error", func() {
		tx := valid
		tx.Date = ""
		s.NotEmpty(Transaction(tx).Errors)
	})

	s.Run("NaN value from an unreadable document is an error", func() {
		tx := valid
		tx.Value = math.NaN()
		s.NotEmpty(Transaction(tx).Errors)
	})

	s.Run("negative value is an error", func() {
		tx := valid
		tx.Value = -5
		s.NotEmpty(Transaction(tx).Errors)
	})

	s.Run("lowercase currency is an error", func() {
		tx := valid
		tx.Currency = "eur"
		s.NotEmpty(Transaction(tx).Errors)
	})

	s.Run("nested sector errors carry their index", func() {
		tx := valid
		tx.Sectors = []models.SectorAllocation{{CodeRef: models.CodeRef{Code: "bad", Vocabulary: "1"}}}
		o := Transaction(tx)
		s.Require().NotEmpty(o.Errors)
		s.Contains(o.Errors[0], "sector[0]")
	})
}

// TestBudgetPeriods verifies the one-year period cap and ordering.
func (s *FieldSuite) TestBudgetPeriods() {
	s.Run("a one-year budget passes", func() {
		b := models.Budget{Type: "1", PeriodStart: "2024-01-01", PeriodEnd: "2024-12-31", Value: 100, Currency: "EUR"}
		s.Empty(Budget(b).Errors)
	})

	s.Run("a period spanning 546 days is rejected", func() {
		b := models.Budget{Type: "1", PeriodStart: "2024-01-01", PeriodEnd: "2025-06-30", Value: 100, Currency: "EUR"}
		o := Budget(b)
		s.Require().NotEmpty(o.Errors)
		s.Contains(o.Errors[0], "366 days")
	})

	s.Run("period end before start is rejected", func() {
		b := models.Budget{PeriodStart: "2024-12-31", PeriodEnd: "2024-01-01", Value: 100}
		s.NotEmpty(Budget(b).Errors)
	})

	s.Run("both period ends are required", func() {
		b := models.Budget{PeriodStart: "2024-01-01", Value: 100}
		s.NotEmpty(Budget(b).Errors)
	})

	s.Run("unknown budget type is an error", func() {
		b := models.Budget{Type: "9", PeriodStart: "2024-01-01", PeriodEnd: "2024-12-31", Value: 100}
		s.NotEmpty(Budget(b).Errors)
	})
}

// TestOrg verifies participating organisation rules.
func (s *FieldSuite) TestOrg() {
	s.Run("role is required and checked against the codelist", func() {
		s.NotEmpty(Org(models.ParticipatingOrg{}).Errors)
		s.NotEmpty(Org(models.ParticipatingOrg{Role: "8"}).Errors)
	})

	s.Run("missing ref warns without blocking", func() {
		o := Org(models.ParticipatingOrg{Role: "1", Narratives: narr("Unnamed Funder")})
		s.Empty(o.Errors)
		s.NotEmpty(o.Warnings)
	})

	s.Run("a complete org passes cleanly", func() {
		o := Org(models.ParticipatingOrg{Role: "4", Ref: "XM-DAC-41114", Type: "40", Narratives: narr("Implementer")})
		s.Empty(o.Errors)
		s.Empty(o.Warnings)
	})
}

// TestLocation verifies coordinate ranges.
func (s *FieldSuite) TestLocation() {
	s.Run("in-range coordinates pass", func() {
		l := models.Location{Name: narr("Nairobi"), PointLatitude: "-1.286389", PointLongitude: "36.817223"}
		s.Empty(Location(l).Errors)
	})

	s.Run("latitude beyond 90 is rejected", func() {
		l := models.Location{Name: narr("Nowhere"), PointLatitude: "95", PointLongitude: "0"}
		s.NotEmpty(Location(l).Errors)
	})

	s.Run("non-numeric coordinates are rejected", func() {
		l := models.Location{Name: narr("Nowhere"), PointLatitude: "north", PointLongitude: "36"}
		s.NotEmpty(Location(l).Errors)
	})

	s.Run("nameless unreferenced location warns", func() {
		s.NotEmpty(Location(models.Location{}).Warnings)
	})
}

// TestContact verifies contact identity rules.
func (s *FieldSuite) TestContact() {
	s.Run("valid email passes", func() {
		c := models.Contact{Email: "jane@example.org"}
		s.Empty(Contact(c).Errors)
	})

	s.Run("malformed email is an error", func() {
		c := models.Contact{Email: "not-an-address"}
		s.NotEmpty(Contact(c).Errors)
	})

	s.Run("a contact with no identifying information is an error", func() {
		s.NotEmpty(Contact(models.Contact{Type: "1"}).Errors)
	})

	s.Run("a name alone is identifying enough", func() {
		c := models.Contact{PersonName: narr("Jane Doe")}
		s.Empty(Contact(c).Errors)
	})
}

// TestMarker verifies policy marker significance rules under the DAC vocabulary.
func (s *FieldSuite) TestMarker() {
	s.Run("DAC marker with significance passes", func() {
		m := models.PolicyMarker{CodeRef: models.CodeRef{Code: "1", Vocabulary: "1"}, Significance: "2"}
		s.Empty(Marker(m).Errors)
	})

	s.Run("significance is required under the DAC vocabulary", func() {
		m := models.PolicyMarker{CodeRef: models.CodeRef{Code: "1", Vocabulary: "1"}}
		s.NotEmpty(Marker(m).Errors)
	})

	s.Run("significance is optional under other vocabularies", func() {
		m := models.PolicyMarker{CodeRef: models.CodeRef{Code: "custom", Vocabulary: "99"}}
		s.Empty(Marker(m).Errors)
	})

	s.Run("unknown DAC marker code is an error", func() {
		m := models.PolicyMarker{CodeRef: models.CodeRef{Code: "77", Vocabulary: "1"}, Significance: "1"}
		s.NotEmpty(Marker(m).Errors)
	})
}

// TestDocument verifies document link rules.
func (s *FieldSuite) TestDocument() {
	s.Run("https url with known category passes", func() {
		d := models.DocumentLink{URL: "https://example.org/report.pdf", Format: "application/pdf", Categories: []string{"A01"}}
		s.Empty(Document(d).Errors)
	})

	s.Run("non-http scheme is rejected", func() {
		d := models.DocumentLink{URL: "ftp://example.org/report.pdf"}
		s.NotEmpty(Document(d).Errors)
	})

	s.Run("missing format warns", func() {
		d := models.DocumentLink{URL: "https://example.org/x"}
		s.NotEmpty(Document(d).Warnings)
	})
}

// TestScalarFieldOutcomes verifies per-field outcomes for the activity scalars.
func (s *FieldSuite) TestScalarFieldOutcomes() {
	s.Run("missing title is an error on the title field only", func() {
		a := &models.ParsedActivity{IATIIdentifier: "AA-1"}
		out := ScalarFieldOutcomes(a)
		s.NotEmpty(out[models.FieldTitle].Errors)
		s.Empty(out[models.FieldDescription].Errors)
	})

	s.Run("unknown activity status is an error, absence only warns", func() {
		withBad := &models.ParsedActivity{Title: narr("T"), Status: "9"}
		s.NotEmpty(ScalarFieldOutcomes(withBad)[models.FieldStatus].Errors)

		without := &models.ParsedActivity{Title: narr("T")}
		out := ScalarFieldOutcomes(without)
		s.Empty(out[models.FieldStatus].Errors)
		s.NotEmpty(out[models.FieldStatus].Warnings)
	})

	s.Run("date ordering errors attach to the end date field", func() {
		a := &models.ParsedActivity{
			Title:        narr("T"),
			PlannedStart: "2025-01-01",
			PlannedEnd:   "2024-01-01",
		}
		out := ScalarFieldOutcomes(a)
		s.Empty(out[models.FieldPlannedStart].Errors)
		s.NotEmpty(out[models.FieldPlannedEnd].Errors)
	})

	s.Run("unreadable dates are reported on their own field", func() {
		a := &models.ParsedActivity{Title: narr("T"), ActualStart: "June 2024"}
		s.NotEmpty(ScalarFieldOutcomes(a)[models.FieldActualStart].Errors)
	})

	s.Run("default codes are checked against their codelists", func() {
		a := &models.ParsedActivity{
			Title: narr("T"),
			Defaults: models.ActivityDefaults{
				Currency:    "usd",
				AidType:     "Z99",
				FlowType:    "10",
				FinanceType: "110",
				TiedStatus:  "5",
			},
		}
		out := ScalarFieldOutcomes(a)
		s.NotEmpty(out[models.FieldDefaultCurrency].Errors)
		s.NotEmpty(out[models.FieldDefaultAidType].Errors)
		s.Empty(out[models.FieldDefaultFlowType].Errors)
		s.Empty(out[models.FieldDefaultFinanceType].Errors)
		s.Empty(out[models.FieldDefaultTiedStatus].Errors)
	})
}
