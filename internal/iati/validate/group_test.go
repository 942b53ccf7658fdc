package validate

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"aims/internal/iati/models"
)

type GroupSuite struct {
	suite.Suite
}

func TestGroupSuite(t *testing.T) {
	suite.Run(t, new(GroupSuite))
}

// TestPercentageSum verifies the banded 100% invariant over one sibling group.
func (s *GroupSuite) TestPercentageSum() {
	s.Run("exact 100 passes", func() {
		o := PercentageSum("sector", []*float64{pct(60), pct(40)})
		s.Empty(o.Errors)
	})

	s.Run("three thirds pass within tolerance", func() {
		o := PercentageSum("sector", []*float64{pct(33.33), pct(33.33), pct(33.34)})
		s.Empty(o.Errors)
	})

	s.Run("drift beyond tolerance is rejected", func() {
		o := PercentageSum("sector", []*float64{pct(60), pct(39.9)})
		s.NotEmpty(o.Errors)
	})

	s.Run("a group with no percentages at all passes", func() {
		o := PercentageSum("sector", []*float64{nil, nil})
		s.Empty(o.Errors)
	})

	s.Run("empty group passes", func() {
		s.Empty(PercentageSum("sector", nil).Errors)
	})

	s.Run("mixed declared and undeclared warns", func() {
		o := PercentageSum("sector", []*float64{pct(100), nil})
		s.Empty(o.Errors)
		s.NotEmpty(o.Warnings)
	})

	s.Run("an unreadable percentage poisons the group", func() {
		nan := math.NaN()
		o := PercentageSum("sector", []*float64{pct(50), &nan})
		s.NotEmpty(o.Errors)
	})
}

// TestSectorGroups verifies percentages sum per vocabulary, not across them.
func (s *GroupSuite) TestSectorGroups() {
	s.Run("parallel full allocations per vocabulary pass", func() {
		sectors := []models.SectorAllocation{
			{CodeRef: models.CodeRef{Code: "14010", Vocabulary: "1"}, Percentage: pct(60)},
			{CodeRef: models.CodeRef{Code: "14020", Vocabulary: "1"}, Percentage: pct(40)},
			{CodeRef: models.CodeRef{Code: "140", Vocabulary: "2"}, Percentage: pct(100)},
		}
		s.Empty(SectorGroups(sectors).Errors)
	})

	s.Run("a short vocabulary group is rejected on its own", func() {
		sectors := []models.SectorAllocation{
			{CodeRef: models.CodeRef{Code: "14010", Vocabulary: "1"}, Percentage: pct(50)},
			{CodeRef: models.CodeRef{Code: "140", Vocabulary: "2"}, Percentage: pct(100)},
		}
		o := SectorGroups(sectors)
		s.Require().Len(o.Errors, 1)
		s.Contains(o.Errors[0], "vocabulary 1")
	})
}

// TestCountryRegionExclusion verifies the mutual exclusion rule.
func (s *GroupSuite) TestCountryRegionExclusion() {
	s.Run("both present at the same scope is rejected", func() {
		o := CountryRegionExclusion(
			[]models.CountryAllocation{{Code: "KE"}},
			[]models.RegionAllocation{{CodeRef: models.CodeRef{Code: "298", Vocabulary: "1"}}},
		)
		s.NotEmpty(o.Errors)
	})

	s.Run("either alone passes", func() {
		s.Empty(CountryRegionExclusion([]models.CountryAllocation{{Code: "KE"}}, nil).Errors)
		s.Empty(CountryRegionExclusion(nil, []models.RegionAllocation{{CodeRef: models.CodeRef{Code: "298"}}}).Errors)
	})
}

// TestActivity verifies aggregation keys every outcome by its field id.
func (s *GroupSuite) TestActivity() {
	a := &models.ParsedActivity{
		IATIIdentifier: "AA-1",
		Title:          narr("Water access"),
		Status:         "2",
		Sectors: []models.SectorAllocation{
			{CodeRef: models.CodeRef{Code: "14010", Vocabulary: "1"}, Percentage: pct(70)},
			{CodeRef: models.CodeRef{Code: "bad", Vocabulary: "1"}, Percentage: pct(30)},
		},
		RecipientCountries: []models.CountryAllocation{{Code: "KE", Percentage: pct(100)}},
		Transactions: []models.Transaction{
			{Type: "3", Date: "2024-06-01", Value: 1000, Currency: "EUR"},
		},
	}

	outcomes := Activity(context.Background(), a)

	s.Run("collection errors land on their own field", func() {
		s.NotEmpty(outcomes[models.FieldSectors].Errors)
		s.Empty(outcomes[models.FieldRecipientCountries].Errors)
		s.Empty(outcomes[models.FieldTransactions].Errors)
	})

	s.Run("scalar outcomes are present per field", func() {
		s.Empty(outcomes[models.FieldTitle].Errors)
		s.Empty(outcomes[models.FieldStatus].Errors)
	})

	s.Run("every importable field id has an outcome slot", func() {
		for _, id := range models.ScalarFields {
			_, ok := outcomes[id]
			s.True(ok, id)
		}
		for _, id := range models.CollectionFields {
			_, ok := outcomes[id]
			s.True(ok, id)
		}
	})

	s.Run("country and region exclusion marks both collections", func() {
		both := &models.ParsedActivity{
			IATIIdentifier:     "AA-2",
			Title:              narr("T"),
			RecipientCountries: []models.CountryAllocation{{Code: "KE"}},
			RecipientRegions:   []models.RegionAllocation{{CodeRef: models.CodeRef{Code: "298", Vocabulary: "1"}}},
		}
		out := Activity(context.Background(), both)
		s.NotEmpty(out[models.FieldRecipientCountries].Errors)
		s.NotEmpty(out[models.FieldRecipientRegions].Errors)
	})
}
