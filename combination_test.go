package popcov

import (
	"fmt"
	"testing"
)

func TestEnumerateCombinationsCount(t *testing.T) {
	for n := 0; n <= 6; n++ {
		var records []FrequencyRecord
		var observed []Allele
		for i := 0; i < n; i++ {
			name := fmt.Sprintf("%02d:01", i+1)
			records = append(records, FrequencyRecord{Locus: "A", Allele: name, Frequency: 0.1})
			observed = append(observed, Allele{Locus: "A", Name: name})
		}
		table := mustTable(t, records...)

		combinations, err := EnumerateCombinations("A", observed, table)
		if err != nil {
			t.Fatal(err)
		}

		if len(combinations) != (n+1)*(n+1) {
			t.Errorf("n=%d: got %d combinations, expected %d", n, len(combinations), (n+1)*(n+1))
		}

		var sawUnknownPair bool
		for _, c := range combinations {
			if c.First.IsUnknown() && c.Second.IsUnknown() {
				sawUnknownPair = true
			}
		}
		if !sawUnknownPair {
			t.Errorf("n=%d: (UNKNOWN, UNKNOWN) missing", n)
		}
	}
}

func TestEnumerateCombinationsEmpty(t *testing.T) {
	table := mustTable(t)

	combinations, err := EnumerateCombinations("A", nil, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(combinations) != 1 {
		t.Fatalf("Got %d combinations, expected 1", len(combinations))
	}

	c := combinations[0]
	if !c.First.IsUnknown() || !c.Second.IsUnknown() || c.Frequency != 1 {
		t.Errorf("Got %+v, expected (UNKNOWN, UNKNOWN) with frequency 1", c)
	}
}

func TestEnumerateCombinationsEmptyWithListedAlleles(t *testing.T) {
	table := mustTable(t, FrequencyRecord{Locus: "A", Allele: "X", Frequency: 0.3})

	combinations, err := EnumerateCombinations("A", nil, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(combinations) != 1 || combinations[0].Frequency != 1 {
		t.Errorf("Got %+v, expected a single pair with frequency 1", combinations)
	}

	// An explicit UNKNOWN is weighted by the residual.
	combinations, err = EnumerateCombinations("A", []Allele{UnknownAllele("A")}, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(combinations) != 1 || !approx(combinations[0].Frequency, 0.49) {
		t.Errorf("Got %+v, expected a single pair with frequency 0.49", combinations)
	}
}

func TestEnumerateCombinationsFrequenciesSumToOne(t *testing.T) {
	table := mustTable(t,
		FrequencyRecord{Locus: "B", Allele: "07:02", Frequency: 0.3},
		FrequencyRecord{Locus: "B", Allele: "08:01", Frequency: 0.2},
		FrequencyRecord{Locus: "B", Allele: "44:02", Frequency: 0.15},
	)
	observed := []Allele{
		{Locus: "B", Name: "07:02"},
		{Locus: "B", Name: "08:01"},
		{Locus: "B", Name: "44:02"},
		{Locus: "B", Name: "07:02"},
	}

	combinations, err := EnumerateCombinations("B", observed, table)
	if err != nil {
		t.Fatal(err)
	}
	if len(combinations) != 16 {
		t.Errorf("Got %d combinations, expected 16", len(combinations))
	}

	sum := 0.0
	for _, c := range combinations {
		sum += c.Frequency
	}
	if !approx(sum, 1) {
		t.Errorf("Combination frequencies sum to %v, expected 1", sum)
	}
}

func TestEnumerateCombinationsOrderAndProducts(t *testing.T) {
	table := mustTable(t,
		FrequencyRecord{Locus: "A", Allele: "X", Frequency: 0.3},
		FrequencyRecord{Locus: "A", Allele: "Y", Frequency: 0.5},
	)
	x, y, u := Allele{"A", "X"}, Allele{"A", "Y"}, UnknownAllele("A")

	combinations, err := EnumerateCombinations("A", []Allele{y, x}, table)
	if err != nil {
		t.Fatal(err)
	}

	expected := []AlleleCombination{
		{y, y, 0.25}, {y, x, 0.15}, {y, u, 0.1},
		{x, y, 0.15}, {x, x, 0.09}, {x, u, 0.06},
		{u, y, 0.1}, {u, x, 0.06}, {u, u, 0.04},
	}
	for i, c := range combinations {
		if c.First != expected[i].First || c.Second != expected[i].Second || !approx(c.Frequency, expected[i].Frequency) {
			t.Errorf("Combination %d: got %+v, expected %+v", i, c, expected[i])
		}
	}
}

func TestEnumerateCombinationsMissingAllele(t *testing.T) {
	table := mustTable(t, FrequencyRecord{Locus: "A", Allele: "X", Frequency: 0.3})

	_, err := EnumerateCombinations("A", []Allele{{Locus: "A", Name: "Q"}}, table)
	ce := asConfigurationError(t, err)
	if ce.Allele != "Q" {
		t.Errorf("Got allele %q, expected Q", ce.Allele)
	}

	_, err = EnumerateCombinations("A", []Allele{{Locus: "B", Name: "X"}}, table)
	asConfigurationError(t, err)
}
