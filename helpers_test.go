package popcov

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-9

func approx(a, b float64) bool {
	return math.Abs(a-b) <= tolerance
}

func mustTable(t *testing.T, records ...FrequencyRecord) *FrequencyTable {
	t.Helper()
	table, err := NewFrequencyTable(records)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func epitope(id, locus, allele string, p float64) Epitope {
	return Epitope{
		SequenceID:       id,
		Allele:           Allele{Locus: locus, Name: allele},
		Immunoprevalence: p,
		NTested:          20,
		NResponders:      int(math.Round(p * 20)),
	}
}

func asConfigurationError(t *testing.T, err error) *ConfigurationError {
	t.Helper()
	var ce *ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("Got %v, expected a ConfigurationError", err)
	}
	return ce
}

func asInvalidEpitopeDataError(t *testing.T, err error) *InvalidEpitopeDataError {
	t.Helper()
	var ie *InvalidEpitopeDataError
	if !errors.As(err, &ie) {
		t.Fatalf("Got %v, expected an InvalidEpitopeDataError", err)
	}
	return ie
}
