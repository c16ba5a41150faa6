package popcov

import (
	"fmt"
	"sort"
)

// frequencyTolerance absorbs rounding in published frequency tables whose
// entries sum to slightly more than 1.
const frequencyTolerance = 1e-9

// FrequencyRecord is one row of an allele frequency table.
type FrequencyRecord struct {
	Locus     string  `db:"locus"`
	Allele    string  `db:"allele"`
	Frequency float64 `db:"frequency"`
}

// FrequencyTable holds the population frequency of each tracked allele, per
// locus. It is immutable once built and safe for concurrent readers.
type FrequencyTable struct {
	loci    map[string]map[string]float64
	unknown map[string]float64
}

// NewFrequencyTable validates records and builds a table from them. The
// frequency of the UNKNOWN allele at each locus is derived as the residual
// of the listed frequencies and may not be supplied directly.
func NewFrequencyTable(records []FrequencyRecord) (*FrequencyTable, error) {
	t := &FrequencyTable{
		loci:    make(map[string]map[string]float64),
		unknown: make(map[string]float64),
	}

	for _, r := range records {
		if r.Locus == "" {
			return nil, &ConfigurationError{Allele: r.Allele, Reason: "frequency record has no locus"}
		}
		if r.Allele == Unknown {
			return nil, &ConfigurationError{Locus: r.Locus, Allele: r.Allele, Reason: "the UNKNOWN frequency is derived and cannot be listed"}
		}
		if !(r.Frequency >= 0 && r.Frequency <= 1) {
			return nil, &ConfigurationError{Locus: r.Locus, Allele: r.Allele, Reason: fmt.Sprintf("frequency %v is outside [0,1]", r.Frequency)}
		}

		alleles, ok := t.loci[r.Locus]
		if !ok {
			alleles = make(map[string]float64)
			t.loci[r.Locus] = alleles
		}
		if _, dup := alleles[r.Allele]; dup {
			return nil, &ConfigurationError{Locus: r.Locus, Allele: r.Allele, Reason: "allele is listed more than once"}
		}
		alleles[r.Allele] = r.Frequency
	}

	for locus, alleles := range t.loci {
		sum := 0.0
		for _, f := range alleles {
			sum += f
		}
		residual := 1 - sum
		if residual < -frequencyTolerance {
			return nil, &ConfigurationError{Locus: locus, Reason: fmt.Sprintf("listed frequencies sum to %v, which exceeds 1", sum)}
		}
		if residual < 0 {
			residual = 0
		}
		t.unknown[locus] = residual
	}

	return t, nil
}

// Frequency returns the population frequency of allele. For an untracked
// locus the UNKNOWN allele has frequency 1. An allele that is neither listed
// nor UNKNOWN yields a ConfigurationError.
func (t *FrequencyTable) Frequency(a Allele) (float64, error) {
	if a.IsUnknown() {
		return t.UnknownFrequency(a.Locus), nil
	}

	if f, ok := t.loci[a.Locus][a.Name]; ok {
		return f, nil
	}

	return 0, &ConfigurationError{Locus: a.Locus, Allele: a.Name, Reason: "allele has no entry in the frequency table"}
}

// UnknownFrequency is 1 minus the sum of the listed frequencies at locus.
func (t *FrequencyTable) UnknownFrequency(locus string) float64 {
	if f, ok := t.unknown[locus]; ok {
		return f
	}
	return 1
}

// Loci returns the loci present in the table in sorted order.
func (t *FrequencyTable) Loci() []string {
	loci := make([]string, 0, len(t.loci))
	for locus := range t.loci {
		loci = append(loci, locus)
	}
	sort.Strings(loci)

	return loci
}

// Records returns the listed entries sorted by locus then allele.
func (t *FrequencyTable) Records() []FrequencyRecord {
	var out []FrequencyRecord
	for _, locus := range t.Loci() {
		names := make([]string, 0, len(t.loci[locus]))
		for name := range t.loci[locus] {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, FrequencyRecord{Locus: locus, Allele: name, Frequency: t.loci[locus][name]})
		}
	}

	return out
}
