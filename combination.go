package popcov

import "fmt"

// AlleleCombination is an ordered pair of alleles at one locus, approximating
// a diploid genotype. Frequency is the product of the two allele frequencies.
type AlleleCombination struct {
	First     Allele
	Second    Allele
	Frequency float64
}

// EnumerateCombinations returns every ordered pair drawn from observed plus
// the locus's UNKNOWN allele, self-pairs included. Duplicates in observed are
// ignored, so n distinct tracked alleles give (n+1)^2 pairs. Pairs are listed
// row-major over observed alleles in first-seen order followed by UNKNOWN.
//
// With no observed alleles the whole population is a single (UNKNOWN,
// UNKNOWN) pair of frequency 1. UNKNOWN passed explicitly is weighted by the
// locus residual instead.
func EnumerateCombinations(locus string, observed []Allele, table *FrequencyTable) ([]AlleleCombination, error) {
	if len(observed) == 0 {
		u := UnknownAllele(locus)
		return []AlleleCombination{{First: u, Second: u, Frequency: 1}}, nil
	}

	alleles := make([]Allele, 0, len(observed)+1)
	seen := make(map[Allele]struct{}, len(observed)+1)
	for _, a := range observed {
		if a.Locus != locus {
			return nil, &ConfigurationError{Locus: locus, Allele: a.Name, Reason: fmt.Sprintf("allele belongs to locus %q", a.Locus)}
		}
		if a.IsUnknown() {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		alleles = append(alleles, a)
	}
	alleles = append(alleles, UnknownAllele(locus))

	freqs := make([]float64, len(alleles))
	for i, a := range alleles {
		f, err := table.Frequency(a)
		if err != nil {
			return nil, err
		}
		freqs[i] = f
	}

	out := make([]AlleleCombination, 0, len(alleles)*len(alleles))
	for i, a := range alleles {
		for j, b := range alleles {
			out = append(out, AlleleCombination{
				First:     a,
				Second:    b,
				Frequency: freqs[i] * freqs[j],
			})
		}
	}

	return out, nil
}
