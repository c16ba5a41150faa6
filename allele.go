package popcov

import "sort"

// Unknown is the reserved allele name standing in for every allele at a locus
// that is not explicitly tracked in the frequency table.
const Unknown = "UNKNOWN"

// Allele identifies one HLA variant at one locus. The locus is carried
// explicitly and is never inferred from the name.
type Allele struct {
	Locus string
	Name  string
}

// UnknownAllele returns the catch-all allele for locus.
func UnknownAllele(locus string) Allele {
	return Allele{Locus: locus, Name: Unknown}
}

func (a Allele) IsUnknown() bool {
	return a.Name == Unknown
}

func (a Allele) String() string {
	return a.Locus + "*" + a.Name
}

// sortedLoci returns the distinct loci found in the table and the epitopes.
func sortedLoci(table *FrequencyTable, epitopes []Epitope) []string {
	seen := make(map[string]struct{})
	for _, locus := range table.Loci() {
		seen[locus] = struct{}{}
	}
	for _, e := range epitopes {
		seen[e.Allele.Locus] = struct{}{}
	}

	loci := make([]string, 0, len(seen))
	for locus := range seen {
		loci = append(loci, locus)
	}
	sort.Strings(loci)

	return loci
}
