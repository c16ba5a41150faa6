package popcov

// ComputeLocusCoverage returns the fraction of the population expected to
// respond to at least one epitope presented by its alleles at locus. It is
// the recognition probability of each allele combination, weighted by the
// combination's population frequency. Epitopes at other loci are ignored.
func ComputeLocusCoverage(locus string, epitopes []Epitope, table *FrequencyTable) (float64, error) {
	return locusCoverage(locus, epitopes, nil, table)
}

func locusCoverage(locus string, epitopes []Epitope, probs []float64, table *FrequencyTable) (float64, error) {
	idx, err := indexLocus(locus, epitopes, probs)
	if err != nil {
		return 0, err
	}
	if len(idx.probs) == 0 {
		return 0, nil
	}

	combinations, err := EnumerateCombinations(locus, idx.alleles, table)
	if err != nil {
		return 0, err
	}

	coverage := 0.0
	for _, c := range combinations {
		if c.Frequency == 0 {
			continue
		}
		coverage += c.Frequency * idx.recognition(c.First, c.Second)
	}

	return clamp01(coverage), nil
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
