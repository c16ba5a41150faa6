package popcov

import "github.com/willf/bitset"

// RecognitionProbability is the probability that at least one of the given
// epitopes is recognized, assuming independent recognition. No epitopes
// means nothing can be presented, so the probability is 0.
func RecognitionProbability(probs []float64) float64 {
	switch len(probs) {
	case 0:
		return 0
	case 1:
		return probs[0]
	}

	miss := 1.0
	for _, p := range probs {
		miss *= 1 - p
	}

	return 1 - miss
}

// PairRecognitionProbability computes RecognitionProbability over the
// epitopes of locus restricted to either allele of c. When both slots hold
// the same allele its epitopes are counted once.
func PairRecognitionProbability(c AlleleCombination, epitopes []Epitope) (float64, error) {
	idx, err := indexLocus(c.First.Locus, epitopes, nil)
	if err != nil {
		return 0, err
	}

	return idx.recognition(c.First, c.Second), nil
}

func (idx *locusIndex) recognition(a, b Allele) float64 {
	return RecognitionProbability(gather(idx.matched(a, b), idx.probs))
}

func gather(set *bitset.BitSet, probs []float64) []float64 {
	out := make([]float64, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		out = append(out, probs[i])
	}
	return out
}
