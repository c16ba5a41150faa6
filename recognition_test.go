package popcov

import (
	"math"
	"testing"
)

func TestRecognitionProbabilityBoundaries(t *testing.T) {
	if got := RecognitionProbability(nil); got != 0 {
		t.Errorf("No epitopes: got %v, expected 0", got)
	}
	if got := RecognitionProbability([]float64{0.42}); got != 0.42 {
		t.Errorf("One epitope: got %v, expected 0.42", got)
	}
	if got := RecognitionProbability([]float64{0.2, 1, 0.3}); got != 1 {
		t.Errorf("Certain epitope: got %v, expected 1", got)
	}
	if got := RecognitionProbability([]float64{0, 0, 0}); got != 0 {
		t.Errorf("Unrecognized epitopes: got %v, expected 0", got)
	}
}

func TestRecognitionProbabilityIdenticalValues(t *testing.T) {
	for _, p := range []float64{0, 0.05, 0.3, 0.5, 0.77, 1} {
		for m := 1; m <= 8; m++ {
			probs := make([]float64, m)
			for i := range probs {
				probs[i] = p
			}

			got := RecognitionProbability(probs)
			expected := 1 - math.Pow(1-p, float64(m))
			if !approx(got, expected) {
				t.Errorf("p=%v m=%d: got %v, expected %v", p, m, got, expected)
			}
			if got < 0 || got > 1 {
				t.Errorf("p=%v m=%d: %v is outside [0,1]", p, m, got)
			}
		}
	}
}

func TestPairRecognitionSelfPairCountsOnce(t *testing.T) {
	epitopes := []Epitope{
		epitope("e1", "A", "X", 0.5),
		epitope("e2", "A", "X", 0.5),
		epitope("e3", "A", "Y", 0.2),
		epitope("e4", "B", "X", 0.9),
	}
	x, y := Allele{"A", "X"}, Allele{"A", "Y"}

	got, err := PairRecognitionProbability(AlleleCombination{First: x, Second: x}, epitopes)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(got, 0.75) {
		t.Errorf("(X, X): got %v, expected 0.75", got)
	}

	got, err = PairRecognitionProbability(AlleleCombination{First: x, Second: y}, epitopes)
	if err != nil {
		t.Fatal(err)
	}
	if expected := 1 - 0.5*0.5*0.8; !approx(got, expected) {
		t.Errorf("(X, Y): got %v, expected %v", got, expected)
	}

	got, err = PairRecognitionProbability(AlleleCombination{First: UnknownAllele("A"), Second: UnknownAllele("A")}, epitopes)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("(UNKNOWN, UNKNOWN): got %v, expected 0", got)
	}
}
