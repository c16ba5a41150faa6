package popcov

import (
	"fmt"

	"github.com/willf/bitset"
)

// Epitope is a peptide restricted to one HLA allele, together with the
// fraction of allele carriers observed to respond to it.
type Epitope struct {
	SequenceID       string
	Allele           Allele
	Immunoprevalence float64
	NTested          int
	NResponders      int
}

// validateImmunoprevalence checks the only field the point estimate reads.
func validateImmunoprevalence(i int, e Epitope) error {
	if !(e.Immunoprevalence >= 0 && e.Immunoprevalence <= 1) {
		return &InvalidEpitopeDataError{Index: i, SequenceID: e.SequenceID, Reason: fmt.Sprintf("immunoprevalence %v is outside [0,1]", e.Immunoprevalence)}
	}
	return nil
}

// validateCounts checks that the response counts can parameterize a Beta
// distribution.
func validateCounts(i int, e Epitope) error {
	switch {
	case e.NTested <= 0:
		return &InvalidEpitopeDataError{Index: i, SequenceID: e.SequenceID, Reason: fmt.Sprintf("n_tested is %d; at least one tested subject is required", e.NTested)}
	case e.NResponders < 0:
		return &InvalidEpitopeDataError{Index: i, SequenceID: e.SequenceID, Reason: fmt.Sprintf("n_responders is negative (%d)", e.NResponders)}
	case e.NResponders > e.NTested:
		return &InvalidEpitopeDataError{Index: i, SequenceID: e.SequenceID, Reason: fmt.Sprintf("n_responders (%d) exceeds n_tested (%d)", e.NResponders, e.NTested)}
	}
	return nil
}

// ValidateEpitopes checks every epitope's immunoprevalence and counts and
// returns the first problem found, in input order.
func ValidateEpitopes(epitopes []Epitope) error {
	for i, e := range epitopes {
		if e.Allele.Locus == "" {
			return &InvalidEpitopeDataError{Index: i, SequenceID: e.SequenceID, Reason: "restricting allele has no locus"}
		}
		if err := validateImmunoprevalence(i, e); err != nil {
			return err
		}
		if err := validateCounts(i, e); err != nil {
			return err
		}
	}
	return nil
}

// locusIndex maps each allele observed at one locus to the positions of the
// epitopes restricted to it.
type locusIndex struct {
	locus   string
	alleles []Allele // first-seen order
	members map[Allele]*bitset.BitSet
	probs   []float64
}

// indexLocus gathers the epitopes of locus. probs, when non-nil, replaces
// each epitope's immunoprevalence and is indexed like epitopes.
func indexLocus(locus string, epitopes []Epitope, probs []float64) (*locusIndex, error) {
	idx := &locusIndex{
		locus:   locus,
		members: make(map[Allele]*bitset.BitSet),
	}

	for i, e := range epitopes {
		if e.Allele.Locus != locus {
			continue
		}

		p := e.Immunoprevalence
		if probs != nil {
			p = probs[i]
		} else if err := validateImmunoprevalence(i, e); err != nil {
			return nil, err
		}

		set, ok := idx.members[e.Allele]
		if !ok {
			set = bitset.New(0)
			idx.members[e.Allele] = set
			idx.alleles = append(idx.alleles, e.Allele)
		}
		set.Set(uint(len(idx.probs)))
		idx.probs = append(idx.probs, p)
	}

	return idx, nil
}

// matched returns the union of the epitopes restricted to a and b. A
// self-pair yields the allele's set once.
func (idx *locusIndex) matched(a, b Allele) *bitset.BitSet {
	sa, sb := idx.members[a], idx.members[b]
	switch {
	case sa == nil && sb == nil:
		return bitset.New(0)
	case sa == nil:
		return sb
	case sb == nil || a == b:
		return sa
	}
	return sa.Union(sb)
}
