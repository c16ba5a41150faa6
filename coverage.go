package popcov

import (
	"context"
	"encoding/binary"
	"strings"

	"github.com/google/uuid"
)

// CombineLoci merges per-locus coverage values under the assumption that
// loci are inherited independently: the population escapes coverage only if
// it escapes at every locus.
func CombineLoci(coverages []float64) float64 {
	miss := 1.0
	for _, c := range coverages {
		miss *= 1 - c
	}
	return clamp01(1 - miss)
}

// Interval is a two-sided confidence interval.
type Interval struct {
	Lower float64
	Upper float64
}

// CoverageEstimate is the result of ComputePopulationCoverage. Interval,
// Samples, Mean and StdDev are only populated when bootstrapping was
// requested.
type CoverageEstimate struct {
	RunID           uuid.UUID
	Coverage        float64
	LocusCoverage   map[string]float64
	Interval        *Interval
	ConfidenceLevel float64
	Iterations      int
	Seed            uint64
	Samples         []float64
	Mean            float64
	StdDev          float64
}

// Options controls ComputePopulationCoverage. Use DefaultOptions as a
// starting point; the zero value disables bootstrapping and fails
// validation of Iterations.
type Options struct {
	Bootstrap       bool
	Iterations      int
	ConfidenceLevel float64

	// RandomSeed fixes the bootstrap random streams. When nil a seed is
	// drawn and reported in CoverageEstimate.Seed.
	RandomSeed *uint64

	// Loci restricts the estimate to the named loci. By default every locus
	// in the frequency table or the epitope set is used.
	Loci []string

	// Workers bounds the number of bootstrap batches run in parallel; 0 uses
	// GOMAXPROCS. Results do not depend on it.
	Workers int
}

func DefaultOptions() Options {
	return Options{
		Bootstrap:       true,
		Iterations:      100,
		ConfidenceLevel: 0.95,
	}
}

// Validate rejects option values before any computation starts.
func (o Options) Validate() error {
	if o.Iterations <= 0 {
		return &InvalidParameterError{Name: "bootstrap_iterations", Value: o.Iterations, Reason: "must be positive"}
	}
	if !(o.ConfidenceLevel > 0 && o.ConfidenceLevel < 1) {
		return &InvalidParameterError{Name: "confidence_level", Value: o.ConfidenceLevel, Reason: "must lie strictly between 0 and 1"}
	}
	if o.Workers < 0 {
		return &InvalidParameterError{Name: "workers", Value: o.Workers, Reason: "must not be negative"}
	}
	return validateLoci(o.Loci)
}

// validateLoci rejects blank and repeated loci. A repeated locus would enter
// CombineLoci twice while appearing once in the per-locus breakdown.
func validateLoci(loci []string) error {
	seen := make(map[string]struct{}, len(loci))
	for _, locus := range loci {
		if strings.TrimSpace(locus) == "" {
			return &InvalidParameterError{Name: "loci", Value: loci, Reason: "contains an empty locus"}
		}
		if _, dup := seen[locus]; dup {
			return &InvalidParameterError{Name: "loci", Value: loci, Reason: "locus " + locus + " is listed more than once"}
		}
		seen[locus] = struct{}{}
	}
	return nil
}

// ComputePopulationCoverage estimates the fraction of the population that
// responds to at least one epitope, combining loci independently. With
// opts.Bootstrap set, immunoprevalence is resampled from each epitope's
// response counts to produce a confidence interval around the point
// estimate. Nothing is returned alongside an error.
func ComputePopulationCoverage(ctx context.Context, epitopes []Epitope, table *FrequencyTable, opts Options) (*CoverageEstimate, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateEpitopes(epitopes); err != nil {
		return nil, err
	}

	loci := opts.Loci
	if len(loci) == 0 {
		loci = sortedLoci(table, epitopes)
	}

	est := &CoverageEstimate{
		RunID:           uuid.New(),
		LocusCoverage:   make(map[string]float64, len(loci)),
		ConfidenceLevel: opts.ConfidenceLevel,
	}

	coverages, err := coverageByLocus(loci, epitopes, nil, table)
	if err != nil {
		return nil, err
	}
	for i, locus := range loci {
		est.LocusCoverage[locus] = coverages[i]
	}
	est.Coverage = CombineLoci(coverages)

	if !opts.Bootstrap {
		return est, nil
	}

	if opts.RandomSeed != nil {
		est.Seed = *opts.RandomSeed
	} else {
		est.Seed = binary.LittleEndian.Uint64(est.RunID[:8])
	}

	// Options, epitopes and table references were all checked above.
	result, err := bootstrap(ctx, epitopes, table, loci, BootstrapConfig{
		Iterations:      opts.Iterations,
		ConfidenceLevel: opts.ConfidenceLevel,
		Seed:            est.Seed,
		Workers:         opts.Workers,
	})
	if err != nil {
		return nil, err
	}

	est.Iterations = opts.Iterations
	est.Interval = &result.Interval
	est.Samples = result.Samples
	est.Mean = result.Mean
	est.StdDev = result.StdDev

	return est, nil
}

// coverageByLocus computes the coverage of each locus in order.
func coverageByLocus(loci []string, epitopes []Epitope, probs []float64, table *FrequencyTable) ([]float64, error) {
	out := make([]float64, len(loci))
	for i, locus := range loci {
		c, err := locusCoverage(locus, epitopes, probs, table)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}
