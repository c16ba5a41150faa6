package popcov

import (
	"context"
	"runtime"
	"sort"

	"github.com/exascience/pargo/parallel"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// BootstrapConfig parameterizes Bootstrap.
type BootstrapConfig struct {
	Loci            []string
	Iterations      int
	ConfidenceLevel float64
	Seed            uint64
	Workers         int
}

// BootstrapResult summarizes the empirical distribution of overall coverage
// across bootstrap iterations. Samples is in iteration order.
type BootstrapResult struct {
	Interval Interval
	Samples  []float64
	Mean     float64
	StdDev   float64
}

// Bootstrap resamples every epitope's immunoprevalence from
// Beta(responders, tested-responders+1), the shape used by the exact binomial
// (Clopper-Pearson) lower bound, recomputes overall coverage for each
// resampled set, and reports the central ConfidenceLevel interval of the
// resulting values.
//
// Iteration i draws from a stream seeded only by (Seed, i), so the output is
// identical for any number of workers. The context is checked before each
// iteration.
func Bootstrap(ctx context.Context, epitopes []Epitope, table *FrequencyTable, cfg BootstrapConfig) (*BootstrapResult, error) {
	opts := Options{Iterations: cfg.Iterations, ConfidenceLevel: cfg.ConfidenceLevel, Workers: cfg.Workers, Loci: cfg.Loci}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateEpitopes(epitopes); err != nil {
		return nil, err
	}

	loci := cfg.Loci
	if len(loci) == 0 {
		loci = sortedLoci(table, epitopes)
	}

	// Surface reference-data problems once, before fanning out.
	if _, err := coverageByLocus(loci, epitopes, nil, table); err != nil {
		return nil, err
	}

	return bootstrap(ctx, epitopes, table, loci, cfg)
}

// bootstrap runs the iterations over inputs that have already been
// validated against the table.
func bootstrap(ctx context.Context, epitopes []Epitope, table *FrequencyTable, loci []string, cfg BootstrapConfig) (*BootstrapResult, error) {
	n := cfg.Iterations
	batches := cfg.Workers
	if batches == 0 {
		batches = runtime.GOMAXPROCS(0)
	}
	if batches > n {
		batches = n
	}

	samples := make([]float64, n)
	errs := make([]error, n)

	parallel.Range(0, n, batches, func(low, high int) {
		probs := make([]float64, len(epitopes))
		for i := low; i < high; i++ {
			if ctx.Err() != nil {
				return
			}

			resample(epitopes, rand.NewSource(streamSeed(cfg.Seed, uint64(i))), probs)

			coverages, err := coverageByLocus(loci, epitopes, probs, table)
			if err != nil {
				errs[i] = err
				return
			}
			samples[i] = CombineLoci(coverages)
		}
	})

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	res := &BootstrapResult{Samples: samples}
	res.Interval = empiricalInterval(samples, cfg.ConfidenceLevel)
	if n > 1 {
		res.Mean, res.StdDev = stat.MeanStdDev(samples, nil)
	} else {
		res.Mean = samples[0]
	}

	return res, nil
}

// resample fills probs with one Beta draw per epitope, in input order.
func resample(epitopes []Epitope, src rand.Source, probs []float64) {
	for i, e := range epitopes {
		probs[i] = BetaDraw(e.NTested, e.NResponders, src)
	}
}

// BetaDraw draws an immunoprevalence from Beta(responders,
// tested-responders+1). With no responders the distribution collapses onto
// 0. Counts must already have been validated.
func BetaDraw(tested, responders int, src rand.Source) float64 {
	if responders == 0 {
		return 0
	}

	b := distuv.Beta{
		Alpha: float64(responders),
		Beta:  float64(tested - responders + 1),
		Src:   src,
	}

	return b.Rand()
}

func empiricalInterval(samples []float64, level float64) Interval {
	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	alpha := 1 - level
	return Interval{
		Lower: stat.Quantile(alpha/2, stat.Empirical, sorted, nil),
		Upper: stat.Quantile(1-alpha/2, stat.Empirical, sorted, nil),
	}
}

// streamSeed derives the seed of iteration i with a splitmix64 step, which
// decorrelates neighbouring indices.
func streamSeed(seed, i uint64) uint64 {
	z := seed + (i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
