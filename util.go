package popcov

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"
)

// ClopperPearson returns the exact binomial confidence interval for
// responders successes out of tested trials. The bounds are quantiles of
// Beta(x, n-x+1) and Beta(x+1, n-x); at x=0 the lower bound is 0 and at x=n
// the upper bound is 1.
func ClopperPearson(responders, tested int, level float64) (Interval, error) {
	if !(level > 0 && level < 1) {
		return Interval{}, &InvalidParameterError{Name: "confidence_level", Value: level, Reason: "must lie strictly between 0 and 1"}
	}
	if err := validateCounts(0, Epitope{NTested: tested, NResponders: responders}); err != nil {
		return Interval{}, fmt.Errorf("clopper-pearson: %w", err)
	}

	alpha := 1 - level
	x, n := float64(responders), float64(tested)

	out := Interval{Lower: 0, Upper: 1}
	if responders > 0 {
		out.Lower = distuv.Beta{Alpha: x, Beta: n - x + 1}.Quantile(alpha / 2)
	}
	if responders < tested {
		out.Upper = distuv.Beta{Alpha: x + 1, Beta: n - x}.Quantile(1 - alpha/2)
	}

	return out, nil
}

// WhichSQLiteDriver reports the database/sql driver ReferenceDB was built
// against.
func WhichSQLiteDriver() string {
	return whichSQLiteDriver
}
