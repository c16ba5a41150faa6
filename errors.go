package popcov

import "fmt"

// ConfigurationError reports reference data that cannot support an estimate,
// most commonly an epitope restricted to an allele that has no frequency
// entry.
type ConfigurationError struct {
	Locus  string
	Allele string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Allele == "" {
		return fmt.Sprintf("configuration error at locus %q: %s", e.Locus, e.Reason)
	}
	return fmt.Sprintf("configuration error for allele %s*%s: %s", e.Locus, e.Allele, e.Reason)
}

// InvalidEpitopeDataError identifies an epitope whose immunoprevalence or
// response counts are malformed. Index is the epitope's position in the input.
type InvalidEpitopeDataError struct {
	Index      int
	SequenceID string
	Reason     string
}

func (e *InvalidEpitopeDataError) Error() string {
	return fmt.Sprintf("invalid epitope %d (%s): %s", e.Index, e.SequenceID, e.Reason)
}

// InvalidParameterError is returned for options that are rejected before any
// computation begins.
type InvalidParameterError struct {
	Name   string
	Value  interface{}
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Name, e.Value, e.Reason)
}
