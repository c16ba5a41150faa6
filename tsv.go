package popcov

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
)

// Map columns in the input tables to their names. Columns may appear in any
// order; extra columns are ignored.
const (
	ColumnSequenceID       = "sequence_id"
	ColumnLocus            = "locus"
	ColumnAllele           = "allele"
	ColumnImmunoprevalence = "immunoprevalence"
	ColumnNTested          = "n_tested"
	ColumnNResponders      = "n_responders"
	ColumnFrequency        = "frequency"
)

type tsvTable struct {
	cr      *csv.Reader
	columns map[string]int
}

func newTSVTable(r io.Reader, required ...string) (*tsvTable, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	t := &tsvTable{cr: cr, columns: make(map[string]int, len(header))}
	for i, name := range header {
		t.columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := t.columns[name]; !ok {
			return nil, fmt.Errorf("header is missing column %q", name)
		}
	}

	return t, nil
}

// each calls fn for every data row with an accessor for named fields.
func (t *tsvTable) each(fn func(line int, get func(string) string) error) error {
	for {
		row, err := t.cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		line, _ := t.cr.FieldPos(0)
		get := func(name string) string {
			return strings.TrimSpace(row[t.columns[name]])
		}
		if err := fn(line, get); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

// ReadFrequencyTSV parses a tab-separated allele frequency table with
// columns locus, allele and frequency.
func ReadFrequencyTSV(r io.Reader) ([]FrequencyRecord, error) {
	t, err := newTSVTable(r, ColumnLocus, ColumnAllele, ColumnFrequency)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var out []FrequencyRecord
	err = t.each(func(line int, get func(string) string) error {
		f, err := strconv.ParseFloat(get(ColumnFrequency), 64)
		if err != nil {
			return err
		}
		out = append(out, FrequencyRecord{
			Locus:     get(ColumnLocus),
			Allele:    get(ColumnAllele),
			Frequency: f,
		})
		return nil
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}

// ReadEpitopeTSV parses a tab-separated epitope table with columns
// sequence_id, locus, allele, immunoprevalence, n_tested and n_responders.
// Values are not range-checked here; see ValidateEpitopes.
func ReadEpitopeTSV(r io.Reader) ([]Epitope, error) {
	t, err := newTSVTable(r, ColumnSequenceID, ColumnLocus, ColumnAllele, ColumnImmunoprevalence, ColumnNTested, ColumnNResponders)
	if err != nil {
		return nil, pfx.Err(err)
	}

	var out []Epitope
	err = t.each(func(line int, get func(string) string) error {
		e := Epitope{
			SequenceID: get(ColumnSequenceID),
			Allele:     Allele{Locus: get(ColumnLocus), Name: get(ColumnAllele)},
		}

		var err error
		if e.Immunoprevalence, err = strconv.ParseFloat(get(ColumnImmunoprevalence), 64); err != nil {
			return err
		}
		if e.NTested, err = strconv.Atoi(get(ColumnNTested)); err != nil {
			return err
		}
		if e.NResponders, err = strconv.Atoi(get(ColumnNResponders)); err != nil {
			return err
		}

		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}
