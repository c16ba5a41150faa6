package popcov

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
)

// ReferenceDB is a SQLite file holding an allele frequency table and an
// epitope set, so that a curated input can be shared as a single artifact.
type ReferenceDB struct {
	DB       *sqlx.DB
	Metadata *ReferenceMetadata
}

// ReferenceMetadata conforms to the single row of the "Metadata" table.
type ReferenceMetadata struct {
	Name         string `db:"name"`
	Source       string `db:"source"`
	CreationTime Time   `db:"creation_time"`
}

// Time is the creation time in the Metadata table. CreateReferenceDB writes
// unix seconds; databases assembled by hand may carry text timestamps.
type Time time.Time

var metadataTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func (t *Time) Scan(v interface{}) error {
	switch value := v.(type) {
	case int64:
		*t = Time(time.Unix(value, 0))
	case time.Time:
		*t = Time(value)
	case []byte:
		return t.parse(string(value))
	case string:
		return t.parse(value)
	default:
		return fmt.Errorf("cannot read a metadata time from %T (%v)", v, v)
	}
	return nil
}

func (t *Time) parse(text string) error {
	for _, layout := range metadataTimeLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognized metadata time %q", text)
}

func (t Time) String() string {
	return time.Time(t).Format(time.RFC3339)
}

// epitopeRow conforms to the rows of the "Epitope" table.
type epitopeRow struct {
	Position         int     `db:"position"`
	SequenceID       string  `db:"sequence_id"`
	Locus            string  `db:"locus"`
	Allele           string  `db:"allele"`
	Immunoprevalence float64 `db:"immunoprevalence"`
	NTested          int     `db:"n_tested"`
	NResponders      int     `db:"n_responders"`
}

const referenceSchema = `
CREATE TABLE IF NOT EXISTS Metadata (
	name TEXT NOT NULL,
	source TEXT NOT NULL,
	creation_time INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS AlleleFrequency (
	locus TEXT NOT NULL,
	allele TEXT NOT NULL,
	frequency REAL NOT NULL,
	PRIMARY KEY (locus, allele)
);
CREATE TABLE IF NOT EXISTS Epitope (
	position INTEGER PRIMARY KEY,
	sequence_id TEXT NOT NULL,
	locus TEXT NOT NULL,
	allele TEXT NOT NULL,
	immunoprevalence REAL NOT NULL,
	n_tested INTEGER NOT NULL,
	n_responders INTEGER NOT NULL
);
`

// OpenReferenceDB opens an existing reference database at path. Unlike
// CreateReferenceDB it never creates the file.
func OpenReferenceDB(path string) (*ReferenceDB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, pfx.Err(err)
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	ref := &ReferenceDB{
		DB:       db,
		Metadata: &ReferenceMetadata{},
	}

	// Hand-assembled databases may lack metadata; ignore any error
	_ = ref.DB.Get(ref.Metadata, "SELECT name, source, creation_time FROM Metadata LIMIT 1")

	return ref, nil
}

// CreateReferenceDB writes table and epitopes into a new database at path,
// in a single transaction. Epitope order is preserved.
func CreateReferenceDB(path string, meta ReferenceMetadata, table *FrequencyTable, epitopes []Epitope) (*ReferenceDB, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, pfx.Err(err)
	}

	if _, err := db.Exec(referenceSchema); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	if time.Time(meta.CreationTime).IsZero() {
		meta.CreationTime = Time(time.Now())
	}

	tx, err := db.Beginx()
	if err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	if err := insertReference(tx, meta, table, epitopes); err != nil {
		tx.Rollback()
		db.Close()
		return nil, pfx.Err(err)
	}

	if err := tx.Commit(); err != nil {
		db.Close()
		return nil, pfx.Err(err)
	}

	return &ReferenceDB{DB: db, Metadata: &meta}, nil
}

func insertReference(tx *sqlx.Tx, meta ReferenceMetadata, table *FrequencyTable, epitopes []Epitope) error {
	if _, err := tx.Exec("INSERT INTO Metadata (name, source, creation_time) VALUES (?, ?, ?)",
		meta.Name, meta.Source, time.Time(meta.CreationTime).Unix()); err != nil {
		return err
	}

	for _, r := range table.Records() {
		if _, err := tx.NamedExec("INSERT INTO AlleleFrequency (locus, allele, frequency) VALUES (:locus, :allele, :frequency)", r); err != nil {
			return fmt.Errorf("allele %s*%s: %w", r.Locus, r.Allele, err)
		}
	}

	for i, e := range epitopes {
		row := epitopeRow{
			Position:         i,
			SequenceID:       e.SequenceID,
			Locus:            e.Allele.Locus,
			Allele:           e.Allele.Name,
			Immunoprevalence: e.Immunoprevalence,
			NTested:          e.NTested,
			NResponders:      e.NResponders,
		}
		if _, err := tx.NamedExec(`INSERT INTO Epitope (position, sequence_id, locus, allele, immunoprevalence, n_tested, n_responders)
			VALUES (:position, :sequence_id, :locus, :allele, :immunoprevalence, :n_tested, :n_responders)`, row); err != nil {
			return fmt.Errorf("epitope %d (%s): %w", i, e.SequenceID, err)
		}
	}

	return nil
}

func (r *ReferenceDB) Close() error {
	return r.DB.Close()
}

// FrequencyTable loads and validates the allele frequencies.
func (r *ReferenceDB) FrequencyTable() (*FrequencyTable, error) {
	var records []FrequencyRecord
	if err := r.DB.Select(&records, "SELECT locus, allele, frequency FROM AlleleFrequency ORDER BY locus, allele"); err != nil {
		return nil, pfx.Err(err)
	}

	return NewFrequencyTable(records)
}

// Epitopes loads the epitope set in its stored order.
func (r *ReferenceDB) Epitopes() ([]Epitope, error) {
	var rows []epitopeRow
	if err := r.DB.Select(&rows, "SELECT * FROM Epitope ORDER BY position ASC"); err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]Epitope, 0, len(rows))
	for _, row := range rows {
		out = append(out, Epitope{
			SequenceID:       row.SequenceID,
			Allele:           Allele{Locus: row.Locus, Name: row.Allele},
			Immunoprevalence: row.Immunoprevalence,
			NTested:          row.NTested,
			NResponders:      row.NResponders,
		})
	}

	return out, nil
}

// sqliteURI adds the 'file:' prefix. URI filenames have to begin with
// 'file:'; see https://www.sqlite.org/c3ref/open.html . It seems that sqlite3
// permitted URI filenames without the file: prefix, but that is not standard.
func sqliteURI(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path
}
