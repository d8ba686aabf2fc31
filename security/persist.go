package security

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/etnz/holdings/logging"
)

// The reference file is a single json document:
//
//	{
//	  "metadata": {"last_updated": "2025-01-02T15:04:05Z", "sources": ["builtin"], "record_count": 2},
//	  "securities": [ {"isin": "US0378331005", "name": "Apple Inc.", ...}, ... ]
//	}
//
// Every entry field is optional on read, absent fields are left empty.

// jmetadata is the metadata block read from and written to the file.
type jmetadata struct {
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	Sources     []string   `json:"sources,omitempty"`
	RecordCount *int       `json:"record_count,omitempty"`
}

// jentry is the object read from the file using json parser.
// Pointers tell an absent field apart from an empty one.
type jentry struct {
	ISIN         *string           `json:"isin"`
	Name         *string           `json:"name"`
	Ticker       *string           `json:"ticker"`
	Sector       *string           `json:"sector"`
	Industry     *string           `json:"industry"`
	SecurityType *string           `json:"security_type"`
	Country      *string           `json:"country"`
	Currency     *string           `json:"currency"`
	Exchange     *string           `json:"exchange"`
	CUSIP        *string           `json:"cusip"`
	SEDOL        *string           `json:"sedol"`
	FIGI         *string           `json:"figi"`
	Metadata     map[string]string `json:"metadata"`
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (j jentry) entry() Entry {
	return Entry{
		ISIN:         str(j.ISIN),
		Name:         str(j.Name),
		Ticker:       str(j.Ticker),
		Sector:       str(j.Sector),
		Industry:     str(j.Industry),
		SecurityType: str(j.SecurityType),
		Country:      str(j.Country),
		Currency:     str(j.Currency),
		Exchange:     str(j.Exchange),
		CUSIP:        str(j.CUSIP),
		SEDOL:        str(j.SEDOL),
		FIGI:         str(j.FIGI),
		Metadata:     j.Metadata,
	}
}

// Load merges the entries read from r into the database. source names the
// origin in the metadata and in error messages.
//
// Entries that fail validation are skipped with a warning. Only a malformed
// document is an error.
func (db *DB) Load(source string, r io.Reader) error {
	var file struct {
		Metadata   jmetadata `json:"metadata"`
		Securities []jentry  `json:"securities"`
	}
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return fmt.Errorf("format error %q: %w", source, err)
	}

	log := logging.Logger().WithField("source", source)
	loaded := 0
	for i, je := range file.Securities {
		if err := db.Add(je.entry()); err != nil {
			log.WithField("index", i).WithError(err).Warn("skip-reference-entry")
			continue
		}
		loaded++
	}
	if file.Metadata.RecordCount != nil && *file.Metadata.RecordCount != len(file.Securities) {
		log.WithField("declared", *file.Metadata.RecordCount).WithField("found", len(file.Securities)).Warn("record-count-mismatch")
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for _, s := range append(file.Metadata.Sources, source) {
		if s != "" && !slices.Contains(db.sources, s) {
			db.sources = append(db.sources, s)
		}
	}
	log.WithField("count", loaded).Info("load-reference-file")
	return nil
}

// LoadFile merges the entries of a reference file into the database.
// The returned error wraps fs.ErrNotExist if the file does not exist.
func (db *DB) LoadFile(filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("load error: cannot open reference file %q: %w", filename, err)
	}
	defer f.Close()
	return db.Load(filename, f)
}

// Save writes the whole database to w, stamped with the time of its last
// modification. Entries are sorted by ISIN so that the output is stable and
// diff friendly.
func (db *DB) Save(w io.Writer) error {
	entries := db.Entries()
	updated := db.Updated()
	if updated.IsZero() {
		updated = time.Now()
	}
	updated = updated.UTC().Truncate(time.Second)
	count := len(entries)
	file := struct {
		Metadata   jmetadata `json:"metadata"`
		Securities []Entry   `json:"securities"`
	}{
		Metadata: jmetadata{
			LastUpdated: &updated,
			Sources:     db.Sources(),
			RecordCount: &count,
		},
		Securities: entries,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(file); err != nil {
		return fmt.Errorf("persist error: cannot write reference database: %w", err)
	}
	return nil
}

// SaveFile writes the whole database into filename.
func (db *DB) SaveFile(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("persist error: cannot create file %q: %w", filename, err)
	}
	defer f.Close()
	logging.Logger().WithField("name", filename).Info("create-reference-file")

	if err := db.Save(f); err != nil {
		return err
	}
	return f.Close()
}
