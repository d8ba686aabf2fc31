package security

import (
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/etnz/holdings/logging"
	"github.com/patrickmn/go-cache"
)

// ErrNotFound is returned when a key does not resolve to any entry.
var ErrNotFound = errors.New("security not found")

// index maps a key to the ISINs claiming it, in insertion order.
// The first claimer owns the key.
type index map[string][]string

func (x index) add(key, isin string) {
	if key == "" || slices.Contains(x[key], isin) {
		return
	}
	x[key] = append(x[key], isin)
}

func (x index) remove(key, isin string) {
	owners := slices.DeleteFunc(x[key], func(s string) bool { return s == isin })
	if len(owners) == 0 {
		delete(x, key)
		return
	}
	x[key] = owners
}

func (x index) first(key string) (string, bool) {
	owners := x[key]
	if len(owners) == 0 {
		return "", false
	}
	return owners[0], true
}

// DB is the reference database of known securities.
//
// Lookups can be run concurrently; Add and Remove are serialized with them,
// so a single DB can be shared by pipelines processing different documents.
type DB struct {
	mu         sync.RWMutex
	entries    map[string]*Entry // by ISIN
	normalized map[string]string // ISIN to normalized name, for fuzzy scoring
	byTicker   index
	byName     index
	byCUSIP    index
	bySEDOL    index
	byFIGI     index
	variants   index

	matches    *cache.Cache // memoised FindBestMatch results
	generation uint64       // incremented by every modification

	sources []string
	updated time.Time
}

// New returns a new empty database.
func New() *DB {
	return &DB{
		entries:    make(map[string]*Entry),
		normalized: make(map[string]string),
		byTicker:   make(index),
		byName:     make(index),
		byCUSIP:    make(index),
		bySEDOL:    make(index),
		byFIGI:     make(index),
		variants:   make(index),
		matches:    cache.New(30*time.Minute, time.Hour),
	}
}

// Len returns the number of entries.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.entries)
}

// Sources returns the list of sources the database was loaded from.
func (db *DB) Sources() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return slices.Clone(db.sources)
}

// Updated returns the time of the last modification.
func (db *DB) Updated() time.Time {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.updated
}

// Add inserts the entry, overwriting wholesale any entry with the same ISIN.
// The entry must carry a valid ISIN and a name.
func (db *DB) Add(e Entry) error {
	e.ISIN = NormalizeISIN(e.ISIN)
	if err := e.Validate(); err != nil {
		return err
	}
	e = e.clone()

	db.mu.Lock()
	defer db.mu.Unlock()
	if old, exists := db.entries[e.ISIN]; exists {
		db.unindex(old)
	}
	db.entries[e.ISIN] = &e
	db.reindex(&e)
	db.generation++
	db.matches.Flush()
	db.updated = time.Now()
	logging.Logger().WithField("isin", e.ISIN).Debug("add-reference-entry")
	return nil
}

// Remove deletes the entry and every key derived from it. It returns false
// if there was no such entry.
func (db *DB) Remove(isin string) bool {
	isin = NormalizeISIN(isin)

	db.mu.Lock()
	defer db.mu.Unlock()
	e, exists := db.entries[isin]
	if !exists {
		return false
	}
	db.unindex(e)
	delete(db.entries, isin)
	db.generation++
	db.matches.Flush()
	db.updated = time.Now()
	logging.Logger().WithField("isin", isin).Debug("remove-reference-entry")
	return true
}

// reindex registers every key of e. Must be called with the write lock.
func (db *DB) reindex(e *Entry) {
	db.normalized[e.ISIN] = NormalizeName(e.Name)
	db.byTicker.add(strings.ToUpper(strings.TrimSpace(e.Ticker)), e.ISIN)
	db.byName.add(strings.ToLower(strings.TrimSpace(e.Name)), e.ISIN)
	db.byCUSIP.add(strings.ToUpper(e.CUSIP), e.ISIN)
	db.bySEDOL.add(strings.ToUpper(e.SEDOL), e.ISIN)
	db.byFIGI.add(strings.ToUpper(e.FIGI), e.ISIN)
	for _, v := range nameVariants(e.Name) {
		db.variants.add(v, e.ISIN)
	}
}

// unindex removes every key of e. Must be called with the write lock.
func (db *DB) unindex(e *Entry) {
	delete(db.normalized, e.ISIN)
	db.byTicker.remove(strings.ToUpper(strings.TrimSpace(e.Ticker)), e.ISIN)
	db.byName.remove(strings.ToLower(strings.TrimSpace(e.Name)), e.ISIN)
	db.byCUSIP.remove(strings.ToUpper(e.CUSIP), e.ISIN)
	db.bySEDOL.remove(strings.ToUpper(e.SEDOL), e.ISIN)
	db.byFIGI.remove(strings.ToUpper(e.FIGI), e.ISIN)
	for _, v := range nameVariants(e.Name) {
		db.variants.remove(v, e.ISIN)
	}
}

// get returns a copy of the entry for isin. Must be called with the read lock.
func (db *DB) get(isin string) (Entry, bool) {
	e, ok := db.entries[isin]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// lookupIn resolves key through x.
func (db *DB) lookupIn(x index, key string) (Entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	isin, ok := x.first(key)
	if !ok {
		return Entry{}, false
	}
	return db.get(isin)
}

// ByISIN returns the entry with that ISIN.
func (db *DB) ByISIN(isin string) (Entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.get(NormalizeISIN(isin))
}

// ByTicker returns the entry with that ticker, case-insensitive.
func (db *DB) ByTicker(ticker string) (Entry, bool) {
	return db.lookupIn(db.byTicker, strings.ToUpper(strings.TrimSpace(ticker)))
}

// ByCUSIP returns the entry with that CUSIP.
func (db *DB) ByCUSIP(cusip string) (Entry, bool) {
	return db.lookupIn(db.byCUSIP, strings.ToUpper(strings.TrimSpace(cusip)))
}

// BySEDOL returns the entry with that SEDOL.
func (db *DB) BySEDOL(sedol string) (Entry, bool) {
	return db.lookupIn(db.bySEDOL, strings.ToUpper(strings.TrimSpace(sedol)))
}

// ByFIGI returns the entry with that FIGI.
func (db *DB) ByFIGI(figi string) (Entry, bool) {
	return db.lookupIn(db.byFIGI, strings.ToUpper(strings.TrimSpace(figi)))
}

// ByName returns the entry with that name, case-insensitive.
//
// The exact name is tried first, then the pre-indexed name variants
// (suffix stripped, abbreviated, with or without "the", initials).
func (db *DB) ByName(name string) (Entry, bool) {
	if e, ok := db.lookupIn(db.byName, strings.ToLower(strings.TrimSpace(name))); ok {
		return e, true
	}
	return db.byVariant(name)
}

// byVariant looks up the basic and normalized forms of name in the variants index.
func (db *DB) byVariant(name string) (Entry, bool) {
	for _, key := range []string{basicName(name), NormalizeName(name)} {
		if key == "" {
			continue
		}
		if e, ok := db.lookupIn(db.variants, key); ok {
			return e, true
		}
	}
	return Entry{}, false
}

// Lookup resolves any kind of key: ISIN, ticker, SEDOL, CUSIP, FIGI or name.
func (db *DB) Lookup(key string) (Entry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Entry{}, ErrNotFound
	}
	lookups := []func(string) (Entry, bool){db.ByISIN, db.ByTicker, db.BySEDOL, db.ByCUSIP, db.ByFIGI, db.ByName}
	for _, lookup := range lookups {
		if e, ok := lookup(key); ok {
			return e, nil
		}
	}
	return Entry{}, ErrNotFound
}

// Entries returns a copy of all entries sorted by ISIN.
func (db *DB) Entries() []Entry {
	db.mu.RLock()
	defer db.mu.RUnlock()
	list := make([]Entry, 0, len(db.entries))
	for _, e := range db.entries {
		list = append(list, e.clone())
	}
	slices.SortFunc(list, func(a, b Entry) int { return strings.Compare(a.ISIN, b.ISIN) })
	return list
}
