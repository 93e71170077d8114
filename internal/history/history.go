// Package history persists calculator input and function definitions across
// sessions in a bbolt database.
package history

import (
	"encoding/binary"
	"errors"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketCmd = "cmd"
	bucketDef = "def"
)

// ErrNoMatchingCmd is returned when no history item has a given sequence
// number.
var ErrNoMatchingCmd = errors.New("no matching command line")

// Entry is one line of history.
type Entry struct {
	Seq  int
	Text string
}

// Store is a history database. It is safe for concurrent use.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the history database at path. A database held open by
// another process is reported after a short timeout.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range []string{bucketCmd, bucketDef} {
			if _, err := tx.CreateBucketIfNotExists([]byte(b)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add appends a line to the history and returns its sequence number.
func (s *Store) Add(text string) (int, error) {
	var seq uint64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketCmd))
		var err error
		seq, err = b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(marshalSeq(seq), []byte(text))
	})
	return int(seq), err
}

// Get returns the line with the given sequence number.
func (s *Store) Get(seq int) (string, error) {
	var text string
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketCmd)).Get(marshalSeq(uint64(seq)))
		if v == nil {
			return ErrNoMatchingCmd
		}
		text = string(v)
		return nil
	})
	return text, err
}

// Recent returns up to n of the most recent lines, oldest first. If n is not
// positive, all lines are returned.
func (s *Store) Recent(n int) ([]Entry, error) {
	var r []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bucketCmd)).Cursor()
		for k, v := c.Last(); k != nil && (n <= 0 || len(r) < n); k, v = c.Prev() {
			r = append(r, Entry{Seq: int(unmarshalSeq(k)), Text: string(v)})
		}
		return nil
	})
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return r, err
}

// Def is a saved function definition.
type Def struct {
	Name   string
	// Format names the notation of Src. It is empty for definitions saved
	// without one.
	Format string
	Src    string
}

// Define records a function definition, replacing any earlier definition of
// the same name.
func (s *Store) Define(d Def) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketDef)).Put([]byte(d.Name), marshalDef(d))
	})
}

// Defs calls f with each recorded definition in name order. Iteration stops at
// the first error f returns.
func (s *Store) Defs(f func(Def) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketDef)).ForEach(func(k, v []byte) error {
			return f(unmarshalDef(k, v))
		})
	})
}

func marshalDef(d Def) []byte {
	return []byte(d.Format + "\x00" + d.Src)
}

func unmarshalDef(key, v []byte) Def {
	d := Def{Name: string(key)}
	if f, src, ok := strings.Cut(string(v), "\x00"); ok {
		d.Format, d.Src = f, src
	} else {
		d.Src = string(v)
	}
	return d
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

func unmarshalSeq(key []byte) uint64 {
	return binary.BigEndian.Uint64(key)
}
