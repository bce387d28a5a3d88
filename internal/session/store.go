package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
	bolt "go.etcd.io/bbolt"
)

const bucketSessions = "sessions"

// DefaultName is the workspace name used when none is given.
const DefaultName = "default"

// ErrStoreClosed is returned when operations are attempted on a closed store.
var ErrStoreClosed = errors.New("session: store is closed")

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("session: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("session: CBOR decoder initialization failed: " + err.Error())
	}
}

// Record is a persisted workbench layout.
type Record struct {
	// Paths holds the open document paths in tab order.
	Paths []string `cbor:"1,keyasint"`

	// Active is the index into Paths of the active tab, or -1.
	Active int `cbor:"2,keyasint"`

	// Home records an open home tab.
	Home bool `cbor:"3,keyasint,omitempty"`

	// HomeActive records that the home tab was the active one.
	HomeActive bool `cbor:"4,keyasint,omitempty"`

	SavedAt time.Time `cbor:"5,keyasint"`
}

// Store is a bbolt-backed session store. It is safe for concurrent use.
type Store struct {
	db *bolt.DB
}

// Open opens or creates the session database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSessions))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("session: init %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Save stores rec under name, replacing any previous record.
func (s *Store) Save(ctx context.Context, name string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if rec.SavedAt.IsZero() {
		rec.SavedAt = time.Now().UTC()
	}
	data, err := encMode.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: encode: %w", err)
	}
	return s.update(func(b *bolt.Bucket) error {
		return b.Put([]byte(name), data)
	})
}

// Load returns the record stored under name. ok is false if there is none.
func (s *Store) Load(ctx context.Context, name string) (rec Record, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	err = s.view(func(b *bolt.Bucket) error {
		data := b.Get([]byte(name))
		if data == nil {
			return nil
		}
		ok = true
		return decMode.Unmarshal(data, &rec)
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("session: load %s: %w", name, err)
	}
	return rec, ok, nil
}

// Delete removes the record stored under name. Deleting a missing record
// is not an error.
func (s *Store) Delete(name string) error {
	return s.update(func(b *bolt.Bucket) error {
		return b.Delete([]byte(name))
	})
}

// Names lists the stored workspace names in key order.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.view(func(b *bolt.Bucket) error {
		return b.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

// Close releases the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) view(fn func(*bolt.Bucket) error) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(tx.Bucket([]byte(bucketSessions)))
	})
}

func (s *Store) update(fn func(*bolt.Bucket) error) error {
	if s.db == nil {
		return ErrStoreClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(tx.Bucket([]byte(bucketSessions)))
	})
}
