package monitor

import (
	"encoding/binary"
	"encoding/json"
	"log"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Archive is a Sink that keeps events in a bbolt database.
//
// Every run gets its own bucket (named by the run ID), and events are
// keyed by their sequence numbers.  Only the event log is kept.
// Protocol state is never written.
type Archive struct {
	Debug bool

	filename string
	db       *bolt.DB
}

// OpenArchive opens (or creates) the database.
func OpenArchive(filename string) (*Archive, error) {
	opts := &bolt.Options{
		Timeout: time.Second,
	}
	db, err := bolt.Open(filename, 0644, opts)
	if err != nil {
		return nil, err
	}
	return &Archive{
		filename: filename,
		db:       db,
	}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

func (a *Archive) logf(format string, args ...interface{}) {
	if a.Debug {
		log.Printf("Archive."+format, args...)
	}
}

func seqKey(seq int64) []byte {
	k := make([]byte, 8)
	binary.BigEndian.PutUint64(k, uint64(seq))
	return k
}

// Emit writes the event.
func (a *Archive) Emit(e Event) error {
	js, err := json.Marshal(&e)
	if err != nil {
		return err
	}
	a.logf("Emit %s %d", e.Run, e.Seq)
	return a.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(e.Run))
		if err != nil {
			return err
		}
		return b.Put(seqKey(e.Seq), js)
	})
}

// Runs returns the IDs of the archived runs.
func (a *Archive) Runs() ([]string, error) {
	acc := make([]string, 0, 8)
	err := a.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			acc = append(acc, string(name))
			return nil
		})
	})
	return acc, err
}

// Events returns a run's events in order.  An unknown run has no
// events.
func (a *Archive) Events(run string) ([]Event, error) {
	acc := make([]Event, 0, 64)
	err := a.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(run))
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var e Event
			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}
			acc = append(acc, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// Forget removes a run.
func (a *Archive) Forget(run string) error {
	return a.db.Update(func(tx *bolt.Tx) error {
		return tx.DeleteBucket([]byte(run))
	})
}
