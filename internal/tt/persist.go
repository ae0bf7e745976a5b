package tt

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/hailam/chessplay-uci/internal/board"
)

// PersistentStore checkpoints a Table's buckets to an on-disk BadgerDB,
// repurposing the teacher's GUI-preferences key-value store for TT
// warm-starts. Disabled by default; only created when the UCI layer
// receives `setoption name PersistTT value <dir>`.
type PersistentStore struct {
	db *badger.DB
}

// OpenPersistentStore opens (or creates) a Badger database at dir.
func OpenPersistentStore(dir string) (*PersistentStore, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open tt persistence store %q", dir)
	}
	return &PersistentStore{db: db}, nil
}

func (p *PersistentStore) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

// bucketKey derives the Badger key for a bucket index. xxhash64 of the
// index gives a fixed-width, well-distributed key without hand-rolling a
// second hash for the same concern Badger already pulls in transitively.
func bucketKey(index uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], index)
	sum := xxhash.Sum64(buf[:])
	var key [8]byte
	binary.BigEndian.PutUint64(key[:], sum)
	return key[:]
}

const entryWireSize = 8 + 2 + 2 + 2 + 1 + 1 // key, bestmove, score, staticeval, depth, meta

func encodeEntry(e Entry) []byte {
	buf := make([]byte, entryWireSize)
	binary.LittleEndian.PutUint64(buf[0:8], e.Key)
	binary.LittleEndian.PutUint16(buf[8:10], uint16(e.BestMove))
	binary.LittleEndian.PutUint16(buf[10:12], uint16(e.Score))
	binary.LittleEndian.PutUint16(buf[12:14], uint16(e.StaticEval))
	buf[14] = uint8(e.Depth)
	buf[15] = e.meta
	return buf
}

func decodeEntry(buf []byte) Entry {
	var e Entry
	e.Key = binary.LittleEndian.Uint64(buf[0:8])
	e.BestMove = board.Move(binary.LittleEndian.Uint16(buf[8:10]))
	e.Score = int16(binary.LittleEndian.Uint16(buf[10:12]))
	e.StaticEval = int16(binary.LittleEndian.Uint16(buf[12:14]))
	e.Depth = int8(buf[14])
	e.meta = buf[15]
	return e
}

// Checkpoint writes every non-empty bucket's slot 0 (the MRU entry, the
// one worth keeping) to the store, keyed by bucket index.
func (p *PersistentStore) Checkpoint(t *Table) error {
	return p.db.Update(func(txn *badger.Txn) error {
		for i, b := range t.buckets {
			if b.entries[0].Depth == 0 {
				continue
			}
			if err := txn.Set(bucketKey(uint64(i)), encodeEntry(b.entries[0])); err != nil {
				return err
			}
		}
		return nil
	})
}

// WarmStart loads previously checkpointed entries back into t, ageing them
// to the table's current generation so they aren't immediately evicted as
// stale by the first search round.
func (p *PersistentStore) WarmStart(t *Table) error {
	return p.db.View(func(txn *badger.Txn) error {
		for i := range t.buckets {
			item, err := txn.Get(bucketKey(uint64(i)))
			if err == badger.ErrKeyNotFound {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				if len(val) != entryWireSize {
					return nil
				}
				e := decodeEntry(val)
				e.meta = packMeta(e.Bound(), e.PV(), t.age)
				t.buckets[i].entries[0] = e
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}
