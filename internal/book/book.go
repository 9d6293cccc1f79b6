// Package book caches root search results in the shared database so a
// position searched once at a given depth is answered instantly the next
// time.
package book

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/hailam/fourplay/internal/board"
	"github.com/hailam/fourplay/internal/engine"
)

const (
	keyPrefix = "book/"
	// Export entry format:
	// 8 bytes: position key (big-endian)
	// 1 byte: depth
	// 1 byte: column
	// 8 bytes: score (float64 bits, big-endian)
	entrySize = 18
	valueSize = 10
)

// Entry is one cached search result.
type Entry struct {
	Key    uint64
	Depth  int
	Column int
	Score  float64
}

// Book is a persistent analysis cache keyed by position and evaluator.
type Book struct {
	db          *badger.DB
	fingerprint uint64
}

// New creates a book stored in db. fingerprint identifies the evaluator
// and search settings; entries written under another fingerprint are
// never returned.
func New(db *badger.DB, fingerprint uint64) *Book {
	return &Book{db: db, fingerprint: fingerprint}
}

// Fingerprint combines an evaluator fingerprint with the search
// magnitudes, which scale every cached score.
func Fingerprint(evaluator uint64, cfg engine.Config) uint64 {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], evaluator)
	binary.BigEndian.PutUint64(buf[8:16], math.Float64bits(cfg.WinLoss))
	binary.BigEndian.PutUint64(buf[16:24], math.Float64bits(cfg.Bound))
	return xxhash.Sum64(buf[:])
}

// Key returns the book key of a position.
func (b *Book) Key(pos *board.Board) uint64 {
	return pos.Hash() ^ b.fingerprint
}

// Probe returns the cached result for pos. It only hits when the entry was
// stored at exactly depth, so the answer equals a fresh search.
func (b *Book) Probe(pos *board.Board, depth int) (engine.MoveEvaluation, bool) {
	if b == nil {
		return engine.MoveEvaluation{}, false
	}

	var entry Entry
	found := false
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(dbKey(b.Key(pos)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) != valueSize {
				return fmt.Errorf("corrupt book entry of %d bytes", len(val))
			}
			entry = decodeValue(val)
			found = true
			return nil
		})
	})
	if err != nil {
		log.Warn().Err(err).Msg("book-probe-failed")
		return engine.MoveEvaluation{}, false
	}
	if !found || entry.Depth != depth {
		return engine.MoveEvaluation{}, false
	}
	if !lo.Contains(pos.ValidColumns(), entry.Column) {
		log.Warn().Int("column", entry.Column).Uint64("key", b.Key(pos)).Msg("book-entry-unplayable")
		return engine.MoveEvaluation{}, false
	}
	return engine.MoveEvaluation{Column: entry.Column, Score: entry.Score}, true
}

// Store saves a search result for pos at depth, replacing any older entry.
func (b *Book) Store(pos *board.Board, depth int, result engine.MoveEvaluation) error {
	if b == nil {
		return nil
	}
	if depth < 0 || depth > math.MaxUint8 {
		return fmt.Errorf("depth %d out of range", depth)
	}
	entry := Entry{Key: b.Key(pos), Depth: depth, Column: result.Column, Score: result.Score}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(dbKey(entry.Key), encodeValue(entry))
	})
}

// Size returns the number of cached positions.
func (b *Book) Size() int {
	if b == nil {
		return 0
	}
	n := 0
	_ = b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n
}

// Export writes every entry in the fixed 18-byte format.
func (b *Book) Export(w io.Writer) (int, error) {
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		var buf [entrySize]byte
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := binary.BigEndian.Uint64(item.Key()[len(keyPrefix):])
			err := item.Value(func(val []byte) error {
				if len(val) != valueSize {
					return fmt.Errorf("corrupt book entry of %d bytes", len(val))
				}
				binary.BigEndian.PutUint64(buf[0:8], key)
				copy(buf[8:], val)
				return nil
			})
			if err != nil {
				return err
			}
			if _, err := w.Write(buf[:]); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// Import reads entries written by Export and stores them.
func (b *Book) Import(r io.Reader) (int, error) {
	wb := b.db.NewWriteBatch()

	n, err := readEntries(r, wb)
	if err != nil {
		wb.Cancel()
		return n, err
	}
	if err := wb.Flush(); err != nil {
		return n, err
	}
	log.Debug().Int("entries", n).Msg("book-imported")
	return n, nil
}

func readEntries(r io.Reader, wb *badger.WriteBatch) (int, error) {
	var entry [entrySize]byte
	n := 0
	for {
		_, err := io.ReadFull(r, entry[:])
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, fmt.Errorf("read book entry %d: %w", n, err)
		}

		key := binary.BigEndian.Uint64(entry[0:8])
		value := append([]byte(nil), entry[8:]...)
		if err := checkValue(decodeValue(value)); err != nil {
			return n, fmt.Errorf("book entry %d: %w", n, err)
		}
		if err := wb.Set(dbKey(key), value); err != nil {
			return n, err
		}
		n++
	}
}

func checkValue(e Entry) error {
	if e.Column < 0 || e.Column >= board.Width {
		return fmt.Errorf("column %d out of range", e.Column)
	}
	if math.IsNaN(e.Score) || math.IsInf(e.Score, 0) {
		return fmt.Errorf("score %v is not finite", e.Score)
	}
	return nil
}

func dbKey(key uint64) []byte {
	k := make([]byte, len(keyPrefix)+8)
	copy(k, keyPrefix)
	binary.BigEndian.PutUint64(k[len(keyPrefix):], key)
	return k
}

func encodeValue(e Entry) []byte {
	v := make([]byte, valueSize)
	v[0] = byte(e.Depth)
	v[1] = byte(e.Column)
	binary.BigEndian.PutUint64(v[2:], math.Float64bits(e.Score))
	return v
}

func decodeValue(v []byte) Entry {
	return Entry{
		Depth:  int(v[0]),
		Column: int(v[1]),
		Score:  math.Float64frombits(binary.BigEndian.Uint64(v[2:])),
	}
}
