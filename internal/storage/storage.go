// Package storage persists magic multipliers between runs so a later build
// can try them before searching.
//
// Only multipliers are stored. Tables are always rebuilt and verified in
// memory; a stored multiplier that no longer works is simply ignored by the
// compiler.
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/hailam/wideboard/internal/bitboard"
	"github.com/hailam/wideboard/internal/board"
	"github.com/hailam/wideboard/internal/magic"
)

// Record layout, little endian:
//
//	0  [4]byte  "WBMG"
//	4  uint8    version
//	5  uint8    board size
//	6  uint8    piece type
//	7  uint8    reserved
//	8  uint16   multiplier count
//	10 uint64   xxhash of the uncompressed payload
//	18 ...      zstd-compressed payload, count * 4 uint64 words
const (
	recordMagic   = "WBMG"
	recordVersion = 1
	headerSize    = 18
)

var (
	// ErrNotFound is returned when no multipliers are stored for a geometry
	// and piece type.
	ErrNotFound = errors.New("multipliers not found")
	// ErrCorrupt is returned when a stored record fails to decode or its
	// checksum does not match.
	ErrCorrupt = errors.New("corrupt multiplier record")
)

// MagicStore wraps BadgerDB for multiplier storage.
type MagicStore struct {
	db      *badger.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// Open opens (or creates) a store in dir. An empty dir uses DatabaseDir.
func Open(dir string) (*MagicStore, error) {
	if dir == "" {
		var err error
		if dir, err = DatabaseDir(); err != nil {
			return nil, err
		}
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = nil // Disable logging

	return open(opts)
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*MagicStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts)
}

func open(opts badger.Options) (*MagicStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	db, err := badger.Open(opts)
	if err != nil {
		encoder.Close()
		decoder.Close()
		return nil, fmt.Errorf("open multiplier store: %w", err)
	}

	return &MagicStore{db: db, encoder: encoder, decoder: decoder}, nil
}

// Close closes the database
func (s *MagicStore) Close() error {
	if s.decoder != nil {
		s.decoder.Close()
	}
	if s.encoder != nil {
		s.encoder.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Fingerprint hashes the relevant occupancy masks of a piece type on g.
// Multipliers are only meaningful for the masks they were found for, so the
// fingerprint is part of the storage key.
func Fingerprint(g *board.Geometry, kind board.PieceType) uint64 {
	d := xxhash.New()
	var buf [8]byte
	buf[0] = byte(g.Size())
	buf[1] = byte(kind)
	d.Write(buf[:2])
	for sq := board.Square(0); int(sq) < g.SquareCount(); sq++ {
		for _, w := range magic.Mask(g, kind, sq) {
			binary.LittleEndian.PutUint64(buf[:], w)
			d.Write(buf[:])
		}
	}
	return d.Sum64()
}

func key(g *board.Geometry, kind board.PieceType) []byte {
	return fmt.Appendf(nil, "magics/%d/%s/%016x", g.Size(), kind, Fingerprint(g, kind))
}

// SaveMultipliers stores the multipliers of a compiled table.
func (s *MagicStore) SaveMultipliers(g *board.Geometry, t *magic.Table) error {
	mults := t.Multipliers()
	if len(mults) != g.SquareCount() {
		return fmt.Errorf("save %s multipliers: table has %d squares, board has %d",
			t.Kind, len(mults), g.SquareCount())
	}

	record := s.encode(g.Size(), t.Kind, mults)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(g, t.Kind), record)
	})
}

// LoadMultipliers returns the stored multipliers for kind on g, indexed by
// square. It returns ErrNotFound if nothing is stored.
func (s *MagicStore) LoadMultipliers(g *board.Geometry, kind board.PieceType) ([]bitboard.Bitboard, error) {
	var mults []bitboard.Bitboard

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(g, kind))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s on %dx%d: %w", kind, g.Size(), g.Size(), ErrNotFound)
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			mults, err = s.decode(val, g.Size(), kind, g.SquareCount())
			return err
		})
	})

	return mults, err
}

// Delete removes the stored multipliers for kind on g, if any.
func (s *MagicStore) Delete(g *board.Geometry, kind board.PieceType) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(g, kind))
	})
}

func (s *MagicStore) encode(size int, kind board.PieceType, mults []bitboard.Bitboard) []byte {
	payload := make([]byte, 0, len(mults)*bitboard.Words*8)
	for _, m := range mults {
		for _, w := range m {
			payload = binary.LittleEndian.AppendUint64(payload, w)
		}
	}

	record := make([]byte, headerSize, headerSize+len(payload)/2)
	copy(record, recordMagic)
	record[4] = recordVersion
	record[5] = byte(size)
	record[6] = byte(kind)
	binary.LittleEndian.PutUint16(record[8:], uint16(len(mults)))
	binary.LittleEndian.PutUint64(record[10:], xxhash.Sum64(payload))

	return s.encoder.EncodeAll(payload, record)
}

func (s *MagicStore) decode(record []byte, size int, kind board.PieceType, squares int) ([]bitboard.Bitboard, error) {
	if len(record) < headerSize || string(record[:4]) != recordMagic {
		return nil, fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	if record[4] != recordVersion {
		return nil, fmt.Errorf("%w: version %d", ErrCorrupt, record[4])
	}
	if int(record[5]) != size || board.PieceType(record[6]) != kind {
		return nil, fmt.Errorf("%w: record is for %s on size %d", ErrCorrupt, board.PieceType(record[6]), record[5])
	}
	count := int(binary.LittleEndian.Uint16(record[8:]))
	if count != squares {
		return nil, fmt.Errorf("%w: %d multipliers for %d squares", ErrCorrupt, count, squares)
	}

	payload, err := s.decoder.DecodeAll(record[headerSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if len(payload) != count*bitboard.Words*8 {
		return nil, fmt.Errorf("%w: payload is %d bytes", ErrCorrupt, len(payload))
	}
	if xxhash.Sum64(payload) != binary.LittleEndian.Uint64(record[10:]) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorrupt)
	}

	mults := make([]bitboard.Bitboard, count)
	for i := range mults {
		for w := range mults[i] {
			mults[i][w] = binary.LittleEndian.Uint64(payload)
			payload = payload[8:]
		}
	}
	return mults, nil
}
