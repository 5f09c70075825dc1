package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/hailam/wideboard/internal/board"
	"github.com/hailam/wideboard/internal/magic"
)

func openMemory(t *testing.T) *MagicStore {
	t.Helper()
	s, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func compiled(t *testing.T, size int, kind board.PieceType) (*board.Geometry, *magic.Table) {
	t.Helper()
	g, err := board.New(size)
	if err != nil {
		t.Fatal(err)
	}
	tbl, err := magic.Compile(g, kind, magic.Options{Seed: 11})
	if err != nil {
		t.Fatal(err)
	}
	return g, tbl
}

func TestSaveLoad(t *testing.T) {
	s := openMemory(t)
	g, tbl := compiled(t, 6, board.Rook)

	if err := s.SaveMultipliers(g, tbl); err != nil {
		t.Fatalf("SaveMultipliers: %v", err)
	}
	got, err := s.LoadMultipliers(g, board.Rook)
	if err != nil {
		t.Fatalf("LoadMultipliers: %v", err)
	}
	want := tbl.Multipliers()
	if len(got) != len(want) {
		t.Fatalf("loaded %d multipliers, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("square %d: got %v, want %v", i, got[i], want[i])
		}
	}

	// the loaded multipliers rebuild the same table without searching
	again, err := magic.Compile(g, board.Rook, magic.Options{Hints: got})
	if err != nil {
		t.Fatal(err)
	}
	if again.Attempts != g.SquareCount() {
		t.Errorf("rebuild took %d attempts", again.Attempts)
	}
}

func TestLoadNotFound(t *testing.T) {
	s := openMemory(t)
	g, tbl := compiled(t, 6, board.Bishop)
	if err := s.SaveMultipliers(g, tbl); err != nil {
		t.Fatal(err)
	}

	if _, err := s.LoadMultipliers(g, board.Rook); !errors.Is(err, ErrNotFound) {
		t.Errorf("rook load error = %v, want ErrNotFound", err)
	}

	other, _ := board.New(7)
	if _, err := s.LoadMultipliers(other, board.Bishop); !errors.Is(err, ErrNotFound) {
		t.Errorf("7x7 load error = %v, want ErrNotFound", err)
	}

	if err := s.Delete(g, board.Bishop); err != nil {
		t.Fatal(err)
	}
	if _, err := s.LoadMultipliers(g, board.Bishop); !errors.Is(err, ErrNotFound) {
		t.Errorf("load after delete error = %v", err)
	}
}

func TestCorruptRecords(t *testing.T) {
	s := openMemory(t)
	g, tbl := compiled(t, 5, board.Rook)
	good := s.encode(g.Size(), board.Rook, tbl.Multipliers())

	flip := func(i int) []byte {
		b := append([]byte(nil), good...)
		b[i] ^= 0xff
		return b
	}

	tests := []struct {
		name   string
		record []byte
	}{
		{"short", good[:10]},
		{"magic", flip(0)},
		{"version", flip(4)},
		{"size", flip(5)},
		{"kind", flip(6)},
		{"count", flip(8)},
		{"checksum", flip(12)},
		{"payload", flip(len(good) - 1)},
		{"truncated payload", good[:len(good)-4]},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := s.db.Update(func(txn *badger.Txn) error {
				return txn.Set(key(g, board.Rook), tc.record)
			})
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.LoadMultipliers(g, board.Rook); !errors.Is(err, ErrCorrupt) {
				t.Errorf("error = %v, want ErrCorrupt", err)
			}
		})
	}
}

func TestSaveRejectsForeignTable(t *testing.T) {
	s := openMemory(t)
	_, tbl := compiled(t, 5, board.Bishop)
	g, _ := board.New(6)
	if err := s.SaveMultipliers(g, tbl); err == nil {
		t.Error("saved a 5x5 table under a 6x6 geometry")
	}
}

func TestFingerprint(t *testing.T) {
	g8, _ := board.New(8)
	g9, _ := board.New(9)

	if Fingerprint(g8, board.Rook) != Fingerprint(g8, board.Rook) {
		t.Error("fingerprint is not stable")
	}
	if Fingerprint(g8, board.Rook) == Fingerprint(g8, board.Bishop) {
		t.Error("rook and bishop share a fingerprint")
	}
	if Fingerprint(g8, board.Rook) == Fingerprint(g9, board.Rook) {
		t.Error("8x8 and 9x9 share a fingerprint")
	}
}

func TestOnDiskReopen(t *testing.T) {
	dir := t.TempDir()
	g, tbl := compiled(t, 6, board.Bishop)

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SaveMultipliers(g, tbl); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	got, err := s.LoadMultipliers(g, board.Bishop)
	if err != nil {
		t.Fatal(err)
	}
	if got[20] != tbl.Magics[20].Multiplier {
		t.Error("multiplier changed across reopen")
	}
}

func TestDataPaths(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CACHE_HOME only applies on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	dbDir, err := DatabaseDir()
	if err != nil {
		t.Fatalf("DatabaseDir failed: %v", err)
	}
	if want := filepath.Join(base, appName, "magics"); dbDir != want {
		t.Errorf("DatabaseDir = %s, want %s", dbDir, want)
	}
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		t.Errorf("Database directory was not created: %s", dbDir)
	}
}
