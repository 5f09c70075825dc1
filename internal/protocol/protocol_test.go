package protocol

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hailam/wideboard/internal/attacks"
	"github.com/hailam/wideboard/internal/board"
)

func run(t *testing.T, f *attacks.Future, input string) []string {
	t.Helper()
	var out bytes.Buffer
	if err := New(f).Run(context.Background(), strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
}

func TestQueries(t *testing.T) {
	g, err := board.New(8)
	if err != nil {
		t.Fatal(err)
	}
	f := attacks.InitializeAsync(g, attacks.Options{Verify: true, Workers: 2})

	input := strings.Join([]string{
		"isready",
		"attacks rook a1 a4 d1",
		"attacks knight a1",
		"pawn white e4",
		"between a1 d4",
		"line a1 b3",
		"line b1 a2",
		"distance a1 h8",
		"aligned a1 c3 h8",
		"aligned a1 c3 c4",
		"",
		"bogus",
		"attacks rook z9",
		"quit",
		"isready",
	}, "\n")

	want := []string{
		"readyok",
		"b1 c1 d1 a2 a3 a4",
		"c2 b3",
		"d5 f5",
		"b2 c3 d4",
		"-",
		"b1 a2",
		"7",
		"true",
		"false",
		"info string bogus: unknown command",
		`info string attacks: invalid square: "z9"`,
	}

	got := run(t, f, input)
	if len(got) != len(want) {
		t.Fatalf("got %d lines:\n%s", len(got), strings.Join(got, "\n"))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDiagramAndStats(t *testing.T) {
	g, _ := board.New(6)
	f := attacks.InitializeAsync(g, attacks.Options{Sliders: attacks.SlidersRays})

	got := run(t, f, "id\nd queen c3\nstats\n")
	if got[0] != "id name wideboard" || got[1] != "id size 6" || got[2] != "id sliders bishop rays" {
		t.Errorf("id reply: %q", got[:4])
	}
	// diagram: 6 ranks and a file legend
	diagram := got[4:11]
	if !strings.HasPrefix(diagram[0], " 6 ") || !strings.HasPrefix(diagram[6], "   a b") {
		t.Errorf("diagram:\n%s", strings.Join(diagram, "\n"))
	}
	if !strings.HasPrefix(got[11], "stats bishop rays entries") {
		t.Errorf("stats reply: %q", got[11])
	}
}

func TestFailedInitialization(t *testing.T) {
	f := attacks.InitializeAsync(board.Standard(), attacks.Options{Sliders: attacks.SlidersMagic})
	got := run(t, f, "isready\nquit\n")
	if len(got) != 1 || !strings.Contains(got[0], "tables unavailable") {
		t.Errorf("reply: %q", got)
	}
}
