package roster

import (
	"errors"
	"testing"
)

func TestLookup(t *testing.T) {
	cases := []struct {
		in      string
		wantElo int
		wantLvl string
	}{
		{"", 1500, "level5"},
		{"level3", 1000, "level3"},
		{" LEVEL7 ", 2200, "level7"},
		{"1500", 1500, "level5"},
		{"rookie", 1200, "level4"},
		{"1350", 1350, "custom"},
	}
	for _, tc := range cases {
		got, err := Lookup(tc.in)
		if err != nil {
			t.Fatalf("Lookup(%q): %v", tc.in, err)
		}
		if got.Elo != tc.wantElo || got.Level != tc.wantLvl {
			t.Errorf("Lookup(%q)=%+v", tc.in, got)
		}
	}
}

func TestLookupCustomUsesNearestIcon(t *testing.T) {
	got, err := Lookup("2100")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got.Icon != "king.png" {
		t.Fatalf("icon=%s", got.Icon)
	}
}

func TestLookupRejects(t *testing.T) {
	for _, in := range []string{"level99", "strong", "50", "9000"} {
		if _, err := Lookup(in); !errors.Is(err, ErrUnknownLevel) {
			t.Errorf("Lookup(%q) err=%v", in, err)
		}
	}
}

func TestAllIsCopy(t *testing.T) {
	a := All()
	a[0].Elo = 1
	if All()[0].Elo == 1 {
		t.Fatalf("All must not expose the roster")
	}
}
