package main

import (
	"testing"

	"github.com/distr1/gachalog/internal/gamebiz"
)

func TestGachaTypesForDefaults(t *testing.T) {
	tests := []struct {
		game gamebiz.Game
		want []string
	}{
		{gamebiz.Hk4e, []string{"100", "200", "301", "302", "500"}},
		{gamebiz.Hkrpg, []string{"1", "2", "11", "12"}},
		{gamebiz.Nap, []string{"1", "2", "3", "5"}},
	}
	for _, tt := range tests {
		gb := gamebiz.GameBiz{Game: tt.game, Server: gamebiz.Official}
		got := gachaTypesFor(gb, "")
		if len(got) != len(tt.want) {
			t.Errorf("gachaTypesFor(%v) = %v, want %v", tt.game, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("gachaTypesFor(%v)[%d] = %q, want %q", tt.game, i, got[i], tt.want[i])
			}
		}
	}
}

func TestGachaTypesForOverride(t *testing.T) {
	gb := gamebiz.GameBiz{Game: gamebiz.Hk4e, Server: gamebiz.Official}
	got := gachaTypesFor(gb, "301,400")
	want := []string{"301", "400"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("gachaTypesFor override = %v, want %v", got, want)
	}
}

func TestProgressLinePlain(t *testing.T) {
	if got := progressLine(false, "32", "finished"); got != "finished" {
		t.Errorf("progressLine(false) = %q, want %q", got, "finished")
	}
}

func TestProgressLineColor(t *testing.T) {
	got := progressLine(true, "32", "finished")
	want := "\x1b[32mfinished\x1b[0m"
	if got != want {
		t.Errorf("progressLine(true) = %q, want %q", got, want)
	}
}
