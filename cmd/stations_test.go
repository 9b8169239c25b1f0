package cmd

import (
	"strings"
	"testing"
)

func TestParseRegion(t *testing.T) {
	valid := map[string]int{"0": 0, "5": 5, "22": 22}
	for in, want := range valid {
		got, err := parseRegion(in)
		if err != nil {
			t.Errorf("parseRegion(%q) failed: %v", in, err)
		} else if got != want {
			t.Errorf("parseRegion(%q) = %d, want %d", in, got, want)
		}
	}

	for _, in := range []string{"-1", "23", "100", "lombardia", ""} {
		if _, err := parseRegion(in); err == nil {
			t.Errorf("parseRegion(%q) succeeded, want an error", in)
		}
	}
}

func TestDettaglioStazioneRejectsRegionOutOfRange(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)

	if err := dettaglioStazioneCmd.Flags().Set("region", "23"); err != nil {
		t.Fatalf("set region flag: %v", err)
	}
	t.Cleanup(func() {
		f := dettaglioStazioneCmd.Flags().Lookup("region")
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})

	// The station code shape skips the autocomplete lookup, so the command
	// must fail on the flag alone without touching the network.
	err := dettaglioStazioneCmd.RunE(dettaglioStazioneCmd, []string{"S01700"})
	if err == nil || !strings.Contains(err.Error(), "between 0 and") {
		t.Fatalf("expected a region range error, got %v", err)
	}
}
