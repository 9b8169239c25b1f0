package dump

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dltmtt/viaggiatreno-api/pkg/api"
)

func newTestDumper(serverURL string) *Dumper {
	retry := api.RetryPolicy{
		MaxAttempts:     2,
		BaseDelay:       time.Millisecond,
		MaxDelay:        time.Millisecond,
		RetryableStatus: http.StatusForbidden,
	}
	client := api.NewClientWith(serverURL, 5*time.Second, retry)
	return New(client, api.NewScheduler(4, 100, time.Second), io.Discard)
}

func TestReadStations(t *testing.T) {
	input := "MILANO CENTRALE|S01700\nshort line\nROMA TERMINI|S08409\n"
	stations, err := ReadStations(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stations) != 2 {
		t.Fatalf("expected 2 stations, got %d: %+v", len(stations), stations)
	}
	if stations[0].Name != "MILANO CENTRALE" || stations[0].Code != "S01700" {
		t.Errorf("unexpected first station: %+v", stations[0])
	}
}

func TestSweepBoards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(r.URL.Path, "S00001"):
			w.Write([]byte(`[{"numeroTreno": 770, "codOrigine": "S00219", "dataPartenzaTreno": 1717279200000}]`))
		case strings.Contains(r.URL.Path, "S00002"):
			// Empty board: a valid result, just nothing to save.
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	outDir := t.TempDir()
	stations := []Station{
		{Name: "A", Code: "S00001"},
		{Name: "B", Code: "S00002"},
		{Name: "C", Code: "S00003"},
	}
	when := time.Date(2024, time.June, 2, 20, 0, 0, 0, api.Rome())

	stats, trains, err := newTestDumper(server.URL).SweepBoards("partenze", stations, when, outDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.Saved != 1 || stats.Empty != 1 || stats.Failed != 1 {
		t.Errorf("expected 1 saved, 1 empty, 1 failed; got %s", stats)
	}
	if len(trains) != 1 || trains[0].NumeroTreno != 770 {
		t.Errorf("expected the saved board's train collected, got %+v", trains)
	}

	saved := filepath.Join(outDir, "partenze", "S00001_2024-06-02T20:00:00_partenze.json")
	if _, err := os.Stat(saved); err != nil {
		t.Errorf("expected the non-empty board saved at %s: %v", saved, err)
	}
}

func TestSweepLettersText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		letter := strings.TrimPrefix(r.URL.Path, "/autocompletaStazione/")
		switch letter {
		case "A":
			w.Write([]byte("ALESSANDRIA|S00458\n"))
		case "B":
			w.Write([]byte("BOLOGNA CENTRALE|S05043\n"))
		}
	}))
	defer server.Close()

	merged, stats := newTestDumper(server.URL).SweepLettersText("autocompletaStazione")

	if stats.Saved != 2 || stats.Empty != 24 || stats.Failed != 0 {
		t.Errorf("expected 2 saved and 24 empty letters, got %s", stats)
	}
	want := "ALESSANDRIA|S00458\nBOLOGNA CENTRALE|S05043"
	if merged != want {
		t.Errorf("expected letter-ordered merge %q, got %q", want, merged)
	}
}

func TestSweepRegionsMergesArrays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		region := strings.TrimPrefix(r.URL.Path, "/elencoStazioni/")
		switch region {
		case "1":
			w.Write([]byte(`[{"nome": "MILANO CENTRALE"}, {"nome": "MILANO GRECO"}]`))
		case "5":
			w.Write([]byte(`[{"nome": "ROMA TERMINI"}]`))
		default:
			w.Write([]byte(`[]`))
		}
	}))
	defer server.Close()

	stations, stats := newTestDumper(server.URL).SweepRegions()

	if len(stations) != 3 {
		t.Errorf("expected 3 merged stations, got %d", len(stations))
	}
	if stats.Failed != 0 {
		t.Errorf("expected no failures, got %s", stats)
	}
	// Region order must hold: both Lombardia entries before the Lazio one.
	if !strings.Contains(string(stations[0]), "MILANO CENTRALE") ||
		!strings.Contains(string(stations[2]), "ROMA TERMINI") {
		t.Errorf("merge order broken: %s ... %s", stations[0], stations[2])
	}
}

func TestUniqueTrains(t *testing.T) {
	boards := []api.BoardTrain{
		{NumeroTreno: 770, CodOrigine: "S00219", DataPartenzaTreno: 1717279200000},
		{NumeroTreno: 770, CodOrigine: "S00219", DataPartenzaTreno: 1717279200000},
		{NumeroTreno: 770, CodOrigine: "S01700", DataPartenzaTreno: 1717279200000},
		{NumeroTreno: 9622, CodOrigine: "S08409", DataPartenzaTreno: 1717279200000},
		{NumeroTreno: 0, CodOrigine: "S08409", DataPartenzaTreno: 1717279200000},
		{NumeroTreno: 123, CodOrigine: "", DataPartenzaTreno: 1717279200000},
	}

	keys := UniqueTrains(boards)

	if len(keys) != 3 {
		t.Fatalf("expected 3 unique runs, got %d: %+v", len(keys), keys)
	}
	if keys[0].Number != 770 || keys[0].Origin != "S00219" {
		t.Errorf("expected sorted keys starting with (770, S00219), got %+v", keys[0])
	}
	if keys[2].Number != 9622 {
		t.Errorf("expected 9622 last, got %+v", keys[2])
	}
}

func TestSweepTrainStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "/770/") {
			w.Write([]byte(`{"numeroTreno": 770, "fermate": []}`))
		}
		// Other runs answer with an empty body.
	}))
	defer server.Close()

	outDir := t.TempDir()
	departure := time.Date(2024, time.June, 2, 0, 0, 0, 0, api.Rome())
	keys := []TrainKey{
		{Number: 770, Origin: "S00219", DepartureMs: departure.UnixMilli()},
		{Number: 9622, Origin: "S08409", DepartureMs: departure.UnixMilli()},
	}

	stats, err := newTestDumper(server.URL).SweepTrainStatus(keys, outDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Saved != 1 || stats.Empty != 1 {
		t.Errorf("expected 1 saved and 1 empty, got %s", stats)
	}

	matches, err := filepath.Glob(filepath.Join(outDir, "andamentoTreno", "770_S00219_2024-06-02_*_andamentoTreno.json"))
	if err != nil || len(matches) != 1 {
		t.Errorf("expected one saved status file for train 770, got %v (err %v)", matches, err)
	}
}
