// Package dump drives bulk sweeps over known key spaces (letters, regions,
// station lists, train runs) through the rate-limited scheduler, saving
// non-empty results and tallying the rest. Sweeps never touch the interactive
// resolver: every key is already canonical.
package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dltmtt/viaggiatreno-api/pkg/api"
)

var letters = []string{
	"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M",
	"N", "O", "P", "Q", "R", "S", "T", "U", "V", "W", "X", "Y", "Z",
}

// Stats tallies one sweep. Every entity lands in exactly one bucket.
type Stats struct {
	Saved  int
	Empty  int
	Failed int
}

func (s Stats) String() string {
	return fmt.Sprintf("%d saved, %d empty, %d failed", s.Saved, s.Empty, s.Failed)
}

// Station is one NAME|CODE row from an autocomplete dump file.
type Station struct {
	Name string
	Code string
}

// Dumper aggregates the pieces every sweep needs. Out receives progress and
// per-entity warnings.
type Dumper struct {
	Client *api.Client
	Sched  *api.Scheduler
	Out    io.Writer
}

// New builds a dumper writing progress to w.
func New(client *api.Client, sched *api.Scheduler, w io.Writer) *Dumper {
	return &Dumper{Client: client, Sched: sched, Out: w}
}

// SweepLettersText calls endpoint/{A..Z} and merges the non-empty text
// responses in letter order.
func (d *Dumper) SweepLettersText(endpoint string) (string, Stats) {
	outcomes := d.sweep(endpoint, letters, func(letter string) (any, error) {
		return d.Client.Get(endpoint, letter)
	})

	var stats Stats
	var chunks []string
	for i, o := range outcomes {
		if o.Err != nil {
			stats.Failed++
			fmt.Fprintf(d.Out, "Warning: %s/%s failed: %v\n", endpoint, letters[i], o.Err)
			continue
		}
		resp := o.Value.(api.Response)
		if resp.Empty() {
			stats.Empty++
			continue
		}
		chunks = append(chunks, strings.TrimSpace(resp.Text()))
		stats.Saved++
	}
	return strings.Join(chunks, "\n"), stats
}

// SweepLettersJSON calls endpoint/{A..Z} and merges the returned JSON arrays
// in letter order.
func (d *Dumper) SweepLettersJSON(endpoint string) ([]json.RawMessage, Stats) {
	return d.mergeJSONArrays(endpoint, letters, func(letter string) (any, error) {
		return d.Client.Get(endpoint, letter)
	})
}

// SweepRegions fetches elencoStazioni for every region and merges the station
// arrays in region order.
func (d *Dumper) SweepRegions() ([]json.RawMessage, Stats) {
	codes := api.RegionCodes()
	keys := make([]string, len(codes))
	for i, c := range codes {
		keys[i] = fmt.Sprint(c)
	}
	return d.mergeJSONArrays("elencoStazioni", keys, func(key string) (any, error) {
		return d.Client.Get("elencoStazioni", key)
	})
}

func (d *Dumper) mergeJSONArrays(endpoint string, keys []string, fetch func(string) (any, error)) ([]json.RawMessage, Stats) {
	outcomes := d.sweep(endpoint, keys, fetch)

	var stats Stats
	var merged []json.RawMessage
	for i, o := range outcomes {
		if o.Err != nil {
			stats.Failed++
			fmt.Fprintf(d.Out, "Warning: %s/%s failed: %v\n", endpoint, keys[i], o.Err)
			continue
		}
		resp := o.Value.(api.Response)
		if resp.Empty() {
			stats.Empty++
			continue
		}
		var items []json.RawMessage
		if err := resp.Decode(&items); err != nil {
			stats.Failed++
			fmt.Fprintf(d.Out, "Warning: %s/%s returned malformed JSON: %v\n", endpoint, keys[i], err)
			continue
		}
		merged = append(merged, items...)
		stats.Saved++
	}
	return merged, stats
}

// sweep runs one task per key through the scheduler, reporting progress as
// tasks complete.
func (d *Dumper) sweep(endpoint string, keys []string, fetch func(string) (any, error)) []api.Outcome {
	var done atomic.Int64
	total := len(keys)

	tasks := make([]api.Task, total)
	for i, key := range keys {
		key := key
		tasks[i] = func() (any, error) {
			value, err := fetch(key)
			fmt.Fprintf(d.Out, "\r%s: %d/%d", endpoint, done.Add(1), int64(total))
			return value, err
		}
	}

	outcomes := d.Sched.Run(tasks)
	fmt.Fprintln(d.Out)
	return outcomes
}

// ReadStations parses a pipe-delimited NAME|CODE station file, skipping rows
// with fewer than two columns.
func ReadStations(r io.Reader) ([]Station, error) {
	reader := csv.NewReader(r)
	reader.Comma = '|'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing station file: %w", err)
	}

	var stations []Station
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		stations = append(stations, Station{Name: row[0], Code: strings.TrimSpace(row[1])})
	}
	return stations, nil
}

// SweepBoards fetches the partenze or arrivi board of every station at the
// given search time, saving each non-empty board under
// {outDir}/{endpoint}/ and returning the trains seen across all boards.
func (d *Dumper) SweepBoards(endpoint string, stations []Station, when time.Time, outDir string) (Stats, []api.BoardTrain, error) {
	formatted := api.FormatSearchTime(when)
	keys := make([]string, len(stations))
	for i, s := range stations {
		keys[i] = s.Code
	}

	outcomes := d.sweep(endpoint, keys, func(code string) (any, error) {
		return d.Client.Get(endpoint, code, formatted)
	})

	stamp := when.In(api.Rome()).Format("2006-01-02T15:04:05")
	var stats Stats
	var all []api.BoardTrain
	for i, o := range outcomes {
		code := stations[i].Code
		if o.Err != nil {
			stats.Failed++
			fmt.Fprintf(d.Out, "Warning: %s for %s failed: %v\n", endpoint, code, o.Err)
			continue
		}
		resp := o.Value.(api.Response)
		if resp.Empty() {
			stats.Empty++
			continue
		}

		var trains []api.BoardTrain
		if err := resp.Decode(&trains); err != nil {
			stats.Failed++
			fmt.Fprintf(d.Out, "Warning: %s for %s returned malformed JSON: %v\n", endpoint, code, err)
			continue
		}

		name := fmt.Sprintf("%s_%s_%s.json", code, stamp, endpoint)
		if err := writeJSONFile(filepath.Join(outDir, endpoint, name), resp.Raw()); err != nil {
			return stats, all, err
		}

		all = append(all, trains...)
		stats.Saved++
	}
	return stats, all, nil
}

// TrainKey identifies one train run for the andamentoTreno endpoint.
type TrainKey struct {
	Number      int
	Origin      string
	DepartureMs int64
}

// UniqueTrains deduplicates board entries into sorted run keys, dropping
// entries with missing fields.
func UniqueTrains(trains []api.BoardTrain) []TrainKey {
	seen := make(map[TrainKey]struct{})
	for _, t := range trains {
		if t.NumeroTreno == 0 || t.CodOrigine == "" || t.DataPartenzaTreno == 0 {
			continue
		}
		seen[TrainKey{Number: t.NumeroTreno, Origin: t.CodOrigine, DepartureMs: t.DataPartenzaTreno}] = struct{}{}
	}

	keys := make([]TrainKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Number != keys[j].Number {
			return keys[i].Number < keys[j].Number
		}
		if keys[i].Origin != keys[j].Origin {
			return keys[i].Origin < keys[j].Origin
		}
		return keys[i].DepartureMs < keys[j].DepartureMs
	})
	return keys
}

// SweepTrainStatus fetches andamentoTreno for every run key, saving each
// non-empty status under {outDir}/andamentoTreno/.
func (d *Dumper) SweepTrainStatus(keys []TrainKey, outDir string) (Stats, error) {
	labels := make([]string, len(keys))
	for i, k := range keys {
		labels[i] = fmt.Sprintf("%d/%s", k.Number, k.Origin)
	}

	tasks := make([]api.Task, len(keys))
	var done atomic.Int64
	for i, k := range keys {
		k := k
		tasks[i] = func() (any, error) {
			value, err := d.Client.Get("andamentoTreno", k.Origin, k.Number, k.DepartureMs)
			fmt.Fprintf(d.Out, "\randamentoTreno: %d/%d", done.Add(1), int64(len(keys)))
			return value, err
		}
	}
	outcomes := d.Sched.Run(tasks)
	fmt.Fprintln(d.Out)

	now := time.Now().In(api.Rome()).Format("2006-01-02T15:04:05")
	var stats Stats
	for i, o := range outcomes {
		if o.Err != nil {
			stats.Failed++
			fmt.Fprintf(d.Out, "Warning: andamentoTreno for %s failed: %v\n", labels[i], o.Err)
			continue
		}
		resp := o.Value.(api.Response)
		if resp.Empty() {
			stats.Empty++
			continue
		}

		k := keys[i]
		depDate := api.DateOf(k.DepartureMs).Format("2006-01-02")
		name := fmt.Sprintf("%d_%s_%s_%s_andamentoTreno.json", k.Number, k.Origin, depDate, now)
		if err := writeJSONFile(filepath.Join(outDir, "andamentoTreno", name), resp.Raw()); err != nil {
			return stats, err
		}
		stats.Saved++
	}
	return stats, nil
}

// writeJSONFile pretty-prints raw JSON to path, creating parent directories.
func writeJSONFile(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	var pretty json.RawMessage = raw
	data, err := json.MarshalIndent(&pretty, "", "  ")
	if err != nil {
		// Not valid JSON after all; keep the body as received.
		data = raw
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	return nil
}
