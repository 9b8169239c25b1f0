// Package resolver maps human inputs (station names, train numbers) to the
// opaque identifiers the ViaggiaTreno service requires, asking the user to
// pick one when a query is ambiguous.
package resolver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dltmtt/viaggiatreno-api/pkg/api"
)

// MaxResultsShown caps how many candidates a disambiguation prompt lists.
const MaxResultsShown = 10

var stationCodePattern = regexp.MustCompile(`^[Ss]\d{5}$`)

// NotFoundError means a query produced zero candidates.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no matches found for %q", e.Query)
}

// ErrSelectionCancelled means the user declined to pick a candidate, either
// explicitly (choice 0) or with an out-of-range choice.
var ErrSelectionCancelled = errors.New("selection cancelled or invalid")

// Chooser picks one entry from a candidate list. Choose receives the first
// MaxResultsShown candidate labels plus a count of how many more exist, and
// returns a 1-based position; 0 or anything past the full candidate count is
// treated as a cancellation. Bulk flows iterate pre-enumerated codes and must
// never reach a Chooser; only single-entity command paths may block here.
type Chooser interface {
	Choose(header string, options []string, extra int) (int, error)
}

// StationCandidate is one NAME|CODE row from the station autocomplete.
type StationCandidate struct {
	Name string
	Code string
}

// TrainIdentity pins a train number to one concrete run: the departure
// station code plus the Rome-local departure date.
type TrainIdentity struct {
	Number           int
	DepartureStation string
	Departure        time.Time
}

// DepartureMillis returns the departure date the way andamentoTreno wants it.
func (id TrainIdentity) DepartureMillis() int64 {
	return id.Departure.UnixMilli()
}

// DepartureDate returns the Rome-local calendar date as YYYY-MM-DD.
func (id TrainIdentity) DepartureDate() string {
	return id.Departure.In(api.Rome()).Format("2006-01-02")
}

// trainCandidate is one parsed train autocomplete row.
type trainCandidate struct {
	identity    TrainIdentity
	stationName string
}

// Resolver turns free-text station inputs and bare train numbers into
// canonical identifiers by querying the autocomplete endpoints.
type Resolver struct {
	client  *api.Client
	chooser Chooser
	out     io.Writer
}

// New builds a resolver over client. Narration (which match was picked when
// it was unambiguous) goes to stdout; see WithOutput.
func New(client *api.Client, chooser Chooser) *Resolver {
	return &Resolver{client: client, chooser: chooser, out: os.Stdout}
}

// WithOutput redirects the resolver's narration, mainly for tests.
func (r *Resolver) WithOutput(w io.Writer) *Resolver {
	r.out = w
	return r
}

// ResolveStationCode resolves a station name or code to a canonical S#####
// code. Inputs already matching the pattern are uppercased and returned
// without any network call.
func (r *Resolver) ResolveStationCode(input string) (string, error) {
	if stationCodePattern.MatchString(input) {
		return strings.ToUpper(input), nil
	}

	resp, err := r.client.Get("autocompletaStazione", input)
	if err != nil {
		return "", fmt.Errorf("searching for station %q: %w", input, err)
	}

	stations := ParseStationLines(resp.Text())
	switch len(stations) {
	case 0:
		return "", &NotFoundError{Query: input}
	case 1:
		fmt.Fprintf(r.out, "Using station: %s (%s)\n", stations[0].Name, stations[0].Code)
		return stations[0].Code, nil
	}

	labels := make([]string, len(stations))
	for i, s := range stations {
		labels[i] = fmt.Sprintf("%s (%s)", s.Name, s.Code)
	}

	picked, err := r.choose(fmt.Sprintf("Multiple stations found matching %q:", input), labels)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(r.out, "Selected: %s (%s)\n", stations[picked].Name, stations[picked].Code)
	return stations[picked].Code, nil
}

// ResolveTrainIdentity resolves a bare train number into the (station code,
// departure date) pair that uniquely identifies one run.
func (r *Resolver) ResolveTrainIdentity(trainNumber int) (TrainIdentity, error) {
	resp, err := r.client.Get("cercaNumeroTrenoTrenoAutocomplete", trainNumber)
	if err != nil {
		return TrainIdentity{}, fmt.Errorf("searching for train %d: %w", trainNumber, err)
	}

	trains := parseTrainLines(resp.Text())
	switch len(trains) {
	case 0:
		return TrainIdentity{}, &NotFoundError{Query: strconv.Itoa(trainNumber)}
	case 1:
		t := trains[0]
		fmt.Fprintf(r.out, "Using train %d departing from %s (%s) on %s.\n",
			t.identity.Number, t.stationName, t.identity.DepartureStation, t.identity.DepartureDate())
		return t.identity, nil
	}

	labels := make([]string, len(trains))
	for i, t := range trains {
		labels[i] = fmt.Sprintf("Train %d departing from %s (%s) on %s",
			t.identity.Number, t.stationName, t.identity.DepartureStation, t.identity.DepartureDate())
	}

	picked, err := r.choose(fmt.Sprintf("Multiple trains found with number %d:", trainNumber), labels)
	if err != nil {
		return TrainIdentity{}, err
	}

	t := trains[picked]
	fmt.Fprintf(r.out, "Selected: train %d departing from %s (%s) on %s.\n",
		t.identity.Number, t.stationName, t.identity.DepartureStation, t.identity.DepartureDate())
	return t.identity, nil
}

// choose runs the disambiguation prompt and returns a validated zero-based
// index into the full candidate list. Candidates past MaxResultsShown are not
// displayed but remain selectable by position.
func (r *Resolver) choose(header string, labels []string) (int, error) {
	shown := labels
	if len(shown) > MaxResultsShown {
		shown = shown[:MaxResultsShown]
	}

	n, err := r.chooser.Choose(header, shown, len(labels)-len(shown))
	if err != nil {
		return 0, err
	}
	if n <= 0 || n > len(labels) {
		return 0, ErrSelectionCancelled
	}
	return n - 1, nil
}

// ParseStationLines parses the pipe-delimited NAME|CODE rows returned by the
// station autocomplete endpoints. Malformed rows are skipped.
func ParseStationLines(body string) []StationCandidate {
	var stations []StationCandidate
	for _, line := range strings.Split(body, "\n") {
		name, code, ok := strings.Cut(strings.TrimRight(line, "\r"), "|")
		if !ok || name == "" || code == "" {
			continue
		}
		stations = append(stations, StationCandidate{Name: name, Code: strings.TrimSpace(code)})
	}
	return stations
}

// parseTrainLines parses the train autocomplete rows. Each row carries a
// human-readable clause before the pipe and "NUMBER-STATIONCODE-EPOCHMS"
// after it; the epoch milliseconds encode Rome-local midnight of the
// departure date.
func parseTrainLines(body string) []trainCandidate {
	var trains []trainCandidate
	for _, line := range strings.Split(body, "\n") {
		human, machine, ok := strings.Cut(strings.TrimRight(line, "\r"), "|")
		if !ok {
			continue
		}

		parts := strings.SplitN(machine, "-", 3)
		if len(parts) != 3 {
			continue
		}
		number, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}
		ms, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
		if err != nil {
			continue
		}

		stationName := ""
		if humanParts := strings.Split(human, " - "); len(humanParts) >= 2 {
			stationName = humanParts[1]
		}

		trains = append(trains, trainCandidate{
			identity: TrainIdentity{
				Number:           number,
				DepartureStation: strings.TrimSpace(parts[1]),
				Departure:        api.DateOf(ms),
			},
			stationName: stationName,
		})
	}
	return trains
}
