package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/dltmtt/viaggiatreno-api/pkg/api"
	"github.com/dltmtt/viaggiatreno-api/pkg/config"
	"github.com/dltmtt/viaggiatreno-api/pkg/dump"
)

func newBoardCommand(use, endpoint, noun string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [STATION]",
		Short: fmt.Sprintf("Show %s for a station, or sweep every station with --all", noun),
		Long: fmt.Sprintf(`Show %s for a station at a given date and time (default: now).
STATION can be either a station name (e.g., 'Roma Termini') or a station code
(e.g., S08409). With -a/--all, every station in the stations file is queried
instead and non-empty boards are saved under the output directory.`, noun),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient()
			if err != nil {
				return err
			}

			when, err := searchTimeFromFlag(cmd)
			if err != nil {
				return err
			}

			all, _ := cmd.Flags().GetBool("all")
			if all {
				if len(args) > 0 {
					warnf("Warning: STATION argument ignored when using -a/--all")
				}
				readFrom, _ := cmd.Flags().GetString("read-from")
				output, _ := cmd.Flags().GetString("output")
				if output == "" {
					output = cfg.OutputDir
				}
				_, _, err := sweepBoard(client, cfg, endpoint, readFrom, when, output)
				return err
			}

			if len(args) == 0 {
				return fmt.Errorf("STATION argument is required when not using -a/--all")
			}
			if cmd.Flags().Changed("output") {
				warnf("Warning: output option ignored when not using -a/--all")
			}

			code, err := newResolver(client).ResolveStationCode(args[0])
			if err != nil {
				return err
			}

			var resp api.Response
			var fetchErr error
			_ = spinner.New().
				Title(fmt.Sprintf("Fetching %s for %s...", noun, code)).
				Action(func() {
					resp, fetchErr = client.Get(endpoint, code, api.FormatSearchTime(when))
				}).
				Run()
			if fetchErr != nil {
				return fetchErr
			}

			if resp.Empty() {
				fmt.Println("No results found.")
				return nil
			}
			return printResponse(resp)
		},
	}

	cmd.Flags().String("datetime", "", "Date and time to search for, as 2006-01-02T15:04:05 or 15:04 (default: now)")
	cmd.Flags().BoolP("all", "a", false, fmt.Sprintf("Fetch %s for every station in the stations file", noun))
	cmd.Flags().StringP("read-from", "r", "dumps/autocompletaStazione.csv", "Stations file (NAME|CODE rows), used with -a/--all")
	cmd.Flags().StringP("output", "o", "", "Output directory for saved boards (default: configured output dir)")
	return cmd
}

// searchTimeFromFlag reads --datetime, defaulting to now in Rome.
func searchTimeFromFlag(cmd *cobra.Command) (time.Time, error) {
	raw, _ := cmd.Flags().GetString("datetime")
	if raw == "" {
		return time.Now().In(api.Rome()), nil
	}
	when, err := api.ParseSearchTime(raw, time.Now())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --datetime %q: use 2006-01-02T15:04:05 or 15:04", raw)
	}
	return when, nil
}

// sweepBoard runs one full-station board sweep and prints its summary.
func sweepBoard(client *api.Client, cfg *config.Config, endpoint, readFrom string, when time.Time, output string) (dump.Stats, []api.BoardTrain, error) {
	f, err := os.Open(readFrom)
	if err != nil {
		return dump.Stats{}, nil, fmt.Errorf("could not open stations file: %w", err)
	}
	defer f.Close()

	stations, err := dump.ReadStations(f)
	if err != nil {
		return dump.Stats{}, nil, err
	}

	fmt.Printf("Processing all %d stations for %s...\n", len(stations), endpoint)

	stats, trains, err := newDumper(client, cfg).SweepBoards(endpoint, stations, when, output)
	if err != nil {
		return stats, trains, err
	}

	fmt.Printf("Completed %s for all stations: %s. Results saved in %s.\n",
		endpoint, stats, output)
	return stats, trains, nil
}

func init() {
	rootCmd.AddCommand(newBoardCommand("partenze", "partenze", "departures"))
	rootCmd.AddCommand(newBoardCommand("arrivi", "arrivi", "arrivals"))
}
