package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dltmtt/viaggiatreno-api/pkg/api"
	"github.com/dltmtt/viaggiatreno-api/pkg/exporter"
	"github.com/dltmtt/viaggiatreno-api/pkg/resolver"
)

var statisticheCmd = &cobra.Command{
	Use:   "statistiche",
	Short: "Show live statistics about the ViaggiaTreno service",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loadClient()
		if err != nil {
			return err
		}
		resp, err := client.Get("statistiche", time.Now().UnixMilli())
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var cercaNumeroTrenoAutocompleteCmd = &cobra.Command{
	Use:   "cerca-numero-treno-autocomplete TRAIN_NUMBER",
	Short: "Show raw autocomplete matches for a train number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := parseTrainNumber(args[0])
		if err != nil {
			return err
		}
		client, _, err := loadClient()
		if err != nil {
			return err
		}

		resp, err := client.Get("cercaNumeroTrenoTrenoAutocomplete", number)
		if err != nil {
			return err
		}
		if resp.Empty() {
			fmt.Printf("No results found for train number %d.\n", number)
			return nil
		}
		fmt.Println(strings.TrimSpace(resp.Text()))
		return nil
	},
}

var cercaNumeroTrenoCmd = &cobra.Command{
	Use:   "cerca-numero-treno TRAIN_NUMBER",
	Short: "Show basic information for a train number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := parseTrainNumber(args[0])
		if err != nil {
			return err
		}
		client, _, err := loadClient()
		if err != nil {
			return err
		}

		resp, err := client.Get("cercaNumeroTreno", number)
		if err != nil {
			return err
		}
		if resp.Empty() {
			fmt.Printf("No results found for train number %d.\n", number)
			return nil
		}
		return printResponse(resp)
	},
}

var andamentoTrenoCmd = &cobra.Command{
	Use:   "andamento-treno TRAIN_NUMBER",
	Short: "Show detailed train status and journey information",
	Long: `Show detailed status for one train run. When the departure station or date
is not given, the run is resolved through the train autocomplete endpoint,
asking which one you meant if the number is ambiguous.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		number, err := parseTrainNumber(args[0])
		if err != nil {
			return err
		}
		client, _, err := loadClient()
		if err != nil {
			return err
		}

		stationFlag, _ := cmd.Flags().GetString("departure-station")
		dateFlag, _ := cmd.Flags().GetString("date")

		var identity resolver.TrainIdentity
		if stationFlag == "" || dateFlag == "" {
			identity, err = newResolver(client).ResolveTrainIdentity(number)
			if err != nil {
				return err
			}
		} else {
			code, err := newResolver(client).ResolveStationCode(stationFlag)
			if err != nil {
				return err
			}
			day, err := time.ParseInLocation("2006-01-02", dateFlag, api.Rome())
			if err != nil {
				return fmt.Errorf("invalid --date %q: use YYYY-MM-DD", dateFlag)
			}
			identity = resolver.TrainIdentity{Number: number, DepartureStation: code, Departure: day}
		}

		var resp api.Response
		var fetchErr error
		_ = spinner.New().
			Title(fmt.Sprintf("Fetching status for train %d...", number)).
			Action(func() {
				resp, fetchErr = client.Get("andamentoTreno", identity.DepartureStation, identity.Number, identity.DepartureMillis())
			}).
			Run()
		if fetchErr != nil {
			return fetchErr
		}

		if resp.Empty() {
			fmt.Printf("No results found for train %d departing from %s on %s.\n",
				number, identity.DepartureStation, identity.DepartureDate())
			return nil
		}

		if err := printResponse(resp); err != nil {
			return err
		}

		exportICS, _ := cmd.Flags().GetBool("export-ics")
		if exportICS {
			return exportTrainICS(resp, identity)
		}
		return nil
	},
}

// exportTrainICS writes the journey as a calendar file next to the caller.
func exportTrainICS(resp api.Response, identity resolver.TrainIdentity) error {
	var status api.TrainStatus
	if err := resp.Decode(&status); err != nil {
		return fmt.Errorf("could not decode train status: %w", err)
	}

	filename := fmt.Sprintf("train_%d_%s.ics", identity.Number, identity.DepartureDate())
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create ics file: %w", err)
	}
	defer f.Close()

	if err := exporter.GenerateICS(&status, f); err != nil {
		return err
	}

	fmt.Printf("Exported %s -> %s journey to %s\n",
		titleCase(status.Origine), titleCase(status.Destinazione), filename)
	return nil
}

// titleCase renders an all-caps upstream station name for display.
func titleCase(name string) string {
	return cases.Title(language.Italian).String(strings.ToLower(name))
}

func parseTrainNumber(raw string) (int, error) {
	number, err := strconv.Atoi(raw)
	if err != nil || number <= 0 {
		return 0, fmt.Errorf("invalid train number %q", raw)
	}
	return number, nil
}

func init() {
	andamentoTrenoCmd.Flags().StringP("departure-station", "s", "", "Departure station name or code (resolved via autocomplete when omitted)")
	andamentoTrenoCmd.Flags().String("date", "", "Departure date as YYYY-MM-DD (resolved via autocomplete when omitted)")
	andamentoTrenoCmd.Flags().Bool("export-ics", false, "Export the journey as an .ics calendar file")

	rootCmd.AddCommand(statisticheCmd)
	rootCmd.AddCommand(cercaNumeroTrenoAutocompleteCmd)
	rootCmd.AddCommand(cercaNumeroTrenoCmd)
	rootCmd.AddCommand(andamentoTrenoCmd)
}
