package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"

	"github.com/dltmtt/viaggiatreno-api/pkg/api"
)

var elencoStazioniCmd = &cobra.Command{
	Use:   "elenco-stazioni [REGION]",
	Short: "List stations of a region, or of the whole network with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := loadClient()
		if err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		if all {
			stations, stats := newDumper(client, cfg).SweepRegions()
			warnf("elencoStazioni sweep: %s", stats)
			return printJSONItems(stations)
		}

		if len(args) == 0 {
			return fmt.Errorf("specify a region number (0-%d) or use -a/--all to fetch stations from all regions", api.MaxRegion)
		}
		region, err := parseRegion(args[0])
		if err != nil {
			return err
		}

		resp, err := client.Get("elencoStazioni", region)
		if err != nil {
			return err
		}
		return printResponse(resp)
	},
}

var cercaStazioneCmd = &cobra.Command{
	Use:   "cerca-stazione [PREFIX]",
	Short: "Search stations by name prefix, or download every letter with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := loadClient()
		if err != nil {
			return err
		}

		all, _ := cmd.Flags().GetBool("all")
		if all {
			stations, stats := newDumper(client, cfg).SweepLettersJSON("cercaStazione")
			warnf("cercaStazione sweep: %s", stats)
			return printJSONItems(stations)
		}

		if len(args) == 0 {
			return fmt.Errorf("specify a prefix or use -a/--all to fetch all stations")
		}

		resp, err := client.Get("cercaStazione", args[0])
		if err != nil {
			return err
		}
		if resp.Empty() {
			return fmt.Errorf("no stations found matching prefix %q", args[0])
		}
		return printResponse(resp)
	},
}

// The three autocomplete endpoints share one shape: text rows, swept A-Z
// under --all.
func newAutocompletaCommand(use, endpoint string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [PREFIX]",
		Short: fmt.Sprintf("Query the %s endpoint, or download every letter with --all", endpoint),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cfg, err := loadClient()
			if err != nil {
				return err
			}

			all, _ := cmd.Flags().GetBool("all")
			if all {
				merged, stats := newDumper(client, cfg).SweepLettersText(endpoint)
				warnf("%s sweep: %s", endpoint, stats)
				fmt.Println(merged)
				return nil
			}

			if len(args) == 0 {
				return fmt.Errorf("specify a prefix or use -a/--all to fetch all stations")
			}

			resp, err := client.Get(endpoint, args[0])
			if err != nil {
				return err
			}
			if resp.Empty() {
				return fmt.Errorf("no stations found matching prefix %q", args[0])
			}
			fmt.Println(strings.TrimSpace(resp.Text()))
			return nil
		},
	}
	cmd.Flags().BoolP("all", "a", false, "Download every letter A-Z merged into one result")
	return cmd
}

var regioneCmd = &cobra.Command{
	Use:   "regione [STATION]",
	Short: "Look up the region code of a station",
	Long: `Look up the region code for a station name or code, or print the region
code table with --table.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, _ := cmd.Flags().GetBool("table")
		if table {
			fmt.Println("Codice\tRegione")
			fmt.Println("------\t-------")
			for _, code := range api.RegionCodes() {
				fmt.Printf("%6d\t%s\n", code, api.RegionNames[code])
			}
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("specify a station or use --table to show region codes")
		}

		client, _, err := loadClient()
		if err != nil {
			return err
		}

		code, err := newResolver(client).ResolveStationCode(args[0])
		if err != nil {
			return err
		}

		region, ok, err := fetchRegionCode(client, code)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Printf("Region code not available for station %s.\n", code)
			return nil
		}

		name, known := api.RegionNames[region]
		if !known {
			name = "Unknown region"
		}
		fmt.Printf("Region for station %s: %d (%s).\n", code, region, name)
		return nil
	},
}

var dettaglioStazioneCmd = &cobra.Command{
	Use:   "dettaglio-stazione STATION",
	Short: "Show detailed station information",
	Long: `Show detailed station information. STATION can be either a station name
(e.g., 'Milano Centrale') or a station code (e.g., S01700).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := loadClient()
		if err != nil {
			return err
		}

		code, err := newResolver(client).ResolveStationCode(args[0])
		if err != nil {
			return err
		}

		region, _ := cmd.Flags().GetInt("region")
		if cmd.Flags().Changed("region") {
			if region < 0 || region > api.MaxRegion {
				return fmt.Errorf("region must be a number between 0 and %d", api.MaxRegion)
			}
		} else {
			fetched, ok, err := fetchRegionCode(client, code)
			if err != nil {
				return err
			}
			if !ok {
				// The service answers with a blank region for some stations;
				// -1 makes it fall back to a nationwide lookup.
				fmt.Printf("Region code not available for station %s. Calling dettaglioStazione with region -1.\n", code)
				fetched = -1
			}
			region = fetched
		}

		var resp api.Response
		var fetchErr error
		_ = spinner.New().
			Title(fmt.Sprintf("Fetching details for %s...", code)).
			Action(func() {
				resp, fetchErr = client.Get("dettaglioStazione", code, region)
			}).
			Run()
		if fetchErr != nil {
			return fetchErr
		}

		if resp.Empty() {
			fmt.Printf("No details found for station %s.\n", code)
			return nil
		}
		return printResponse(resp)
	},
}

// parseRegion converts a region argument, enforcing the known range.
func parseRegion(s string) (int, error) {
	region, err := strconv.Atoi(s)
	if err != nil || region < 0 || region > api.MaxRegion {
		return 0, fmt.Errorf("region must be a number between 0 and %d", api.MaxRegion)
	}
	return region, nil
}

// fetchRegionCode asks the regione endpoint for a station's region. The
// second return value is false when the upstream has no region on file.
func fetchRegionCode(client *api.Client, stationCode string) (int, bool, error) {
	resp, err := client.Get("regione", stationCode)
	if err != nil {
		return 0, false, err
	}
	raw := strings.TrimSpace(resp.Text())
	if raw == "" {
		return 0, false, nil
	}
	region, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("unexpected regione response %q for %s", raw, stationCode)
	}
	return region, true, nil
}

// printJSONItems prints a merged array of raw JSON values.
func printJSONItems(items []json.RawMessage) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func init() {
	elencoStazioniCmd.Flags().BoolP("all", "a", false, "Merge elencoStazioni for every region into a single JSON")
	cercaStazioneCmd.Flags().BoolP("all", "a", false, "Merge cercaStazione for every letter into a single JSON")
	dettaglioStazioneCmd.Flags().Int("region", 0, "Region code (fetched via the regione endpoint when omitted)")
	regioneCmd.Flags().Bool("table", false, "Show the region code table")

	rootCmd.AddCommand(elencoStazioniCmd)
	rootCmd.AddCommand(cercaStazioneCmd)
	rootCmd.AddCommand(newAutocompletaCommand("autocompleta-stazione", "autocompletaStazione"))
	rootCmd.AddCommand(newAutocompletaCommand("autocompleta-stazione-imposta-viaggio", "autocompletaStazioneImpostaViaggio"))
	rootCmd.AddCommand(newAutocompletaCommand("autocompleta-stazione-nts", "autocompletaStazioneNTS"))
	rootCmd.AddCommand(regioneCmd)
	rootCmd.AddCommand(dettaglioStazioneCmd)
}
