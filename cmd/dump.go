package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dltmtt/viaggiatreno-api/pkg/dump"
)

var dynamicDumpCmd = &cobra.Command{
	Use:   "dynamic-dump",
	Short: "Dump departures, arrivals and train status for the whole network",
	Long: `Fetch the departure and arrival boards of every station in the stations
file, then fetch detailed status for every unique train run seen on those
boards. All results are saved under the output directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, cfg, err := loadClient()
		if err != nil {
			return err
		}

		when, err := searchTimeFromFlag(cmd)
		if err != nil {
			return err
		}

		readFrom, _ := cmd.Flags().GetString("read-from")
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = cfg.OutputDir
		}

		fmt.Println("Fetching departures for all stations...")
		_, departures, err := sweepBoard(client, cfg, "partenze", readFrom, when, output)
		if err != nil {
			return err
		}

		// The arrivals sweep starts only after the departures batch fully
		// drained; batches are sequential even though each is parallel inside.
		fmt.Println("Fetching arrivals for all stations...")
		_, arrivals, err := sweepBoard(client, cfg, "arrivi", readFrom, when, output)
		if err != nil {
			return err
		}

		trains := dump.UniqueTrains(append(departures, arrivals...))
		fmt.Printf("Fetching detailed train status for %d unique trains...\n", len(trains))

		stats, err := newDumper(client, cfg).SweepTrainStatus(trains, output)
		if err != nil {
			return err
		}
		fmt.Printf("Completed andamentoTreno for all trains: %s. Results saved in %s.\n", stats, output)

		fmt.Println("Dynamic dump completed successfully!")
		return nil
	},
}

func init() {
	dynamicDumpCmd.Flags().String("datetime", "", "Date and time to search for, as 2006-01-02T15:04:05 or 15:04 (default: now)")
	dynamicDumpCmd.Flags().StringP("read-from", "r", "dumps/autocompletaStazione.csv", "Stations file (NAME|CODE rows)")
	dynamicDumpCmd.Flags().StringP("output", "o", "", "Output directory for all data (default: configured output dir)")

	rootCmd.AddCommand(dynamicDumpCmd)
}
