package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dltmtt/viaggiatreno-api/pkg/api"
	"github.com/dltmtt/viaggiatreno-api/pkg/config"
	"github.com/dltmtt/viaggiatreno-api/pkg/dump"
	"github.com/dltmtt/viaggiatreno-api/pkg/resolver"
)

var rootCmd = &cobra.Command{
	Use:   "viaggiatreno",
	Short: "A CLI for the ViaggiaTreno train information service",
	Long: `viaggiatreno queries the undocumented ViaggiaTreno API: station search,
departure and arrival boards, live train status, and bulk dumps of the whole
network with rate-limited concurrency.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

var warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

// loadClient builds the API client from the user's configuration.
func loadClient() (*api.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return api.NewClientWith(cfg.BaseURL, cfg.Timeout(), cfg.RetryPolicy()), cfg, nil
}

// newResolver wires the client to the terminal disambiguation prompt. Only
// single-entity commands go through here; bulk sweeps iterate known codes.
func newResolver(client *api.Client) *resolver.Resolver {
	return resolver.New(client, resolver.ConsoleChooser{})
}

// newDumper wires the client to a scheduler sized from the configuration.
func newDumper(client *api.Client, cfg *config.Config) *dump.Dumper {
	sched := api.NewScheduler(cfg.MaxConcurrent, cfg.WindowLimit, time.Second)
	return dump.New(client, sched, os.Stderr)
}

// printResponse pretty-prints a JSON body, or the raw text for text bodies.
func printResponse(resp api.Response) error {
	if !resp.IsJSON() {
		fmt.Println(resp.Text())
		return nil
	}
	pretty, err := resp.Indent()
	if err != nil {
		return err
	}
	fmt.Println(pretty)
	return nil
}

func warnf(format string, args ...any) {
	fmt.Fprintln(os.Stderr, warnStyle.Render(fmt.Sprintf(format, args...)))
}
