// Command kalmansub runs a scenario through the reactor: a realization
// source samples a deterministic process, a Kalman filter tracks it
// via a scalar correction each step, and the resulting filtered
// estimates are re-published through a secondary source. Grounded on
// cmd/warren/main.go's cobra root-command shape (persistent log-level
// flag, cobra.OnInitialize) and apply.go's YAML-file-driven subcommand
// pattern, narrowed to a single `run` command for this substrate.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/Rconybea/kalman-sub000/internal/klog"
	"github.com/Rconybea/kalman-sub000/internal/simconfig"
	"github.com/Rconybea/kalman-sub000/internal/simmetrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "kalmansub",
	Short:   "Run a discrete-event Kalman tracking scenario",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("kalmansub version %s (%s)\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(runCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")

	klog.Init(klog.Config{
		Level:      klog.Level(level),
		JSONOutput: jsonOut,
	})
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a scenario defined in a YAML file",
	Long: `Run a kalmansub scenario from a YAML file.

Example:
  kalmansub run -f scenario.yaml`,
	RunE: runScenario,
}

func init() {
	runCmd.Flags().StringP("file", "f", "", "scenario YAML file (required)")
	runCmd.Flags().String("metrics-addr", "", "if set, serve Prometheus metrics on this address (e.g. :9090)")
	_ = runCmd.MarkFlagRequired("file")
}

func runScenario(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("file")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	sc, err := simconfig.Load(path)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	simmetrics.MustRegister(reg)
	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				klog.WithComponent("kalmansub").Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	summary, err := RunScenario(sc)
	if err != nil {
		return err
	}

	fmt.Printf("scenario %q [%s]: %d samples, final x=%.6f, final P=%.6g\n",
		sc.Name, summary.RunID, summary.SampleCount, summary.FinalX, summary.FinalP)

	return nil
}
