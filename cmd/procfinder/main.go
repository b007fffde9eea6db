package main

import (
	"context"
	"fmt"
	"os"

	"github.com/25smoking/procfinder/internal/config"
	"github.com/25smoking/procfinder/internal/core"
	"github.com/25smoking/procfinder/internal/metrics"
	"github.com/25smoking/procfinder/internal/plugins"
	"github.com/25smoking/procfinder/internal/procfs"
	"github.com/25smoking/procfinder/internal/report"
	"github.com/25smoking/procfinder/internal/sys/pkg_mgr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// set with -ldflags "-X main.version=..."
var version = "0.3.0"

var (
	log = zap.NewNop().Sugar()

	// exit status of a completed scan, see scanExitCode
	exitCode int

	// Command line flags
	pidList     string
	quiet       bool
	showVersion bool
	configPath  string
	checks      string
	noColor     bool
	debug       bool
	owners      bool
	jsonOut     string
	csvOut      string
	htmlOut     string
	metricsOut  string
)

var rootCmd = &cobra.Command{
	Use:   "procfinder",
	Short: "procfinder attempts to find signs of malware by checking in /proc",
	Long: `procfinder takes one snapshot of the process table and runs a set of
heuristic checks against it: deleted binaries, tampered PATH and LD_PRELOAD,
packet sniffers, processes hidden from ps, odd thread ID spreads and processes
running from temp directories.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(debug)
		if err != nil {
			return err
		}
		log = logger.Sugar()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Println(versionString())
			return nil
		}
		return runScan(cmd.Context())
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&pidList, "pids", "p", "", "Comma separated list of PIDs to search against")
	flags.BoolVarP(&quiet, "quiet", "q", false, "Do not print binary name associated with the PID")
	flags.BoolVarP(&showVersion, "version", "v", false, "Prints version number")
	flags.StringVarP(&configPath, "config", "c", "", "Path to procfinder.yaml (default: ./config/procfinder.yaml, then built-in)")
	flags.StringVarP(&checks, "checks", "m", "", "Only run these checks (e.g. deleted,preload,ps)")
	flags.BoolVar(&noColor, "no-color", false, "Disable colorized output")
	flags.BoolVar(&debug, "debug", false, "Verbose logging, including every skipped process")
	flags.BoolVar(&owners, "owners", false, "Look up the package owning each flagged binary (rpm/dpkg)")
	flags.StringVar(&jsonOut, "json", "", "Also write the report as JSON to this file")
	flags.StringVar(&csvOut, "csv", "", "Also write the report as CSV to this file")
	flags.StringVar(&htmlOut, "html", "", "Also write the report as HTML to this file")
	flags.StringVar(&metricsOut, "metrics", "", "Write Prometheus textfile metrics to this file")
}

func main() {
	// Ensure proper cleanup on exit
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("panic: %v", r)
			os.Exit(1)
		}
	}()

	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "[-]", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func versionString() string {
	return "ProcFinder " + version
}

func runScan(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if checks != "" {
		selected, err := parseChecks(checks)
		if err != nil {
			return err
		}
		cfg.Checks = selected
	}

	requested, err := parsePIDs(pidList)
	if err != nil {
		return err
	}

	// host preconditions (procfs mount, root); nothing runs if they fail
	if err := checkHost(cfg.ProcRoot); err != nil {
		return err
	}

	fs, err := procfs.NewFS(cfg.ProcRoot)
	if err != nil {
		return err
	}
	snap, err := fs.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot processes: %w", err)
	}

	var missing []int
	if len(requested) > 0 {
		snap, missing = snap.Filter(requested)
		for _, pid := range missing {
			log.Warnf("PID %d is not running", pid)
		}
	}

	logger := log.Desugar()
	detectors, err := plugins.New(cfg, fs, logger, plugins.Options{Only: requested})
	if err != nil {
		return err
	}

	scanner := &core.Scanner{
		Detectors: detectors,
		Resolver:  fs,
		Quiet:     quiet,
		Host:      core.CollectHost(ctx),
		Logger:    logger,
	}
	if owners && !quiet {
		if pm := pkg_mgr.NewPackageManager(); pm != nil {
			log.Debugf("package manager: %s", pm.Name())
			scanner.Owners = pm
		} else {
			log.Warn("no supported package manager (rpm/dpkg) found, skipping ownership lookup")
		}
	}

	console := report.NewConsole(os.Stdout, noColor)
	console.Banner(versionString())

	rep := scanner.Scan(ctx, snap)
	rep.Missing = missing
	console.Render(rep)

	if err := writeOutputs(rep); err != nil {
		return err
	}
	exitCode = scanExitCode(rep)
	return nil
}

func writeOutputs(rep *core.Report) error {
	outputs := []struct{ format, path string }{
		{"json", jsonOut},
		{"csv", csvOut},
		{"html", htmlOut},
	}
	for _, out := range outputs {
		if out.path == "" {
			continue
		}
		if err := report.Save(rep, out.format, out.path); err != nil {
			return err
		}
		log.Infof("report saved: %s", out.path)
	}

	if metricsOut != "" {
		if err := metrics.WriteTextfile(rep, metricsOut); err != nil {
			return err
		}
		log.Infof("metrics saved: %s", metricsOut)
	}
	return nil
}
