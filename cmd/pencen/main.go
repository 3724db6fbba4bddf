package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/pencen/internal/adapters/clock"
	"github.com/bft-labs/pencen/internal/cliconfig"
	"github.com/bft-labs/pencen/internal/console"
	pencenlog "github.com/bft-labs/pencen/pkg/log"
	"github.com/bft-labs/pencen/pkg/terminal"
	"github.com/bft-labs/pencen/plugins/configwatcher"
	"github.com/bft-labs/pencen/plugins/metrics"
)

const helpBanner = `
 ___  ___  _ __   ___ ___ _ __
| _ \/ -_)| '  \ / __/ -_) '  \
|  _/\___||_||_|\___\___|_||_|_|
|_|   pension disbursement terminal
`

const helpDescription = `
Walk a field agent through a doorstep pension payout: agent login, MyKad
read, GPS geofence check, beneficiary condition and thumbprint, then the
receipt. All hardware is simulated with configurable latencies.

Type 'help' at the prompt for the operator commands.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  pencen --agent-id POS-MY-9921
  pencen --demo --time-scale 0.2
  pencen --config $HOME/.pencen/config.toml --metrics-dump
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:          "pencen",
		Short:        "Simulated field-agent pension disbursement terminal",
		Long:         longHelp,
		Example:      exampleUsage,
		Version:      fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.pencen/config.toml), then env, then flags win.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else {
				cfgFile = ""
			}

			// Apply environment variables (PENCEN_*)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log := cliconfig.Logger(cfg)
			log.Info().Interface("config", cfg).Str("config_file", cfgFile).Msg("configuration")

			reg := prometheus.NewRegistry()
			err := run(cmd, cfg, cfgFile, changed, log, reg)

			if cfg.MetricsDump {
				if derr := dumpMetrics(cmd.ErrOrStderr(), reg); derr != nil {
					log.Error().Err(derr).Msg("metrics dump failed")
				}
			}
			return err
		},
	}

	// Flags
	f := root.Flags()
	f.StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.pencen/config.toml)")
	f.StringVar(&cfg.AgentID, "agent-id", cfg.AgentID, "agent identity shown at login")
	f.StringVar(&cfg.DefaultCondition, "condition", cfg.DefaultCondition, "condition preselected at verification (Bedridden, Mobile, Deceased)")

	f.StringVar(&cfg.BeneficiaryName, "beneficiary-name", cfg.BeneficiaryName, "name on the simulated identity card")
	f.StringVar(&cfg.BeneficiaryID, "beneficiary-id", cfg.BeneficiaryID, "identity number on the simulated card")
	f.StringVar(&cfg.BeneficiaryCategory, "beneficiary-category", cfg.BeneficiaryCategory, "pension category")

	f.Int64Var(&cfg.AmountMinor, "amount", cfg.AmountMinor, "disbursed amount in minor units (sen)")
	f.StringVar(&cfg.Currency, "currency", cfg.Currency, "ISO 4217 currency code")
	f.StringVar(&cfg.Locale, "locale", cfg.Locale, "BCP 47 locale for amounts")

	f.DurationVar(&cfg.LoginDelay, "login-delay", cfg.LoginDelay, "simulated authentication time")
	f.DurationVar(&cfg.ScanDuration, "scan-duration", cfg.ScanDuration, "simulated card read time")
	f.DurationVar(&cfg.GPSSearch, "gps-search", cfg.GPSSearch, "time spent searching for satellites")
	f.DurationVar(&cfg.GPSTriangle, "gps-triangulate", cfg.GPSTriangle, "time spent triangulating")
	f.DurationVar(&cfg.GPSGeofence, "gps-geofence", cfg.GPSGeofence, "time spent verifying the geofence")
	f.DurationVar(&cfg.CaptureTick, "capture-tick", cfg.CaptureTick, "interval between thumbprint progress steps")
	f.IntVar(&cfg.CaptureStep, "capture-step", cfg.CaptureStep, "thumbprint progress per step, in percent")
	f.DurationVar(&cfg.ConfirmDelay, "confirm-delay", cfg.ConfirmDelay, "pause after a confirmed thumbprint")
	f.Float64Var(&cfg.TimeScale, "time-scale", cfg.TimeScale, "multiply every simulated delay (0.1 runs ten times faster)")

	f.BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload [timing] when the config file changes")
	f.BoolVar(&cfg.MetricsDump, "metrics-dump", cfg.MetricsDump, "print Prometheus metrics to stderr on exit")
	f.BoolVar(&cfg.Demo, "demo", cfg.Demo, "play a scripted verification and exit")
	f.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	f.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (console, json)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "pencen:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, cfg cliconfig.Config, cfgFile string, changed map[string]bool, log zerolog.Logger, reg *prometheus.Registry) error {
	lang := cfg.Language()
	out := console.NewRenderer(cmd.OutOrStdout(), lang)

	libCfg := terminal.Config{
		AgentID:          cfg.AgentID,
		DefaultCondition: cfg.Condition(),
		Beneficiary:      cfg.Beneficiary(),
		Amount:           cfg.Amount(),
		Timing:           cfg.Timing(),
		ConfigPath:       cfgFile,
	}

	var delayer terminal.Delayer = clock.NewDelayer()
	if cfg.TimeScale != 1 {
		delayer = clock.Scaled{Base: delayer, Factor: cfg.TimeScale}
	}

	opts := []terminal.Option{
		terminal.WithLogger(pencenlog.NewZerologAdapterWithLogger(log)),
		terminal.WithDelayer(delayer),
		terminal.WithEventHandler(out),
		metrics.WithMetrics(reg),
	}
	if cfg.WatchConfig && cfgFile != "" {
		opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
			// Flags given on the command line keep their values across reloads.
			Parse: func(path string, current terminal.Timing) (terminal.Timing, error) {
				c := cfg
				c.SetTiming(current)
				return cliconfig.ReloadTiming(path, c, changed)
			},
		}))
	}

	term, err := terminal.New(libCfg, opts...)
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}

	// Setup signal handling for graceful shutdown
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := term.Start(sigCtx); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	con := console.New(term, out, lang)
	out.Printf("%s", console.StepIndicator(terminal.StageLogin))
	out.Printf("Agent %s ready. Type 'login' to authenticate, 'help' for commands.", cfg.AgentID)

	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		if cfg.Demo {
			return con.Demo(gctx)
		}
		return con.Run(gctx, cmd.InOrStdin())
	})
	g.Go(func() error {
		<-gctx.Done()
		if sigCtx.Err() != nil {
			log.Info().Msg("received signal, stopping...")
		}
		return nil
	})

	runErr := g.Wait()
	if sigCtx.Err() != nil && errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	// Graceful shutdown
	if err := term.Stop(); err != nil {
		return fmt.Errorf("stop terminal: %w", err)
	}
	return runErr
}

func dumpMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
