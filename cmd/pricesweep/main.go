package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"PriceSweep/internal/chart"
	"PriceSweep/internal/cleaner"
	"PriceSweep/internal/config"
	"PriceSweep/internal/notifier"
	"PriceSweep/internal/recorder"
	"PriceSweep/internal/scheduler"
	"PriceSweep/internal/series"
	"PriceSweep/internal/state"
	"PriceSweep/internal/window"
)

var configPath string

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "pricesweep",
		Short: "Causal outlier cleaning for stock price series",
		Long: "pricesweep filters corrupted points out of a daily price series by\n" +
			"comparing each record against a rolling window of previously accepted\n" +
			"prices. Decisions never look ahead, so a cleaned file is reproducible\n" +
			"record by record.",
		Version:      "1.0.0",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to the YAML config")
	root.AddCommand(cleanCmd(), watchCmd(), chartCmd())

	if err := root.Execute(); err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
}

// resolveConfigPath gives the --config flag precedence over CONFIG_PATH.
func resolveConfigPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("config") {
		return configPath
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return configPath
}

func cleanCmd() *cobra.Command {
	var (
		input     string
		output    string
		chartPath string
		reference string
		threshold float64
		windowLen int
	)
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Run the outlier filter once and write the cleaned series",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath(cmd))
			if err != nil {
				return err
			}
			if input != "" {
				// An explicit input file beats any remote source.
				cfg.Source.CSVPath = input
				cfg.Source.Symbol = ""
				cfg.Source.BaseURL = ""
			}
			if output != "" {
				cfg.Output.CSVPath = output
			}
			if chartPath != "" {
				cfg.Output.ChartPath = chartPath
			}
			if reference != "" {
				cfg.Filter.Reference = reference
			}
			if cmd.Flags().Changed("threshold") {
				cfg.Filter.AcceptablePcntChange = threshold
			}
			if cmd.Flags().Changed("window") {
				cfg.Filter.WindowSize = windowLen
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			rec := buildRecorder(cfg)
			defer rec.Close()

			cl, err := buildCleaner(cfg, rec)
			if err != nil {
				return err
			}

			summary, _, err := cl.Run()
			if err != nil {
				return err
			}
			log.Printf("[INFO] done: %d records, %d rejected (%.1f%%), output %s",
				summary.Total, summary.Rejected, summary.RejectRatio()*100, summary.Output)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "input CSV path (overrides source.csv_path)")
	cmd.Flags().StringVar(&output, "output", "", "cleaned CSV path (default Cleaned_<input>)")
	cmd.Flags().StringVar(&chartPath, "chart", "", "also write a PNG chart of the cleaned series")
	cmd.Flags().StringVar(&reference, "reference", "", "window statistic: mean|median|last")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "max fractional deviation, e.g. 0.05")
	cmd.Flags().IntVar(&windowLen, "window", 0, "rolling window size in records")
	return cmd
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Clean on a cron schedule and alert when the feed degrades",
		RunE: func(cmd *cobra.Command, args []string) error {
			log.Println("[INFO] pricesweep starting...")

			cfg, err := config.Load(resolveConfigPath(cmd))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}

			rec := buildRecorder(cfg)
			defer rec.Close()

			cl, err := buildCleaner(cfg, rec)
			if err != nil {
				return err
			}

			sm, err := state.NewManager(cfg.Schedule.StateFile)
			if err != nil {
				return fmt.Errorf("init state manager: %w", err)
			}

			tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
			if !tn.Enabled() {
				log.Println("[WARN] telegram not configured, degradation alerts disabled")
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := scheduler.NewScheduler(ctx, cl, sm, tn, cfg.Schedule.AlertRejectRatio)
			if err := sched.Register(cfg.Schedule.Cron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if os.Getenv("RUN_ON_START") == "true" {
				log.Println("[INFO] RUN_ON_START enabled, executing cleaning now")
				go sched.RunNow()
			}

			log.Println("[INFO] pricesweep watch is running. Press Ctrl+C to stop.")

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh

			log.Println("[INFO] shutdown signal received, stopping...")
			return nil
		},
	}
}

func chartCmd() *cobra.Command {
	var (
		input  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render a price series CSV as a PNG line chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath(cmd))
			if err != nil {
				return err
			}
			path := input
			if path == "" {
				path = cfg.Source.CSVPath
			}
			if path == "" {
				return fmt.Errorf("no input CSV: pass --input or set source.csv_path")
			}

			records, err := series.NewCSVLoader(path, cfg.Source.DateFormat).Load()
			if err != nil {
				return err
			}
			if err := chart.Save(output, filepath.Base(path), records); err != nil {
				return err
			}
			log.Printf("[INFO] chart written to %s", output)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "series CSV to render")
	cmd.Flags().StringVar(&output, "output", "chart.png", "PNG output path")
	return cmd
}

func buildRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func buildLoader(cfg *config.Config) (series.Loader, error) {
	switch {
	case cfg.Source.BaseURL != "":
		return series.NewAPILoader(cfg.Source.BaseURL, cfg.Source.APIKey, cfg.Source.Symbol, cfg.Proxy, 0), nil
	case cfg.Source.Symbol != "":
		return series.NewYahooLoader(cfg.Source.Symbol, cfg.Source.Range, cfg.Proxy), nil
	case cfg.Source.CSVPath != "":
		return series.NewCSVLoader(cfg.Source.CSVPath, cfg.Source.DateFormat), nil
	default:
		return nil, fmt.Errorf("no series source configured")
	}
}

func buildCleaner(cfg *config.Config, rec recorder.Recorder) (*cleaner.Cleaner, error) {
	loader, err := buildLoader(cfg)
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] series source: %s", loader.Name())

	stat, err := window.ParseStatistic(cfg.Filter.Reference)
	if err != nil {
		return nil, err
	}

	return cleaner.New(cleaner.Options{
		Loader:     loader,
		OutputPath: cfg.Output.CSVPath,
		DateFormat: cfg.Source.DateFormat,
		ChartPath:  cfg.Output.ChartPath,
		WindowSize: cfg.Filter.WindowSize,
		Threshold:  cfg.Filter.AcceptablePcntChange,
		Reference:  stat,
	}, rec), nil
}
