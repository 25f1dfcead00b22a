package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/muratoffalex/errorer/internal/app"
	"github.com/muratoffalex/errorer/internal/app/di"
	"github.com/muratoffalex/errorer/internal/config"
	"github.com/muratoffalex/errorer/internal/logger"
)

var (
	version   string
	buildTime string
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "errorer",
	Short: "errorer - Telegram bot answering with the first LLM backend that works",
	RunE:  runBot,
}

var speedTestCmd = &cobra.Command{
	Use:   "speedtest",
	Short: "Ping configured model candidates and print their latency",
	RunE:  runSpeedTest,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("errorer %s (built at: %s)\n", version, buildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")

	rootCmd.AddCommand(speedTestCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBot(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting application version: %s (built at: %s)\n", version, buildTime)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, configPath)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return application.Run(ctx)
}

func runSpeedTest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logCfg := cfg.Log()
	log := logger.NewLogrusLogger(&logCfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	generator, _, err := di.NewGenerator(ctx, cfg, log)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range generator.SpeedTest(ctx) {
		if r.OK() {
			fmt.Fprintf(out, "OK    %-50s %s\n", r.Candidate.String(), r.Latency.Round(time.Millisecond))
			continue
		}
		fmt.Fprintf(out, "FAIL  %-50s %v\n", r.Candidate.String(), r.Err)
	}
	return nil
}
