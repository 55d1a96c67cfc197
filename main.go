package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"serv00_keepalive/internal/adaptors"
	"serv00_keepalive/internal/application/config"
	"serv00_keepalive/internal/domain/models"
	"serv00_keepalive/internal/pkg/logging"
	"serv00_keepalive/internal/pkg/metrics"
	"serv00_keepalive/internal/service"
)

func main() {
	var (
		configPath string
		noLog      bool
		verbose    bool
	)

	rootCmd := &cobra.Command{
		Use:           "serv00-keepalive",
		Short:         "Keeps serv00 accounts alive by logging in to their panels",
		Long:          "Logs in to each configured serv00 panel, classifies the account state\nand runs the on_banned command for banned accounts. Intended to be\ntriggered from cron.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode, err := run(configPath, noLog, verbose)
			if err != nil {
				return err
			}
			if exitCode != 0 {
				os.Exit(exitCode)
			}
			return nil
		},
	}

	rootCmd.Flags().StringVarP(&configPath, `config`, `c`, config.DefaultConfigPath(), `config file path`)
	rootCmd.Flags().BoolVar(&noLog, `no-log`, false, `do not write the log file`)
	rootCmd.Flags().BoolVarP(&verbose, `verbose`, `v`, false, `enable debug output`)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, noLog, verbose bool) (int, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return 0, fmt.Errorf(`failed to load config: %w`, err)
	}

	logFile := cfg.Settings.LogFile
	if path := config.EnvLogPath(); path != "" {
		logFile = path
	}
	if noLog {
		logFile = ""
	}

	logger := log.New()
	closeLog, err := logging.Setup(logger, logFile, verbose)
	if err != nil {
		return 0, err
	}
	defer closeLog()

	reg := metrics.MetricsRegister()

	client := adaptors.NewPanelClient(cfg.Settings.TimeoutDuration(), logger)
	checker := service.NewChecker(logger, client, markerSet(cfg.Markers), *cfg.Settings.RetryCount)
	runner := service.NewRunner(logger, checker, adaptors.NewShellRunner(logger))

	summary := runner.RunAll(context.Background(), domainAccounts(cfg.Accounts))

	if cfg.Settings.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.Settings.MetricsFile, reg); err != nil {
			logger.WithError(err).Warn(`failed to write metrics file`)
		}
	}

	return summary.ExitCode(), nil
}

// markerSet applies configured marker overrides on top of the serv00
// defaults.
func markerSet(m config.Markers) service.MarkerSet {
	set := service.DefaultMarkerSet()
	if len(m.Banned) > 0 {
		set.Banned = m.Banned
	}
	if len(m.Success) > 0 {
		set.Success = m.Success
	}
	if len(m.LoginPage) > 0 {
		set.LoginPage = m.LoginPage
	}
	return set
}

func domainAccounts(accounts []config.Account) []models.Account {
	out := make([]models.Account, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, models.Account{
			PanelURL: a.PanelURL,
			Username: a.Username,
			Password: a.Password,
			OnBanned: a.OnBanned,
		})
	}
	return out
}
