package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/google/gops/agent"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/xbt573/flup/internal/app"
	pasteController "github.com/xbt573/flup/internal/controller/paste"
	pasteService "github.com/xbt573/flup/internal/service/paste"
)

var configFile string

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (.yaml)")

	rootCmd.PersistentFlags().StringP("listen", "l", defaultListen, "Host and port to listen on")
	rootCmd.PersistentFlags().String("type", "sqlite", "Database type (one of sqlite postgresql bolt)")
	rootCmd.PersistentFlags().String("uri", defaultURI, "Database URI (or file for SQLite and bolt)")
	rootCmd.PersistentFlags().Uint("bodylimit", defaultBodyLimit, "Maximum size of body (default to 200 MB, uint)")
	rootCmd.PersistentFlags().Bool("testing", false, "Debug logging and error details in responses")
	rootCmd.PersistentFlags().Bool("gops", false, "Start the gops diagnostics agent")

	rootCmd.AddCommand(initdbCmd)
}

func setup(cmd *cobra.Command) (Config, error) {
	config, err := loadConfig(configFile, flagOverrides(cmd.Flags()))
	if err != nil {
		return Config{}, err
	}

	if config.Testing {
		log.SetLevel(log.DebugLevel)
	}

	return config, nil
}

var rootCmd = &cobra.Command{
	Use:           "flup",
	Short:         "A simple pastebin",
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := setup(cmd)
		if err != nil {
			return err
		}

		if config.Gops {
			if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
				log.WithField("err", err).Warn("Could not start gops agent")
			} else {
				defer agent.Close()
			}
		}

		s, err := openStore(config.Database, config.Testing)
		if err != nil {
			return err
		}
		defer func() {
			if err := s.close(); err != nil {
				log.WithField("err", err).Warn("Could not close database")
			}
		}()

		ps := pasteService.New(s.repository, pasteService.Options{})
		pc := pasteController.New(ps)

		a := app.New(pc, app.Options{
			BodyLimit: config.Limits.BodyLimit,
			Testing:   config.Testing,
			DB:        s.db,
		})

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
		defer cancel()

		log.WithFields(log.Fields{
			"addr":     config.Listen,
			"database": config.Database.Type,
		}).Info("Running")

		return a.Listen(config.Listen, ctx)
	},
}

func Execute() error {
	return rootCmd.Execute()
}
