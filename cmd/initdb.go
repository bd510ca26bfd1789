package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Initialise the database",
	Long: `Create the table holding pastes. Run it once against a fresh database,
before serving. It fails if the table already exists.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := setup(cmd)
		if err != nil {
			return err
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

		if err := s.repository.Initialize(cmd.Context()); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Initialised the database.")
		return nil
	},
}
