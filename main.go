package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/xbt573/flup/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.WithField("err", err).Error("Failed to run command")
		os.Exit(1)
	}
}
