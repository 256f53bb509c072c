package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "matchfoundry",
		Usage: "Founder matching and coffee-chat scheduling service",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			seedCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
