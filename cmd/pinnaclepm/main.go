package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "pinnaclepm",
		Usage: "Rental property site with tenant application wizard",
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			nanoidCommand,
			previewEmailCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
