// Copyright (c) 2026 PlantOps Organization
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/plantops/timeclock/cmd/server/bootstrap"
)

func main() {
	app := &cli.App{
		Name:  "timeclock server",
		Usage: "start the timeclock server",
		Action: func(c *cli.Context) error {
			bootstrap.StartTimeclockServerCli(c)
			return nil
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  bootstrap.FlagConfig,
				Value: "./config/development.yaml",
				Usage: "the config to start the timeclock server",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
