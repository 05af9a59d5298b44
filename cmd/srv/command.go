package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "OpenIsle"
	app.Usage = ""
	app.Commands = []*cli.Command{
		{
			Action:      server.startSrv,
			Name:        "srv",
			Usage:       "Start the service",
			Flags:       []cli.Flag{},
			Category:    "Service",
			Description: `Start the main service with the outcome scheduler.`,
		},
		{
			Action:      server.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate database tables",
			Flags:       []cli.Flag{},
			Category:    "Database",
			Description: `Create or update database tables for all entities.`,
		},
	}

	s.app = app
}
