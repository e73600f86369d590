package main

import (
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/commands"
	"github.com/netmon-dev/netmon/config"
)

// Entry point of netmon
func main() {
	app := cli.NewApp()
	app.Name = "netmon"
	app.Usage = "Watch a home network's outbound flows for anomalies."
	app.Version = config.Version
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "Use a given `CONFIG_FILE` when running this command",
			Value: "",
		},
	}
	cli.VersionPrinter = commands.GetVersionPrinter()

	// Define commands used with this application
	app.Commands = commands.Commands()

	runtime.GOMAXPROCS(runtime.NumCPU())
	app.Run(os.Args)
}
