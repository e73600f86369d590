package commands

import (
	"github.com/urfave/cli"
)

var allCommands []cli.Command

//bootstrapCommands registers the commands a file's init defines
func bootstrapCommands(commands ...cli.Command) {
	allCommands = append(allCommands, commands...)
}

//Commands provides all of the defined commands to the front end
func Commands() []cli.Command {
	return allCommands
}

//below are some prebuilt flags commands can share

//configFlag allows users to specify an alternate config file to use
var configFlag = cli.StringFlag{
	Name:  "config, c",
	Usage: "Use a given `CONFIG_FILE` when running this command",
	Value: "",
}

//humanFlag prints results in a human readable table
var humanFlag = cli.BoolFlag{
	Name:  "human-readable, H",
	Usage: "print a formatted table instead of csv",
}

//limitFlag bounds how many rows a show command prints
var limitFlag = cli.IntFlag{
	Name:  "limit, l",
	Usage: "display at most `LIMIT` rows",
	Value: 100,
}
