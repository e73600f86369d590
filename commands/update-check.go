package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/blang/semver"
	"github.com/google/go-github/github"
	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/config"
	"github.com/netmon-dev/netmon/resources"
)

//Strings used for informing the user of a new version.
var informFmtStr = "\nThere's a new %s version of netmon %s available at:\nhttps://github.com/netmon-dev/netmon/releases\n"
var versions = []string{"Major", "Minor", "Patch"}

//GetVersionPrinter prints the version and checks for a newer release
func GetVersionPrinter() func(*cli.Context) {
	return func(c *cli.Context) {
		fmt.Printf("%s version %s\n", c.App.Name, c.App.Version)
		fmt.Print(updateCheck(c.String("config")))
	}
}

//updateCheck performs a check for the new version of netmon against the
//git repository and returns a string indicating the new version if
//available
func updateCheck(configFile string) string {
	res := resources.InitResources(configFile)
	if res.Config.S.UserConfig.UpdateCheckFrequency <= 0 {
		return ""
	}

	newVersion, err := getRemoteVersion()
	if err != nil {
		return ""
	}

	configVersion, err := semver.ParseTolerant(config.Version)
	if err != nil {
		return ""
	}

	if newVersion.GT(configVersion) {
		return informUser(configVersion, newVersion)
	}
	return ""
}

// Returns the first index where v1 is greater than v2
func versionDiffIndex(v1 semver.Version, v2 semver.Version) int {
	if v1.Major > v2.Major {
		return 0
	}
	if v1.Minor > v2.Minor {
		return 1
	}
	return 2
}

func getRemoteVersion() (semver.Version, error) {
	client := github.NewClient(nil)
	refs, _, err := client.Git.GetRefs(context.Background(), "netmon-dev", "netmon", "refs/tags/v")
	if err != nil {
		return semver.Version{}, err
	}

	s := strings.TrimPrefix(*refs[len(refs)-1].Ref, "refs/tags/")
	return semver.ParseTolerant(s)
}

// Assembles a notice for the user informing them of an upgrade.
// The return value is printed regardless so, "" is returned on error.
func informUser(local semver.Version, remote semver.Version) string {
	return fmt.Sprintf(informFmtStr,
		versions[versionDiffIndex(remote, local)],
		fmt.Sprint(remote))
}
