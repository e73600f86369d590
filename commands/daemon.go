package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/netmon-dev/netmon/daemon"
	"github.com/netmon-dev/netmon/pkg/baseline"
	"github.com/netmon-dev/netmon/pkg/metrics"
	"github.com/netmon-dev/netmon/resources"
)

func init() {
	command := cli.Command{
		Name:  "daemon",
		Usage: "Poll the connection tracker and score outbound flows until interrupted",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: runDaemon,
	}

	bootstrapCommands(command)
}

func runDaemon(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	s := openStore(res)
	s.ensureIndexes(res.Log)

	engine := buildEngine(res, s, snapshotSource(res))
	recomputer := baseline.NewRecomputer(s.devices, s.minutes, s.baselines, res.Log)
	recorder := metrics.NewRecorder(s.samples, s.hosts, s.conns, res.Log)

	stop := make(chan struct{})
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		close(stop)
	}()

	res.Log.Info("starting reconciliation daemon")
	if err := daemon.New(res.Config, res.Log, engine, recomputer, recorder).Run(stop); err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	return nil
}
