package commands

import (
	"fmt"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"

	"github.com/netmon-dev/netmon/pkg/baseline"
	"github.com/netmon-dev/netmon/resources"
)

func init() {
	command := cli.Command{
		Name:  "recompute-baselines",
		Usage: "Rebuild every device's traffic baseline from its minute buckets",
		Flags: []cli.Flag{
			configFlag,
		},
		Action: recomputeBaselines,
	}

	bootstrapCommands(command)
}

func recomputeBaselines(c *cli.Context) error {
	res := resources.InitResources(c.String("config"))
	s := openStore(res)

	devices, err := s.devices.All()
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}
	if len(devices) == 0 {
		fmt.Println("No devices to recompute")
		return nil
	}

	p := mpb.New(mpb.WithWidth(20))
	bar := p.AddBar(int64(len(devices)),
		mpb.PrependDecorators(
			decor.Name("\t[-] Baseline Recompute:", decor.WC{W: 30, C: decor.DidentRight}),
			decor.CountersNoUnit(" %d / %d ", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)

	recomputer := baseline.NewRecomputer(s.devices, s.minutes, s.baselines, res.Log)
	start := time.Now()
	written, err := recomputer.Run(time.Now().UTC(), func() {
		bar.IncrBy(1, time.Since(start))
	})
	p.Wait()
	if err != nil {
		return cli.NewExitError(err.Error(), -1)
	}

	fmt.Printf("Recomputed %d baselines\n", written)
	return nil
}
