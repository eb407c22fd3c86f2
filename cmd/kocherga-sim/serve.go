package main

import (
	"fmt"

	"github.com/kocherga-go/kocherga/appinfo"
	"github.com/kocherga-go/kocherga/fixture"
	"github.com/kocherga-go/kocherga/hostlog"
	"github.com/kocherga-go/kocherga/node"
	"github.com/kocherga-go/kocherga/reactor"
	"github.com/kocherga-go/kocherga/serial"
	"github.com/kocherga-go/kocherga/statemachine"
	"github.com/spf13/cobra"
)

// cmdServe drives the happy-boot scenario: a resident, valid image and a
// single anonymous device node, polled until BootDelay's timer expires and
// the state machine reports ReadyToBoot.
type cmdServe struct {
	logLevel string
}

func (c *cmdServe) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the happy-boot scenario against a synthetic resident image",
		RunE:  c.run,
	}
	return cmd
}

func (c *cmdServe) run(_ *cobra.Command, _ []string) error {
	logger := hostlog.Zerolog{L: hostlog.New(c.logLevel)}

	image := fixture.Build(fixture.Image{
		Size:              4096,
		DescriptorOffset:  256,
		VCSRevision:       0xC0FFEE,
		VersionMajor:      1,
		VersionMinor:      0,
		Flags:             appinfo.FlagRelease,
		BuildTimestampUTC: 1_700_000_000,
	})
	rom := fixture.NewROM(image)

	port, _ := newLoopbackPair() // unconnected far end: nothing ever arrives
	devNode := serial.NewSerialNode(port)

	bl, err := statemachine.New(statemachine.Config{
		ROM:            rom,
		WriteBlockSize: 64,
		Hardware:       reactor.HardwareInfo{Name: "kocherga-sim"},
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	bl.AddNode(devNode)

	var uptime node.Microseconds
	const step node.Microseconds = 100_000
	for i := 0; i < 64; i++ {
		state := bl.Poll(uptime)
		logger.Info("poll", "uptime", uint64(uptime), "state", state.String())
		if state == statemachine.ReadyToBoot {
			fmt.Println("ReadyToBoot")
			return nil
		}
		uptime += step
	}
	return fmt.Errorf("did not reach ReadyToBoot within the simulated run")
}
