package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/kocherga-go/kocherga/fixture"
	"github.com/kocherga-go/kocherga/hostlog"
	"github.com/kocherga-go/kocherga/node"
	"github.com/kocherga-go/kocherga/protocol"
	"github.com/kocherga-go/kocherga/reactor"
	"github.com/kocherga-go/kocherga/serial"
	"github.com/kocherga-go/kocherga/statemachine"
	"github.com/spf13/cobra"
)

const (
	updateDeviceNodeID uint16 = 1
	updatePeerNodeID   uint16 = 9
	updateImagePath           = "/app.bin"
)

// cmdUpdate drives the cold-update scenario: a device with no resident
// image, paired over a loopback wire with a simulated file-server peer
// that originates BeginSoftwareUpdate and then answers the device's
// File.Read pull loop, ending at a freshly verified image.
type cmdUpdate struct {
	logLevel string
}

func (c *cmdUpdate) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Run the cold-update scenario over a loopback device/peer pair",
		RunE:  c.run,
	}
	return cmd
}

func (c *cmdUpdate) run(_ *cobra.Command, _ []string) error {
	logger := hostlog.Zerolog{L: hostlog.New(c.logLevel)}
	sessionID := uuid.New()

	image := fixture.Build(fixture.Image{
		Size:              4096,
		DescriptorOffset:  256,
		VCSRevision:       0xC0FFEE,
		VersionMajor:      2,
		VersionMinor:      1,
		BuildTimestampUTC: 1_700_000_100,
	})
	rom := fixture.NewROM(make([]byte, len(image))) // blank: no resident image yet

	devPort, peerPort := newLoopbackPair()
	devNode := serial.NewSerialNode(devPort)
	peerNode := serial.NewSerialNode(peerPort)

	devID := updateDeviceNodeID
	peerID := updatePeerNodeID
	devNode.SetLocalNodeID(&devID)
	peerNode.SetLocalNodeID(&peerID)

	bl, err := statemachine.New(statemachine.Config{
		ROM:            rom,
		WriteBlockSize: 64,
		Hardware:       reactor.HardwareInfo{Name: "kocherga-sim"},
		ReadChunkSize:  256,
		Logger:         logger,
	})
	if err != nil {
		return err
	}
	bl.AddNode(devNode)

	peerReactor := &fileServerReactor{file: image}

	req := protocol.ExecuteCommandRequest{
		CommandID:        protocol.CommandBeginSoftwareUpdate,
		FileServerNodeID: peerID,
		Parameter:        updateImagePath,
	}
	buf := make([]byte, protocol.ExecuteCommandRequestFixedSize+1+len(req.Parameter))
	n, err := protocol.EncodeExecuteCommandRequest(buf, req)
	if err != nil {
		return err
	}
	if !peerNode.SendRequest(protocol.ServiceExecuteCommand, devID, 1, buf[:n]) {
		return fmt.Errorf("peer could not send BeginSoftwareUpdate")
	}
	logger.Info("session started", "session", sessionID.String(), "path", updateImagePath)

	var uptime node.Microseconds
	const step node.Microseconds = 50_000
	for i := 0; i < 256; i++ {
		peerNode.Poll(peerReactor, uptime)
		state := bl.Poll(uptime)
		logger.Debug("poll", "session", sessionID.String(), "uptime", uint64(uptime), "state", state.String())

		if state == statemachine.ReadyToBoot {
			info, _ := bl.GetAppInfo()
			fmt.Printf("update complete: ReadyToBoot, image CRC %#x\n", info.ImageCRC)
			return nil
		}
		uptime += step
	}
	return fmt.Errorf("session %s did not complete within the simulated run", sessionID)
}
