package main

import (
	"fmt"
	"os"

	"github.com/kocherga-go/kocherga/appinfo"
	"github.com/kocherga-go/kocherga/fixture"
	"github.com/spf13/cobra"
)

// cmdInspect reads a ROM image file and prints its AppInfo descriptor, or
// reports why none could be found.
type cmdInspect struct{}

func (c *cmdInspect) command() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Locate and print a ROM image's AppInfo descriptor",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
}

func (c *cmdInspect) run(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	rom := fixture.NewROM(data)

	info, err := appinfo.Locate(rom)
	if err != nil {
		return fmt.Errorf("no valid image found: %w", err)
	}

	fmt.Printf("offset:      %d\n", info.Offset)
	fmt.Printf("image CRC:   %#016x\n", info.ImageCRC)
	fmt.Printf("image size:  %d\n", info.ImageSize)
	fmt.Printf("VCS rev:     %#08x\n", info.VCSRevision)
	fmt.Printf("version:     %d.%d\n", info.VersionMajor, info.VersionMinor)
	fmt.Printf("flags:       %#02x (release=%t dirty=%t)\n",
		info.Flags, info.Flags&appinfo.FlagRelease != 0, info.Flags&appinfo.FlagDirty != 0)
	fmt.Printf("build time:  %d\n", info.BuildTimestampUTC)
	return nil
}
