package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kocherga-go/kocherga/hexdump"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// cmdHexdump prints a file as a hex/ASCII dump, paginated a screenful at a
// time when stdout is an interactive terminal and printed straight through
// otherwise (piping to a file or another command).
type cmdHexdump struct{}

func (c *cmdHexdump) command() *cobra.Command {
	return &cobra.Command{
		Use:   "hexdump <file>",
		Short: "Dump a ROM image file as hex/ASCII rows",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
}

func (c *cmdHexdump) run(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	dump := hexdump.String(data)

	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		fmt.Println(dump)
		return nil
	}
	return pageOut(dump, fd)
}

// pageOut prints lines a screenful at a time, waiting for Enter between
// pages, sized to the terminal's current height.
func pageOut(dump string, fd int) error {
	_, height, err := term.GetSize(fd)
	if err != nil || height <= 1 {
		height = 24
	}
	lines := strings.Split(dump, "\n")
	reader := bufio.NewReader(os.Stdin)

	for i := 0; i < len(lines); i += height - 1 {
		end := i + height - 1
		if end > len(lines) {
			end = len(lines)
		}
		fmt.Println(strings.Join(lines[i:end], "\n"))
		if end == len(lines) {
			break
		}
		fmt.Print("-- more --")
		_, _ = reader.ReadString('\n')
	}
	return nil
}
