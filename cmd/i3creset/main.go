// Command i3creset resets the bus controller behind an i3c tools device.
//
//	i3creset -d /dev/i3c-tools-0
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-i3c/i3cdev"
	"github.com/arloliu/go-i3c/internal/cli"
)

func main() {
	os.Exit(cli.Execute(newRootCmd(), os.Args[1:]))
}

func newRootCmd() *cobra.Command {
	var common cli.Common

	cmd := cli.NewRoot("i3creset", "Reset the I3C bus controller", &common)
	cmd.RunE = func(*cobra.Command, []string) error {
		l, err := common.Logger()
		if err != nil {
			return err
		}

		dev, err := common.OpenDevice(l)
		if err != nil {
			return err
		}
		defer cli.CloseDevice(dev, l)

		disp, err := i3cdev.NewDispatcher(dev, i3cdev.WithLogger(l))
		if err != nil {
			return err
		}

		return disp.Reset()
	}

	return cmd
}
