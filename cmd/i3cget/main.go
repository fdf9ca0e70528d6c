// Command i3cget reads registers of an I2C/I3C endpoint with one combo
// transfer: a 16-bit offset write followed by a read.
//
//	i3cget -d /dev/i3c-tools-0 -e 0x50 -2 -o 0x100 -l 8
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-i3c/directive"
	"github.com/arloliu/go-i3c/internal/cli"
	"github.com/arloliu/go-i3c/internal/util"
	"github.com/arloliu/go-i3c/sink"
	"github.com/arloliu/go-i3c/transfer"
	"github.com/arloliu/go-i3c/wire"
)

func main() {
	os.Exit(cli.Execute(newRootCmd(), os.Args[1:]))
}

type options struct {
	common   cli.Common
	endpoint string
	length   string
	offset   string
	i2c      bool
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := cli.NewRoot("i3cget", "Read registers of an I2C/I3C endpoint", &opts.common)
	cmd.Flags().StringVarP(&opts.endpoint, "endpoint", "e", "0", "endpoint address, 0..0x7f")
	cmd.Flags().StringVarP(&opts.length, "length", "l", "0", "number of bytes to read, 0..0xffff")
	cmd.Flags().StringVarP(&opts.offset, "offset", "o", "0", "register offset, 0..0xffff")
	cmd.Flags().BoolVarP(&opts.i2c, "i2c", "2", false, "the endpoint is an I2C device")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		combo, err := opts.intent()
		if err != nil {
			return err
		}

		return opts.run(cmd, combo)
	}

	return cmd
}

func (o *options) intent() (*directive.ComboTransfer, error) {
	endpoint, err := util.ParseUint[uint8](o.endpoint, directive.MaxAddress)
	if err != nil {
		return nil, fmt.Errorf("endpoint must be 0...0x7f: %w", err)
	}
	length, err := util.ParseUint[int](o.length, directive.MaxLength)
	if err != nil {
		return nil, fmt.Errorf("length must be 0...0xffff: %w", err)
	}
	offset, err := util.ParseUint[uint16](o.offset, 0xffff)
	if err != nil {
		return nil, fmt.Errorf("offset must be 0...0xffff: %w", err)
	}

	bus := directive.I3C
	if o.i2c {
		bus = directive.I2C
	}

	return &directive.ComboTransfer{
		Transfer: directive.Transfer{
			Bus:    bus,
			Dir:    directive.Read,
			Addr:   endpoint,
			Length: length,
			Source: directive.None{},
			Text:   fmt.Sprintf("0x%02x:0x%04x:r:%d", endpoint, offset, length),
		},
		Offset: offset,
	}, nil
}

func (o *options) run(cmd *cobra.Command, combo *directive.ComboTransfer) error {
	l, err := o.common.Logger()
	if err != nil {
		return err
	}

	dev, err := o.common.OpenDevice(l)
	if err != nil {
		return err
	}
	defer cli.CloseDevice(dev, l)

	r, err := transfer.NewRunner(dev, transfer.WithLogger(l))
	if err != nil {
		return err
	}

	return r.Execute([]directive.Intent{combo}, func(records []wire.Record) error {
		return sink.Inline(cmd.OutOrStdout(), records[0].Payload())
	})
}
