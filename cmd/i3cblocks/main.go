// Command i3cblocks runs a block session: a START record addressed to the
// endpoint, the '+'-joined read and write blocks, and a STOP record.
//
//	i3cblocks -d /dev/i3c-tools-0 -e 0x50 -2 -b "w:0x00+r:16:dump.bin"
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-i3c/blocks"
	"github.com/arloliu/go-i3c/config"
	"github.com/arloliu/go-i3c/directive"
	"github.com/arloliu/go-i3c/internal/cli"
	"github.com/arloliu/go-i3c/internal/util"
	"github.com/arloliu/go-i3c/sink"
)

var errNoBlocks = errors.New("no blocks specified")

func main() {
	os.Exit(cli.Execute(newRootCmd(), os.Args[1:]))
}

type options struct {
	common   cli.Common
	blocks   string
	endpoint string
	i2c      bool
	planPath string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := cli.NewRoot("i3cblocks", "Run a block session on an I2C/I3C endpoint", &opts.common)
	cmd.Flags().StringVarP(&opts.blocks, "blocks", "b", "", "blocks joined with '+': r:length[:file] or w:data|file")
	cmd.Flags().StringVarP(&opts.endpoint, "endpoint", "e", "0", "endpoint address, 0..0x7f")
	cmd.Flags().BoolVarP(&opts.i2c, "i2c", "2", false, "the endpoint is an I2C device")
	cmd.Flags().StringVar(&opts.planPath, "plan", "", "YAML plan with a blocks section")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if opts.planPath != "" {
			if err := opts.applyPlan(cmd); err != nil {
				return err
			}
		}
		if opts.blocks == "" {
			return errNoBlocks
		}

		endpoint, err := util.ParseUint[uint8](opts.endpoint, directive.MaxAddress)
		if err != nil {
			return fmt.Errorf("endpoint must be 0...0x7f: %w", err)
		}

		return opts.run(cmd, endpoint)
	}

	return cmd
}

func (o *options) applyPlan(cmd *cobra.Command) error {
	plan, err := config.Load(o.planPath)
	if err != nil {
		return err
	}
	if err := config.Validate(plan); err != nil {
		return err
	}
	if plan.Blocks == nil {
		return fmt.Errorf("%w: %s has no blocks section", config.ErrInvalidPlan, o.planPath)
	}

	flags := cmd.Flags()
	if !flags.Changed("device") && plan.Device != "" {
		o.common.Device = plan.Device
	}
	if !flags.Changed("log-level") && plan.LogLevel != "" {
		o.common.LogLevel = plan.LogLevel
	}
	if !flags.Changed("blocks") {
		o.blocks = plan.BlockDirective()
	}
	if !flags.Changed("endpoint") {
		o.endpoint = fmt.Sprintf("0x%02x", plan.Blocks.Endpoint)
	}
	if !flags.Changed("i2c") {
		o.i2c = plan.Blocks.I2C
	}

	return nil
}

func (o *options) run(cmd *cobra.Command, endpoint uint8) error {
	l, err := o.common.Logger()
	if err != nil {
		return err
	}

	dev, err := o.common.OpenDevice(l)
	if err != nil {
		return err
	}
	defer cli.CloseDevice(dev, l)

	s, err := sink.New(sink.WithStdout(cmd.OutOrStdout()), sink.WithFormat(sink.FormatHex), sink.WithLogger(l))
	if err != nil {
		return err
	}

	ctrl, err := blocks.NewController(dev,
		blocks.WithEndpoint(endpoint),
		blocks.WithI2C(o.i2c),
		blocks.WithSink(s),
		blocks.WithLogger(l),
		blocks.WithStateHandler(func(prev, next blocks.State) {
			l.Debug("block session", "prev_state", prev, "state", next)
		}),
	)
	if err != nil {
		return err
	}

	return ctrl.Run(o.blocks)
}
