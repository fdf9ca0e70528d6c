// Command i3ctransfer runs I2C and I3C transfers on an i3c tools device as one
// batch, in command line order.
//
//	i3ctransfer -d /dev/i3c-tools-0 -w i2c:0x50:0x10 -g -r i2c:0x50:16
//	i3ctransfer -d sim: --plan plan.yaml
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-i3c/config"
	"github.com/arloliu/go-i3c/directive"
	"github.com/arloliu/go-i3c/internal/cli"
	"github.com/arloliu/go-i3c/sink"
	"github.com/arloliu/go-i3c/transfer"
)

var errNoTransfers = errors.New("no transfers specified")

func main() {
	os.Exit(cli.Execute(newRootCmd(), os.Args[1:]))
}

func newRootCmd() *cobra.Command {
	var (
		common   cli.Common
		list     cli.DirectiveList
		planPath string
		format   string
	)

	cmd := cli.NewRoot("i3ctransfer", "Run I2C/I3C transfers as one batch", &common)
	list.AddFlags(cmd.Flags())
	cmd.Flags().StringVar(&planPath, "plan", "", "YAML transfer plan; its transfers run before the command line directives")
	cmd.Flags().StringVar(&format, "format", sink.FormatList.String(), "read data format: list|hex|inline")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		ds := list.Items()
		if planPath != "" {
			plan, err := loadPlan(planPath)
			if err != nil {
				return err
			}
			ds = append(plan.Directives(), ds...)
			applyPlan(cmd, &common, plan)
		}
		if len(ds) == 0 {
			return errNoTransfers
		}

		f, err := sink.ParseFormat(format)
		if err != nil {
			return err
		}

		return run(cmd, &common, ds, f)
	}

	return cmd
}

func loadPlan(path string) (*config.Plan, error) {
	plan, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(plan); err != nil {
		return nil, err
	}
	if plan.Blocks != nil {
		return nil, fmt.Errorf("%w: %s describes a block session, run it with i3cblocks", config.ErrInvalidPlan, path)
	}

	return plan, nil
}

// applyPlan fills the device and log level from the plan unless given on the command line.
func applyPlan(cmd *cobra.Command, common *cli.Common, plan *config.Plan) {
	if !cmd.Flags().Changed("device") && plan.Device != "" {
		common.Device = plan.Device
	}
	if !cmd.Flags().Changed("log-level") && plan.LogLevel != "" {
		common.LogLevel = plan.LogLevel
	}
}

func run(cmd *cobra.Command, common *cli.Common, ds []directive.Directive, f sink.Format) error {
	l, err := common.Logger()
	if err != nil {
		return err
	}

	dev, err := common.OpenDevice(l)
	if err != nil {
		return err
	}
	defer cli.CloseDevice(dev, l)

	s, err := sink.New(sink.WithStdout(cmd.OutOrStdout()), sink.WithFormat(f), sink.WithLogger(l))
	if err != nil {
		return err
	}

	r, err := transfer.NewRunner(dev, transfer.WithSink(s), transfer.WithLogger(l))
	if err != nil {
		return err
	}

	return r.Run(ds)
}
