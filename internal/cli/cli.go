// Package cli holds the flags and plumbing shared by the command line tools.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-i3c/i3cdev"
	"github.com/arloliu/go-i3c/logger"
)

// Version is reported by every tool's --version flag.
const Version = "0.1"

// ErrNoDevice indicates a run without a device.
var ErrNoDevice = errors.New("no device specified")

// Common holds the flags every tool accepts.
type Common struct {
	Device   string
	LogLevel string
}

// NewRoot creates a tool's root command with the common flags registered.
func NewRoot(use, short string, common *Common) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} - {{.Version}}\n")

	cmd.Flags().StringVarP(&common.Device, "device", "d", "", "device node to use, or \"sim:\" for the simulator")
	cmd.Flags().StringVar(&common.LogLevel, "log-level", "warn", "log level: debug|info|warn|error")

	return cmd
}

// Logger applies the log level flag to the default logger and returns it.
func (c *Common) Logger() (logger.Logger, error) {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger.SetLevel(level)

	return logger.GetLogger(), nil
}

// OpenDevice opens the device named by the device flag.
func (c *Common) OpenDevice(l logger.Logger) (i3cdev.Device, error) {
	if c.Device == "" {
		return nil, ErrNoDevice
	}

	return i3cdev.OpenPath(c.Device, i3cdev.WithLogger(l))
}

// Execute runs cmd and returns the process exit status. Errors are printed
// to the command's error stream.
func Execute(cmd *cobra.Command, args []string) int {
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		PrintError(cmd.ErrOrStderr(), err)
		return 1
	}

	return 0
}

// PrintError reports err the way every tool does.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", err)
}

// CloseDevice closes dev, logging a failure instead of masking the run's result.
func CloseDevice(dev i3cdev.Device, l logger.Logger) {
	if err := dev.Close(); err != nil {
		l.Warn("failed to close device", "device", dev.String(), "error", err)
	}
}
