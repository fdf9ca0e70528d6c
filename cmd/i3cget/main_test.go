package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/go-i3c/directive"
	"github.com/arloliu/go-i3c/internal/cli"
)

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	code := cli.Execute(cmd, args)

	return code, out.String(), errOut.String()
}

func TestGet_Simulator(t *testing.T) {
	require := require.New(t)

	code, out, errOut := execute(t, "-d", "sim:", "-e", "0x50", "-2", "-o", "0x100", "-l", "4")
	require.Equal(0, code, errOut)
	require.Equal("received data: 0x00 0x00 0x00 0x00 \n", out)

	code, out, errOut = execute(t, "-d", "sim:")
	require.Equal(0, code, errOut)
	require.Equal("received data: \n", out)
}

func TestOptions_Intent(t *testing.T) {
	require := require.New(t)

	o := options{endpoint: "0x50", length: "16", offset: "0x1234", i2c: true}
	combo, err := o.intent()
	require.NoError(err)
	require.NoError(combo.Validate())
	require.Equal(directive.I2C, combo.Bus)
	require.Equal(directive.Read, combo.Dir)
	require.Equal(uint8(0x50), combo.Addr)
	require.Equal(16, combo.Length)
	require.Equal(uint16(0x1234), combo.Offset)
	require.Equal("0x50:0x1234:r:16", combo.Text)

	o.i2c = false
	combo, err = o.intent()
	require.NoError(err)
	require.Equal(directive.I3C, combo.Bus)
}

func TestGet_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{name: "no device", args: nil, msg: "no device specified"},
		{name: "endpoint", args: []string{"-d", "sim:", "-e", "0x80"}, msg: "endpoint must be 0...0x7f"},
		{name: "length", args: []string{"-d", "sim:", "-l", "0x10000"}, msg: "length must be 0...0xffff"},
		{name: "offset", args: []string{"-d", "sim:", "-o", "65536"}, msg: "offset must be 0...0xffff"},
		{name: "not a number", args: []string{"-d", "sim:", "-l", "many"}, msg: "length must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			code, out, errOut := execute(t, tt.args...)
			require.Equal(1, code)
			require.Empty(out)
			require.Contains(errOut, tt.msg)
		})
	}
}
