// Package config loads transfer plans: YAML files that describe a batch of
// transfers or a block session, as an alternative to command line directives.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPlan indicates a plan that cannot be loaded or fails validation.
var ErrInvalidPlan = errors.New("invalid transfer plan")

// Plan is a transfer plan file.
//
//	device: /dev/i3c-tools-0
//	log_level: info
//	transfers:
//	  - write: "i2c:0x50:0x10"
//	  - read: "i2c:0x50:2"
//	    group: true
type Plan struct {
	Device   string           `yaml:"device"`
	LogLevel string           `yaml:"log_level"`
	Transfer []TransferConfig `yaml:"transfers"`
	Blocks   *BlocksConfig    `yaml:"blocks"`
}

// TransferConfig is one directive of a batch. Exactly one of Read, Write, CCC
// and Combo is set.
type TransferConfig struct {
	Read  string `yaml:"read"`
	Write string `yaml:"write"`
	CCC   string `yaml:"ccc"`
	Combo string `yaml:"combo"`
	Group bool   `yaml:"group"`
}

// BlocksConfig is a block session.
type BlocksConfig struct {
	Endpoint   uint8    `yaml:"endpoint"`
	I2C        bool     `yaml:"i2c"`
	Directives []string `yaml:"directives"`
}

// Load reads and decodes the plan at path. It does not validate it.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	plan, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return plan, nil
}

// Parse decodes a plan. Unknown keys are rejected.
func Parse(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var plan Plan
	if err := dec.Decode(&plan); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty plan", ErrInvalidPlan)
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}

	return &plan, nil
}
