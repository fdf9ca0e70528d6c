package config

import (
	"fmt"

	"github.com/arloliu/go-i3c/directive"
	"github.com/arloliu/go-i3c/logger"
)

// Validate checks plan correctness without parsing directive text; malformed
// directives are reported when the plan is run.
// It does not mutate the plan.
func Validate(plan *Plan) error {
	if plan == nil {
		return fmt.Errorf("%w: no plan", ErrInvalidPlan)
	}

	if plan.LogLevel != "" {
		if _, err := logger.ParseLevel(plan.LogLevel); err != nil {
			return fmt.Errorf("%w: log_level: %w", ErrInvalidPlan, err)
		}
	}

	hasTransfers := len(plan.Transfer) > 0
	hasBlocks := plan.Blocks != nil
	switch {
	case hasTransfers && hasBlocks:
		return fmt.Errorf("%w: transfers and blocks are mutually exclusive", ErrInvalidPlan)
	case !hasTransfers && !hasBlocks:
		return fmt.Errorf("%w: either transfers or blocks is required", ErrInvalidPlan)
	}

	for i, t := range plan.Transfer {
		v, _, err := t.directive()
		if err != nil {
			return fmt.Errorf("%w: transfers[%d]: %w", ErrInvalidPlan, i, err)
		}
		if t.Group && v != directive.VariantRead && v != directive.VariantWrite {
			return fmt.Errorf("%w: transfers[%d]: group only applies to read and write", ErrInvalidPlan, i)
		}
	}

	if hasBlocks {
		if plan.Blocks.Endpoint > directive.MaxAddress {
			return fmt.Errorf("%w: blocks: endpoint 0x%x out of range 0..0x%x", ErrInvalidPlan, plan.Blocks.Endpoint, directive.MaxAddress)
		}
		if len(plan.Blocks.Directives) == 0 {
			return fmt.Errorf("%w: blocks: no directives", ErrInvalidPlan)
		}
		for i, d := range plan.Blocks.Directives {
			if d == "" {
				return fmt.Errorf("%w: blocks.directives[%d]: empty directive", ErrInvalidPlan, i)
			}
		}
	}

	return nil
}
