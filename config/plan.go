package config

import (
	"errors"
	"strings"

	"github.com/arloliu/go-i3c/directive"
)

func (t TransferConfig) directive() (directive.Variant, string, error) {
	var (
		v     directive.Variant
		text  string
		count int
	)
	for _, c := range []struct {
		v    directive.Variant
		text string
	}{
		{directive.VariantRead, t.Read},
		{directive.VariantWrite, t.Write},
		{directive.VariantCCC, t.CCC},
		{directive.VariantCombo, t.Combo},
	} {
		if c.text != "" {
			v, text = c.v, c.text
			count++
		}
	}

	switch count {
	case 0:
		return 0, "", errors.New("one of read, write, ccc or combo is required")
	case 1:
		return v, text, nil
	default:
		return 0, "", errors.New("only one of read, write, ccc or combo may be set")
	}
}

// Directives returns the plan's transfers in order. The plan must be valid.
func (p *Plan) Directives() []directive.Directive {
	ds := make([]directive.Directive, 0, len(p.Transfer))
	for _, t := range p.Transfer {
		v, text, err := t.directive()
		if err != nil {
			continue
		}
		ds = append(ds, directive.Directive{Variant: v, Text: text, Group: t.Group})
	}

	return ds
}

// BlockDirective returns the plan's blocks joined into one block directive.
func (p *Plan) BlockDirective() string {
	if p.Blocks == nil {
		return ""
	}

	return strings.Join(p.Blocks.Directives, directive.BlockSeparator)
}
