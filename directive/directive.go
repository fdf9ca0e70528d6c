package directive

import "fmt"

// Directive is an unparsed directive together with the grammar it is written in.
type Directive struct {
	Variant Variant
	Text    string
	// Group joins the transfer to its predecessor with a repeated start.
	// It applies to read and write transfers only.
	Group bool
}

func (d Directive) String() string {
	return d.Variant.String() + " " + d.Text
}

// ParseVariant returns the variant named s: "read", "write", "ccc" or "combo".
func ParseVariant(s string) (Variant, error) {
	for _, v := range []Variant{VariantRead, VariantWrite, VariantCCC, VariantCombo} {
		if v.String() == s {
			return v, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown directive variant %q", ErrMalformedDirective, s)
}

// ParseDirective parses d and carries its group flag into the intent.
func (p *Parser) ParseDirective(d Directive) (Intent, error) {
	in, err := p.Parse(d.Variant, d.Text)
	if err != nil {
		return nil, err
	}

	if d.Variant == VariantRead || d.Variant == VariantWrite {
		in.Common().Group = d.Group
	}

	return in, nil
}

// ParseAll parses directives in order and stops at the first malformed one.
func (p *Parser) ParseAll(ds []Directive) ([]Intent, error) {
	intents := make([]Intent, 0, len(ds))
	for i, d := range ds {
		in, err := p.ParseDirective(d)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		intents = append(intents, in)
	}

	return intents, nil
}
