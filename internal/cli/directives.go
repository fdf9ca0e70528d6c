package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/arloliu/go-i3c/directive"
)

// DirectiveList collects repeatable directive flags in command line order.
//
// Once the group flag is seen, subsequent read and write directives are
// grouped with their predecessor.
type DirectiveList struct {
	items []directive.Directive
	group bool
}

// Items returns the collected directives.
func (l *DirectiveList) Items() []directive.Directive { return l.items }

// Len returns the number of collected directives.
func (l *DirectiveList) Len() int { return len(l.items) }

// AddFlags registers -r/--read, -w/--write, -c/--ccc, --combo and -g/--group on fs.
func (l *DirectiveList) AddFlags(fs *pflag.FlagSet) {
	fs.VarP(&directiveValue{list: l, variant: directive.VariantRead}, "read", "r",
		"read directive [type:]address:length[:file]")
	fs.VarP(&directiveValue{list: l, variant: directive.VariantWrite}, "write", "w",
		"write directive [type:]address:data|file")
	fs.VarP(&directiveValue{list: l, variant: directive.VariantCCC}, "ccc", "c",
		"CCC directive command:r|w:[address]:length[:file]|data|file")
	fs.Var(&directiveValue{list: l, variant: directive.VariantCombo}, "combo",
		"combo directive [address:]offset:r|w:length[:file]|data|file")

	f := fs.VarPF(&groupValue{list: l}, "group", "g", "group the following read and write directives with repeated starts")
	f.NoOptDefVal = "true"
}

type directiveValue struct {
	list    *DirectiveList
	variant directive.Variant
}

func (v *directiveValue) String() string {
	if v == nil || v.list == nil {
		return ""
	}

	var texts []string
	for _, d := range v.list.items {
		if d.Variant == v.variant {
			texts = append(texts, d.Text)
		}
	}

	return "[" + strings.Join(texts, ",") + "]"
}

func (v *directiveValue) Set(s string) error {
	v.list.items = append(v.list.items, directive.Directive{
		Variant: v.variant,
		Text:    s,
		Group:   v.list.group && (v.variant == directive.VariantRead || v.variant == directive.VariantWrite),
	})

	return nil
}

func (v *directiveValue) Type() string { return v.variant.String() }

type groupValue struct {
	list *DirectiveList
}

func (v *groupValue) String() string {
	if v == nil || v.list == nil {
		return "false"
	}

	return strconv.FormatBool(v.list.group)
}

func (v *groupValue) Set(s string) error {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	v.list.group = b

	return nil
}

func (v *groupValue) Type() string { return "bool" }
