package directive

// field is one positional token of a directive.
type field struct {
	text  string
	pos   int // byte offset of text in the input
	index int // zero-based field index
}

// tokenizer splits a directive on a single separator byte.
//
// Unlike strtok it keeps empty fields, so a leading separator yields an empty
// first field, and it can be rewound with reset.
type tokenizer struct {
	input string
	sep   byte
	pos   int
	index int
	done  bool
}

func newTokenizer(input string, sep byte) *tokenizer {
	return &tokenizer{input: input, sep: sep}
}

// next returns the next field and advances. ok is false once the input is exhausted.
func (t *tokenizer) next() (f field, ok bool) {
	if t.done {
		return field{pos: len(t.input), index: t.index}, false
	}

	start := t.pos
	end := start
	for end < len(t.input) && t.input[end] != t.sep {
		end++
	}

	f = field{text: t.input[start:end], pos: start, index: t.index}
	t.index++
	if end >= len(t.input) {
		t.done = true
		t.pos = len(t.input)
	} else {
		t.pos = end + 1
	}

	return f, true
}

// peek returns the next field without advancing.
func (t *tokenizer) peek() (field, bool) {
	saved := *t
	f, ok := t.next()
	*t = saved

	return f, ok
}

// rest returns everything after the current position as a single field,
// separators included, and exhausts the tokenizer.
func (t *tokenizer) rest() (field, bool) {
	if t.done {
		return field{pos: len(t.input), index: t.index}, false
	}

	f := field{text: t.input[t.pos:], pos: t.pos, index: t.index}
	t.index++
	t.pos = len(t.input)
	t.done = true

	return f, true
}

// remaining counts the fields left, including empty ones.
func (t *tokenizer) remaining() int {
	saved := *t
	n := 0
	for {
		if _, ok := t.next(); !ok {
			break
		}
		n++
	}
	*t = saved

	return n
}

// reset rewinds to the first field.
func (t *tokenizer) reset() {
	t.pos = 0
	t.index = 0
	t.done = false
}
