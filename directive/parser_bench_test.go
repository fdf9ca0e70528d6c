package directive

import (
	"strconv"
	"strings"
	"testing"
)

func BenchmarkParseRead(b *testing.B) {
	p, _ := NewParser(WithFileProbe(func(string) bool { return false }))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.ParseRead("i2c:0x50:16"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkParseWrite_Small(b *testing.B) {
	benchParseWrite(b, genInline(4))
}

func BenchmarkParseWrite_Large(b *testing.B) {
	benchParseWrite(b, genInline(MaxInlineValues))
}

func BenchmarkSplitBlocks(b *testing.B) {
	p, _ := NewParser()
	blocks := strings.Repeat("r:16+w:1,2,3+", 32) + "r:4"

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.SplitBlocks(blocks); err != nil {
			b.Fatal(err)
		}
	}
}

func benchParseWrite(b *testing.B, data string) {
	p, _ := NewParser(WithFileProbe(func(string) bool { return false }))
	s := "i2c:0x50:" + data

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := p.ParseWrite(s); err != nil {
			b.Fatal(err)
		}
	}
}

func genInline(n int) string {
	vals := make([]string, n)
	for i := range vals {
		vals[i] = "0x" + strconv.FormatInt(int64(i&0xff), 16)
	}

	return strings.Join(vals, ",")
}
