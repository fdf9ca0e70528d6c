// Package directive parses the compact textual transfer directives accepted by the
// i3c tools into typed transfer intents.
//
// # Grammars
//
// Fields are colon separated and positional:
//
//	read:   [i2c|i3c:]address:length[:file]
//	write:  [i2c|i3c:]address:data|file
//	ccc:    command:r|w:[address]:length[:file]|data|file
//	combo:  [address:]offset:r|w:length[:file]|data|file
//	block:  r:length[:file] | w:data|file, joined with '+'
//
// Numeric fields accept C-style literals (decimal, 0x hex, leading-zero octal).
// Data is either a comma separated literal list ("1,2,0xff") or the path of a
// readable file whose raw bytes become the payload. An explicit type token or a
// present address selects an I2C endpoint; an elided address (leading colon or a
// missing first field) selects an I3C endpoint addressed by the driver.
//
// Every failure is reported as a *SyntaxError that matches ErrMalformedDirective
// and names the offending field and its column.
package directive
