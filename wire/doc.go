// Package wire encodes transfer intents into the fixed-layout records exchanged
// with the i3c tools character device.
//
// A record is the native-endian image of the driver's C structure:
//
//	offset size field
//	0      4    type      (RecordType)
//	8      8    data      (user-space buffer address)
//	16     2    len
//	18     1    addr
//	20     2    offset
//	22     1    combo
//	23     1    i2cni3c
//	24     1    rnw
//	25     1    ccc
//	26     1    tocwa
//
// for a total of RecordSize bytes including padding. A batch of N records is
// submitted with one ioctl whose request code carries N*RecordSize in its
// 14-bit size field, so at most MaxRecords records fit one submission.
package wire
