package pool

import "sync"

var recordBufPool sync.Pool

// GetBuffer returns a zeroed byte slice of length n from the pool.
//
// Return the slice to the pool with PutBuffer.
func GetBuffer(n int) []byte {
	if v := recordBufPool.Get(); v != nil {
		buf, _ := v.(*[]byte) // only *[]byte is ever put into the pool
		if cap(*buf) >= n {
			b := (*buf)[:n]
			clear(b)
			return b
		}
	}

	return make([]byte, n)
}

// PutBuffer returns buf to the pool.
//
// buf cannot be accessed after returning to the pool.
func PutBuffer(buf []byte) {
	if cap(buf) == 0 {
		return
	}
	clear(buf[:cap(buf)])
	recordBufPool.Put(&buf)
}
