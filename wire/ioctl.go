package wire

import (
	"errors"
	"fmt"
)

// ioctl number layout of the generic Linux _IOC macro
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2
)

const (
	// IocMagic is the ioctl type of the i3c tools interface.
	IocMagic = 0x07
	// IocNR is the ioctl number of a batched transfer.
	IocNR = 30

	// MaxBatchBytes is the largest encoded batch the size field can carry.
	MaxBatchBytes = 1<<iocSizeBits - 1
	// MaxRecords is the largest number of records in one submission.
	MaxRecords = MaxBatchBytes / RecordSize
)

var (
	// ErrCapacityExceeded indicates a batch whose encoded size does not fit the ioctl size field.
	ErrCapacityExceeded = errors.New("batch exceeds ioctl size capacity")

	// ErrEmptyBatch indicates a submission without records.
	ErrEmptyBatch = errors.New("empty batch")
)

// CheckCapacity verifies that n records can be submitted in one call.
func CheckCapacity(n int) error {
	if n <= 0 {
		return ErrEmptyBatch
	}
	if n > MaxRecords {
		return fmt.Errorf("%w: %d records need %d bytes, the limit is %d", ErrCapacityExceeded, n, n*RecordSize, MaxBatchBytes)
	}

	return nil
}

// RequestCode returns the ioctl request for a batch of n records.
func RequestCode(n int) (uint, error) {
	if err := CheckCapacity(n); err != nil {
		return 0, err
	}

	size := uint(n * RecordSize) //nolint:gosec // bounded by CheckCapacity

	return (iocRead|iocWrite)<<iocDirShift | size<<iocSizeShift | IocMagic<<iocTypeShift | IocNR<<iocNRShift, nil
}
