package main

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// frameSize is the fixed read size for both hid endpoints; a full input
// report is always delivered in a single 64-byte read.
const frameSize = 64

// errWouldBlock reports that the device had no frame pending. Expected
// steady-state on a non-blocking handle; never logged as a failure.
var errWouldBlock = errors.New("device: no data available")

// DeviceFile is an exclusively-owned handle on a character device,
// read and written as an opaque byte stream. Each relay loop owns
// exactly one; handles are never shared.
type DeviceFile struct {
	fd   int
	path string
}

// OpenDevice opens the device read-write. With nonBlock set, reads return
// errWouldBlock instead of waiting for a frame.
func OpenDevice(path string, nonBlock bool) (*DeviceFile, error) {
	flags := unix.O_RDWR
	if nonBlock {
		flags |= unix.O_NONBLOCK
	}
	fd, err := unix.Open(path, flags, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	logger.Info("device: opened", "path", path, "non_block", nonBlock)
	return &DeviceFile{fd: fd, path: path}, nil
}

// ReadFrame returns the next frame from the device, or errWouldBlock when
// nothing is pending.
func (d *DeviceFile) ReadFrame() ([]byte, error) {
	buf := make([]byte, frameSize)
	n, err := unix.Read(d.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, errWouldBlock
		}
		return nil, fmt.Errorf("read %s: %w", d.path, err)
	}
	if n == 0 {
		return nil, errWouldBlock
	}
	return buf[:n], nil
}

// Write sends data to the device.
func (d *DeviceFile) Write(data []byte) error {
	if _, err := unix.Write(d.fd, data); err != nil {
		return fmt.Errorf("write %s: %w", d.path, err)
	}
	return nil
}

// Close releases the handle.
func (d *DeviceFile) Close() error {
	return unix.Close(d.fd)
}
