package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempDevice(t *testing.T, contents []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dev")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("create temp device: %v", err)
	}
	return path
}

func TestOpenDevice(t *testing.T) {
	path := tempDevice(t, make([]byte, frameSize))
	for _, nonBlock := range []bool{false, true} {
		dev, err := OpenDevice(path, nonBlock)
		if err != nil {
			t.Fatalf("open nonBlock=%v: %v", nonBlock, err)
		}
		dev.Close()
	}
}

func TestOpenDeviceMissing(t *testing.T) {
	if _, err := OpenDevice(filepath.Join(t.TempDir(), "nope"), true); err == nil {
		t.Fatal("want error for missing device")
	}
}

func TestReadFrameReturnsFullFrame(t *testing.T) {
	initial := make([]byte, frameSize)
	for i := range initial {
		initial[i] = byte(i)
	}
	dev, err := OpenDevice(tempDevice(t, initial), false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dev.Close()

	frame, err := dev.ReadFrame()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(frame, initial) {
		t.Errorf("read %v, want %v", frame, initial)
	}
}

func TestReadFrameNoDataIsWouldBlock(t *testing.T) {
	dev, err := OpenDevice(tempDevice(t, nil), true)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dev.Close()

	if _, err := dev.ReadFrame(); !errors.Is(err, errWouldBlock) {
		t.Errorf("empty read: got %v, want errWouldBlock", err)
	}
}

func TestWriteReachesDevice(t *testing.T) {
	path := tempDevice(t, make([]byte, frameSize))
	dev, err := OpenDevice(path, false)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dev.Close()

	if err := dev.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(onDisk) < 3 || !bytes.Equal(onDisk[:3], []byte{1, 2, 3}) {
		t.Errorf("on-disk prefix %v, want [1 2 3]", onDisk[:3])
	}
}
