package main

import (
	"errors"
	"time"
)

const (
	frameChanCap    = 64
	snapshotChanCap = 16
)

// sendLossy queues v without ever blocking: when the channel is full, the
// oldest queued element is dropped to make room. Losing a stale frame
// beats stalling a relay loop.
func sendLossy[T any](ch chan T, v T) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// drainLatest empties the channel and returns the most recent value, or
// ok=false when nothing was queued.
func drainLatest[T any](ch chan T) (T, bool) {
	var v T
	ok := false
	for {
		select {
		case latest := <-ch:
			v, ok = latest, true
		default:
			return v, ok
		}
	}
}

// controllerLoop bridges the physical controller device. Each tick it
// services at most one outbound frame from the gadget loop, then forwards
// at most one frame read from the controller toward the gadget loop.
// Runs until process exit.
func controllerLoop(dev *DeviceFile, toController chan []byte, toGadget chan []byte, tick time.Duration) {
	logger.Info("controller: loop started", "device", dev.path, "tick", tick)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for range ticker.C {
		select {
		case frame := <-toController:
			logger.Debug("controller: writing frame", "len", len(frame))
			if err := dev.Write(frame); err != nil {
				logger.Error("controller: write failed", "err", err)
			}
		default:
		}

		frame, err := dev.ReadFrame()
		switch {
		case err == nil:
			sendLossy(toGadget, frame)
		case errors.Is(err, errWouldBlock):
			// nothing pending this tick
		default:
			logger.Error("controller: read failed", "err", err)
		}
	}
}

// gadgetLoop bridges the gadget endpoint. Frames arriving from the
// controller are forwarded to the gadget; input reports (tag 0x30) first
// get the held-note button region injected, using the newest snapshot if
// any is queued. Reads from the gadget (host-originated commands) are
// forwarded back toward the controller untouched. Runs until process
// exit.
func gadgetLoop(dev *DeviceFile, toController chan []byte, toGadget chan []byte, snapshots chan []noteEvent, m Mapper, tick time.Duration) {
	logger.Info("gadget: loop started", "device", dev.path, "tick", tick)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for range ticker.C {
		select {
		case frame := <-toGadget:
			if len(frame) > 0 && frame[0] == inputReportTag {
				if held, ok := drainLatest(snapshots); ok {
					mergeReport(frame, held, m)
					logger.Debug("gadget: injected held notes", "notes", len(held))
				}
			}
			if err := dev.Write(frame); err != nil {
				logger.Error("gadget: write failed", "err", err)
			}
		default:
		}

		frame, err := dev.ReadFrame()
		switch {
		case err == nil:
			logger.Debug("gadget: forwarding host frame", "len", len(frame))
			sendLossy(toController, frame)
		case errors.Is(err, errWouldBlock):
			// nothing pending this tick
		default:
			logger.Error("gadget: read failed", "err", err)
		}
	}
}
