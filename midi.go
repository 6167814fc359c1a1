package main

import (
	"errors"
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// -------------------- Message parsing --------------------

// messageKind is the high nibble of a MIDI voice-message status byte.
//
//	Voice Message           Status    Data 1              Data 2
//	Note off                  8x      key number          release velocity
//	Note on                   9x      key number          velocity
//	Polyphonic key pressure   Ax      key number          pressure
//	Control change            Bx      controller number   value
//	Program change            Cx      program number      —
//	Channel pressure          Dx      pressure            —
//	Pitch bend                Ex      LSB                 MSB
type messageKind uint8

const (
	noteOff            messageKind = 0x8
	noteOn             messageKind = 0x9
	polyphonicPressure messageKind = 0xA
	controlChange      messageKind = 0xB
	programChange      messageKind = 0xC
	channelPressure    messageKind = 0xD
	pitchBend          messageKind = 0xE
)

var (
	errTruncated   = errors.New("midi message shorter than 3 bytes")
	errUnknownKind = errors.New("unknown midi status nibble")
)

// messageKindFrom converts a status high nibble into a messageKind.
// Nibbles outside 0x8–0xE (system messages, running-status garbage) are
// rejected rather than defaulted.
func messageKindFrom(nibble uint8) (messageKind, error) {
	switch k := messageKind(nibble); k {
	case noteOff, noteOn, polyphonicPressure, controlChange,
		programChange, channelPressure, pitchBend:
		return k, nil
	}
	return 0, fmt.Errorf("%w: %#x", errUnknownKind, nibble)
}

// noteEvent is one parsed 3-byte MIDI voice message.
type noteEvent struct {
	kind     messageKind
	channel  uint8 // informational only; all channels squish together
	note     uint8
	velocity uint8
}

func parseNoteEvent(raw []byte) (noteEvent, error) {
	if len(raw) < 3 {
		return noteEvent{}, fmt.Errorf("%w: got %d", errTruncated, len(raw))
	}
	kind, err := messageKindFrom(raw[0] >> 4)
	if err != nil {
		return noteEvent{}, err
	}
	return noteEvent{
		kind:     kind,
		channel:  raw[0] & 0x0F,
		note:     raw[1],
		velocity: raw[2],
	}, nil
}

func (e noteEvent) isPress() bool {
	return e.kind == noteOn && e.velocity != 0
}

// A note-on with velocity 0 means note-off, per the MIDI spec.
func (e noteEvent) isRelease() bool {
	return e.kind == noteOff || (e.kind == noteOn && e.velocity == 0)
}

// -------------------- Held-note tracking --------------------

// applyNoteEvent parses raw and returns a fresh held-note slice with the
// event applied. current is never mutated; first-seen order is preserved,
// and at most one entry exists per note number. Releasing a note that is
// not held is a no-op. Non-note messages leave membership unchanged.
func applyNoteEvent(current []noteEvent, raw []byte) ([]noteEvent, error) {
	ev, err := parseNoteEvent(raw)
	if err != nil {
		return nil, err
	}
	next := make([]noteEvent, len(current), len(current)+1)
	copy(next, current)
	switch {
	case ev.isPress():
		for _, held := range next {
			if held.note == ev.note {
				return next, nil // already held
			}
		}
		next = append(next, ev)
	case ev.isRelease():
		kept := next[:0]
		for _, held := range next {
			if held.note != ev.note {
				kept = append(kept, held)
			}
		}
		next = kept
	}
	return next, nil
}

// -------------------- Listener --------------------

// selectInputPort applies the port-selection policy: zero ports is a
// startup failure, a single port is auto-selected, and anything more
// requires an explicit index.
func selectInputPort(ins []drivers.In, index int) (drivers.In, error) {
	switch len(ins) {
	case 0:
		return nil, errors.New("no MIDI input ports found")
	case 1:
		logger.Info("midi: choosing the only available input port", "port", ins[0].String())
		return ins[0], nil
	}
	if index < 0 || index >= len(ins) {
		for i, in := range ins {
			logger.Info("midi: available input port", "index", i, "port", in.String())
		}
		return nil, fmt.Errorf("%d MIDI input ports available, select one with -port", len(ins))
	}
	return ins[index], nil
}

// startMIDI opens the selected input port and publishes a fresh held-note
// snapshot for every note event. The tracker state is private to the
// listener; the mutex covers only the clone-in/store-out around each
// callback, never the publish. The returned stop function is never called
// in normal operation — the listener runs until process exit.
func startMIDI(drv *rtmididrv.Driver, portIndex int, snapshots chan []noteEvent) (func(), error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("list MIDI inputs: %w", err)
	}
	in, err := selectInputPort(ins, portIndex)
	if err != nil {
		return nil, err
	}
	if err := in.Open(); err != nil {
		return nil, fmt.Errorf("open %q: %w", in.String(), err)
	}
	logger.Info("midi: connected", "port", in.String())

	var mu sync.Mutex
	var held []noteEvent

	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		mu.Lock()
		next, err := applyNoteEvent(held, []byte(msg))
		if err != nil {
			mu.Unlock()
			logger.Warn("midi: discarding unparseable message",
				"bytes", fmt.Sprintf("% 02X", []byte(msg)), "err", err)
			return
		}
		held = next
		snapshot := make([]noteEvent, len(next))
		copy(snapshot, next)
		mu.Unlock()

		// Publish twice so a consumer that polls once per tick cannot
		// miss the update entirely.
		sendLossy(snapshots, snapshot)
		sendLossy(snapshots, snapshot)
	}, midi.HandleError(func(listenErr error) {
		logger.Warn("midi: listener error", "port", in.String(), "err", listenErr)
	}))
	if err != nil {
		_ = in.Close()
		return nil, fmt.Errorf("listen %q: %w", in.String(), err)
	}
	return stop, nil
}
