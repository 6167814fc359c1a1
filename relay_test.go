package main

import (
	"bytes"
	"testing"
)

func TestSendLossyNeverBlocks(t *testing.T) {
	ch := make(chan []byte, 2)
	for i := 0; i < 10; i++ {
		sendLossy(ch, []byte{byte(i)})
	}
	// The two newest frames must survive; older ones were dropped.
	first := <-ch
	second := <-ch
	if !bytes.Equal(first, []byte{8}) || !bytes.Equal(second, []byte{9}) {
		t.Errorf("kept frames %v, %v; want 8, 9", first, second)
	}
	select {
	case extra := <-ch:
		t.Errorf("unexpected extra frame %v", extra)
	default:
	}
}

func TestSendLossyPreservesFIFO(t *testing.T) {
	ch := make(chan []byte, 4)
	for i := 0; i < 3; i++ {
		sendLossy(ch, []byte{byte(i)})
	}
	for i := 0; i < 3; i++ {
		if got := <-ch; got[0] != byte(i) {
			t.Errorf("position %d: got %v", i, got)
		}
	}
}

func TestDrainLatestReturnsNewest(t *testing.T) {
	ch := make(chan []noteEvent, snapshotChanCap)
	for _, note := range []byte{0x30, 0x28, 0x51} {
		ch <- []noteEvent{{kind: noteOn, note: note, velocity: 0x40}}
	}
	got, ok := drainLatest(ch)
	if !ok {
		t.Fatal("drainLatest found nothing")
	}
	if len(got) != 1 || got[0].note != 0x51 {
		t.Errorf("got %+v, want newest snapshot (note 0x51)", got)
	}
	if len(ch) != 0 {
		t.Errorf("channel not drained, %d left", len(ch))
	}
}

func TestDrainLatestEmpty(t *testing.T) {
	ch := make(chan []noteEvent, 1)
	if _, ok := drainLatest(ch); ok {
		t.Error("drainLatest reported a value on an empty channel")
	}
}

// The listener publishes every snapshot twice; drain-to-latest must be
// unaffected by the duplication.
func TestDrainLatestWithDuplicateSends(t *testing.T) {
	ch := make(chan []noteEvent, snapshotChanCap)
	for _, note := range []byte{0x30, 0x28} {
		snapshot := []noteEvent{{kind: noteOn, note: note, velocity: 0x40}}
		sendLossy(ch, snapshot)
		sendLossy(ch, snapshot)
	}
	got, ok := drainLatest(ch)
	if !ok || got[0].note != 0x28 {
		t.Errorf("got %+v ok=%v, want note 0x28", got, ok)
	}
}
