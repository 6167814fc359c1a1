package main

import "fmt"

// Input report layout (standard 0x30 full-state report):
//
//	byte 0      0x30 tag
//	byte 1      timestamp
//	byte 2      connection info | battery level
//	byte 3      ZR  R  SR SL A      B      X  Y
//	byte 4      Grip -  Cap Home    ThumbL ThumbR + -
//	byte 5      ZL  L  SL SR Left   Right  Up Down
//	bytes 6..   analog stick data
//
// Only bytes 3–5 are ever generated here; they get injected into reports
// already flowing from the physical controller.
const (
	inputReportTag  = 0x30
	buttonRegionOff = 3
	buttonRegionLen = 3
)

// defaultFragment is the no-buttons-pressed region. The 0x80 in the
// middle byte is the grip bit, which the stock controller keeps set.
var defaultFragment = [buttonRegionLen]byte{0x00, 0x80, 0x00}

// buttonByteIndex places each button in its byte of the region.
var buttonByteIndex = map[Button]int{
	ButtonY: 0, ButtonX: 0, ButtonB: 0, ButtonA: 0, ButtonR: 0, ButtonZR: 0,

	ButtonMinus: 1, ButtonPlus: 1, ButtonRightStick: 1,
	ButtonLeftStick: 1, ButtonHome: 1, ButtonCapture: 1,

	ButtonDpadDown: 2, ButtonDpadUp: 2, ButtonDpadRight: 2,
	ButtonDpadLeft: 2, ButtonL: 2, ButtonZL: 2,
}

// buttonBitOffset is each button's bit position within its byte.
var buttonBitOffset = map[Button]uint8{
	ButtonY: 0, ButtonX: 1, ButtonB: 2, ButtonA: 3, ButtonR: 6, ButtonZR: 7,

	ButtonMinus: 0, ButtonPlus: 1, ButtonRightStick: 2,
	ButtonLeftStick: 3, ButtonHome: 4, ButtonCapture: 5,

	ButtonDpadDown: 0, ButtonDpadUp: 1, ButtonDpadRight: 2,
	ButtonDpadLeft: 3, ButtonL: 6, ButtonZL: 7,
}

// encodeReport packs the pressed buttons into a fresh 3-byte button
// region. Encoding only ever sets bits, so it is idempotent and the
// encoding of a union equals the OR of the individual encodings.
func encodeReport(buttons []Button) [buttonRegionLen]byte {
	frag := defaultFragment
	for _, b := range buttons {
		idx, okIdx := buttonByteIndex[b]
		off, okOff := buttonBitOffset[b]
		if !okIdx || !okOff {
			// Every Button constant has entries in both tables; a miss
			// means the enum and the layout tables drifted apart.
			panic(fmt.Sprintf("report: button %v missing from layout tables", b))
		}
		frag[idx] |= 1 << off
	}
	return frag
}

// mergeReport overwrites the button region of an input report with the
// union encoding of every held note's buttons. Frames that are not input
// reports, or too short to carry a button region, pass through untouched.
func mergeReport(frame []byte, held []noteEvent, m Mapper) {
	if len(frame) < buttonRegionOff+buttonRegionLen || frame[0] != inputReportTag {
		return
	}
	var buttons []Button
	for _, ev := range held {
		buttons = append(buttons, m.Map(ev)...)
	}
	frag := encodeReport(buttons)
	copy(frame[buttonRegionOff:buttonRegionOff+buttonRegionLen], frag[:])
}
