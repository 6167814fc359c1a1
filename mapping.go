package main

import "fmt"

// Button identifies one controller button. The 18 buttons fall into three
// groups of six, one group per byte of the input report's button region.
type Button uint8

const (
	ButtonY Button = iota
	ButtonX
	ButtonB
	ButtonA
	ButtonR
	ButtonZR

	ButtonMinus
	ButtonPlus
	ButtonRightStick
	ButtonLeftStick
	ButtonHome
	ButtonCapture

	ButtonDpadDown
	ButtonDpadUp
	ButtonDpadRight
	ButtonDpadLeft
	ButtonL
	ButtonZL
)

var buttonNames = [...]string{
	"Y", "X", "B", "A", "R", "ZR",
	"Minus", "Plus", "RightStick", "LeftStick", "Home", "Capture",
	"DpadDown", "DpadUp", "DpadRight", "DpadLeft", "L", "ZL",
}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// Mapper translates a held note into the controller buttons it presses.
// Implementations are pure lookups; an empty result means the note is
// intentionally ignored.
type Mapper interface {
	Map(ev noteEvent) []Button
}

// -------------------- Direct (drum) mapping --------------------

// directMapper is the Taiko no Tatsujin layout for controller type 1:
// R and L are the rim, B and DpadDown the drum center.
type directMapper struct{}

// taikoNotes maps a drum-pad note to the buttons it presses. A rimshot is
// one MIDI note but needs two simultaneous buttons on the controller.
var taikoNotes = map[uint8][]Button{
	0x06: {ButtonDpadDown},          // center, one hand
	0x25: {ButtonB, ButtonDpadDown}, // center, two hands
	0x28: {ButtonB, ButtonDpadDown},
	0x30: {ButtonR},          // rim, one hand
	0x51: {ButtonR, ButtonL}, // rim, two hands
	0x52: {ButtonR, ButtonL},
}

func (directMapper) Map(ev noteEvent) []Button {
	buttons, ok := taikoNotes[ev.note]
	if !ok {
		logger.Debug("mapping: note has no button assignment", "note", pitchName(int(ev.note)))
		return nil
	}
	return buttons
}

// -------------------- Chromatic (pitch-class) mapping --------------------

// chromaticMapper folds any note onto one of twelve buttons by pitch
// class, so the same figure plays identically in every octave. All twelve
// residues are defined; the table spans face, shoulder and dpad groups.
type chromaticMapper struct{}

var pitchClassButtons = [12]Button{
	ButtonB,         // C
	ButtonA,         // C#
	ButtonX,         // D
	ButtonY,         // D#
	ButtonL,         // E
	ButtonR,         // F
	ButtonZL,        // F#
	ButtonZR,        // G
	ButtonDpadUp,    // G#
	ButtonDpadDown,  // A
	ButtonDpadLeft,  // A#
	ButtonDpadRight, // B
}

func (chromaticMapper) Map(ev noteEvent) []Button {
	return []Button{pitchClassButtons[ev.note%12]}
}

// mapperByName resolves the -mapping flag.
func mapperByName(name string) (Mapper, error) {
	switch name {
	case "direct":
		return directMapper{}, nil
	case "chromatic":
		return chromaticMapper{}, nil
	}
	return nil, fmt.Errorf("unknown mapping strategy %q (want direct or chromatic)", name)
}
