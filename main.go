package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// -------------------- Logger --------------------

// logger is the package-wide structured logger. Safe to use before
// initLogger is called; defaults to slog.Default().
var logger = slog.Default()

// initLogger configures the shared slog logger and calls slog.SetDefault
// so the stdlib log package also routes through the same handler.
func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug, // include file:line in debug mode
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

// -------------------- Pitch helpers --------------------

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func pitchName(pitch int) string {
	if pitch < 0 {
		return fmt.Sprintf("?\"%d\"", pitch)
	}
	return fmt.Sprintf("%s%d", noteNames[pitch%12], (pitch/12)-1)
}

// -------------------- Main --------------------

func main() {
	debug := flag.Bool("debug", false, "enable debug logging (adds source location)")
	port := flag.Int("port", -1, "MIDI input port index (required when several ports are present)")
	controllerDev := flag.String("controller", "/dev/hidraw0", "physical controller device")
	gadgetDev := flag.String("gadget", "/dev/hidg0", "USB gadget device")
	udc := flag.String("udc", "/sys/kernel/config/usb_gadget/procon/UDC",
		"gadget UDC config file (empty skips the startup rebind)")
	mapping := flag.String("mapping", "direct", "note mapping strategy: direct or chromatic")
	tick := flag.Duration("tick", 5*time.Millisecond, "relay loop tick period")
	flag.Parse()

	initLogger(*debug)
	logger.Info("midi-switch-bridge starting",
		"controller", *controllerDev,
		"gadget", *gadgetDev,
		"mapping", *mapping,
		"tick", *tick,
		"debug", *debug,
	)

	mapper, err := mapperByName(*mapping)
	if err != nil {
		logger.Error("invalid mapping strategy", "err", err)
		os.Exit(1)
	}

	// Rebind before anything else: the host only replays the controller
	// init packets after re-enumeration, and the gadget loop must be the
	// one to see them.
	if *udc != "" {
		if err := rebindGadget(*udc); err != nil {
			logger.Error("gadget rebind failed", "err", err)
			os.Exit(1)
		}
	}

	controller, err := OpenDevice(*controllerDev, true)
	if err != nil {
		logger.Error("controller device open failed", "err", err)
		os.Exit(1)
	}
	defer controller.Close()

	gadget, err := OpenDevice(*gadgetDev, true)
	if err != nil {
		logger.Error("gadget device open failed", "err", err)
		os.Exit(1)
	}
	defer gadget.Close()

	toController := make(chan []byte, frameChanCap)
	toGadget := make(chan []byte, frameChanCap)
	snapshots := make(chan []noteEvent, snapshotChanCap)

	go controllerLoop(controller, toController, toGadget, *tick)
	go gadgetLoop(gadget, toController, toGadget, snapshots, mapper, *tick)

	drv, err := rtmididrv.New()
	if err != nil {
		logger.Error("rtmidi driver init failed", "err", err)
		os.Exit(1)
	}
	defer drv.Close()

	stop, err := startMIDI(drv, *port, snapshots)
	if err != nil {
		logger.Error("midi listener failed", "err", err)
		os.Exit(1)
	}
	defer stop()

	logger.Info("running")
	select {} // loops run until the process is killed
}
