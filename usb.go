package main

import (
	"fmt"
	"os"
	"time"
)

// udcClassDir lists the platform's USB device controllers; writing one of
// these names into a gadget's UDC config file binds the gadget to it.
var udcClassDir = "/sys/class/udc"

const udcSettleDelay = 500 * time.Millisecond

// rebindGadget detaches the gadget from its UDC and reattaches it, so the
// host re-enumerates the device and replays the controller init sequence
// before the relay loops start.
func rebindGadget(udcConfigPath string) error {
	if err := os.WriteFile(udcConfigPath, []byte("\n"), 0); err != nil {
		return fmt.Errorf("unbind gadget: %w", err)
	}
	entries, err := os.ReadDir(udcClassDir)
	if err != nil {
		return fmt.Errorf("list UDCs: %w", err)
	}
	if len(entries) == 0 {
		return fmt.Errorf("no UDC present under %s", udcClassDir)
	}
	udc := entries[0].Name()
	if err := os.WriteFile(udcConfigPath, []byte(udc+"\n"), 0); err != nil {
		return fmt.Errorf("bind gadget to %s: %w", udc, err)
	}
	logger.Info("gadget: rebound to UDC", "udc", udc, "settle", udcSettleDelay)
	time.Sleep(udcSettleDelay)
	return nil
}
