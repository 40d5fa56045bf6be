// Command cbm2usb runs the converter against a real keyboard matrix on
// GPIO pins and prints each HID report as it changes. The loop has the
// same shape as the firmware's: the scan task runs as fast as the loop
// spins and rate-limits itself, the report pump fires every 8ms.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/newhook/cbm2usb/kb"
	"github.com/newhook/cbm2usb/kbgpio"
)

func main() {
	mister := flag.Bool("mister", false, "start in the MiSTer profile")
	interval := flag.Uint64("interval", 8000, "report interval in microseconds")
	restore := flag.String("restore", "", "RESTORE pin name, default GPIO18")
	flag.Parse()

	pins := kbgpio.DefaultPins()
	if *restore != "" {
		pins.Restore = *restore
	}

	matrix, err := kbgpio.Open(pins)
	if err != nil {
		log.Fatal(err)
	}
	clock := kbgpio.NewClock()

	kbd := kb.New(matrix, clock)
	kbd.Init()
	kbd.SetMister(*mister)
	pump := kb.NewPump(clock, *interval)

	var lastModifier uint8
	var lastKeys [6]uint8
	for {
		kbd.Task()
		if !pump.Ready() {
			continue
		}
		modifier, keys := kbd.Report()
		if modifier == lastModifier && keys == lastKeys {
			continue
		}
		lastModifier = modifier
		lastKeys = keys
		profile := "ascii"
		if kbd.IsMister() {
			profile = "mister"
		}
		wake := ""
		if kb.WakesHost(modifier, keys) {
			wake = " wake"
		}
		fmt.Printf("%s mod=%02X keys=[%02X %02X %02X %02X %02X %02X]%s\n",
			profile, modifier, keys[0], keys[1], keys[2], keys[3], keys[4], keys[5], wake)
	}
}
