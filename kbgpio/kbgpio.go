// Package kbgpio drives a real key matrix through periph.io GPIO pins:
// eight pulled-up row inputs, eight open-drain column strobes and the
// pulled-up RESTORE input.
package kbgpio

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Pins names the GPIO pins wired to the keyboard connector.
type Pins struct {
	Rows    [8]string
	Cols    [8]string
	Restore string
}

// DefaultPins matches the original converter wiring: row data on
// GPIO0-7, column strobes on GPIO8-15, RESTORE on GPIO18.
func DefaultPins() Pins {
	p := Pins{Restore: "GPIO18"}
	for i := 0; i < 8; i++ {
		p.Rows[i] = fmt.Sprintf("GPIO%d", i)
		p.Cols[i] = fmt.Sprintf("GPIO%d", 8+i)
	}
	return p
}

// Matrix implements the converter's MatrixIO capability on real pins.
type Matrix struct {
	rows    [8]gpio.PinIO
	cols    [8]gpio.PinIO
	restore gpio.PinIO
}

// Open initializes the periph host drivers and claims the named pins.
// Rows and RESTORE are configured as pulled-up inputs; columns are left
// tri-stated until driven.
func Open(pins Pins) (*Matrix, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	m := &Matrix{}
	for i, name := range pins.Rows {
		p, err := input(name, gpio.PullUp)
		if err != nil {
			return nil, err
		}
		m.rows[i] = p
	}
	for i, name := range pins.Cols {
		p, err := input(name, gpio.Float)
		if err != nil {
			return nil, err
		}
		m.cols[i] = p
	}
	p, err := input(pins.Restore, gpio.PullUp)
	if err != nil {
		return nil, err
	}
	m.restore = p
	return m, nil
}

func input(name string, pull gpio.Pull) (gpio.PinIO, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("kbgpio: no pin %q", name)
	}
	if err := p.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("kbgpio: %s: %w", name, err)
	}
	return p, nil
}

// DriveColumn pulls the column line low. The matrix has no diodes, so
// columns are only ever driven low or tri-stated, never high.
func (m *Matrix) DriveColumn(col int) {
	_ = m.cols[col].Out(gpio.Low)
}

// ReleaseColumn returns the column line to a floating input.
func (m *Matrix) ReleaseColumn(col int) {
	_ = m.cols[col].In(gpio.Float, gpio.NoEdge)
}

// ReadRows samples the eight row lines. Bit r is 1 when row r is open.
func (m *Matrix) ReadRows() uint8 {
	var rows uint8
	for i, p := range m.rows {
		if p.Read() == gpio.High {
			rows |= 1 << i
		}
	}
	return rows
}

// ReadRestore reports the RESTORE line, true when open.
func (m *Matrix) ReadRestore() bool {
	return m.restore.Read() == gpio.High
}

// Clock is a monotonic microsecond clock backed by the runtime clock.
type Clock struct {
	start time.Time
}

func NewClock() *Clock {
	return &Clock{start: time.Now()}
}

func (c *Clock) NowMicros() uint64 {
	return uint64(time.Since(c.start).Microseconds())
}

// BusyWait spins until us microseconds have passed. The settle delays
// are a handful of microseconds, far below timer resolution, so
// sleeping is not an option.
func (c *Clock) BusyWait(us uint64) {
	deadline := c.NowMicros() + us
	for c.NowMicros() < deadline {
	}
}
