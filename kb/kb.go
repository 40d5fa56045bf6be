// Package kb implements the input pipeline that turns a Commodore 8x8
// key matrix plus the off-matrix RESTORE key into USB HID boot keyboard
// reports: matrix scanning, per-key debounce, ghost rejection, keycode
// translation and report assembly.
package kb

import "github.com/newhook/cbm2usb/hid"

// Scan timing in microseconds, with the derived tick counts rounded up.
const (
	CAS_US           = 6    // column settle time before sampling the rows
	SCAN_INTERVAL_US = 200  // full matrix sweep cadence
	GHOST_US         = 2000 // a closure must outlive this to clear ghost suspicion
	DEBOUNCE_US      = 5000 // releases are masked for this long after a close

	GHOST_TICKS    = (GHOST_US + SCAN_INTERVAL_US - 1) / SCAN_INTERVAL_US
	DEBOUNCE_TICKS = (DEBOUNCE_US + SCAN_INTERVAL_US - 1) / SCAN_INTERVAL_US
)

// NumKeys is the positional code space: 64 matrix cells plus RESTORE.
const NumKeys = 65

// Key status values. Anything above statusPressed counts down through
// the ghost filter before the key is believed.
const (
	statusOpen    uint8 = 0
	statusPressed uint8 = 1
)

// MatrixIO drives the column strobes and samples the row and RESTORE
// lines. The matrix is active-low: with a column driven, a row bit of 0
// means the key at that intersection is closed.
type MatrixIO interface {
	// DriveColumn pulls column line col low. All other columns must be
	// released first.
	DriveColumn(col int)
	// ReleaseColumn tri-states column line col.
	ReleaseColumn(col int)
	// ReadRows samples the eight row lines. Bit r is 1 when row r is open.
	ReadRows() uint8
	// ReadRestore samples the RESTORE line. True means open.
	ReadRestore() bool
}

// Clock is a monotonic microsecond time source.
type Clock interface {
	NowMicros() uint64
	// BusyWait blocks for at least us microseconds without yielding.
	BusyWait(us uint64)
}

// keyState tracks one position across scans.
type keyState struct {
	status   uint8 // statusOpen, statusPressed, or a ghost countdown
	debounce uint8 // scan ticks remaining during which a release is ignored
	sent     bool  // current press already placed into a report
	modifier uint8 // modifier bitmap captured when the press was confirmed
}

// Keyboard owns every piece of converter state: the per-key scan table,
// the profile flag, the scan deadline and the report slots. It is not
// safe for concurrent use; the outer loop calls Task and Report from a
// single goroutine.
type Keyboard struct {
	io    MatrixIO
	clock Clock

	keys     [NumKeys]keyState
	isMister bool

	nextScan uint64

	// Report state, owned by Report.
	codes            [6]slot
	modifier         uint8
	previousModifier uint8
}

func New(io MatrixIO, clock Clock) *Keyboard {
	return &Keyboard{io: io, clock: clock}
}

// Init tri-states every column line and clears all scan and report
// state. The active profile survives so a chord toggle is not lost
// across a re-init.
func (k *Keyboard) Init() {
	for col := 0; col < 8; col++ {
		k.io.ReleaseColumn(col)
	}
	*k = Keyboard{io: k.io, clock: k.clock, isMister: k.isMister}
}

// SetMister selects the positional (MiSTer) translation profile when
// true, the ASCII profile when false.
func (k *Keyboard) SetMister(v bool) { k.isMister = v }

// IsMister reports the active translation profile.
func (k *Keyboard) IsMister() bool { return k.isMister }

// Pressed reports whether position idx is a confirmed, debounced press.
func (k *Keyboard) Pressed(idx int) bool {
	return k.keys[idx].status == statusPressed
}

// State returns the raw status byte and debounce countdown for position
// idx, for diagnostics.
func (k *Keyboard) State(idx int) (status, debounce uint8) {
	return k.keys[idx].status, k.keys[idx].debounce
}

// setKey feeds one raw sample into a position's debounce state. A fresh
// closure enters the ghost countdown and arms the debounce timer; an
// open sample releases the key only once the timer has run out.
func (k *Keyboard) setKey(idx int, open bool) {
	s := &k.keys[idx]
	if s.debounce != 0 {
		s.debounce--
	}
	if open {
		if s.debounce == 0 {
			s.status = statusOpen
			s.sent = false
		}
	} else if s.status == statusOpen {
		s.status = statusPressed + GHOST_TICKS
		s.debounce = DEBOUNCE_TICKS
	}
}

// Task performs one rate-limited matrix scan. Call it as often as the
// outer loop spins; it does real work at most once per SCAN_INTERVAL_US.
//
// A scan drives each column in turn, waits CAS_US for the row lines to
// settle, samples the rows and feeds every cell through the debouncer.
// RESTORE is sampled after the sweep and bypasses ghost analysis. The
// ghost pass then holds back any pending key sitting at an intersection
// whose row and column both contain more than one closure.
func (k *Keyboard) Task() {
	now := k.clock.NowMicros()
	if now < k.nextScan {
		return
	}
	k.nextScan = now + SCAN_INTERVAL_US

	var colPop, rowPop [8]uint8
	var modifier uint8

	// read the matrix, one scan of all columns
	for col := 0; col < 8; col++ {
		k.io.DriveColumn(col)
		k.clock.BusyWait(CAS_US)
		rows := k.io.ReadRows()
		k.io.ReleaseColumn(col)
		for row := 0; row < 8; row++ {
			idx := row*8 + col
			k.setKey(idx, rows&(1<<row) != 0)

			// current modifier ignores ghosted keys
			if k.keys[idx].status == statusPressed {
				modifier |= k.modifierFor(uint8(idx))
			}

			// population count includes ghosted and bouncing keys
			if k.keys[idx].status != statusOpen {
				colPop[col]++
				rowPop[row]++
			}
		}
	}

	// RESTORE is not in the matrix and cannot ghost
	k.setKey(CBM_KEY_RESTORE, k.io.ReadRestore())
	if k.keys[CBM_KEY_RESTORE].status > statusPressed {
		k.keys[CBM_KEY_RESTORE].status = statusPressed
		k.keys[CBM_KEY_RESTORE].modifier = modifier
	}

	// use the pop counts to find ghosted keys
	for col := 0; col < 8; col++ {
		for row := 0; row < 8; row++ {
			idx := row*8 + col
			s := &k.keys[idx]
			if s.status <= statusPressed {
				continue
			}
			if colPop[col] > 1 && rowPop[row] > 1 {
				if s.debounce != 0 {
					s.status = statusPressed + GHOST_TICKS
				} else if s.status > statusPressed+1 {
					s.status--
				}
			} else {
				s.status--
				if s.status == statusPressed {
					s.modifier = modifier
				}
			}
		}
	}
}

// Pump gates report generation to the transport's polling cadence, the
// same deadline pattern Task uses for the scan interval.
type Pump struct {
	clock    Clock
	interval uint64
	next     uint64
}

// NewPump returns a pump that fires every interval microseconds.
func NewPump(clock Clock, interval uint64) *Pump {
	return &Pump{clock: clock, interval: interval}
}

// Ready reports whether a report is due, and if so re-arms the deadline.
func (p *Pump) Ready() bool {
	now := p.clock.NowMicros()
	if now < p.next {
		return false
	}
	p.next = now + p.interval
	return true
}

// WakesHost reports whether a report should trigger USB remote wakeup
// when the bus is suspended: any modifier or any key down.
func WakesHost(modifier uint8, keycodes [6]uint8) bool {
	return modifier != 0 || keycodes[0] != hid.KEY_NONE
}
