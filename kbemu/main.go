package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/newhook/cbm2usb/hid"
	"github.com/newhook/cbm2usb/kb"
	"github.com/newhook/cbm2usb/kbgpio"
	"github.com/newhook/cbm2usb/sim"
)

// scancodeToCBM maps the host keyboard onto the virtual CBM matrix by
// physical position, the inverse of the converter's positional table
// except for DEL, which sits on the host Backspace key rather than Delete.
var scancodeToCBM = map[sdl.Scancode]int{
	sdl.SCANCODE_1:            kb.CBM_KEY_1,
	sdl.SCANCODE_GRAVE:        kb.CBM_KEY_ARROW_LEFT,
	sdl.SCANCODE_LCTRL:        kb.CBM_KEY_CONTROL_LEFT,
	sdl.SCANCODE_ESCAPE:       kb.CBM_KEY_RUN_STOP,
	sdl.SCANCODE_SPACE:        kb.CBM_KEY_SPACE,
	sdl.SCANCODE_LALT:         kb.CBM_KEY_CBM,
	sdl.SCANCODE_Q:            6,
	sdl.SCANCODE_2:            kb.CBM_KEY_2,
	sdl.SCANCODE_3:            kb.CBM_KEY_3,
	sdl.SCANCODE_W:            9,
	sdl.SCANCODE_A:            10,
	sdl.SCANCODE_LSHIFT:       kb.CBM_KEY_SHIFT_LEFT,
	sdl.SCANCODE_Z:            12,
	sdl.SCANCODE_S:            13,
	sdl.SCANCODE_E:            14,
	sdl.SCANCODE_4:            kb.CBM_KEY_4,
	sdl.SCANCODE_5:            kb.CBM_KEY_5,
	sdl.SCANCODE_R:            17,
	sdl.SCANCODE_D:            18,
	sdl.SCANCODE_X:            19,
	sdl.SCANCODE_C:            20,
	sdl.SCANCODE_F:            21,
	sdl.SCANCODE_T:            22,
	sdl.SCANCODE_6:            kb.CBM_KEY_6,
	sdl.SCANCODE_7:            kb.CBM_KEY_7,
	sdl.SCANCODE_Y:            25,
	sdl.SCANCODE_G:            26,
	sdl.SCANCODE_V:            27,
	sdl.SCANCODE_B:            28,
	sdl.SCANCODE_H:            29,
	sdl.SCANCODE_U:            30,
	sdl.SCANCODE_8:            kb.CBM_KEY_8,
	sdl.SCANCODE_9:            kb.CBM_KEY_9,
	sdl.SCANCODE_I:            33,
	sdl.SCANCODE_J:            34,
	sdl.SCANCODE_N:            35,
	sdl.SCANCODE_M:            36,
	sdl.SCANCODE_K:            37,
	sdl.SCANCODE_O:            38,
	sdl.SCANCODE_0:            kb.CBM_KEY_0,
	sdl.SCANCODE_EQUALS:       kb.CBM_KEY_PLUS,
	sdl.SCANCODE_P:            41,
	sdl.SCANCODE_L:            42,
	sdl.SCANCODE_COMMA:        kb.CBM_KEY_COMMA,
	sdl.SCANCODE_PERIOD:       kb.CBM_KEY_PERIOD,
	sdl.SCANCODE_SEMICOLON:    kb.CBM_KEY_COLON,
	sdl.SCANCODE_LEFTBRACKET:  kb.CBM_KEY_COMMERCIAL_AT,
	sdl.SCANCODE_MINUS:        kb.CBM_KEY_MINUS,
	sdl.SCANCODE_BACKSLASH:    kb.CBM_KEY_STERLING,
	sdl.SCANCODE_RIGHTBRACKET: kb.CBM_KEY_ASTERISK,
	sdl.SCANCODE_APOSTROPHE:   kb.CBM_KEY_SEMICOLON,
	sdl.SCANCODE_SLASH:        kb.CBM_KEY_SLASH,
	sdl.SCANCODE_RSHIFT:       kb.CBM_KEY_SHIFT_RIGHT,
	sdl.SCANCODE_END:          kb.CBM_KEY_EQUAL,
	sdl.SCANCODE_PAGEDOWN:     kb.CBM_KEY_ARROW_UP,
	sdl.SCANCODE_HOME:         kb.CBM_KEY_HOME,
	sdl.SCANCODE_BACKSPACE:    kb.CBM_KEY_DEL,
	sdl.SCANCODE_RETURN:       kb.CBM_KEY_RETURN,
	sdl.SCANCODE_RIGHT:        kb.CBM_KEY_CRSR_RIGHT,
	sdl.SCANCODE_DOWN:         kb.CBM_KEY_CRSR_DOWN,
	sdl.SCANCODE_F1:           kb.CBM_KEY_F1,
	sdl.SCANCODE_F3:           kb.CBM_KEY_F3,
	sdl.SCANCODE_F5:           kb.CBM_KEY_F5,
	sdl.SCANCODE_F7:           kb.CBM_KEY_F7,
	sdl.SCANCODE_F11:          kb.CBM_KEY_RESTORE,
}

// Emu hosts the converter against a simulated matrix fed from SDL
// keyboard events, with a small status window.
type Emu struct {
	matrix *sim.Matrix
	kbd    *kb.Keyboard
	pump   *kb.Pump

	window   *sdl.Window
	renderer *sdl.Renderer
	running  bool

	leds         uint8
	lastModifier uint8
	lastKeys     [6]uint8
}

func NewEmu(mister bool, intervalUS uint64) (*Emu, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, err
	}

	window, err := sdl.CreateWindow("cbm2usb",
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		8*40+20, 8*40+60,
		sdl.WINDOW_SHOWN)
	if err != nil {
		return nil, err
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		return nil, err
	}

	matrix := sim.NewMatrix()
	clock := kbgpio.NewClock()
	kbd := kb.New(matrix, clock)
	kbd.Init()
	kbd.SetMister(mister)

	return &Emu{
		matrix:   matrix,
		kbd:      kbd,
		pump:     kb.NewPump(clock, intervalUS),
		window:   window,
		renderer: renderer,
		running:  true,
	}, nil
}

func (e *Emu) handleEvents() {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			e.running = false
		case *sdl.KeyboardEvent:
			if ev.Repeat != 0 {
				continue
			}
			// The host has no USB output report here, so CAPS LOCK
			// stands in for the LED state it would set.
			if ev.Keysym.Scancode == sdl.SCANCODE_CAPSLOCK &&
				ev.Type == sdl.KEYDOWN {
				e.leds ^= hid.LED_CAPSLOCK
				continue
			}
			pos, ok := scancodeToCBM[ev.Keysym.Scancode]
			if !ok {
				continue
			}
			if ev.Type == sdl.KEYDOWN {
				e.matrix.Press(pos)
			} else {
				e.matrix.Release(pos)
			}
		}
	}
}

func (e *Emu) step() {
	e.kbd.Task()
	if !e.pump.Ready() {
		return
	}
	modifier, keys := e.kbd.Report()
	if modifier == e.lastModifier && keys == e.lastKeys {
		return
	}
	e.lastModifier = modifier
	e.lastKeys = keys
	profile := "ascii"
	if e.kbd.IsMister() {
		profile = "mister"
	}
	fmt.Printf("%s mod=%02X keys=[%02X %02X %02X %02X %02X %02X]\n",
		profile, modifier, keys[0], keys[1], keys[2], keys[3], keys[4], keys[5])
}

func (e *Emu) render() error {
	if err := e.renderer.SetDrawColor(0x20, 0x20, 0x20, 0xFF); err != nil {
		return err
	}
	if err := e.renderer.Clear(); err != nil {
		return err
	}

	// matrix grid, one rect per key, colored by scan state
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			status, _ := e.kbd.State(row*8 + col)
			switch {
			case status == 1:
				e.renderer.SetDrawColor(0x7D, 0x56, 0xF4, 0xFF)
			case status > 1:
				e.renderer.SetDrawColor(0xFF, 0xB4, 0x54, 0xFF)
			default:
				e.renderer.SetDrawColor(0x38, 0x38, 0x38, 0xFF)
			}
			rect := sdl.Rect{
				X: int32(10 + col*40),
				Y: int32(10 + row*40),
				W: 36,
				H: 36,
			}
			if err := e.renderer.FillRect(&rect); err != nil {
				return err
			}
		}
	}

	// RESTORE key
	status, _ := e.kbd.State(kb.CBM_KEY_RESTORE)
	if status == 1 {
		e.renderer.SetDrawColor(0x7D, 0x56, 0xF4, 0xFF)
	} else {
		e.renderer.SetDrawColor(0x38, 0x38, 0x38, 0xFF)
	}
	if err := e.renderer.FillRect(&sdl.Rect{X: 10, Y: 10 + 8*40, W: 76, H: 36}); err != nil {
		return err
	}

	// caps-lock LED
	if e.leds&hid.LED_CAPSLOCK != 0 {
		e.renderer.SetDrawColor(0x73, 0xF5, 0x9F, 0xFF)
	} else {
		e.renderer.SetDrawColor(0x38, 0x38, 0x38, 0xFF)
	}
	if err := e.renderer.FillRect(&sdl.Rect{X: int32(10 + 7*40), Y: 10 + 8*40, W: 36, H: 36}); err != nil {
		return err
	}

	e.renderer.Present()
	return nil
}

func (e *Emu) Cleanup() {
	if e.renderer != nil {
		e.renderer.Destroy()
	}
	if e.window != nil {
		e.window.Destroy()
	}
	sdl.Quit()
}

func main() {
	mister := flag.Bool("mister", false, "start in the MiSTer profile")
	interval := flag.Uint64("interval", 8000, "report interval in microseconds")
	flag.Parse()

	emu, err := NewEmu(*mister, *interval)
	if err != nil {
		log.Fatal(err)
	}
	defer emu.Cleanup()

	for emu.running {
		emu.handleEvents()
		emu.step()
		if err := emu.render(); err != nil {
			log.Fatal(err)
		}
		sdl.Delay(1)
	}
}
