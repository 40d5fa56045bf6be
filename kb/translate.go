package kb

import "github.com/newhook/cbm2usb/hid"

// Default keycode translations are the positional mapping used by
// MiSTer. Indexed by positional code, row*8+col, with RESTORE at 64.
var cbmToHID = [NumKeys]uint8{
	hid.KEY_1, hid.KEY_GRAVE, hid.KEY_CONTROL_LEFT, hid.KEY_ESCAPE, // 0-3
	hid.KEY_SPACE, hid.KEY_ALT_LEFT, hid.KEY_Q, hid.KEY_2, // 4-7
	hid.KEY_3, hid.KEY_W, hid.KEY_A, hid.KEY_SHIFT_LEFT, // 8-11
	hid.KEY_Z, hid.KEY_S, hid.KEY_E, hid.KEY_4, // 12-15
	hid.KEY_5, hid.KEY_R, hid.KEY_D, hid.KEY_X, // 16-19
	hid.KEY_C, hid.KEY_F, hid.KEY_T, hid.KEY_6, // 20-23
	hid.KEY_7, hid.KEY_Y, hid.KEY_G, hid.KEY_V, // 24-27
	hid.KEY_B, hid.KEY_H, hid.KEY_U, hid.KEY_8, // 28-31
	hid.KEY_9, hid.KEY_I, hid.KEY_J, hid.KEY_N, // 32-35
	hid.KEY_M, hid.KEY_K, hid.KEY_O, hid.KEY_0, // 36-39
	hid.KEY_EQUAL, hid.KEY_P, hid.KEY_L, hid.KEY_COMMA, // 40-43
	hid.KEY_PERIOD, hid.KEY_SEMICOLON, hid.KEY_BRACKET_LEFT, hid.KEY_MINUS, // 44-47
	hid.KEY_BACKSLASH, hid.KEY_BRACKET_RIGHT, hid.KEY_APOSTROPHE, hid.KEY_SLASH, // 48-51
	hid.KEY_SHIFT_RIGHT, hid.KEY_END, hid.KEY_PAGE_DOWN, hid.KEY_HOME, // 52-55
	hid.KEY_DELETE, hid.KEY_ENTER, hid.KEY_ARROW_RIGHT, hid.KEY_ARROW_DOWN, // 56-59
	hid.KEY_F1, hid.KEY_F3, hid.KEY_F5, hid.KEY_F7, // 60-63
	hid.KEY_F11, // 64
}

// Positional codes for everything except the letters
const (
	CBM_KEY_1             = 0
	CBM_KEY_2             = 7
	CBM_KEY_3             = 8
	CBM_KEY_4             = 15
	CBM_KEY_5             = 16
	CBM_KEY_6             = 23
	CBM_KEY_7             = 24
	CBM_KEY_8             = 31
	CBM_KEY_9             = 32
	CBM_KEY_0             = 39
	CBM_KEY_ARROW_LEFT    = 1
	CBM_KEY_CONTROL_LEFT  = 2
	CBM_KEY_RUN_STOP      = 3
	CBM_KEY_SPACE         = 4
	CBM_KEY_CBM           = 5 // C= key
	CBM_KEY_SHIFT_LEFT    = 11
	CBM_KEY_PLUS          = 40
	CBM_KEY_COMMA         = 43
	CBM_KEY_PERIOD        = 44
	CBM_KEY_COLON         = 45
	CBM_KEY_COMMERCIAL_AT = 46
	CBM_KEY_MINUS         = 47
	CBM_KEY_STERLING      = 48
	CBM_KEY_ASTERISK      = 49
	CBM_KEY_SEMICOLON     = 50
	CBM_KEY_SLASH         = 51
	CBM_KEY_SHIFT_RIGHT   = 52
	CBM_KEY_EQUAL         = 53
	CBM_KEY_ARROW_UP      = 54
	CBM_KEY_HOME          = 55
	CBM_KEY_DEL           = 56
	CBM_KEY_RETURN        = 57
	CBM_KEY_CRSR_RIGHT    = 58
	CBM_KEY_CRSR_DOWN     = 59
	CBM_KEY_F1            = 60
	CBM_KEY_F3            = 61
	CBM_KEY_F5            = 62
	CBM_KEY_F7            = 63
	CBM_KEY_RESTORE       = 64
)

const shiftMask = hid.MOD_LEFTSHIFT | hid.MOD_RIGHTSHIFT

// escapeChord is the triple-modifier prefix for the mode toggle and the
// deletion chords.
const escapeChord = hid.MOD_LEFTCTRL | hid.MOD_LEFTSHIFT | hid.MOD_RIGHTSHIFT

// modifierFor translates a positional code into its USB modifier bit,
// or 0 for a regular key. In the ASCII profile the C= key is repurposed
// as TAB and does not count as a modifier.
func (k *Keyboard) modifierFor(cbmcode uint8) uint8 {
	keycode := cbmToHID[cbmcode]
	if !k.isMister && keycode == hid.KEY_ALT_LEFT {
		return 0
	}
	if keycode >= hid.KEY_CONTROL_LEFT && keycode <= hid.KEY_GUI_RIGHT {
		return 1 << (keycode & 7)
	}
	return 0
}

// translate maps a positional code and the modifier captured at its
// press into the HID code and modifier to emit under the active
// profile. A true toggle means the escape chord fired and the caller
// must flip the profile.
func (k *Keyboard) translate(cbmcode, modifier uint8) (keycode, outMod uint8, toggle bool) {
	if k.isMister {
		return translateMister(cbmcode, modifier)
	}
	return translateASCII(cbmcode, modifier)
}

// translateASCII applies the overrides that make the C64 keyboard
// suitable for ASCII.
func translateASCII(cbmcode, modifier uint8) (uint8, uint8, bool) {
	code := cbmToHID[cbmcode]
	if modifier == escapeChord {
		switch cbmcode {
		case CBM_KEY_STERLING:
			return hid.KEY_SHIFT_RIGHT, modifier, true
		case CBM_KEY_DEL:
			return hid.KEY_DELETE, hid.MOD_LEFTCTRL | hid.MOD_LEFTALT, false
		case CBM_KEY_F1:
			code = hid.KEY_F9
			modifier = 0
		case CBM_KEY_F3:
			code = hid.KEY_F10
			modifier = 0
		case CBM_KEY_F5:
			code = hid.KEY_F11
			modifier = 0
		case CBM_KEY_F7:
			code = hid.KEY_F12
			modifier = 0
		}
	}
	if modifier&shiftMask != 0 {
		switch cbmcode {
		case CBM_KEY_2: // "
			code = hid.KEY_APOSTROPHE
		case CBM_KEY_6: // &
			code = hid.KEY_7
		case CBM_KEY_7: // '
			code = hid.KEY_APOSTROPHE
			modifier &^= shiftMask
		case CBM_KEY_8: // (
			code = hid.KEY_9
		case CBM_KEY_9: // )
			code = hid.KEY_0
		case CBM_KEY_0:
			code = hid.KEY_F12
			modifier &^= shiftMask
		case CBM_KEY_PLUS:
			code = hid.KEY_PAGE_UP
			modifier &^= shiftMask
		case CBM_KEY_MINUS:
			code = hid.KEY_PAGE_DOWN
			modifier &^= shiftMask
		case CBM_KEY_COLON:
			code = hid.KEY_BRACKET_LEFT
			modifier &^= shiftMask
		case CBM_KEY_STERLING:
			code = hid.KEY_MINUS // _
		case CBM_KEY_SEMICOLON:
			code = hid.KEY_BRACKET_RIGHT
			modifier &^= shiftMask
		case CBM_KEY_ARROW_UP:
			code = hid.KEY_GRAVE // ~
		case CBM_KEY_HOME:
			code = hid.KEY_END
			modifier &^= shiftMask
		case CBM_KEY_DEL:
			code = hid.KEY_INSERT
			modifier &^= shiftMask
		case CBM_KEY_CRSR_RIGHT:
			code = hid.KEY_ARROW_LEFT
			modifier &^= shiftMask
		case CBM_KEY_CRSR_DOWN:
			code = hid.KEY_ARROW_UP
			modifier &^= shiftMask
		case CBM_KEY_F1:
			code = hid.KEY_F2
			modifier &^= shiftMask
		case CBM_KEY_F3:
			code = hid.KEY_F4
			modifier &^= shiftMask
		case CBM_KEY_F5:
			code = hid.KEY_F6
			modifier &^= shiftMask
		case CBM_KEY_F7:
			code = hid.KEY_F8
			modifier &^= shiftMask
		}
	} else {
		switch cbmcode {
		case CBM_KEY_PLUS:
			code = hid.KEY_EQUAL
			modifier |= hid.MOD_LEFTSHIFT
		case CBM_KEY_MINUS:
			code = hid.KEY_MINUS
		case CBM_KEY_COLON:
			code = hid.KEY_SEMICOLON
			modifier |= hid.MOD_LEFTSHIFT
		case CBM_KEY_COMMERCIAL_AT:
			code = hid.KEY_2
			modifier |= hid.MOD_LEFTSHIFT
		case CBM_KEY_STERLING:
			code = hid.KEY_GRAVE
		case CBM_KEY_ASTERISK:
			code = hid.KEY_8
			modifier |= hid.MOD_LEFTSHIFT
		case CBM_KEY_SEMICOLON:
			code = hid.KEY_SEMICOLON
		case CBM_KEY_ARROW_UP: // ^
			code = hid.KEY_6
			modifier |= hid.MOD_LEFTSHIFT
		case CBM_KEY_DEL:
			code = hid.KEY_BACKSPACE
		}
	}
	// Overrides for both SHIFT states.
	switch cbmcode {
	case CBM_KEY_ARROW_LEFT:
		code = hid.KEY_DELETE
	case CBM_KEY_CBM:
		code = hid.KEY_TAB
	case CBM_KEY_RESTORE:
		code = hid.KEY_BACKSLASH
	case CBM_KEY_EQUAL:
		code = hid.KEY_EQUAL
		modifier &^= shiftMask
	}
	return code, modifier, false
}

// translateMister trusts the positional mapping and only corrects the
// shift pairs that disagree between the two keyboards.
func translateMister(cbmcode, modifier uint8) (uint8, uint8, bool) {
	code := cbmToHID[cbmcode]
	if modifier == escapeChord {
		switch cbmcode {
		case CBM_KEY_STERLING:
			return hid.KEY_SHIFT_RIGHT, modifier, true
		case CBM_KEY_DEL:
			return hid.KEY_ALT_RIGHT,
				hid.MOD_LEFTCTRL | hid.MOD_LEFTALT | hid.MOD_RIGHTALT, false
		}
	}
	if modifier&shiftMask != 0 {
		switch cbmcode {
		case CBM_KEY_6: // &
			code = hid.KEY_7
		case CBM_KEY_7: // '
			code = hid.KEY_6
		case CBM_KEY_8: // (
			code = hid.KEY_9
		case CBM_KEY_9: // )
			code = hid.KEY_0
		case CBM_KEY_0:
			code = hid.KEY_F12
			modifier &^= shiftMask
		case CBM_KEY_CRSR_RIGHT:
			code = hid.KEY_ARROW_LEFT
			modifier &^= shiftMask
		case CBM_KEY_CRSR_DOWN:
			code = hid.KEY_ARROW_UP
			modifier &^= shiftMask
		}
	}
	return code, modifier, false
}
