package kb

import "github.com/newhook/cbm2usb/hid"

// slot is one of the six keycode positions in the boot report, paired
// with the positional code backing it so releases can be tracked.
type slot struct {
	keycode uint8
	cbmcode uint8
}

// Report assembles the next boot-protocol report from the scan table:
// the modifier byte and the six keycode bytes. Call it whenever the
// transport is ready for a report.
//
// One report carries a single modifier byte shared by all six keycodes,
// so every key admitted into a report must agree on it. The first
// admission locks the modifier; a newly confirmed key that needs a
// different one stays queued for a later report.
func (k *Keyboard) Report() (modifier uint8, keycodes [6]uint8) {
	locked := false
	count := 0

	// remove released keys
	for count < 6 {
		if k.codes[count].keycode == 0 {
			break
		}
		if k.codes[count].keycode >= hid.KEY_A &&
			k.keys[k.codes[count].cbmcode].status != statusPressed {
			copy(k.codes[count:], k.codes[count+1:])
			k.codes[5] = slot{}
			continue
		}
		count++
	}

	// move keys out of the queue
	for cbmcode := 0; cbmcode < NumKeys; cbmcode++ {
		s := &k.keys[cbmcode]
		if s.status != statusPressed || s.sent {
			continue
		}
		if k.modifierFor(uint8(cbmcode)) != 0 {
			continue // modifiers ride the modifier byte, not a slot
		}

		// check for phantom state
		if count >= 6 {
			for i := range keycodes {
				keycodes[i] = hid.KEY_ERROR_ROLLOVER
			}
			return k.modifier, keycodes
		}

		// Pressing + and - in the same report period needs to send a
		// shift for the + and no shift for the -. This is impossible,
		// so we leave one queued for the next report.
		thisModifier := s.modifier
		if locked && k.modifier != thisModifier {
			continue
		}

		keycode, outMod, toggle := k.translate(uint8(cbmcode), thisModifier)
		if toggle {
			k.isMister = !k.isMister
		}

		// Pressing ; and shifted ; simultaneously is the same keycode
		// with different shift states. When this is detected, release
		// the held key so it can be repressed in the next report.
		ok := true
		for i := 0; i < 6; i++ {
			if k.codes[i].keycode == keycode {
				copy(k.codes[i:], k.codes[i+1:])
				k.codes[5] = slot{}
				count--
				ok = false
			}
		}
		if ok {
			k.modifier = outMod
			locked = true
			k.codes[count] = slot{keycode: keycode, cbmcode: uint8(cbmcode)}
			s.sent = true
			count++
		}
	}

	// Recompute the modifier when nothing locked it this report.
	if !locked {
		var current uint8
		for idx := 0; idx < NumKeys; idx++ {
			if k.keys[idx].status == statusPressed {
				current |= k.modifierFor(uint8(idx))
			}
		}
		if count == 0 {
			k.modifier = current
		}
		if count == 1 && k.previousModifier != current {
			// Changing the SHIFT state while a key is held should
			// usually do nothing, but two keys unique to the CBM
			// keyboard need special handling.
			switch k.codes[0].cbmcode {
			case CBM_KEY_CBM:
				// C= is TAB here; the shift must land so the following
				// characters are disambiguated.
				k.modifier = current
			case CBM_KEY_CRSR_DOWN, CBM_KEY_CRSR_RIGHT:
				// Force a release so the shifted arrow can go out in
				// the next report.
				count--
				k.setKey(int(k.codes[count].cbmcode), true)
				k.codes[count].keycode = 0
			}
		}
		k.previousModifier = current
	}

	for i := 0; i < 6; i++ {
		keycodes[i] = k.codes[i].keycode
	}
	return k.modifier, keycodes
}
