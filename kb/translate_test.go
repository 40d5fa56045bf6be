package kb

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/newhook/cbm2usb/hid"
)

func TestTranslateASCII(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name       string
		cbmcode    uint8
		modifier   uint8
		expectCode uint8
		expectMod  uint8
	}{
		{"letter A", 10, 0, hid.KEY_A, 0},
		{"letter A shifted", 10, hid.MOD_LEFTSHIFT, hid.KEY_A, hid.MOD_LEFTSHIFT},
		{"digit 1", CBM_KEY_1, 0, hid.KEY_1, 0},
		{"return", CBM_KEY_RETURN, 0, hid.KEY_ENTER, 0},
		{"space", CBM_KEY_SPACE, 0, hid.KEY_SPACE, 0},

		// shift-pair corrections
		{"shift-2 is double quote", CBM_KEY_2, hid.MOD_LEFTSHIFT, hid.KEY_APOSTROPHE, hid.MOD_LEFTSHIFT},
		{"shift-6 is ampersand", CBM_KEY_6, hid.MOD_LEFTSHIFT, hid.KEY_7, hid.MOD_LEFTSHIFT},
		{"shift-7 is apostrophe", CBM_KEY_7, hid.MOD_LEFTSHIFT, hid.KEY_APOSTROPHE, 0},
		{"shift-8 is open paren", CBM_KEY_8, hid.MOD_RIGHTSHIFT, hid.KEY_9, hid.MOD_RIGHTSHIFT},
		{"shift-9 is close paren", CBM_KEY_9, hid.MOD_LEFTSHIFT, hid.KEY_0, hid.MOD_LEFTSHIFT},
		{"shift-0 is F12", CBM_KEY_0, hid.MOD_LEFTSHIFT, hid.KEY_F12, 0},
		{"shift-plus is page up", CBM_KEY_PLUS, hid.MOD_LEFTSHIFT, hid.KEY_PAGE_UP, 0},
		{"shift-minus is page down", CBM_KEY_MINUS, hid.MOD_LEFTSHIFT, hid.KEY_PAGE_DOWN, 0},
		{"shift-colon is left bracket", CBM_KEY_COLON, hid.MOD_LEFTSHIFT, hid.KEY_BRACKET_LEFT, 0},
		{"shift-sterling is underscore", CBM_KEY_STERLING, hid.MOD_LEFTSHIFT, hid.KEY_MINUS, hid.MOD_LEFTSHIFT},
		{"shift-semicolon is right bracket", CBM_KEY_SEMICOLON, hid.MOD_LEFTSHIFT, hid.KEY_BRACKET_RIGHT, 0},
		{"shift-arrow-up is tilde", CBM_KEY_ARROW_UP, hid.MOD_LEFTSHIFT, hid.KEY_GRAVE, hid.MOD_LEFTSHIFT},
		{"shift-home is end", CBM_KEY_HOME, hid.MOD_LEFTSHIFT, hid.KEY_END, 0},
		{"shift-del is insert", CBM_KEY_DEL, hid.MOD_LEFTSHIFT, hid.KEY_INSERT, 0},
		{"shift-crsr-right is left arrow", CBM_KEY_CRSR_RIGHT, hid.MOD_LEFTSHIFT, hid.KEY_ARROW_LEFT, 0},
		{"shift-crsr-down is up arrow", CBM_KEY_CRSR_DOWN, hid.MOD_LEFTSHIFT, hid.KEY_ARROW_UP, 0},
		{"shift-f1 is f2", CBM_KEY_F1, hid.MOD_LEFTSHIFT, hid.KEY_F2, 0},
		{"shift-f3 is f4", CBM_KEY_F3, hid.MOD_LEFTSHIFT, hid.KEY_F4, 0},
		{"shift-f5 is f6", CBM_KEY_F5, hid.MOD_LEFTSHIFT, hid.KEY_F6, 0},
		{"shift-f7 is f8", CBM_KEY_F7, hid.MOD_LEFTSHIFT, hid.KEY_F8, 0},

		// unshifted synthesis for glyphs that are shifted on modern layouts
		{"plus synthesizes shift", CBM_KEY_PLUS, 0, hid.KEY_EQUAL, hid.MOD_LEFTSHIFT},
		{"minus", CBM_KEY_MINUS, 0, hid.KEY_MINUS, 0},
		{"colon synthesizes shift", CBM_KEY_COLON, 0, hid.KEY_SEMICOLON, hid.MOD_LEFTSHIFT},
		{"at synthesizes shift", CBM_KEY_COMMERCIAL_AT, 0, hid.KEY_2, hid.MOD_LEFTSHIFT},
		{"sterling is backtick", CBM_KEY_STERLING, 0, hid.KEY_GRAVE, 0},
		{"asterisk synthesizes shift", CBM_KEY_ASTERISK, 0, hid.KEY_8, hid.MOD_LEFTSHIFT},
		{"semicolon", CBM_KEY_SEMICOLON, 0, hid.KEY_SEMICOLON, 0},
		{"arrow-up is caret", CBM_KEY_ARROW_UP, 0, hid.KEY_6, hid.MOD_LEFTSHIFT},
		{"del is backspace", CBM_KEY_DEL, 0, hid.KEY_BACKSPACE, 0},

		// overrides for both shift states
		{"arrow-left is delete", CBM_KEY_ARROW_LEFT, 0, hid.KEY_DELETE, 0},
		{"arrow-left shifted is delete", CBM_KEY_ARROW_LEFT, hid.MOD_LEFTSHIFT, hid.KEY_DELETE, hid.MOD_LEFTSHIFT},
		{"cbm is tab", CBM_KEY_CBM, 0, hid.KEY_TAB, 0},
		{"restore is backslash", CBM_KEY_RESTORE, 0, hid.KEY_BACKSLASH, 0},
		{"equal strips shift", CBM_KEY_EQUAL, hid.MOD_LEFTSHIFT, hid.KEY_EQUAL, 0},
		{"equal plain", CBM_KEY_EQUAL, 0, hid.KEY_EQUAL, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, modifier, toggle := translateASCII(test.cbmcode, test.modifier)
			assert.Equal(test.expectCode, code, "incorrect keycode")
			assert.Equal(test.expectMod, modifier, "incorrect modifier")
			assert.False(toggle, "unexpected profile toggle")
		})
	}
}

func TestTranslateASCIIEscapeChord(t *testing.T) {
	assert := assert.New(t)
	chord := uint8(hid.MOD_LEFTCTRL | hid.MOD_LEFTSHIFT | hid.MOD_RIGHTSHIFT)

	code, modifier, toggle := translateASCII(CBM_KEY_STERLING, chord)
	assert.Equal(hid.KEY_SHIFT_RIGHT, code)
	assert.Equal(chord, modifier)
	assert.True(toggle, "sterling chord must toggle the profile")

	code, modifier, toggle = translateASCII(CBM_KEY_DEL, chord)
	assert.Equal(hid.KEY_DELETE, code)
	assert.Equal(hid.MOD_LEFTCTRL|hid.MOD_LEFTALT, modifier)
	assert.False(toggle)

	tests := []struct {
		cbmcode uint8
		expect  uint8
	}{
		{CBM_KEY_F1, hid.KEY_F9},
		{CBM_KEY_F3, hid.KEY_F10},
		{CBM_KEY_F5, hid.KEY_F11},
		{CBM_KEY_F7, hid.KEY_F12},
	}
	for _, test := range tests {
		code, modifier, toggle = translateASCII(test.cbmcode, chord)
		assert.Equal(test.expect, code)
		assert.Equal(uint8(0), modifier, "chorded F keys clear the modifier")
		assert.False(toggle)
	}

	// Any other key under the chord falls through with the chord intact.
	code, modifier, toggle = translateASCII(10, chord)
	assert.Equal(hid.KEY_A, code)
	assert.Equal(chord, modifier)
	assert.False(toggle)
}

func TestTranslateMister(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name       string
		cbmcode    uint8
		modifier   uint8
		expectCode uint8
		expectMod  uint8
	}{
		{"letter A", 10, 0, hid.KEY_A, 0},
		{"plus stays positional", CBM_KEY_PLUS, 0, hid.KEY_EQUAL, 0},
		{"equal stays positional", CBM_KEY_EQUAL, 0, hid.KEY_END, 0},
		{"sterling stays positional", CBM_KEY_STERLING, 0, hid.KEY_BACKSLASH, 0},
		{"restore is F11", CBM_KEY_RESTORE, 0, hid.KEY_F11, 0},
		{"cbm is left alt", CBM_KEY_CBM, 0, hid.KEY_ALT_LEFT, 0},
		{"shift-6 is ampersand", CBM_KEY_6, hid.MOD_LEFTSHIFT, hid.KEY_7, hid.MOD_LEFTSHIFT},
		{"shift-7 is apostrophe pair", CBM_KEY_7, hid.MOD_LEFTSHIFT, hid.KEY_6, hid.MOD_LEFTSHIFT},
		{"shift-8 is open paren", CBM_KEY_8, hid.MOD_LEFTSHIFT, hid.KEY_9, hid.MOD_LEFTSHIFT},
		{"shift-9 is close paren", CBM_KEY_9, hid.MOD_LEFTSHIFT, hid.KEY_0, hid.MOD_LEFTSHIFT},
		{"shift-0 is F12", CBM_KEY_0, hid.MOD_LEFTSHIFT, hid.KEY_F12, 0},
		{"shift-crsr-right is left arrow", CBM_KEY_CRSR_RIGHT, hid.MOD_LEFTSHIFT, hid.KEY_ARROW_LEFT, 0},
		{"shift-crsr-down is up arrow", CBM_KEY_CRSR_DOWN, hid.MOD_LEFTSHIFT, hid.KEY_ARROW_UP, 0},
		{"shift-2 stays positional", CBM_KEY_2, hid.MOD_LEFTSHIFT, hid.KEY_2, hid.MOD_LEFTSHIFT},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			code, modifier, toggle := translateMister(test.cbmcode, test.modifier)
			assert.Equal(test.expectCode, code, "incorrect keycode")
			assert.Equal(test.expectMod, modifier, "incorrect modifier")
			assert.False(toggle, "unexpected profile toggle")
		})
	}
}

func TestTranslateMisterEscapeChord(t *testing.T) {
	assert := assert.New(t)
	chord := uint8(hid.MOD_LEFTCTRL | hid.MOD_LEFTSHIFT | hid.MOD_RIGHTSHIFT)

	code, modifier, toggle := translateMister(CBM_KEY_STERLING, chord)
	assert.Equal(hid.KEY_SHIFT_RIGHT, code)
	assert.Equal(chord, modifier)
	assert.True(toggle)

	code, modifier, toggle = translateMister(CBM_KEY_DEL, chord)
	assert.Equal(hid.KEY_ALT_RIGHT, code)
	assert.Equal(hid.MOD_LEFTCTRL|hid.MOD_LEFTALT|hid.MOD_RIGHTALT, modifier)
	assert.False(toggle)
}

func TestTranslateIsStable(t *testing.T) {
	assert := assert.New(t)

	// Repeated translation with the same inputs must give the same
	// outputs; no hidden state outside the escape chords.
	for cbmcode := uint8(0); cbmcode < NumKeys; cbmcode++ {
		for _, modifier := range []uint8{0, hid.MOD_LEFTSHIFT, hid.MOD_RIGHTSHIFT} {
			c1, m1, t1 := translateASCII(cbmcode, modifier)
			c2, m2, t2 := translateASCII(cbmcode, modifier)
			assert.Equal(c1, c2)
			assert.Equal(m1, m2)
			assert.Equal(t1, t2)

			c1, m1, t1 = translateMister(cbmcode, modifier)
			c2, m2, t2 = translateMister(cbmcode, modifier)
			assert.Equal(c1, c2)
			assert.Equal(m1, m2)
			assert.Equal(t1, t2)
		}
	}
}

func TestModifierFor(t *testing.T) {
	assert := assert.New(t)
	k := &Keyboard{}

	assert.Equal(hid.MOD_LEFTCTRL, k.modifierFor(CBM_KEY_CONTROL_LEFT))
	assert.Equal(hid.MOD_LEFTSHIFT, k.modifierFor(CBM_KEY_SHIFT_LEFT))
	assert.Equal(hid.MOD_RIGHTSHIFT, k.modifierFor(CBM_KEY_SHIFT_RIGHT))
	assert.Equal(uint8(0), k.modifierFor(10), "letters are not modifiers")
	assert.Equal(uint8(0), k.modifierFor(CBM_KEY_RESTORE))

	// C= is TAB in the ASCII profile, a real left alt under MiSTer.
	assert.Equal(uint8(0), k.modifierFor(CBM_KEY_CBM))
	k.isMister = true
	assert.Equal(hid.MOD_LEFTALT, k.modifierFor(CBM_KEY_CBM))
}
