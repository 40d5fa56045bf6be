package main

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/newhook/cbm2usb/hid"
	"github.com/newhook/cbm2usb/kb"
	"github.com/newhook/cbm2usb/sim"
)

// Add tick command for advancing the simulated converter
type scanTick struct{}

func doScan() tea.Cmd {
	return tea.Tick(16*time.Millisecond, func(t time.Time) tea.Msg {
		return scanTick{}
	})
}

// keyNames maps the names accepted at the prompt to positional codes.
var keyNames = map[string]int{
	"1": kb.CBM_KEY_1, "2": kb.CBM_KEY_2, "3": kb.CBM_KEY_3,
	"4": kb.CBM_KEY_4, "5": kb.CBM_KEY_5, "6": kb.CBM_KEY_6,
	"7": kb.CBM_KEY_7, "8": kb.CBM_KEY_8, "9": kb.CBM_KEY_9,
	"0": kb.CBM_KEY_0,
	"q": 6, "w": 9, "e": 14, "r": 17, "t": 22, "y": 25, "u": 30,
	"i": 33, "o": 38, "p": 41,
	"a": 10, "s": 13, "d": 18, "f": 21, "g": 26, "h": 29, "j": 34,
	"k": 37, "l": 42,
	"z": 12, "x": 19, "c": 20, "v": 27, "b": 28, "n": 35, "m": 36,
	"arrow-left": kb.CBM_KEY_ARROW_LEFT,
	"ctrl":       kb.CBM_KEY_CONTROL_LEFT,
	"run-stop":   kb.CBM_KEY_RUN_STOP,
	"space":      kb.CBM_KEY_SPACE,
	"cbm":        kb.CBM_KEY_CBM,
	"lshift":     kb.CBM_KEY_SHIFT_LEFT,
	"plus":       kb.CBM_KEY_PLUS,
	"comma":      kb.CBM_KEY_COMMA,
	"period":     kb.CBM_KEY_PERIOD,
	"colon":      kb.CBM_KEY_COLON,
	"at":         kb.CBM_KEY_COMMERCIAL_AT,
	"minus":      kb.CBM_KEY_MINUS,
	"sterling":   kb.CBM_KEY_STERLING,
	"asterisk":   kb.CBM_KEY_ASTERISK,
	"semicolon":  kb.CBM_KEY_SEMICOLON,
	"slash":      kb.CBM_KEY_SLASH,
	"rshift":     kb.CBM_KEY_SHIFT_RIGHT,
	"equal":      kb.CBM_KEY_EQUAL,
	"arrow-up":   kb.CBM_KEY_ARROW_UP,
	"home":       kb.CBM_KEY_HOME,
	"del":        kb.CBM_KEY_DEL,
	"return":     kb.CBM_KEY_RETURN,
	"crsr-right": kb.CBM_KEY_CRSR_RIGHT,
	"crsr-down":  kb.CBM_KEY_CRSR_DOWN,
	"f1":         kb.CBM_KEY_F1,
	"f3":         kb.CBM_KEY_F3,
	"f5":         kb.CBM_KEY_F5,
	"f7":         kb.CBM_KEY_F7,
	"restore":    kb.CBM_KEY_RESTORE,
}

// posLabels is the inverse of keyNames for rendering the matrix grid.
var posLabels = func() [sim.NumKeys]string {
	var labels [sim.NumKeys]string
	for name, pos := range keyNames {
		short := name
		switch name {
		case "arrow-left":
			short = "<-"
		case "arrow-up":
			short = "^"
		case "run-stop":
			short = "r/s"
		case "crsr-right":
			short = "cr>"
		case "crsr-down":
			short = "crv"
		case "sterling":
			short = "lb"
		case "semicolon":
			short = ";"
		case "asterisk":
			short = "*"
		case "colon":
			short = ":"
		case "comma":
			short = ","
		case "period":
			short = "."
		case "slash":
			short = "/"
		case "plus":
			short = "+"
		case "minus":
			short = "-"
		case "equal":
			short = "="
		case "lshift", "rshift":
			short = "sh"
		case "return":
			short = "ret"
		case "space":
			short = "sp"
		}
		labels[pos] = short
	}
	return labels
}()

// Monitor represents the UI state
type Monitor struct {
	matrix *sim.Matrix
	clock  *sim.Clock
	kbd    *kb.Keyboard
	pump   *kb.Pump

	width  int
	height int

	lastModifier uint8
	lastKeys     [6]uint8
	reports      []string
	leds         uint8

	keyInput    textinput.Model
	showingTogl bool
}

// Define some basic styles
var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	pending   = lipgloss.AdaptiveColor{Light: "#FFB454", Dark: "#FFB454"}

	titleStyle = lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 1)

	matrixStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(highlight).
			Padding(1)

	reportStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(special).
			Padding(1).
			Width(44)

	openStyle = lipgloss.NewStyle().
			Foreground(subtle)

	pressedStyle = lipgloss.NewStyle().
			Background(highlight).
			Foreground(lipgloss.Color("#ffffff"))

	pendingStyle = lipgloss.NewStyle().
			Foreground(pending)

	profileStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true)

	capsOnStyle = lipgloss.NewStyle().
			Background(special).
			Foreground(lipgloss.Color("#000000")).
			Padding(0, 1)

	capsOffStyle = lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 1)
)

// Initialize the monitor
func NewMonitor(mister bool) *Monitor {
	matrix := sim.NewMatrix()
	clock := sim.NewClock()
	kbd := kb.New(matrix, clock)
	kbd.Init()
	kbd.SetMister(mister)

	ti := textinput.New()
	ti.Placeholder = "key name (e.g. lshift, crsr-right, a)"
	ti.CharLimit = 12
	ti.Width = 36

	return &Monitor{
		matrix:   matrix,
		clock:    clock,
		kbd:      kbd,
		pump:     kb.NewPump(clock, 8000),
		keyInput: ti,
	}
}

func (m Monitor) Init() tea.Cmd {
	return doScan()
}

func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case scanTick:
		// Run 16ms worth of scan-interval steps. Each scan's column
		// settle delays also advance the simulated clock.
		for i := 0; i < 16000/kb.SCAN_INTERVAL_US; i++ {
			m.clock.Advance(kb.SCAN_INTERVAL_US)
			m.kbd.Task()
			if m.pump.Ready() {
				modifier, keys := m.kbd.Report()
				if modifier != m.lastModifier || keys != m.lastKeys {
					m.lastModifier = modifier
					m.lastKeys = keys
					m.reports = append(m.reports, formatReport(modifier, keys))
					if len(m.reports) > 12 {
						m.reports = m.reports[len(m.reports)-12:]
					}
				}
			}
		}
		return m, doScan()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if m.showingTogl {
			switch msg.Type {
			case tea.KeyEnter:
				if pos, ok := keyNames[strings.ToLower(m.keyInput.Value())]; ok {
					if m.matrix.IsPressed(pos) {
						m.matrix.Release(pos)
					} else {
						m.matrix.Press(pos)
					}
				}
				m.keyInput.SetValue("")
				m.showingTogl = false
				return m, nil
			case tea.KeyEsc:
				m.showingTogl = false
				return m, nil
			}
			var cmd tea.Cmd
			m.keyInput, cmd = m.keyInput.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "t":
			m.showingTogl = true
			m.keyInput.Focus()
			return m, textinput.Blink
		case "c":
			// There is no USB host here to set the output report, so
			// the LED byte is toggled by hand, like kbemu's CAPS key.
			m.leds ^= hid.LED_CAPSLOCK
		case "r":
			m.matrix.ReleaseAll()
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func formatReport(modifier uint8, keys [6]uint8) string {
	return fmt.Sprintf("mod=%02X keys=[%02X %02X %02X %02X %02X %02X]",
		modifier, keys[0], keys[1], keys[2], keys[3], keys[4], keys[5])
}

func (m Monitor) formatMatrix() string {
	var result strings.Builder
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			idx := row*8 + col
			label := posLabels[idx]
			if label == "" {
				label = "?"
			}
			cell := fmt.Sprintf("%3s", label)
			status, _ := m.kbd.State(idx)
			switch {
			case status == 0:
				result.WriteString(openStyle.Render(cell))
			case status == 1:
				result.WriteString(pressedStyle.Render(cell))
			default:
				result.WriteString(pendingStyle.Render(cell))
			}
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}
	status, _ := m.kbd.State(kb.CBM_KEY_RESTORE)
	restore := "restore"
	if status == 1 {
		result.WriteString(pressedStyle.Render(restore))
	} else {
		result.WriteString(openStyle.Render(restore))
	}
	return result.String()
}

func (m Monitor) formatReports() string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("modifier: %08b\n", m.lastModifier))
	if kb.WakesHost(m.lastModifier, m.lastKeys) {
		result.WriteString("wake: yes\n\n")
	} else {
		result.WriteString("wake: no\n\n")
	}
	for _, r := range m.reports {
		result.WriteString(r)
		result.WriteString("\n")
	}
	return result.String()
}

func (m Monitor) View() string {
	profile := "ASCII"
	if m.kbd.IsMister() {
		profile = "MiSTer"
	}

	caps := capsOffStyle.Render("caps")
	if m.leds&hid.LED_CAPSLOCK != 0 {
		caps = capsOnStyle.Render("caps")
	}
	title := titleStyle.Render("cbm2usb monitor") + " " +
		profileStyle.Render(profile) + " " + caps

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		matrixStyle.Render(m.formatMatrix()),
		reportStyle.Render(m.formatReports()),
	)

	help := titleStyle.Render("t: toggle key  c: caps led  r: release all  q: quit")
	body := lipgloss.JoinVertical(lipgloss.Left, title, panes, help)

	if m.showingTogl {
		body = lipgloss.JoinVertical(lipgloss.Left, body,
			titleStyle.Render("toggle: ")+m.keyInput.View())
	}
	return body
}

func main() {
	mister := flag.Bool("mister", false, "start in the MiSTer profile")
	flag.Parse()

	p := tea.NewProgram(*NewMonitor(*mister))
	if _, err := p.Run(); err != nil {
		fmt.Println(err)
	}
}
