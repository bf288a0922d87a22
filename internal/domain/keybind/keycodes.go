package keybind

import (
	"fmt"
	"strings"
)

// Modifier bits, matching the editor widget's encoding
const (
	CtrlCmd Binding = 1 << 11
	Shift   Binding = 1 << 10
	Alt     Binding = 1 << 9
	WinCtrl Binding = 1 << 8

	modMask Binding = CtrlCmd | Shift | Alt | WinCtrl
)

var modifiers = map[string]Binding{
	"ctrlcmd": CtrlCmd,
	"shift":   Shift,
	"alt":     Alt,
	"winctrl": WinCtrl,
}

// modifierAliases are accepted only without a namespace prefix
var modifierAliases = map[string]Binding{
	"ctrl":    CtrlCmd,
	"cmd":     CtrlCmd,
	"control": CtrlCmd,
	"option":  Alt,
	"meta":    WinCtrl,
}

var keyCodes = map[string]Binding{}

var keyNames = map[Binding]string{}

func init() {
	named := []struct {
		name string
		code Binding
	}{
		{"Unknown", 0}, {"Backspace", 1}, {"Tab", 2}, {"Enter", 3},
		{"Shift", 4}, {"Ctrl", 5}, {"Alt", 6}, {"PauseBreak", 7},
		{"CapsLock", 8}, {"Escape", 9}, {"Space", 10}, {"PageUp", 11},
		{"PageDown", 12}, {"End", 13}, {"Home", 14}, {"LeftArrow", 15},
		{"UpArrow", 16}, {"RightArrow", 17}, {"DownArrow", 18}, {"Insert", 19},
		{"Delete", 20}, {"Meta", 57}, {"ContextMenu", 58},
		{"NumLock", 83}, {"ScrollLock", 84}, {"Semicolon", 85}, {"Equal", 86},
		{"Comma", 87}, {"Minus", 88}, {"Period", 89}, {"Slash", 90},
		{"Backquote", 91}, {"BracketLeft", 92}, {"Backslash", 93},
		{"BracketRight", 94}, {"Quote", 95}, {"OEM_8", 96}, {"IntlBackslash", 97},
		{"NumpadMultiply", 108}, {"NumpadAdd", 109}, {"NUMPAD_SEPARATOR", 110},
		{"NumpadSubtract", 111}, {"NumpadDecimal", 112}, {"NumpadDivide", 113},
		{"KEY_IN_COMPOSITION", 114}, {"ABNT_C1", 115}, {"ABNT_C2", 116},
		{"AudioVolumeMute", 117}, {"AudioVolumeUp", 118}, {"AudioVolumeDown", 119},
		{"BrowserSearch", 120}, {"BrowserHome", 121}, {"BrowserBack", 122},
		{"BrowserForward", 123}, {"MediaTrackNext", 124}, {"MediaTrackPrevious", 125},
		{"MediaStop", 126}, {"MediaPlayPause", 127}, {"LaunchMediaPlayer", 128},
		{"LaunchMail", 129}, {"LaunchApp2", 130}, {"Clear", 131},
	}
	for _, k := range named {
		register(k.name, k.code)
	}
	for i := 0; i <= 9; i++ {
		register(fmt.Sprintf("Digit%d", i), Binding(21+i))
		register(fmt.Sprintf("Numpad%d", i), Binding(98+i))
	}
	for c := 'A'; c <= 'Z'; c++ {
		register("Key"+string(c), Binding(31+c-'A'))
	}
	for i := 1; i <= 24; i++ {
		register(fmt.Sprintf("F%d", i), Binding(58+i))
	}
}

func register(name string, code Binding) {
	keyCodes[strings.ToLower(name)] = code
	keyNames[code] = name
}
