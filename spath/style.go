package spath

import (
	"runtime"
	"strings"
)

// Style selects the platform rules a Path is parsed and compared with.
type Style uint8

const (
	// Unix paths are case-sensitive and use '/'.
	Unix Style = iota
	// Windows paths are case-insensitive and use '\'.
	Windows
	// Console paths live on a mounted save volume ("save:/file"). They are
	// case-sensitive and use '/'.
	Console
)

// Native is the style of the host operating system.
var Native = nativeStyle()

func nativeStyle() Style {
	if runtime.GOOS == "windows" {
		return Windows
	}
	return Unix
}

// String returns the style name.
func (s Style) String() string {
	switch s {
	case Unix:
		return "unix"
	case Windows:
		return "windows"
	case Console:
		return "console"
	default:
		return "unknown"
	}
}

// Separator returns the native separator of the style.
func (s Style) Separator() byte {
	if s == Windows {
		return '\\'
	}
	return '/'
}

// CaseSensitive reports whether segments and volumes compare case-sensitively.
func (s Style) CaseSensitive() bool {
	return s != Windows
}

// fold maps a segment onto its comparison form.
func (s Style) fold(v string) string {
	if s.CaseSensitive() {
		return v
	}
	return strings.ToUpper(v)
}

// splitVolume strips a leading volume designator. Desktop styles accept a
// single ASCII drive letter, the console style accepts a mount name of at
// least two characters. In both cases the colon must be followed by a
// separator.
func (s Style) splitVolume(text string) (volume, rest string) {
	if s == Console {
		idx := strings.IndexByte(text, ':')
		if idx >= 2 && len(text) > idx+1 && isSeparator(text[idx+1]) && !strings.ContainsAny(text[:idx], `/\`) {
			return text[:idx], text[idx+1:]
		}
		return "", text
	}
	if len(text) >= 3 && isDriveLetter(text[0]) && text[1] == ':' && isSeparator(text[2]) {
		return text[:1], text[2:]
	}
	return "", text
}

// IsRooted reports whether text is a platform-meaningful absolute path.
// Console paths are rooted only when they name a mount ("save:/x" or
// "save:\x"); desktop paths are rooted with a drive or a leading separator.
func (s Style) IsRooted(text string) bool {
	vol, rest := s.splitVolume(text)
	if vol != "" {
		return true
	}
	if s == Console {
		return false
	}
	return len(rest) > 0 && isSeparator(rest[0])
}

func isDriveLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}

// SlashMode selects the separator used when rendering a Path.
type SlashMode uint8

const (
	// SlashNative uses the separator of the path's style.
	SlashNative SlashMode = iota
	// SlashForward always uses '/'.
	SlashForward
	// SlashBackward always uses '\'.
	SlashBackward
)

func (m SlashMode) separator(s Style) byte {
	switch m {
	case SlashForward:
		return '/'
	case SlashBackward:
		return '\\'
	default:
		return s.Separator()
	}
}
