package spath

import (
	"slices"
	"strings"
)

// IsInitialized reports whether p was produced by parsing or combining,
// as opposed to being the zero value.
func (p Path) IsInitialized() bool { return p.initialized }

// IsRelative reports whether p is relative.
func (p Path) IsRelative() bool { return p.relative }

// Style returns the style p was parsed with.
func (p Path) Style() Style { return p.style }

// Volume returns the volume designator without the trailing colon, or "".
func (p Path) Volume() string { return p.volume }

// Depth returns the number of segments.
func (p Path) Depth() int { return len(p.segments) }

// Segments returns a copy of the segments.
func (p Path) Segments() []string { return slices.Clone(p.segments) }

// IsEmpty reports whether p has no segments.
func (p Path) IsEmpty() bool { return len(p.segments) == 0 }

// IsRoot reports whether p is an absolute path with no segments.
func (p Path) IsRoot() bool { return p.initialized && !p.relative && len(p.segments) == 0 }

// FileName returns the last segment.
func (p Path) FileName() (string, error) {
	if !p.initialized {
		return "", ErrUninitialized
	}
	if len(p.segments) == 0 {
		return "", ErrRoot
	}
	return p.segments[len(p.segments)-1], nil
}

// Extension returns the extension of the last segment including the dot, or "".
func (p Path) Extension() (string, error) {
	name, err := p.FileName()
	if err != nil {
		return "", err
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:], nil
	}
	return "", nil
}

// FileNameWithoutExtension returns the last segment with its extension removed.
func (p Path) FileNameWithoutExtension() (string, error) {
	name, err := p.FileName()
	if err != nil {
		return "", err
	}
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i], nil
	}
	return name, nil
}

// HasExtension reports whether the last segment carries one of exts. The
// comparison ignores case and a missing leading dot.
func (p Path) HasExtension(exts ...string) bool {
	ext, err := p.Extension()
	if err != nil {
		return false
	}
	for _, e := range exts {
		if strings.EqualFold(withDot(e), ext) {
			return true
		}
	}
	return false
}

// ChangeExtension replaces the extension of the last segment. An empty ext
// removes it.
func (p Path) ChangeExtension(ext string) (Path, error) {
	name, err := p.FileNameWithoutExtension()
	if err != nil {
		return Path{}, err
	}
	if ext != "" {
		name += withDot(ext)
	}
	segments := slices.Clone(p.segments)
	segments[len(segments)-1] = name
	return p.with(segments), nil
}

func withDot(ext string) string {
	if strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// Equal reports whether p and other name the same path. Volumes and segments
// compare exactly when both styles are case-sensitive and ignore case
// otherwise.
func (p Path) Equal(other Path) bool {
	if p.initialized != other.initialized {
		return false
	}
	if !p.initialized {
		return true
	}
	if p.relative != other.relative || len(p.segments) != len(other.segments) {
		return false
	}
	fold := p.folder(other)
	if fold(p.volume) != fold(other.volume) {
		return false
	}
	for i := range p.segments {
		if fold(p.segments[i]) != fold(other.segments[i]) {
			return false
		}
	}
	return true
}

// folder returns the comparison mapping for a pair of paths.
func (p Path) folder(other Path) func(string) string {
	if p.style.CaseSensitive() && other.style.CaseSensitive() {
		return Unix.fold
	}
	return Windows.fold
}

func (p Path) sameVolume(other Path) bool {
	fold := p.folder(other)
	return fold(p.volume) == fold(other.volume)
}

// Key returns a string usable as a map key. Two paths of the same style
// have equal keys exactly when Equal reports true.
func (p Path) Key() string {
	if !p.initialized {
		return ""
	}
	var sb strings.Builder
	if p.relative {
		sb.WriteByte('r')
	} else {
		sb.WriteByte('a')
	}
	sb.WriteString(p.style.fold(p.volume))
	sb.WriteByte(':')
	for _, seg := range p.segments {
		sb.WriteByte('/')
		sb.WriteString(p.style.fold(seg))
	}
	return sb.String()
}

// Compare orders paths by their native string form, ignoring case for
// case-insensitive styles.
func (p Path) Compare(other Path) int {
	fold := p.folder(other)
	return strings.Compare(fold(p.String()), fold(other.String()))
}

// String renders p with its native separator.
func (p Path) String() string {
	return p.Format(SlashNative)
}

// Format renders p with the separator chosen by mode.
func (p Path) Format(mode SlashMode) string {
	if !p.initialized {
		return ""
	}
	sep := mode.separator(p.style)
	if p.relative && len(p.segments) == 0 {
		return "."
	}

	var sb strings.Builder
	if p.volume != "" {
		sb.WriteString(p.volume)
		sb.WriteByte(':')
	}
	if !p.relative {
		sb.WriteByte(sep)
	}
	for i, seg := range p.segments {
		if i > 0 {
			sb.WriteByte(sep)
		}
		sb.WriteString(seg)
	}
	out := sb.String()
	// A relative path whose first segment looks like a volume ("c:/x") must
	// not be read back as absolute.
	if p.relative {
		if vol, _ := p.style.splitVolume(out); vol != "" {
			out = "." + string(sep) + out
		}
	}
	return out
}

// Quoted renders p in double quotes.
func (p Path) Quoted(mode SlashMode) string {
	return `"` + p.Format(mode) + `"`
}
