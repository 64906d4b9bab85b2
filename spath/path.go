package spath

import (
	"errors"
	"iter"
	"slices"
	"strings"
)

var (
	// ErrUninitialized is returned when an operation is invoked on the zero Path.
	ErrUninitialized = errors.New("spath: path is not initialized")

	// ErrAboveRoot is returned when '..' would escape the root of an absolute path.
	ErrAboveRoot = errors.New("spath: cannot '..' past the root")

	// ErrNotRelative is returned when Combine receives an absolute argument.
	ErrNotRelative = errors.New("spath: cannot combine with a non-relative path")

	// ErrNoCommonParent is returned by RelativeTo when the paths share no ancestor.
	ErrNoCommonParent = errors.New("spath: paths do not share a common parent")

	// ErrDifferentVolumes is returned by RelativeTo for absolute paths on different volumes.
	ErrDifferentVolumes = errors.New("spath: paths are on different volumes")

	// ErrMixedRelativity is returned when one path is relative and the other absolute.
	ErrMixedRelativity = errors.New("spath: cannot relate a relative path to an absolute path")

	// ErrRoot is returned by operations that are meaningless on a root or empty path.
	ErrRoot = errors.New("spath: operation is not valid on a root path")
)

const parentSegment = ".."

// Path is an immutable filesystem path value. It never touches a live
// filesystem. The zero value is the uninitialized path, which is distinct
// from both the absolute root ("/") and the empty relative path (".").
type Path struct {
	segments    []string
	volume      string
	relative    bool
	initialized bool
	style       Style
}

// Parse parses text using the Native style.
func Parse(text string) (Path, error) {
	return Native.Parse(text)
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(text string) Path {
	p, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// TryParse parses text and reports whether the result names something, i.e.
// is either non-empty or a root.
func TryParse(text string) (Path, bool) {
	p, err := Parse(text)
	if err != nil {
		return Path{}, false
	}
	return p, !p.IsEmpty() || p.IsRoot()
}

// Parse splits text on both '/' and '\', strips a volume designator and
// collapses '.' and '..' segments.
func (s Style) Parse(text string) (Path, error) {
	volume, rest := s.splitVolume(text)
	relative := volume == "" && (len(rest) == 0 || !isSeparator(rest[0]))

	fields := strings.FieldsFunc(rest, func(r rune) bool { return r == '/' || r == '\\' })
	segments, err := collapse(fields, relative)
	if err != nil {
		return Path{}, err
	}
	return Path{
		segments:    segments,
		volume:      volume,
		relative:    relative,
		initialized: true,
		style:       s,
	}, nil
}

// MustParse is like Parse but panics on error.
func (s Style) MustParse(text string) Path {
	p, err := s.Parse(text)
	if err != nil {
		panic(err)
	}
	return p
}

// collapse resolves '.' and '..'. A '..' removes a preceding non-'..'
// segment; otherwise it is kept for relative paths and rejected for absolute
// ones.
func collapse(inputs []string, relative bool) ([]string, error) {
	stack := make([]string, 0, len(inputs))
	for _, in := range inputs {
		switch in {
		case "", ".":
			continue
		case parentSegment:
			if n := len(stack); n > 0 && stack[n-1] != parentSegment {
				stack = stack[:n-1]
				continue
			}
			if !relative {
				return nil, ErrAboveRoot
			}
		}
		stack = append(stack, in)
	}
	return stack, nil
}

// Combine appends relative parts to p. Every part must be relative. The result
// keeps p's relativity, volume and style.
func (p Path) Combine(parts ...Path) (Path, error) {
	if !p.initialized {
		return Path{}, ErrUninitialized
	}
	all := slices.Clone(p.segments)
	for _, part := range parts {
		if !part.initialized {
			return Path{}, ErrUninitialized
		}
		if !part.relative {
			return Path{}, ErrNotRelative
		}
		all = append(all, part.segments...)
	}
	segments, err := collapse(all, p.relative)
	if err != nil {
		return Path{}, err
	}
	return p.with(segments), nil
}

// CombineStrings parses each part with p's style and combines them.
func (p Path) CombineStrings(parts ...string) (Path, error) {
	paths := make([]Path, 0, len(parts))
	for _, s := range parts {
		part, err := p.style.Parse(s)
		if err != nil {
			return Path{}, err
		}
		paths = append(paths, part)
	}
	return p.Combine(paths...)
}

// with returns a copy of p holding segments.
func (p Path) with(segments []string) Path {
	return Path{
		segments:    segments,
		volume:      p.volume,
		relative:    p.relative,
		initialized: true,
		style:       p.style,
	}
}

func newRelative(style Style, segments []string) Path {
	return Path{segments: segments, relative: true, initialized: true, style: style}
}

// Parent returns p without its last segment.
func (p Path) Parent() (Path, error) {
	if !p.initialized {
		return Path{}, ErrUninitialized
	}
	if len(p.segments) == 0 {
		return Path{}, ErrRoot
	}
	return p.with(slices.Clone(p.segments[:len(p.segments)-1])), nil
}

// Ancestors yields every parent of p, nearest first, ending with the root or
// the empty relative path. It yields nothing for a path with no segments.
func (p Path) Ancestors() iter.Seq[Path] {
	return func(yield func(Path) bool) {
		if !p.initialized {
			return
		}
		for n := len(p.segments) - 1; n >= 0; n-- {
			if !yield(p.with(slices.Clone(p.segments[:n]))) {
				return
			}
		}
	}
}

// IsChildOf reports whether p equals base or lies below it. Both paths must
// be relative or both absolute.
func (p Path) IsChildOf(base Path) (bool, error) {
	if !p.initialized || !base.initialized {
		return false, ErrUninitialized
	}
	if p.relative != base.relative {
		return false, ErrMixedRelativity
	}
	if !p.sameVolume(base) {
		return false, nil
	}
	if base.IsRoot() || p.Equal(base) {
		return true, nil
	}
	if len(base.segments) > len(p.segments) {
		return false, nil
	}
	fold := p.folder(base)
	for i, seg := range base.segments {
		if fold(seg) != fold(p.segments[i]) {
			return false, nil
		}
	}
	return true, nil
}

// RelativeTo returns the relative path leading from base to p.
func (p Path) RelativeTo(base Path) (Path, error) {
	child, err := p.IsChildOf(base)
	if err != nil {
		return Path{}, err
	}
	if child {
		return newRelative(p.style, slices.Clone(p.segments[len(base.segments):])), nil
	}
	if !p.relative && !p.sameVolume(base) {
		return Path{}, ErrDifferentVolumes
	}

	common, ok := p.commonAncestor(base)
	if !ok || (p.relative && common.IsEmpty()) {
		return Path{}, ErrNoCommonParent
	}

	up := len(base.segments) - len(common.segments)
	segments := make([]string, 0, up+len(p.segments)-len(common.segments))
	for range up {
		segments = append(segments, parentSegment)
	}
	segments = append(segments, p.segments[len(common.segments):]...)
	return newRelative(p.style, segments), nil
}

// CommonParent returns the deepest path that both p and other descend from.
// It returns the zero Path when the paths are on different volumes, mix
// relative and absolute forms, or (for relative paths) share only the empty
// root.
func (p Path) CommonParent(other Path) Path {
	if !p.initialized || !other.initialized || p.relative != other.relative {
		return Path{}
	}
	if !p.sameVolume(other) {
		return Path{}
	}
	var common Path
	if child, _ := p.IsChildOf(other); child {
		common = other
	} else if c, ok := p.commonAncestor(other); ok {
		common = c
	}
	if !common.initialized || (p.relative && common.IsEmpty()) {
		return Path{}
	}
	return common
}

// commonAncestor walks p and its ancestors, returning the first one that is
// also an ancestor of other.
func (p Path) commonAncestor(other Path) (Path, bool) {
	candidates := append([]Path{p}, slices.Collect(p.Ancestors())...)
	theirs := slices.Collect(other.Ancestors())
	for _, c := range candidates {
		for _, o := range theirs {
			if c.Equal(o) {
				return c, true
			}
		}
	}
	return Path{}, false
}

// MakeAbsolute resolves a relative p against cwd. Absolute paths are returned
// unchanged.
func (p Path) MakeAbsolute(cwd Path) (Path, error) {
	if !p.initialized {
		return Path{}, ErrUninitialized
	}
	if !p.relative {
		return p, nil
	}
	return cwd.Combine(p)
}

// MakeRelative drops the volume and root of p.
func (p Path) MakeRelative() (Path, error) {
	if !p.initialized {
		return Path{}, ErrUninitialized
	}
	if p.relative {
		return p, nil
	}
	return newRelative(p.style, slices.Clone(p.segments)), nil
}
