// Package spath implements an immutable path value type with platform-neutral
// semantics.
//
// A [Path] is parsed once and never touches a live filesystem. Parsing splits
// on both '/' and '\', strips a volume designator, and collapses '.' and '..'
// segments:
//
//	p := spath.Unix.MustParse("a/./b/../c") // equal to "a/c"
//	q, _ := spath.Windows.Parse(`C:\Users\me`)
//	save := spath.Console.MustParse("save:/profile.far")
//
// The [Style] decides the volume rule, case sensitivity and native separator:
// Unix and Console compare exactly, Windows ignores case.
//
// Relative paths may keep leading '..' segments; absolute paths may not climb
// above their root ([ErrAboveRoot]). [Path.Combine], [Path.RelativeTo] and
// [Path.CommonParent] implement the path algebra without filesystem access.
// Filesystem-backed conveniences live in the storage package.
package spath
