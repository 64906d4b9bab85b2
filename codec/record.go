package codec

// CurrentVersion is the format version stamped on every record that is
// created or decoded by this build.
const CurrentVersion = 3

// Record is a save payload carrying a format version.
//
// Types usually satisfy it by embedding Header:
//
//	type Profile struct {
//		codec.Header
//		Name string `json:"name"`
//	}
type Record interface {
	// FileVersion returns the version currently held by the record.
	FileVersion() int
	// StampVersion resets the version to CurrentVersion.
	StampVersion()
}

// Header holds the version tag shared by every record.
type Header struct {
	Version int `json:"fileVersion"`
}

// NewHeader returns a header stamped with CurrentVersion.
func NewHeader() Header { return Header{Version: CurrentVersion} }

// FileVersion implements Record.
func (h *Header) FileVersion() int { return h.Version }

// StampVersion implements Record.
func (h *Header) StampVersion() { h.Version = CurrentVersion }
