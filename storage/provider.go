package storage

import (
	"runtime"

	"golang.org/x/text/encoding"

	"github.com/asger60/filehandler/spath"
)

// Platform identifies the kind of medium a Provider talks to.
type Platform uint8

const (
	// Linux is a Unix-like desktop with /proc.
	Linux Platform = iota
	// Mac is a Unix-like desktop without /proc.
	Mac
	// Windows is a drive-letter desktop filesystem.
	Windows
	// Console is a sandboxed, write-constrained save volume addressed as
	// "<mount>:/<file>".
	Console
)

// HostPlatform returns the platform of the running process.
func HostPlatform() Platform {
	switch runtime.GOOS {
	case "windows":
		return Windows
	case "darwin", "ios":
		return Mac
	default:
		return Linux
	}
}

// String returns the platform name.
func (p Platform) String() string {
	switch p {
	case Linux:
		return "linux"
	case Mac:
		return "mac"
	case Windows:
		return "windows"
	case Console:
		return "console"
	default:
		return "unknown"
	}
}

// IsUnix reports whether paths on p behave like Unix paths.
func (p Platform) IsUnix() bool { return p == Linux || p == Mac || p == Console }

// IsWindows reports whether p is Windows-like.
func (p Platform) IsWindows() bool { return p == Windows }

// IsConsole reports whether p is a constrained console save volume.
func (p Platform) IsConsole() bool { return p == Console }

// PathStyle returns the spath style used for paths on p.
func (p Platform) PathStyle() spath.Style {
	switch p {
	case Windows:
		return spath.Windows
	case Console:
		return spath.Console
	default:
		return spath.Unix
	}
}

// Folder names a well-known per-user or per-machine directory.
type Folder uint8

const (
	// FolderHome is the user's home directory.
	FolderHome Folder = iota
	// FolderAppData is the roaming application-data directory.
	FolderAppData
	// FolderLocalAppData is the machine-local application-data directory.
	FolderLocalAppData
	// FolderCommonAppData is the directory shared by all users.
	FolderCommonAppData
	// FolderTemp is the temporary directory.
	FolderTemp
)

// Provider performs byte-level I/O against one concrete medium.
//
// Every path argument must be rooted according to IsRooted. Implementations
// return an *ArgumentError wrapping ErrNotRooted for anything else, before
// touching the medium. Missing entries are reported with errors satisfying
// errors.Is(err, ErrNotFound); collisions with ErrAlreadyExists.
//
// Calls are synchronous and carry no context: a stalled medium blocks the
// caller.
type Provider interface {
	// Platform identifies the medium.
	Platform() Platform
	// IsRooted reports whether path is absolute on this medium.
	IsRooted(path string) bool

	FileExists(path string) (bool, error)
	DirectoryExists(path string) (bool, error)

	ReadAllBytes(path string) ([]byte, error)
	// WriteAllBytes creates or truncates path. The parent directory must exist.
	WriteAllBytes(path string, data []byte) error
	// AppendBytes appends to path, creating it when missing.
	AppendBytes(path string, data []byte) error

	ReadAllText(path string) (string, error)
	WriteAllText(path string, contents string) error
	ReadAllTextEncoding(path string, enc encoding.Encoding) (string, error)
	WriteAllTextEncoding(path string, contents string, enc encoding.Encoding) error
	ReadAllLines(path string) ([]string, error)
	WriteAllLines(path string, lines []string) error
	// AppendLines appends each line followed by '\n'.
	AppendLines(path string, lines ...string) error

	CopyFile(src, dst string, overwrite bool) error
	// MoveFile fails with ErrAlreadyExists when dst exists.
	MoveFile(src, dst string) error
	DeleteFile(path string) error

	// CreateDirectory creates path and any missing parents.
	CreateDirectory(path string) error
	DeleteDirectory(path string, recursive bool) error
	MoveDirectory(src, dst string) error

	// Files lists files in dir whose names match the glob pattern ("*" for
	// all), descending into subdirectories when recursive is set.
	Files(dir, pattern string, recursive bool) ([]string, error)
	// Directories lists subdirectories of dir like Files.
	Directories(dir, pattern string, recursive bool) ([]string, error)

	CurrentDirectory() string
	TempDirectory() string
	SpecialFolder(f Folder) (string, error)
}
