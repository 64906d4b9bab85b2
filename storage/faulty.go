package storage

import (
	"errors"
	"strings"
	"sync"

	"golang.org/x/text/encoding"
)

// ErrInjected is the default error returned by Faulty.
var ErrInjected = errors.New("storage: injected fault")

// Fault defines the failure behaviour for paths matching a rule.
type Fault struct {
	FailRead   bool
	FailWrite  bool
	FailDelete bool
	// FailAfterBytes fails writes that would push the bytes written to a
	// matching path past this limit. -1 disables the limit.
	FailAfterBytes int64
	Err            error
}

// Faulty wraps a Provider and injects errors for paths that contain a rule's
// pattern. Operations not covered by a rule pass through.
type Faulty struct {
	Provider

	text TextOps

	mu      sync.Mutex
	rules   map[string]Fault
	written map[string]int64
}

var _ Provider = (*Faulty)(nil)

// NewFaulty wraps p, or a fresh Linux Memory provider if p is nil.
func NewFaulty(p Provider) *Faulty {
	if p == nil {
		p = NewMemory(Linux)
	}
	f := &Faulty{
		Provider: p,
		rules:    make(map[string]Fault),
		written:  make(map[string]int64),
	}
	f.text = NewTextOps(f)
	return f
}

// AddRule installs fault for every path containing pattern. When several
// rules match, the longest pattern wins.
func (f *Faulty) AddRule(pattern string, fault Fault) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[pattern] = fault
}

// ClearRules removes every rule and resets per-path byte counters.
func (f *Faulty) ClearRules() {
	f.mu.Lock()
	defer f.mu.Unlock()
	clear(f.rules)
	clear(f.written)
}

func (f *Faulty) match(path string) (Fault, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var (
		best  Fault
		found bool
		plen  = -1
	)
	for pattern, rule := range f.rules {
		if strings.Contains(path, pattern) && len(pattern) > plen {
			best, found, plen = rule, true, len(pattern)
		}
	}
	if found && best.Err == nil {
		best.Err = ErrInjected
	}
	return best, found
}

func (f *Faulty) checkWrite(path string, n int) error {
	fault, ok := f.match(path)
	if !ok {
		return nil
	}
	if fault.FailWrite {
		return pathError("write", path, fault.Err)
	}
	if fault.FailAfterBytes >= 0 {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.written[path]+int64(n) > fault.FailAfterBytes {
			return pathError("write", path, fault.Err)
		}
		f.written[path] += int64(n)
	}
	return nil
}

func (f *Faulty) ReadAllBytes(path string) ([]byte, error) {
	if fault, ok := f.match(path); ok && fault.FailRead {
		return nil, pathError("read", path, fault.Err)
	}
	return f.Provider.ReadAllBytes(path)
}

func (f *Faulty) WriteAllBytes(path string, data []byte) error {
	if err := f.checkWrite(path, len(data)); err != nil {
		return err
	}
	return f.Provider.WriteAllBytes(path, data)
}

func (f *Faulty) AppendBytes(path string, data []byte) error {
	if err := f.checkWrite(path, len(data)); err != nil {
		return err
	}
	return f.Provider.AppendBytes(path, data)
}

func (f *Faulty) CopyFile(src, dst string, overwrite bool) error {
	if fault, ok := f.match(src); ok && fault.FailRead {
		return pathError("read", src, fault.Err)
	}
	if err := f.checkWrite(dst, 0); err != nil {
		return err
	}
	return f.Provider.CopyFile(src, dst, overwrite)
}

func (f *Faulty) DeleteFile(path string) error {
	if fault, ok := f.match(path); ok && fault.FailDelete {
		return pathError("remove", path, fault.Err)
	}
	return f.Provider.DeleteFile(path)
}

func (f *Faulty) DeleteDirectory(path string, recursive bool) error {
	if fault, ok := f.match(path); ok && fault.FailDelete {
		return pathError("remove", path, fault.Err)
	}
	return f.Provider.DeleteDirectory(path, recursive)
}

func (f *Faulty) ReadAllText(path string) (string, error) { return f.text.ReadAllText(path) }

func (f *Faulty) WriteAllText(path string, contents string) error {
	return f.text.WriteAllText(path, contents)
}

func (f *Faulty) ReadAllTextEncoding(path string, enc encoding.Encoding) (string, error) {
	return f.text.ReadAllTextEncoding(path, enc)
}

func (f *Faulty) WriteAllTextEncoding(path string, contents string, enc encoding.Encoding) error {
	return f.text.WriteAllTextEncoding(path, contents, enc)
}

func (f *Faulty) ReadAllLines(path string) ([]string, error) { return f.text.ReadAllLines(path) }

func (f *Faulty) WriteAllLines(path string, lines []string) error {
	return f.text.WriteAllLines(path, lines)
}

func (f *Faulty) AppendLines(path string, lines ...string) error {
	return f.text.AppendLines(path, lines...)
}
