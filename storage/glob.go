package storage

import "path"

// validPattern rejects malformed glob patterns up front so enumeration can
// ignore match errors.
func validPattern(pattern string) error {
	_, err := path.Match(pattern, "")
	return err
}

// globMatch matches a single entry name against pattern.
func globMatch(pattern, name string) bool {
	ok, _ := path.Match(pattern, name)
	return ok
}
