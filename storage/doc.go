// Package storage provides the byte-level I/O layer used for save files.
//
// A Provider talks to one concrete medium: the host filesystem (Local), an
// in-memory tree that can emulate any platform (Memory), or a BadgerDB
// keyspace (see the kvstore subpackage). Faulty wraps any Provider to inject
// failures in tests.
//
// Providers only accept rooted paths. FS layers path-level conveniences on
// top of a Provider, working with spath.Path values and resolving relative
// paths against the provider's current directory:
//
//	fs := storage.NewFS(storage.NewLocal())
//	dir, _ := fs.CreateTempDirectory("saves")
//	file, _ := dir.CombineStrings("profile.far")
//	_ = fs.WriteAllBytes(file, data)
package storage
