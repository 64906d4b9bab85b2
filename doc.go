// Package filehandler persists versioned application state by name.
//
// A Service encodes records with a codec.Envelope, stages the bytes in a
// per-name save buffer and commits them through a mount.MountPoint. Desktop
// platforms write straight to an application-data directory; console
// platforms queue writes and commit them under a byte and write budget.
//
// # Quick Start
//
//	type Profile struct {
//		codec.Header
//		Name  string `json:"name"`
//		Level int    `json:"level"`
//	}
//
//	cfg := filehandler.DefaultConfig()
//	svc, _ := filehandler.Open(storage.NewLocal(), cfg)
//	defer svc.Close()
//
//	_ = svc.Save(ctx, "profile", &Profile{Header: codec.NewHeader(), Name: "ada"})
//	p, res, _ := filehandler.Load(ctx, svc, "profile", &Profile{Header: codec.NewHeader()})
//
// # Load outcomes
//
// Load never fails because of bad data. A missing or empty save returns the
// fallback. A save that does not decode is deleted and the fallback is
// returned with StatusCorrupt. A save whose stored version is older than
// the fallback's is reported as StatusDeprecated and the fallback wins.
//
// # File format
//
//	compressed:   0xDE <gzip|zstd|lz4 frame of the text>
//	uncompressed: <text>
//
// The text is JSON by default and always carries "fileVersion". Release
// builds compress; debug builds write plain text unless compression is
// forced.
//
// # Shutdown
//
// Close drains every queued write regardless of budget. DrainOnSignal ties
// that drain to SIGINT/SIGTERM.
package filehandler
