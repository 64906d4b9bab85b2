package filehandler_test

import (
	"context"
	"fmt"

	"github.com/asger60/filehandler"
	"github.com/asger60/filehandler/codec"
	"github.com/asger60/filehandler/mount"
	"github.com/asger60/filehandler/storage"
)

type Profile struct {
	codec.Header
	Name  string `json:"name"`
	Level int    `json:"level"`
}

func Example() {
	ctx := context.Background()
	svc, err := filehandler.Open(storage.NewMemory(storage.Linux), filehandler.DefaultConfig())
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	if err := svc.Save(ctx, "profile", &Profile{Header: codec.NewHeader(), Name: "ada", Level: 7}); err != nil {
		panic(err)
	}

	p, res, err := filehandler.Load(ctx, svc, "profile", &Profile{Header: codec.NewHeader()})
	if err != nil {
		panic(err)
	}
	fmt.Println(res.Status, res.Path)
	fmt.Println(p.Name, p.Level)
	// Output:
	// loaded /home/player/.local/share/filehandler/profile.far
	// ada 7
}

func ExampleLoad_corrupt() {
	ctx := context.Background()
	mem := storage.NewMemory(storage.Linux)
	mp, _ := mount.NewDirect(mem, "/saves")
	svc, _ := filehandler.New(mp)
	defer svc.Close()

	_ = mem.CreateDirectory("/saves")
	_ = mem.WriteAllBytes("/saves/profile.far", []byte{codec.Sentinel})

	p, res, _ := filehandler.Load[Profile](ctx, svc, "profile", nil)
	exists, _ := mem.FileExists("/saves/profile.far")
	fmt.Println(res.Status, p.FileVersion(), exists)
	// Output:
	// corrupt 3 false
}

func ExampleService_Close() {
	ctx := context.Background()
	mem := storage.NewMemory(storage.Console)
	mp, _ := mount.NewThrottled(mem, "rytmos", mount.WithBudget(mount.Budget{MaxWrites: 1}))
	svc, _ := filehandler.New(mp)

	for _, name := range []string{"a", "b", "c"} {
		_ = svc.Save(ctx, name, &Profile{Header: codec.NewHeader(), Name: name})
	}
	fmt.Println("pending:", svc.Pending())

	_ = svc.Close()
	fmt.Println("pending:", svc.Pending(), "writes:", mem.WriteCount())
	// Output:
	// pending: 2
	// pending: 0 writes: 3
}
