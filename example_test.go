package tandem_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/tandem"
	"github.com/aretw0/tandem/pkg/adapters/vfs"
)

// ExampleNew_memory evaluates a document held in memory instead of on disk.
func ExampleNew_memory() {
	fs, err := vfs.NewMemory(map[string]string{
		"file:///site/hello.pc": `<h1>Hello {name}</h1>`,
	})
	if err != nil {
		log.Fatal(err)
	}

	eng, err := tandem.New("/site",
		tandem.WithFileSystem(fs),
		tandem.WithData(map[string]any{"name": "World"}),
	)
	if err != nil {
		log.Fatal(err)
	}

	html, err := eng.Render(context.Background(), eng.URI("hello.pc"), "")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(html)
	// Output:
	// <h1 data-pc-9bb462bb=""><style></style>Hello World</h1>
}
