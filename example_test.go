package parley_test

import (
	"context"
	"fmt"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/dsl"
	"github.com/aretw0/parley/pkg/runner"
)

func Example() {
	b := dsl.New("greeting")
	b.Node("greeting").
		Task("Greet the user and offer to help.").
		Go("done_helping", "Call when the user is helped.", "farewell")
	b.Node("farewell").
		Task("Say goodbye.")

	cfg, err := b.Build()
	if err != nil {
		fmt.Println(err)
		return
	}

	host := runner.NewHost("demo")
	scenario, err := parley.New(cfg, host, "demo")
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	if err := scenario.Start(ctx); err != nil {
		fmt.Println(err)
		return
	}

	node, _ := scenario.CurrentNode()
	fmt.Println("node:", node)

	if _, err := host.Execute(ctx, "done_helping", nil); err != nil {
		fmt.Println(err)
		return
	}

	node, _ = scenario.CurrentNode()
	fmt.Println("node:", node)

	// Output:
	// node: greeting
	// node: farewell
}
