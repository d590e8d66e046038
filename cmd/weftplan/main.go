// Package main provides the weftplan demo CLI.
package main

import (
	"fmt"
	"os"

	"github.com/weft-ml/weft/graph"
	"github.com/weft-ml/weft/runtime/host"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("weftplan %s\n", version)
		return
	}
	if len(os.Args) > 1 && os.Args[1] == "demo" {
		runDemo()
		return
	}

	fmt.Println("weftplan - graph rewrite and memory planning demo")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Build, rewrite, and plan a small example graph")
}

// runDemo builds x -> Transpose -> Transpose -> Opaque(relu) -> out, then
// shows how optimization collapses the inverse-transpose pair before
// planning the arena.
func runDemo() {
	g := graph.New(host.New())

	x := g.NewTensor(graph.Shape{4, 8}, graph.Float32)
	mid := g.NewTensor(graph.Shape{8, 4}, graph.Float32)
	y := g.NewTensor(graph.Shape{4, 8}, graph.Float32)
	out := g.NewTensor(graph.Shape{4, 8}, graph.Float32)

	tr1, err := graph.NewTranspose(x, mid, []int{1, 0})
	must(err)
	tr2, err := graph.NewTranspose(mid, y, []int{1, 0})
	must(err)
	relu := graph.NewOpaque("relu", []*graph.Tensor{y}, []*graph.Tensor{out}, nil)

	g.AddOperator(tr1)
	g.AddOperator(tr2)
	g.AddOperator(relu)

	must(g.ShapeInfer())
	fmt.Println("before optimize:")
	fmt.Println(g)

	g.Optimize()
	must(g.ShapeInfer())
	fmt.Println("\nafter optimize:")
	fmt.Println(g)

	must(g.DataMalloc())
	used, peak := g.AllocatorStats()
	fmt.Printf("\narena: used=%d peak=%d\n", used, peak)
}

func must(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "weftplan:", err)
		os.Exit(1)
	}
}
