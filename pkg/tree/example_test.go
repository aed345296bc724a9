package tree_test

import (
	"fmt"

	"github.com/matzehuels/parsimony/pkg/tree"
)

func ExampleOrient() {
	// ((0,1),(2,3)) with internal nodes 4 and 5.
	t, _ := tree.New(4, [][]int{{4}, {4}, {5}, {5}, {0, 1, 5}, {2, 3, 4}})
	r, _ := tree.Orient(t)

	fmt.Println("root:", r.Root())
	fmt.Println("root children:", r.Left(r.Root()), r.Right(r.Root()))
	fmt.Println("order:", r.Order)
	// Output:
	// root: 6
	// root children: 5 2
	// order: [6 5 2 3 4 0 1]
}

func ExampleUnrooted_Moves() {
	t, _ := tree.New(4, [][]int{{4}, {4}, {5}, {5}, {0, 1, 5}, {2, 3, 4}})
	for _, m := range t.Moves() {
		fmt.Println(m, "->", t.Interchange(m))
	}
	// Output:
	// 4-5 swap 0<->2 -> 0:[5] 1:[4] 2:[4] 3:[5] 4:[2 1 5] 5:[0 3 4]
	// 4-5 swap 0<->3 -> 0:[5] 1:[4] 2:[5] 3:[4] 4:[3 1 5] 5:[2 0 4]
}
