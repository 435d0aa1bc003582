package counter_test

import (
	"fmt"

	"github.com/matzehuels/cyclesearch/pkg/core/counter"
)

func ExampleWinding() {
	c, _ := counter.NewWinding(4, 2, counter.DefaultPolicy())
	w := make([]int, c.Width())
	_ = c.Init(w)
	for {
		fmt.Print(w, " ")
		st, _ := c.Next(w)
		if st == counter.Wrapped {
			break
		}
	}
	fmt.Println()
	// Output: [1 0] [2 0] [0 1] [1 1] [2 1] [3 1] [0 2] [1 2] [2 2]
}

func ExampleFactorizations() {
	for _, row := range counter.Factorizations(12, 0) {
		fmt.Println(row)
	}
	// Output:
	// [2 2 3]
	// [3 4 1]
	// [2 6 1]
	// [12 1 1]
}

func ExampleSmallestCommonDivisor() {
	fmt.Println(counter.SmallestCommonDivisor(6, -9, 15))
	fmt.Println(counter.SmallestCommonDivisor(4, 9))
	// Output:
	// 3
	// 1
}
