//go:build debug

package debug

import "fmt"

func init() {
	fmt.Println("WARNING -- DEBUG FLAG IS ON")
}

// Debug reports whether the debug build tag is set.
const Debug = true

// Assert panics if the condition is false.
func Assert(condition bool, message ...string) {
	if !condition {
		if len(message) > 0 {
			panic(message[0])
		}
		panic("assertion failed")
	}
}
