package util

import "runtime"

// ReasonableThreadCount returns the number of encoder threads to use.
// Machines with fewer than 5 logical CPUs get 2; larger ones keep 2 CPUs free.
func ReasonableThreadCount() int {
	return threadCountFor(runtime.NumCPU())
}

func threadCountFor(total int) int {
	if total < 5 {
		return 2
	}
	return total - 2
}
