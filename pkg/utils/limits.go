package utils

import (
	"os"
	"strconv"
)

// DefaultSemaphoreLimit bounds fan-out when the caller passes a non-positive limit.
const DefaultSemaphoreLimit = 4

// GetSemaphoreLimit returns the semaphore limit from the SEMAPHORE_LIMIT environment
// variable, or DefaultSemaphoreLimit when unset or invalid.
func GetSemaphoreLimit() int {
	val := os.Getenv("SEMAPHORE_LIMIT")
	if val == "" {
		return DefaultSemaphoreLimit
	}
	limit, err := strconv.Atoi(val)
	if err != nil || limit <= 0 {
		return DefaultSemaphoreLimit
	}
	return limit
}
