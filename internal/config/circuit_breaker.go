package config

import (
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// NewCircuitBreaker builds the breaker guarding calls to an upstream dependency.
// onChange, when set, is told about every state transition.
func NewCircuitBreaker(name string, onChange func(to gobreaker.State)) *gobreaker.CircuitBreaker {
	var timeout time.Duration

	switch name {
	case "Audit-Publisher":
		timeout = time.Second * 30
	default:
		// Parking backend: go half-open quickly, it is the only data source
		timeout = time.Second * 10
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Second * 10,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Open circuit after 3 consecutive failures
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("[CRITICAL] Circuit Breaker %s: %s -> %s", name, from, to)
			if onChange != nil {
				onChange(to)
			}
		},
	})
}
