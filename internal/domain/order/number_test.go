package order

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var numberPattern = regexp.MustCompile(`^ORD-\d{13}-[0-9A-Z]{5}$`)

func TestNewNumber_Shape(t *testing.T) {
	n := NewNumber()
	assert.Regexp(t, numberPattern, n)
}

func TestNewNumberAt_TimeComponent(t *testing.T) {
	at := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	n := NewNumberAt(at)

	parts := strings.Split(n, "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "ORD", parts[0])

	millis, err := strconv.ParseInt(parts[1], 10, 64)
	require.NoError(t, err)
	assert.Equal(t, at.UnixMilli(), millis)
}

func TestNewNumber_UniqueUnderConcurrency(t *testing.T) {
	const perGoroutine = 200
	const goroutines = 8

	var mu sync.Mutex
	seen := make(map[string]struct{}, perGoroutine*goroutines)

	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perGoroutine)
			for range perGoroutine {
				local = append(local, NewNumber())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, n := range local {
				seen[n] = struct{}{}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, perGoroutine*goroutines, "all generated numbers must be distinct")
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		ok   bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusProcessing, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusShipped, StatusCancelled, true},
		{StatusPending, StatusProcessing, false}, // skips a step
		{StatusConfirmed, StatusPending, false},  // backward
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusDelivered, StatusDelivered, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []Status{
		StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled,
	} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, Status("archived").Valid())
	assert.False(t, Status("").Valid())
}
