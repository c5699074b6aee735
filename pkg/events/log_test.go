package events_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mutantautomate/mutant/pkg/events"
)

func TestLogAppendOnly(t *testing.T) {
	log := events.NewLog()
	assert.Equal(t, 0, log.Len())

	for i := 1; i <= 5; i++ {
		log.Append(events.LogMessage{Text: "line"})
		assert.Equal(t, i, log.Len())
	}

	log.Append(events.Done{}, events.LogMessage{Text: "after"})
	assert.Equal(t, 7, log.Len())
	assert.Equal(t, events.Done{}, log.Events()[5])

	log.Reset()
	assert.Equal(t, 0, log.Len())
	assert.Empty(t, log.Events())

	log.Reset()
	assert.Equal(t, 0, log.Len())
}

func TestLogAppendNothing(t *testing.T) {
	log := events.NewLog()
	calls := 0
	log.Subscribe(func(events.Change) { calls++ })

	log.Append()
	assert.Equal(t, 0, calls)
}

func TestLogEventsIsACopy(t *testing.T) {
	log := events.NewLog()
	log.Append(events.LogMessage{Text: "a"})

	got := log.Events()
	got[0] = events.Done{}

	assert.Equal(t, events.LogMessage{Text: "a"}, log.Events()[0])
}

func TestLogSubscribe(t *testing.T) {
	log := events.NewLog()

	var changes []events.Change
	unsubscribe := log.Subscribe(func(c events.Change) {
		changes = append(changes, c)
	})

	log.Append(events.LogMessage{Text: "a"})
	log.Append(events.LogMessage{Text: "b"}, events.Done{})
	log.Reset()

	require.Len(t, changes, 3)
	assert.Equal(t, []events.Event{events.LogMessage{Text: "a"}}, changes[0].Appended)
	assert.Len(t, changes[0].Events, 1)
	assert.Len(t, changes[1].Appended, 2)
	assert.Len(t, changes[1].Events, 3)
	assert.True(t, changes[2].Reset)
	assert.Empty(t, changes[2].Events)

	// Earlier snapshots are not disturbed by later appends.
	assert.Len(t, changes[0].Events, 1)
	assert.Equal(t, events.LogMessage{Text: "a"}, changes[0].Events[0])

	unsubscribe()
	log.Append(events.LogMessage{Text: "c"})
	assert.Len(t, changes, 3)
}

func TestLogConcurrentAppendKeepsOrderPerWriter(t *testing.T) {
	log := events.NewLog()

	var (
		mu   sync.Mutex
		seen int
	)
	log.Subscribe(func(c events.Change) {
		mu.Lock()
		defer mu.Unlock()
		seen++
		assert.Equal(t, seen, len(c.Events))
	})

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				log.Append(events.LogMessage{Text: "x"})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, log.Len())
	assert.Equal(t, 200, seen)
}
