package timer

import (
	"sync"
	"time"

	"minitimer/internal/core/events"
)

// ticker is a cancellable repeating task. Each tick is handed to dispatch so
// that fn runs on the main context; dispatch must not block waiting for it.
type ticker struct {
	interval time.Duration
	stopCh   chan struct{}
	done     chan struct{}
	once     sync.Once
}

func startTicker(interval time.Duration, dispatch events.Dispatch, fn func()) *ticker {
	t := &ticker{
		interval: interval,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go t.run(dispatch, fn)
	return t
}

func (t *ticker) run(dispatch events.Dispatch, fn func()) {
	defer close(t.done)

	timeTicker := time.NewTicker(t.interval)
	defer timeTicker.Stop()

	for {
		select {
		case <-t.stopCh:
			return
		case <-timeTicker.C:
			dispatch(fn)
		}
	}
}

// stop cancels the task and waits for the loop to exit.
func (t *ticker) stop() {
	t.once.Do(func() {
		close(t.stopCh)
	})
	<-t.done
}

func (binding *Binding) tick() {
	if binding.closed || !binding.entry.Running {
		return
	}

	seconds := binding.entry.ElapsedSeconds(binding.now())
	binding.setDuration(binding.bridge.FormatDuration(seconds))

	binding.bus.Publish(events.Event{Type: events.Tick, At: binding.now()})
}
