package search

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harmonia-fm/harmonia/internal/models"
)

// event is a queued index mutation. An event with a nil song and an ack
// channel is a flush marker.
type event struct {
	song   *models.Song // nil for removals
	songID string
	ack    chan struct{}
}

// Updater is the deferred pathway into the index: it implements [Notifier]
// by queueing events and applying them on a background goroutine. Deferred
// writers (bulk import) use it so catalog throughput is not coupled to index
// writes; interactive mutations go through the [Index] directly for
// read-your-writes.
//
// Staleness is bounded: the worker applies each event as soon as it is
// dequeued. When the queue is full, enqueueing blocks up to the staleness
// budget for the worker to catch up, keeping events for the same song in
// order; only a stalled worker forces the inline fallback, which can apply
// an event ahead of ones still queued.
type Updater struct {
	index     *Index
	events    chan event
	staleness time.Duration
	logger    *log.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewUpdater creates an Updater draining into the given index and starts its
// worker goroutine. Close must be called to stop it.
func NewUpdater(index *Index, queueSize int, staleness time.Duration, logger *log.Logger) *Updater {
	if queueSize <= 0 {
		queueSize = 256
	}
	if staleness <= 0 {
		staleness = time.Second
	}

	u := &Updater{
		index:     index,
		events:    make(chan event, queueSize),
		staleness: staleness,
		logger:    logger,
		done:      make(chan struct{}),
	}

	go u.run()
	return u
}

// SongUpserted implements [Notifier] by queueing a reindex.
func (u *Updater) SongUpserted(song *models.Song) {
	u.enqueue(event{song: song, songID: song.ID()})
}

// SongRemoved implements [Notifier] by queueing a removal.
func (u *Updater) SongRemoved(songID string) {
	u.enqueue(event{songID: songID})
}

func (u *Updater) enqueue(ev event) {
	select {
	case u.events <- ev:
		return
	default:
	}

	// Queue full: wait for the worker to catch up rather than applying
	// inline immediately. An immediate inline apply could run a removal
	// ahead of a queued upsert for the same song.
	stall := time.NewTimer(u.staleness)
	defer stall.Stop()
	select {
	case u.events <- ev:
	case <-stall.C:
		if u.logger != nil {
			u.logger.Warn("search index updater stalled, applying update out of order", "song_id", ev.songID)
		}
		u.apply(ev)
	}
}

func (u *Updater) apply(ev event) {
	switch {
	case ev.ack != nil:
		close(ev.ack)
	case ev.song != nil:
		u.index.Reindex(ev.song)
	default:
		u.index.Remove(ev.songID)
	}
}

func (u *Updater) run() {
	// The staleness budget is enforced structurally: events are applied in
	// arrival order with no batching delay, so the window is queue latency
	// only. The timer just surfaces a warning if the worker ever stalls.
	stall := time.NewTimer(u.staleness)
	defer stall.Stop()

	for {
		select {
		case ev, ok := <-u.events:
			if !ok {
				close(u.done)
				return
			}
			u.apply(ev)
			if !stall.Stop() {
				select {
				case <-stall.C:
				default:
				}
			}
			stall.Reset(u.staleness)
		case <-stall.C:
			if u.logger != nil && len(u.events) > 0 {
				u.logger.Warn("search index updater stalled", "pending", len(u.events), "budget", u.staleness)
			}
			stall.Reset(u.staleness)
		}
	}
}

// Flush blocks until every event enqueued before the call has been applied.
func (u *Updater) Flush() {
	marker := make(chan struct{})
	u.events <- event{ack: marker}
	<-marker
}

// Close stops the worker after draining queued events.
func (u *Updater) Close() {
	u.closeOnce.Do(func() {
		close(u.events)
		<-u.done
	})
}
