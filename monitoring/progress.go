package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar is a tracker of the progress
type ProgressBar struct {
	sync.Mutex

	id        string
	name      string
	startTime time.Time
	total     uint64
	finished  uint64
}

type progressBarView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// IncrementFinished add a certain amount to finished element.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.finished += amount
}

// Finished returns the amount of finished element.
func (b *ProgressBar) Finished() uint64 {
	b.Lock()
	defer b.Unlock()

	return b.finished
}

// Write counts the bytes as finished, so that a bar can follow a reader
// through io.TeeReader.
func (b *ProgressBar) Write(p []byte) (int, error) {
	b.IncrementFinished(uint64(len(p)))
	return len(p), nil
}

func (b *ProgressBar) view() progressBarView {
	b.Lock()
	defer b.Unlock()

	return progressBarView{
		ID:        b.id,
		Name:      b.name,
		StartTime: b.startTime,
		Total:     b.total,
		Finished:  b.finished,
	}
}
