package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ScottSyms/densitytiles/internal/metrics"
	"github.com/ScottSyms/densitytiles/pkg/response"
)

// Semaphore bounds concurrent access to a constrained resource
type Semaphore struct {
	slots chan struct{}
}

// NewSemaphore creates a semaphore admitting limit holders at a time
func NewSemaphore(limit int) *Semaphore {
	return &Semaphore{slots: make(chan struct{}, limit)}
}

// Acquire blocks until a slot is free or done is closed. It reports
// whether a slot was taken.
func (s *Semaphore) Acquire(done <-chan struct{}) bool {
	select {
	case s.slots <- struct{}{}:
		return true
	case <-done:
		return false
	}
}

// Release frees a slot taken by Acquire
func (s *Semaphore) Release() {
	<-s.slots
}

// InFlight returns the number of held slots
func (s *Semaphore) InFlight() int {
	return len(s.slots)
}

// MaxConcurrent queues requests beyond limit until a slot frees up.
// A request whose client goes away while queued gets 503. limit <= 0
// disables the bound.
func MaxConcurrent(limit int) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	sem := NewSemaphore(limit)
	return func(c *gin.Context) {
		if !sem.Acquire(c.Request.Context().Done()) {
			metrics.TileRequestsTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
			response.ServiceUnavailable(c, "Server busy, request cancelled while queued")
			return
		}
		defer sem.Release()

		c.Next()
	}
}
