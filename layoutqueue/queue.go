// Package layoutqueue is the single-reader bounded queue sitting in front of the layout
// detector. Pages submit inference requests; a fixed number of them (intra_threads, 16 by
// default) may run concurrently, gated by a counting semaphore. A Flush message drains
// whatever is still queued with a cancellation error, while requests already admitted into
// the semaphore run to completion even if their caller has stopped listening.
package layoutqueue

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/rapidpapertrans/docparse/internal/logger"
	"github.com/rapidpapertrans/docparse/internal/pdferr"
	"github.com/rapidpapertrans/docparse/layout"
)

// DefaultIntraThreads mirrors ferrules' ORT_INTRATHREAD: the number of layout inferences
// allowed to run concurrently.
const DefaultIntraThreads = 16

// Request is one page's layout-inference ask.
type Request struct {
	PageID        int
	Tensor        []float32
	OrigWidth     int
	OrigHeight    int
	Ratio         float64
	RescaleFactor float64
	ResponseCh    chan Response
}

// Response is one page's layout result, or the error that prevented it (including
// cancellation via Flush).
type Response struct {
	PageID  int
	Regions []layout.Region
	Err     error
}

type flushMsg struct {
	done chan struct{}
}

// Queue wraps a Detector behind a bounded, semaphore-gated request channel.
type Queue struct {
	detector layout.Detector
	sem      *semaphore.Weighted
	reqCh    chan any // Request or flushMsg
}

// New starts the queue's single reader goroutine. capacity bounds how many requests may
// sit unread in the channel before Push blocks; intraThreads bounds concurrent inference.
func New(detector layout.Detector, capacity, intraThreads int) *Queue {
	if intraThreads <= 0 {
		intraThreads = DefaultIntraThreads
	}
	q := &Queue{
		detector: detector,
		sem:      semaphore.NewWeighted(int64(intraThreads)),
		reqCh:    make(chan any, capacity),
	}
	go q.run()
	return q
}

// Push submits req, blocking until there is room in the queue or ctx is cancelled.
func (q *Queue) Push(ctx context.Context, req Request) error {
	select {
	case q.reqCh <- req:
		return nil
	case <-ctx.Done():
		return pdferr.New(pdferr.KindCancelled, "push to layout queue cancelled", ctx.Err())
	}
}

// Flush drains every request still sitting unread in the queue, delivering a Cancelled
// error to each of their response channels, and returns once the drain completes. Requests
// that have already been admitted past the semaphore are unaffected and keep running.
func (q *Queue) Flush(ctx context.Context) error {
	done := make(chan struct{})
	select {
	case q.reqCh <- flushMsg{done: done}:
	case <-ctx.Done():
		return pdferr.New(pdferr.KindCancelled, "flush cancelled before dispatch", ctx.Err())
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return pdferr.New(pdferr.KindCancelled, "flush cancelled while draining", ctx.Err())
	}
}

func (q *Queue) run() {
	for msg := range q.reqCh {
		switch m := msg.(type) {
		case Request:
			q.dispatch(m)
		case flushMsg:
			q.drainBacklog()
			close(m.done)
		}
	}
}

// dispatch blocks the reader goroutine only long enough to acquire a semaphore slot, then
// runs inference on its own goroutine so the reader can keep servicing the channel.
func (q *Queue) dispatch(req Request) {
	if err := q.sem.Acquire(context.Background(), 1); err != nil {
		req.ResponseCh <- Response{PageID: req.PageID, Err: pdferr.New(pdferr.KindLayoutInference, "acquire inference slot", err)}
		return
	}
	go func() {
		defer q.sem.Release(1)
		start := time.Now()
		regions, err := runInference(q.detector, req)
		logger.Debug("layout inference completed",
			logger.Int("page", req.PageID),
			logger.Int64("duration_ms", time.Since(start).Milliseconds()))
		sendResponse(req.ResponseCh, Response{PageID: req.PageID, Regions: regions, Err: err})
	}()
}

func runInference(detector layout.Detector, req Request) ([]layout.Region, error) {
	raw, err := detector.Infer(context.Background(), req.Tensor)
	if err != nil {
		return nil, pdferr.New(pdferr.KindLayoutInference, "layout inference failed", err).WithPage(req.PageID)
	}
	regions := layout.ExtractRegions(raw, req.OrigWidth, req.OrigHeight, req.Ratio, req.RescaleFactor)
	return layout.NMS(regions, layout.IoUThreshold), nil
}

// sendResponse tolerates a dropped/abandoned response channel: a full unbuffered channel
// with no reader (the caller gave up after a Flush elsewhere) must not leak this goroutine.
func sendResponse(ch chan Response, resp Response) {
	select {
	case ch <- resp:
	default:
		go func() {
			select {
			case ch <- resp:
			case <-time.After(time.Second):
			}
		}()
	}
}

func (q *Queue) drainBacklog() {
	for {
		select {
		case msg := <-q.reqCh:
			switch m := msg.(type) {
			case Request:
				sendResponse(m.ResponseCh, Response{
					PageID: m.PageID,
					Err:    pdferr.New(pdferr.KindCancelled, "layout queue flushed", nil).WithPage(m.PageID),
				})
			case flushMsg:
				close(m.done)
			}
		default:
			return
		}
	}
}
