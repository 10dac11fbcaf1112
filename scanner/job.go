package scanner

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"

	"github.com/ugparu/mediacarve"
	"github.com/ugparu/mediacarve/utils/bits"
	"github.com/ugparu/mediacarve/utils/logger"
)

type StartedAlreadyError struct{}

func (*StartedAlreadyError) Error() string {
	return "started already"
}

type StartedAfterCloseError struct{}

func (*StartedAfterCloseError) Error() string {
	return "start after close"
}

var errFinished = errors.New("finished")

// Job scans the regions of one source in the background, a region per step.
// Closing a job stops it between or inside regions and releases the source.
type Job struct {
	ID uuid.UUID

	s       *Scanner
	data    []byte
	regions []Region
	release func()

	mu      sync.Mutex
	next    int
	results []Result
	err     error

	ctx                context.Context
	cancel             context.CancelFunc
	stopChan, doneChan chan struct{}
	startOnce          sync.Once
	closeOnce          sync.Once
}

// Status is a snapshot of a job.
type Status struct {
	ID       uuid.UUID
	Regions  int
	Scanned  int
	Finished bool
	Blocks   []*mediacarve.Block
	Err      error
}

// NewJob returns a job over data. release, when set, is called once the job
// is closed and nothing reads data any more.
func (s *Scanner) NewJob(data []byte, regions []Region, release func()) *Job {
	ctx, cancel := context.WithCancel(context.Background())
	return &Job{
		ID:       uuid.New(),
		s:        s,
		data:     data,
		regions:  regions,
		release:  release,
		ctx:      ctx,
		cancel:   cancel,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

func (j *Job) String() string {
	return "JOB " + j.ID.String()
}

// Start launches the job. A job starts at most once and never after Close.
func (j *Job) Start() (err error) {
	select {
	case <-j.stopChan:
		return &StartedAfterCloseError{}
	default:
		err = &StartedAlreadyError{}
	}
	j.startOnce.Do(func() {
		logger.Debugf(j, "starting, %d regions", len(j.regions))
		err = nil
		go j.process()
	})
	return err
}

func (j *Job) process() {
	defer close(j.doneChan)
	for {
		if err := j.safeStep(); err != nil {
			switch {
			case errors.Is(err, errFinished):
				logger.Debugf(j, "finished")
				return
			case errors.Is(err, context.Canceled):
				logger.Debugf(j, "closed")
			default:
				logger.Warningf(j, "Detected error: %s", err.Error())
			}
			j.mu.Lock()
			j.err = err
			j.mu.Unlock()
			return
		}
	}
}

func (j *Job) safeStep() (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(j, "Panic detected! Recovering from: %v", r)
			logger.Errorf(j, "%s", debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return j.step()
}

// step scans the next region.
func (j *Job) step() error {
	select {
	case <-j.stopChan:
		return context.Canceled
	default:
	}
	j.mu.Lock()
	i := j.next
	j.mu.Unlock()
	if i >= len(j.regions) {
		return errFinished
	}

	r := j.regions[i]
	blocks, err := j.s.Scan(j.ctx, bits.NewCursor(j.data), r.From, r.To)
	if err != nil {
		return fmt.Errorf("region %d..%d: %w", r.From, r.To, err)
	}
	j.mu.Lock()
	j.results = append(j.results, Result{ID: j.ID, Region: r, Blocks: blocks})
	j.next++
	j.mu.Unlock()
	return nil
}

// Close stops the job, waits for it and releases the source.
func (j *Job) Close() {
	j.closeOnce.Do(func() {
		close(j.stopChan)
		j.cancel()
		j.startOnce.Do(func() {
			close(j.doneChan)
		})
		<-j.doneChan
		if j.release != nil {
			j.release()
		}
	})
}

// Done is closed once the job stopped, finished or failed.
func (j *Job) Done() <-chan struct{} {
	return j.doneChan
}

// Status returns the progress and the blocks of the regions scanned so far.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()

	st := Status{
		ID:      j.ID,
		Regions: len(j.regions),
		Scanned: j.next,
		Blocks:  Merge(j.results),
		Err:     j.err,
	}
	select {
	case <-j.doneChan:
		st.Finished = true
	default:
	}
	return st
}

// Merge joins region results in source order. A block starting inside the
// span of an earlier one was found again from a later region and is dropped.
func Merge(results []Result) []*mediacarve.Block {
	var (
		res []*mediacarve.Block
		end int64
	)
	for _, r := range results {
		for _, b := range r.Blocks {
			if len(res) > 0 && b.Offset < end {
				continue
			}
			res = append(res, b)
			end = max(end, b.Resume)
		}
	}
	return res
}
