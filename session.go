package sapling

import (
	"context"
	"sync"
)

// Session identifies one recalculation pass. The zero Session stands for
// "no pass" and is current only while no pass is running.
type Session struct {
	id uint64
}

// IsZero reports whether s is the zero Session.
func (s Session) IsZero() bool {
	return s.id == 0
}

// sessionQueue is the FIFO of active sessions. The front is the
// authoritative one; calc requests of any other session wait.
type sessionQueue struct {
	mu      sync.Mutex
	order   []Session
	next    uint64
	changed chan struct{} // closed and replaced whenever the front may change
}

func newSessionQueue() *sessionQueue {
	return &sessionQueue{changed: make(chan struct{})}
}

func (q *sessionQueue) start() Session {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	s := Session{id: q.next}
	q.order = append(q.order, s)
	q.signal()
	return s
}

func (q *sessionQueue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return
	}
	q.order[0] = Session{}
	q.order = q.order[1:]
	q.signal()
}

// end removes s wherever it sits in the queue. Unknown sessions are ignored.
func (q *sessionQueue) end(s Session) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, cur := range q.order {
		if cur != s {
			continue
		}
		copy(q.order[i:], q.order[i+1:])
		q.order[len(q.order)-1] = Session{}
		q.order = q.order[:len(q.order)-1]
		q.signal()
		return
	}
}

// signal wakes everyone waiting on the current changed channel. Caller holds mu.
func (q *sessionQueue) signal() {
	close(q.changed)
	q.changed = make(chan struct{})
}

func (q *sessionQueue) isFront(s Session) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.order) == 0 {
		return s.IsZero()
	}
	return q.order[0] == s
}

// watch returns a channel closed on the next front change.
func (q *sessionQueue) watch() <-chan struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.changed
}

func (q *sessionQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// StartSession pushes a new session to the back of the queue.
func (e *Engine) StartSession() Session {
	return e.sessions.start()
}

// StopSession pops the front session, letting calc requests parked for the
// next one run.
func (e *Engine) StopSession() {
	e.sessions.stop()
}

// EndSession removes s from the queue wherever it is. Use it to release a
// session that may never have reached the front.
func (e *Engine) EndSession(s Session) {
	e.sessions.end(s)
}

// IsCurrentSession reports whether s is at the front of the queue.
func (e *Engine) IsCurrentSession(s Session) bool {
	return e.sessions.isFront(s)
}

// --- Parked calc requests ---

// Pending is the handle of a calc request that may not have run yet.
type Pending struct {
	done chan struct{}
	node *Node
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) deliver(n *Node, err error) {
	p.node, p.err = n, err
	close(p.done)
}

// Done is closed once the result is available.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the request ran or ctx is done. Giving up on the wait
// does not withdraw the request; a parked request is withdrawn only when the
// context it was submitted with is done, and it then reports that error.
func (p *Pending) Wait(ctx context.Context) (*Node, error) {
	select {
	case <-p.done:
		return p.node, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// parkedCalc is a calc request waiting for its session to reach the front.
type parkedCalc struct {
	ctx     context.Context
	req     calcRequest
	pending *Pending
	stop    func() bool // detaches the cancellation wake-up
}

func (j *parkedCalc) deliver(n *Node, err error) {
	if j.stop != nil {
		j.stop()
	}
	j.pending.deliver(n, err)
}

// park queues req for the drain goroutine and returns its handle.
func (e *Engine) park(ctx context.Context, req calcRequest) *Pending {
	job := &parkedCalc{ctx: ctx, req: req, pending: newPending()}

	e.parkedMu.Lock()
	if e.closed {
		e.parkedMu.Unlock()
		job.pending.deliver(nil, ErrClosed)
		return job.pending
	}
	job.stop = context.AfterFunc(ctx, e.wakeDrain)
	e.parked = append(e.parked, job)
	e.parkedMu.Unlock()
	recordParked()

	e.wakeDrain()
	return job.pending
}

// wakeDrain nudges the drain goroutine to rescan the parked requests.
func (e *Engine) wakeDrain() {
	select {
	case e.parkedWake <- struct{}{}:
	default:
	}
}

// drain runs parked requests one at a time as their sessions reach the
// front. It sleeps until a session is started or stopped, a new request is
// parked or a parked request's context is done.
func (e *Engine) drain() {
	defer close(e.drained)
	for {
		job, ok := e.nextRunnable()
		if !ok {
			return
		}
		if !e.sessions.isFront(job.req.session) {
			// Superseded again between selection and execution.
			e.requeue(job)
			continue
		}
		job.deliver(e.resolve(job.ctx, job.req))
	}
}

func (e *Engine) nextRunnable() (*parkedCalc, bool) {
	for {
		changed := e.sessions.watch()

		e.parkedMu.Lock()
		kept := e.parked[:0]
		var found *parkedCalc
		for _, job := range e.parked {
			switch {
			case found != nil:
				kept = append(kept, job)
			case job.ctx.Err() != nil:
				job.deliver(nil, job.ctx.Err())
			case e.sessions.isFront(job.req.session):
				found = job
			default:
				kept = append(kept, job)
			}
		}
		clear(e.parked[len(kept):])
		e.parked = kept
		e.parkedMu.Unlock()

		if found != nil {
			return found, true
		}

		select {
		case <-changed:
		case <-e.parkedWake:
		case <-e.closing:
			return nil, false
		}
	}
}

func (e *Engine) requeue(job *parkedCalc) {
	e.parkedMu.Lock()
	e.parked = append(e.parked, job)
	e.parkedMu.Unlock()
}

// failParked answers every parked request with err.
func (e *Engine) failParked(err error) {
	e.parkedMu.Lock()
	jobs := e.parked
	e.parked = nil
	e.parkedMu.Unlock()
	for _, job := range jobs {
		job.deliver(nil, err)
	}
}

// ParkedCount returns the number of calc requests waiting for their session.
func (e *Engine) ParkedCount() int {
	e.parkedMu.Lock()
	defer e.parkedMu.Unlock()
	return len(e.parked)
}
