package playback

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/user/vidmark/pkg/ports"
)

const (
	// DefaultFrameRate paces sources that do not report a usable frame rate.
	DefaultFrameRate = 30.0

	// FrameBacklog is the number of queued events at which new frames are dropped.
	FrameBacklog = 2

	// IdleSleep bounds CPU usage of the worker loop.
	IdleSleep = time.Millisecond
)

var (
	// ErrAlreadyStarted is returned when Start is called twice on the same Worker.
	ErrAlreadyStarted = errors.New("playback: worker already started")

	// ErrNoEventCapacity is returned when the event channel cannot take the metadata event.
	ErrNoEventCapacity = errors.New("playback: event channel has no free capacity")
)

// EndBehavior selects what the Worker does when the stream is exhausted.
type EndBehavior int

const (
	// EndLoop rewinds to zero and keeps playing.
	EndLoop EndBehavior = iota
	// EndPause rewinds to zero and pauses until Play.
	EndPause
)

// String returns the end behaviour name used in configuration.
func (b EndBehavior) String() string {
	if b == EndPause {
		return "pause"
	}
	return "loop"
}

// ParseEndBehavior parses "loop" or "pause".
func ParseEndBehavior(s string) (EndBehavior, error) {
	switch s {
	case "", "loop":
		return EndLoop, nil
	case "pause":
		return EndPause, nil
	default:
		return EndLoop, fmt.Errorf("unknown end behavior %q", s)
	}
}

// WorkerConfig is the construction input of a Worker.
type WorkerConfig struct {
	Path        string
	Width       int // presentation width, 0 keeps the native width
	Height      int // presentation height, 0 keeps the native height
	EndBehavior EndBehavior
}

// WorkerStats are monotonically increasing counters, readable from any goroutine.
type WorkerStats struct {
	FramesEmitted uint64
	FramesDropped uint64
	EOFs          uint64
	ReadErrors    uint64
}

// Worker decodes one video on its own goroutine, pacing frames to the video's frame rate
// scaled by the current speed multiplier.
//
// The loop state (running, paused, speed, lastEmit) is touched only by the worker goroutine;
// the Controller changes it exclusively by pushing commands.
type Worker struct {
	cfg      WorkerConfig
	events   chan<- Event
	commands *CommandQueue
	opener   ports.SourceOpener
	logger   ports.Logger

	source ports.VideoSource
	meta   Metadata

	running  bool
	paused   bool
	speed    float64
	lastEmit time.Time

	// eofPending holds an eof the event channel had no room for. It is retried before
	// any further frame, so the consumer always sees it ahead of the rewound stream.
	eofPending bool

	started atomic.Bool
	done    chan struct{}

	emitted    atomic.Uint64
	dropped    atomic.Uint64
	eofs       atomic.Uint64
	readErrors atomic.Uint64
}

// NewWorker creates a Worker. Nothing is opened until Start.
func NewWorker(cfg WorkerConfig, events chan<- Event, commands *CommandQueue, opener ports.SourceOpener, logger ports.Logger) *Worker {
	return &Worker{
		cfg:      cfg,
		events:   events,
		commands: commands,
		opener:   opener,
		logger:   logger,
		speed:    1.0,
		done:     make(chan struct{}),
	}
}

// Start opens the decode resource, publishes the metadata event and launches the loop.
// When the source cannot be opened the returned error wraps ports.ErrResourceUnavailable
// and no goroutine is started.
func (w *Worker) Start() error {
	if !w.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	src, err := w.opener.Open(w.cfg.Path)
	if err != nil {
		close(w.done)
		if !errors.Is(err, ports.ErrResourceUnavailable) {
			err = fmt.Errorf("%w: %s: %v", ports.ErrResourceUnavailable, w.cfg.Path, err)
		}
		return err
	}

	w.source = src
	w.meta = metadataFrom(src.Properties())

	select {
	case w.events <- Event{Kind: EventMetadata, Metadata: w.meta}:
	default:
		w.release()
		close(w.done)
		return ErrNoEventCapacity
	}

	w.logger.Debug("Opened %s: %dx%d, %.3f fps, %d frames", w.cfg.Path, w.meta.Width, w.meta.Height, w.meta.FrameRate, w.meta.FrameCount)

	w.running = true
	w.lastEmit = time.Now()
	go w.run()
	return nil
}

// Metadata returns the metadata published at Start.
func (w *Worker) Metadata() Metadata {
	return w.meta
}

// Done is closed once the loop has exited and the source has been released.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// Wait blocks until the Worker has exited or timeout elapses, and reports whether it exited.
func (w *Worker) Wait(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.done:
		return true
	case <-timer.C:
		return false
	}
}

// Stats returns a snapshot of the worker counters.
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		FramesEmitted: w.emitted.Load(),
		FramesDropped: w.dropped.Load(),
		EOFs:          w.eofs.Load(),
		ReadErrors:    w.readErrors.Load(),
	}
}

func (w *Worker) run() {
	defer close(w.done)
	defer w.release()

	for w.running {
		w.step()
		if !w.running {
			break
		}
		time.Sleep(IdleSleep)
	}
	w.logger.Debug("Worker for %s stopped (%d emitted, %d dropped)", w.cfg.Path, w.emitted.Load(), w.dropped.Load())
}

// step runs one loop iteration. A panic inside it costs one iteration, not the worker.
func (w *Worker) step() {
	defer func() {
		if r := recover(); r != nil {
			w.readErrors.Add(1)
			w.logger.Warn("Recovered from decode failure in %s: %v", w.cfg.Path, r)
		}
	}()

	if cmd, ok := w.commands.TryPop(); ok {
		w.apply(cmd)
	}
	if !w.running {
		return
	}
	if w.eofPending {
		w.publishEOF()
	}
	if w.paused || w.eofPending {
		return
	}

	now := time.Now()
	if now.Sub(w.lastEmit) < w.frameInterval() {
		return
	}
	w.lastEmit = now
	w.produce()
}

func (w *Worker) apply(cmd Command) {
	switch cmd.Kind {
	case CommandStop:
		w.running = false
	case CommandPause:
		w.paused = true
	case CommandPlay:
		w.paused = false
	case CommandSeek:
		if err := w.source.Seek(cmd.Value); err != nil {
			w.logger.Warn("Seek to %.3fs failed: %v", cmd.Value, err)
		}
	case CommandSpeed:
		if cmd.Value > 0 {
			w.speed = cmd.Value
		} else {
			w.logger.Debug("Ignoring non-positive speed %v", cmd.Value)
		}
	}
}

func (w *Worker) frameInterval() time.Duration {
	fps := w.meta.FrameRate
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return time.Duration(float64(time.Second) / (fps * w.speed))
}

func (w *Worker) produce() {
	img, err := w.source.ReadFrame()
	switch {
	case err == nil:
		position := w.source.Position()
		// The frame still has to be read to advance the stream, but converting it
		// is wasted work when it would be dropped anyway.
		if len(w.events) >= FrameBacklog {
			w.dropped.Add(1)
			return
		}
		w.publishFrame(Event{
			Kind:     EventFrame,
			Frame:    toRGBA(img, w.cfg.Width, w.cfg.Height),
			Position: position,
		})

	case errors.Is(err, ports.ErrEndOfStream):
		if err := w.source.Seek(0); err != nil {
			w.logger.Warn("Rewind of %s failed: %v", w.cfg.Path, err)
		}
		w.eofs.Add(1)
		w.eofPending = true
		if !w.publishEOF() {
			w.logger.Debug("Event channel full, eof delayed")
		}
		if w.cfg.EndBehavior == EndPause {
			w.paused = true
		}

	default:
		w.readErrors.Add(1)
		w.logger.Warn("Skipping unreadable frame in %s: %v", w.cfg.Path, err)
	}
}

func (w *Worker) publishFrame(ev Event) {
	select {
	case w.events <- ev:
		w.emitted.Add(1)
	default:
		w.dropped.Add(1)
	}
}

func (w *Worker) publishEOF() bool {
	select {
	case w.events <- Event{Kind: EventEOF}:
		w.eofPending = false
		return true
	default:
		return false
	}
}

func (w *Worker) release() {
	if w.source == nil {
		return
	}
	if err := w.source.Close(); err != nil {
		w.logger.Warn("Closing %s failed: %v", w.cfg.Path, err)
	}
	w.source = nil
}
