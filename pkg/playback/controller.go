package playback

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/vidmark/pkg/ports"
)

const (
	// DefaultTickInterval is how often Run drains the event channel.
	DefaultTickInterval = 10 * time.Millisecond

	// DefaultEventBuffer is the capacity of a session's event channel.
	DefaultEventBuffer = 10

	// DefaultStopTimeout bounds the wait for a worker to exit.
	DefaultStopTimeout = time.Second
)

var (
	// ErrNoSession is returned by transport actions when no video is open.
	ErrNoSession = errors.New("playback: no video open")

	// ErrInvalidSpeed is returned for non-positive or non-finite speed multipliers.
	ErrInvalidSpeed = errors.New("playback: speed must be a positive number")
)

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Width       int // presentation width, 0 keeps the native width
	Height      int // presentation height, 0 keeps the native height
	EventBuffer int
	StopTimeout time.Duration
	EndBehavior EndBehavior
}

// DefaultControllerOptions returns options matching the reviewer's 1080x720 canvas.
func DefaultControllerOptions() ControllerOptions {
	return ControllerOptions{
		Width:       1080,
		Height:      720,
		EventBuffer: DefaultEventBuffer,
		StopTimeout: DefaultStopTimeout,
		EndBehavior: EndLoop,
	}
}

// TickResult summarises one Tick.
type TickResult struct {
	Events        int  // events drained
	Metadata      bool // a metadata event was processed
	Rendered      bool // a frame was handed to the surface
	FramesSkipped int  // frames superseded by a newer frame in the same drain
	FramesStale   int  // frames decoded before a pending seek took effect
	EOFs          int
}

// session is one Worker bound to one video, with the channels it was built with.
type session struct {
	id       string
	path     string
	worker   *Worker
	events   chan Event
	commands *CommandQueue
}

// Controller bridges a Worker's event stream to a presentation surface and turns
// transport actions into commands. It never decodes anything itself.
//
// Methods are safe to call from several goroutines (an input loop and a ticker, say);
// the surface is only ever called while the controller's lock is held.
type Controller struct {
	opener  ports.SourceOpener
	surface ports.Surface
	logger  ports.Logger
	opts    ControllerOptions

	mu       sync.Mutex
	session  *session
	meta     Metadata
	haveMeta bool
	position float64
	playing  bool

	// seekPending marks the first drain after Seek; frames far from seekTarget in it
	// were decoded before the worker applied the seek.
	seekPending bool
	seekTarget  float64

	speed    float64
	loops    int
}

// NewController creates a Controller with no open video.
func NewController(opener ports.SourceOpener, surface ports.Surface, logger ports.Logger, opts ControllerOptions) *Controller {
	if opts.EventBuffer < FrameBacklog+1 {
		opts.EventBuffer = DefaultEventBuffer
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	return &Controller{
		opener:  opener,
		surface: surface,
		logger:  logger.WithComponent("playback"),
		opts:    opts,
		speed:   1.0,
	}
}

// Open stops the current worker, if any, and starts a new one for path.
// The previous decode resource is released before the new one is opened, unless the old
// worker fails to exit within the stop timeout.
func (c *Controller) Open(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	c.meta = Metadata{}
	c.haveMeta = false
	c.position = 0
	c.loops = 0
	c.playing = false
	c.seekPending = false

	id := uuid.NewString()
	s := &session{
		id:       id,
		path:     path,
		events:   make(chan Event, c.opts.EventBuffer),
		commands: NewCommandQueue(),
	}
	s.worker = NewWorker(WorkerConfig{
		Path:        path,
		Width:       c.opts.Width,
		Height:      c.opts.Height,
		EndBehavior: c.opts.EndBehavior,
	}, s.events, s.commands, c.opener, c.logger.WithComponent("worker "+id[:8]))

	if err := s.worker.Start(); err != nil {
		c.logger.Error("Failed to open %s: %v", path, err)
		return err
	}

	if c.speed != 1.0 {
		s.commands.Push(Speed(c.speed))
	}
	c.session = s
	c.playing = true
	c.logger.Info("Playing %s", path)
	return nil
}

// Close stops the current worker and waits for it to exit. It is safe to call repeatedly.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	s := c.session
	if s == nil {
		return
	}
	c.session = nil
	c.playing = false

	s.commands.Push(Stop())
	if !s.worker.Wait(c.opts.StopTimeout) {
		c.logger.Warn("Worker for %s did not stop within %s", s.path, c.opts.StopTimeout)
		return
	}
	c.logger.Debug("Session %s closed", s.id)
}

// Tick drains every event currently queued without blocking. Metadata initialises the
// surface; of the drained frames only the most recent is rendered.
func (c *Controller) Tick() TickResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	var res TickResult
	if c.session == nil {
		return res
	}

	var last *Event
drain:
	for {
		select {
		case ev := <-c.session.events:
			res.Events++
			switch ev.Kind {
			case EventMetadata:
				c.meta = ev.Metadata
				c.haveMeta = true
				res.Metadata = true
				c.surface.ShowMetadata(ports.SurfaceInfo{
					Path:           c.session.path,
					Duration:       ev.Metadata.Duration,
					FrameRate:      ev.Metadata.FrameRate,
					OriginalWidth:  ev.Metadata.Width,
					OriginalHeight: ev.Metadata.Height,
				})
			case EventFrame:
				if c.seekPending && math.Abs(ev.Position-c.seekTarget) > c.seekToleranceLocked() {
					res.FramesStale++
					continue
				}
				if last != nil {
					res.FramesSkipped++
				}
				frame := ev
				last = &frame
			case EventEOF:
				c.loops++
				res.EOFs++
				if c.opts.EndBehavior == EndPause {
					c.playing = false
				}
			}
		default:
			break drain
		}
	}
	c.seekPending = false

	if last != nil && last.Frame != nil {
		c.position = last.Position
		c.surface.ShowFrame(last.Frame, last.Frame.Bounds().Size())
		c.surface.ShowPosition(c.position)
		res.Rendered = true
	}
	return res
}

// Run calls Tick every interval until ctx is done.
func (c *Controller) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Play resumes frame production.
func (c *Controller) Play() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.pushLocked(Play()); err != nil {
		return err
	}
	c.playing = true
	return nil
}

// Pause stops frame production. Pausing twice is the same as pausing once.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.pushLocked(Pause()); err != nil {
		return err
	}
	c.playing = false
	return nil
}

// TogglePlay pauses a playing video or resumes a paused one, and returns the new state.
func (c *Controller) TogglePlay() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cmd := Play()
	if c.playing {
		cmd = Pause()
	}
	if err := c.pushLocked(cmd); err != nil {
		return c.playing, err
	}
	c.playing = !c.playing
	return c.playing, nil
}

// SetSpeed changes the playback rate multiplier. Without an open video the speed is kept
// and applied to the next one.
func (c *Controller) SetSpeed(multiplier float64) error {
	if multiplier <= 0 || math.IsNaN(multiplier) || math.IsInf(multiplier, 0) {
		return ErrInvalidSpeed
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.speed = multiplier
	if c.session == nil {
		return nil
	}
	return c.pushLocked(Speed(multiplier))
}

// Seek moves playback to seconds, clamped to the known duration.
func (c *Controller) Seek(seconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	if c.haveMeta && c.meta.Duration > 0 && seconds > c.meta.Duration {
		seconds = c.meta.Duration
	}
	if err := c.pushLocked(Seek(seconds)); err != nil {
		return err
	}
	c.position = seconds
	c.seekPending = true
	c.seekTarget = seconds
	return nil
}

// seekToleranceLocked is how far from a seek target a frame may land and still count
// as decoded after the seek: one frame interval.
func (c *Controller) seekToleranceLocked() float64 {
	fps := c.meta.FrameRate
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return 1 / fps
}

func (c *Controller) pushLocked(cmd Command) error {
	if c.session == nil {
		return ErrNoSession
	}
	c.session.commands.Push(cmd)
	return nil
}

// Position returns the timestamp of the last rendered frame, or the last seek target.
func (c *Controller) Position() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Duration returns the duration of the open video, 0 until metadata has been drained.
func (c *Controller) Duration() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta.Duration
}

// Metadata returns the metadata of the open video and whether it has been received.
func (c *Controller) Metadata() (Metadata, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.meta, c.haveMeta
}

// Playing reports whether the controller last asked the worker to play.
func (c *Controller) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// Speed returns the current speed multiplier.
func (c *Controller) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// Path returns the path of the open video, or "".
func (c *Controller) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return ""
	}
	return c.session.path
}

// HasSession reports whether a worker is running.
func (c *Controller) HasSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Loops returns how many times the current video has wrapped around.
func (c *Controller) Loops() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loops
}

// Stats returns the counters of the current worker.
func (c *Controller) Stats() WorkerStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return WorkerStats{}
	}
	return c.session.worker.Stats()
}

