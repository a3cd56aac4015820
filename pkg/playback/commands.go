package playback

import "sync"

// CommandKind tags a transport Command.
type CommandKind int

const (
	CommandStop CommandKind = iota + 1
	CommandPause
	CommandPlay
	CommandSeek
	CommandSpeed
)

// String returns the command kind name.
func (k CommandKind) String() string {
	switch k {
	case CommandStop:
		return "stop"
	case CommandPause:
		return "pause"
	case CommandPlay:
		return "play"
	case CommandSeek:
		return "seek"
	case CommandSpeed:
		return "speed"
	default:
		return "unknown"
	}
}

// Command is an instruction to the Worker. It is applied on a later loop iteration and
// never acknowledged.
type Command struct {
	Kind  CommandKind
	Value float64 // seconds for seek, multiplier for speed
}

// Stop terminates the Worker loop and releases the decode resource.
func Stop() Command { return Command{Kind: CommandStop} }

// Pause stops frame production until Play.
func Pause() Command { return Command{Kind: CommandPause} }

// Play clears the pause flag.
func Play() Command { return Command{Kind: CommandPlay} }

// Seek repositions the stream to seconds.
func Seek(seconds float64) Command { return Command{Kind: CommandSeek, Value: seconds} }

// Speed sets the playback rate multiplier. It must be positive.
func Speed(multiplier float64) Command { return Command{Kind: CommandSpeed, Value: multiplier} }

// CommandQueue is an unbounded FIFO of commands with one producer and one consumer.
// Neither Push nor TryPop blocks.
type CommandQueue struct {
	mu    sync.Mutex
	items []Command
}

// NewCommandQueue creates an empty queue.
func NewCommandQueue() *CommandQueue {
	return &CommandQueue{}
}

// Push appends a command.
func (q *CommandQueue) Push(cmd Command) {
	q.mu.Lock()
	q.items = append(q.items, cmd)
	q.mu.Unlock()
}

// TryPop removes and returns the oldest command, or false if the queue is empty.
func (q *CommandQueue) TryPop() (Command, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return Command{}, false
	}
	cmd := q.items[0]
	q.items[0] = Command{}
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil
	}
	return cmd, true
}

// Len returns the number of pending commands.
func (q *CommandQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops all pending commands.
func (q *CommandQueue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}
