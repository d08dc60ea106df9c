package monitor

import (
	"bytes"
	"sync"
)

// Command is a control signal sent from the UI loop to a background
// task.
type Command int

const (
	CommandNone Command = iota
	CommandPause
	CommandResume
	CommandStop
)

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandPause:
		return "pause"
	case CommandResume:
		return "resume"
	case CommandStop:
		return "stop"
	default:
		return "unknown"
	}
}

// link is the bidirectional channel pair between the UI and one task.
// Both directions are capacity-one mailboxes with overwrite
// semantics: posting never blocks, and only the latest value is
// observable. Each direction has a single writer by contract (the
// task posts status, the UI sends control).
type link struct {
	status  chan []byte
	control chan Command
}

func newLink() *link {
	return &link{
		status:  make(chan []byte, 1),
		control: make(chan Command, 1),
	}
}

// offerStatus replaces the mailbox content without blocking.
func (l *link) offerStatus(payload []byte) {
	select {
	case l.status <- payload:
		return
	default:
	}
	// Mailbox full: evict the stale value and retry once. With one
	// producer per task the retry cannot find it full again.
	select {
	case <-l.status:
	default:
	}
	select {
	case l.status <- payload:
	default:
	}
}

func (l *link) offerControl(cmd Command) {
	select {
	case l.control <- cmd:
		return
	default:
	}
	select {
	case <-l.control:
	default:
	}
	select {
	case l.control <- cmd:
	default:
	}
}

// Bridge connects the UI loop with background tasks through Async
// Links. The UI polls, tasks push; neither side ever blocks on the
// other.
type Bridge struct {
	mu    sync.RWMutex
	links map[string]*link
	order []string
}

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{links: make(map[string]*link)}
}

// Register creates the Async Link for a task id. Registering the
// same id twice fails.
func (b *Bridge) Register(taskID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.links[taskID]; ok {
		return ErrTaskExists
	}
	b.links[taskID] = newLink()
	b.order = append(b.order, taskID)
	return nil
}

// Unregister removes a task's link. Pending status and control
// values are discarded.
func (b *Bridge) Unregister(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.links[taskID]; !ok {
		return
	}
	delete(b.links, taskID)
	for i, id := range b.order {
		if id == taskID {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Tasks returns the registered task ids in registration order.
func (b *Bridge) Tasks() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

func (b *Bridge) link(taskID string) (*link, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	l, ok := b.links[taskID]
	if !ok {
		return nil, &UnknownTaskError{TaskID: taskID}
	}
	return l, nil
}

// PostStatus overwrites the task's current status payload without
// blocking. Latest-value semantics: intermediate payloads may be
// lost, this is a monitoring display, not an event log.
func (b *Bridge) PostStatus(taskID string, payload []byte) error {
	l, err := b.link(taskID)
	if err != nil {
		return err
	}
	l.offerStatus(bytes.Clone(payload))
	return nil
}

// ReadStatus returns the last payload posted since the previous read.
// The second result is false when nothing new arrived. Never blocks.
func (b *Bridge) ReadStatus(taskID string) ([]byte, bool, error) {
	l, err := b.link(taskID)
	if err != nil {
		return nil, false, err
	}
	select {
	case payload := <-l.status:
		return payload, true, nil
	default:
		return nil, false, nil
	}
}

// SendControl sets the task's pending control command. A second
// command posted before the task consumes the first silently
// supersedes it. Never blocks.
func (b *Bridge) SendControl(taskID string, cmd Command) error {
	l, err := b.link(taskID)
	if err != nil {
		return err
	}
	l.offerControl(cmd)
	return nil
}

// ConsumeControl takes the pending command, if any. Polled
// cooperatively by the background task. Never blocks.
func (b *Bridge) ConsumeControl(taskID string) (Command, bool, error) {
	l, err := b.link(taskID)
	if err != nil {
		return CommandNone, false, err
	}
	select {
	case cmd := <-l.control:
		return cmd, true, nil
	default:
		return CommandNone, false, nil
	}
}

// Broadcast sends a command to every registered task, used for
// graceful shutdown.
func (b *Bridge) Broadcast(cmd Command) {
	for _, id := range b.Tasks() {
		_ = b.SendControl(id, cmd) // ids come from the registry; cannot be unknown
	}
}
