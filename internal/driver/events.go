package driver

// Status describes where a file is in the formatting pipeline.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusSkipped
	StatusError
)

// Event is one progress notification. Path is empty for run-level events.
type Event struct {
	Path    string
	Status  Status
	Changed bool
}

// ProgressSink receives events while a run is in flight. Implementations
// must be safe for concurrent use; files are formatted in parallel.
type ProgressSink interface {
	Publish(Event)
}

// ChannelSink forwards events into a channel, typically consumed by the TUI.
type ChannelSink struct{ Ch chan<- Event }

func (s ChannelSink) Publish(ev Event) {
	if s.Ch != nil {
		s.Ch <- ev
	}
}
