package driver

// Stage identifies a step of the per-file folding pipeline.
type Stage uint8

const (
	StageLoad Stage = iota
	StageLex
	StageFold
)

// Status describes the state of a file within a stage.
type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusCached
	StatusDone
	StatusError
)

// Event reports progress of a batch fold run. An Event with an empty File
// describes the run as a whole.
type Event struct {
	File   string
	Stage  Stage
	Status Status
}

func emit(events chan<- Event, ev Event) {
	if events == nil {
		return
	}
	events <- ev
}
