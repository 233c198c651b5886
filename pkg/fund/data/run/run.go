package run

import (
	"time"

	"github.com/pkg/errors"
)

type State uint8

const (
	StateUnknown   State = iota
	StatePending         // Steps remain to be submitted
	StateCompleted       // Fund was rebalanced and unpaused
	StateFailed          // A step exhausted its retries, the fund may be left paused
)

// Step is the next instruction a run submits.
type Step uint8

const (
	StepUnknown Step = iota
	StepPause
	StepRebalance
	StepUnpause
	StepDone
)

// Record checkpoints an orchestrated pause, rebalance and unpause of a fund.
type Record struct {
	Id uint64

	RunId string
	Fund  string
	Admin string

	State State
	Step  Step
	Error string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (r *Record) Validate() error {
	if len(r.RunId) == 0 {
		return errors.New("run id is required")
	}

	if len(r.Fund) == 0 {
		return errors.New("fund is required")
	}

	if len(r.Admin) == 0 {
		return errors.New("admin is required")
	}

	if r.Step == StepUnknown || r.Step > StepDone {
		return errors.New("step is required")
	}

	switch r.State {
	case StatePending:
		if r.Step == StepDone {
			return errors.New("pending run cannot be done")
		}
		if len(r.Error) > 0 {
			return errors.New("pending run cannot have an error")
		}
	case StateCompleted:
		if r.Step != StepDone {
			return errors.New("completed run must be done")
		}
		if len(r.Error) > 0 {
			return errors.New("completed run cannot have an error")
		}
	case StateFailed:
		if r.Step == StepDone {
			return errors.New("failed run cannot be done")
		}
		if len(r.Error) == 0 {
			return errors.New("failed run requires an error")
		}
	default:
		return errors.New("state is required")
	}

	return nil
}

func (r *Record) Clone() Record {
	return Record{
		Id: r.Id,

		RunId: r.RunId,
		Fund:  r.Fund,
		Admin: r.Admin,

		State: r.State,
		Step:  r.Step,
		Error: r.Error,

		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func (r *Record) CopyTo(dst *Record) {
	dst.Id = r.Id

	dst.RunId = r.RunId
	dst.Fund = r.Fund
	dst.Admin = r.Admin

	dst.State = r.State
	dst.Step = r.Step
	dst.Error = r.Error

	dst.CreatedAt = r.CreatedAt
	dst.UpdatedAt = r.UpdatedAt
}

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StatePending:
		return "pending"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s Step) String() string {
	switch s {
	case StepUnknown:
		return "unknown"
	case StepPause:
		return "pause"
	case StepRebalance:
		return "rebalance"
	case StepUnpause:
		return "unpause"
	case StepDone:
		return "done"
	}
	return "unknown"
}
