package memory

import (
	"context"
	"sync"
	"time"

	"github.com/code-payments/index-fund/pkg/fund/data/run"
)

type store struct {
	mu      sync.Mutex
	last    uint64
	records []*run.Record
}

// New returns a new in memory run.Store
func New() run.Store {
	return &store{}
}

// Put implements run.Store.Put
func (s *store) Put(_ context.Context, data *run.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if item := s.find(data); item != nil {
		return run.ErrAlreadyExists
	}
	if data.State == run.StatePending && s.findPendingByFund(data.Fund) != nil {
		return run.ErrPendingRunExists
	}

	s.last++
	data.Id = s.last
	if data.CreatedAt.IsZero() {
		data.CreatedAt = time.Now()
	}
	data.UpdatedAt = time.Now()

	cloned := data.Clone()
	s.records = append(s.records, &cloned)

	return nil
}

// Update implements run.Store.Update
func (s *store) Update(_ context.Context, data *run.Record) error {
	if err := data.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findByRunId(data.RunId)
	if item == nil {
		return run.ErrNotFound
	}
	if data.State == run.StatePending {
		if pending := s.findPendingByFund(item.Fund); pending != nil && pending != item {
			return run.ErrPendingRunExists
		}
	}

	item.State = data.State
	item.Step = data.Step
	item.Error = data.Error
	item.UpdatedAt = time.Now()

	item.CopyTo(data)

	return nil
}

// Get implements run.Store.Get
func (s *store) Get(_ context.Context, runId string) (*run.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findByRunId(runId)
	if item == nil {
		return nil, run.ErrNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetPendingByFund implements run.Store.GetPendingByFund
func (s *store) GetPendingByFund(_ context.Context, fund string) (*run.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.findPendingByFund(fund)
	if item == nil {
		return nil, run.ErrNotFound
	}

	cloned := item.Clone()
	return &cloned, nil
}

// GetAllPending implements run.Store.GetAllPending
func (s *store) GetAllPending(_ context.Context, limit uint64) ([]*run.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.findByState(run.StatePending)
	if len(items) == 0 {
		return nil, run.ErrNotFound
	} else if uint64(len(items)) > limit {
		items = items[:limit]
	}
	return cloneSlice(items), nil
}

// CountByState implements run.Store.CountByState
func (s *store) CountByState(_ context.Context, state run.State) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.findByState(state)
	return uint64(len(items)), nil
}

func (s *store) find(data *run.Record) *run.Record {
	for _, item := range s.records {
		if data.Id != 0 && item.Id == data.Id {
			return item
		}

		if item.RunId == data.RunId {
			return item
		}
	}

	return nil
}

func (s *store) findByRunId(runId string) *run.Record {
	for _, item := range s.records {
		if item.RunId == runId {
			return item
		}
	}

	return nil
}

func (s *store) findPendingByFund(fund string) *run.Record {
	for _, item := range s.records {
		if item.Fund == fund && item.State == run.StatePending {
			return item
		}
	}

	return nil
}

// Records are appended in id order.
func (s *store) findByState(state run.State) []*run.Record {
	var res []*run.Record

	for _, item := range s.records {
		if item.State == state {
			res = append(res, item)
		}
	}

	return res
}

func (s *store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = 0
	s.records = nil
}

func cloneSlice(items []*run.Record) []*run.Record {
	var res []*run.Record
	for _, item := range items {
		cloned := item.Clone()
		res = append(res, &cloned)
	}
	return res
}
