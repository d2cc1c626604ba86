package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/kode4food/wfm/pkg/api"
	"github.com/kode4food/wfm/pkg/bus"
	"github.com/kode4food/wfm/pkg/log"
)

type (
	// Store holds workflow records in memory. All methods are safe for
	// concurrent use
	Store struct {
		workflows  *collection[api.WorkflowID, *api.Workflow]
		workorders *collection[api.WorkorderID, *api.Workorder]
		results    *collection[api.ResultID, *api.Result]
		profile    *api.UserProfile
		newID      func() string
		mu         sync.RWMutex
	}

	// Option configures a Store
	Option func(*Store)
)

var (
	ErrIDRequired          = errors.New("id is required")
	ErrWorkorderIDRequired = errors.New("workorder id is required")
	ErrWorkflowIDRequired  = errors.New("workflow id is required")
	ErrWorkflowExists      = errors.New("workflow already exists")
	ErrWorkorderExists     = errors.New("workorder already exists")
	ErrResultExists        = errors.New("result already exists")
	ErrUnknownStep         = errors.New("step not defined by workflow")
)

// New creates an empty Store
func New(opts ...Option) *Store {
	s := &Store{
		workflows:  newCollection[api.WorkflowID, *api.Workflow](),
		workorders: newCollection[api.WorkorderID, *api.Workorder](),
		results:    newCollection[api.ResultID, *api.Result](),
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithIDs replaces the generator used for records created without an ID
func WithIDs(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithProfile sets the profile returned for the current user
func WithProfile(p *api.UserProfile) Option {
	return func(s *Store) {
		s.profile = p
	}
}

// ListWorkflows returns every workflow in creation order
func (s *Store) ListWorkflows() []*api.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workflows.list()
}

// CreateWorkflow validates and stores a new workflow
func (s *Store) CreateWorkflow(wf *api.Workflow) (*api.Workflow, error) {
	if err := wf.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if wf.ID == "" {
		wf.ID = api.WorkflowID(s.newID())
	}
	if _, ok := s.workflows.get(wf.ID); ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkflowExists, wf.ID)
	}
	s.workflows.put(wf.ID, wf)
	slog.Info("Workflow created",
		log.WorkflowID(wf.ID),
		slog.Int("steps", len(wf.Steps)))
	return wf, nil
}

// ReadWorkflow returns the workflow with the given ID
func (s *Store) ReadWorkflow(id api.WorkflowID) (*api.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if wf, ok := s.workflows.get(id); ok {
		return wf, nil
	}
	return nil, fmt.Errorf("%w: workflow %s", bus.ErrNotFound, id)
}

// UpdateWorkflow replaces an existing workflow
func (s *Store) UpdateWorkflow(wf *api.Workflow) (*api.Workflow, error) {
	if wf.ID == "" {
		return nil, ErrWorkflowIDRequired
	}
	if err := wf.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workflows.get(wf.ID); !ok {
		return nil, fmt.Errorf("%w: workflow %s", bus.ErrNotFound, wf.ID)
	}
	s.workflows.put(wf.ID, wf)
	slog.Info("Workflow updated", log.WorkflowID(wf.ID))
	return wf, nil
}

// RemoveWorkflow deletes a workflow and returns it
func (s *Store) RemoveWorkflow(id api.WorkflowID) (*api.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wf, ok := s.workflows.remove(id)
	if !ok {
		return nil, fmt.Errorf("%w: workflow %s", bus.ErrNotFound, id)
	}
	slog.Info("Workflow removed", log.WorkflowID(id))
	return wf, nil
}

// ListWorkorders returns every workorder in creation order
func (s *Store) ListWorkorders() []*api.Workorder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.workorders.list()
}

// CreateWorkorder stores a new workorder
func (s *Store) CreateWorkorder(wo *api.Workorder) (*api.Workorder, error) {
	if wo.WorkflowID == "" {
		return nil, ErrWorkflowIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if wo.ID == "" {
		wo.ID = api.WorkorderID(s.newID())
	}
	if _, ok := s.workorders.get(wo.ID); ok {
		return nil, fmt.Errorf("%w: %s", ErrWorkorderExists, wo.ID)
	}
	s.workorders.put(wo.ID, wo)
	slog.Info("Workorder created",
		log.WorkorderID(wo.ID),
		log.WorkflowID(wo.WorkflowID))
	return wo, nil
}

// ReadWorkorder returns the workorder with the given ID
func (s *Store) ReadWorkorder(id api.WorkorderID) (*api.Workorder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if wo, ok := s.workorders.get(id); ok {
		return wo, nil
	}
	return nil, fmt.Errorf("%w: workorder %s", bus.ErrNotFound, id)
}

// UpdateWorkorder replaces an existing workorder
func (s *Store) UpdateWorkorder(wo *api.Workorder) (*api.Workorder, error) {
	if wo.ID == "" {
		return nil, ErrIDRequired
	}
	if wo.WorkflowID == "" {
		return nil, ErrWorkflowIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workorders.get(wo.ID); !ok {
		return nil, fmt.Errorf("%w: workorder %s", bus.ErrNotFound, wo.ID)
	}
	s.workorders.put(wo.ID, wo)
	slog.Info("Workorder updated",
		log.WorkorderID(wo.ID),
		slog.String("assignee", string(wo.Assignee)))
	return wo, nil
}

// ListResults returns every result in creation order
func (s *Store) ListResults() []*api.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results.list()
}

// CreateResult stores a new result
func (s *Store) CreateResult(res *api.Result) (*api.Result, error) {
	if res.WorkorderID == "" {
		return nil, ErrWorkorderIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if res.ID == "" {
		res.ID = api.ResultID(s.newID())
	}
	if _, ok := s.results.get(res.ID); ok {
		return nil, fmt.Errorf("%w: %s", ErrResultExists, res.ID)
	}
	if err := s.checkSteps(res); err != nil {
		return nil, err
	}
	if res.StepResults == nil {
		res.StepResults = api.StepResults{}
	}
	s.results.put(res.ID, res)
	slog.Info("Result created",
		log.ResultID(res.ID),
		log.WorkorderID(res.WorkorderID),
		log.Status(res.Status))
	return res, nil
}

// ReadResult returns the result with the given ID
func (s *Store) ReadResult(id api.ResultID) (*api.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if res, ok := s.results.get(id); ok {
		return res, nil
	}
	return nil, fmt.Errorf("%w: result %s", bus.ErrNotFound, id)
}

// UpdateResult replaces an existing result
func (s *Store) UpdateResult(res *api.Result) (*api.Result, error) {
	if res.ID == "" {
		return nil, ErrIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.results.get(res.ID); !ok {
		return nil, fmt.Errorf("%w: result %s", bus.ErrNotFound, res.ID)
	}
	if err := s.checkSteps(res); err != nil {
		return nil, err
	}
	if res.StepResults == nil {
		res.StepResults = api.StepResults{}
	}
	s.results.put(res.ID, res)
	slog.Info("Result updated",
		log.ResultID(res.ID),
		log.WorkorderID(res.WorkorderID),
		log.Status(res.Status))
	return res, nil
}

// ReadProfile returns the profile of the current user
func (s *Store) ReadProfile() (*api.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return nil, fmt.Errorf("%w: user profile", bus.ErrNotFound)
	}
	return s.profile, nil
}

// SetProfile replaces the profile of the current user
func (s *Store) SetProfile(p *api.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// checkSteps rejects step outcomes for codes the workorder's workflow does
// not define. Results for unknown workorders or workflows are not checked
func (s *Store) checkSteps(res *api.Result) error {
	wo, ok := s.workorders.get(res.WorkorderID)
	if !ok {
		return nil
	}
	wf, ok := s.workflows.get(wo.WorkflowID)
	if !ok {
		return nil
	}
	for code := range res.StepResults {
		if wf.StepIndex(code) < 0 {
			return fmt.Errorf("%w: %s in workflow %s", ErrUnknownStep, code,
				wf.ID)
		}
	}
	return nil
}
