package datasources

import (
	"context"
	"errors"
	"sync"

	"github.com/datadrift/datadrift/pkg/models"
)

// ErrRowBusy is returned when an action is already running for the row.
var ErrRowBusy = errors.New("an action is already in progress for this data source")

// RowAPI is the part of the API client the list actions call.
type RowAPI interface {
	DeleteDataSource(ctx context.Context, id string) error
	TestDataSource(ctx context.Context, id string) (*models.TestConnectionResponse, error)
}

// RowActions runs delete and test-connection for rows of the data source
// list, allowing at most one in-flight action per row. Rows do not block
// each other.
type RowActions struct {
	api RowAPI

	mu   sync.Mutex
	busy map[string]struct{}
}

// NewRowActions returns RowActions calling api.
func NewRowActions(api RowAPI) *RowActions {
	return &RowActions{api: api, busy: make(map[string]struct{})}
}

// Busy reports whether an action is running for id.
func (r *RowActions) Busy(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.busy[id]
	return ok
}

func (r *RowActions) acquire(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.busy[id]; ok {
		return false
	}
	r.busy[id] = struct{}{}
	return true
}

func (r *RowActions) release(id string) {
	r.mu.Lock()
	delete(r.busy, id)
	r.mu.Unlock()
}

// Delete removes the source.
func (r *RowActions) Delete(ctx context.Context, id string) error {
	if !r.acquire(id) {
		return ErrRowBusy
	}
	defer r.release(id)
	return r.api.DeleteDataSource(ctx, id)
}

// Test tests the stored configuration. The only error is ErrRowBusy; API
// failures are reported in the result.
func (r *RowActions) Test(ctx context.Context, id string) (TestResult, error) {
	if !r.acquire(id) {
		return TestResult{}, ErrRowBusy
	}
	defer r.release(id)
	res, err := r.api.TestDataSource(ctx, id)
	return testResultFrom(res, err), nil
}
