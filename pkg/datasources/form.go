package datasources

import (
	"context"
	"strings"

	"github.com/datadrift/datadrift/pkg/models"
)

// FormAPI is the part of the API client the form calls.
type FormAPI interface {
	CreateDataSource(ctx context.Context, req models.DataSourceRequest) (*models.DataSource, error)
	UpdateDataSource(ctx context.Context, id string, req models.DataSourceRequest) (*models.DataSource, error)
	TestConnection(ctx context.Context, req models.DataSourceRequest) (*models.TestConnectionResponse, error)
}

// TestResult is what the screen shows after a connection test.
type TestResult struct {
	Success bool
	Message string
}

func testResultFrom(res *models.TestConnectionResponse, err error) TestResult {
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = "Test failed."
		}
		return TestResult{Message: msg}
	}
	msg := res.Message
	if msg == "" {
		if res.Success {
			msg = "Connection validated."
		} else {
			msg = "Connection failed."
		}
	}
	return TestResult{Success: res.Success, Message: msg}
}

// Form is the create/edit data source form. Validation always runs before,
// and gates, any network call.
type Form struct {
	api  FormAPI
	id   string
	edit bool

	// Name as typed; trimmed on submit.
	Name   string
	typ    models.DataSourceType
	Config Config

	updateSecrets KeySet
}

// NewCreateForm returns a blank form. New sources default to REST.
func NewCreateForm(api FormAPI) *Form {
	return &Form{
		api:           api,
		typ:           models.DataSourceREST,
		Config:        EmptyConfig(models.DataSourceREST),
		updateSecrets: KeySet{},
	}
}

// NewEditForm returns a form prefilled from a stored (masked) data source.
func NewEditForm(api FormAPI, ds models.DataSource) *Form {
	return &Form{
		api:           api,
		id:            ds.ID.String(),
		edit:          true,
		Name:          ds.Name,
		typ:           ds.Type,
		Config:        Parse(ds.Config, ds.Type),
		updateSecrets: KeySet{},
	}
}

// IsEdit reports whether the form updates an existing source.
func (f *Form) IsEdit() bool { return f.edit }

// ID returns the source being edited, or "".
func (f *Form) ID() string { return f.id }

// Type returns the selected type.
func (f *Form) Type() models.DataSourceType { return f.typ }

// SetType switches type, discarding config and secret choices.
func (f *Form) SetType(t models.DataSourceType) {
	f.typ = t
	f.Config = EmptyConfig(t)
	f.updateSecrets = KeySet{}
}

// SetUpdateSecret marks whether the stored secret key should be replaced by
// the value in Config. Only meaningful when editing.
func (f *Form) SetUpdateSecret(key string, replace bool) {
	if replace {
		f.updateSecrets[key] = struct{}{}
	} else {
		delete(f.updateSecrets, key)
	}
}

// UpdatingSecret reports whether key was marked for replacement.
func (f *Form) UpdatingSecret(key string) bool {
	return f.updateSecrets.Has(key)
}

// Validate returns field errors; empty means submittable.
func (f *Form) Validate() map[string]string {
	return ValidateForm(f.Name, f.typ, f.Config)
}

// Request builds the API request body from the current state.
func (f *Form) Request() models.DataSourceRequest {
	return models.DataSourceRequest{
		Name:   strings.TrimSpace(f.Name),
		Type:   f.typ,
		Config: Build(f.typ, f.Config, f.edit, f.updateSecrets),
	}
}

// Submit validates and, when valid, creates or updates the source. Invalid
// forms return their field errors and make no request.
func (f *Form) Submit(ctx context.Context) (*models.DataSource, map[string]string, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return nil, errs, nil
	}

	req := f.Request()
	var (
		ds  *models.DataSource
		err error
	)
	if f.edit {
		ds, err = f.api.UpdateDataSource(ctx, f.id, req)
	} else {
		ds, err = f.api.CreateDataSource(ctx, req)
	}
	if err != nil {
		return nil, nil, err
	}
	return ds, nil, nil
}

// Test validates and, when valid, tests the unsaved configuration. Transport
// and API errors are folded into the result.
func (f *Form) Test(ctx context.Context) (TestResult, map[string]string) {
	if errs := f.Validate(); len(errs) > 0 {
		return TestResult{}, errs
	}
	res, err := f.api.TestConnection(ctx, f.Request())
	return testResultFrom(res, err), nil
}
