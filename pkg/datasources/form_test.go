package datasources

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datadrift/datadrift/pkg/models"
)

type fakeFormAPI struct {
	created  []models.DataSourceRequest
	updated  map[string]models.DataSourceRequest
	tested   []models.DataSourceRequest
	testResp *models.TestConnectionResponse
	err      error
}

func (f *fakeFormAPI) CreateDataSource(_ context.Context, req models.DataSourceRequest) (*models.DataSource, error) {
	f.created = append(f.created, req)
	if f.err != nil {
		return nil, f.err
	}
	return &models.DataSource{ID: uuid.New(), Name: req.Name, Type: req.Type, Config: req.Config}, nil
}

func (f *fakeFormAPI) UpdateDataSource(_ context.Context, id string, req models.DataSourceRequest) (*models.DataSource, error) {
	if f.updated == nil {
		f.updated = map[string]models.DataSourceRequest{}
	}
	f.updated[id] = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.DataSource{ID: uuid.MustParse(id), Name: req.Name, Type: req.Type, Config: req.Config}, nil
}

func (f *fakeFormAPI) TestConnection(_ context.Context, req models.DataSourceRequest) (*models.TestConnectionResponse, error) {
	f.tested = append(f.tested, req)
	return f.testResp, f.err
}

func (f *fakeFormAPI) calls() int {
	return len(f.created) + len(f.updated) + len(f.tested)
}

func TestNewCreateForm_DefaultsToREST(t *testing.T) {
	f := NewCreateForm(&fakeFormAPI{})
	assert.False(t, f.IsEdit())
	assert.Equal(t, models.DataSourceREST, f.Type())
	assert.IsType(t, &RESTConfig{}, f.Config)
}

func TestForm_SubmitInvalidMakesNoRequest(t *testing.T) {
	api := &fakeFormAPI{}
	f := NewCreateForm(api)
	f.SetType(models.DataSourceDatabase)
	f.Config = &DatabaseConfig{Database: "d", Username: "u"}

	ds, errs, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Nil(t, ds)
	assert.Equal(t, map[string]string{"name": "Name is required.", "host": "Host is required."}, errs)
	assert.Zero(t, api.calls())

	res, errs := f.Test(context.Background())
	assert.NotEmpty(t, errs)
	assert.Equal(t, TestResult{}, res)
	assert.Zero(t, api.calls())
}

func TestForm_SubmitCreate(t *testing.T) {
	api := &fakeFormAPI{}
	f := NewCreateForm(api)
	f.Name = "  orders db  "
	f.SetType(models.DataSourceDatabase)
	f.Config = &DatabaseConfig{Host: "h", Database: "d", Username: "u", Password: "pw"}

	ds, errs, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Len(t, api.created, 1)

	assert.Equal(t, "orders db", api.created[0].Name)
	assert.JSONEq(t, `{"host":"h","database":"d","username":"u","password":"pw"}`, api.created[0].Config)
	assert.Equal(t, "orders db", ds.Name)
}

func TestForm_SubmitEditKeepsSecretsUnlessOptedIn(t *testing.T) {
	id := uuid.New()
	api := &fakeFormAPI{}
	f := NewEditForm(api, models.DataSource{
		ID:     id,
		Name:   "orders api",
		Type:   models.DataSourceREST,
		Config: `{"url":"https://api","apiKey":"******","token":"******"}`,
	})
	require.True(t, f.IsEdit())
	assert.Equal(t, id.String(), f.ID())

	rest := f.Config.(*RESTConfig)
	assert.Equal(t, "https://api", rest.URL)
	rest.Token = "rotated"
	f.SetUpdateSecret("token", true)
	assert.True(t, f.UpdatingSecret("token"))

	_, errs, err := f.Submit(context.Background())
	require.NoError(t, err)
	require.Empty(t, errs)

	sent := api.updated[id.String()]
	assert.JSONEq(t, `{"url":"https://api","apiKey":"******","token":"rotated"}`, sent.Config)

	f.SetUpdateSecret("token", false)
	assert.False(t, f.UpdatingSecret("token"))
}

func TestForm_SetTypeResetsState(t *testing.T) {
	f := NewEditForm(&fakeFormAPI{}, models.DataSource{ID: uuid.New(), Name: "x", Type: models.DataSourceREST, Config: `{"url":"https://api"}`})
	f.SetUpdateSecret("apiKey", true)

	f.SetType(models.DataSourceCSV)
	assert.Equal(t, &FileConfig{Kind: models.DataSourceCSV}, f.Config)
	assert.False(t, f.UpdatingSecret("apiKey"))
}

func TestForm_SubmitSurfacesAPIError(t *testing.T) {
	api := &fakeFormAPI{err: errors.New("name must be unique: orders")}
	f := NewCreateForm(api)
	f.Name = "orders"
	f.Config = &RESTConfig{URL: "https://api"}

	_, errs, err := f.Submit(context.Background())
	assert.Empty(t, errs)
	assert.EqualError(t, err, "name must be unique: orders")
}

func TestForm_TestMessages(t *testing.T) {
	tests := []struct {
		name string
		resp *models.TestConnectionResponse
		err  error
		want TestResult
	}{
		{name: "server message", resp: &models.TestConnectionResponse{Success: true, Message: "Connection validated."}, want: TestResult{Success: true, Message: "Connection validated."}},
		{name: "default success", resp: &models.TestConnectionResponse{Success: true}, want: TestResult{Success: true, Message: "Connection validated."}},
		{name: "default failure", resp: &models.TestConnectionResponse{Success: false}, want: TestResult{Message: "Connection failed."}},
		{name: "transport error", err: errors.New("connection refused"), want: TestResult{Message: "connection refused"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeFormAPI{testResp: tt.resp, err: tt.err}
			f := NewCreateForm(api)
			f.Name = "api"
			f.Config = &RESTConfig{URL: "https://api"}

			res, errs := f.Test(context.Background())
			assert.Empty(t, errs)
			assert.Equal(t, tt.want, res)
			require.Len(t, api.tested, 1)
		})
	}
}
