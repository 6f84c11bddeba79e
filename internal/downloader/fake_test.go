package downloader

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/amspoke/carelink-downloader/internal/export"
	"github.com/amspoke/carelink-downloader/internal/model"
)

// scripted is one canned RecentData answer.
type scripted struct {
	code    int
	success bool
	message string
	body    []byte
	panic   bool
}

func okData() scripted {
	return scripted{code: http.StatusOK, success: true, body: []byte(`{"sgs":[]}`)}
}

func status(code int) scripted {
	return scripted{code: code, message: http.StatusText(code)}
}

// reloginFailed is what the client reports when a silent re-login on an
// expired token is rejected: no body and an authorization failure.
func reloginFailed() scripted {
	return scripted{code: http.StatusUnauthorized, message: "consent form not found: credentials may be invalid"}
}

func dataError(message string) scripted {
	return scripted{code: http.StatusOK, message: message, body: []byte(`{"message":"` + message + `"}`)}
}

// fakeAPI is a scripted CareLink session.
type fakeAPI struct {
	loginOK      bool
	loginCode    int
	loginMessage string
	script       []scripted

	user    *model.User
	profile *model.Profile
	country *model.CountrySettings
	monitor *model.MonitorData

	loginCalls int
	dataCalls  int
	closeCalls int
	last       scripted
}

func newFakeAPI(script ...scripted) *fakeAPI {
	return &fakeAPI{
		loginOK:   true,
		loginCode: http.StatusOK,
		script:    script,
		user:      &model.User{ID: "4711", FirstName: "Juan", LastName: "Garcia", AccountID: 4711},
		profile:   &model.Profile{Username: "juan", FirstName: "Juan", LastName: "Garcia", City: "Madrid"},
		country:   &model.CountrySettings{},
		monitor:   &model.MonitorData{DeviceFamily: "GUARDIAN"},
	}
}

func (f *fakeAPI) Login(context.Context, model.Credentials) bool {
	f.loginCalls++
	f.last = scripted{code: f.loginCode, message: f.loginMessage}
	return f.loginOK
}

func (f *fakeAPI) SessionUser() *model.User                       { return f.user }
func (f *fakeAPI) SessionProfile() *model.Profile                 { return f.profile }
func (f *fakeAPI) SessionCountrySettings() *model.CountrySettings { return f.country }
func (f *fakeAPI) SessionMonitorData() *model.MonitorData         { return f.monitor }

// RecentData replays the script, repeating its last entry once exhausted.
func (f *fakeAPI) RecentData(context.Context) *model.RecentData {
	f.dataCalls++
	next := okData()
	if len(f.script) > 0 {
		i := min(f.dataCalls-1, len(f.script)-1)
		next = f.script[i]
	}
	if next.panic {
		panic("scripted panic")
	}
	f.last = next
	if next.code == http.StatusOK && next.success {
		return &model.RecentData{FirstName: "Juan", LastName: "Garcia"}
	}
	return nil
}

func (f *fakeAPI) LastResponseCode() int    { return f.last.code }
func (f *fakeAPI) LastErrorMessage() string { return f.last.message }
func (f *fakeAPI) LastDataSuccess() bool    { return f.last.success }
func (f *fakeAPI) LastResponseBody() []byte { return f.last.body }

func (f *fakeAPI) Close() error {
	f.closeCalls++
	return nil
}

// fakeExporter records artifacts without writing anything.
type fakeExporter struct {
	mu        sync.Mutex
	artifacts []model.Artifact
	fail      map[model.Kind]error
}

func (e *fakeExporter) Export(_ context.Context, kind model.Kind, rec model.Record) (model.Artifact, error) {
	if model.IsNil(rec) {
		return model.Artifact{}, &export.Error{Kind: kind, Stage: export.StageSerialize, Err: export.ErrNilRecord}
	}
	return e.put(kind)
}

func (e *fakeExporter) ExportRaw(_ context.Context, kind model.Kind, body []byte) (model.Artifact, error) {
	if len(body) == 0 {
		return model.Artifact{}, &export.Error{Kind: kind, Stage: export.StageSerialize, Err: export.ErrNilRecord}
	}
	return e.put(kind)
}

func (e *fakeExporter) put(kind model.Kind) (model.Artifact, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail[kind]; err != nil {
		return model.Artifact{}, &export.Error{Kind: kind, Stage: export.StageWrite, Err: err}
	}
	a := model.Artifact{Kind: kind, Name: kind.String() + export.Extension, Location: "/out/" + kind.String()}
	e.artifacts = append(e.artifacts, a)
	return a, nil
}

func (e *fakeExporter) kinds() []model.Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	kinds := make([]model.Kind, len(e.artifacts))
	for i, a := range e.artifacts {
		kinds[i] = a.Kind
	}
	return kinds
}

var errDiskFull = errors.New("disk full")
