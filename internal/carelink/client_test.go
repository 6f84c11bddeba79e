package carelink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amspoke/carelink-downloader/internal/clock"
	"github.com/amspoke/carelink-downloader/internal/model"
)

const (
	testUsername = "jane"
	testPassword = "s3cret"
	testToken    = "token-123"
)

// fakeCareLink serves the SSO flow and the patient API.
type fakeCareLink struct {
	server *httptest.Server

	mu           sync.Mutex
	deviceFamily string
	role         string
	dataStatus   int
	dataBody     string
	tokenExpiry  time.Time
	logins       int
	rejectLogins bool
	dataRequests int
	bleBody      map[string]string
	lastAuth     string
}

func newFakeCareLink(t *testing.T) *fakeCareLink {
	t.Helper()
	f := &fakeCareLink{
		deviceFamily: "NGP",
		role:         "PATIENT",
		dataStatus:   http.StatusOK,
		dataBody:     `{"pumpModelNumber":"MMT-1880","sgs":[{"sg":120,"datetime":"2024-01-02T03:04:05.000Z"}]}`,
		tokenExpiry:  time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /patient/sso/login", f.handleSSOLogin)
	mux.HandleFunc("GET "+credentialsPath, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html><body>login</body></html>")
	})
	mux.HandleFunc("POST "+credentialsPath, f.handleCredentials)
	mux.HandleFunc("POST /mmcl/auth/oauth/v2/authorize/consent", f.handleConsent)
	mux.HandleFunc("GET /patient/home", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "<html>home</html>")
	})
	mux.HandleFunc("GET "+userPath, f.authorized(func() any {
		return map[string]any{"id": "123", "accountId": 123, "firstName": "Jane", "role": f.role}
	}))
	mux.HandleFunc("GET "+profilePath, f.authorized(func() any {
		return map[string]any{"username": "jane.doe", "firstName": "Jane"}
	}))
	mux.HandleFunc("GET "+countryPath, f.authorized(func() any {
		return map[string]any{"name": "Spain", "blePereodicDataEndpoint": f.server.URL + "/ble/display/message"}
	}))
	mux.HandleFunc("GET "+monitorPath, f.authorized(func() any {
		return map[string]any{"deviceFamily": f.deviceFamily}
	}))
	mux.HandleFunc("GET "+connectDataPath, f.handleData)
	mux.HandleFunc("POST /ble/display/message", f.handleBLE)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeCareLink) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	q := url.Values{}
	q.Set("sessionID", "SID")
	q.Set("sessionData", "SDATA")
	q.Set("locale", "en")
	q.Set("countrycode", r.URL.Query().Get("country"))
	http.Redirect(w, r, credentialsPath+"?"+q.Encode(), http.StatusFound)
}

func (f *fakeCareLink) handleCredentials(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("sessionID") != "SID" || r.PostForm.Get("sessionData") != "SDATA" {
		http.Error(w, "bad session", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	reject := f.rejectLogins
	f.mu.Unlock()
	if reject || r.PostForm.Get("username") != testUsername || r.PostForm.Get("password") != testPassword {
		fmt.Fprint(w, `<html><body><p class="error">Invalid username or password</p></body></html>`)
		return
	}
	fmt.Fprint(w, `<html><body>
<form action="/mmcl/auth/oauth/v2/authorize/consent" method="post">
<input type="hidden" name="sessionID" value="SID2">
<input type="hidden" name="sessionData" value="SDATA2">
</form></body></html>`)
}

func (f *fakeCareLink) handleConsent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil || r.PostForm.Get("sessionID") != "SID2" || r.PostForm.Get("action") != "consent" {
		http.Error(w, "bad consent", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.logins++
	expiry := f.tokenExpiry
	f.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: AuthTokenCookie, Value: testToken, Path: "/"})
	http.SetCookie(w, &http.Cookie{Name: TokenValidToCookie, Value: url.QueryEscape(expiry.Format(time.UnixDate)), Path: "/"})
	http.Redirect(w, r, "/patient/home", http.StatusFound)
}

func (f *fakeCareLink) authorized(body func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+testToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body())
	}
}

func (f *fakeCareLink) handleData(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.dataRequests++
	f.lastAuth = r.Header.Get("Authorization")
	status, body := f.dataStatus, f.dataBody
	f.mu.Unlock()
	if r.URL.Query().Get("msgType") != "last24hours" || r.URL.Query().Get("cpSerialNumber") != "NONE" {
		http.Error(w, "bad query", http.StatusBadRequest)
		return
	}
	w.WriteHeader(status)
	fmt.Fprint(w, body)
}

func (f *fakeCareLink) handleBLE(w http.ResponseWriter, r *http.Request) {
	var payload map[string]string
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.bleBody = payload
	f.lastAuth = r.Header.Get("Authorization")
	f.mu.Unlock()
	fmt.Fprint(w, `{"pumpModelNumber":"MMT-1886","sgs":[]}`)
}

func (f *fakeCareLink) client(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base, err := url.Parse(f.server.URL)
	if err != nil {
		t.Fatal(err)
	}
	return NewClient(append([]Option{WithBaseURL(base)}, opts...)...)
}

func validCredentials() model.Credentials {
	return model.Credentials{Username: testUsername, Password: testPassword, Country: "es"}
}

func TestServerForCountry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		country string
		want    string
	}{
		{country: "us", want: ServerUS},
		{country: "US", want: ServerUS},
		{country: "es", want: ServerEU},
		{country: "gb", want: ServerEU},
	}
	for _, tt := range tests {
		if got := ServerForCountry(tt.country); got != tt.want {
			t.Errorf("ServerForCountry(%q) = %q, expected %q", tt.country, got, tt.want)
		}
	}
}

func TestClientLogin(t *testing.T) {
	t.Parallel()

	t.Run("successful login loads the session records", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		c := f.client(t)

		if !c.Login(context.Background(), validCredentials()) {
			t.Fatalf("login failed: code %d, message %q", c.LastResponseCode(), c.LastErrorMessage())
		}
		if c.LastResponseCode() != http.StatusOK {
			t.Errorf("got code %d", c.LastResponseCode())
		}
		if c.SessionUser() == nil || c.SessionUser().AccountID != 123 {
			t.Errorf("got user %+v", c.SessionUser())
		}
		if c.SessionProfile() == nil || c.SessionProfile().Username != "jane.doe" {
			t.Errorf("got profile %+v", c.SessionProfile())
		}
		if c.SessionCountrySettings() == nil || c.SessionCountrySettings().Name != "Spain" {
			t.Errorf("got country settings %+v", c.SessionCountrySettings())
		}
		if c.SessionMonitorData() == nil || c.SessionMonitorData().DeviceFamily != "NGP" {
			t.Errorf("got monitor data %+v", c.SessionMonitorData())
		}
		if c.LastErrorMessage() != "" {
			t.Errorf("expected no error message, got %q", c.LastErrorMessage())
		}
	})

	t.Run("wrong password fails at the consent step", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		c := f.client(t)
		creds := validCredentials()
		creds.Password = "wrong"

		if c.Login(context.Background(), creds) {
			t.Fatal("expected login to fail")
		}
		if !strings.Contains(c.LastErrorMessage(), "consent form not found") {
			t.Errorf("got message %q", c.LastErrorMessage())
		}
		if c.SessionUser() != nil {
			t.Error("session must stay empty after a failed login")
		}
	})

	t.Run("unreachable server reports code zero", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		c := f.client(t)
		f.server.Close()

		if c.Login(context.Background(), validCredentials()) {
			t.Fatal("expected login to fail")
		}
		if c.LastResponseCode() != 0 {
			t.Errorf("got code %d, expected 0", c.LastResponseCode())
		}
		if c.LastErrorMessage() == "" {
			t.Error("expected an error message")
		}
	})
}

func TestClientRecentData(t *testing.T) {
	t.Parallel()

	t.Run("connect endpoint returns decoded data", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		c := f.client(t)
		if !c.Login(context.Background(), validCredentials()) {
			t.Fatalf("login failed: %s", c.LastErrorMessage())
		}

		data := c.RecentData(context.Background())
		if data == nil {
			t.Fatalf("expected data, got error %q", c.LastErrorMessage())
		}
		if !c.LastDataSuccess() || c.LastResponseCode() != http.StatusOK {
			t.Errorf("got success %v code %d", c.LastDataSuccess(), c.LastResponseCode())
		}
		if data.PumpModelNumber != "MMT-1880" || len(data.SGs) != 1 || data.SGs[0].SG != 120 {
			t.Errorf("got data %+v", data)
		}
		if f.lastAuth != "Bearer "+testToken {
			t.Errorf("got authorization %q", f.lastAuth)
		}
	})

	t.Run("unauthorized is reported with its code", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		f.dataStatus = http.StatusUnauthorized
		f.dataBody = `{"message":"token expired"}`
		c := f.client(t)
		if !c.Login(context.Background(), validCredentials()) {
			t.Fatalf("login failed: %s", c.LastErrorMessage())
		}

		if data := c.RecentData(context.Background()); data != nil {
			t.Fatal("expected no data")
		}
		if c.LastResponseCode() != http.StatusUnauthorized || c.LastDataSuccess() {
			t.Errorf("got code %d success %v", c.LastResponseCode(), c.LastDataSuccess())
		}
		if !strings.Contains(c.LastErrorMessage(), "token expired") {
			t.Errorf("got message %q", c.LastErrorMessage())
		}
	})

	t.Run("200 with unusable body is a data failure", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		f.dataBody = `["not","an","object"]`
		c := f.client(t)
		if !c.Login(context.Background(), validCredentials()) {
			t.Fatalf("login failed: %s", c.LastErrorMessage())
		}

		if data := c.RecentData(context.Background()); data != nil {
			t.Fatal("expected no data")
		}
		if c.LastResponseCode() != http.StatusOK || c.LastDataSuccess() {
			t.Errorf("got code %d success %v", c.LastResponseCode(), c.LastDataSuccess())
		}
		if string(c.LastResponseBody()) != `["not","an","object"]` {
			t.Errorf("got body %q", c.LastResponseBody())
		}
		if c.LastErrorMessage() == "" {
			t.Error("expected an error message")
		}
	})

	t.Run("200 with an error payload is a data failure", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		f.dataBody = `{"message":"no data for patient"}`
		c := f.client(t)
		if !c.Login(context.Background(), validCredentials()) {
			t.Fatalf("login failed: %s", c.LastErrorMessage())
		}

		if data := c.RecentData(context.Background()); data != nil {
			t.Fatal("expected no data")
		}
		if !strings.Contains(c.LastErrorMessage(), "no data for patient") {
			t.Errorf("got message %q", c.LastErrorMessage())
		}
	})

	t.Run("BLE devices use the periodic data endpoint", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		f.deviceFamily = "BLE_X"
		f.role = model.RoleCarePartnerOUS
		c := f.client(t)
		if !c.Login(context.Background(), validCredentials()) {
			t.Fatalf("login failed: %s", c.LastErrorMessage())
		}

		data := c.RecentData(context.Background())
		if data == nil || data.PumpModelNumber != "MMT-1886" {
			t.Fatalf("got data %+v, error %q", data, c.LastErrorMessage())
		}
		if f.bleBody["username"] != "jane.doe" || f.bleBody["role"] != "carepartner" {
			t.Errorf("got BLE payload %v", f.bleBody)
		}
		if f.lastAuth != "Bearer "+testToken {
			t.Errorf("got authorization %q", f.lastAuth)
		}
		if f.dataRequests != 0 {
			t.Error("connect endpoint must not be used for BLE devices")
		}
	})

	t.Run("not logged in", func(t *testing.T) {
		t.Parallel()
		c := NewClient()
		if data := c.RecentData(context.Background()); data != nil {
			t.Fatal("expected no data")
		}
		if c.LastResponseCode() != 0 || c.LastErrorMessage() != ErrNotLoggedIn.Error() {
			t.Errorf("got code %d message %q", c.LastResponseCode(), c.LastErrorMessage())
		}
	})

	t.Run("expired token triggers a new login", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		f.tokenExpiry = time.Date(2024, 1, 2, 4, 0, 0, 0, time.UTC)
		clk := clock.Fake(time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC))
		c := f.client(t, WithClock(clk))
		if !c.Login(context.Background(), validCredentials()) {
			t.Fatalf("login failed: %s", c.LastErrorMessage())
		}

		if data := c.RecentData(context.Background()); data == nil {
			t.Fatalf("expected data, got %q", c.LastErrorMessage())
		}
		if f.logins != 1 {
			t.Errorf("got %d logins before expiry, expected 1", f.logins)
		}

		clk.Advance(2 * time.Hour)
		if data := c.RecentData(context.Background()); data == nil {
			t.Fatalf("expected data, got %q", c.LastErrorMessage())
		}
		if f.logins != 2 {
			t.Errorf("got %d logins after expiry, expected 2", f.logins)
		}
	})

	t.Run("failed re-login reports an authorization failure", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		f.tokenExpiry = time.Date(2024, 1, 2, 4, 0, 0, 0, time.UTC)
		clk := clock.Fake(time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC))
		c := f.client(t, WithClock(clk))
		if !c.Login(context.Background(), validCredentials()) {
			t.Fatalf("login failed: %s", c.LastErrorMessage())
		}

		f.mu.Lock()
		f.rejectLogins = true
		f.mu.Unlock()
		clk.Advance(2 * time.Hour)

		if data := c.RecentData(context.Background()); data != nil {
			t.Fatal("expected no data")
		}
		if c.LastResponseCode() != http.StatusUnauthorized {
			t.Errorf("got code %d, expected %d", c.LastResponseCode(), http.StatusUnauthorized)
		}
		if c.LastDataSuccess() {
			t.Error("expected data success to be false")
		}
		if !strings.Contains(c.LastErrorMessage(), "consent form not found") {
			t.Errorf("got message %q", c.LastErrorMessage())
		}
		if f.dataRequests != 0 {
			t.Errorf("got %d data requests, expected none", f.dataRequests)
		}
	})

	t.Run("unreachable server on re-login keeps code zero", func(t *testing.T) {
		t.Parallel()
		f := newFakeCareLink(t)
		f.tokenExpiry = time.Date(2024, 1, 2, 4, 0, 0, 0, time.UTC)
		clk := clock.Fake(time.Date(2024, 1, 2, 3, 0, 0, 0, time.UTC))
		c := f.client(t, WithClock(clk))
		if !c.Login(context.Background(), validCredentials()) {
			t.Fatalf("login failed: %s", c.LastErrorMessage())
		}

		f.server.Close()
		clk.Advance(2 * time.Hour)

		if data := c.RecentData(context.Background()); data != nil {
			t.Fatal("expected no data")
		}
		if c.LastResponseCode() != 0 {
			t.Errorf("got code %d, expected 0", c.LastResponseCode())
		}
	})
}

func TestClientClose(t *testing.T) {
	t.Parallel()

	f := newFakeCareLink(t)
	c := f.client(t)
	if !c.Login(context.Background(), validCredentials()) {
		t.Fatalf("login failed: %s", c.LastErrorMessage())
	}
	if err := c.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.SessionUser() != nil || c.authToken() != "" {
		t.Error("session must be dropped on close")
	}
	if data := c.RecentData(context.Background()); data != nil {
		t.Error("closed client must not return data")
	}
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "top level message", body: `{"message":"boom"}`, want: "boom"},
		{name: "nested error message", body: `{"error":{"message":"nested"}}`, want: "nested"},
		{name: "oauth error description", body: `{"error":"invalid_grant","error_description":"expired"}`, want: "expired"},
		{name: "plain error string", body: `{"error":"invalid_grant"}`, want: "invalid_grant"},
		{name: "not JSON", body: `<html>`, want: ""},
		{name: "no message", body: `{"sgs":[]}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := errorMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("got %q, expected %q", got, tt.want)
			}
		})
	}
}
