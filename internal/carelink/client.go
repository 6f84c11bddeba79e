package carelink

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/net/publicsuffix"

	"github.com/amspoke/carelink-downloader/internal/clock"
	"github.com/amspoke/carelink-downloader/internal/model"
)

// CareLink servers.
const (
	// ServerEU serves every country except the United States.
	ServerEU = "carelink.minimed.eu"
	// ServerUS serves the United States.
	ServerUS = "carelink.minimed.com"
)

// Session cookies set by the login flow.
const (
	AuthTokenCookie    = "auth_tmp_token"
	TokenValidToCookie = "c_token_valid_to"
)

const (
	// DefaultLanguage is the language requested from CareLink.
	DefaultLanguage = "en"

	// DefaultTimeout bounds every single HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent is sent with every request. CareLink rejects
	// requests that do not look like they come from a browser.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxRedirects limits redirect chains of the SSO flow.
	maxRedirects = 10

	// maxBodySize limits the size of a response body read into memory.
	maxBodySize = 10 * 1024 * 1024

	// tokenRefreshMargin is how long before its expiry a token is renewed.
	tokenRefreshMargin = time.Minute
)

// ServerForCountry returns the CareLink host serving country.
func ServerForCountry(country string) string {
	if strings.EqualFold(country, "us") {
		return ServerUS
	}
	return ServerEU
}

// Client talks to CareLink on behalf of one account.
type Client struct {
	baseURL    *url.URL
	language   string
	timeout    time.Duration
	userAgent  string
	clock      clock.Clock
	logger     *slog.Logger
	httpClient *http.Client
	jar        http.CookieJar

	creds model.Credentials
	api   *url.URL

	user            *model.User
	profile         *model.Profile
	countrySettings *model.CountrySettings
	monitor         *model.MonitorData
	loggedIn        bool

	lastResponseCode int
	lastErrorMessage string
	lastDataSuccess  bool
	lastResponseBody []byte
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sends requests to base instead of the country's server.
func WithBaseURL(base *url.URL) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithLanguage sets the language requested from CareLink.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithTimeout sets the timeout of each HTTP request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithClock sets the clock used for request times and token expiry.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) {
		c.clock = clk
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient returns a Client. No request is made until Login.
func NewClient(opts ...Option) *Client {
	c := &Client{
		language:  DefaultLanguage,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		clock:     clock.Real(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.httpClient = c.newHTTPClient()
	return c
}

// newHTTPClient builds the HTTP client of a session: a fresh cookie jar,
// the header injecting transport and a bounded redirect chain.
func (c *Client) newHTTPClient() *http.Client {
	//nolint:errcheck // cookiejar.New only fails with invalid options
	jar, _ := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	c.jar = jar

	base := http.DefaultTransport.(*http.Transport).Clone()
	base.MaxIdleConnsPerHost = 2
	base.IdleConnTimeout = 30 * time.Second

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      base,
			userAgent: c.userAgent,
			token:     c.authToken,
		},
		Timeout: c.timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// Close drops the session state and idle connections.
// The client can log in again afterwards.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	c.resetSession()
	c.httpClient = c.newHTTPClient()
	return nil
}

func (c *Client) resetSession() {
	c.creds = model.Credentials{}
	c.api = nil
	c.user = nil
	c.profile = nil
	c.countrySettings = nil
	c.monitor = nil
	c.loggedIn = false
	c.lastDataSuccess = false
	c.lastResponseBody = nil
}

// SessionUser returns the user loaded by Login.
func (c *Client) SessionUser() *model.User { return c.user }

// SessionProfile returns the profile loaded by Login.
func (c *Client) SessionProfile() *model.Profile { return c.profile }

// SessionCountrySettings returns the country settings loaded by Login.
func (c *Client) SessionCountrySettings() *model.CountrySettings { return c.countrySettings }

// SessionMonitorData returns the monitor data loaded by Login.
func (c *Client) SessionMonitorData() *model.MonitorData { return c.monitor }

// LastResponseCode returns the status of the last response, or 0 when the
// last request failed before a response was received.
func (c *Client) LastResponseCode() int { return c.lastResponseCode }

// LastErrorMessage returns the error of the last call, or "" if it succeeded.
func (c *Client) LastErrorMessage() string { return c.lastErrorMessage }

// LastDataSuccess reports whether the last RecentData call returned data.
func (c *Client) LastDataSuccess() bool { return c.lastDataSuccess }

// LastResponseBody returns the raw body of the last RecentData response.
func (c *Client) LastResponseBody() []byte { return c.lastResponseBody }

// authToken returns the bearer token from the session cookies.
func (c *Client) authToken() string {
	if c.api == nil {
		return ""
	}
	for _, cookie := range c.jar.Cookies(c.api) {
		if cookie.Name == AuthTokenCookie {
			return cookie.Value
		}
	}
	return ""
}

// tokenExpiry returns the expiry announced by the c_token_valid_to cookie.
func (c *Client) tokenExpiry() (time.Time, bool) {
	if c.api == nil {
		return time.Time{}, false
	}
	for _, cookie := range c.jar.Cookies(c.api) {
		if cookie.Name != TokenValidToCookie {
			continue
		}
		v, err := url.QueryUnescape(cookie.Value)
		if err != nil {
			v = cookie.Value
		}
		for _, layout := range []string{time.UnixDate, time.RFC1123, time.RFC3339} {
			if t, err := time.Parse(layout, v); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// tokenExpired reports whether the token must be renewed before use.
func (c *Client) tokenExpired() bool {
	if c.authToken() == "" {
		return true
	}
	expiry, ok := c.tokenExpiry()
	if !ok {
		return false
	}
	return !c.clock.Now().Add(tokenRefreshMargin).Before(expiry)
}

// endpoint returns the absolute URL of an API path on the session server.
func (c *Client) endpoint(path string, query url.Values) *url.URL {
	u := *c.api
	u.Path = path
	u.RawQuery = query.Encode()
	return &u
}

// response is a fully read HTTP response.
type response struct {
	code int
	url  *url.URL
	body []byte
}

// do sends req, reads the body and records the response code.
func (c *Client) do(req *http.Request) (*response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.lastResponseCode = 0
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.lastResponseCode = resp.StatusCode
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("carelink response",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)
	return &response{code: resp.StatusCode, url: resp.Request.URL, body: body}, nil
}

// getJSON fetches an authorized API resource into v.
func (c *Client) getJSON(ctx context.Context, step, path string, query url.Values, v any) error {
	req, err := http.NewRequestWithContext(withAuth(ctx), http.MethodGet, c.endpoint(path, query).String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	if resp.code != http.StatusOK {
		return &StatusError{Step: step, Code: resp.code, Message: errorMessage(resp.body)}
	}
	if err := json.Unmarshal(resp.body, v); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", step, err)
	}
	return nil
}

// errorMessagePaths are the places CareLink and its gateways put an error
// description in JSON bodies.
var errorMessagePaths = []string{
	"message",
	"errorMessage",
	"error.message",
	"error_description",
	"error",
}

// errorMessage extracts a human readable error from a response body.
func errorMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range errorMessagePaths {
		if r := gjson.GetBytes(body, path); r.Exists() && r.Type == gjson.String && r.String() != "" {
			return r.String()
		}
	}
	return ""
}
