package carelink

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amspoke/carelink-downloader/internal/model"
)

// SSO paths.
const (
	loginPath       = "/patient/sso/login"
	credentialsPath = "/mmcl/auth/oauth/v2/authorize/login"
	userPath        = "/patient/users/me"
	profilePath     = "/patient/users/me/profile"
	countryPath     = "/patient/countries/settings"
	monitorPath     = "/patient/monitor/data"
)

// Login authenticates with creds and loads the session records.
// It returns false on any failure; LastResponseCode and LastErrorMessage
// describe what went wrong.
func (c *Client) Login(ctx context.Context, creds model.Credentials) bool {
	c.resetSession()
	c.creds = creds
	c.lastErrorMessage = ""

	if err := c.login(ctx); err != nil {
		c.lastErrorMessage = err.Error()
		c.logger.Debug("carelink login failed", slog.String("error", err.Error()))
		return false
	}
	c.lastErrorMessage = ""
	c.loggedIn = true
	return true
}

func (c *Client) login(ctx context.Context) error {
	c.api = c.baseURL
	if c.api == nil {
		c.api = &url.URL{Scheme: "https", Host: ServerForCountry(c.creds.Country)}
	}

	landing, err := c.openLoginSession(ctx)
	if err != nil {
		return err
	}
	consentPage, err := c.submitCredentials(ctx, landing)
	if err != nil {
		return err
	}
	if err := c.submitConsent(ctx, consentPage); err != nil {
		return err
	}
	if c.authToken() == "" {
		return ErrNoAuthToken
	}
	return c.loadSession(ctx)
}

// openLoginSession starts the SSO flow and returns the URL of the identity
// provider's login page. Its query carries the session parameters.
func (c *Client) openLoginSession(ctx context.Context) (*url.URL, error) {
	query := url.Values{}
	query.Set("country", c.creds.Country)
	query.Set("lang", c.language)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(loginPath, query).String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("login session: %w", err)
	}
	if resp.code != http.StatusOK {
		return nil, &StatusError{Step: "login session", Code: resp.code}
	}
	q := resp.url.Query()
	if q.Get("sessionID") == "" || q.Get("sessionData") == "" {
		return nil, ErrNoLoginSession
	}
	return resp.url, nil
}

// submitCredentials posts the login form and returns the consent page.
func (c *Client) submitCredentials(ctx context.Context, landing *url.URL) (*response, error) {
	q := landing.Query()

	target := url.URL{Scheme: landing.Scheme, Host: landing.Host, Path: credentialsPath}
	targetQuery := url.Values{}
	targetQuery.Set("locale", q.Get("locale"))
	targetQuery.Set("country", q.Get("countrycode"))
	target.RawQuery = targetQuery.Encode()

	form := url.Values{}
	form.Set("sessionID", q.Get("sessionID"))
	form.Set("sessionData", q.Get("sessionData"))
	form.Set("locale", "en")
	form.Set("action", "login")
	form.Set("username", c.creds.Username)
	form.Set("password", c.creds.Password)
	form.Set("actionButton", "Log in")

	resp, err := c.postForm(ctx, target.String(), form)
	if err != nil {
		return nil, fmt.Errorf("login credentials: %w", err)
	}
	if resp.code != http.StatusOK {
		return nil, &StatusError{Step: "login credentials", Code: resp.code}
	}
	return resp, nil
}

// submitConsent parses the consent form of page and posts it. The final
// redirect lands on CareLink, which sets the session cookies.
func (c *Client) submitConsent(ctx context.Context, page *response) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.body))
	if err != nil {
		return fmt.Errorf("login consent: failed to parse page: %w", err)
	}

	formSel := doc.Find("form").First()
	action, ok := formSel.Attr("action")
	if !ok || strings.TrimSpace(action) == "" {
		return ErrNoConsentForm
	}
	sessionID := formSel.Find(`input[name="sessionID"]`).AttrOr("value", "")
	sessionData := formSel.Find(`input[name="sessionData"]`).AttrOr("value", "")
	if sessionID == "" || sessionData == "" {
		return ErrNoConsentForm
	}

	target, err := page.url.Parse(action)
	if err != nil {
		return fmt.Errorf("login consent: invalid form action %q: %w", action, err)
	}

	form := url.Values{}
	form.Set("action", "consent")
	form.Set("sessionID", sessionID)
	form.Set("sessionData", sessionData)
	form.Set("response_type", "code")
	form.Set("response_mode", "query")

	resp, err := c.postForm(ctx, target.String(), form)
	if err != nil {
		return fmt.Errorf("login consent: %w", err)
	}
	if resp.code != http.StatusOK {
		return &StatusError{Step: "login consent", Code: resp.code}
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, target string, form url.Values) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// loadSession fetches the four session records. All of them are required
// for a usable session.
func (c *Client) loadSession(ctx context.Context) error {
	var user model.User
	if err := c.getJSON(ctx, "users/me", userPath, nil, &user); err != nil {
		return err
	}
	var profile model.Profile
	if err := c.getJSON(ctx, "users/me/profile", profilePath, nil, &profile); err != nil {
		return err
	}
	countryQuery := url.Values{}
	countryQuery.Set("countryCode", c.creds.Country)
	countryQuery.Set("language", c.language)
	var settings model.CountrySettings
	if err := c.getJSON(ctx, "countries/settings", countryPath, countryQuery, &settings); err != nil {
		return err
	}
	var monitor model.MonitorData
	if err := c.getJSON(ctx, "monitor/data", monitorPath, nil, &monitor); err != nil {
		return err
	}

	c.user = &user
	c.profile = &profile
	c.countrySettings = &settings
	c.monitor = &monitor
	return nil
}
