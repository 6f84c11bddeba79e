package carelink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"github.com/amspoke/carelink-downloader/internal/model"
)

const connectDataPath = "/patient/connect/data"

// Roles sent to the BLE periodic data endpoint.
const (
	rolePatient     = "patient"
	roleCarePartner = "carepartner"
)

// RecentData fetches the last 24 hours of telemetry.
// It returns nil when no data could be decoded; LastResponseCode,
// LastDataSuccess, LastErrorMessage and LastResponseBody describe the
// outcome either way.
func (c *Client) RecentData(ctx context.Context) *model.RecentData {
	c.lastDataSuccess = false
	c.lastErrorMessage = ""
	c.lastResponseBody = nil

	if !c.loggedIn {
		c.lastResponseCode = 0
		c.lastErrorMessage = ErrNotLoggedIn.Error()
		return nil
	}
	if c.tokenExpired() {
		c.logger.Debug("carelink token expired, logging in again")
		if !c.Login(ctx, c.creds) {
			// A rejected re-login is an authorization failure whatever
			// status the last SSO page returned. Code 0 stays a transport error.
			if c.lastResponseCode != 0 {
				c.lastResponseCode = http.StatusUnauthorized
			}
			return nil
		}
	}

	req, err := c.recentDataRequest(ctx)
	if err != nil {
		c.lastResponseCode = 0
		c.lastErrorMessage = err.Error()
		return nil
	}
	resp, err := c.do(req)
	if err != nil {
		c.lastErrorMessage = err.Error()
		return nil
	}
	c.lastResponseBody = resp.body

	data, err := decodeRecentData(resp)
	if err != nil {
		c.lastErrorMessage = err.Error()
		return nil
	}
	c.lastDataSuccess = true
	return data
}

// recentDataRequest builds the request for the patient's device family.
func (c *Client) recentDataRequest(ctx context.Context) (*http.Request, error) {
	ctx = withAuth(ctx)

	if !c.monitor.IsBLE() {
		query := url.Values{}
		query.Set("cpSerialNumber", "NONE")
		query.Set("msgType", "last24hours")
		query.Set("requestTime", strconv.FormatInt(c.clock.Now().UnixMilli(), 10))
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(connectDataPath, query).String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json, text/plain, */*")
		return req, nil
	}

	if c.countrySettings == nil || c.countrySettings.BLEPeriodicDataEndpoint == "" {
		return nil, ErrNoBLEEndpoint
	}
	role := rolePatient
	if c.user != nil && c.user.IsCarePartner() {
		role = roleCarePartner
	}
	username := c.creds.Username
	if c.profile != nil && c.profile.Username != "" {
		username = c.profile.Username
	}
	payload, err := json.Marshal(map[string]string{"username": username, "role": role})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.countrySettings.BLEPeriodicDataEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// decodeRecentData turns a response into RecentData. Non-200 responses and
// 200 responses without a JSON object both fail; the caller tells them
// apart by the response code.
func decodeRecentData(resp *response) (*model.RecentData, error) {
	if resp.code != http.StatusOK {
		return nil, &StatusError{Step: "recent data", Code: resp.code, Message: errorMessage(resp.body)}
	}
	if !gjson.ValidBytes(resp.body) || !gjson.ParseBytes(resp.body).IsObject() {
		return nil, ErrInvalidData
	}
	if msg := errorMessage(resp.body); msg != "" && !gjson.GetBytes(resp.body, "sgs").Exists() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidData, msg)
	}

	var data model.RecentData
	if err := json.Unmarshal(resp.body, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
	}
	return &data, nil
}
