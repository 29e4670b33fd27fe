package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/worklane/worklane-client/internal/auth"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 15 * time.Second

var (
	errMissingBaseURL  = errors.New("api: base url required")
	errMissingSession  = errors.New("api: session dependency required")
	ErrMissingEmail    = errors.New("api: email required")
	ErrMissingPassword = errors.New("api: password required")
	ErrUnknownAccount  = errors.New("api: unknown account type")
)

// Config describes the dependencies of the REST client.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Session    *auth.Session
	Logger     *zap.Logger
}

// Client is a typed client for the platform REST endpoints. Every call is a
// single attempt; there is no retry policy at this layer, a failed call is a
// terminal outcome for that attempt.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	session    *auth.Session
	logger     *zap.Logger
}

// NewClient validates the configuration and constructs the client.
func NewClient(cfg Config) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if trimmed == "" {
		return nil, errMissingBaseURL
	}
	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("api: invalid base url: %w", err)
	}
	if cfg.Session == nil {
		return nil, errMissingSession
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    parsed,
		httpClient: httpClient,
		session:    cfg.Session,
		logger:     logger,
	}, nil
}

// Login authenticates against the account-type scoped login endpoint and
// returns the issued access token. Empty credentials fail synchronously
// before any network call.
func (c *Client) Login(ctx context.Context, accountType int, email, password string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", ErrMissingEmail
	}
	if password == "" {
		return "", ErrMissingPassword
	}

	var path string
	switch accountType {
	case auth.AccountTypeBusiness:
		path = "/api/business/auth/login"
	case auth.AccountTypePersonal:
		path = "/api/personal/auth/login"
	default:
		return "", ErrUnknownAccount
	}

	payload := map[string]string{"email": email, "password": password}
	var result envelope[loginResult]
	if err := c.postJSON(ctx, path, payload, &result); err != nil {
		return "", err
	}
	if result.Data.AccessToken == "" {
		return "", fmt.Errorf("api: login response missing access token")
	}
	return result.Data.AccessToken, nil
}

// Logout notifies the platform that the session ends. Callers treat logout as
// fail-open: local session state is cleared whether or not this call succeeds.
func (c *Client) Logout(ctx context.Context) error {
	return c.postJSON(ctx, "/api/auth/logout", struct{}{}, nil)
}

// NotificationList fetches the full notification list for the account.
func (c *Client) NotificationList(ctx context.Context) ([]Notification, error) {
	var result envelope[[]Notification]
	if err := c.getJSON(ctx, "/api/notification/list", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// MarkNotificationRead acknowledges a single notification server-side.
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	payload := map[string]int64{"notificationId": notificationID}
	return c.postJSON(ctx, "/api/notification/read", payload, nil)
}

// MarkAllNotificationsRead acknowledges every notification server-side.
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.postJSON(ctx, "/api/notification/readall", struct{}{}, nil)
}

// ChatRooms fetches the rooms the account participates in, including the
// server-derived unread counts.
func (c *Client) ChatRooms(ctx context.Context) ([]Room, error) {
	var result envelope[[]Room]
	if err := c.getJSON(ctx, "/api/chat/rooms", nil, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// OnlineStatus reports whether the account is currently connected. This is a
// point-in-time snapshot; it carries no guarantee once the peer's status
// changes after the fetch.
func (c *Client) OnlineStatus(ctx context.Context, accountID int64) (bool, error) {
	query := url.Values{"accountId": []string{strconv.FormatInt(accountID, 10)}}
	var result envelope[bool]
	if err := c.getJSON(ctx, "/api/chat/online-status", query, &result); err != nil {
		return false, err
	}
	return result.Data, nil
}

// UploadChatFile uploads attachment content and returns the server-assigned
// file reference to embed in a FILE message body.
func (c *Client) UploadChatFile(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	request, err := c.newRequest(ctx, http.MethodPost, "/api/chat/upload", nil, &body)
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	var result envelope[string]
	if err := c.do(request, &result); err != nil {
		return "", err
	}
	return result.Data, nil
}

// ApplicantStats fetches the applicant breakdown for one job posting.
func (c *Client) ApplicantStats(ctx context.Context, jobPostingID int64) (ApplicantStats, error) {
	path := fmt.Sprintf("/api/business/applicants/%d/stats", jobPostingID)
	var result envelope[ApplicantStats]
	if err := c.getJSON(ctx, path, nil, &result); err != nil {
		return ApplicantStats{}, err
	}
	return result.Data, nil
}

// FileURL resolves a file reference returned by the upload endpoint into an
// absolute link. Absolute references pass through unchanged.
func (c *Client) FileURL(reference string) string {
	trimmed := strings.TrimSpace(reference)
	if trimmed == "" {
		return ""
	}
	if parsed, err := url.Parse(trimmed); err == nil && parsed.IsAbs() {
		return trimmed
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return c.baseURL.String() + trimmed
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	request, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return c.do(request, out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	request, err := c.newRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	return c.do(request, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL.String() + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	request, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	if token := c.session.Token(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	return request, nil
}

func (c *Client) do(request *http.Request, out interface{}) error {
	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("api: %s %s: unexpected status %d", request.Method, request.URL.Path, response.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("api: %s %s: decode response: %w", request.Method, request.URL.Path, err)
	}
	return nil
}
