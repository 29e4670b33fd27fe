package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/worklane/worklane-client/internal/auth"
	"go.uber.org/zap"
)

func testSession(t *testing.T) *auth.Session {
	t.Helper()
	issuer, err := auth.NewTokenIssuer(auth.TokenIssuerConfig{
		SigningSecret: []byte("test-secret"),
		Issuer:        "worklane-test",
	})
	if err != nil {
		t.Fatalf("failed to construct token issuer: %v", err)
	}
	token, err := issuer.Issue(5, "Mirae Recruiting", auth.AccountTypeBusiness)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	session := auth.NewSession()
	if err := session.Establish(token); err != nil {
		t.Fatalf("failed to establish session: %v", err)
	}
	return session
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *auth.Session) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	session := testSession(t)
	client, err := NewClient(Config{BaseURL: server.URL, Session: session, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("failed to construct client: %v", err)
	}
	return client, session
}

func writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func TestLoginReturnsAccessToken(t *testing.T) {
	var capturedPath string
	var capturedBody map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		writeData(w, map[string]string{"accessToken": "issued-token"})
	}))

	token, err := client.Login(context.Background(), auth.AccountTypeBusiness, "hire@worklane.dev", "password")
	if err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if token != "issued-token" {
		t.Fatalf("unexpected token %q", token)
	}
	if capturedPath != "/api/business/auth/login" {
		t.Fatalf("unexpected login path %q", capturedPath)
	}
	if capturedBody["email"] != "hire@worklane.dev" || capturedBody["password"] != "password" {
		t.Fatalf("unexpected login payload %v", capturedBody)
	}
}

func TestLoginUsesPersonalPathForPersonalAccounts(t *testing.T) {
	var capturedPath string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedPath = r.URL.Path
		writeData(w, map[string]string{"accessToken": "issued-token"})
	}))

	if _, err := client.Login(context.Background(), auth.AccountTypePersonal, "jobseeker@worklane.dev", "password"); err != nil {
		t.Fatalf("unexpected login error: %v", err)
	}
	if capturedPath != "/api/personal/auth/login" {
		t.Fatalf("unexpected login path %q", capturedPath)
	}
}

func TestLoginValidatesCredentialsBeforeAnyCall(t *testing.T) {
	called := false
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	if _, err := client.Login(context.Background(), auth.AccountTypeBusiness, "  ", "password"); !errors.Is(err, ErrMissingEmail) {
		t.Fatalf("expected ErrMissingEmail, got %v", err)
	}
	if _, err := client.Login(context.Background(), auth.AccountTypeBusiness, "hire@worklane.dev", ""); !errors.Is(err, ErrMissingPassword) {
		t.Fatalf("expected ErrMissingPassword, got %v", err)
	}
	if _, err := client.Login(context.Background(), 7, "hire@worklane.dev", "password"); !errors.Is(err, ErrUnknownAccount) {
		t.Fatalf("expected ErrUnknownAccount, got %v", err)
	}
	if called {
		t.Fatal("expected validation to fail before any network call")
	}
}

func TestNotificationListDecodesEnvelope(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); !strings.HasPrefix(got, "Bearer ") {
			t.Errorf("expected bearer authorization header, got %q", got)
		}
		writeData(w, []Notification{{ID: 1, Message: "hello", IsRead: 0}})
	}))

	notifications, err := client.NotificationList(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifications) != 1 || notifications[0].ID != 1 {
		t.Fatalf("unexpected list %+v", notifications)
	}
}

func TestMarkNotificationReadSendsIdentifier(t *testing.T) {
	var capturedBody map[string]int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/notification/read" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&capturedBody)
		writeData(w, nil)
	}))

	if err := client.MarkNotificationRead(context.Background(), 42); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if capturedBody["notificationId"] != 42 {
		t.Fatalf("unexpected payload %v", capturedBody)
	}
}

func TestOnlineStatusCarriesAccountQuery(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("accountId"); got != "9" {
			t.Errorf("unexpected accountId query %q", got)
		}
		writeData(w, true)
	}))

	online, err := client.OnlineStatus(context.Background(), 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !online {
		t.Fatal("expected online status")
	}
}

func TestUploadChatFileSendsMultipartFileField(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("expected multipart field \"file\": %v", err)
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "resume.pdf" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "attachment bytes" {
			t.Errorf("unexpected content %q", content)
		}
		writeData(w, "/uploads/abc.pdf")
	}))

	reference, err := client.UploadChatFile(context.Background(), "resume.pdf", strings.NewReader("attachment bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reference != "/uploads/abc.pdf" {
		t.Fatalf("unexpected reference %q", reference)
	}
}

func TestApplicantStatsDecodesBreakdown(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/business/applicants/3/stats" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		writeData(w, ApplicantStats{TotalApplicants: 5, DocumentPassed: 2})
	}))

	stats, err := client.ApplicantStats(context.Background(), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalApplicants != 5 || stats.DocumentPassed != 2 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestNonSuccessStatusSurfacesAsError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	if _, err := client.NotificationList(context.Background()); err == nil {
		t.Fatal("expected an error for a non-success status")
	}
}

func TestFileURLResolution(t *testing.T) {
	client, _ := newTestClient(t, http.NewServeMux())

	cases := []struct {
		reference string
		want      string
	}{
		{reference: "", want: ""},
		{reference: "https://cdn.worklane.dev/a.png", want: "https://cdn.worklane.dev/a.png"},
	}
	for _, testCase := range cases {
		if got := client.FileURL(testCase.reference); got != testCase.want {
			t.Fatalf("FileURL(%q) = %q, want %q", testCase.reference, got, testCase.want)
		}
	}

	relative := client.FileURL("/uploads/abc.pdf")
	if !strings.HasSuffix(relative, "/uploads/abc.pdf") || !strings.HasPrefix(relative, "http://") {
		t.Fatalf("expected relative reference to resolve against the base url, got %q", relative)
	}
	bare := client.FileURL("uploads/abc.pdf")
	if !strings.HasSuffix(bare, "/uploads/abc.pdf") {
		t.Fatalf("expected bare reference to gain a leading slash, got %q", bare)
	}
}

func TestNewClientRejectsMissingConfig(t *testing.T) {
	if _, err := NewClient(Config{Session: auth.NewSession()}); !errors.Is(err, errMissingBaseURL) {
		t.Fatalf("expected errMissingBaseURL, got %v", err)
	}
	if _, err := NewClient(Config{BaseURL: "http://localhost"}); !errors.Is(err, errMissingSession) {
		t.Fatalf("expected errMissingSession, got %v", err)
	}
}
