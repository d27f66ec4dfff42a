package chatclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"storypals/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*APIClient, *MemorySession) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	session := NewMemorySession(Tokens{AccessToken: "access-1", RefreshToken: "refresh-1"})
	return NewAPIClient(srv.URL+"/api/", session, WithHTTPClient(srv.Client())), session
}

func TestAPIClientLogin_StoresTokens(t *testing.T) {
	client, session := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "parent@example.com" {
			t.Errorf("unexpected body %+v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"user":   domain.User{ID: "u1", Email: "parent@example.com"},
			"tokens": map[string]any{"access_token": "new-access", "refresh_token": "new-refresh", "expires_in": 900},
		})
	})
	_ = session.Clear()

	user, err := client.Login(context.Background(), "parent@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != "u1" || session.Token() != "new-access" || session.RefreshToken() != "new-refresh" {
		t.Fatalf("unexpected login state user=%+v token=%q", user, session.Token())
	}
}

func TestAPIClientSendMessage_BearerAndReply(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer access-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req SendRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.CharacterID != "luna" || req.Content != "hi" {
			t.Errorf("unexpected send request %+v", req)
		}
		_, _ = w.Write([]byte(`{"reply":"Hello little star!"}`))
	})

	reply, err := client.SendMessage(context.Background(), SendRequest{CharacterID: "luna", Content: "hi"})
	if err != nil || reply != "Hello little star!" {
		t.Fatalf("unexpected reply %q (%v)", reply, err)
	}
}

func TestAPIClient_UnauthorizedClearsSession(t *testing.T) {
	client, session := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
	})

	_, err := client.Me(context.Background())
	if KindOf(err) != KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
	if session.Token() != "" || session.RefreshToken() != "" {
		t.Fatalf("expected session cleared after 401")
	}
	if UserMessage(err) != msgAuth {
		t.Fatalf("unexpected user message %q", UserMessage(err))
	}
}

func TestAPIClient_ServerErrorPayloads(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		kind    ErrorKind
		message string
	}{
		{name: "error key", status: http.StatusBadGateway, body: `{"error":"the character could not answer right now"}`, kind: KindServer, message: "the character could not answer right now"},
		{name: "detail key", status: http.StatusInternalServerError, body: `{"detail":"Model not found"}`, kind: KindServer, message: "Model not found"},
		{name: "detail list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"},{"msg":"too long"}]}`, kind: KindValidation, message: "field required; too long"},
		{name: "other object", status: http.StatusInternalServerError, body: `{"code":17}`, kind: KindServer, message: `{"code":17}`},
		{name: "plain text", status: http.StatusServiceUnavailable, body: "upstream unavailable", kind: KindServer, message: "upstream unavailable"},
		{name: "html", status: http.StatusBadGateway, body: "<html>bad gateway</html>", kind: KindServer, message: "Bad Gateway"},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"message content is required"}`, kind: KindValidation, message: "message content is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.SendMessage(context.Background(), SendRequest{CharacterID: "luna", Content: "hi"})
			var apiErr *Error
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *Error, got %T %v", err, err)
			}
			if apiErr.Kind != tc.kind || apiErr.Status != tc.status || apiErr.Message != tc.message {
				t.Fatalf("unexpected error %+v", apiErr)
			}
			if UserMessage(err) != tc.message {
				t.Fatalf("expected banner %q, got %q", tc.message, UserMessage(err))
			}
		})
	}
}

func TestAPIClientChatHistory_NotFoundIsEmpty(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat/history/u1/luna" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	})

	history, err := client.ChatHistory(context.Background(), "u1", "luna")
	if err != nil || history == nil || len(history) != 0 {
		t.Fatalf("expected empty history, got %+v (%v)", history, err)
	}
}

func TestAPIClient_NetworkAndCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewAPIClient(url+"/api", NewMemorySession(Tokens{}))
	_, err := client.SendMessage(context.Background(), SendRequest{CharacterID: "luna", Content: "hi"})
	if KindOf(err) != KindNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if UserMessage(err) != msgNetwork {
		t.Fatalf("unexpected banner %q", UserMessage(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.SendMessage(ctx, SendRequest{CharacterID: "luna", Content: "hi"})
	if !IsCanceled(err) || UserMessage(err) != "" {
		t.Fatalf("expected silent cancellation, got %v", err)
	}
}

func TestAPIClientLogout_RevokesAndClears(t *testing.T) {
	var revoked string
	client, session := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		revoked = body["refresh_token"]
		w.WriteHeader(http.StatusNoContent)
	})

	if err := client.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if revoked != "refresh-1" || session.Token() != "" {
		t.Fatalf("expected refresh revoked and session cleared, revoked=%q", revoked)
	}
}

func TestNewAPIClient_TimeoutLeavesSharedClientAlone(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	before := NewAPIClient("", nil, WithTimeout(5*time.Second), WithHTTPClient(shared))
	after := NewAPIClient("", nil, WithHTTPClient(shared), WithTimeout(5*time.Second))

	if shared.Timeout != time.Minute {
		t.Fatalf("shared client was modified: timeout %v", shared.Timeout)
	}
	for name, c := range map[string]*APIClient{"timeout first": before, "timeout last": after} {
		if c.httpClient == shared {
			t.Fatalf("%s: expected a copy of the shared client", name)
		}
		if c.httpClient.Timeout != 5*time.Second {
			t.Fatalf("%s: expected 5s timeout, got %v", name, c.httpClient.Timeout)
		}
	}

	plain := NewAPIClient("", nil, WithHTTPClient(shared))
	if plain.httpClient != shared {
		t.Fatalf("expected the shared client to be used as is without WithTimeout")
	}
}

func TestPayloadMessage_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("é", maxPlainMessage+20)

	msg := payloadMessage(http.StatusServiceUnavailable, []byte(body))
	if !utf8.ValidString(msg) {
		t.Fatalf("truncated message is not valid UTF-8: %q", msg)
	}
	if got := utf8.RuneCountInString(msg); got != maxPlainMessage {
		t.Fatalf("expected %d runes, got %d", maxPlainMessage, got)
	}

	if short := payloadMessage(http.StatusServiceUnavailable, []byte("ñandú caído")); short != "ñandú caído" {
		t.Fatalf("short message changed: %q", short)
	}
}
