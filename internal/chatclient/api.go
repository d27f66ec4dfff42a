package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"storypals/internal/domain"
)

const (
	DefaultBaseURL  = "http://localhost:8080/api"
	maxResponseBody = 4 << 20
)

// APIClient habla con el backend REST. Todo error que devuelve es un *Error.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	session    SessionProvider
	logger     *zap.Logger

	timeout    time.Duration
	hasTimeout bool
}

type Option func(*APIClient)

func WithHTTPClient(c *http.Client) Option {
	return func(a *APIClient) {
		if c != nil {
			a.httpClient = c
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(a *APIClient) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTimeout fija un timeout por request. Cero significa sin timeout.
// Se aplica sobre una copia del *http.Client, sin importar el orden de las opciones.
func WithTimeout(d time.Duration) Option {
	return func(a *APIClient) {
		a.timeout = d
		a.hasTimeout = true
	}
}

func NewAPIClient(baseURL string, session SessionProvider, opts ...Option) *APIClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if session == nil {
		session = NewMemorySession(Tokens{})
	}
	a := &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		session:    session,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.hasTimeout {
		hc := *a.httpClient
		hc.Timeout = a.timeout
		a.httpClient = &hc
	}
	return a
}

func (a *APIClient) Session() SessionProvider { return a.session }

// SendRequest es el cuerpo de POST /chat/message.
type SendRequest struct {
	CharacterID string `json:"character_id"`
	Content     string `json:"content"`
}

type authResponse struct {
	User   domain.User `json:"user"`
	Tokens Tokens      `json:"tokens"`
}

func (a *APIClient) Register(ctx context.Context, email, password, displayName string) (domain.User, error) {
	var resp authResponse
	err := a.do(ctx, http.MethodPost, "/auth/register", map[string]string{
		"email":        email,
		"password":     password,
		"display_name": displayName,
	}, &resp)
	if err != nil {
		return domain.User{}, err
	}
	return resp.User, a.storeTokens(resp.Tokens)
}

// Login autentica y guarda los tokens en la sesion.
func (a *APIClient) Login(ctx context.Context, email, password string) (domain.User, error) {
	var resp authResponse
	err := a.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp)
	if err != nil {
		return domain.User{}, err
	}
	return resp.User, a.storeTokens(resp.Tokens)
}

// Logout revoca el refresh token (best-effort) y limpia la sesion local.
func (a *APIClient) Logout(ctx context.Context) error {
	if refresh := a.session.RefreshToken(); refresh != "" {
		if err := a.do(ctx, http.MethodPost, "/auth/logout", map[string]string{"refresh_token": refresh}, nil); err != nil {
			a.logger.Warn("revoke refresh token failed", zap.Error(err))
		}
	}
	if err := a.session.Clear(); err != nil {
		return &Error{Kind: KindServer, Message: "could not clear session", Err: err}
	}
	return nil
}

func (a *APIClient) Me(ctx context.Context) (domain.User, error) {
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := a.do(ctx, http.MethodGet, "/users/me", nil, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

// UpdateProfile cambia el nombre visible de la cuenta.
func (a *APIClient) UpdateProfile(ctx context.Context, displayName string) (domain.User, error) {
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := a.do(ctx, http.MethodPut, "/users/me", map[string]string{"display_name": displayName}, &resp); err != nil {
		return domain.User{}, err
	}
	return resp.User, nil
}

func (a *APIClient) Characters(ctx context.Context) ([]domain.Character, error) {
	var out []domain.Character
	if err := a.do(ctx, http.MethodGet, "/characters", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage devuelve el texto generado por el personaje.
func (a *APIClient) SendMessage(ctx context.Context, req SendRequest) (string, error) {
	var resp struct {
		Reply string `json:"reply"`
	}
	if err := a.do(ctx, http.MethodPost, "/chat/message", req, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// ChatHistory devuelve el historial del par. Un 404 es un historial vacio.
func (a *APIClient) ChatHistory(ctx context.Context, userID, characterID string) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	path := "/chat/history/" + url.PathEscape(userID) + "/" + url.PathEscape(characterID)
	if err := a.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		var e *Error
		if errors.As(err, &e) && e.Status == http.StatusNotFound {
			return []domain.ChatMessage{}, nil
		}
		return nil, err
	}
	if out == nil {
		out = []domain.ChatMessage{}
	}
	return out, nil
}

func (a *APIClient) SaveChatHistory(ctx context.Context, userID, characterID string, messages []domain.ChatMessage) error {
	return a.do(ctx, http.MethodPost, "/chat/history", map[string]any{
		"user_id":      userID,
		"character_id": characterID,
		"messages":     messages,
	}, nil)
}

func (a *APIClient) Children(ctx context.Context) ([]domain.Child, error) {
	var out []domain.Child
	if err := a.do(ctx, http.MethodGet, "/children", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) Child(ctx context.Context, id string) (domain.Child, error) {
	var out domain.Child
	if err := a.do(ctx, http.MethodGet, "/children/"+url.PathEscape(id), nil, &out); err != nil {
		return domain.Child{}, err
	}
	return out, nil
}

func (a *APIClient) ChildProgress(ctx context.Context, childID string) ([]domain.LearningProgress, error) {
	var out []domain.LearningProgress
	if err := a.do(ctx, http.MethodGet, "/analytics/progress?child_id="+url.QueryEscape(childID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *APIClient) ChildReviews(ctx context.Context, childID string) ([]domain.ParentReview, error) {
	var out []domain.ParentReview
	if err := a.do(ctx, http.MethodGet, "/analytics/reviews?child_id="+url.QueryEscape(childID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReviewRequest es el cuerpo de POST /analytics/reviews.
type ReviewRequest struct {
	ChildID     string `json:"child_id"`
	CharacterID string `json:"character_id,omitempty"`
	Notes       string `json:"notes"`
	Rating      *int   `json:"rating,omitempty"`
}

func (a *APIClient) AddReview(ctx context.Context, req ReviewRequest) (domain.ParentReview, error) {
	var out domain.ParentReview
	if err := a.do(ctx, http.MethodPost, "/analytics/reviews", req, &out); err != nil {
		return domain.ParentReview{}, err
	}
	return out, nil
}

func (a *APIClient) Interactions(ctx context.Context, days int) (domain.InteractionReport, error) {
	var out domain.InteractionReport
	path := "/analytics/interactions"
	if days > 0 {
		path += "?days=" + strconv.Itoa(days)
	}
	if err := a.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return domain.InteractionReport{}, err
	}
	return out, nil
}

func (a *APIClient) storeTokens(tokens Tokens) error {
	if tokens.AccessToken == "" {
		return &Error{Kind: KindServer, Message: "login response without access token"}
	}
	if err := a.session.SetTokens(tokens); err != nil {
		return &Error{Kind: KindServer, Message: "could not store session", Err: err}
	}
	return nil
}

// do ejecuta la request y normaliza cualquier fallo a *Error. Un 401 limpia la sesion.
func (a *APIClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return &Error{Kind: KindValidation, Message: "could not encode request", Err: err}
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindValidation, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := a.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return transportError(ctx, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if err := a.session.Clear(); err != nil {
			a.logger.Warn("clear session after 401 failed", zap.Error(err))
		}
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := responseError(resp.StatusCode, raw)
		a.logger.Debug("api error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("kind", string(apiErr.Kind)),
		)
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: KindServer, Status: resp.StatusCode, Message: "invalid response from server", Err: err}
	}
	return nil
}
