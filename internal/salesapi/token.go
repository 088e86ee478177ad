package salesapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RefreshMargin задаёт запас до истечения токена, при котором токен запрашивается заново.
const RefreshMargin = 60 * time.Second

// DefaultTokenType задаёт тип токена, запрашиваемого у эндпоинта авторизации.
const DefaultTokenType = "frontEndTest"

type authRequest struct {
	TokenType string `json:"tokenType"`
}

type authResponse struct {
	Token  string `json:"token"`
	Expire int64  `json:"expire"`
}

// TokenManager хранит токен авторизации и его срок действия и обновляет токен по необходимости.
type TokenManager struct {
	baseURL    string
	tokenType  string
	httpClient *http.Client
	now        func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time

	group singleflight.Group
}

// NewTokenManager создаёт менеджер токенов для эндпоинта авторизации по адресу baseURL.
func NewTokenManager(baseURL, tokenType string, httpClient *http.Client, now func() time.Time) *TokenManager {
	if tokenType == "" {
		tokenType = DefaultTokenType
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if now == nil {
		now = time.Now
	}
	return &TokenManager{
		baseURL:    baseURL,
		tokenType:  tokenType,
		httpClient: httpClient,
		now:        now,
	}
}

// Token возвращает действующий токен, запрашивая новый, если токена нет
// или до его истечения осталось не больше RefreshMargin.
// Одновременные обновления объединяются в один запрос.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if token, ok := m.cached(); ok {
		return token, nil
	}

	// Общий запрос не отменяется вместе с контекстом первого вызывающего.
	ch := m.group.DoChan("token", func() (any, error) {
		if token, ok := m.cached(); ok {
			return token, nil
		}
		return m.acquire(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrAuth, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// ExpiresAt возвращает срок действия закэшированного токена.
func (m *TokenManager) ExpiresAt() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiresAt
}

func (m *TokenManager) cached() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token == "" {
		return "", false
	}
	if !m.now().Before(m.expiresAt.Add(-RefreshMargin)) {
		return "", false
	}
	return m.token, true
}

func (m *TokenManager) acquire(ctx context.Context) (string, error) {
	body, err := json.Marshal(authRequest{TokenType: m.tokenType})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %w", ErrAuth, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/getAuthorize", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrAuth, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: do request: %w", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status: %d", ErrAuth, resp.StatusCode)
	}

	var result authResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", ErrAuth, err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("%w: empty token", ErrAuth)
	}

	m.mu.Lock()
	m.token = result.Token
	m.expiresAt = m.now().Add(time.Duration(result.Expire) * time.Second)
	m.mu.Unlock()

	return result.Token, nil
}
