// Package salesapi предоставляет клиент удалённого API продаж.
package salesapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mmeshcher/sales-dashboard/internal/model"
)

var (
	// ErrFetchFailed возвращается при любой неудаче получения продаж.
	ErrFetchFailed = errors.New("failed to fetch")
	// ErrAuth обозначает ошибку получения токена авторизации.
	ErrAuth = errors.New("authorization failed")
	// ErrQuery обозначает ошибку запроса продаж.
	ErrQuery = errors.New("sales query failed")
)

// TokenHeader задаёт заголовок, в котором передаётся токен авторизации.
const TokenHeader = "X-AUTOBIZZ-TOKEN"

// Client инкапсулирует HTTP-взаимодействие с API продаж.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     *TokenManager
	logger     *zap.Logger
}

// NewClient создаёт клиент API продаж по указанному адресу.
// Нулевой timeout отключает ограничение времени запроса.
func NewClient(baseURL, tokenType string, timeout time.Duration, logger *zap.Logger) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := &http.Client{Timeout: timeout}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		tokens:     NewTokenManager(base, tokenType, httpClient, time.Now),
		logger:     logger,
	}
}

// Tokens возвращает менеджер токенов клиента.
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// EncodeQuery переводит фильтры в параметры запроса.
// Курсоры передаются только непустыми и никогда не вместе.
func EncodeQuery(f model.Filters) url.Values {
	params := url.Values{}
	params.Set("startDate", f.StartDate)
	params.Set("endDate", f.EndDate)
	params.Set("priceMin", f.PriceMin)
	params.Set("email", f.Email)
	params.Set("phone", f.Phone)
	params.Set("sortBy", string(f.SortBy))
	params.Set("sortOrder", string(f.SortOrder))

	switch {
	case f.After != "":
		params.Set("after", f.After)
	case f.Before != "":
		params.Set("before", f.Before)
	}

	return params
}

// FetchSales запрашивает страницу продаж и дневные итоги для указанных фильтров.
func (c *Client) FetchSales(ctx context.Context, f model.Filters) (*model.SalesResponse, error) {
	if c == nil || c.baseURL == "" {
		return nil, fmt.Errorf("%w: sales api client not configured", ErrFetchFailed)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		c.logger.Error("failed to get auth token", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	res, err := c.fetchSales(ctx, token, f)
	if err != nil {
		c.logger.Error("failed to fetch sales",
			zap.Error(err),
			zap.String("startDate", f.StartDate),
			zap.String("endDate", f.EndDate),
		)
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	return res, nil
}

func (c *Client) fetchSales(ctx context.Context, token string, f model.Filters) (*model.SalesResponse, error) {
	u := c.baseURL + "/sales?" + EncodeQuery(f).Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrQuery, err)
	}
	req.Header.Set(TokenHeader, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", ErrQuery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status: %d", ErrQuery, resp.StatusCode)
	}

	var result model.SalesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrQuery, err)
	}

	return &result, nil
}
