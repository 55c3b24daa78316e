package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/kukufarm/kukutrack/internal/config"
	"github.com/kukufarm/kukutrack/internal/domain/models"
)

// TokenSource supplies the bearer token for protected calls. The session
// guard is the only implementation in production; it returns
// models.ErrAuthenticationRequired when no live session exists.
type TokenSource interface {
	Token() (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface, letting
// main wire the client before the guard exists.
type TokenSourceFunc func() (string, error)

func (f TokenSourceFunc) Token() (string, error) { return f() }

// AuthAPI covers the account lifecycle endpoints.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (models.Session, error)
	Signup(ctx context.Context, name, email, password string) error
	Activate(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, password, token string) error
	ResendActivation(ctx context.Context, email string) error
	UpdateProfile(ctx context.Context, name, password string) error
}

// TransactionAPI covers ledger CRUD against the system of record.
type TransactionAPI interface {
	CreateTransaction(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error)
	UpdateTransaction(ctx context.Context, id string, rec models.TransactionRecord) (models.TransactionRecord, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, kind models.TransactionKind, category string) (models.TransactionPage, error)
}

// InventoryAPI covers the chicken count endpoints. Adjustments are always
// relative: the backend adds quantity_change to its stored value.
type InventoryAPI interface {
	ListChickens(ctx context.Context) ([]models.LivestockCount, error)
	AdjustChicken(ctx context.Context, id string, change int, reason models.ChangeReason) error
	ChickenHistory(ctx context.Context, typ models.LivestockType, reason models.ChangeReason) ([]models.InventoryChangeEntry, error)
}

// SummaryAPI exposes the server-computed financial summary.
type SummaryAPI interface {
	FinancialSummary(ctx context.Context) (models.FinancialSummary, error)
}

// Client is the full backend surface.
type Client interface {
	AuthAPI
	TransactionAPI
	InventoryAPI
	SummaryAPI
}

// APIClient is the resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	tokens     TokenSource
}

// NewClient builds the backend client. The base URL carries no version
// prefix; versioned paths are spelled out per endpoint.
func NewClient(cfg config.BackendConfig, tokens TokenSource) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(cfg.Timeout)

	return &APIClient{
		httpClient: restyClient,
		tokens:     tokens,
	}
}

// apiError mirrors the backend's uniform error payload.
type apiError struct {
	Message string `json:"message"`
}

func (c *APIClient) request(ctx context.Context) *resty.Request {
	return c.httpClient.R().SetContext(ctx)
}

func (c *APIClient) authRequest(ctx context.Context) (*resty.Request, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, err
	}
	return c.request(ctx).SetAuthToken(token), nil
}

// fault converts a finished exchange into the typed domain outcome.
func fault(op string, resp *resty.Response, apiErr *apiError, err error) error {
	if err != nil {
		return &models.NetworkError{Op: op, Err: err}
	}
	if !resp.IsError() {
		return nil
	}

	message := ""
	if apiErr != nil {
		message = apiErr.Message
	}

	switch resp.StatusCode() {
	case http.StatusUnauthorized:
		if message == "" {
			return models.ErrAuthenticationRequired
		}
		return fmt.Errorf("%w: %s", models.ErrAuthenticationRequired, message)
	case http.StatusNotFound:
		if message == "" {
			return models.ErrNotFound
		}
		return fmt.Errorf("%w: %s", models.ErrNotFound, message)
	default:
		return &models.RemoteError{StatusCode: resp.StatusCode(), Message: message}
	}
}

func (c *APIClient) Login(ctx context.Context, email, password string) (models.Session, error) {
	result := new(credentialsPayload)
	apiErr := new(apiError)

	resp, err := c.request(ctx).
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(result).
		SetError(apiErr).
		Post("/v1/login")
	if ferr := fault("login", resp, apiErr, err); ferr != nil {
		return models.Session{}, ferr
	}

	return models.Session{
		Token:  result.Token,
		Expiry: result.Expiry,
		Name:   result.Name,
		Email:  email,
	}, nil
}

func (c *APIClient) Signup(ctx context.Context, name, email, password string) error {
	apiErr := new(apiError)
	resp, err := c.request(ctx).
		SetBody(map[string]string{"name": name, "email": email, "password": password}).
		SetError(apiErr).
		Post("/v1/users")
	return fault("signup", resp, apiErr, err)
}

func (c *APIClient) Activate(ctx context.Context, token string) error {
	apiErr := new(apiError)
	resp, err := c.request(ctx).
		SetBody(map[string]string{"token": token}).
		SetError(apiErr).
		Put("/v1/users/activate")
	return fault("activate account", resp, apiErr, err)
}

func (c *APIClient) RequestPasswordReset(ctx context.Context, email string) error {
	apiErr := new(apiError)
	resp, err := c.request(ctx).
		SetBody(map[string]string{"email": email}).
		SetError(apiErr).
		Post("/v1/tokens/password/reset")
	return fault("request password reset", resp, apiErr, err)
}

func (c *APIClient) ResetPassword(ctx context.Context, password, token string) error {
	apiErr := new(apiError)
	resp, err := c.request(ctx).
		SetBody(map[string]string{"password": password, "token": token}).
		SetError(apiErr).
		Put("/v1/users/password/reset")
	return fault("reset password", resp, apiErr, err)
}

func (c *APIClient) ResendActivation(ctx context.Context, email string) error {
	apiErr := new(apiError)
	resp, err := c.request(ctx).
		SetBody(map[string]string{"email": email}).
		SetError(apiErr).
		Post("/v1/tokens/resend/activation")
	return fault("resend activation", resp, apiErr, err)
}

func (c *APIClient) UpdateProfile(ctx context.Context, name, password string) error {
	req, err := c.authRequest(ctx)
	if err != nil {
		return err
	}

	body := map[string]string{}
	if name != "" {
		body["name"] = name
	}
	if password != "" {
		body["password"] = password
	}

	apiErr := new(apiError)
	// Profile lives outside the /v1 prefix on the current backend.
	resp, err := req.SetBody(body).SetError(apiErr).Put("/auth/users/profile")
	return fault("update profile", resp, apiErr, err)
}

func (c *APIClient) CreateTransaction(ctx context.Context, rec models.TransactionRecord) (models.TransactionRecord, error) {
	req, err := c.authRequest(ctx)
	if err != nil {
		return models.TransactionRecord{}, err
	}

	result := new(transactionPayload)
	apiErr := new(apiError)

	resp, err := req.
		SetBody(encodeTransaction(rec)).
		SetResult(result).
		SetError(apiErr).
		Post("/v1/auth/transactions")
	if ferr := fault("create transaction", resp, apiErr, err); ferr != nil {
		return models.TransactionRecord{}, ferr
	}

	return decodeTransaction(*result)
}

func (c *APIClient) UpdateTransaction(ctx context.Context, id string, rec models.TransactionRecord) (models.TransactionRecord, error) {
	req, err := c.authRequest(ctx)
	if err != nil {
		return models.TransactionRecord{}, err
	}

	result := new(transactionPayload)
	apiErr := new(apiError)

	resp, err := req.
		SetBody(encodeTransaction(rec)).
		SetResult(result).
		SetError(apiErr).
		Put(fmt.Sprintf("/v1/auth/transactions/%s", id))
	if ferr := fault("update transaction", resp, apiErr, err); ferr != nil {
		return models.TransactionRecord{}, ferr
	}

	updated, derr := decodeTransaction(*result)
	if derr != nil {
		return models.TransactionRecord{}, derr
	}
	if updated.ID == "" {
		updated.ID = id
	}
	return updated, nil
}

func (c *APIClient) DeleteTransaction(ctx context.Context, id string) error {
	req, err := c.authRequest(ctx)
	if err != nil {
		return err
	}

	apiErr := new(apiError)
	resp, err := req.SetError(apiErr).Delete(fmt.Sprintf("/v1/auth/transactions/%s", id))
	return fault("delete transaction", resp, apiErr, err)
}

func (c *APIClient) ListTransactions(ctx context.Context, kind models.TransactionKind, category string) (models.TransactionPage, error) {
	req, err := c.authRequest(ctx)
	if err != nil {
		return models.TransactionPage{}, err
	}

	if category != "" && category != "all" {
		req.SetQueryParam("category_name", category)
	}

	result := new(transactionListPayload)
	apiErr := new(apiError)

	resp, err := req.
		SetResult(result).
		SetError(apiErr).
		Get(fmt.Sprintf("/v1/auth/transactions/type/%s", kind))
	if ferr := fault("list transactions", resp, apiErr, err); ferr != nil {
		return models.TransactionPage{}, ferr
	}

	page := models.TransactionPage{TotalSum: result.TotalSum}
	for _, p := range result.Transactions {
		rec, derr := decodeTransaction(p)
		if derr != nil {
			return models.TransactionPage{}, derr
		}
		page.Records = append(page.Records, rec)
	}
	return page, nil
}

func (c *APIClient) ListChickens(ctx context.Context) ([]models.LivestockCount, error) {
	req, err := c.authRequest(ctx)
	if err != nil {
		return nil, err
	}

	result := new([]chickenPayload)
	apiErr := new(apiError)

	resp, err := req.SetResult(result).SetError(apiErr).Get("/v1/auth/chickens")
	if ferr := fault("list chickens", resp, apiErr, err); ferr != nil {
		return nil, ferr
	}

	counts := make([]models.LivestockCount, 0, len(*result))
	for _, p := range *result {
		count, derr := decodeChicken(p)
		if derr != nil {
			return nil, derr
		}
		counts = append(counts, count)
	}
	return counts, nil
}

func (c *APIClient) AdjustChicken(ctx context.Context, id string, change int, reason models.ChangeReason) error {
	req, err := c.authRequest(ctx)
	if err != nil {
		return err
	}

	apiErr := new(apiError)
	resp, err := req.
		SetBody(map[string]any{"quantity": change, "reason": string(reason)}).
		SetError(apiErr).
		Put(fmt.Sprintf("/v1/auth/chickens/%s", id))
	return fault("adjust chicken count", resp, apiErr, err)
}

func (c *APIClient) ChickenHistory(ctx context.Context, typ models.LivestockType, reason models.ChangeReason) ([]models.InventoryChangeEntry, error) {
	req, err := c.authRequest(ctx)
	if err != nil {
		return nil, err
	}

	if typ != "" {
		req.SetQueryParam("type", string(typ))
	}
	if reason != "" {
		req.SetQueryParam("reason", string(reason))
	}

	result := new([]historyPayload)
	apiErr := new(apiError)

	resp, err := req.SetResult(result).SetError(apiErr).Get("/v1/auth/chicken-history")
	if ferr := fault("chicken history", resp, apiErr, err); ferr != nil {
		return nil, ferr
	}

	entries := make([]models.InventoryChangeEntry, 0, len(*result))
	for _, p := range *result {
		entry, derr := decodeHistory(p)
		if derr != nil {
			return nil, derr
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *APIClient) FinancialSummary(ctx context.Context) (models.FinancialSummary, error) {
	req, err := c.authRequest(ctx)
	if err != nil {
		return models.FinancialSummary{}, err
	}

	result := new(models.FinancialSummary)
	apiErr := new(apiError)

	resp, err := req.SetResult(result).SetError(apiErr).Get("/v1/auth/financial-summary")
	if ferr := fault("financial summary", resp, apiErr, err); ferr != nil {
		return models.FinancialSummary{}, ferr
	}

	result.Source = models.SummaryRemote
	return *result, nil
}
