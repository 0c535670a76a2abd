package propertyclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/conveydesk/convey-cli/internal/auth"
	"github.com/conveydesk/convey-cli/internal/constants"
	"github.com/conveydesk/convey-cli/internal/credentials"
	"github.com/conveydesk/convey-cli/internal/environments"
)

// PropertyFile is the REST representation of a property file record.
type PropertyFile struct {
	ID               string `json:"id"`
	Reference        string `json:"reference"`
	Title            string `json:"title"`
	AddressLine1     string `json:"addressLine1"`
	AddressLine2     string `json:"addressLine2,omitempty"`
	City             string `json:"city"`
	Postcode         string `json:"postcode"`
	PropertyType     string `json:"propertyType"`
	Bedrooms         int    `json:"bedrooms"`
	AskingPrice      int64  `json:"askingPrice"`
	SellerName       string `json:"sellerName"`
	SellerEmail      string `json:"sellerEmail"`
	SolicitorName    string `json:"solicitorName,omitempty"`
	SolicitorEmail   string `json:"solicitorEmail,omitempty"`
	Notes            string `json:"notes,omitempty"`
	Status           string `json:"status"`
	CreatedAt        string `json:"createdAt"`
	UpdatedAt        string `json:"updatedAt"`
	LastModifiedByID string `json:"lastModifiedById,omitempty"`
}

// ListQuery narrows and orders a property file listing. The zero value
// requests the first page with the server's default ordering.
type ListQuery struct {
	Search   string
	Status   string
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

// ListResponse is one page of property files plus paging metadata.
type ListResponse struct {
	Items      []PropertyFile `json:"items"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalCount int            `json:"totalCount"`
}

// Property file lifecycle statuses as reported by the API.
const (
	StatusDraft      = "draft"
	StatusListed     = "listed"
	StatusUnderOffer = "under_offer"
	StatusSold       = "sold"
	StatusWithdrawn  = "withdrawn"
)

// Statuses lists every lifecycle status, for flag validation and prompts.
var Statuses = []string{StatusDraft, StatusListed, StatusUnderOffer, StatusSold, StatusWithdrawn}

type apiError struct {
	Message string `json:"message"`
}

// Client talks to the property-file REST API with bearer/API-key auth
// and retry on transient failures.
type Client struct {
	baseURL     string
	creds       *credentials.Credentials
	log         *zerolog.Logger
	auth        *auth.OAuthService
	httpClient  *http.Client
	httpTimeout time.Duration
}

func New(creds *credentials.Credentials, environmentSet *environments.EnvironmentSet, l *zerolog.Logger) *Client {
	timeout := time.Minute * 1
	return &Client{
		baseURL:     environmentSet.APIBase,
		creds:       creds,
		log:         l,
		auth:        auth.NewOAuthService(environmentSet),
		httpClient:  &http.Client{Timeout: timeout},
		httpTimeout: timeout,
	}
}

func (c *Client) SetHTTPTimeout(timeout time.Duration) {
	c.httpTimeout = timeout
	c.httpClient.Timeout = timeout
}

// Create submits a new property file. The request carries an idempotency
// key so a retried create never produces a duplicate record.
func (c *Client) Create(ctx context.Context, in *PropertyFile) (*PropertyFile, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode property file: %w", err)
	}

	idempotencyKey := uuid.NewString()
	var out PropertyFile
	err = c.doWithRetry(ctx, func() error {
		req, err := c.newRequest(ctx, http.MethodPost, constants.PropertyFilesPath, bytes.NewReader(body))
		if err != nil {
			return retry.Unrecoverable(err)
		}
		req.Header.Set("Idempotency-Key", idempotencyKey)
		return c.do(req, http.StatusCreated, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Get fetches a single property file by ID.
func (c *Client) Get(ctx context.Context, id string) (*PropertyFile, error) {
	if id == "" {
		return nil, fmt.Errorf("property file id is empty")
	}
	var out PropertyFile
	err := c.doWithRetry(ctx, func() error {
		req, err := c.newRequest(ctx, http.MethodGet, constants.PropertyFilesPath+"/"+url.PathEscape(id), nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		return c.do(req, http.StatusOK, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces the mutable fields of a property file.
func (c *Client) Update(ctx context.Context, id string, in *PropertyFile) (*PropertyFile, error) {
	if id == "" {
		return nil, fmt.Errorf("property file id is empty")
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("encode property file: %w", err)
	}
	var out PropertyFile
	err = c.doWithRetry(ctx, func() error {
		req, err := c.newRequest(ctx, http.MethodPut, constants.PropertyFilesPath+"/"+url.PathEscape(id), bytes.NewReader(body))
		if err != nil {
			return retry.Unrecoverable(err)
		}
		return c.do(req, http.StatusOK, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a property file by ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("property file id is empty")
	}
	return c.doWithRetry(ctx, func() error {
		req, err := c.newRequest(ctx, http.MethodDelete, constants.PropertyFilesPath+"/"+url.PathEscape(id), nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		return c.do(req, http.StatusNoContent, nil)
	})
}

// List fetches one page of property files. Page sizes above the API
// maximum are clamped rather than rejected.
func (c *Client) List(ctx context.Context, q ListQuery) (*ListResponse, error) {
	params := url.Values{}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.SortBy != "" {
		params.Set("sort_by", q.SortBy)
	}
	if q.SortDir != "" {
		params.Set("sort_dir", q.SortDir)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))

	pageSize := q.PageSize
	if pageSize < 1 {
		pageSize = constants.DefaultPaginationLimit
	}
	if pageSize > constants.MaxPaginationLimit {
		pageSize = constants.MaxPaginationLimit
	}
	params.Set("page_size", strconv.Itoa(pageSize))

	var out ListResponse
	err := c.doWithRetry(ctx, func() error {
		req, err := c.newRequest(ctx, http.MethodGet, constants.PropertyFilesPath+"?"+params.Encode(), nil)
		if err != nil {
			return retry.Unrecoverable(err)
		}
		return c.do(req, http.StatusOK, &out)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "convey-cli")
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.attachAuth(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (c *Client) attachAuth(req *http.Request) error {
	if c.creds == nil {
		return fmt.Errorf("credentials not provided")
	}
	switch c.creds.AuthType {
	case credentials.AuthTypeApiKey:
		if c.creds.APIKey != "" {
			req.Header.Set("Authorization", "Apikey "+c.creds.APIKey)
		}
	default:
		if c.creds.Tokens != nil && c.creds.Tokens.AccessToken != "" {
			needsRefresh, err := auth.TokenNeedsRefresh(c.creds.Tokens.AccessToken, time.Now())
			if err != nil {
				return err
			}
			if needsRefresh {
				c.log.Debug().Msg("token expired or approaching expiration, refreshing")
				newTokens, err := c.auth.RefreshToken(req.Context(), c.creds.Tokens)
				if err != nil {
					return err
				}
				c.creds.Tokens = newTokens
				if err := credentials.Save(newTokens); err != nil {
					c.log.Error().Err(err).Msg("failed to save credentials")
					return err
				}
			}
			req.Header.Set("Authorization", "Bearer "+c.creds.Tokens.AccessToken)
		}
	}
	return nil
}

// do executes the request and decodes a success body into out. Server
// errors (5xx) are returned as retryable; everything else below 500 is
// wrapped in retry.Unrecoverable so the caller fails fast.
func (c *Client) do(req *http.Request, wantStatus int, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network errors are transient; let the retry loop try again.
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn().Err(cerr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode == wantStatus {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return retry.Unrecoverable(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := string(body)
	var apiErr apiError
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
		msg = apiErr.Message
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("server error %d: %s", resp.StatusCode, msg)
	case resp.StatusCode == http.StatusUnauthorized:
		return retry.Unrecoverable(fmt.Errorf("unauthorized: %s, try running %s", msg, "`convey login`"))
	case resp.StatusCode == http.StatusForbidden:
		return retry.Unrecoverable(fmt.Errorf("forbidden: %s", msg))
	case resp.StatusCode == http.StatusNotFound:
		return retry.Unrecoverable(fmt.Errorf("property file not found: %s", msg))
	default:
		return retry.Unrecoverable(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg))
	}
}

func (c *Client) doWithRetry(ctx context.Context, fn func() error) error {
	err := retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(3),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		c.log.Error().Err(err).Msg("property file request failed")
	}
	return err
}
