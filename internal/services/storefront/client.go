package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"promocart/internal/config"
	"promocart/internal/logger"
)

const cartCookie = "cart"

type Client struct {
	baseURL    string
	routes     config.Routes
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(cfg *config.Config, logger *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.StorefrontURL, "/"),
		routes:  cfg.Routes,
		httpClient: &http.Client{
			Timeout: cfg.StorefrontTimeout,
		},
		logger: logger,
	}
}

// GetCart fetches the session's current cart
func (c *Client) GetCart(ctx context.Context, session Session) (*Cart, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.routes.Cart, session, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var cart Cart
	if err := c.do(req, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// AddItem adds a variant to the cart and asks for the given sections to be rendered
func (c *Client) AddItem(ctx context.Context, session Session, add AddRequest) (*AddResponse, error) {
	form := url.Values{}
	form.Set("id", strconv.FormatInt(add.VariantID, 10))
	form.Set("quantity", strconv.Itoa(add.Quantity))
	if len(add.Sections) > 0 {
		form.Set("sections", strings.Join(add.Sections, ","))
		form.Set("sections_url", add.SectionsURL)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.routes.CartAdd, session, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/javascript")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	var added AddResponse
	if err := c.do(req, &added); err != nil {
		return nil, err
	}
	return &added, nil
}

// ChangeLine sets the quantity of a 1-based cart line; zero removes it
func (c *Client) ChangeLine(ctx context.Context, session Session, change ChangeRequest) (*CartState, error) {
	jsonData, err := json.Marshal(change)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal change request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.routes.CartChange, session, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	var state CartState
	if err := c.do(req, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetProduct fetches the public product JSON by handle
func (c *Client) GetProduct(ctx context.Context, handle string) (*Product, error) {
	path := fmt.Sprintf("%s/%s.js", strings.TrimSuffix(c.routes.Products, "/"), url.PathEscape(handle))

	req, err := c.newRequest(ctx, http.MethodGet, path, Session{}, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var product Product
	if err := c.do(req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, session Session, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if session.CartToken != "" {
		req.AddCookie(&http.Cookie{Name: cartCookie, Value: session.CartToken})
	}
	return req, nil
}

// do sends req and decodes the body into out. A body carrying a status field
// is an application error whatever the HTTP status.
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var payload errorPayload
	if json.Unmarshal(body, &payload) == nil && payload.present() {
		c.logger.Debug("Storefront %s %s returned status %s", req.Method, req.URL.Path, string(payload.Status))
		return newApplicationError(payload)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}
