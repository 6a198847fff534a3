// Package apiclient implements the HTTP transport for the URL-shortening
// service API. Every failed call passes through a single interception point
// that classifies the failure, routes non-suppressed classifications to the
// notification sink, and re-raises the classified error to the caller.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"

	"github.com/patric-chuzhbe/shrtclient/internal/errclass"
	"github.com/patric-chuzhbe/shrtclient/internal/logger"
	"github.com/patric-chuzhbe/shrtclient/internal/models"
)

// TokenSource supplies the current bearer credential,
// or an empty string when no session exists.
type TokenSource func() string

// Notifier receives the user-facing message of every classified,
// non-suppressed failure.
type Notifier interface {
	Notify(message string)
}

// Client is the typed API surface over the remote endpoints.
type Client struct {
	http        *resty.Client
	validate    *validator.Validate
	notifier    Notifier
	tokenSource TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithNotifier routes non-suppressed classifications to sink.
func WithNotifier(sink Notifier) Option {
	return func(c *Client) {
		c.notifier = sink
	}
}

// New creates a Client for the API at baseURL. The timeout bounds each
// individual round trip; in-flight requests are never cancelled by later ones.
func New(baseURL string, timeout time.Duration, optionsProto ...Option) *Client {
	client := &Client{
		validate: validator.New(),
	}
	for _, protoOption := range optionsProto {
		protoOption(client)
	}

	client.http = resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	client.http.OnBeforeRequest(func(_ *resty.Client, request *resty.Request) error {
		if client.tokenSource == nil {
			return nil
		}
		if token := client.tokenSource(); token != "" {
			request.SetHeader("Authorization", "Bearer "+token)
		}

		return nil
	})

	client.http.OnAfterResponse(func(_ *resty.Client, response *resty.Response) error {
		logger.Log.Debugln(
			"uri", response.Request.URL,
			"method", response.Request.Method,
			"status", response.StatusCode(),
			"duration", response.Time(),
		)

		if !response.IsError() {
			return nil
		}

		classified := errclass.New(response.StatusCode(), response.Body(), requestPath(response))
		client.notifyAbout(classified)

		return classified
	})

	return client
}

// SetTokenSource wires the credential supplier. It must be called before the
// first authenticated request; the session store provides it after both
// sides are constructed.
func (c *Client) SetTokenSource(source TokenSource) {
	c.tokenSource = source
}

func (c *Client) notifyAbout(classified *errclass.Error) {
	if c.notifier == nil || classified.Classification.Suppress {
		return
	}
	c.notifier.Notify(classified.Classification.Message)
}

func requestPath(response *resty.Response) string {
	raw := response.Request.RawRequest
	if raw != nil && raw.URL != nil {
		return raw.URL.Path
	}

	parsed, err := url.Parse(response.Request.URL)
	if err != nil {
		return response.Request.URL
	}

	return parsed.Path
}

// wrapTransportErr turns a transport failure into its classified form.
// Errors already classified by the response interceptor pass through.
func (c *Client) wrapTransportErr(err error, path string) error {
	if err == nil {
		return nil
	}

	classified := &errclass.Error{}
	if errors.As(err, &classified) {
		return classified
	}

	networkErr := errclass.NewNetwork(err, path)
	c.notifyAbout(networkErr)

	return networkErr
}

// Register submits new-account credentials and returns the issued token.
func (c *Client) Register(ctx context.Context, request models.RegisterRequest) (models.AuthResponse, error) {
	result := models.AuthResponse{}

	err := c.validate.Struct(request)
	if err != nil {
		return result, fmt.Errorf("invalid register request: %w", err)
	}

	_, err = c.http.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&result).
		Post("/auth/register")
	if err := c.wrapTransportErr(err, "/auth/register"); err != nil {
		return models.AuthResponse{}, err
	}

	return result, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, request models.LoginRequest) (models.AuthResponse, error) {
	result := models.AuthResponse{}

	err := c.validate.Struct(request)
	if err != nil {
		return result, fmt.Errorf("invalid login request: %w", err)
	}

	_, err = c.http.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&result).
		Post("/auth/login")
	if err := c.wrapTransportErr(err, "/auth/login"); err != nil {
		return models.AuthResponse{}, err
	}

	return result, nil
}

// Me resolves the identity behind the current bearer token.
func (c *Client) Me(ctx context.Context) (models.Identity, error) {
	result := models.Identity{}

	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/auth/me")
	if err := c.wrapTransportErr(err, "/auth/me"); err != nil {
		return models.Identity{}, err
	}

	return result, nil
}

// ListURLs fetches the full short-URL listing in server order.
func (c *Client) ListURLs(ctx context.Context) (models.URLList, error) {
	result := models.URLList{}

	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/urls")
	if err := c.wrapTransportErr(err, "/urls"); err != nil {
		return nil, err
	}

	return result, nil
}

// GetURL fetches a single record by id.
func (c *Client) GetURL(ctx context.Context, id string) (models.ShortURL, error) {
	result := models.ShortURL{}

	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/urls/" + id)
	if err := c.wrapTransportErr(err, "/urls/"+id); err != nil {
		return models.ShortURL{}, err
	}

	return result, nil
}

// CreateURL submits a new URL for shortening.
func (c *Client) CreateURL(ctx context.Context, request models.CreateURLRequest) (models.CreateURLResponse, error) {
	result := models.CreateURLResponse{}

	err := c.validate.Struct(request)
	if err != nil {
		return result, fmt.Errorf("invalid create request: %w", err)
	}

	_, err = c.http.R().
		SetContext(ctx).
		SetBody(request).
		SetResult(&result).
		Post("/urls")
	if err := c.wrapTransportErr(err, "/urls"); err != nil {
		return models.CreateURLResponse{}, err
	}

	return result, nil
}

// DeleteURL removes a record by id.
func (c *Client) DeleteURL(ctx context.Context, id string) error {
	_, err := c.http.R().
		SetContext(ctx).
		Delete("/urls/" + id)

	return c.wrapTransportErr(err, "/urls/"+id)
}

// GetAbout fetches the shared about-page content.
func (c *Client) GetAbout(ctx context.Context) (models.AboutInfo, error) {
	result := models.AboutInfo{}

	_, err := c.http.R().
		SetContext(ctx).
		SetResult(&result).
		Get("/about")
	if err := c.wrapTransportErr(err, "/about"); err != nil {
		return models.AboutInfo{}, err
	}

	return result, nil
}

// UpdateAbout replaces the about-page content. The server rejects callers
// without the Admin role.
func (c *Client) UpdateAbout(ctx context.Context, request models.UpdateAboutRequest) error {
	err := c.validate.Struct(request)
	if err != nil {
		return fmt.Errorf("invalid about update request: %w", err)
	}

	_, err = c.http.R().
		SetContext(ctx).
		SetBody(request).
		Put("/about")

	return c.wrapTransportErr(err, "/about")
}
