package generation

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Request carries per-call generation settings
type Request struct {
	JSON              bool
	SystemInstruction string
	Temperature       *float32
}

// Option adjusts a Request
type Option func(*Request)

// WithJSON asks the provider for an application/json response
func WithJSON() Option {
	return func(r *Request) { r.JSON = true }
}

// WithSystemInstruction primes the model with instructions sent ahead of the prompt
func WithSystemInstruction(text string) Option {
	return func(r *Request) { r.SystemInstruction = text }
}

// WithTemperature overrides the sampling temperature
func WithTemperature(t float32) Option {
	return func(r *Request) { r.Temperature = &t }
}

// Provider performs one text completion with one credential.
// Failures must be returned as *Error.
type Provider interface {
	Generate(ctx context.Context, prompt string, req Request) (string, error)
}

// Client completes prompts against a primary credential and an optional fallback one.
// When the primary is rate limited or unavailable the client switches to the fallback,
// retries the prompt there once and keeps using it until ResetToPrimary is called.
type Client struct {
	primary  Provider
	fallback Provider
	logger   *zap.Logger

	mu            sync.Mutex
	usingFallback bool
}

// NewClient creates a generation client. fallback may be nil.
func NewClient(primary, fallback Provider, logger *zap.Logger) *Client {
	return &Client{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// Complete sends prompt to the active credential and returns the generated text
func (c *Client) Complete(ctx context.Context, prompt string, opts ...Option) (string, error) {
	var req Request
	for _, opt := range opts {
		opt(&req)
	}

	provider, onFallback := c.active()
	text, err := provider.Generate(ctx, prompt, req)
	if err == nil {
		return text, nil
	}

	class := ClassOf(err)
	if onFallback || c.fallback == nil || !switchable(class) {
		return "", err
	}

	c.mu.Lock()
	if !c.usingFallback {
		c.usingFallback = true
		c.logger.Warn("switching AI provider to fallback credential", zap.Stringer("class", class), zap.Error(err))
	}
	c.mu.Unlock()

	return c.fallback.Generate(ctx, prompt, req)
}

// UsingFallback reports whether calls currently go to the fallback credential
func (c *Client) UsingFallback() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.usingFallback
}

// ResetToPrimary routes subsequent calls to the primary credential again
func (c *Client) ResetToPrimary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.usingFallback {
		c.usingFallback = false
		c.logger.Info("AI provider reset to primary credential")
	}
}

func (c *Client) active() (Provider, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.usingFallback && c.fallback != nil {
		return c.fallback, true
	}
	return c.primary, false
}
