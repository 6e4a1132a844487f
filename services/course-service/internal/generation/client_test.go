package generation

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProvider is a scripted Provider
type fakeProvider struct {
	responses []fakeResponse
	calls     int
	lastReq   Request
}

type fakeResponse struct {
	text string
	err  error
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, req Request) (string, error) {
	f.lastReq = req
	idx := f.calls
	f.calls++
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return f.responses[idx].text, f.responses[idx].err
}

func classified(class Class, code int) error {
	return &Error{Class: class, StatusCode: code, Err: errors.New(http.StatusText(code))}
}

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name             string
		primary          []fakeResponse
		fallback         []fakeResponse
		noFallback       bool
		expectedText     string
		expectedClass    Class
		expectError      bool
		expectedPrimary  int
		expectedFallback int
		expectedSwitched bool
	}{
		{
			name:            "primary succeeds",
			primary:         []fakeResponse{{text: "outline"}},
			fallback:        []fakeResponse{{text: "unused"}},
			expectedText:    "outline",
			expectedPrimary: 1,
		},
		{
			name:             "rate limited switches to fallback",
			primary:          []fakeResponse{{err: classified(ClassRateLimited, 429)}},
			fallback:         []fakeResponse{{text: "from fallback"}},
			expectedText:     "from fallback",
			expectedPrimary:  1,
			expectedFallback: 1,
			expectedSwitched: true,
		},
		{
			name:             "service unavailable switches and surfaces fallback error",
			primary:          []fakeResponse{{err: classified(ClassServiceUnavailable, 503)}},
			fallback:         []fakeResponse{{err: classified(ClassRateLimited, 429)}},
			expectError:      true,
			expectedClass:    ClassRateLimited,
			expectedPrimary:  1,
			expectedFallback: 1,
			expectedSwitched: true,
		},
		{
			name:            "unauthorized does not switch",
			primary:         []fakeResponse{{err: classified(ClassUnauthorized, 401)}},
			fallback:        []fakeResponse{{text: "unused"}},
			expectError:     true,
			expectedClass:   ClassUnauthorized,
			expectedPrimary: 1,
		},
		{
			name:            "no fallback configured",
			primary:         []fakeResponse{{err: classified(ClassRateLimited, 429)}},
			noFallback:      true,
			expectError:     true,
			expectedClass:   ClassRateLimited,
			expectedPrimary: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			primary := &fakeProvider{responses: tt.primary}
			fallback := &fakeProvider{responses: tt.fallback}
			var client *Client
			if tt.noFallback {
				client = NewClient(primary, nil, zap.NewNop())
			} else {
				client = NewClient(primary, fallback, zap.NewNop())
			}

			text, err := client.Complete(context.Background(), "prompt")

			if tt.expectError {
				require.Error(t, err)
				assert.Equal(t, tt.expectedClass, ClassOf(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedText, text)
			}
			assert.Equal(t, tt.expectedPrimary, primary.calls)
			assert.Equal(t, tt.expectedFallback, fallback.calls)
			assert.Equal(t, tt.expectedSwitched, client.UsingFallback())
		})
	}
}

func TestClient_StickyFallbackAndReset(t *testing.T) {
	primary := &fakeProvider{responses: []fakeResponse{{err: classified(ClassRateLimited, 429)}, {text: "primary again"}}}
	fallback := &fakeProvider{responses: []fakeResponse{{text: "fb1"}, {text: "fb2"}}}
	client := NewClient(primary, fallback, zap.NewNop())

	text, err := client.Complete(context.Background(), "one")
	require.NoError(t, err)
	assert.Equal(t, "fb1", text)

	text, err = client.Complete(context.Background(), "two")
	require.NoError(t, err)
	assert.Equal(t, "fb2", text)
	assert.Equal(t, 1, primary.calls)

	client.ResetToPrimary()
	assert.False(t, client.UsingFallback())

	text, err = client.Complete(context.Background(), "three")
	require.NoError(t, err)
	assert.Equal(t, "primary again", text)
	assert.Equal(t, 2, primary.calls)
}

func TestClient_FallbackFailureDoesNotSwitchBack(t *testing.T) {
	primary := &fakeProvider{responses: []fakeResponse{{err: classified(ClassServiceUnavailable, 503)}}}
	fallback := &fakeProvider{responses: []fakeResponse{{text: "ok"}, {err: classified(ClassServiceUnavailable, 503)}}}
	client := NewClient(primary, fallback, zap.NewNop())

	_, err := client.Complete(context.Background(), "one")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "two")
	require.Error(t, err)
	assert.Equal(t, ClassServiceUnavailable, ClassOf(err))
	assert.True(t, client.UsingFallback())
	assert.Equal(t, 1, primary.calls)
}

func TestClient_Options(t *testing.T) {
	primary := &fakeProvider{responses: []fakeResponse{{text: "{}"}}}
	client := NewClient(primary, nil, zap.NewNop())

	_, err := client.Complete(context.Background(), "prompt", WithJSON(), WithSystemInstruction("be brief"), WithTemperature(0.2))
	require.NoError(t, err)

	assert.True(t, primary.lastReq.JSON)
	assert.Equal(t, "be brief", primary.lastReq.SystemInstruction)
	require.NotNil(t, primary.lastReq.Temperature)
	assert.InDelta(t, 0.2, *primary.lastReq.Temperature, 0.0001)
}
