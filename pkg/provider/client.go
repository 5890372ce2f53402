package provider

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/weftlabs/weft/internal/ui"
	"github.com/weftlabs/weft/pkg/store"
)

// Caller performs the remote completion call for one resolved backend.
type Caller interface {
	Complete(ctx context.Context, res Resolved, turns []store.Turn, temperature float64, maxTokens int) (string, error)
}

// Client issues completion calls against the session's current
// selection and degrades to the secondary provider when the primary
// fails.
type Client struct {
	registry    *Registry
	caller      Caller
	ui          *ui.Printer
	temperature float64
	maxTokens   int
}

// Config holds client construction parameters.
type Config struct {
	Registry    *Registry
	Caller      Caller // defaults to the SDK-backed caller
	Printer     *ui.Printer
	Temperature float64
	MaxTokens   int
}

// NewClient creates a completion client.
func NewClient(cfg Config) *Client {
	caller := cfg.Caller
	if caller == nil {
		caller = NewSDKCaller()
	}
	return &Client{
		registry:    cfg.Registry,
		caller:      caller,
		ui:          cfg.Printer,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}
}

// Complete runs the conversation turns against the backend named by
// sel. On failure of the primary provider with a credentialed
// secondary, it permanently reassigns sel to the secondary and its
// fallback model and retries once. Each candidate is tried at most
// once; when all fail, ok is false and sel keeps whatever value the
// degrade left it with.
func (c *Client) Complete(ctx context.Context, sel *Selection, turns []store.Turn) (string, bool) {
	requestID := uuid.NewString()

	for attempt := 0; attempt < 2; attempt++ {
		content, err := c.tryOnce(ctx, requestID, *sel, turns)
		if err == nil {
			return content, true
		}

		log.Warn().
			Str("request_id", requestID).
			Str("provider", sel.Provider).
			Str("model", sel.Model).
			Err(err).
			Msg("Completion attempt failed")
		c.ui.Notice("warning: provider %s failed: %v", sel.Provider, err)

		if sel.Provider != c.registry.Primary {
			break
		}
		if !c.registry.HasCredential(c.registry.Secondary) {
			break
		}

		// Sticky degrade: the selection moves for the rest of the
		// session, not just for this call.
		sel.Provider = c.registry.Secondary
		sel.Model = c.registry.FallbackModel
		log.Info().
			Str("request_id", requestID).
			Str("provider", sel.Provider).
			Str("model", sel.Model).
			Msg("Degraded to secondary provider")
		c.ui.Notice("falling back to %s/%s", sel.Provider, sel.Model)
	}

	return "", false
}

func (c *Client) tryOnce(ctx context.Context, requestID string, sel Selection, turns []store.Turn) (string, error) {
	res, err := c.registry.Resolve(sel.Provider, sel.Model)
	if err != nil {
		// Missing credential or model: counts as a provider failure,
		// without a remote call.
		return "", err
	}

	log.Debug().
		Str("request_id", requestID).
		Str("provider", res.Provider).
		Str("remote_model", res.RemoteModel).
		Int("turns", len(turns)).
		Msg("Issuing completion call")

	return c.caller.Complete(ctx, res, turns, c.temperature, c.maxTokens)
}
