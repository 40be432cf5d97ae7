// Package llm wraps an eino chat model behind the single Chat operation the
// search and ingest pipelines need: a fixed system/user message pair with a
// low default temperature. The wrapper owns the degradation policy for chat
// failures — any error becomes the literal "{}" reply so JSON-consuming
// callers degrade predictably instead of crashing the pipeline.
package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/smartfind/smartfind-go/internal/logging"
)

// fallbackReply is returned whenever the chat backend fails. Downstream
// consumers parse replies as JSON, so an empty object degrades cleanly.
const fallbackReply = "{}"

// defaultTemperature matches the low-variance setting used for tagging and
// report synthesis.
const defaultTemperature float32 = 0.3

// defaultTimeout bounds each chat call. A timeout is treated like any other
// backend failure and triggers the fallback reply.
const defaultTimeout = 90 * time.Second

// Reply is the outcome of a chat call. Degraded is true when the backend
// failed and Text holds the documented fallback rather than a model reply,
// letting callers distinguish "used the fallback" from a genuine answer.
type Reply struct {
	// Text is the model reply, or "{}" when Degraded.
	Text string
	// Degraded reports that the fallback was substituted.
	Degraded bool
}

// Chatter is the chat operation consumed by the tag extractor and report
// synthesizer. *Client satisfies it; tests inject a stub.
type Chatter interface {
	// Chat sends a system/user message pair and returns the reply.
	// Implementations never return an error — failures surface as a
	// degraded Reply.
	Chat(ctx context.Context, system, user string) Reply
}

// Config holds the settings for constructing a Client.
type Config struct {
	// Temperature controls response randomness. Defaults to 0.3 if zero.
	Temperature float32
	// Timeout bounds each chat call. Defaults to 90s if zero.
	Timeout time.Duration
}

// Client adapts an eino ChatModel to the Chatter interface. It is stateless
// beyond its configuration and safe for concurrent use.
type Client struct {
	// chatModel is the underlying provider-selected model.
	chatModel model.ToolCallingChatModel
	// temperature is applied to every call.
	temperature float32
	// timeout bounds each call.
	timeout time.Duration
}

// New constructs a Client from the given chat model and config. A nil config
// selects the defaults.
func New(chatModel model.ToolCallingChatModel, cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	temp := cfg.Temperature
	if temp == 0 {
		temp = defaultTemperature
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{chatModel: chatModel, temperature: temp, timeout: timeout}
}

// Chat sends the system/user pair to the model and returns the trimmed reply.
// On any failure — network, auth, timeout, empty generation — it logs the
// cause and returns the degraded "{}" reply. Errors never propagate.
func (c *Client) Chat(ctx context.Context, system, user string) Reply {
	log := logging.FromContext(ctx)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msgs := []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	}

	resp, err := c.chatModel.Generate(callCtx, msgs, model.WithTemperature(c.temperature))
	if err != nil {
		log.Warn("llm: chat call failed, returning fallback reply", slog.Any("error", err))
		return Reply{Text: fallbackReply, Degraded: true}
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		log.Warn("llm: chat returned empty content, returning fallback reply")
		return Reply{Text: fallbackReply, Degraded: true}
	}

	return Reply{Text: strings.TrimSpace(resp.Content)}
}
