package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// stubModel implements model.ToolCallingChatModel with canned behavior.
type stubModel struct {
	resp    *schema.Message
	err     error
	gotMsgs []*schema.Message
}

func (s *stubModel) Generate(_ context.Context, msgs []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	s.gotMsgs = msgs
	return s.resp, s.err
}

func (s *stubModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

func (s *stubModel) WithTools(_ []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return s, nil
}

func Test_Chat_ReturnsTrimmedReply(t *testing.T) {
	t.Parallel()

	stub := &stubModel{resp: schema.AssistantMessage("  {\"tags\": [\"lego\"]}\n", nil)}
	client := New(stub, nil)

	reply := client.Chat(context.Background(), "system prompt", "user text")
	if reply.Degraded {
		t.Fatal("expected non-degraded reply")
	}
	if reply.Text != `{"tags": ["lego"]}` {
		t.Errorf("reply text = %q, want trimmed model content", reply.Text)
	}

	if len(stub.gotMsgs) != 2 {
		t.Fatalf("model received %d messages, want 2", len(stub.gotMsgs))
	}
	if stub.gotMsgs[0].Role != schema.System || stub.gotMsgs[0].Content != "system prompt" {
		t.Errorf("first message = %v %q, want system prompt", stub.gotMsgs[0].Role, stub.gotMsgs[0].Content)
	}
	if stub.gotMsgs[1].Role != schema.User || stub.gotMsgs[1].Content != "user text" {
		t.Errorf("second message = %v %q, want user text", stub.gotMsgs[1].Role, stub.gotMsgs[1].Content)
	}
}

func Test_Chat_BackendErrorDegrades(t *testing.T) {
	t.Parallel()

	stub := &stubModel{err: errors.New("connection refused")}
	client := New(stub, nil)

	reply := client.Chat(context.Background(), "system", "user")
	if !reply.Degraded {
		t.Fatal("expected degraded reply on backend error")
	}
	if reply.Text != "{}" {
		t.Errorf("degraded reply text = %q, want %q", reply.Text, "{}")
	}
}

func Test_Chat_EmptyContentDegrades(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		resp *schema.Message
	}{
		{"nil message", nil},
		{"blank content", schema.AssistantMessage("   \n\t", nil)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := New(&stubModel{resp: tc.resp}, nil)
			reply := client.Chat(context.Background(), "system", "user")
			if !reply.Degraded || reply.Text != "{}" {
				t.Errorf("got %+v, want degraded {} reply", reply)
			}
		})
	}
}

func Test_New_Defaults(t *testing.T) {
	t.Parallel()

	client := New(&stubModel{}, nil)
	if client.temperature != defaultTemperature {
		t.Errorf("temperature = %v, want %v", client.temperature, defaultTemperature)
	}
	if client.timeout != defaultTimeout {
		t.Errorf("timeout = %v, want %v", client.timeout, defaultTimeout)
	}

	custom := New(&stubModel{}, &Config{Temperature: 0.9})
	if custom.temperature != 0.9 {
		t.Errorf("custom temperature = %v, want 0.9", custom.temperature)
	}
	if custom.timeout != defaultTimeout {
		t.Errorf("custom timeout = %v, want default", custom.timeout)
	}
}
