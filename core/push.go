package core

import "context"

type (
	PushMessage struct {
		Tokens []string
		Title  string
		Body   string
		Link   string
		Data   map[string]string
	}

	// PushService is any service that can deliver push notifications
	PushService interface {
		// SendMessages sends messages concurrently
		SendMessages(ctx context.Context, messages ...*PushMessage)
	}
)

func (m *PushMessage) HasRecipients() bool { return len(m.Tokens) > 0 }
func (m *PushMessage) HasContent() bool    { return m.Title != "" || m.Body != "" }
