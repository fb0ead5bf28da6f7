// Package pushsvc delivers push notifications to subscribed devices.
package pushsvc

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
)

var (
	SentMessages = make([]core.PushMessage, 0)
	mu           sync.Mutex
)

// ResetSentMessages empties SentMessages.
func ResetSentMessages() {
	mu.Lock()
	SentMessages = SentMessages[:0]
	mu.Unlock()
}

// Sent returns a copy of SentMessages.
func Sent() []core.PushMessage {
	mu.Lock()
	defer mu.Unlock()
	return append([]core.PushMessage(nil), SentMessages...)
}

// consoleService prints messages instead of delivering them.
type consoleService struct {
	std           *log.Logger
	logger        core.Logger
	appName       string
	disableOutput bool
}

var _ core.PushService = (*consoleService)(nil)

func NewConsoleService(std *log.Logger, logger core.Logger, conf *core.Config) core.PushService {
	return &consoleService{std: std, logger: logger, appName: conf.AppName}
}

func (svc consoleService) SendMessages(ctx context.Context, messages ...*core.PushMessage) {
	for _, msg := range messages {
		go svc.sendMessage(ctx, msg)
	}
}

func (svc consoleService) sendMessage(ctx context.Context, msg *core.PushMessage) {
	if !msg.HasRecipients() || !msg.HasContent() {
		return
	}
	if err := ctx.Err(); err != nil {
		svc.logger.Warn("push message dropped", errors.Wrap(err, "sending push message"))
		return
	}
	if err := svc.send(*msg); err != nil {
		svc.logger.Error("sending push message", err)
		return
	}
	mu.Lock()
	SentMessages = append(SentMessages, *msg)
	mu.Unlock()
}

func (svc consoleService) send(msg core.PushMessage) error {
	payload, err := json.MarshalIndent(map[string]interface{}{
		"app":    svc.appName,
		"tokens": msg.Tokens,
		"title":  msg.Title,
		"body":   msg.Body,
		"link":   msg.Link,
		"data":   msg.Data,
	}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding push message")
	}
	if !svc.disableOutput {
		svc.std.Println(string(payload))
	}
	return nil
}

type consoleServiceMock struct {
	consoleService
}

func NewConsoleServiceMock(logger core.Logger, conf *core.Config) core.PushService {
	return &consoleServiceMock{
		consoleService: consoleService{
			logger:        logger,
			appName:       conf.AppName,
			disableOutput: true,
		},
	}
}

func (svc *consoleServiceMock) SendMessages(ctx context.Context, messages ...*core.PushMessage) {
	for _, msg := range messages {
		// run synchronously
		svc.sendMessage(ctx, msg)
	}
}
