// Package subscriber keeps the push tokens of devices that asked to be alerted
// about new notifications.
package subscriber

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
)

type Subscriber struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

type NewSubscriber struct {
	Token string `json:"token" validate:"notblank,max=4096"`
}

func (ns *NewSubscriber) Validate(validate *validator.Validate) error {
	ns.Token = core.CleanString(ns.Token)
	return validate.Struct(ns)
}

type (
	Repository interface {
		// SaveSubscriber keeps an existing subscriber untouched.
		SaveSubscriber(ctx context.Context, sub Subscriber) (Subscriber, error)
		QueryAllSubscribers(ctx context.Context) ([]Subscriber, error)
		DeleteSubscriber(ctx context.Context, token string) error
	}

	Service struct {
		repo Repository
		now  core.NowFunc
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: core.UTCNow}
}

func (svc *Service) Subscribe(ctx context.Context, ns NewSubscriber) (Subscriber, error) {
	sub, err := svc.repo.SaveSubscriber(ctx, Subscriber{Token: core.CleanString(ns.Token), CreatedAt: svc.now()})
	return sub, errors.Wrap(err, "saving subscriber")
}

func (svc *Service) Unsubscribe(ctx context.Context, token string) error {
	return svc.repo.DeleteSubscriber(ctx, core.CleanString(token))
}

func (svc *Service) Tokens(ctx context.Context) ([]string, error) {
	subs, err := svc.repo.QueryAllSubscribers(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying subscribers")
	}
	tokens := make([]string, 0, len(subs))
	for _, sub := range subs {
		tokens = append(tokens, sub.Token)
	}
	return tokens, nil
}
