package inmemdb

import (
	"context"

	"github.com/trezcool/deptportal/core/subscriber"
)

type subscriberRepository struct {
	db *table[subscriber.Subscriber]
}

var _ subscriber.Repository = (*subscriberRepository)(nil) // interface compliance check

func NewSubscriberRepository(db *DB) subscriber.Repository {
	return &subscriberRepository{db: db.subscriber}
}

func (repo *subscriberRepository) SaveSubscriber(_ context.Context, sub subscriber.Subscriber) (subscriber.Subscriber, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if existing, ok := repo.db.get(sub.Token); ok {
		return existing, nil
	}
	repo.db.insert(sub.Token, sub)
	return sub, nil
}

func (repo *subscriberRepository) QueryAllSubscribers(context.Context) ([]subscriber.Subscriber, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return repo.db.query(nil), nil
}

func (repo *subscriberRepository) DeleteSubscriber(_ context.Context, token string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.delete(token)
	return nil
}
