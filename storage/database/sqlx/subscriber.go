package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core/subscriber"
)

type subscriberRow struct {
	Token     string    `db:"token"`
	CreatedAt time.Time `db:"created_at"`
}

type subscriberRepository struct {
	db *DB
}

var _ subscriber.Repository = (*subscriberRepository)(nil) // interface compliance check

func NewSubscriberRepository(db *DB) subscriber.Repository {
	return &subscriberRepository{db: db}
}

func (repo subscriberRepository) SaveSubscriber(ctx context.Context, sub subscriber.Subscriber) (subscriber.Subscriber, error) {
	ext := repo.db.exec(ctx)
	var row subscriberRow
	err := ext.GetContext(ctx, &row, ext.Rebind(
		"INSERT INTO subscribers (token, created_at) VALUES (?, ?) "+
			"ON CONFLICT (token) DO UPDATE SET token = EXCLUDED.token RETURNING token, created_at"),
		sub.Token, sub.CreatedAt.UTC())
	if err != nil {
		return subscriber.Subscriber{}, errors.Wrap(err, "saving subscriber")
	}
	return subscriber.Subscriber{Token: row.Token, CreatedAt: row.CreatedAt.UTC()}, nil
}

func (repo subscriberRepository) QueryAllSubscribers(ctx context.Context) ([]subscriber.Subscriber, error) {
	var rows []subscriberRow
	if err := repo.db.exec(ctx).SelectContext(ctx, &rows, "SELECT token, created_at FROM subscribers ORDER BY created_at"); err != nil {
		return nil, errors.Wrap(err, "querying subscribers")
	}
	subs := make([]subscriber.Subscriber, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, subscriber.Subscriber{Token: row.Token, CreatedAt: row.CreatedAt.UTC()})
	}
	return subs, nil
}

func (repo subscriberRepository) DeleteSubscriber(ctx context.Context, token string) error {
	ext := repo.db.exec(ctx)
	_, err := ext.ExecContext(ctx, ext.Rebind("DELETE FROM subscribers WHERE token = ?"), token)
	return errors.Wrap(err, "deleting subscriber")
}
