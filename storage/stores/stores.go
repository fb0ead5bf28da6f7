// Package stores opens the configured storage backends and hands out their repositories.
package stores

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/trezcool/deptportal/core"
	"github.com/trezcool/deptportal/core/assignment"
	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/material"
	"github.com/trezcool/deptportal/core/notification"
	"github.com/trezcool/deptportal/core/subject"
	"github.com/trezcool/deptportal/core/subscriber"
	rediscache "github.com/trezcool/deptportal/storage/cache/redis"
	"github.com/trezcool/deptportal/storage/database"
	inmemdb "github.com/trezcool/deptportal/storage/database/inmem"
	mongorepos "github.com/trezcool/deptportal/storage/database/mongo"
	sqlxrepos "github.com/trezcool/deptportal/storage/database/sqlx"
	diskstore "github.com/trezcool/deptportal/storage/files/disk"
	ossstore "github.com/trezcool/deptportal/storage/files/oss"
)

var ErrUnknownBackend = errors.New("unknown backend")

// cursor keys of every API instance share this prefix
const materialCursorsPrefix = "deptportal:materials:cursors"

type Stores struct {
	Tx            core.Transactor
	Notifications notification.Repository
	Assignments   assignment.Repository
	Materials     material.Repository
	Subjects      subject.Repository
	Subscribers   subscriber.Repository

	closers []func(ctx context.Context) error
}

// Open connects to the database backend named by conf.Database.Backend.
// PostgreSQL is created and migrated when needed.
func Open(ctx context.Context, conf *core.Config) (*Stores, error) {
	switch conf.Database.Backend {
	case core.BackendMemory, "":
		db := inmemdb.Open()
		return &Stores{
			Tx:            db,
			Notifications: inmemdb.NewNotificationRepository(db),
			Assignments:   inmemdb.NewAssignmentRepository(db),
			Materials:     inmemdb.NewMaterialRepository(db),
			Subjects:      inmemdb.NewSubjectRepository(db),
			Subscribers:   inmemdb.NewSubscriberRepository(db),
		}, nil

	case core.BackendPostgres:
		sqlDB, err := OpenPostgres(conf)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(sqlDB, "up"); err != nil {
			_ = sqlDB.Close()
			return nil, errors.Wrap(err, "migrating database")
		}
		db := sqlxrepos.NewDB(sqlDB)
		return &Stores{
			Tx:            db,
			Notifications: sqlxrepos.NewNotificationRepository(db),
			Assignments:   sqlxrepos.NewAssignmentRepository(db),
			Materials:     sqlxrepos.NewMaterialRepository(db),
			Subjects:      sqlxrepos.NewSubjectRepository(db),
			Subscribers:   sqlxrepos.NewSubscriberRepository(db),
			closers:       []func(context.Context) error{func(context.Context) error { return db.Close() }},
		}, nil

	case core.BackendMongo:
		db, err := mongorepos.Open(ctx, conf)
		if err != nil {
			return nil, errors.Wrap(err, "opening mongo")
		}
		return &Stores{
			Tx:            db,
			Notifications: mongorepos.NewNotificationRepository(db),
			Assignments:   mongorepos.NewAssignmentRepository(db),
			Materials:     mongorepos.NewMaterialRepository(db),
			Subjects:      mongorepos.NewSubjectRepository(db),
			Subscribers:   mongorepos.NewSubscriberRepository(db),
			closers:       []func(context.Context) error{db.Close},
		}, nil
	}
	return nil, errors.Wrapf(ErrUnknownBackend, "database %q", conf.Database.Backend)
}

// OpenPostgres creates the database if it does not exist yet, then connects to it.
func OpenPostgres(conf *core.Config) (*sql.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, errors.Wrap(err, "creating database")
	}
	db, err := database.Open(conf)
	return db, errors.Wrap(err, "opening database")
}

// CursorCache returns the Redis cursor cache when an address is configured, else a
// cache local to this process.
func (s *Stores) CursorCache(ctx context.Context, conf *core.Config) (listing.CursorCache, error) {
	if conf.Redis.Address == "" {
		return listing.NewMemoryCursorCache(), nil
	}
	rdb, err := rediscache.NewClient(ctx, conf)
	if err != nil {
		return nil, errors.Wrap(err, "connecting to redis")
	}
	s.closers = append(s.closers, func(context.Context) error { return rdb.Close() })
	return rediscache.NewCursorCache(rdb, materialCursorsPrefix, conf.Redis.CursorTTL), nil
}

// Close releases every connection, in reverse opening order.
func (s *Stores) Close(ctx context.Context) error {
	var firstErr error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.closers = nil
	return firstErr
}

// NewFileStore returns the configured file store. uploadDir is the directory the
// API must serve, empty unless files are kept on disk.
func NewFileStore(conf *core.Config) (store core.FileStore, uploadDir string, err error) {
	switch conf.Files.Backend {
	case core.FilesDisk, "":
		disk, err := diskstore.New(conf)
		if err != nil {
			return nil, "", err
		}
		return disk, disk.Dir(), nil
	case core.FilesOSS:
		bucket, err := ossstore.New(conf)
		if err != nil {
			return nil, "", errors.Wrap(err, "opening oss bucket")
		}
		return bucket, "", nil
	}
	return nil, "", errors.Wrapf(ErrUnknownBackend, "files %q", conf.Files.Backend)
}
