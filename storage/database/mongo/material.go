package mongorepos

import (
	"context"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/deptportal/core/listing"
	"github.com/trezcool/deptportal/core/material"
)

var ErrInvalidCursor = errors.New("invalid cursor")

type materialDoc struct {
	ID         string    `bson:"_id"`
	Title      string    `bson:"title"`
	Subject    string    `bson:"subject"`
	Level      string    `bson:"level"`
	Filename   string    `bson:"filename"`
	FileURL    string    `bson:"file_url"`
	FileType   string    `bson:"file_type"`
	UploadDate time.Time `bson:"upload_date"`
}

type materialRepository struct {
	coll *mongo.Collection
}

var _ material.CursorRepository = (*materialRepository)(nil) // interface compliance check

func NewMaterialRepository(db *DB) material.Repository {
	return &materialRepository{coll: db.collection(materialsCollection)}
}

func (doc materialDoc) material() material.Material {
	return material.Material{
		ID:         doc.ID,
		Title:      doc.Title,
		Subject:    doc.Subject,
		Level:      doc.Level,
		Filename:   doc.Filename,
		FileURL:    doc.FileURL,
		FileType:   doc.FileType,
		UploadDate: doc.UploadDate.UTC(),
	}
}

// listingSort is newest first; _id breaks ties so cursors are total.
var listingSort = bson.D{{Key: "upload_date", Value: -1}, {Key: "_id", Value: -1}}

func storeFilter(filter listing.Filter) bson.M {
	f := filter.StoreSide()
	return storeSide(map[string]string{"level": f.Level, "subject": f.Subject, "file_type": f.FileType})
}

func (repo materialRepository) CreateMaterial(ctx context.Context, mat material.Material) (material.Material, error) {
	_, err := repo.coll.InsertOne(ctx, materialDoc{
		ID:         mat.ID,
		Title:      mat.Title,
		Subject:    mat.Subject,
		Level:      mat.Level,
		Filename:   mat.Filename,
		FileURL:    mat.FileURL,
		FileType:   mat.FileType,
		UploadDate: mat.UploadDate.UTC(),
	})
	if err != nil {
		return material.Material{}, errors.Wrap(err, "inserting material")
	}
	return mat, nil
}

func (repo materialRepository) QueryMaterials(ctx context.Context, filter listing.Filter) ([]material.Material, error) {
	docs, err := findAll[materialDoc](ctx, repo.coll, storeFilter(filter), options.Find().SetSort(listingSort))
	if err != nil {
		return nil, errors.Wrap(err, "querying materials")
	}
	return materials(docs), nil
}

func materials(docs []materialDoc) []material.Material {
	mats := make([]material.Material, 0, len(docs))
	for _, doc := range docs {
		mats = append(mats, doc.material())
	}
	return mats
}

func (repo materialRepository) GetMaterialByID(ctx context.Context, id string) (material.Material, error) {
	var doc materialDoc
	if err := repo.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return material.Material{}, trapNoDocsErr(err, material.ErrNotFound, "finding material by ID")
	}
	return doc.material(), nil
}

func (repo materialRepository) DeleteMaterialsByID(ctx context.Context, ids ...string) error {
	return deleteByID(ctx, repo.coll, ids)
}

// Scan returns up to limit materials strictly after the cursor, in listing order.
func (repo materialRepository) Scan(ctx context.Context, filter listing.Filter, after listing.Cursor, limit int) ([]material.Material, listing.Cursor, error) {
	f := storeFilter(filter)
	if after != "" {
		at, id, err := DecodeCursor(after)
		if err != nil {
			return nil, "", err
		}
		keyset := bson.M{"$or": []bson.M{
			{"upload_date": bson.M{"$lt": at}},
			{"upload_date": at, "_id": bson.M{"$lt": id}},
		}}
		if len(f) > 0 {
			f = bson.M{"$and": []bson.M{f, keyset}}
		} else {
			f = keyset
		}
	}

	opts := options.Find().SetSort(listingSort).SetLimit(int64(limit))
	docs, err := findAll[materialDoc](ctx, repo.coll, f, opts)
	if err != nil {
		return nil, "", errors.Wrap(err, "scanning materials")
	}
	if len(docs) == 0 {
		return []material.Material{}, after, nil
	}
	last := docs[len(docs)-1]
	return materials(docs), EncodeCursor(last.UploadDate, last.ID), nil
}

func (repo materialRepository) Count(ctx context.Context, filter listing.Filter) (int, error) {
	n, err := repo.coll.CountDocuments(ctx, storeFilter(filter))
	if err != nil {
		return 0, errors.Wrap(err, "counting materials")
	}
	return int(n), nil
}

// EncodeCursor packs a sort key into an opaque cursor.
func EncodeCursor(at time.Time, id string) listing.Cursor {
	raw := strconv.FormatInt(at.UTC().UnixMilli(), 10) + "|" + id
	return listing.Cursor(base64.RawURLEncoding.EncodeToString([]byte(raw)))
}

func DecodeCursor(c listing.Cursor) (time.Time, string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(string(c))
	if err != nil {
		return time.Time{}, "", ErrInvalidCursor
	}
	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return time.Time{}, "", ErrInvalidCursor
	}
	ms, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return time.Time{}, "", ErrInvalidCursor
	}
	return time.UnixMilli(ms).UTC(), parts[1], nil
}
