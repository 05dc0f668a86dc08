package mongostore

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/bnvdash/user-directory/internal/domain/user"
	"github.com/bnvdash/user-directory/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UsersRepo struct {
	col  *mongo.Collection
	prom *observability.Prom
}

// NewUsersRepo wires the repo to one collection. prom may be nil (tests);
// when set, every logical op is observed.
func NewUsersRepo(database *mongo.Database, collection string, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		col:  database.Collection(collection),
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom == nil {
		return fn()
	}
	return r.prom.ObserveDB(op, fn)
}

func (r *UsersRepo) Insert(ctx context.Context, u user.User) (user.User, error) {
	err := r.observe("users.insert", func() error {
		res, err := r.col.InsertOne(ctx, u)
		if err != nil {
			return err
		}

		if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
			u.ID = oid
		}

		return nil
	})

	if err != nil {
		if field, ok := duplicateField(err); ok {
			return user.User{}, &user.ConflictError{Field: field}
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) FindByID(ctx context.Context, id string) (user.User, error) {
	// a malformed identifier reads the same as a missing record
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}

	var u user.User

	err = r.observe("users.find_by_id", func() error {
		return r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&u)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}

		return user.User{}, err
	}

	return u, nil
}

// Search returns one page of matching records, newest-created first, plus the
// pre-pagination match count.
func (r *UsersRepo) Search(ctx context.Context, q user.SearchQuery) ([]user.User, int64, error) {
	filter := searchFilter(q.Search)

	var (
		out   []user.User
		total int64
	)

	err := r.observe("users.search", func() error {
		n, err := r.col.CountDocuments(ctx, filter)
		if err != nil {
			return err
		}
		total = n

		opts := options.Find().
			SetSort(newestFirst).
			SetSkip(int64(q.Page-1) * int64(q.PageSize)).
			SetLimit(int64(q.PageSize))

		cur, err := r.col.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		return cur.All(ctx, &out)
	})

	if err != nil {
		return nil, 0, err
	}

	if out == nil {
		out = []user.User{}
	}

	return out, total, nil
}

// Update applies the merged field set plus an optional new image reference
// and returns the post-update record. imageRef == nil leaves the stored
// reference untouched.
func (r *UsersRepo) Update(ctx context.Context, id string, f user.Fields, imageRef *string) (user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.User{}, user.ErrNotFound
	}

	set := bson.M{
		"firstName": f.FirstName,
		"lastName":  f.LastName,
		"email":     f.Email,
		"mobile":    f.Mobile,
		"gender":    f.Gender,
		"status":    f.Status,
		"location":  f.Location,
		"updatedAt": time.Now().UTC(),
	}

	if imageRef != nil {
		set["profileImage"] = *imageRef
	}

	var u user.User

	err = r.observe("users.update", func() error {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

		return r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&u)
	})

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return user.User{}, user.ErrNotFound
		}

		if field, ok := duplicateField(err); ok {
			return user.User{}, &user.ConflictError{Field: field}
		}

		return user.User{}, err
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return user.ErrNotFound
	}

	return r.observe("users.delete", func() error {
		res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
		if err != nil {
			return err
		}

		if res.DeletedCount == 0 {
			return user.ErrNotFound
		}

		return nil
	})
}

// All returns the entire record set, newest-created first.
func (r *UsersRepo) All(ctx context.Context) ([]user.User, error) {
	var out []user.User

	err := r.observe("users.all", func() error {
		cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(newestFirst))
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		return cur.All(ctx, &out)
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

// createdAt descending, _id as tiebreak for a stable page order.
var newestFirst = bson.D{
	{Key: "createdAt", Value: -1},
	{Key: "_id", Value: -1},
}

func searchFilter(text string) bson.M {
	if text == "" {
		return bson.M{}
	}

	// substring match, case-insensitive; quote so user input is never a pattern
	re := primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}

	return bson.M{"$or": bson.A{
		bson.M{"firstName": re},
		bson.M{"lastName": re},
		bson.M{"email": re},
	}}
}

// duplicateField maps a unique-index violation to the offending field. The
// driver only exposes the index name inside the error message, so match on
// the index names created by db.EnsureUserIndexes.
func duplicateField(err error) (string, bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return "", false
	}

	msg := err.Error()

	switch {
	case strings.Contains(msg, "mobile"):
		return "mobile", true
	default:
		return "email", true
	}
}
