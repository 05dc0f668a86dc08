package service

import (
	"bytes"
	"context"
	"log/slog"
	"mime/multipart"

	"github.com/bnvdash/user-directory/internal/domain/user"
	"github.com/bnvdash/user-directory/internal/export"
	"github.com/bnvdash/user-directory/internal/storage"
)

// UserRepo is the record-store surface the service needs.
type UserRepo interface {
	Insert(ctx context.Context, u user.User) (user.User, error)
	FindByID(ctx context.Context, id string) (user.User, error)
	Search(ctx context.Context, q user.SearchQuery) ([]user.User, int64, error)
	Update(ctx context.Context, id string, f user.Fields, imageRef *string) (user.User, error)
	Delete(ctx context.Context, id string) error
	All(ctx context.Context) ([]user.User, error)
}

// Users implements the record service: CRUD, paginated search and CSV export,
// including the profile-image lifecycle tied to each record.
type Users struct {
	repo   UserRepo
	images *storage.ImageStore
	log    *slog.Logger
}

func NewUsers(repo UserRepo, images *storage.ImageStore, log *slog.Logger) *Users {
	return &Users{
		repo:   repo,
		images: images,
		log:    log,
	}
}

func (s *Users) Create(ctx context.Context, in user.Fields, image *multipart.FileHeader) (user.User, error) {
	in = in.Normalized()

	if err := user.Validate(in); err != nil {
		return user.User{}, err
	}

	var imageRef *string

	if image != nil {
		ref, err := s.images.Save(image)
		if err != nil {
			return user.User{}, err
		}
		imageRef = &ref
	}

	created, err := s.repo.Insert(ctx, user.New(in, imageRef))
	if err != nil {
		// the record never existed, so the file must not either
		if imageRef != nil {
			if rmErr := s.images.Remove(*imageRef); rmErr != nil {
				s.log.Warn("could not remove image after failed insert", "ref", *imageRef, "err", rmErr)
			}
		}
		return user.User{}, err
	}

	return created, nil
}

// List returns one page of records plus the total match count. Non-positive
// page or page size collapse to the defaults 1 and 10.
func (s *Users) List(ctx context.Context, q user.SearchQuery) ([]user.User, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}

	return s.repo.Search(ctx, q)
}

func (s *Users) Get(ctx context.Context, id string) (user.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update merges the patch onto the stored record, re-validates with the
// create rules and persists. When a new image is supplied, the old file is
// removed only after the record points at the new one.
func (s *Users) Update(ctx context.Context, id string, p user.Patch, image *multipart.FileHeader) (user.User, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	merged := p.ApplyTo(existing.Fields()).Normalized()

	if err := user.Validate(merged); err != nil {
		return user.User{}, err
	}

	var newRef *string

	if image != nil {
		ref, err := s.images.Save(image)
		if err != nil {
			return user.User{}, err
		}
		newRef = &ref
	}

	updated, err := s.repo.Update(ctx, id, merged, newRef)
	if err != nil {
		if newRef != nil {
			if rmErr := s.images.Remove(*newRef); rmErr != nil {
				s.log.Warn("could not remove image after failed update", "ref", *newRef, "err", rmErr)
			}
		}
		return user.User{}, err
	}

	if newRef != nil && existing.ProfileImage != nil && *existing.ProfileImage != *newRef {
		if rmErr := s.images.Remove(*existing.ProfileImage); rmErr != nil {
			s.log.Warn("could not remove replaced image", "ref", *existing.ProfileImage, "err", rmErr)
		}
	}

	return updated, nil
}

// Delete removes the record, then its image file best-effort: a failed file
// removal is logged but does not fail the deletion.
func (s *Users) Delete(ctx context.Context, id string) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if existing.ProfileImage != nil {
		if rmErr := s.images.Remove(*existing.ProfileImage); rmErr != nil {
			s.log.Warn("could not remove image of deleted user", "ref", *existing.ProfileImage, "err", rmErr)
		}
	}

	return nil
}

// ExportCSV renders the entire record set, newest-first.
func (s *Users) ExportCSV(ctx context.Context) ([]byte, error) {
	users, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return nil, user.ErrEmptyExport
	}

	var buf bytes.Buffer
	if err := export.WriteUsersCSV(&buf, users); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
