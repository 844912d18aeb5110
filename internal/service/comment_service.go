package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogsupport/internal/models"
	"blogsupport/internal/notify"
	"blogsupport/internal/repository"
	"blogsupport/internal/security"
	"blogsupport/internal/thread"
	"blogsupport/internal/validation"
)

const (
	DefaultRecentCount = 5
	MaxRecentCount     = 10
)

type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) (models.Comment, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Comment, error)
	FindBySlug(ctx context.Context, slug string) ([]models.Comment, error)
	Recent(ctx context.Context, limit int64) ([]models.Comment, error)
	Update(ctx context.Context, id primitive.ObjectID, name, body, url string) (models.Comment, error)
	Delete(ctx context.Context, id primitive.ObjectID) (models.Comment, error)
}

// Observer receives comment flow events, typically a metrics collector.
type Observer interface {
	RecordCommentCreated()
	RecordNotification(ok bool)
}

type nopObserver struct{}

func (nopObserver) RecordCommentCreated()   {}
func (nopObserver) RecordNotification(bool) {}

type CommentService struct {
	comments  CommentStore
	notifier  notify.Dispatcher
	sanitizer *security.Sanitizer
	observer  Observer
	log       zerolog.Logger
}

func NewCommentService(comments CommentStore, notifier notify.Dispatcher, sanitizer *security.Sanitizer, log zerolog.Logger) *CommentService {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &CommentService{
		comments:  comments,
		notifier:  notifier,
		sanitizer: sanitizer,
		observer:  nopObserver{},
		log:       log,
	}
}

func (s *CommentService) WithObserver(o Observer) *CommentService {
	if o != nil {
		s.observer = o
	}
	return s
}

// Create strips markup, validates what is left and stores it. Rules apply to
// the text that will be stored. author is the account attached by the gate,
// if any; only a root author marks the comment as the post author's.
func (s *CommentService) Create(ctx context.Context, in validation.CommentCreate, author *models.User) (models.ThreadComment, error) {
	in.Name = s.sanitizer.Text(in.Name)
	in.Body = s.sanitizer.Text(in.Body)
	if err := validation.ValidateCreate(in); err != nil {
		return models.ThreadComment{}, validationFailure(err)
	}

	comment := models.NewComment(in.PostSlug, in.Name, in.Body)
	comment.URL = strings.TrimSpace(in.URL)
	comment.Email = strings.TrimSpace(in.Email)
	comment.Password = in.Password
	comment.ByPostAuthor = author != nil && author.IsRoot()

	if in.ParentCommentID != "" {
		parentID, err := s.replyTarget(ctx, in.ParentCommentID, in.PostSlug)
		if err != nil {
			return models.ThreadComment{}, err
		}
		comment.ParentCommentID = &parentID
	}

	created, err := s.comments.Create(ctx, comment)
	if err != nil {
		return models.ThreadComment{}, err
	}

	s.observer.RecordCommentCreated()

	err = s.notifier.Notify(ctx, notify.CommentCreated(created))
	s.observer.RecordNotification(err == nil)
	if err != nil {
		s.log.Warn().Err(err).Str("comment", created.ID.Hex()).Msg("comment notification failed")
	}

	return thread.Shape(created), nil
}

// replyTarget accepts only an existing top-level comment on the same post.
func (s *CommentService) replyTarget(ctx context.Context, rawID, slug string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return primitive.NilObjectID, ValidationError(validation.MsgBadRequest, err)
	}

	parent, err := s.comments.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return primitive.NilObjectID, ValidationError(validation.MsgBadRequest, err)
		}
		return primitive.NilObjectID, err
	}
	if parent.IsReply() || parent.PostSlug != slug {
		return primitive.NilObjectID, ValidationError(validation.MsgBadRequest, fmt.Errorf("parent %s is not a thread root of %s", rawID, slug))
	}
	return id, nil
}

func (s *CommentService) Update(ctx context.Context, in validation.CommentUpdate, actor *models.User) (models.ThreadComment, error) {
	in.Name = s.sanitizer.Text(in.Name)
	in.Body = s.sanitizer.Text(in.Body)
	if err := validation.ValidateUpdate(in); err != nil {
		return models.ThreadComment{}, validationFailure(err)
	}

	id, err := s.moderate(ctx, in.ID, actor)
	if err != nil {
		return models.ThreadComment{}, err
	}

	updated, err := s.comments.Update(ctx, id, in.Name, in.Body, strings.TrimSpace(in.URL))
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return models.ThreadComment{}, ValidationError(MsgModerationDenied, err)
		}
		return models.ThreadComment{}, err
	}
	return thread.Shape(updated), nil
}

func (s *CommentService) Delete(ctx context.Context, rawID string, actor *models.User) (models.ThreadComment, error) {
	id, err := s.moderate(ctx, rawID, actor)
	if err != nil {
		return models.ThreadComment{}, err
	}

	deleted, err := s.comments.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return models.ThreadComment{}, ValidationError(MsgModerationDenied, err)
		}
		return models.ThreadComment{}, err
	}
	return thread.Shape(deleted), nil
}

// moderate checks existence first and role second. Every refusal carries the
// same message so callers cannot tell which comments exist.
func (s *CommentService) moderate(ctx context.Context, rawID string, actor *models.User) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(rawID)
	if err != nil {
		return s.deny(rawID, repository.ErrCommentNotFound)
	}

	if _, err := s.comments.FindByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrCommentNotFound) {
			return s.deny(rawID, err)
		}
		return primitive.NilObjectID, err
	}

	if actor == nil || !actor.IsRoot() {
		return s.deny(rawID, ErrForbidden)
	}
	return id, nil
}

func (s *CommentService) deny(rawID string, cause error) (primitive.ObjectID, error) {
	s.log.Debug().Err(cause).Str("comment", rawID).Msg("moderation refused")
	return primitive.NilObjectID, ValidationError(MsgModerationDenied, cause)
}

func (s *CommentService) List(ctx context.Context, slug string) ([]models.Thread, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, ValidationError(validation.MsgBadRequest, nil)
	}

	comments, err := s.comments.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return thread.Assemble(comments), nil
}

func (s *CommentService) Recent(ctx context.Context, rawCount string) ([]models.ThreadComment, error) {
	comments, err := s.comments.Recent(ctx, int64(ClampCount(rawCount)))
	if err != nil {
		return nil, err
	}
	return thread.ShapeAll(comments), nil
}

// ClampCount parses the recent listing size: default when absent or not a
// number, otherwise bounded to [1, MaxRecentCount].
func ClampCount(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultRecentCount
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultRecentCount
	}
	return min(max(n, 1), MaxRecentCount)
}

func validationFailure(err error) error {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return ValidationError(vErr.Message, err)
	}
	return ValidationError(validation.MsgBadRequest, err)
}
