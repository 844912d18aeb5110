// Package servicetest provides in-memory stores for exercising services and
// handlers without a database.
package servicetest

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogsupport/internal/models"
	"blogsupport/internal/notify"
	"blogsupport/internal/repository"
)

type Users struct {
	mu    sync.Mutex
	items []models.User
}

func NewUsers(seed ...models.User) *Users {
	return &Users{items: seed}
}

func (u *Users) Create(_ context.Context, user models.User) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, existing := range u.items {
		if existing.Name == user.Name {
			return models.User{}, repository.ErrDuplicateName
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = now, now
	u.items = append(u.items, user)
	return user, nil
}

func (u *Users) FindByName(_ context.Context, name string) (models.User, error) {
	return u.find(func(x models.User) bool { return x.Name == name })
}

func (u *Users) FindByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	return u.find(func(x models.User) bool { return x.ID == id })
}

func (u *Users) find(match func(models.User) bool) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	for _, x := range u.items {
		if match(x) {
			return x, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (u *Users) List(context.Context) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	out := make([]models.User, 0, len(u.items))
	for _, x := range u.items {
		x.Password = ""
		out = append(out, x)
	}
	return out, nil
}

type Comments struct {
	mu    sync.Mutex
	items []models.Comment
	clock func() time.Time
}

func NewComments(seed ...models.Comment) *Comments {
	return &Comments{items: seed, clock: func() time.Time { return time.Now().UTC() }}
}

func (c *Comments) Create(_ context.Context, comment models.Comment) (models.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock()
	comment.ID = primitive.NewObjectID()
	comment.CreatedAt, comment.UpdatedAt = now, now
	c.items = append(c.items, comment)
	return comment, nil
}

func (c *Comments) FindByID(_ context.Context, id primitive.ObjectID) (models.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.index(id); i >= 0 {
		return c.items[i], nil
	}
	return models.Comment{}, repository.ErrCommentNotFound
}

func (c *Comments) FindBySlug(_ context.Context, slug string) ([]models.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Comment, 0)
	for _, x := range c.items {
		if x.PostSlug == slug {
			out = append(out, x)
		}
	}
	return out, nil
}

func (c *Comments) Recent(_ context.Context, limit int64) ([]models.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := slices.Clone(c.items)
	slices.SortStableFunc(out, func(a, b models.Comment) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (c *Comments) Update(_ context.Context, id primitive.ObjectID, name, body, url string) (models.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return models.Comment{}, repository.ErrCommentNotFound
	}
	c.items[i].Name, c.items[i].Body, c.items[i].URL = name, body, url
	c.items[i].UpdatedAt = c.clock()
	return c.items[i], nil
}

func (c *Comments) Delete(_ context.Context, id primitive.ObjectID) (models.Comment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return models.Comment{}, repository.ErrCommentNotFound
	}
	removed := c.items[i]
	c.items = slices.Delete(c.items, i, i+1)
	return removed, nil
}

// Len is the number of stored comments.
func (c *Comments) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

func (c *Comments) index(id primitive.ObjectID) int {
	return slices.IndexFunc(c.items, func(x models.Comment) bool { return x.ID == id })
}

// Notifier records messages and fails with Err when set.
type Notifier struct {
	mu       sync.Mutex
	Err      error
	Messages []notify.Message
}

func (n *Notifier) Notify(_ context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Messages = append(n.Messages, msg)
	return n.Err
}

func (n *Notifier) Count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.Messages)
}
