// Package thread turns a flat, slug-scoped comment set into parent/reply threads.
package thread

import (
	"slices"

	"blogsupport/internal/models"
)

// Shape strips the contact email and moderation password from a comment.
func Shape(c models.Comment) models.ThreadComment {
	out := models.ThreadComment{
		ID:           c.ID.Hex(),
		Name:         c.Name,
		PostSlug:     c.PostSlug,
		ByPostAuthor: c.ByPostAuthor,
		URL:          c.URL,
		Body:         c.Body,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.IsReply() {
		parent := c.ParentCommentID.Hex()
		out.ParentCommentID = &parent
	}
	return out
}

func ShapeAll(comments []models.Comment) []models.ThreadComment {
	out := make([]models.ThreadComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, Shape(c))
	}
	return out
}

// Assemble builds one level of threading. Parents come newest first; the
// replies of a thread are selected from a newest-first ordering and then
// reversed, so they read oldest first. Replies whose parent is not among the
// parents are dropped.
func Assemble(comments []models.Comment) []models.Thread {
	var parents, replies []models.Comment
	for _, c := range comments {
		if c.IsReply() {
			replies = append(replies, c)
		} else {
			parents = append(parents, c)
		}
	}

	newestFirst := func(a, b models.Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	}
	slices.SortStableFunc(parents, newestFirst)
	slices.SortStableFunc(replies, newestFirst)

	threads := make([]models.Thread, 0, len(parents))
	for _, p := range parents {
		own := make([]models.ThreadComment, 0)
		for _, r := range replies {
			if *r.ParentCommentID == p.ID {
				own = append(own, Shape(r))
			}
		}
		slices.Reverse(own)

		threads = append(threads, models.Thread{
			ThreadComment: Shape(p),
			Replies:       own,
		})
	}
	return threads
}
