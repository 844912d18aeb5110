package thread

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"blogsupport/internal/models"
)

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func comment(name string, at time.Duration, parent *primitive.ObjectID) models.Comment {
	return models.Comment{
		ID:              primitive.NewObjectID(),
		Name:            name,
		PostSlug:        "/dev/post",
		Body:            "안녕하세요",
		Email:           name + "@example.com",
		Password:        "secret",
		ParentCommentID: parent,
		CreatedAt:       base.Add(at),
		UpdatedAt:       base.Add(at),
	}
}

func TestAssemble_Ordering(t *testing.T) {
	p1 := comment("p1", 10*time.Minute, nil)
	p2 := comment("p2", 0, nil)
	r1a := comment("r1a", 11*time.Minute, &p1.ID)
	r2a := comment("r2a", 12*time.Minute, &p1.ID)

	threads := Assemble([]models.Comment{r2a, p2, r1a, p1})

	require.Len(t, threads, 2)
	assert.Equal(t, "p1", threads[0].Name)
	assert.Equal(t, "p2", threads[1].Name)

	require.Len(t, threads[0].Replies, 2)
	assert.Equal(t, "r1a", threads[0].Replies[0].Name)
	assert.Equal(t, "r2a", threads[0].Replies[1].Name)
	assert.NotNil(t, threads[1].Replies)
	assert.Empty(t, threads[1].Replies)
}

func TestAssemble_DropsOrphanReplies(t *testing.T) {
	p := comment("p", 0, nil)
	missing := primitive.NewObjectID()
	orphan := comment("orphan", time.Minute, &missing)

	threads := Assemble([]models.Comment{p, orphan})

	require.Len(t, threads, 1)
	assert.Empty(t, threads[0].Replies)

	raw, err := json.Marshal(threads)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "orphan")
}

func TestAssemble_ReplyToReplyIsNotNested(t *testing.T) {
	p := comment("p", 0, nil)
	r := comment("r", time.Minute, &p.ID)
	rr := comment("rr", 2*time.Minute, &r.ID)

	threads := Assemble([]models.Comment{p, r, rr})

	require.Len(t, threads, 1)
	require.Len(t, threads[0].Replies, 1)
	assert.Equal(t, "r", threads[0].Replies[0].Name)
}

func TestAssemble_Empty(t *testing.T) {
	threads := Assemble(nil)
	assert.NotNil(t, threads)
	assert.Empty(t, threads)

	raw, err := json.Marshal(threads)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestAssemble_ZeroParentIDIsTopLevel(t *testing.T) {
	zero := primitive.NilObjectID
	c := comment("legacy", 0, &zero)

	threads := Assemble([]models.Comment{c})

	require.Len(t, threads, 1)
	assert.Nil(t, threads[0].ParentCommentID)
}

func TestShape_StripsSensitiveFields(t *testing.T) {
	p := comment("p", 0, nil)
	r := comment("r", time.Minute, &p.ID)

	raw, err := json.Marshal(Assemble([]models.Comment{p, r}))
	require.NoError(t, err)

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.NotContains(t, decoded[0], "email")
	assert.NotContains(t, decoded[0], "password")

	replies := decoded[0]["replies"].([]any)
	require.Len(t, replies, 1)
	reply := replies[0].(map[string]any)
	assert.NotContains(t, reply, "email")
	assert.NotContains(t, reply, "password")
	assert.Equal(t, p.ID.Hex(), reply["parentCommentId"])
}
