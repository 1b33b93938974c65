package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"model-eval/parser"
	"model-eval/repositories/memory"
)

func TestPromptCreateAndGet(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(memory.NewStore().Prompts(), nil, nil)

	p, err := svc.Create(ctx, "u1", CreatePromptInput{Title: "  Summarize ", Content: "Summarize this", Tags: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "Summarize", p.Title)
	assert.Equal(t, []string{"a", "b"}, p.Tags)
	assert.False(t, p.CreatedAt.IsZero())

	got, err := svc.Get(ctx, "u1", p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Get(ctx, "u2", p.ID.Hex())
	assert.ErrorIs(t, err, ErrPromptNotFound)
	_, err = svc.Get(ctx, "u1", "nope")
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestPromptCreateRequiresTitleAndContent(t *testing.T) {
	svc := NewPromptService(memory.NewStore().Prompts(), nil, nil)
	for _, in := range []CreatePromptInput{
		{Content: "c"},
		{Title: "t"},
		{Title: " ", Content: "c"},
	} {
		_, err := svc.Create(context.Background(), "u1", in)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	}
}

func TestPromptCreateDefaultsTags(t *testing.T) {
	svc := NewPromptService(memory.NewStore().Prompts(), nil, nil)
	p, err := svc.Create(context.Background(), "u1", CreatePromptInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.NotNil(t, p.Tags)
	assert.Empty(t, p.Tags)
}

func TestPromptTagsRoundTripAsSent(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(memory.NewStore().Prompts(), nil, nil)
	tags := []string{"b", "a", "a", " c "}

	p, err := svc.Create(ctx, "u1", CreatePromptInput{Title: "t", Content: "c", Tags: tags})
	require.NoError(t, err)
	got, err := svc.Get(ctx, "u1", p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, tags, got.Tags)

	updated := []string{" z ", "z", ""}
	got, err = svc.Update(ctx, "u1", p.ID.Hex(), UpdatePromptInput{Tags: &updated})
	require.NoError(t, err)
	assert.Equal(t, updated, got.Tags)
}

func TestPromptListFiltersByTag(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(memory.NewStore().Prompts(), nil, nil)

	_, err := svc.Create(ctx, "u1", CreatePromptInput{Title: "one", Content: "c", Tags: []string{"x"}})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "u1", CreatePromptInput{Title: "two", Content: "c", Tags: []string{"y"}})
	require.NoError(t, err)

	all, err := svc.List(ctx, "u1", "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tagged, err := svc.List(ctx, "u1", "x")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "one", tagged[0].Title)

	none, err := svc.List(ctx, "u3", "")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestPromptUpdate(t *testing.T) {
	ctx := context.Background()
	svc := NewPromptService(memory.NewStore().Prompts(), nil, nil)
	p, err := svc.Create(ctx, "u1", CreatePromptInput{Title: "t", Content: "c", Tags: []string{"x"}})
	require.NoError(t, err)

	title := "new title"
	got, err := svc.Update(ctx, "u1", p.ID.Hex(), UpdatePromptInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new title", got.Title)
	assert.Equal(t, "c", got.Content)
	assert.Equal(t, []string{"x"}, got.Tags)

	empty := []string{}
	got, err = svc.Update(ctx, "u1", p.ID.Hex(), UpdatePromptInput{Tags: &empty})
	require.NoError(t, err)
	assert.Empty(t, got.Tags)

	blank := "  "
	_, err = svc.Update(ctx, "u1", p.ID.Hex(), UpdatePromptInput{Content: &blank})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Update(ctx, "u1", primitive.NewObjectID().Hex(), UpdatePromptInput{Title: &title})
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestPromptDeleteTwice(t *testing.T) {
	ctx := context.Background()
	bus := &recordingBus{}
	svc := NewPromptService(memory.NewStore().Prompts(), nil, bus)
	p, err := svc.Create(ctx, "u1", CreatePromptInput{Title: "t", Content: "c"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", p.ID.Hex()))
	assert.ErrorIs(t, svc.Delete(ctx, "u1", p.ID.Hex()), ErrPromptNotFound)
	assert.Equal(t, []string{"prompt.deleted"}, bus.types)
}

func TestPromptImport(t *testing.T) {
	ctx := context.Background()
	imp := &stubImporter{article: &parser.Article{Title: "Page title", Text: strings.Repeat("word ", 20)}}
	svc := NewPromptService(memory.NewStore().Prompts(), imp, nil)

	p, err := svc.Import(ctx, "u1", ImportPromptInput{URL: " https://example.com/post ", Tags: []string{"web"}})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/post", imp.gotURL)
	assert.Equal(t, "Page title", p.Title)
	assert.Equal(t, "https://example.com/post", p.SourceURL)
	assert.Equal(t, []string{"web"}, p.Tags)
	assert.True(t, strings.HasPrefix(p.Content, "word word"))

	p, err = svc.Import(ctx, "u1", ImportPromptInput{URL: "https://example.com/post", Title: "Mine"})
	require.NoError(t, err)
	assert.Equal(t, "Mine", p.Title)
}

func TestPromptImportTruncatesContent(t *testing.T) {
	imp := &stubImporter{article: &parser.Article{Title: "t", Text: strings.Repeat("é", MaxImportedContent+10)}}
	svc := NewPromptService(memory.NewStore().Prompts(), imp, nil)

	p, err := svc.Import(context.Background(), "u1", ImportPromptInput{URL: "https://example.com"})
	require.NoError(t, err)
	assert.Equal(t, MaxImportedContent, len([]rune(p.Content)))
}

func TestPromptImportErrors(t *testing.T) {
	ctx := context.Background()
	var verr *ValidationError

	svc := NewPromptService(memory.NewStore().Prompts(), &stubImporter{err: parser.ErrUnsupportedURL}, nil)
	_, err := svc.Import(ctx, "u1", ImportPromptInput{URL: "ftp://example.com"})
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Import(ctx, "u1", ImportPromptInput{})
	assert.ErrorAs(t, err, &verr)

	svc = NewPromptService(memory.NewStore().Prompts(), &stubImporter{err: parser.ErrNoContent}, nil)
	_, err = svc.Import(ctx, "u1", ImportPromptInput{URL: "https://example.com"})
	var ierr *ImportError
	require.ErrorAs(t, err, &ierr)
	assert.True(t, errors.Is(err, parser.ErrNoContent))
}
