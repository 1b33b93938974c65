package services

import (
	"context"
	"errors"
	"strings"

	"model-eval/eventbus"
	"model-eval/events"
	"model-eval/models"
	"model-eval/parser"
	"model-eval/repositories"
)

// MaxImportedContent caps the number of characters an imported page
// contributes to a prompt.
const MaxImportedContent = 50000

// PromptService owns prompt CRUD for a single user scope.
type PromptService struct {
	repo     PromptStore
	importer ArticleImporter
	bus      eventbus.Publisher
}

func NewPromptService(repo PromptStore, importer ArticleImporter, bus eventbus.Publisher) *PromptService {
	if bus == nil {
		bus = eventbus.NoopBus{}
	}
	return &PromptService{repo: repo, importer: importer, bus: bus}
}

type CreatePromptInput struct {
	Title   string
	Content string
	Tags    []string
}

type UpdatePromptInput struct {
	Title   *string
	Content *string
	Tags    *[]string
}

type ImportPromptInput struct {
	URL   string
	Title string
	Tags  []string
}

func (s *PromptService) Create(ctx context.Context, userID string, in CreatePromptInput) (*models.Prompt, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, invalid("title and content are required")
	}
	p := &models.Prompt{
		UserID:  userID,
		Title:   title,
		Content: in.Content,
		Tags:    tagsOrEmpty(in.Tags),
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PromptService) Get(ctx context.Context, userID, hexID string) (*models.Prompt, error) {
	id, err := parseID(hexID, ErrPromptNotFound)
	if err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, promptErr(err)
	}
	return p, nil
}

// List returns the caller's prompts newest first, optionally filtered by tag.
func (s *PromptService) List(ctx context.Context, userID, tag string) ([]models.Prompt, error) {
	items, err := s.repo.List(ctx, userID, strings.TrimSpace(tag))
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Prompt{}
	}
	return items, nil
}

// Update changes only the supplied fields. A supplied but blank title or
// content is rejected.
func (s *PromptService) Update(ctx context.Context, userID, hexID string, in UpdatePromptInput) (*models.Prompt, error) {
	id, err := parseID(hexID, ErrPromptNotFound)
	if err != nil {
		return nil, err
	}
	var u repositories.PromptUpdate
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, invalid("title must not be empty")
		}
		u.Title = &title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, invalid("content must not be empty")
		}
		u.Content = in.Content
	}
	if in.Tags != nil {
		tags := tagsOrEmpty(*in.Tags)
		u.Tags = &tags
	}

	p, err := s.repo.Update(ctx, userID, id, u)
	if err != nil {
		return nil, promptErr(err)
	}
	return p, nil
}

// Delete removes the prompt only. Evaluations referencing it are kept.
func (s *PromptService) Delete(ctx context.Context, userID, hexID string) error {
	id, err := parseID(hexID, ErrPromptNotFound)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return promptErr(err)
	}

	publish(ctx, s.bus, eventbus.TopicPromptEvents, "", events.PromptDeletedEvent{
		BaseEvent: events.NewBaseEvent(hexID, events.PromptDeleted),
		PromptID:  hexID,
		UserID:    userID,
	})
	return nil
}

// Import creates a prompt from the readable text of a web page.
func (s *PromptService) Import(ctx context.Context, userID string, in ImportPromptInput) (*models.Prompt, error) {
	rawURL := strings.TrimSpace(in.URL)
	if rawURL == "" {
		return nil, invalid("url is required")
	}
	if s.importer == nil {
		return nil, &ImportError{URL: rawURL, Err: errors.New("import is disabled")}
	}

	article, err := s.importer.Import(ctx, rawURL)
	if err != nil {
		if errors.Is(err, parser.ErrUnsupportedURL) {
			return nil, invalid("%s", err.Error())
		}
		return nil, &ImportError{URL: rawURL, Err: err}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = strings.TrimSpace(article.Title)
	}
	if title == "" {
		title = rawURL
	}

	p := &models.Prompt{
		UserID:    userID,
		Title:     title,
		Content:   truncateRunes(article.Text, MaxImportedContent),
		Tags:      tagsOrEmpty(in.Tags),
		SourceURL: rawURL,
	}
	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func promptErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrPromptNotFound
	}
	return err
}

// tagsOrEmpty keeps tags exactly as sent, in order. Only nil is replaced.
func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func truncateRunes(s string, max int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max])
}
