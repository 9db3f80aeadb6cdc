package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/ghostnote/internal/logging"
	"github.com/dmitrijs2005/ghostnote/internal/server/config"
	"github.com/sashabaranov/go-openai"
)

// Suggestion sources reported to clients.
const (
	SourceFallback      = "fallback"
	SourceFallbackError = "fallback_error"
	SourceOpenAI        = "openai"
)

const (
	maxSuggestions        = 6
	minSuggestions        = 4
	minSuggestionLength   = 10
	suggestionMaxTokens   = 400
	suggestionTemperature = 0.8
	suggestionSystemRole  = "You are a helpful assistant that generates appropriate, friendly, and engaging anonymous message suggestions. Always maintain a positive and respectful tone."
	suggestionReturnRule  = "\n\nReturn only the message suggestions, one per line, without numbers or bullet points."
)

// SuggestionCategories lists the prompt flavours; anything else maps to general.
var SuggestionCategories = []string{"general", "creative", "motivational", "friendly", "thoughtful"}

var suggestionPrompts = map[string]string{
	"general": `Generate 6 friendly, engaging, and thought-provoking anonymous message suggestions that someone could send to %s.
The messages should be:
- Positive and uplifting
- Safe for work and appropriate
- Conversation starters
- Personal but not intrusive
- Encouraging self-reflection or sharing experiences`,
	"creative": `Generate 6 creative and artistic anonymous message suggestions for %s. Focus on:
- Creative projects and inspiration
- Art, music, writing, or other creative pursuits
- Imagination and innovation
- Creative challenges or prompts`,
	"motivational": `Generate 6 motivational and inspiring anonymous message suggestions for %s. Focus on:
- Personal growth and development
- Overcoming challenges
- Achieving goals and dreams
- Building confidence and self-belief`,
	"friendly": `Generate 6 casual and friendly anonymous message suggestions for %s. Focus on:
- Everyday life and experiences
- Hobbies and interests
- Fun and lighthearted topics
- Building connections and friendships`,
	"thoughtful": `Generate 6 deep and thoughtful anonymous message suggestions for %s. Focus on:
- Philosophy and life perspectives
- Personal values and beliefs
- Meaningful experiences and memories
- Self-reflection and introspection`,
}

var noKeySuggestions = []string{
	"What's something that made you smile today?",
	"If you could travel anywhere right now, where would you go?",
	"What's a hobby you've recently started or want to try?",
	"What's the best advice you've ever received?",
	"If you could have dinner with any historical figure, who would it be?",
	"What's a song that always puts you in a good mood?",
}

var errorSuggestions = []string{
	"What's something that made you smile today?",
	"If you could travel anywhere right now, where would you go?",
	"What's a hobby you've recently started or want to try?",
	"What's the best advice you've ever received?",
	"If you could learn any skill instantly, what would it be?",
	"What's something you're proud of accomplishing recently?",
}

var paddingSuggestions = []string{
	"What's something you're grateful for today?",
	"Share a random fact about yourself that would surprise people!",
	"What's your favorite way to unwind after a long day?",
	"If you could give your past self one piece of advice, what would it be?",
}

var (
	numberedPrefix = regexp.MustCompile(`^\d+\.\s*`)
	bulletPrefix   = regexp.MustCompile(`^[-•*]\s*`)
)

var errEmptyCompletion = errors.New("completion returned no choices")

// ChatCompleter is the subset of *openai.Client used for suggestions.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Suggestions is the response of SuggestionService.Suggest.
type Suggestions struct {
	Items    []string
	Source   string
	Category string
	Error    string
}

// SuggestionService produces message starters. It never fails: provider
// errors degrade to a canned list.
type SuggestionService struct {
	client   ChatCompleter
	model    string
	logger   logging.Logger
	observer Observer
}

// NewSuggestionService builds the service. A nil client serves fallbacks only.
func NewSuggestionService(client ChatCompleter, cfg *config.Config, logger logging.Logger, o Observer) *SuggestionService {
	return &SuggestionService{
		client:   client,
		model:    cfg.OpenAIModel,
		logger:   logger.With("module", "suggestions"),
		observer: observerOrNop(o),
	}
}

// NewOpenAIClient returns nil when no API key is configured.
func NewOpenAIClient(cfg *config.Config) ChatCompleter {
	if cfg.OpenAIAPIKey == "" {
		return nil
	}
	return openai.NewClient(cfg.OpenAIAPIKey)
}

func normalizeSuggestionCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if _, ok := suggestionPrompts[category]; ok {
		return category
	}
	return "general"
}

// Suggest returns between 4 and 6 message suggestions for username.
func (s *SuggestionService) Suggest(ctx context.Context, username, category string) *Suggestions {
	category = normalizeSuggestionCategory(category)

	if s.client == nil {
		s.observer.Suggestion(SourceFallback)
		return &Suggestions{Items: clone(noKeySuggestions), Source: SourceFallback, Category: category}
	}

	content, err := s.complete(ctx, username, category)
	if err != nil {
		s.logger.Error(ctx, "suggestion provider failed", "category", category, "error", err)
		s.observer.Suggestion(SourceFallbackError)
		return &Suggestions{
			Items:    clone(errorSuggestions),
			Source:   SourceFallbackError,
			Category: category,
			Error:    err.Error(),
		}
	}

	items := parseSuggestions(content)
	s.logger.Debug(ctx, "suggestions generated", "category", category, "count", len(items))
	s.observer.Suggestion(SourceOpenAI)
	return &Suggestions{Items: items, Source: SourceOpenAI, Category: category}
}

func (s *SuggestionService) complete(ctx context.Context, username, category string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: suggestionSystemRole},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(suggestionPrompts[category], username) + suggestionReturnRule},
		},
		MaxTokens:   suggestionMaxTokens,
		Temperature: suggestionTemperature,
		N:           1,
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// parseSuggestions splits a completion into clean lines, strips list markers,
// drops short lines and pads from a fixed list when fewer than four remain.
func parseSuggestions(content string) []string {
	out := make([]string, 0, maxSuggestions)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = numberedPrefix.ReplaceAllString(line, "")
		line = bulletPrefix.ReplaceAllString(line, "")
		if len([]rune(line)) <= minSuggestionLength {
			continue
		}
		out = append(out, line)
		if len(out) == maxSuggestions {
			break
		}
	}

	if len(out) < minSuggestions {
		need := maxSuggestions - len(out)
		if need > len(paddingSuggestions) {
			need = len(paddingSuggestions)
		}
		out = append(out, paddingSuggestions[:need]...)
	}
	return out
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}
