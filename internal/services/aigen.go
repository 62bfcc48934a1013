package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/coursekit/coursekit-backend/internal/aicache"
	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/blocks"
	"github.com/coursekit/coursekit-backend/internal/clients/openai"
	"github.com/coursekit/coursekit-backend/internal/logger"
)

// AIGenService produces variant-shaped block content from a prompt. The
// provider may answer with a bare string, an array, or a structured object;
// all three are normalized onto the target variant's content shape before
// they reach patchBlockContent. Responses are cached by prompt+options hash
// for a bounded lifetime.
type AIGenService interface {
	GenerateBlockContent(ctx context.Context, blockType, prompt, courseContext string) (map[string]any, error)
}

type aiGenService struct {
	log      *logger.Logger
	client   openai.Client
	cache    aicache.Cache
	cacheTTL time.Duration
}

func NewAIGenService(log *logger.Logger, client openai.Client, cache aicache.Cache, cacheTTL time.Duration) AIGenService {
	if cacheTTL <= 0 {
		cacheTTL = 15 * time.Minute
	}
	return &aiGenService{
		log:      log.With("service", "AIGenService"),
		client:   client,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *aiGenService) GenerateBlockContent(ctx context.Context, blockType, prompt, courseContext string) (map[string]any, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apperr.Validation("missing_prompt", fmt.Errorf("prompt is required"))
	}

	key := cacheKey(blockType, prompt, courseContext)
	if s.cache != nil {
		if raw, hit, err := s.cache.Get(ctx, key); err == nil && hit {
			var content map[string]any
			if err := json.Unmarshal(raw, &content); err == nil {
				return content, nil
			}
			// Unreadable entry: drop it and regenerate.
			_ = s.cache.Expire(ctx, key)
		}
	}

	system := systemPromptFor(blockType)
	user := prompt
	if strings.TrimSpace(courseContext) != "" {
		user = fmt.Sprintf("Course context:\n%s\n\nRequest:\n%s", courseContext, prompt)
	}

	raw, err := s.client.GenerateJSON(ctx, system, user, 2000, 0.7)
	if err != nil {
		return nil, err
	}
	content, err := normalizeGeneratedContent(blockType, raw)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, mErr := json.Marshal(content); mErr == nil {
			if cErr := s.cache.Set(ctx, key, encoded, s.cacheTTL); cErr != nil {
				s.log.Warn("ai cache set failed", "error", cErr)
			}
		}
	}
	return content, nil
}

func cacheKey(blockType, prompt, courseContext string) string {
	sum := sha256.Sum256([]byte(blockType + "\x00" + prompt + "\x00" + courseContext))
	return hex.EncodeToString(sum[:])
}

func systemPromptFor(blockType string) string {
	base := "You generate course content for a block-based page editor. Respond with JSON only."
	switch blockType {
	case "list":
		return base + ` Respond as {"items":[{"text":"..."}],"listType":"bullet"}.`
	case "poll":
		return base + ` Respond as {"question":"...","options":["...","..."]}.`
	case "wordCloud":
		return base + ` Respond as {"question":"...","words":["..."]}.`
	case "reflection":
		return base + ` Respond as {"question":"...","prompt":"..."}.`
	case "code":
		return base + ` Respond as {"code":"...","language":"..."}.`
	default:
		return base + ` Respond as {"text":"..."} unless the request implies a richer structure.`
	}
}

// normalizeGeneratedContent maps whatever shape the provider produced onto
// the variant's content contract, starting from the variant defaults so
// required siblings are present.
func normalizeGeneratedContent(blockType string, raw json.RawMessage) (map[string]any, error) {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Some providers hand back bare text despite the JSON instruction.
		decoded = string(raw)
	}

	content := blocks.DefaultContent(blockType)

	switch v := decoded.(type) {
	case map[string]any:
		for k, val := range v {
			content[k] = val
		}
	case []any:
		switch blockType {
		case "poll", "choiceComparison", "playerTypeAnalyzer", "ethicalDilemmaSolver":
			content["options"] = v
		case "wordCloud":
			content["words"] = v
		case "list":
			items := make([]any, 0, len(v))
			for _, e := range v {
				if s, ok := e.(string); ok {
					items = append(items, map[string]any{"text": s})
				} else {
					items = append(items, e)
				}
			}
			content["items"] = items
		default:
			content["items"] = v
		}
	case string:
		switch blockType {
		case "code":
			content["code"] = v
		case "reflection":
			content["prompt"] = v
		case "poll", "wordCloud":
			content["question"] = v
		default:
			content["text"] = v
		}
	default:
		return nil, fmt.Errorf("unexpected generated content shape %T", decoded)
	}
	return content, nil
}
