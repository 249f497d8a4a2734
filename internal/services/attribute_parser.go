package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/logger"
)

// AttributeParser extracts the raw attribute map from resume text. The map is
// decoded by the normalizer; unknown keys are ignored there.
type AttributeParser interface {
	Parse(ctx context.Context, text string) (map[string]interface{}, error)
}

type geminiAttributeParser struct {
	gemini        GeminiService
	promptBuilder *PromptBuilder
	maxRetries    int
	timeout       time.Duration
	log           *zap.Logger
}

func NewAttributeParser(gemini GeminiService, maxRetries int, timeout time.Duration, log *zap.Logger) AttributeParser {
	return &geminiAttributeParser{
		gemini:        gemini,
		promptBuilder: NewPromptBuilder(),
		maxRetries:    maxRetries,
		timeout:       timeout,
		log:           log.Named("attribute_parser"),
	}
}

func (p *geminiAttributeParser) Parse(ctx context.Context, text string) (map[string]interface{}, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty resume text")
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	prompt := p.promptBuilder.BuildAttributeExtractionPrompt(text)
	p.log.Debug("parsing resume attributes", zap.Int("prompt_chars", len(prompt)))

	response, err := p.gemini.GenerateTextWithRetry(ctx, prompt, 0.1, p.maxRetries)
	if err != nil {
		return nil, fmt.Errorf("failed to generate attributes: %w", err)
	}

	var attributes map[string]interface{}
	if err := json.Unmarshal([]byte(extractJSON(response)), &attributes); err != nil {
		p.log.Warn("unparseable attribute response", zap.String("response", logger.Truncate(response, 200)), zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
	}
	if attributes == nil {
		return nil, fmt.Errorf("attribute response is not an object")
	}

	return attributes, nil
}

// extractJSON strips markdown fences and anything around the outermost JSON
// object or array.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	} else if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
