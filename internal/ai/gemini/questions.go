package gemini

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/talentscout/internal/prompts"
	"github.com/spigell/talentscout/internal/questions"
	"github.com/spigell/talentscout/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, systemInstruction, message string) (string, error)
}

// QuestionWriter asks Gemini for screening questions and hands back the raw lines.
type QuestionWriter struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

const defaultMaxLogLength = 200

func NewQuestionWriter(generator contentGenerator, maxLogLength int, logger *zap.Logger) *QuestionWriter {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QuestionWriter{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Generate implements ai.QuestionGenerator.
func (w *QuestionWriter) Generate(ctx context.Context, techStack, systemPrompt, techPromptTemplate string) (questions.Raw, error) {
	techStack = strings.TrimSpace(techStack)
	if techStack == "" {
		return questions.FromLines(nil), nil
	}

	prompt := prompts.RenderTechStack(techPromptTemplate, techStack)

	w.logger.Debug("gemini generate content request",
		zap.String("tech_stack", techStack),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, w.maxLogLen)),
	)

	raw, err := w.generator.GenerateContent(ctx, systemPrompt, prompt)
	if err != nil {
		return questions.FromLines(nil), err
	}

	w.logger.Debug("gemini generate content response",
		zap.String("tech_stack", techStack),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, w.maxLogLen)),
	)

	return questions.FromText(extractText(raw)), nil
}

// extractText drops a markdown fence the model sometimes wraps plain text in.
func extractText(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		if idx := strings.Index(raw, "\n"); idx != -1 {
			raw = raw[idx+1:]
		} else {
			raw = strings.TrimPrefix(raw, "```")
		}
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
