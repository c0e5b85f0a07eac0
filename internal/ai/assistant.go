package ai

import (
	"context"

	"github.com/spigell/talentscout/internal/questions"
)

// QuestionGenerator produces raw screening questions for a tech stack.
// Implementations make a single attempt; callers treat an error or an empty
// result as "use the fallback generator".
type QuestionGenerator interface {
	Generate(ctx context.Context, techStack, systemPrompt, techPromptTemplate string) (questions.Raw, error)
}
