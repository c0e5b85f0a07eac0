// Package screening drives a single candidate through the technical screening.
package screening

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/logger"
	"github.com/spigell/talentscout/internal/prompts"
	"github.com/spigell/talentscout/internal/questions"
)

type Phase int

const (
	NotStarted Phase = iota
	InProgress
	Finished
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Finished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Source tells where the current question list came from.
type Source string

const (
	SourceNone      Source = ""
	SourceGenerator Source = "generator"
	SourceFallback  Source = "fallback"
)

var exitKeywords = map[string]struct{}{
	"exit": {},
	"quit": {},
	"end":  {},
}

// IsExitKeyword reports whether the answer asks to stop the screening.
func IsExitKeyword(answer string) bool {
	_, ok := exitKeywords[strings.ToLower(strings.TrimSpace(answer))]
	return ok
}

// RecordSink persists a finished screening.
type RecordSink interface {
	AppendRecord(ctx context.Context, profile Profile, answers *AnswersByTechnology) error
}

// Deps aggregates the collaborators of a session.
type Deps struct {
	// Generator may be nil, the fallback is used then.
	Generator ai.QuestionGenerator
	Fallback  *questions.Fallback
	Sink      RecordSink
	Logger    *zap.Logger

	SystemPrompt       string
	TechPromptTemplate string
}

// Session is the screening state machine for one candidate.
// It is not safe for concurrent use.
type Session struct {
	deps Deps

	phase     Phase
	profile   Profile
	questions []questions.Question
	index     int
	answers   *AnswersByTechnology
	source    Source
}

func New(deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Fallback == nil {
		deps.Fallback = questions.NewFallback(nil, nil)
	}
	if deps.SystemPrompt == "" {
		deps.SystemPrompt = prompts.System()
	}
	if deps.TechPromptTemplate == "" {
		deps.TechPromptTemplate = prompts.TechStackTemplate()
	}

	return &Session{
		deps:    deps,
		answers: NewAnswersByTechnology(),
	}
}

// Start validates the profile, obtains questions and begins the screening.
// On any error the session stays NotStarted and keeps its previous state.
func (s *Session) Start(ctx context.Context, profile Profile) error {
	if s.phase != NotStarted {
		return ErrAlreadyStarted
	}

	if err := profile.Validate(); err != nil {
		return err
	}

	profile = profile.Normalized()
	log := logger.WithFields(s.deps.Logger, logger.SessionFields(profile.FullName, profile.Email)...)

	list, source := s.generate(ctx, profile.TechStack, log)
	if len(list) == 0 {
		log.Warn("no questions available", zap.String("tech_stack", profile.TechStack))
		return ErrNoQuestions
	}

	s.profile = profile
	s.questions = list
	s.index = 0
	s.answers = NewAnswersByTechnology()
	s.source = source
	s.phase = InProgress

	log.Info("screening started",
		zap.Int("questions", len(list)),
		zap.Strings("technologies", questions.Technologies(list)),
		zap.String("source", string(source)),
	)

	return nil
}

func (s *Session) generate(ctx context.Context, stack string, log *zap.Logger) ([]questions.Question, Source) {
	if s.deps.Generator != nil {
		raw, err := s.deps.Generator.Generate(ctx, stack, s.deps.SystemPrompt, s.deps.TechPromptTemplate)
		if err != nil {
			log.Warn("question generation failed, using fallback", zap.Error(err))
		} else if list := questions.Parse(raw); len(list) > 0 {
			return list, SourceGenerator
		} else {
			log.Warn("generator returned no parseable questions, using fallback")
		}
	}

	return s.deps.Fallback.Generate(stack), SourceFallback
}

// SubmitAnswer records the answer to the current question and advances.
// An exit keyword finishes the screening without recording or saving anything.
func (s *Session) SubmitAnswer(ctx context.Context, answer string) error {
	if s.phase != InProgress {
		return ErrNotInProgress
	}

	if IsExitKeyword(answer) {
		s.phase = Finished
		s.deps.Logger.Info("screening ended by exit keyword", zap.Int("answered", s.index), zap.Int("total", len(s.questions)))
		return nil
	}

	return s.record(ctx, answer)
}

// SkipCurrent records an empty answer and advances.
func (s *Session) SkipCurrent(ctx context.Context) error {
	if s.phase != InProgress {
		return ErrNotInProgress
	}
	return s.record(ctx, "")
}

// EndNow finishes the screening without recording or saving anything.
func (s *Session) EndNow() error {
	if s.phase != InProgress {
		return ErrNotInProgress
	}
	s.phase = Finished
	s.deps.Logger.Info("screening ended early", zap.Int("answered", s.index), zap.Int("total", len(s.questions)))
	return nil
}

// Restart clears all state and returns to NotStarted.
func (s *Session) Restart() {
	s.phase = NotStarted
	s.profile = Profile{}
	s.questions = nil
	s.index = 0
	s.answers = NewAnswersByTechnology()
	s.source = SourceNone
}

// CurrentQuestion returns the question being asked and whether it opens its technology group.
func (s *Session) CurrentQuestion() (questions.Question, bool, error) {
	if s.phase != InProgress {
		return questions.Question{}, false, ErrNotInProgress
	}
	return s.questions[s.index], questions.IsFirstOfTechnology(s.questions, s.index), nil
}

func (s *Session) record(ctx context.Context, answer string) error {
	q := s.questions[s.index]
	s.answers.Append(q.Technology, Answer{
		QuestionNumber: q.Number,
		Question:       q.Text,
		Answer:         answer,
	})
	s.index++

	if s.index < len(s.questions) {
		return nil
	}

	s.phase = Finished
	s.deps.Logger.Info("screening completed", zap.Int("answers", s.answers.Len()))

	if s.deps.Sink == nil {
		return nil
	}
	if err := s.deps.Sink.AppendRecord(ctx, s.profile, s.answers.Clone()); err != nil {
		return fmt.Errorf("saving screening record: %w", err)
	}
	return nil
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) Profile() Profile { return s.profile }

// Questions returns a copy of the question list.
func (s *Session) Questions() []questions.Question {
	return append([]questions.Question(nil), s.questions...)
}

// Answers returns a copy of the answers recorded so far.
func (s *Session) Answers() *AnswersByTechnology { return s.answers.Clone() }

// Progress returns the number of answered questions and the total.
func (s *Session) Progress() (int, int) { return s.index, len(s.questions) }

func (s *Session) Source() Source { return s.source }
