package screening

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/talentscout/internal/questions"
)

type stubGenerator struct {
	raw       questions.Raw
	err       error
	calls     int
	lastStack string
}

func (s *stubGenerator) Generate(_ context.Context, techStack, _, _ string) (questions.Raw, error) {
	s.calls++
	s.lastStack = techStack
	return s.raw, s.err
}

type recordingSink struct {
	records []savedRecord
	err     error
}

type savedRecord struct {
	profile Profile
	answers *AnswersByTechnology
}

func (r *recordingSink) AppendRecord(_ context.Context, profile Profile, answers *AnswersByTechnology) error {
	r.records = append(r.records, savedRecord{profile: profile, answers: answers})
	return r.err
}

func validProfile(stack string) Profile {
	return Profile{
		FullName:         "Ada Lovelace",
		Email:            "ada@example.com",
		Phone:            "+44 20-7946-0958",
		YearsExperience:  "5",
		DesiredPositions: "Backend Engineer",
		Location:         "London, UK",
		TechStack:        stack,
	}
}

func newTestSession(gen *stubGenerator, sink *recordingSink) *Session {
	deps := Deps{
		Fallback: questions.NewFallback(nil, rand.New(rand.NewPCG(1, 2))),
		Logger:   zap.NewNop(),
	}
	if gen != nil {
		deps.Generator = gen
	}
	if sink != nil {
		deps.Sink = sink
	}
	return New(deps)
}

const twoTechOutput = `Technology: Go
Questions:
1. What is a goroutine?
2. What is a channel?
Technology: SQL
Questions:
1. What is an index?`

func startedSession(t *testing.T, sink *recordingSink) *Session {
	t.Helper()

	gen := &stubGenerator{raw: questions.FromText(twoTechOutput)}
	s := newTestSession(gen, sink)
	if err := s.Start(context.Background(), validProfile("Go, SQL")); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	return s
}

func TestStartWithFallbackForJava(t *testing.T) {
	s := newTestSession(nil, nil)

	if err := s.Start(context.Background(), validProfile("Java")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Phase() != InProgress {
		t.Fatalf("expected in progress, got %s", s.Phase())
	}
	if len(s.Questions()) == 0 {
		t.Fatalf("expected questions")
	}
	if s.Source() != SourceFallback {
		t.Fatalf("expected fallback source, got %q", s.Source())
	}
}

func TestStartUsesGenerator(t *testing.T) {
	gen := &stubGenerator{raw: questions.FromText(twoTechOutput)}
	s := newTestSession(gen, nil)

	if err := s.Start(context.Background(), validProfile("  Go, SQL  ")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gen.lastStack != "Go, SQL" {
		t.Fatalf("expected trimmed stack, got %q", gen.lastStack)
	}
	if s.Source() != SourceGenerator {
		t.Fatalf("expected generator source, got %q", s.Source())
	}
	if got := len(s.Questions()); got != 3 {
		t.Fatalf("expected 3 questions, got %d", got)
	}
}

func TestStartFallsBackOnGeneratorFailure(t *testing.T) {
	tests := []struct {
		name string
		gen  *stubGenerator
	}{
		{name: "error", gen: &stubGenerator{err: errors.New("unavailable")}},
		{name: "empty", gen: &stubGenerator{raw: questions.FromLines(nil)}},
		{name: "malformed", gen: &stubGenerator{raw: questions.FromText("Sorry, I cannot help with that.")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, observed := observer.New(zapcore.WarnLevel)
			s := New(Deps{
				Generator: tt.gen,
				Fallback:  questions.NewFallback(nil, rand.New(rand.NewPCG(3, 4))),
				Logger:    zap.New(core),
			})

			if err := s.Start(context.Background(), validProfile("Python")); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if s.Source() != SourceFallback {
				t.Fatalf("expected fallback source, got %q", s.Source())
			}
			if tt.gen.calls != 1 {
				t.Fatalf("expected a single generator call, got %d", tt.gen.calls)
			}
			if observed.Len() == 0 {
				t.Fatalf("expected a warning to be logged")
			}
		})
	}
}

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Profile)
		kind   ValidationKind
		fields []string
	}{
		{
			name:   "missing fields",
			mutate: func(p *Profile) { p.FullName = "  "; p.Location = "" },
			kind:   MissingFields,
			fields: []string{"full_name", "location"},
		},
		{
			name:   "invalid email",
			mutate: func(p *Profile) { p.Email = "not-an-email" },
			kind:   InvalidEmail,
			fields: []string{"email"},
		},
		{
			name:   "invalid phone",
			mutate: func(p *Profile) { p.Phone = "call me maybe" },
			kind:   InvalidPhone,
			fields: []string{"phone"},
		},
		{
			name:   "missing wins over invalid email",
			mutate: func(p *Profile) { p.Email = "nope"; p.TechStack = "" },
			kind:   MissingFields,
			fields: []string{"tech_stack"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{raw: questions.FromText(twoTechOutput)}
			s := newTestSession(gen, nil)

			profile := validProfile("Go")
			tt.mutate(&profile)

			err := s.Start(context.Background(), profile)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Kind != tt.kind {
				t.Fatalf("expected kind %d, got %d", tt.kind, verr.Kind)
			}
			if len(verr.Fields) != len(tt.fields) {
				t.Fatalf("expected fields %v, got %v", tt.fields, verr.Fields)
			}
			for i := range tt.fields {
				if verr.Fields[i] != tt.fields[i] {
					t.Fatalf("expected fields %v, got %v", tt.fields, verr.Fields)
				}
			}

			if s.Phase() != NotStarted {
				t.Fatalf("expected not started, got %s", s.Phase())
			}
			if len(s.Questions()) != 0 || !s.Profile().IsZero() {
				t.Fatalf("expected state to be untouched")
			}
			if gen.calls != 0 {
				t.Fatalf("expected no generator calls, got %d", gen.calls)
			}
		})
	}
}

func TestStartNoQuestions(t *testing.T) {
	s := newTestSession(&stubGenerator{}, nil)

	profile := validProfile(" , ; ")
	err := s.Start(context.Background(), profile)
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
	if s.Phase() != NotStarted {
		t.Fatalf("expected not started, got %s", s.Phase())
	}
}

func TestStartTwice(t *testing.T) {
	s := startedSession(t, nil)

	if err := s.Start(context.Background(), validProfile("Go")); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
}

func TestAnsweringAllQuestionsSavesRecord(t *testing.T) {
	sink := &recordingSink{}
	s := startedSession(t, sink)

	answers := []string{"lightweight threads", "", "speeds up lookups"}
	for i, answer := range answers {
		if s.Phase() != InProgress {
			t.Fatalf("expected in progress before answer %d", i)
		}
		if err := s.SubmitAnswer(context.Background(), answer); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if s.Phase() != Finished {
		t.Fatalf("expected finished, got %s", s.Phase())
	}

	if len(sink.records) != 1 {
		t.Fatalf("expected 1 saved record, got %d", len(sink.records))
	}

	saved := sink.records[0]
	if saved.profile.FullName != "Ada Lovelace" {
		t.Fatalf("unexpected profile: %+v", saved.profile)
	}
	if saved.answers.Len() != 3 {
		t.Fatalf("expected 3 answers, got %d", saved.answers.Len())
	}

	techs := saved.answers.Technologies()
	if len(techs) != 2 || techs[0] != "Go" || techs[1] != "SQL" {
		t.Fatalf("unexpected technologies: %v", techs)
	}

	goAnswers := saved.answers.Get("Go")
	if goAnswers[1].QuestionNumber != 2 || goAnswers[1].Answer != "" || goAnswers[1].Question != "What is a channel?" {
		t.Fatalf("unexpected go answer: %+v", goAnswers[1])
	}

	answered, total := s.Progress()
	if answered != 3 || total != 3 {
		t.Fatalf("unexpected progress %d/%d", answered, total)
	}

	if err := s.SubmitAnswer(context.Background(), "late"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress after finish, got %v", err)
	}
}

func TestExitKeywordFinishesWithoutRecording(t *testing.T) {
	for _, keyword := range []string{"quit", "  QUIT \n", "Exit", "end"} {
		t.Run(keyword, func(t *testing.T) {
			sink := &recordingSink{}
			s := startedSession(t, sink)

			if err := s.SubmitAnswer(context.Background(), "goroutines are cheap"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := s.SubmitAnswer(context.Background(), keyword); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if s.Phase() != Finished {
				t.Fatalf("expected finished, got %s", s.Phase())
			}
			if got := s.Answers().Len(); got != 1 {
				t.Fatalf("expected only the first answer, got %d", got)
			}
			if len(sink.records) != 0 {
				t.Fatalf("expected no saved records, got %d", len(sink.records))
			}
		})
	}
}

func TestSkipCurrent(t *testing.T) {
	sink := &recordingSink{}
	s := startedSession(t, sink)

	for i := 0; i < 3; i++ {
		if err := s.SkipCurrent(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if s.Phase() != Finished {
		t.Fatalf("expected finished, got %s", s.Phase())
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected record saved on exhaustion, got %d", len(sink.records))
	}
	for _, tech := range sink.records[0].answers.Technologies() {
		for _, answer := range sink.records[0].answers.Get(tech) {
			if answer.Answer != "" {
				t.Fatalf("expected blank answer, got %q", answer.Answer)
			}
		}
	}
}

func TestSkipDoesNotTreatAnswerAsKeyword(t *testing.T) {
	s := startedSession(t, nil)

	if err := s.SkipCurrent(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Phase() != InProgress {
		t.Fatalf("expected in progress, got %s", s.Phase())
	}
	if s.Answers().Len() != 1 {
		t.Fatalf("expected skipped answer to be recorded")
	}
}

func TestEndNow(t *testing.T) {
	sink := &recordingSink{}
	s := startedSession(t, sink)

	if err := s.SubmitAnswer(context.Background(), "answer"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.EndNow(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Phase() != Finished {
		t.Fatalf("expected finished, got %s", s.Phase())
	}
	if len(sink.records) != 0 {
		t.Fatalf("expected nothing saved")
	}
	if err := s.EndNow(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
}

func TestRestartFromFinished(t *testing.T) {
	s := startedSession(t, nil)
	if err := s.EndNow(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Restart()

	if s.Phase() != NotStarted {
		t.Fatalf("expected not started, got %s", s.Phase())
	}
	if !s.Profile().IsZero() {
		t.Fatalf("expected empty profile, got %+v", s.Profile())
	}
	if len(s.Questions()) != 0 {
		t.Fatalf("expected empty question list")
	}
	if s.Answers().Len() != 0 || len(s.Answers().Technologies()) != 0 {
		t.Fatalf("expected empty answers")
	}
	if s.Source() != SourceNone {
		t.Fatalf("expected source reset, got %q", s.Source())
	}

	if err := s.Start(context.Background(), validProfile("Go")); err != nil {
		t.Fatalf("expected restart to allow a new screening: %v", err)
	}
}

func TestCurrentQuestion(t *testing.T) {
	s := newTestSession(nil, nil)
	if _, _, err := s.CurrentQuestion(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}

	s = startedSession(t, nil)

	expectFirst := []bool{true, false, true}
	for i, want := range expectFirst {
		q, first, err := s.CurrentQuestion()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Number != i+1 {
			t.Fatalf("expected question %d, got %d", i+1, q.Number)
		}
		if first != want {
			t.Fatalf("question %d: expected first=%v, got %v", q.Number, want, first)
		}
		if err := s.SubmitAnswer(context.Background(), "answer"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
}

func TestSinkFailureStillFinishes(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	s := startedSession(t, sink)

	var err error
	for s.Phase() == InProgress {
		err = s.SubmitAnswer(context.Background(), "answer")
	}

	if err == nil {
		t.Fatalf("expected sink error to be returned")
	}
	if s.Phase() != Finished {
		t.Fatalf("expected finished, got %s", s.Phase())
	}
}

func TestOperationsBeforeStart(t *testing.T) {
	s := newTestSession(nil, nil)

	if err := s.SubmitAnswer(context.Background(), "x"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
	if err := s.SkipCurrent(context.Background()); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
	if err := s.EndNow(); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
}
