package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talentscout/internal/ai"
	"github.com/spigell/talentscout/internal/ai/gemini"
	logutil "github.com/spigell/talentscout/internal/logger"
	"github.com/spigell/talentscout/internal/prompts"
	"github.com/spigell/talentscout/internal/questions"
	"github.com/spigell/talentscout/internal/screening"
	"github.com/spigell/talentscout/internal/secrets"
	"github.com/spigell/talentscout/internal/storage"
	"github.com/spigell/talentscout/internal/utils"
)

const (
	PromptSubmit   = "Submit answer"
	PromptSkip     = "Skip (blank)"
	PromptEnd      = "End screening"
	PromptRestart  = "Restart / Clear all"
	PromptRetry    = "Try again"
	PromptExit     = "Exit"
	noAnswerMarker = "*No answer provided*"
)

var (
	errExit           = errors.New("exit requested")
	errConfigRequired = errors.New("config is required")
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive screening",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("auto-submit", "y", false, "submit typed answers without asking for the next step")
	runCmd.Flags().Bool("offline", false, "do not call Gemini, use the built-in question bank only")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logutil.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal(errConfigRequired.Error())
	}

	logger.Info("starting talentscout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	bankFile := ""
	if config.Fallback != nil {
		bankFile = config.Fallback.BankFile
	}
	bank, err := questions.LoadBank(bankFile)
	if err != nil {
		logger.Fatal("loading question bank", zap.Error(err))
	}

	offline, _ := cmd.Flags().GetBool("offline")
	generator, err := newQuestionGenerator(ctx, config.AI, offline, logger)
	if err != nil {
		logger.Fatal("preparing question generator", zap.Error(err))
	}

	sink, err := storage.Open(ctx, config.Storage, logger)
	if err != nil {
		logger.Fatal("opening storage", zap.Error(err))
	}
	defer sink.Close()

	session := screening.New(screening.Deps{
		Generator: generator,
		Fallback:  questions.NewFallback(bank, nil),
		Sink:      storage.ForSession(sink),
		Logger:    logger,
	})

	autoSubmit, _ := cmd.Flags().GetBool("auto-submit")
	s := &screener{
		session:    session,
		term:       promptTerminal{},
		out:        cmd.OutOrStdout(),
		logger:     logger,
		autoSubmit: autoSubmit,
		online:     generator != nil,
	}

	if err := s.Run(ctx); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "screening closed"))
}

// newQuestionGenerator returns nil when Gemini is disabled or has no API key.
// The session then relies on the built-in question bank.
func newQuestionGenerator(ctx context.Context, cfg *AIConfig, offline bool, logger *zap.Logger) (ai.QuestionGenerator, error) {
	if offline || cfg == nil || !cfg.Enabled {
		logger.Info("offline mode: using simulated questions")
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	gcfg := cfg.Gemini
	if gcfg == nil {
		gcfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: gcfg.APIKey,
		File:  gcfg.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if errors.Is(err, secrets.ErrNotConfigured) {
		logger.Warn("offline mode: using simulated questions",
			zap.String("reason", "gemini api key is not configured"),
			zap.String("hint", "set GEMINI_API_KEY or ai.gemini.api-key-file"),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	genLogger := logutil.WithCommonFields(logger, "gemini", gcfg.Model).With(
		zap.String("api_key", utils.Mask(apiKey, 4)),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, gemini.Options{
		Model:           gcfg.Model,
		Temperature:     gcfg.Temperature,
		MaxOutputTokens: gcfg.MaxOutputTokens,
	}, genLogger)
	if err != nil {
		return nil, err
	}

	genLogger.Info("gemini question generator ready")

	return gemini.NewQuestionWriter(generator, gcfg.MaxLogLength, genLogger), nil
}

// screener walks one operator through screenings until they exit.
type screener struct {
	session    *screening.Session
	term       terminal
	out        io.Writer
	logger     *zap.Logger
	autoSubmit bool
	online     bool

	draft screening.Profile
}

func (s *screener) Run(ctx context.Context) error {
	s.printf("%s\n", prompts.Greeting)
	if s.online {
		s.printf("Questions are generated by Gemini.\n\n")
	} else {
		s.printf("Offline mode: LLM not available, using simulated questions.\n\n")
	}

	for {
		var err error
		switch s.session.Phase() {
		case screening.NotStarted:
			err = s.start(ctx)
		case screening.InProgress:
			err = s.ask(ctx)
		case screening.Finished:
			err = s.finish()
		}
		if err != nil {
			return err
		}
	}
}

func (s *screener) start(ctx context.Context) error {
	profile, err := s.collectProfile()
	if err != nil {
		return err
	}
	s.draft = profile

	s.printf("\nGenerating questions...\n")
	err = s.session.Start(ctx, profile)

	var verr *screening.ValidationError
	switch {
	case err == nil:
		_, total := s.session.Progress()
		s.printf("Generated %d questions.\n", total)
		return nil
	case errors.As(err, &verr):
		s.printf("%s\n\n", verr.Error())
		return nil
	case errors.Is(err, screening.ErrNoQuestions):
		s.printf("No valid questions generated. %s\n", prompts.Fallback)
		choice, err := s.term.Choose("What next?", []string{PromptRetry, PromptExit})
		if err != nil {
			return err
		}
		if choice == PromptExit {
			return errExit
		}
		return nil
	default:
		return err
	}
}

func (s *screener) collectProfile() (screening.Profile, error) {
	fields := []struct {
		label    string
		value    *string
		validate func(string) error
	}{
		{"Full name", &s.draft.FullName, required("full name")},
		{"Email", &s.draft.Email, validEmail},
		{"Phone number", &s.draft.Phone, validPhone},
		{"Years of experience", &s.draft.YearsExperience, required("years of experience")},
		{"Desired position(s)", &s.draft.DesiredPositions, required("desired position")},
		{"Current location (City, Country)", &s.draft.Location, required("location")},
		{"Tech stack (comma separated, e.g. Python, Django, MySQL, Docker)", &s.draft.TechStack, required("tech stack")},
	}

	for _, f := range fields {
		value, err := s.term.Ask(f.label, *f.value, f.validate)
		if err != nil {
			return screening.Profile{}, err
		}
		*f.value = value
	}

	return s.draft, nil
}

func validEmail(value string) error {
	if !screening.IsValidEmail(strings.TrimSpace(value)) {
		return errors.New("please enter a valid email address")
	}
	return nil
}

func validPhone(value string) error {
	if !screening.IsValidPhone(strings.TrimSpace(value)) {
		return errors.New("digits, +, - and spaces only")
	}
	return nil
}

func (s *screener) ask(ctx context.Context) error {
	q, first, err := s.session.CurrentQuestion()
	if err != nil {
		return err
	}

	answered, total := s.session.Progress()
	if first {
		s.printf("\nTechnology: %s\nQuestions:\n", q.Technology)
	}
	s.printf("[%d%%] %d. %s\n", answered*100/total, q.Number, q.Text)

	answer, err := s.term.Ask("Your answer (exit, quit or end to finish)", "", nil)
	if err != nil {
		return err
	}

	action := PromptSubmit
	if !s.autoSubmit && !screening.IsExitKeyword(answer) {
		action, err = s.term.Choose("Next step", []string{PromptSubmit, PromptSkip, PromptEnd})
		if err != nil {
			return err
		}
	}

	switch action {
	case PromptSubmit:
		err = s.session.SubmitAnswer(ctx, answer)
	case PromptSkip:
		err = s.session.SkipCurrent(ctx)
	case PromptEnd:
		err = s.session.EndNow()
	default:
		return fmt.Errorf("invalid action: %s", action)
	}

	if err != nil {
		// The screening is over even if the record could not be stored.
		s.logger.Error("saving screening record", zap.Error(err))
		s.printf("Your answers could not be saved: %v\n", err)
	}
	return nil
}

func (s *screener) finish() error {
	profile := s.session.Profile()

	s.printf("\nCandidate Info\n")
	s.printf("Name: %s\n", profile.FullName)
	s.printf("Email: %s\n", profile.Email)
	s.printf("Phone: %s\n", profile.Phone)
	s.printf("Experience: %s years\n", profile.YearsExperience)
	s.printf("Position: %s\n", profile.DesiredPositions)
	s.printf("Location: %s\n", profile.Location)

	s.printf("\nScreening Completed\n%s\n", prompts.End(profile.FullName))
	printTranscript(s.out, s.session.Answers())

	choice, err := s.term.Choose("What next?", []string{PromptRestart, PromptExit})
	if err != nil {
		return err
	}
	if choice == PromptExit {
		return errExit
	}

	s.session.Restart()
	s.draft = screening.Profile{}
	return nil
}

func (s *screener) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func printTranscript(w io.Writer, answers *screening.AnswersByTechnology) {
	for _, tech := range answers.Technologies() {
		fmt.Fprintf(w, "\nTechnology: %s\n", tech)
		for _, a := range answers.Get(tech) {
			text := a.Answer
			if strings.TrimSpace(text) == "" {
				text = noAnswerMarker
			}
			fmt.Fprintf(w, "%d. %s\n> %s\n", a.QuestionNumber, a.Question, text)
		}
	}
}
