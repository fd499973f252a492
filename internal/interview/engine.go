package interview

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/hh-interviewer/internal/ai"
	"github.com/spigell/hh-interviewer/internal/logger"
)

// Engine drives one orchestration pass per inbound turn. It holds no
// cross-turn state: every method clones the session it is given, mutates the
// clone and returns it, so a failed model call leaves the caller's session
// untouched.
type Engine struct {
	generator ai.Generator
	logger    *zap.Logger
	now       func() time.Time
}

// NewEngine creates an engine backed by the provided generator.
func NewEngine(generator ai.Generator, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		generator: generator,
		logger:    log,
		now:       time.Now,
	}
}

// Start runs the opening pass: document analysis, topic extraction and the
// introductory question. It errors if the interview has already been started.
func (e *Engine) Start(ctx context.Context, session *Session) (*Session, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}
	if session.Started() {
		return nil, ErrAlreadyStarted
	}

	s := session.Clone()
	s.StartedAt = e.now()

	prompt := strategyPrompt(s.ResumeText, s.JobDescriptionText)
	strategy, err := e.generator.GenerateContent(ctx, prompt.System, prompt.User)
	if err != nil {
		return nil, fmt.Errorf("analyze documents: %w", err)
	}

	s.Strategy = strategy
	s.Topics = ExtractTopics(strategy)
	s.append(RoleStrategyNote, strategy, "", e.now())

	e.logger.Info("interview strategy ready",
		logger.Session(s.ID),
		zap.Int("topics", len(s.Topics)),
	)

	if err := e.generateQuestion(ctx, s); err != nil {
		return nil, err
	}

	e.applyGates(s)

	return s, nil
}

// SubmitAnswer runs one answer-processing pass: it appends the candidate's
// answer, evaluates whether a follow-up is warranted, and either produces the
// next question or concludes the interview.
func (e *Engine) SubmitAnswer(ctx context.Context, session *Session, answer string) (*Session, error) {
	if session == nil {
		return nil, errors.New("session is required")
	}
	if !session.Started() {
		return nil, ErrNotStarted
	}
	if session.Concluded {
		return nil, ErrConcluded
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}

	s := session.Clone()
	s.append(RoleCandidate, answer, s.CurrentTopic, e.now())

	needsFollowup, err := e.evaluateAnswer(ctx, s, answer)
	if err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}
	s.NeedsFollowup = needsFollowup

	elapsed := s.Elapsed(e.now())
	switch {
	case TimeExpired(elapsed):
		e.conclude(s, ReasonTimeLimit)
		return s, nil
	case QuestionsExhausted(s.QuestionsAsked):
		e.conclude(s, ReasonMaxQuestions)
		return s, nil
	}

	if err := e.generateQuestion(ctx, s); err != nil {
		return nil, err
	}

	// Gate state can cross a threshold mid-pass: the question just generated
	// may have spent the last of the budget, in which case it is withheld and
	// the interview concludes instead.
	e.applyGates(s)

	return s, nil
}

// Status describes a session without touching it or calling the model.
type Status struct {
	Started        bool
	Concluded      bool
	QuestionsAsked int
	Elapsed        time.Duration
	Remaining      time.Duration
	Reason         ConclusionReason
}

// Status reports the read-only view of a session at the current instant.
func (e *Engine) Status(session *Session) Status {
	now := e.now()
	return Status{
		Started:        session.Started(),
		Concluded:      session.Concluded,
		QuestionsAsked: session.QuestionsAsked,
		Elapsed:        session.Elapsed(now),
		Remaining:      session.Remaining(now),
		Reason:         session.ConclusionReason,
	}
}

// evaluateAnswer asks the model whether the answer deserves a follow-up. Only
// an affirmative token counts; anything else means no follow-up, which fails
// safe toward shorter interviews.
func (e *Engine) evaluateAnswer(ctx context.Context, s *Session, answer string) (bool, error) {
	prompt := sufficiencyPrompt(s.CurrentQuestion, answer)
	response, err := e.generator.GenerateContent(ctx, prompt.System, prompt.User)
	if err != nil {
		return false, err
	}

	needsFollowup := strings.Contains(strings.ToLower(response), "yes")

	e.logger.Debug("answer evaluated",
		logger.Session(s.ID),
		zap.String("topic", s.CurrentTopic),
		zap.Bool("needs_followup", needsFollowup),
	)

	return needsFollowup, nil
}

// generateQuestion produces the next interviewer turn. Follow-ups on the
// current topic take priority while their budget lasts; otherwise the next
// topic is drawn by cyclic rotation over the topic list.
func (e *Engine) generateQuestion(ctx context.Context, s *Session) error {
	if s.NeedsFollowup && !FollowupExhausted(s.FollowupCounts, s.CurrentTopic) {
		return e.generateFollowup(ctx, s)
	}
	s.NeedsFollowup = false

	var (
		prompt Prompt
		topic  string
	)

	if s.QuestionsAsked == 0 {
		topic = introTopic
		prompt = introPrompt()
	} else {
		var covered, remaining []string
		topic = fallbackTopic
		if len(s.Topics) > 0 {
			idx := (s.QuestionsAsked - 1) % len(s.Topics)
			topic = s.Topics[idx]
			covered = s.Topics[:idx]
			remaining = s.Topics[idx+1:]
		}
		prompt = topicPrompt(s.Strategy, covered, topic, remaining, ConversationContext(s.Transcript))
	}

	question, err := e.generator.GenerateContent(ctx, prompt.System, prompt.User)
	if err != nil {
		return fmt.Errorf("generate question: %w", err)
	}

	e.askQuestion(s, question, topic)

	e.logger.Info("question generated",
		logger.Session(s.ID),
		zap.Int("number", s.QuestionsAsked),
		zap.String("topic", topic),
	)

	return nil
}

func (e *Engine) generateFollowup(ctx context.Context, s *Session) error {
	index := s.FollowupCounts[s.CurrentTopic] + 1
	prompt := followupPrompt(s.CurrentTopic, index, TopicContext(s.Transcript, s.CurrentTopic))

	question, err := e.generator.GenerateContent(ctx, prompt.System, prompt.User)
	if err != nil {
		return fmt.Errorf("generate follow-up question: %w", err)
	}

	s.FollowupCounts[s.CurrentTopic] = index
	s.NeedsFollowup = false
	e.askQuestion(s, question, s.CurrentTopic)

	e.logger.Info("follow-up generated",
		logger.Session(s.ID),
		zap.String("topic", s.CurrentTopic),
		zap.Int("followup_index", index),
	)

	return nil
}

func (e *Engine) askQuestion(s *Session, text, topic string) {
	text = strings.TrimSpace(text)
	s.CurrentQuestion = text
	s.CurrentTopic = topic
	s.QuestionsAsked++
	s.append(RoleInterviewer, text, topic, e.now())
}

// applyGates re-checks the budgets after question generation and converts the
// pass into a conclusion when either is spent.
func (e *Engine) applyGates(s *Session) {
	if s.Concluded {
		return
	}

	switch {
	case TimeExpired(s.Elapsed(e.now())):
		e.conclude(s, ReasonTimeLimit)
	case QuestionsExhausted(s.QuestionsAsked):
		e.conclude(s, ReasonMaxQuestions)
	}
}

func (e *Engine) conclude(s *Session, reason ConclusionReason) {
	if s.Concluded {
		return
	}

	message := conclusionMessage(reason, s.QuestionsAsked)
	s.Concluded = true
	s.ConclusionReason = reason
	s.CurrentQuestion = message
	s.NeedsFollowup = false
	s.append(RoleInterviewer, message, "", e.now())

	e.logger.Info("interview concluded",
		logger.Session(s.ID),
		zap.String("reason", string(reason)),
		zap.Int("questions_asked", s.QuestionsAsked),
	)
}
