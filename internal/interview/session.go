package interview

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Fixed budgets forming part of the observable contract.
const (
	MaxInterviewTime     = 30 * time.Minute
	MaxQuestions         = 16
	MaxFollowupsPerTopic = 2
	MaxTopics            = 5
)

const (
	introTopic    = "introduction"
	fallbackTopic = "general background"
)

var (
	ErrAlreadyStarted = errors.New("interview already started")
	ErrNotStarted     = errors.New("interview not started")
	ErrConcluded      = errors.New("interview already concluded")
	ErrEmptyDocument  = errors.New("document text is empty")
	ErrEmptyAnswer    = errors.New("answer text is empty")
)

// Role identifies the author of a transcript turn. It is fixed at turn
// creation and never inferred afterwards.
type Role string

const (
	RoleInterviewer  Role = "interviewer"
	RoleCandidate    Role = "candidate"
	RoleStrategyNote Role = "strategy-note"
)

// ConclusionReason enumerates why an interview ended.
type ConclusionReason string

const (
	ReasonTimeLimit    ConclusionReason = "time-limit"
	ReasonMaxQuestions ConclusionReason = "max-questions"
	ReasonCompleted    ConclusionReason = "completed"
)

// Turn is one appended unit of dialogue. Topic is empty for turns that are
// not tied to a topic, such as the strategy note and the conclusion.
type Turn struct {
	Role  Role
	Text  string
	Topic string
	At    time.Time
}

// Session holds the full state of one screening interview. The engine never
// mutates the session it is given: it works on a clone and returns it, so the
// owner can commit the result atomically or discard it on error.
type Session struct {
	ID                 string
	ResumeText         string
	JobDescriptionText string

	Strategy string
	Topics   []string

	QuestionsAsked  int
	CurrentQuestion string
	CurrentTopic    string
	FollowupCounts  map[string]int
	NeedsFollowup   bool

	StartedAt time.Time

	Concluded        bool
	ConclusionReason ConclusionReason

	Transcript []Turn
}

// NewSession creates a session from already-extracted document text.
func NewSession(id, resumeText, jobDescriptionText string) (*Session, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, fmt.Errorf("resume: %w", ErrEmptyDocument)
	}
	if strings.TrimSpace(jobDescriptionText) == "" {
		return nil, fmt.Errorf("job description: %w", ErrEmptyDocument)
	}

	return &Session{
		ID:                 id,
		ResumeText:         resumeText,
		JobDescriptionText: jobDescriptionText,
		FollowupCounts:     make(map[string]int),
	}, nil
}

// Started reports whether the interview has begun.
func (s *Session) Started() bool {
	return !s.StartedAt.IsZero()
}

// Elapsed returns the interview duration at the given instant. It is always
// recomputed from the start instant, never stored.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if !s.Started() {
		return 0
	}

	elapsed := now.Sub(s.StartedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// Remaining returns the time budget left at the given instant.
func (s *Session) Remaining(now time.Time) time.Duration {
	remaining := MaxInterviewTime - s.Elapsed(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Clone returns a deep copy safe to mutate without affecting the original.
func (s *Session) Clone() *Session {
	clone := *s

	clone.Topics = append([]string(nil), s.Topics...)
	clone.Transcript = append([]Turn(nil), s.Transcript...)

	clone.FollowupCounts = make(map[string]int, len(s.FollowupCounts))
	for topic, count := range s.FollowupCounts {
		clone.FollowupCounts[topic] = count
	}

	return &clone
}

func (s *Session) append(role Role, text, topic string, at time.Time) {
	s.Transcript = append(s.Transcript, Turn{Role: role, Text: text, Topic: topic, At: at})
}
