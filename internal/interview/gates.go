package interview

import "time"

// The gate predicates are pure and safe to call any number of times within a
// single orchestration pass.

// TimeExpired reports whether the wall-clock budget is spent.
func TimeExpired(elapsed time.Duration) bool {
	return elapsed >= MaxInterviewTime
}

// QuestionsExhausted reports whether the question budget is spent.
func QuestionsExhausted(questionsAsked int) bool {
	return questionsAsked >= MaxQuestions
}

// FollowupExhausted reports whether the per-topic follow-up budget is spent.
func FollowupExhausted(counts map[string]int, topic string) bool {
	return counts[topic] >= MaxFollowupsPerTopic
}
