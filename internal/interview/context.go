package interview

import "strings"

// Prompts must never contain a blank context section, so the builders fall
// back to literal placeholder sentences.
const (
	emptyHistoryPlaceholder = "This is the first question."
	emptyTopicPlaceholder   = "First question on this topic"
)

// ConversationContext renders the whole dialogue as interviewer/candidate
// lines in chronological order. Turns with other roles are skipped.
func ConversationContext(transcript []Turn) string {
	rendered := renderTurns(transcript, func(Turn) bool { return true })
	if rendered == "" {
		return emptyHistoryPlaceholder
	}
	return rendered
}

// TopicContext renders only the turns tagged with the given topic. Turns from
// other topics are excluded even when chronologically adjacent.
func TopicContext(transcript []Turn, topic string) string {
	rendered := renderTurns(transcript, func(turn Turn) bool { return turn.Topic == topic })
	if rendered == "" {
		return emptyTopicPlaceholder
	}
	return rendered
}

func renderTurns(transcript []Turn, include func(Turn) bool) string {
	lines := make([]string, 0, len(transcript))
	for _, turn := range transcript {
		if !include(turn) {
			continue
		}

		switch turn.Role {
		case RoleInterviewer:
			lines = append(lines, "Interviewer: "+turn.Text)
		case RoleCandidate:
			lines = append(lines, "Candidate: "+turn.Text)
		}
	}

	return strings.Join(lines, "\n")
}
