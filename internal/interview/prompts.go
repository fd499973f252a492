package interview

import (
	_ "embed"
	"fmt"
	"strings"
)

// The prompt builders are pure functions from session fields to a
// system/user pair. Templates live in prompts/ and use {{TOKEN}} markers.

//go:embed prompts/strategy.md
var strategyTemplate string

//go:embed prompts/intro.md
var introTemplate string

//go:embed prompts/topic.md
var topicTemplate string

//go:embed prompts/followup.md
var followupTemplate string

//go:embed prompts/sufficiency.md
var sufficiencyTemplate string

// Prompt is one system/user pair ready for a generator call.
type Prompt struct {
	System string
	User   string
}

func strategyPrompt(resumeText, jobDescriptionText string) Prompt {
	user := fmt.Sprintf(`Resume:
%s

Job Description:
%s

Based on the above, provide:
1. Key matching qualifications
2. Areas to explore in depth
3. 3-5 specific topics for interview questions`, resumeText, jobDescriptionText)

	return Prompt{System: strategyTemplate, User: user}
}

func introPrompt() Prompt {
	return Prompt{
		System: introTemplate,
		User:   "Please generate a welcoming introductory interview question.",
	}
}

func topicPrompt(strategy string, covered []string, current string, remaining []string, context string) Prompt {
	if strings.TrimSpace(strategy) == "" {
		strategy = "General screening interview"
	}

	system := strings.ReplaceAll(topicTemplate, "{{STRATEGY}}", strategy)
	system = strings.ReplaceAll(system, "{{COVERED_TOPICS}}", joinTopics(covered, "None yet"))
	system = strings.ReplaceAll(system, "{{CURRENT_TOPIC}}", current)
	system = strings.ReplaceAll(system, "{{REMAINING_TOPICS}}", joinTopics(remaining, "None (revisiting covered topics)"))

	user := fmt.Sprintf(`Based on the conversation so far, generate the next interview question focusing on: %s

Previous conversation:
%s`, current, context)

	return Prompt{System: system, User: user}
}

func followupPrompt(topic string, index int, topicContext string) Prompt {
	system := strings.ReplaceAll(followupTemplate, "{{CURRENT_TOPIC}}", topic)

	user := fmt.Sprintf(`Conversation on THIS topic so far (Follow-up #%d of max %d):
%s

Generate a follow-up question based on the conversation above.`, index, MaxFollowupsPerTopic, topicContext)

	return Prompt{System: system, User: user}
}

func sufficiencyPrompt(question, answer string) Prompt {
	user := fmt.Sprintf(`Question: %s

Candidate's Answer: %s

Should we ask a follow-up question? (yes/no)`, question, answer)

	return Prompt{System: sufficiencyTemplate, User: user}
}

func joinTopics(topics []string, placeholder string) string {
	if len(topics) == 0 {
		return placeholder
	}
	return strings.Join(topics, ", ")
}

// conclusionMessage picks the closing text for the given reason. This is a
// deterministic template selection, never a model call.
func conclusionMessage(reason ConclusionReason, questionsAsked int) string {
	switch reason {
	case ReasonTimeLimit:
		return fmt.Sprintf("Thank you for your time! We've reached the 30-minute mark for this screening interview. We covered %d areas, and I appreciate your detailed responses. We'll be in touch soon regarding next steps.", questionsAsked)
	case ReasonMaxQuestions:
		return fmt.Sprintf("Thank you so much for your thoughtful answers! We've covered %d important topics today. I have all the information I need for this screening round. We'll review your responses and get back to you soon about next steps.", questionsAsked)
	default:
		return "Thank you for taking the time to interview with us today. We appreciate your interest in the position and will be in touch regarding next steps."
	}
}
