package interview

import (
	"strings"
	"testing"
)

func TestExtractTopicsFromNumberedList(t *testing.T) {
	strategy := `The candidate looks strong overall.

Key topics:
1. Distributed systems experience
2. Go services in production
- Team collaboration style
* Incident response practice
short line here`

	topics := ExtractTopics(strategy)

	expected := []string{
		"Distributed systems experience",
		"Go services in production",
		"Team collaboration style",
		"Incident response practice",
	}

	if len(topics) != len(expected) {
		t.Fatalf("expected %d topics, got %v", len(expected), topics)
	}

	for i, topic := range expected {
		if topics[i] != topic {
			t.Fatalf("expected topic %d to be %q, got %q", i, topic, topics[i])
		}
	}
}

func TestExtractTopicsCapsAtFive(t *testing.T) {
	var lines []string
	for i := 0; i < 8; i++ {
		lines = append(lines, "- A perfectly valid interview topic")
	}

	topics := ExtractTopics(strings.Join(lines, "\n"))
	if len(topics) != MaxTopics {
		t.Fatalf("expected %d topics, got %d", MaxTopics, len(topics))
	}
}

func TestExtractTopicsSkipsShortLines(t *testing.T) {
	topics := ExtractTopics("1. too short\n2. also tiny\n3. Problem decomposition skills")

	if len(topics) != 1 || topics[0] != "Problem decomposition skills" {
		t.Fatalf("expected only the long topic, got %v", topics)
	}
}

func TestExtractTopicsFallsBackToDefaults(t *testing.T) {
	topics := ExtractTopics("A free-form narrative with no enumerated lines at all.")

	expected := []string{
		"Technical skills",
		"Experience and background",
		"Problem-solving approach",
	}

	if len(topics) != len(expected) {
		t.Fatalf("expected %d default topics, got %v", len(expected), topics)
	}

	for i, topic := range expected {
		if topics[i] != topic {
			t.Fatalf("expected default topic %d to be %q, got %q", i, topic, topics[i])
		}
	}
}

func TestExtractTopicsEmptyInput(t *testing.T) {
	topics := ExtractTopics("")
	if len(topics) != 3 {
		t.Fatalf("expected default topics on empty input, got %v", topics)
	}
}
