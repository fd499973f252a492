package interview

import (
	"strings"
	"unicode/utf8"
)

// minTopicRunes filters out enumeration lines too short to be real topics,
// such as bare section headers or markers.
const minTopicRunes = 10

var enumerationPrefixes = []string{"1.", "2.", "3.", "4.", "5.", "-", "*"}

var defaultTopics = []string{
	"Technical skills",
	"Experience and background",
	"Problem-solving approach",
}

// ExtractTopics parses the strategy narrative into an ordered topic list.
// Lines starting with a numbered or bulleted marker qualify when, stripped of
// the marker, more than minTopicRunes remain. At most MaxTopics are collected
// in document order. When nothing qualifies a fixed default list is returned,
// so the topic list is never empty after strategy analysis.
func ExtractTopics(strategy string) []string {
	var topics []string

	for _, line := range strings.Split(strategy, "\n") {
		line = strings.TrimSpace(line)
		if !enumerated(line) {
			continue
		}

		topic := strings.TrimSpace(strings.TrimLeft(line, "0123456789.-* \t"))
		if utf8.RuneCountInString(topic) > minTopicRunes && len(topics) < MaxTopics {
			topics = append(topics, topic)
		}
	}

	if len(topics) == 0 {
		return append([]string(nil), defaultTopics...)
	}

	return topics
}

func enumerated(line string) bool {
	for _, prefix := range enumerationPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
