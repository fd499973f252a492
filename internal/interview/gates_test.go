package interview

import (
	"testing"
	"time"
)

func TestTimeExpired(t *testing.T) {
	if TimeExpired(1799 * time.Second) {
		t.Fatal("1799s must not expire the time budget")
	}

	if !TimeExpired(1800 * time.Second) {
		t.Fatal("1800s must expire the time budget")
	}

	if !TimeExpired(1801 * time.Second) {
		t.Fatal("1801s must expire the time budget")
	}
}

func TestQuestionsExhausted(t *testing.T) {
	if QuestionsExhausted(15) {
		t.Fatal("15 questions must not exhaust the budget")
	}

	if !QuestionsExhausted(16) {
		t.Fatal("16 questions must exhaust the budget")
	}
}

func TestFollowupExhausted(t *testing.T) {
	counts := map[string]int{"Scaling": 2, "Culture": 1}

	if !FollowupExhausted(counts, "Scaling") {
		t.Fatal("two follow-ups must exhaust the topic budget")
	}

	if FollowupExhausted(counts, "Culture") {
		t.Fatal("one follow-up must not exhaust the topic budget")
	}

	if FollowupExhausted(counts, "never seen") {
		t.Fatal("missing topic defaults to zero follow-ups")
	}
}
