package intent

import (
	"fmt"
	"strings"
)

// Examples are the suggestions offered when no rule matches.
var Examples = []string{
	"Show me all matches in the dataset",
	"Which team won the most matches?",
	"Who scored the most runs across all matches?",
	"What was the highest total score?",
	"Show matches played in Mumbai",
	"Show me Virat Kohli batting stats",
	"Which venue has the highest scoring matches?",
	"What's the average first innings score?",
	"Show me all centuries scored",
	"Who took the most wickets?",
}

// Help is the static fallback answer. It echoes the question as asked.
func Help(query string) string {
	bullets := make([]string, 0, len(Examples))
	for _, e := range Examples {
		bullets = append(bullets, "• "+e)
	}
	return fmt.Sprintf("I couldn't understand your query: \"%s\"\n\n"+
		"Here are some example queries you can try:\n\n%s\n\n"+
		"Please rephrase your question or try one of the examples above.",
		query, strings.Join(bullets, "\n"))
}
