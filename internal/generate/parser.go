package generate

import "strings"

// The parsers below implement the line-oriented output grammar the prompts
// demand. A line beginning (case-insensitively) with "question" starts a new
// record and flushes the previous one if it was complete; a line beginning
// with "answer" closes the answer field; MCQ option lines "A)".."D)"
// accumulate onto the current record. Records missing required fields when
// the next question or end of input arrives are dropped silently: partial
// model non-compliance shrinks the batch instead of failing it.

// ParseQuestions extracts {question, answer} records in input order.
func ParseQuestions(response string) []Question {
	var out []Question
	var current Question

	flush := func() {
		if current.Question != "" && current.Answer != "" {
			out = append(out, current)
		}
		current = Question{}
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "question"):
			flush()
			current.Question = afterColon(line)
		case strings.HasPrefix(lower, "answer"):
			current.Answer = afterColon(line)
		}
	}
	flush()
	return out
}

// ParseMCQs extracts multiple-choice records; a record must carry a
// question, at least one option line, and an answer to survive.
func ParseMCQs(response string) []MCQ {
	var out []MCQ
	var current MCQ

	flush := func() {
		if current.Question != "" && len(current.Options) > 0 && current.Answer != "" {
			out = append(out, current)
		}
		current = MCQ{}
	}

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "question"):
			flush()
			current.Question = afterColon(line)
		case strings.HasPrefix(lower, "a)"),
			strings.HasPrefix(lower, "b)"),
			strings.HasPrefix(lower, "c)"),
			strings.HasPrefix(lower, "d)"):
			current.Options = append(current.Options, line)
		case strings.HasPrefix(lower, "answer"):
			current.Answer = afterColon(line)
		}
	}
	flush()
	return out
}

func afterColon(line string) string {
	_, rest, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}
