package generate

import (
	"fmt"
	"strings"

	"gurucool/api/internal/session"
	"gurucool/api/internal/text"
)

// answerPrompt serializes the conversation so far, then the retrieved chunk
// text, then the new question with an instruction to flag missing context
// instead of fabricating silently.
func answerPrompt(query string, chunks []text.Chunk, turns []session.Turn) string {
	var context strings.Builder
	for i, turn := range turns {
		if i > 0 {
			context.WriteString(" ")
		}
		fmt.Fprintf(&context, "Q: %s\nA: %s", turn.Query, turn.Answer)
	}
	for _, c := range chunks {
		context.WriteString(" ")
		context.WriteString(c.Text)
	}

	return fmt.Sprintf(
		"Answer the following question based on the provided context. "+
			"If the answer is not explicitly available in the context, you may still provide a general response, "+
			"but specify that the information could not be found in the provided documents.\n\n"+
			"Question: %s\nContext: %s\nAnswer:", query, context.String())
}

func questionPrompt(kind Kind, content string, number int) string {
	if kind == KindLong {
		return fmt.Sprintf(
			"Using the content below, generate exactly one long-answer question with its corresponding answer. "+
				"Make sure to provide both the question and the answer, strictly following this format:\n\n"+
				"Question %d: <Insert long-answer question>\n"+
				"Answer %d: <Insert sample long answer>\n\n"+
				"Do not include any meta commentary, explanations, or extra information. Only provide the question and the answer.\n\n"+
				"Content:\n%s", number, number, content)
	}
	return fmt.Sprintf(
		"Using the content below, generate exactly one quiz question with an answer. "+
			"Do NOT include any explanations, summaries, or extra information. "+
			"The output must strictly follow this format:\n\n"+
			"Question %d: <Insert question>\n"+
			"Answer %d: <Insert answer>\n\n"+
			"Make sure that there is nothing in the output other than the question and answer.\n\n"+
			"Content:\n%s", number, number, content)
}

func mcqPrompt(content string, number int) string {
	return fmt.Sprintf(
		"Using the content below, generate exactly one multiple-choice quiz question with 4 options. "+
			"One of the options must be the correct answer. The output must strictly follow this format:\n\n"+
			"Question %d: <Insert question>\n"+
			"A) <Insert option 1>\n"+
			"B) <Insert option 2>\n"+
			"C) <Insert option 3>\n"+
			"D) <Insert option 4>\n"+
			"Answer %d: <Insert correct answer>\n\n"+
			"Content:\n%s", number, number, content)
}
