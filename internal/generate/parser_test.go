package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuestions(t *testing.T) {
	t.Run("Well Formed Block", func(t *testing.T) {
		got := ParseQuestions("Question 1: Q?\nAnswer 1: A.")
		require.Len(t, got, 1)
		assert.Equal(t, Question{Question: "Q?", Answer: "A."}, got[0])
	})

	t.Run("Missing Answer Dropped", func(t *testing.T) {
		assert.Empty(t, ParseQuestions("Question 1: Q?"))
	})

	t.Run("Missing Question Dropped", func(t *testing.T) {
		assert.Empty(t, ParseQuestions("Answer 1: orphaned."))
	})

	t.Run("Multiple Records", func(t *testing.T) {
		input := "Question 1: First?\nAnswer 1: One.\nQuestion 2: Second?\nAnswer 2: Two."
		got := ParseQuestions(input)
		require.Len(t, got, 2)
		assert.Equal(t, "First?", got[0].Question)
		assert.Equal(t, "Two.", got[1].Answer)
	})

	t.Run("Incomplete Record Flushed By Next Question", func(t *testing.T) {
		input := "Question 1: No answer here\nQuestion 2: Complete?\nAnswer 2: Yes."
		got := ParseQuestions(input)
		require.Len(t, got, 1)
		assert.Equal(t, "Complete?", got[0].Question)
	})

	t.Run("Case Insensitive Keywords", func(t *testing.T) {
		got := ParseQuestions("QUESTION 1: Q?\nanswer 1: A.")
		require.Len(t, got, 1)
	})

	t.Run("Surrounding Noise Ignored", func(t *testing.T) {
		input := "Here is your quiz:\n\nQuestion 1: Q?\nAnswer 1: A.\n\nHope that helps!"
		got := ParseQuestions(input)
		require.Len(t, got, 1)
		assert.Equal(t, "Q?", got[0].Question)
	})

	t.Run("Keyword Without Colon Yields Empty Field", func(t *testing.T) {
		assert.Empty(t, ParseQuestions("Question one\nAnswer one"))
	})

	t.Run("Empty Input", func(t *testing.T) {
		assert.Empty(t, ParseQuestions(""))
	})
}

func TestParseMCQs(t *testing.T) {
	wellFormed := "Question 1: What color is grass?\n" +
		"A) Blue\n" +
		"B) Green\n" +
		"C) Red\n" +
		"D) Yellow\n" +
		"Answer 1: B) Green"

	t.Run("Well Formed Block", func(t *testing.T) {
		got := ParseMCQs(wellFormed)
		require.Len(t, got, 1)
		assert.Equal(t, "What color is grass?", got[0].Question)
		assert.Equal(t, []string{"A) Blue", "B) Green", "C) Red", "D) Yellow"}, got[0].Options)
		assert.Equal(t, "B) Green", got[0].Answer)
	})

	t.Run("Missing Options Dropped", func(t *testing.T) {
		assert.Empty(t, ParseMCQs("Question 1: Q?\nAnswer 1: A."))
	})

	t.Run("Missing Answer Dropped", func(t *testing.T) {
		assert.Empty(t, ParseMCQs("Question 1: Q?\nA) one\nB) two"))
	})

	t.Run("Partial Options Survive", func(t *testing.T) {
		got := ParseMCQs("Question 1: Q?\nA) only option\nAnswer 1: A) only option")
		require.Len(t, got, 1)
		assert.Len(t, got[0].Options, 1)
	})

	t.Run("Second Record Complete", func(t *testing.T) {
		input := "Question 1: Broken\nA) x\n" + wellFormed
		got := ParseMCQs(input)
		require.Len(t, got, 1)
		assert.Equal(t, "What color is grass?", got[0].Question)
	})
}
