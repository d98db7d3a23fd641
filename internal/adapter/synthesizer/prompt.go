package synthesizer

import (
	"strings"

	"docqa/internal/domain"
)

const (
	promptPreamble = "Use the following pieces of context to answer the question at the end. " +
		"If you don't know the answer, just say that you don't know, don't try to make up an answer."
	questionLabel = "Question: "
	answerLabel   = "Helpful Answer:"
)

// BuildPrompt lays out the retrieved chunks the way a question-answering
// prompt would: instructions, passages separated by blank lines, then the
// question.
func BuildPrompt(chunks []domain.Chunk, question string) string {
	var b strings.Builder
	b.WriteString(promptPreamble)
	b.WriteString("\n\n")
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(c.Text)
	}
	b.WriteString("\n\n")
	b.WriteString(questionLabel)
	b.WriteString(question)
	b.WriteString("\n")
	b.WriteString(answerLabel)
	return b.String()
}

// stripPrompt returns the passages of a prompt laid out by BuildPrompt. Only
// the exact preamble block and the final question block are dropped, so
// passages that themselves start with "Question: " are kept.
func stripPrompt(prompt string) string {
	body, ok := strings.CutPrefix(prompt, promptPreamble+"\n\n")
	if !ok || !strings.HasSuffix(body, "\n"+answerLabel) {
		return prompt
	}

	if i := strings.LastIndex(body, "\n\n"+questionLabel); i >= 0 {
		return body[:i]
	}
	return prompt
}
