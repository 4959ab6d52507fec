package assembler

import (
	"fmt"
	"strings"

	"construction-docs-be/pkg/llm"
)

// TruncationMarker is appended to any document excerpt that was cut short.
const TruncationMarker = "[...content truncated...]"

// DocumentExcerpt is the assembler's view of a stored document. Callers
// pass documents in upload order (oldest first).
type DocumentExcerpt struct {
	Filename string
	DocType  string
	Text     string
}

// BuildQuestionMessages assembles the Collaborator payload for a chat
// question: system prompt, document context, conversation window, then the
// question itself. When the combined size exceeds maxContextChars, document
// content gives way first, oldest documents before newest. The question and
// the history window are never truncated.
func BuildQuestionMessages(systemPrompt string, docs []DocumentExcerpt, history []llm.Message, question string, maxContextChars int) []llm.Message {
	reserved := len(systemPrompt) + len(question)
	for _, msg := range history {
		reserved += len(msg.Content)
	}

	docBudget := maxContextChars - reserved
	if docBudget < 0 {
		docBudget = 0
	}

	messages := make([]llm.Message, 0, len(history)+2)

	system := systemPrompt
	if block := buildDocumentBlock(docs, docBudget); block != "" {
		system += "\n\n**Available Project Documents** (use these as context if relevant):\n" + block
	}
	messages = append(messages, llm.Message{Role: "system", Content: system})

	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: "user", Content: question})
	return messages
}

// buildDocumentBlock renders documents within budget. Allocation walks
// newest to oldest so that when space runs out it is the oldest uploads
// that lose content; rendering stays in upload order.
func buildDocumentBlock(docs []DocumentExcerpt, budget int) string {
	if len(docs) == 0 || budget == 0 {
		return ""
	}

	allocations := make([]int, len(docs))
	remaining := budget
	for i := len(docs) - 1; i >= 0; i-- {
		take := len(docs[i].Text)
		if take > remaining {
			take = remaining
		}
		allocations[i] = take
		remaining -= take
	}

	var sb strings.Builder
	for i, doc := range docs {
		sb.WriteString(renderDocument(i+1, doc, allocations[i]))
	}
	return sb.String()
}

func renderDocument(ordinal int, doc DocumentExcerpt, limit int) string {
	excerpt := Truncate(doc.Text, limit)
	return fmt.Sprintf("\n---\nDOCUMENT %d: %s\nType: %s\n\nContent:\n%s\n---\n", ordinal, doc.Filename, doc.DocType, excerpt)
}

// Truncate cuts text to limit characters, appending the marker when
// anything was dropped.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return TruncationMarker
	}
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "\n" + TruncationMarker
}

// HistoryWindow keeps the last n messages of a conversation.
func HistoryWindow(history []llm.Message, n int) []llm.Message {
	if n <= 0 || len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

// BuildAnalysisContext renders every document with a flat per-document
// character limit, used for all-at-once conflict analysis.
func BuildAnalysisContext(docs []DocumentExcerpt, perDocChars int) string {
	var sb strings.Builder
	for i, doc := range docs {
		sb.WriteString(renderDocument(i+1, doc, perDocChars))
	}
	return sb.String()
}

// BuildPairContext renders exactly two documents for pairwise comparison.
func BuildPairContext(a, b DocumentExcerpt, perDocChars int) string {
	return fmt.Sprintf("DOCUMENT 1: %s (%s)\n%s\n\nDOCUMENT 2: %s (%s)\n%s",
		a.Filename, a.DocType, Truncate(a.Text, perDocChars),
		b.Filename, b.DocType, Truncate(b.Text, perDocChars))
}

// Pairs enumerates every unordered document pair by index.
func Pairs(n int) [][2]int {
	var pairs [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}
