package usecase

import (
	"fmt"
	"strings"

	"research-assistant/internal/domain"
)

const systemPromptTemplate = `You are an academic research assistant. Answer the question using ONLY the research paper excerpts provided in the context below.

Rules:
1. Base every statement on the provided context; do not invent facts.
2. Refer to excerpts by their source labels, e.g. [Source 1].
3. If the context does not cover the question, say so plainly.
4. Keep the answer focused and factual.

%s

Question: %s

Answer:`

// PromptBuilder assembles the generation prompt from retrieved context
// and recent conversation history.
type PromptBuilder interface {
	Build(question string, result *domain.RetrievalResult, history []domain.ConversationTurn) string
}

// ResearchPromptBuilder renders the standard research-assistant prompt.
// maxContextLength caps the formatted context block in characters.
type ResearchPromptBuilder struct {
	maxContextLength int
}

// NewResearchPromptBuilder creates a prompt builder with the given
// context budget.
func NewResearchPromptBuilder(maxContextLength int) *ResearchPromptBuilder {
	return &ResearchPromptBuilder{maxContextLength: maxContextLength}
}

// Build concatenates prior turns, the labeled context excerpts and the
// question into one prompt string.
func (b *ResearchPromptBuilder) Build(question string, result *domain.RetrievalResult, history []domain.ConversationTurn) string {
	context := FormatContext(result.Documents, result.Metadatas, b.maxContextLength)

	if len(history) > 0 {
		var sb strings.Builder
		sb.WriteString("Previous conversation:\n")
		// History arrives most-recent-first; replay it oldest-first.
		for i := len(history) - 1; i >= 0; i-- {
			sb.WriteString("Q: ")
			sb.WriteString(history[i].Question)
			sb.WriteString("\nA: ")
			sb.WriteString(history[i].Answer)
			sb.WriteString("\n")
		}
		sb.WriteString("\nCurrent context:\n")
		sb.WriteString(context)
		context = sb.String()
	}

	return fmt.Sprintf(systemPromptTemplate, context, question)
}

// FormatContext renders retrieved documents as labeled excerpts,
// truncated to maxLength characters overall (0 disables the cap).
func FormatContext(documents []string, metadatas []domain.PaperMetadata, maxLength int) string {
	blocks := make([]string, 0, len(documents))
	for i, doc := range documents {
		label := fmt.Sprintf("[Source %d]", i+1)
		if i < len(metadatas) && metadatas[i].Title != "" {
			label += " " + metadatas[i].Title
		}
		blocks = append(blocks, label+"\n"+doc)
	}
	context := strings.Join(blocks, "\n\n")
	if maxLength > 0 && len(context) > maxLength {
		context = context[:maxLength]
	}
	return context
}

// FormatSources turns metadata into user-facing citation strings.
func FormatSources(metadatas []domain.PaperMetadata) []string {
	sources := make([]string, 0, len(metadatas))
	for i, meta := range metadatas {
		title := meta.Title
		if title == "" {
			title = "Unknown title"
		}
		source := fmt.Sprintf("Source %d: %s", i+1, title)
		if meta.Authors != "" {
			source += fmt.Sprintf(" by %s", meta.Authors)
		}
		sources = append(sources, source)
	}
	return sources
}

var _ PromptBuilder = (*ResearchPromptBuilder)(nil)
