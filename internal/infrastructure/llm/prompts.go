package llm

import (
	"fmt"
	"strings"

	"NewsTranslatorBot/internal/domain"
)

const translatorSystemPrompt = `You are a professional news translator and editor.

You MUST return a JSON object that matches this schema exactly:
{
    "title_en": string,
    "content_en": string
}

Rules:
- Translate German news articles into clear, neutral English
- Prefer short, clear sentences
- Preserve factual meaning and tone
- Do not add opinions or commentary
- Return JSON only`

const classifierSystemPrompt = `You are a news classification assistant.

You MUST return a JSON object that matches this schema exactly:
{
    "summary_en": string,
    "topic": string,
    "sentiment": string,
    "urgency": string
}

Rules:
- summary_en is a succinct English summary of 2-3 sentences
- Topic must be ONE of:
    %s
- Sentiment must be ONE of:
    %s
- Urgency must be ONE of:
    %s
- Base your decision ONLY on the article content
- Return JSON only`

const scorerSystemPrompt = `You rank news articles for a single reader.

You receive the reader's reactions to earlier articles and one candidate article.
Reactions are "interested", "not_interested" or "read_later"; repeated reactions
carry more weight.

You MUST return a JSON object that matches this schema exactly:
{
    "score": number
}

Rules:
- score is between 0 and 10, higher means more relevant to this reader
- Return JSON only`

func classifierPrompt() string {
	return fmt.Sprintf(classifierSystemPrompt,
		strings.Join(domain.Topics, ", "),
		strings.Join(domain.Sentiments, ", "),
		strings.Join(domain.Urgencies, ", "),
	)
}

func articlePrompt(title, body string, maxChars int) string {
	return fmt.Sprintf("German title:\n%s\n\nGerman article:\n%s", title, truncate(body, maxChars))
}

func scorePrompt(article domain.Article, history []domain.HistoryEntry) string {
	var b strings.Builder
	b.WriteString("Reader history:\n")
	if len(history) == 0 {
		b.WriteString("(none)\n")
	}
	for _, h := range history {
		fmt.Fprintf(&b, "- [%s] %s: %s\n", h.Topic, h.Title, h.Reaction)
	}
	fmt.Fprintf(&b, "\nCandidate article:\n[%s] %s\nPublished: %s\n%s",
		article.Topic, article.DisplayTitle(), article.PublishedAt.Format("2006-01-02"), article.Summary)
	return b.String()
}

// truncate cuts at a rune boundary.
func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
