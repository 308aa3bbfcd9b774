package assistant

import (
	"fmt"
	"strings"

	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/llm"
)

const (
	defaultRole        = "collect resources, make study plans, and provide explanations"
	defaultDescription = "You are a study partner who assists users in finding resources, answering questions, and providing explanations on various topics."
)

var defaultInstructions = []string{
	"Ground answers in the document references provided with each message and cite them as [n].",
	"If the references do not cover the question, say so before drawing on general knowledge.",
	"Break down complex topics into digestible chunks and give step-by-step explanations with practical examples.",
	"Suggest learning resources such as documentation, tutorials, articles, papers, videos and courses that match the learner's level.",
	"Only give links that appear in the web results sent with a message. Never make up a URL; without web results, name resources without links.",
	"Suggest hands-on projects and exercises, from beginner to advanced.",
	"When asked for a study plan, lay it out as daily tasks with clear milestones.",
	"Share tips on effective learning techniques and time management when they help.",
	"Format replies in Markdown.",
}

const quizSystemPrompt = `You write multiple-choice quizzes that test understanding of a study document.

Rules:
- Base every question on the document excerpts provided. Do not invent facts.
- Each question has exactly 4 options and exactly one correct option.
- "correct" is the zero-based index of the correct option.
- Distractors should be plausible and reflect common misunderstandings.
- Keep questions self-contained and unambiguous.
- Do not repeat questions.`

// chatSystemPrompt renders the persona for chat requests.
func chatSystemPrompt(cfg Config, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s. Your role: %s.\n", cfg.Name, cfg.Role)
	b.WriteString(cfg.Description)
	if topic != "" {
		fmt.Fprintf(&b, "\nThe learner is studying %q from an uploaded document.", topic)
	}
	b.WriteString("\n\nInstructions:\n")
	for _, in := range cfg.Instructions {
		fmt.Fprintf(&b, "- %s\n", in)
	}
	return strings.TrimRight(b.String(), "\n")
}

// chatUserMessage wraps the learner's message with numbered references and
// any web results.
func chatUserMessage(message string, matches []knowledge.Match, web *llm.SearchResult) string {
	if len(matches) == 0 && web == nil {
		return message
	}
	var b strings.Builder
	if len(matches) > 0 {
		b.WriteString("References from the document:\n")
		writeReferences(&b, matches)
		b.WriteString("\n")
	}
	if web != nil {
		writeWebResults(&b, web)
		b.WriteString("\n")
	}
	b.WriteString("Question:\n")
	b.WriteString(message)
	return b.String()
}

func quizUserMessage(subject string, count int, matches []knowledge.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d multiple-choice quiz questions about %s.\n", count, subject)
	b.WriteString("The questions should be based on the information in the document excerpts below.\n")
	b.WriteString("Make sure each question has 4 options and marks the correct answer.\n\n")
	b.WriteString("Document excerpts:\n")
	if len(matches) == 0 {
		b.WriteString("None\n")
	}
	writeReferences(&b, matches)
	return strings.TrimRight(b.String(), "\n")
}

func writeWebResults(b *strings.Builder, web *llm.SearchResult) {
	b.WriteString("Web results:\n")
	if web.Summary != "" {
		b.WriteString(web.Summary)
		b.WriteString("\n")
	}
	for _, src := range web.Sources {
		fmt.Fprintf(b, "- %s: %s\n", src.Title, src.URL)
	}
}

func writeReferences(b *strings.Builder, matches []knowledge.Match) {
	for i, m := range matches {
		fmt.Fprintf(b, "[%d] (page %d) %s\n", i+1, m.Page, strings.TrimSpace(m.Text))
	}
}
