package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mindgrove/mindgrove-backend/internal/domain"
)

// KeywordPromptInput carries everything the keyword expansion prompt needs.
// TopicPath runs root-first and includes the topic itself.
type KeywordPromptInput struct {
	TopicName         string
	TopicPath         []string
	Siblings          []string
	Children          []string
	NodeCount         int
	Automatic         bool
	SystemInstruction string
	DocumentChunks    []domain.DocumentMatch
}

const maxChunkChars = 500

// BuildKeywordPrompt renders the instruction block and the user input block
// for a keyword expansion call. The caller passes the instruction block as
// the system prompt and sends both, joined by a blank line, as the prompt.
func BuildKeywordPrompt(in KeywordPromptInput) (instructions string, input string) {
	var systemSection string
	if in.SystemInstruction != "" {
		systemSection = fmt.Sprintf("<system-instruction>\n%s\n</system-instruction>", in.SystemInstruction)
	}

	var docSection string
	if len(in.DocumentChunks) > 0 {
		lines := make([]string, 0, len(in.DocumentChunks))
		for i, chunk := range in.DocumentChunks {
			text := chunk.Content
			if len(text) > maxChunkChars {
				text = text[:maxChunkChars] + "..."
			}
			lines = append(lines, fmt.Sprintf("Document %d (%s):\n%q", i+1, chunk.Filename, text))
		}
		docSection = fmt.Sprintf(
			"<document-context>\nThe following are relevant document excerpts from the user's knowledge base related to %q:\n\n%s\n\nUse this context to generate more informed and specific keywords that complement the existing knowledge.\n</document-context>",
			in.TopicName, strings.Join(lines, "\n"))
	}

	countClause := "the desired 'nodeCount'"
	if in.Automatic {
		countClause = "you should determine the optimal number of keywords (maximum 15)"
	}

	contextHint := ""
	if len(in.DocumentChunks) > 0 {
		contextHint = "Leverage the provided document context to generate keywords that build upon or complement the existing knowledge."
	}

	automaticSection := ""
	if in.Automatic {
		automaticSection = `<automatic-count>
    Since this is automatic mode, determine the optimal number of keywords based on:
    * Topic complexity and breadth
    * Depth in the learning hierarchy
    * Existing siblings count
    * Available document context richness
    * Generate between 3-15 keywords as appropriate, prioritizing quality over quantity
  </automatic-count>`
	}

	instructions = fmt.Sprintf(`<persona>
You are an expert in curriculum design and knowledge architecture. Your task is to generate keywords for a knowledge map to help a user learn a topic systematically.
You will be given a 'topic', its hierarchical 'topicPath', existing 'children' (if any), a list of 'existingSiblings' to avoid, %s, and relevant document context from the user's knowledge base.
</persona>
%s
%s
<task-description>
  Your generated keywords MUST follow these rules:
  <hierarchical-specificity>
    The specificity of your keywords must adapt to the depth of the 'topicPath'.
    * Shallow Path (1-2 levels deep): Generate broader, foundational sub-topics.
    * Deep Path (3+ levels deep): Generate more specific, niche concepts, applications, or tools.
  </hierarchical-specificity>
  <content-rich-mix>
    Provide a mix of core concepts, practical applications, and emerging trends.
    %s
  </content-rich-mix>
  <avoid-redundancy>
    Do not repeat the 'topic' itself, any keywords from the 'existingSiblings' list, or any existing 'children'.
  </avoid-redundancy>
  <children-awareness>
    If the topic already has children, consider the gaps or complementary areas that haven't been covered yet.
  </children-awareness>
  %s
</task-description>
`, countClause, systemSection, docSection, contextHint, automaticSection)

	countLine := fmt.Sprintf("- Node Count: %d", in.NodeCount)
	if in.Automatic {
		countLine = "- Mode: Automatic (generate an optimal number of keywords, maximum 15, based on the topic complexity, depth, and available context)"
	}

	contextInfo := "- Available Context: No document chunks found for this topic"
	if len(in.DocumentChunks) > 0 {
		contextInfo = fmt.Sprintf("- Available Context: %d relevant document chunks found", len(in.DocumentChunks))
	}

	childrenLine := ""
	if len(in.Children) > 0 {
		childrenLine = fmt.Sprintf("- Children: [%s]\n", quoteJoin(in.Children))
	}

	input = fmt.Sprintf("- Topic: %q\n- Topic Path: [%s]\n%s- Existing Siblings: [%s]\n%s\n%s",
		in.TopicName,
		quoteJoin(in.TopicPath),
		childrenLine,
		quoteJoin(in.Siblings),
		countLine,
		contextInfo)

	return instructions, input
}

// InsightPromptInput carries the assembled context for an insight call.
type InsightPromptInput struct {
	SystemInstruction string
	TopicPath         []string
	Documents         []domain.DocumentMatch
	WebResults        []domain.SearchResult
	Now               time.Time
}

const defaultInsightInstruction = `<system-instruction>
You are an AI assistant providing comprehensive insights, analysis, and real world examples.
When given a search query, provide detailed, informative explanations.
</system-instruction>`

// BuildInsightPrompt renders the full instruction block for an insight
// generation call. Empty sections collapse to blank lines.
func BuildInsightPrompt(in InsightPromptInput) string {
	systemSection := defaultInsightInstruction
	if in.SystemInstruction != "" {
		systemSection = fmt.Sprintf("<system-instruction>\n%s\n</system-instruction>", in.SystemInstruction)
	}

	pathSection := ""
	if len(in.TopicPath) > 0 {
		pathSection = fmt.Sprintf("<topic-path>\n%s\n</topic-path>", strings.Join(in.TopicPath, " > "))
	}

	docSection := ""
	if len(in.Documents) > 0 {
		lines := make([]string, 0, len(in.Documents))
		for i, doc := range in.Documents {
			relevance := relevancePercent(doc.Score)
			lines = append(lines, fmt.Sprintf("Document %d: %s - %s\nDescription: %s\nRelevance Score: %d%%\nContent: %s\n---",
				i+1, doc.Filename, doc.Title, doc.Description, relevance, doc.Content))
		}
		docSection = fmt.Sprintf("<user-documents>\n%s\n</user-documents>", strings.Join(lines, "\n"))
	}

	webSection := ""
	if len(in.WebResults) > 0 {
		entries := make([]map[string]string, 0, len(in.WebResults))
		for _, r := range in.WebResults {
			entries = append(entries, map[string]string{
				"title":     r.Title,
				"link":      r.URL,
				"knowledge": r.Content,
			})
		}
		if pretty, err := json.MarshalIndent(entries, "", "  "); err == nil {
			webSection = fmt.Sprintf("<web-search-results>\n%s\n</web-search-results>", pretty)
		}
	}

	return fmt.Sprintf(`<instructions>
%s
%s
%s
%s
<format>
    Using Markdown format when appropriate.
    ALWAYS reference and prioritize information from user documents when available and relevant.
    Also incorporate relevant information from web search results.
    If user documents contain relevant information, mention them specifically in your response.
    Current time: %s
</format>
</instructions>`,
		systemSection,
		pathSection,
		docSection,
		webSection,
		in.Now.UTC().Format("2006-01-02 15:04:05 UTC"))
}

// relevancePercent converts a vector distance into the 0-100 score shown in
// prompt text. Distance 0 is a perfect match.
func relevancePercent(distance float64) int {
	p := (1 - distance) * 100
	if p < 0 {
		return int(p - 0.5)
	}
	return int(p + 0.5)
}

func quoteJoin(items []string) string {
	if len(items) == 0 {
		return ""
	}
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return strings.Join(quoted, ", ")
}
