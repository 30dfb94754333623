package services

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
)

// GenerateSearchableText flattens a tool's content payload into the
// plain-text corpus fuzzy search runs over. Each tool type stores its
// content differently, so extraction is per type; unknown shapes fall
// back to the title alone.
func GenerateSearchableText(toolType domain.ToolType, title string, content datatypes.JSON) string {
	parts := []string{title}

	var payload map[string]any
	if len(content) > 0 {
		if err := json.Unmarshal(content, &payload); err != nil {
			payload = nil
		}
	}

	switch toolType {
	case domain.ToolMindmap:
		parts = append(parts, collectStrings(payload, "nodes", "label")...)
		parts = append(parts, collectStrings(payload, "nodes", "text")...)
	case domain.ToolQuiz:
		parts = append(parts, collectStrings(payload, "questions", "question")...)
		parts = append(parts, collectStrings(payload, "questions", "explanation")...)
	case domain.ToolFlashcard:
		parts = append(parts, collectStrings(payload, "cards", "front")...)
		parts = append(parts, collectStrings(payload, "cards", "back")...)
	case domain.ToolSummary:
		parts = append(parts, stringField(payload, "text"), stringField(payload, "summary"))
		parts = append(parts, collectPlainStrings(payload, "keyPoints")...)
	case domain.ToolTimeline:
		parts = append(parts, collectStrings(payload, "events", "title")...)
		parts = append(parts, collectStrings(payload, "events", "description")...)
	case domain.ToolFormula:
		parts = append(parts, stringField(payload, "formula"), stringField(payload, "explanation"))
	case domain.ToolDiagram, domain.ToolChart:
		parts = append(parts, collectStrings(payload, "elements", "label")...)
		parts = append(parts, stringField(payload, "description"))
	case domain.ToolHomework:
		parts = append(parts, stringField(payload, "question"), stringField(payload, "answer"))
	default:
		parts = append(parts, stringField(payload, "text"), stringField(payload, "description"))
	}

	seen := make(map[string]bool, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" || seen[strings.ToLower(p)] {
			continue
		}
		seen[strings.ToLower(p)] = true
		out = append(out, p)
	}
	return strings.Join(out, " ")
}

// GeneratePreview derives the short card preview shown in the library
// grid: the first meaningful content fragment, truncated at a rune
// boundary.
func GeneratePreview(toolType domain.ToolType, title string, content datatypes.JSON) string {
	const maxPreview = 160

	text := GenerateSearchableText(toolType, "", content)
	if text == "" {
		text = title
	}
	runes := []rune(text)
	if len(runes) <= maxPreview {
		return text
	}
	return strings.TrimSpace(string(runes[:maxPreview])) + "…"
}

func stringField(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}

// collectStrings pulls field out of every element of the listKey array.
func collectStrings(payload map[string]any, listKey, field string) []string {
	if payload == nil {
		return nil
	}
	list, _ := payload[listKey].([]any)
	var out []string
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := m[field].(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func collectPlainStrings(payload map[string]any, listKey string) []string {
	if payload == nil {
		return nil
	}
	list, _ := payload[listKey].([]any)
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
