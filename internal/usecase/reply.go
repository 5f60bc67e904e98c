package usecase

import (
	"fmt"
	"strings"

	"github.com/trip-planner/internal/domain"
)

const maxReplySuggestions = 3

// FallbackReply - детерминированный ответ, когда LLM недоступна
func FallbackReply(base string, snap *domain.PlanSnapshot, warnings []domain.Warning, suggestions []string) string {
	var b strings.Builder
	if base != "" {
		b.WriteString(base)
	}
	if snap != nil {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		scheduled := 0
		days := map[string]bool{}
		for _, d := range snap.Destinations {
			if d.VisitDate != "" {
				scheduled++
				days[d.VisitDate] = true
			}
		}
		name := snap.Name
		if name == "" {
			name = "Your plan"
		}
		fmt.Fprintf(&b, "%s (%s, %s to %s): %d destinations scheduled over %d days.",
			name, snap.PlaceName, snap.StartDate, snap.EndDate, scheduled, len(days))
		if snap.BudgetLimit != nil {
			fmt.Fprintf(&b, " Budget %.0f.", *snap.BudgetLimit)
		}
	}
	if len(warnings) > 0 {
		b.WriteString("\nWarnings:")
		for _, w := range warnings {
			fmt.Fprintf(&b, "\n- [%s] %s", w.Agent, w.Message)
		}
	}
	if len(suggestions) > 0 {
		b.WriteString("\nSuggestions:")
		for i, s := range suggestions {
			if i == maxReplySuggestions {
				break
			}
			fmt.Fprintf(&b, "\n- %s", s)
		}
	}
	return b.String()
}

// replyPrompt собирает сообщения для LLM
func replyPrompt(utterance, base string, snap *domain.PlanSnapshot, warnings []domain.Warning, suggestions []string) []domain.ChatMessage {
	system := "You are a friendly eco-travel assistant. Answer in the user's language, in at most five sentences. " +
		"Mention the most important warnings and at most three suggestions. Never invent destinations."
	var body strings.Builder
	fmt.Fprintf(&body, "User said: %q\n", utterance)
	body.WriteString("Outcome: " + base + "\n")
	body.WriteString("Plan summary:\n" + FallbackReply("", snap, warnings, suggestions))
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: system},
		{Role: domain.RoleUser, Content: body.String()},
	}
}
