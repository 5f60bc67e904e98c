package domain

// Имена агентов
const (
	AgentDistribution  = "distribution"
	AgentOpeningHours  = "opening_hours"
	AgentBudget        = "budget"
	AgentDailySchedule = "daily_schedule"
	AgentValidator     = "validator"
	AgentPlanner       = "planner"
)

// Warning - предупреждение агента
type Warning struct {
	Agent   string `json:"agent"`
	Message string `json:"message"`
}

// Modification - изменение поля пункта плана (старое -> новое)
type Modification struct {
	Agent         string `json:"agent,omitempty"`
	ItemID        string `json:"item_id,omitempty"`
	DestinationID string `json:"destination_id,omitempty"`
	Field         string `json:"field"`
	OldValue      string `json:"old_value,omitempty"`
	NewValue      string `json:"new_value,omitempty"`
}

// AgentResult - результат process() суб-агента. Агенты не меняют сохранённый план,
// а возвращают предложенные изменения.
type AgentResult struct {
	Success       bool           `json:"success"`
	Message       string         `json:"message"`
	Warnings      []Warning      `json:"warnings,omitempty"`
	Modifications []Modification `json:"modifications,omitempty"`
	Suggestions   []string       `json:"suggestions,omitempty"`
}

// MergeWarnings объединяет предупреждения, дедуплицируя по (agent, message); побеждает первое.
func MergeWarnings(groups ...[]Warning) []Warning {
	seen := make(map[Warning]bool)
	out := make([]Warning, 0)
	for _, g := range groups {
		for _, w := range g {
			if seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
