package domain

// Ключи состояния диалога комнаты
const (
	StateActivePlanID         = "active_plan_id"
	StateCurrentIntent        = "current_intent"
	StatePendingAction        = "pending_action"
	StateLastDestination      = "last_destination"
	StateLastDate             = "last_date"
	StateLastTimeSlot         = "last_time_slot"
	StateAwaitingConfirmation = "awaiting_confirmation"
	StateMissingParams        = "missing_params"
	StateUserPreferences      = "user_preferences"
)

// ConversationState - состояние диалога комнаты, хранится вне процесса
// и перечитывается на каждую реплику.
type ConversationState struct {
	ActivePlanID         string            `json:"active_plan_id,omitempty"`
	CurrentIntent        Intent            `json:"current_intent,omitempty"`
	PendingAction        string            `json:"pending_action,omitempty"`
	LastDestination      string            `json:"last_destination,omitempty"`
	LastDate             string            `json:"last_date,omitempty"`
	LastTimeSlot         TimeSlot          `json:"last_time_slot,omitempty"`
	AwaitingConfirmation bool              `json:"awaiting_confirmation,omitempty"`
	MissingParams        []string          `json:"missing_params,omitempty"`
	UserPreferences      map[string]string `json:"user_preferences,omitempty"`
}

// ClearPending сбрасывает незавершённое намерение
func (s *ConversationState) ClearPending() {
	s.CurrentIntent = ""
	s.PendingAction = ""
	s.MissingParams = nil
	s.AwaitingConfirmation = false
}

func (s *ConversationState) HasPending() bool {
	return s.CurrentIntent != "" && s.CurrentIntent != IntentUnknown
}

// ChatMessage - сообщение для LLM генератора ответов
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem = "system"
	RoleUser   = "user"
)
