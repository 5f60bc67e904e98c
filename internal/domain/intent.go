package domain

// Intent - тип намерения пользователя
type Intent string

const (
	IntentAdd               Intent = "ADD"
	IntentRemove            Intent = "REMOVE"
	IntentModifyTime        Intent = "MODIFY_TIME"
	IntentModifyDay         Intent = "MODIFY_DAY"
	IntentModifyLocation    Intent = "MODIFY_LOCATION"
	IntentChangeBudget      Intent = "CHANGE_BUDGET"
	IntentViewPlan          Intent = "VIEW_PLAN"
	IntentSuggest           Intent = "SUGGEST"
	IntentSearchDestination Intent = "SEARCH_DESTINATION"
	IntentGetWeather        Intent = "GET_WEATHER"
	IntentGetRoute          Intent = "GET_ROUTE"
	IntentUnknown           Intent = "UNKNOWN"
)

// Имена параметров, которые могут отсутствовать
const (
	ParamDestination = "destination"
	ParamVisitDate   = "visit_date"
	ParamItem        = "item_id"
	ParamBudget      = "budget"
	ParamDay         = "day"
	ParamTargetDay   = "target_day"
	ParamQuery       = "query"
	ParamTime        = "time"
	ParamIntent      = "intent"
)

// Entities - извлечённые из текста сущности
type Entities struct {
	Day        *int     `json:"day,omitempty"`
	TargetDay  *int     `json:"target_day,omitempty"`
	Time       string   `json:"time,omitempty"`
	TimeSlot   TimeSlot `json:"time_slot,omitempty"`
	Budget     *float64 `json:"budget,omitempty"`
	Currency   string   `json:"currency,omitempty"`
	Location   string   `json:"location,omitempty"`
	Target     string   `json:"target,omitempty"`
	OrderInDay *int     `json:"order_in_day,omitempty"`
}

// ParsedIntent - результат разбора фразы
type ParsedIntent struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
	Keyword    string   `json:"keyword,omitempty"`
	Text       string   `json:"text"`
}

// HasEntities - есть ли хоть одна сущность (используется для продолжения незавершённого намерения)
func (e *Entities) HasEntities() bool {
	return e.Day != nil || e.TargetDay != nil || e.Time != "" || e.TimeSlot != "" ||
		e.Budget != nil || e.Location != "" || e.Target != "" || e.OrderInDay != nil
}
