package intent

import "github.com/trip-planner/internal/domain"

// rule - словарь синонимов одного намерения.
// weak-слова засчитываются только при наличии якорной сущности.
type rule struct {
	intent domain.Intent
	strong []string
	weak   []string
	// noun-правила (VIEW_PLAN) стартуют с меньшей базы, чтобы глагол в той же фразе побеждал
	base   float64
	anchor func(e *domain.Entities) bool
	bonus  func(e *domain.Entities) bool
}

const (
	verbBase = 0.55
	nounBase = 0.42
)

func hasSchedule(e *domain.Entities) bool {
	return e.Day != nil || e.Time != "" || e.TimeSlot != "" || e.OrderInDay != nil
}

var rules = []rule{
	{
		intent: domain.IntentAdd,
		strong: []string{"thêm", "bổ sung", "cho thêm", "add", "include", "put in", "plan a visit to"},
		weak:   []string{"muốn đến", "muốn đi", "ghé", "visit", "go to"},
		base:   verbBase,
		anchor: func(e *domain.Entities) bool { return e.Location != "" },
		bonus:  func(e *domain.Entities) bool { return e.Location != "" },
	},
	{
		intent: domain.IntentRemove,
		strong: []string{"xóa", "xoá", "loại bỏ", "bỏ", "hủy", "huỷ", "gỡ", "remove", "delete", "drop", "cancel", "get rid of"},
		base:   verbBase,
		bonus:  func(e *domain.Entities) bool { return e.Target != "" || e.OrderInDay != nil },
	},
	{
		intent: domain.IntentModifyTime,
		strong: []string{"đổi giờ", "đổi thời gian", "dời", "lùi", "đẩy lên", "reschedule", "change time", "change the time"},
		weak:   []string{"chuyển", "đổi", "move", "change", "shift"},
		base:   verbBase,
		anchor: hasSchedule,
		bonus:  hasSchedule,
	},
	{
		intent: domain.IntentModifyDay,
		strong: []string{"đổi ngày", "chuyển ngày", "hoán đổi ngày", "đổi lịch ngày", "swap day", "move day", "swap days"},
		weak:   []string{"chuyển", "hoán đổi", "đổi", "swap", "move"},
		base:   verbBase,
		anchor: func(e *domain.Entities) bool { return e.Day != nil && e.TargetDay != nil },
		bonus:  func(e *domain.Entities) bool { return e.TargetDay != nil },
	},
	{
		intent: domain.IntentModifyLocation,
		strong: []string{"thay thế", "thay", "đổi địa điểm", "đổi chỗ", "replace", "change location", "change place", "swap out"},
		base:   verbBase,
		bonus:  func(e *domain.Entities) bool { return e.Target != "" && e.Location != "" },
	},
	{
		intent: domain.IntentChangeBudget,
		strong: []string{"ngân sách", "kinh phí", "chi phí tối đa", "budget", "spending limit", "spend limit"},
		base:   verbBase,
		bonus:  func(e *domain.Entities) bool { return e.Budget != nil },
	},
	{
		intent: domain.IntentViewPlan,
		strong: []string{"xem kế hoạch", "xem lịch trình", "lịch trình", "kế hoạch", "show plan", "view plan", "show my plan", "itinerary", "my plan"},
		base:   nounBase,
	},
	{
		intent: domain.IntentSuggest,
		strong: []string{"gợi ý", "đề xuất", "nên đi đâu", "recommend", "recommendation", "suggest", "suggestion", "what should i visit"},
		base:   verbBase,
	},
	{
		intent: domain.IntentSearchDestination,
		strong: []string{"tìm kiếm", "tìm", "tra cứu", "search for", "search", "find", "look for", "look up"},
		base:   verbBase,
		bonus:  func(e *domain.Entities) bool { return e.Location != "" },
	},
	{
		intent: domain.IntentGetWeather,
		strong: []string{"thời tiết", "nhiệt độ", "dự báo", "có mưa", "weather", "forecast", "temperature", "rain"},
		base:   verbBase,
	},
	{
		intent: domain.IntentGetRoute,
		strong: []string{"đường đi", "chỉ đường", "bao xa", "khoảng cách", "route", "directions", "how to get", "how far"},
		base:   verbBase,
	},
}

// слова, после которых заканчивается название места
var locationStops = []string{
	" vào ngày", " vào buổi", " vào lúc", " vào", " ngày", " lúc", " buổi", " sáng", " chiều", " trưa", " tối",
	" cho ngày", " trong ngày", " nhé", " giúp", " với giá",
	" on day", " on the", " on", " at", " for day", " in the", " day", " morning", " afternoon", " evening", " tonight", " please",
	" to my plan", " to the plan", " into", " cost", " for",
	",", ".", "?", "!", ";",
}

// targetStops - после названия пункта идёт новое время или новое место
var targetStops = append([]string{" to", " sang", " đến", " qua", " từ", " from", " bằng", " with"}, locationStops...)

// replacementConnectors - после них идёт новое место; "thành" не входит, оно часто часть названия
var replacementConnectors = []string{" to ", " sang ", " bằng ", " with ", " by "}

var leadingFillers = []string{"of ", "địa điểm ", "điểm ", "chỗ ", "quán ăn ", "the ", "a ", "an ", "to "}

var pronouns = map[string]bool{
	"it": true, "this": true, "that": true, "this one": true, "that one": true, "this place": true, "that place": true,
	"nó": true, "chỗ này": true, "chỗ đó": true, "cái này": true, "cái đó": true, "đó": true, "này": true,
}

var scheduleFillers = map[string]bool{
	"buổi": true, "lúc": true, "vào": true, "ngày": true, "giờ": true, "day": true, "at": true, "on": true, "in": true, "the": true,
}

var slotWords = map[domain.TimeSlot][]string{
	domain.SlotMorning:   {"buổi sáng", "sáng", "morning", "breakfast"},
	domain.SlotAfternoon: {"buổi chiều", "buổi trưa", "chiều", "trưa", "afternoon", "noon", "lunch"},
	domain.SlotEvening:   {"buổi tối", "tối", "đêm", "evening", "night", "tonight", "dinner"},
}

var budgetWords = []string{"ngân sách", "kinh phí", "budget", "chi phí", "spend", "tiền"}
