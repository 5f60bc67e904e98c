package intent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/intent"
)

func TestParser_Classify(t *testing.T) {
	p := intent.NewParser()

	tests := []struct {
		name   string
		text   string
		intent domain.Intent
	}{
		{"english add", "add Bến Thành Market", domain.IntentAdd},
		{"vietnamese add with plan noun", "thêm chợ Bến Thành vào kế hoạch", domain.IntentAdd},
		{"remove by order", "xóa mục 2", domain.IntentRemove},
		{"remove english", "remove the War Remnants Museum", domain.IntentRemove},
		{"move to another day", "move the museum to day 3", domain.IntentModifyTime},
		{"change slot", "đổi sang buổi tối", domain.IntentModifyTime},
		{"swap days", "chuyển ngày 1 sang ngày 3", domain.IntentModifyDay},
		{"replace place", "thay Bảo tàng bằng Chợ Lớn", domain.IntentModifyLocation},
		{"budget", "ngân sách 5 triệu", domain.IntentChangeBudget},
		{"view", "xem kế hoạch", domain.IntentViewPlan},
		{"view english", "show my itinerary", domain.IntentViewPlan},
		{"suggest", "gợi ý địa điểm cho ngày 2", domain.IntentSuggest},
		{"search", "tìm quán phở", domain.IntentSearchDestination},
		{"weather", "thời tiết ngày 2 thế nào", domain.IntentGetWeather},
		{"route", "chỉ đường đến Dinh Độc Lập", domain.IntentGetRoute},
		{"day only", "ngày 2", domain.IntentUnknown},
		{"noise", "ok cảm ơn", domain.IntentUnknown},
		{"empty", "   ", domain.IntentUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Parse(tt.text)
			assert.Equal(t, tt.intent, got.Intent)
			if got.Intent != domain.IntentUnknown {
				assert.GreaterOrEqual(t, got.Confidence, intent.MinConfidence)
				assert.LessOrEqual(t, got.Confidence, 1.0)
			} else {
				assert.Zero(t, got.Confidence)
			}
		})
	}
}

func TestParser_AddLocation(t *testing.T) {
	p := intent.NewParser()

	got := p.Parse("add Bến Thành Market")
	assert.Equal(t, "Bến Thành Market", got.Entities.Location)
	assert.Nil(t, got.Entities.Day)

	got = p.Parse("thêm chợ Bến Thành vào buổi sáng ngày 2")
	assert.Equal(t, domain.IntentAdd, got.Intent)
	assert.Equal(t, "chợ Bến Thành", got.Entities.Location)
	require.NotNil(t, got.Entities.Day)
	assert.Equal(t, 2, *got.Entities.Day)
	assert.Equal(t, domain.SlotMorning, got.Entities.TimeSlot)
}

func TestParser_FollowUpCarriesEntities(t *testing.T) {
	got := intent.NewParser().Parse("ngày 2")

	assert.Equal(t, domain.IntentUnknown, got.Intent)
	require.NotNil(t, got.Entities.Day)
	assert.Equal(t, 2, *got.Entities.Day)
	assert.True(t, got.Entities.HasEntities())
}

func TestParser_Time(t *testing.T) {
	p := intent.NewParser()

	tests := []struct {
		text string
		time string
		slot domain.TimeSlot
	}{
		{"dời sang 9h30", "09:30", domain.SlotMorning},
		{"reschedule to 14:00", "14:00", domain.SlotAfternoon},
		{"đổi giờ 19h", "19:00", domain.SlotEvening},
		{"dời sang 8 giờ", "08:00", domain.SlotMorning},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := p.Parse(tt.text)
			assert.Equal(t, domain.IntentModifyTime, got.Intent)
			assert.Equal(t, tt.time, got.Entities.Time)
			assert.Equal(t, tt.slot, got.Entities.TimeSlot)
		})
	}
}

func TestParser_Budget(t *testing.T) {
	p := intent.NewParser()

	tests := []struct {
		text     string
		amount   float64
		currency string
	}{
		{"ngân sách 5 triệu", 5_000_000, "VND"},
		{"budget 1.5tr", 1_500_000, "VND"},
		{"đổi ngân sách thành 500k", 500_000, "VND"},
		{"set budget to 200 usd", 200, "USD"},
		{"budget $350", 350, "USD"},
		{"ngân sách 3.000.000 đồng", 3_000_000, "VND"},
		{"ngân sách 2000000", 2_000_000, "VND"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := p.Parse(tt.text)
			assert.Equal(t, domain.IntentChangeBudget, got.Intent)
			require.NotNil(t, got.Entities.Budget)
			assert.InDelta(t, tt.amount, *got.Entities.Budget, 1e-6)
			assert.Equal(t, tt.currency, got.Entities.Currency)
		})
	}

	got := p.Parse("ngân sách")
	assert.Equal(t, domain.IntentChangeBudget, got.Intent)
	assert.Nil(t, got.Entities.Budget)
}

func TestParser_DayNumbersIgnoredAsBudget(t *testing.T) {
	got := intent.NewParser().Parse("xóa mục 2 ngày 3")

	assert.Equal(t, domain.IntentRemove, got.Intent)
	require.NotNil(t, got.Entities.OrderInDay)
	assert.Equal(t, 2, *got.Entities.OrderInDay)
	require.NotNil(t, got.Entities.Day)
	assert.Equal(t, 3, *got.Entities.Day)
	assert.Nil(t, got.Entities.Budget)
}

func TestParser_ModifyDayTargets(t *testing.T) {
	got := intent.NewParser().Parse("swap day 1 with day 3")

	assert.Equal(t, domain.IntentModifyDay, got.Intent)
	require.NotNil(t, got.Entities.Day)
	require.NotNil(t, got.Entities.TargetDay)
	assert.Equal(t, 1, *got.Entities.Day)
	assert.Equal(t, 3, *got.Entities.TargetDay)
}

func TestParser_ReplacePattern(t *testing.T) {
	got := intent.NewParser().Parse("replace Saigon Zoo with Landmark 81")

	assert.Equal(t, domain.IntentModifyLocation, got.Intent)
	assert.Equal(t, "Saigon Zoo", got.Entities.Target)
	assert.Equal(t, "Landmark 81", got.Entities.Location)
}

func TestParser_RescheduleNamedItem(t *testing.T) {
	p := intent.NewParser()

	got := p.Parse("move Ben Thanh Market to day 3")
	assert.Equal(t, domain.IntentModifyTime, got.Intent)
	assert.Equal(t, "Ben Thanh Market", got.Entities.Target)
	require.NotNil(t, got.Entities.Day)
	assert.Equal(t, 3, *got.Entities.Day)

	got = p.Parse("dời chợ Bến Thành sang buổi tối")
	assert.Equal(t, domain.IntentModifyTime, got.Intent)
	assert.Equal(t, "chợ Bến Thành", got.Entities.Target)
	assert.Equal(t, domain.SlotEvening, got.Entities.TimeSlot)

	got = p.Parse("change time of the museum to 9h")
	assert.Equal(t, domain.IntentModifyTime, got.Intent)
	assert.Equal(t, "museum", got.Entities.Target)
	assert.Equal(t, "09:00", got.Entities.Time)
}

func TestParser_RescheduleWithoutName(t *testing.T) {
	p := intent.NewParser()

	for _, text := range []string{"dời sang 9h30", "reschedule to 14:00", "đổi giờ 19h", "move it to day 2", "đổi sang buổi tối"} {
		t.Run(text, func(t *testing.T) {
			got := p.Parse(text)
			assert.Equal(t, domain.IntentModifyTime, got.Intent)
			assert.Empty(t, got.Entities.Target)
		})
	}
}

func TestParser_ChangeLocationOf(t *testing.T) {
	p := intent.NewParser()

	got := p.Parse("change location of Saigon Zoo to Landmark 81")
	assert.Equal(t, domain.IntentModifyLocation, got.Intent)
	assert.Equal(t, "Saigon Zoo", got.Entities.Target)
	assert.Equal(t, "Landmark 81", got.Entities.Location)

	got = p.Parse("đổi chỗ chợ Bến Thành sang Landmark 81")
	assert.Equal(t, domain.IntentModifyLocation, got.Intent)
	assert.Equal(t, "chợ Bến Thành", got.Entities.Target)
	assert.Equal(t, "Landmark 81", got.Entities.Location)
}
