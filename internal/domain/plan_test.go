package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/trip-planner/internal/pkg/errors"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func newTestPlan(t *testing.T) *Plan {
	t.Helper()
	return &Plan{
		ID:        uuid.New(),
		Name:      "Sài Gòn",
		PlaceName: "Ho Chi Minh City",
		StartDate: mustDate(t, "2025-03-01"),
		EndDate:   mustDate(t, "2025-03-03"),
		Members: []PlanMember{
			{UserID: "owner", Role: RoleOwner},
			{UserID: "editor", Role: RoleEditor},
			{UserID: "viewer", Role: RoleViewer},
		},
	}
}

func scheduled(t *testing.T, p *Plan, destID string, kind DestinationKind, date string) PlanDestination {
	t.Helper()
	d := mustDate(t, date)
	added, err := p.AppendDestination(PlanDestination{DestinationID: destID, Kind: kind, VisitDate: &d, TimeSlot: SlotMorning})
	require.NoError(t, err)
	return added
}

func TestPlan_Validate(t *testing.T) {
	p := newTestPlan(t)
	assert.NoError(t, p.Validate())

	p.StartDate, p.EndDate = p.EndDate, p.StartDate
	assert.ErrorIs(t, p.Validate(), apperrors.ErrInvalidDateRange)

	p = newTestPlan(t)
	neg := -1.0
	p.BudgetLimit = &neg
	assert.ErrorIs(t, p.Validate(), apperrors.ErrNegativeBudget)

	p = newTestPlan(t)
	p.Members = append(p.Members, PlanMember{UserID: "other", Role: RoleOwner})
	assert.Equal(t, apperrors.CodeConflict, apperrors.KindOf(p.Validate()))
}

func TestPlan_Permissions(t *testing.T) {
	p := newTestPlan(t)

	assert.NoError(t, p.CanEdit("owner"))
	assert.NoError(t, p.CanEdit("editor"))
	assert.ErrorIs(t, p.CanEdit("viewer"), apperrors.ErrViewerCannotEdit)
	assert.ErrorIs(t, p.CanEdit("stranger"), apperrors.ErrNotPlanMember)
	assert.NoError(t, p.RequireOwner("owner"))
	assert.ErrorIs(t, p.RequireOwner("editor"), apperrors.ErrOwnerOnly)
	assert.Error(t, p.AddMember("x", RoleOwner))
	assert.NoError(t, p.AddMember("x", RoleEditor))
}

func TestPlan_DayDate(t *testing.T) {
	p := newTestPlan(t)
	assert.Equal(t, 3, p.TripDays())

	d, err := p.DayDate(2)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-02", d.Format(DateLayout))

	_, err = p.DayDate(4)
	assert.ErrorIs(t, err, apperrors.ErrDateOutOfRange)
}

func TestPlan_RemoveItemRenumbersDay(t *testing.T) {
	p := newTestPlan(t)
	scheduled(t, p, "A", KindAttraction, "2025-03-01")
	r := scheduled(t, p, "R", KindRestaurant, "2025-03-01")
	scheduled(t, p, "H", KindAccommodation, "2025-03-01")

	_, err := p.RemoveItem(r.ID)
	require.NoError(t, err)

	items := p.DayItems(mustDate(t, "2025-03-01"))
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].DestinationID)
	assert.Equal(t, 1, items[0].OrderInDay)
	assert.Equal(t, "H", items[1].DestinationID)
	assert.Equal(t, 2, items[1].OrderInDay)
	assert.NoError(t, p.CheckInvariants())
}

func TestPlan_RemoveOriginalDropsRepeats(t *testing.T) {
	p := newTestPlan(t)
	orig := scheduled(t, p, "R1", KindRestaurant, "2025-03-01")
	d2 := mustDate(t, "2025-03-02")
	_, err := p.AppendDestination(PlanDestination{DestinationID: "R1", Kind: KindRestaurant, VisitDate: &d2, IsRepeated: true, RepeatIndex: 1})
	require.NoError(t, err)

	_, err = p.RemoveItem(orig.ID)
	require.NoError(t, err)
	assert.Empty(t, p.Destinations)
}

func TestPlan_AddThenRemoveRestores(t *testing.T) {
	p := newTestPlan(t)
	scheduled(t, p, "A", KindAttraction, "2025-03-01")
	scheduled(t, p, "R", KindRestaurant, "2025-03-01")
	before := append([]PlanDestination(nil), p.Destinations...)

	added := scheduled(t, p, "X", KindAttraction, "2025-03-01")
	assert.Equal(t, 3, added.OrderInDay)

	_, err := p.RemoveItem(added.ID)
	require.NoError(t, err)
	assert.Equal(t, before, p.Destinations)
}

func TestPlan_AppendRejectsOutOfRangeAndAttractionClone(t *testing.T) {
	p := newTestPlan(t)
	late := mustDate(t, "2025-04-01")
	_, err := p.AppendDestination(PlanDestination{DestinationID: "A", Kind: KindAttraction, VisitDate: &late})
	assert.ErrorIs(t, err, apperrors.ErrDateOutOfRange)

	d := mustDate(t, "2025-03-01")
	_, err = p.AppendDestination(PlanDestination{DestinationID: "A", Kind: KindAttraction, VisitDate: &d, IsRepeated: true})
	assert.ErrorIs(t, err, apperrors.ErrAttractionClone)
}

func TestPlan_Reschedule(t *testing.T) {
	t.Run("same values is a no-op", func(t *testing.T) {
		p := newTestPlan(t)
		a := scheduled(t, p, "A", KindAttraction, "2025-03-01")
		date := *a.VisitDate
		slot := a.TimeSlot

		mods, err := p.Reschedule(a.ID, &date, &slot, nil)
		require.NoError(t, err)
		assert.Empty(t, mods)
	})

	t.Run("date change appends on new day and renumbers old day", func(t *testing.T) {
		p := newTestPlan(t)
		a := scheduled(t, p, "A", KindAttraction, "2025-03-01")
		scheduled(t, p, "B", KindAttraction, "2025-03-01")
		scheduled(t, p, "C", KindAttraction, "2025-03-02")

		d2 := mustDate(t, "2025-03-02")
		evening := SlotEvening
		mods, err := p.Reschedule(a.ID, &d2, &evening, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, mods)

		_, moved := p.FindItem(a.ID)
		assert.Equal(t, 2, moved.OrderInDay)
		assert.Equal(t, SlotEvening, moved.TimeSlot)
		day1 := p.DayItems(mustDate(t, "2025-03-01"))
		require.Len(t, day1, 1)
		assert.Equal(t, 1, day1[0].OrderInDay)
		assert.NoError(t, p.CheckInvariants())
	})

	t.Run("order change within day", func(t *testing.T) {
		p := newTestPlan(t)
		scheduled(t, p, "A", KindAttraction, "2025-03-01")
		scheduled(t, p, "B", KindAttraction, "2025-03-01")
		c := scheduled(t, p, "C", KindRestaurant, "2025-03-01")

		first := 1
		_, err := p.Reschedule(c.ID, nil, nil, &first)
		require.NoError(t, err)

		items := p.DayItems(mustDate(t, "2025-03-01"))
		assert.Equal(t, []string{"C", "A", "B"}, []string{items[0].DestinationID, items[1].DestinationID, items[2].DestinationID})
		assert.NoError(t, p.CheckInvariants())
	})

	t.Run("unknown item", func(t *testing.T) {
		p := newTestPlan(t)
		_, err := p.Reschedule(uuid.New(), nil, nil, nil)
		assert.ErrorIs(t, err, apperrors.ErrPlanItemNotFound)
	})
}

func TestPlan_MoveDay(t *testing.T) {
	p := newTestPlan(t)
	scheduled(t, p, "A", KindAttraction, "2025-03-01")
	scheduled(t, p, "B", KindAttraction, "2025-03-01")
	scheduled(t, p, "C", KindAttraction, "2025-03-03")

	_, err := p.MoveDay(1, 3)
	require.NoError(t, err)

	assert.Empty(t, p.DayItems(mustDate(t, "2025-03-01")))
	day3 := p.DayItems(mustDate(t, "2025-03-03"))
	require.Len(t, day3, 3)
	assert.Equal(t, "C", day3[0].DestinationID)
	assert.Equal(t, 3, day3[2].OrderInDay)
	assert.NoError(t, p.CheckInvariants())
}

func TestPlan_CheckInvariantsDetectsGaps(t *testing.T) {
	p := newTestPlan(t)
	scheduled(t, p, "A", KindAttraction, "2025-03-01")
	b := scheduled(t, p, "B", KindAttraction, "2025-03-01")
	_, item := p.FindItem(b.ID)
	item.OrderInDay = 3

	assert.ErrorIs(t, p.CheckInvariants(), apperrors.ErrDuplicateOrder)
}

func TestPopularityScore(t *testing.T) {
	assert.Equal(t, 0.0, PopularityScore(10, 0))
	assert.InDelta(t, 15.0, PopularityScore(3, 2), 1e-9)
	assert.Equal(t, 100.0, PopularityScore(50, 1))
}

func TestMergeWarnings_FirstSeenWins(t *testing.T) {
	got := MergeWarnings(
		[]Warning{{Agent: "budget", Message: "over"}, {Agent: "validator", Message: "gap"}},
		[]Warning{{Agent: "budget", Message: "over"}, {Agent: "daily_schedule", Message: "no dinner"}},
	)
	assert.Equal(t, []Warning{
		{Agent: "budget", Message: "over"},
		{Agent: "validator", Message: "gap"},
		{Agent: "daily_schedule", Message: "no dinner"},
	}, got)
}
