package domain

import (
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/trip-planner/internal/pkg/errors"
)

// DateLayout - формат дат плана (ISO)
const DateLayout = "2006-01-02"

type DestinationKind string

const (
	KindAttraction    DestinationKind = "attraction"
	KindRestaurant    DestinationKind = "restaurant"
	KindAccommodation DestinationKind = "accommodation"
	KindTransport     DestinationKind = "transport"
)

func (k DestinationKind) Valid() bool {
	switch k {
	case KindAttraction, KindRestaurant, KindAccommodation, KindTransport:
		return true
	}
	return false
}

type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
)

func (s TimeSlot) Valid() bool {
	return s == SlotMorning || s == SlotAfternoon || s == SlotEvening
}

// Rank - порядок слота внутри дня
func (s TimeSlot) Rank() int {
	switch s {
	case SlotMorning:
		return 0
	case SlotAfternoon:
		return 1
	case SlotEvening:
		return 2
	}
	return 3
}

type MemberRole string

const (
	RoleOwner  MemberRole = "owner"
	RoleEditor MemberRole = "editor"
	RoleViewer MemberRole = "viewer"
)

type PlanMember struct {
	PlanID uuid.UUID  `json:"plan_id" db:"plan_id"`
	UserID string     `json:"user_id" db:"user_id"`
	Role   MemberRole `json:"role" db:"role"`
}

type Plan struct {
	ID           uuid.UUID         `json:"id"`
	Name         string            `json:"name"`
	PlaceName    string            `json:"place_name"`
	StartDate    time.Time         `json:"start_date"`
	EndDate      time.Time         `json:"end_date"`
	BudgetLimit  *float64          `json:"budget_limit,omitempty"`
	Members      []PlanMember      `json:"members"`
	Destinations []PlanDestination `json:"destinations"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// PlanDestination - пункт плана. VisitDate == nil и OrderInDay == 0 означают "не распределён".
type PlanDestination struct {
	ID            uuid.UUID       `json:"id"`
	PlanID        uuid.UUID       `json:"plan_id"`
	DestinationID string          `json:"destination_id"`
	Name          string          `json:"name,omitempty"`
	Kind          DestinationKind `json:"kind"`
	VisitDate     *time.Time      `json:"visit_date,omitempty"`
	TimeSlot      TimeSlot        `json:"time_slot,omitempty"`
	OrderInDay    int             `json:"order_in_day,omitempty"`
	EstimatedCost *float64        `json:"estimated_cost,omitempty"`
	Note          string          `json:"note,omitempty"`
	URL           string          `json:"url,omitempty"`
	IsRepeated    bool            `json:"is_repeated"`
	RepeatIndex   int             `json:"repeat_index"`
}

func (d *PlanDestination) Scheduled() bool {
	return d.VisitDate != nil
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errors.ErrInvalidRequest.WithMessage("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return truncateDay(a).Equal(truncateDay(b))
}

// Validate проверяет атрибуты плана: диапазон дат, бюджет и единственного владельца.
func (p *Plan) Validate() error {
	if p.StartDate.IsZero() || p.EndDate.IsZero() || p.StartDate.After(p.EndDate) {
		return errors.ErrInvalidDateRange
	}
	if p.BudgetLimit != nil && *p.BudgetLimit < 0 {
		return errors.ErrNegativeBudget
	}
	owners := 0
	for _, m := range p.Members {
		if m.Role == RoleOwner {
			owners++
		}
	}
	if owners == 0 {
		return errors.ErrInvalidRequest.WithMessage("plan must have an owner")
	}
	if owners > 1 {
		return errors.ErrAlreadyExists.WithMessage("plan must have exactly one owner, got %d", owners)
	}
	return nil
}

func (p *Plan) TripDays() int {
	return int(truncateDay(p.EndDate).Sub(truncateDay(p.StartDate)).Hours()/24) + 1
}

// DayDate возвращает дату дня N (нумерация с 1).
func (p *Plan) DayDate(n int) (time.Time, error) {
	if n < 1 || n > p.TripDays() {
		return time.Time{}, errors.ErrDateOutOfRange.WithMessage("day %d is outside the plan (1..%d)", n, p.TripDays())
	}
	return truncateDay(p.StartDate).AddDate(0, 0, n-1), nil
}

// DayNumber - номер дня для даты (с 1)
func (p *Plan) DayNumber(t time.Time) int {
	return int(truncateDay(t).Sub(truncateDay(p.StartDate)).Hours()/24) + 1
}

func (p *Plan) InRange(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(truncateDay(p.StartDate)) && !d.After(truncateDay(p.EndDate))
}

func (p *Plan) OwnerID() string {
	for _, m := range p.Members {
		if m.Role == RoleOwner {
			return m.UserID
		}
	}
	return ""
}

func (p *Plan) MemberRole(userID string) (MemberRole, bool) {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

// CanView - любой участник
func (p *Plan) CanView(userID string) error {
	if _, ok := p.MemberRole(userID); !ok {
		return errors.ErrNotPlanMember
	}
	return nil
}

// CanEdit - владелец или редактор
func (p *Plan) CanEdit(userID string) error {
	role, ok := p.MemberRole(userID)
	if !ok {
		return errors.ErrNotPlanMember
	}
	if role == RoleViewer {
		return errors.ErrViewerCannotEdit
	}
	return nil
}

func (p *Plan) RequireOwner(userID string) error {
	if p.OwnerID() != userID {
		return errors.ErrOwnerOnly
	}
	return nil
}

// AddMember добавляет участника; второй владелец - конфликт.
func (p *Plan) AddMember(userID string, role MemberRole) error {
	if role == RoleOwner {
		return errors.ErrAlreadyExists.WithMessage("plan already has an owner")
	}
	if _, ok := p.MemberRole(userID); ok {
		return errors.ErrAlreadyExists.WithMessage("user %s is already a member", userID)
	}
	p.Members = append(p.Members, PlanMember{PlanID: p.ID, UserID: userID, Role: role})
	return nil
}

func (p *Plan) FindItem(id uuid.UUID) (int, *PlanDestination) {
	for i := range p.Destinations {
		if p.Destinations[i].ID == id {
			return i, &p.Destinations[i]
		}
	}
	return -1, nil
}

// FindByDestination возвращает последний оригинальный пункт с данным внешним id.
func (p *Plan) FindByDestination(destinationID string) *PlanDestination {
	var found *PlanDestination
	for i := range p.Destinations {
		d := &p.Destinations[i]
		if d.DestinationID == destinationID && !d.IsRepeated {
			found = d
		}
	}
	return found
}

// FindByDayOrder - пункт по номеру дня и порядку
func (p *Plan) FindByDayOrder(date time.Time, order int) *PlanDestination {
	for i := range p.Destinations {
		d := &p.Destinations[i]
		if d.VisitDate != nil && sameDay(*d.VisitDate, date) && d.OrderInDay == order {
			return d
		}
	}
	return nil
}

// DayItems возвращает указатели на пункты дня, отсортированные по order_in_day.
func (p *Plan) DayItems(date time.Time) []*PlanDestination {
	var items []*PlanDestination
	for i := range p.Destinations {
		d := &p.Destinations[i]
		if d.VisitDate != nil && sameDay(*d.VisitDate, date) {
			items = append(items, d)
		}
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].OrderInDay < items[b].OrderInDay })
	return items
}

func (p *Plan) NextOrder(date time.Time) int {
	last := 0
	for _, d := range p.DayItems(date) {
		if d.OrderInDay > last {
			last = d.OrderInDay
		}
	}
	return last + 1
}

// AppendDestination добавляет пункт в конец дня.
func (p *Plan) AppendDestination(d PlanDestination) (PlanDestination, error) {
	if d.VisitDate == nil {
		return PlanDestination{}, errors.ErrInvalidRequest.WithMessage("visit_date is required")
	}
	if !p.InRange(*d.VisitDate) {
		return PlanDestination{}, errors.ErrDateOutOfRange
	}
	if d.IsRepeated && d.Kind == KindAttraction {
		return PlanDestination{}, errors.ErrAttractionClone
	}
	day := truncateDay(*d.VisitDate)
	d.VisitDate = &day
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.PlanID = p.ID
	d.OrderInDay = p.NextOrder(day)
	p.Destinations = append(p.Destinations, d)
	return d, nil
}

// RemoveItem удаляет пункт и сдвигает последующие пункты дня на 1 вниз.
// Если удалён последний оригинал, его повторы удаляются вместе с ним.
func (p *Plan) RemoveItem(id uuid.UUID) ([]Modification, error) {
	idx, item := p.FindItem(id)
	if item == nil {
		return nil, errors.ErrPlanItemNotFound
	}
	removed := *item
	p.Destinations = append(p.Destinations[:idx], p.Destinations[idx+1:]...)

	mods := []Modification{{
		ItemID:        removed.ID.String(),
		DestinationID: removed.DestinationID,
		Field:         "removed",
		OldValue:      FormatDate(removed.VisitDate),
	}}
	affected := map[time.Time]bool{}
	if removed.VisitDate != nil {
		affected[truncateDay(*removed.VisitDate)] = true
	}

	if !removed.IsRepeated && p.FindByDestination(removed.DestinationID) == nil {
		kept := p.Destinations[:0]
		for _, d := range p.Destinations {
			if d.IsRepeated && d.DestinationID == removed.DestinationID {
				mods = append(mods, Modification{
					ItemID:        d.ID.String(),
					DestinationID: d.DestinationID,
					Field:         "removed",
					OldValue:      FormatDate(d.VisitDate),
				})
				if d.VisitDate != nil {
					affected[truncateDay(*d.VisitDate)] = true
				}
				continue
			}
			kept = append(kept, d)
		}
		p.Destinations = kept
	}

	days := make([]time.Time, 0, len(affected))
	for day := range affected {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	for _, day := range days {
		mods = append(mods, p.renumberDay(day)...)
	}
	return mods, nil
}

// Reschedule меняет дату, слот и/или порядок. При смене даты порядок назначается
// следующим свободным на новом дне, старый день перенумеровывается.
func (p *Plan) Reschedule(id uuid.UUID, date *time.Time, slot *TimeSlot, order *int) ([]Modification, error) {
	_, item := p.FindItem(id)
	if item == nil {
		return nil, errors.ErrPlanItemNotFound
	}
	var mods []Modification
	itemID := item.ID.String()

	if slot != nil && *slot != item.TimeSlot {
		if !slot.Valid() {
			return nil, errors.ErrInvalidRequest.WithMessage("invalid time slot %q", *slot)
		}
		mods = append(mods, Modification{ItemID: itemID, DestinationID: item.DestinationID, Field: "time_slot", OldValue: string(item.TimeSlot), NewValue: string(*slot)})
		item.TimeSlot = *slot
	}

	if date != nil && (item.VisitDate == nil || !sameDay(*item.VisitDate, *date)) {
		if !p.InRange(*date) {
			return nil, errors.ErrDateOutOfRange
		}
		newDay := truncateDay(*date)
		oldDate := item.VisitDate
		oldOrder := item.OrderInDay
		next := p.NextOrder(newDay)
		mods = append(mods, Modification{ItemID: itemID, DestinationID: item.DestinationID, Field: "visit_date", OldValue: FormatDate(oldDate), NewValue: newDay.Format(DateLayout)})
		item.VisitDate = &newDay
		item.OrderInDay = next
		if oldOrder != next {
			mods = append(mods, Modification{ItemID: itemID, DestinationID: item.DestinationID, Field: "order_in_day", OldValue: strconv.Itoa(oldOrder), NewValue: strconv.Itoa(next)})
		}
		if oldDate != nil {
			mods = append(mods, p.renumberDay(*oldDate)...)
		}
		return mods, nil
	}

	if order != nil && item.VisitDate != nil && *order != item.OrderInDay {
		mods = append(mods, p.moveWithinDay(item, *order)...)
	}
	return mods, nil
}

// MoveDay переносит все пункты дня from в конец дня to.
func (p *Plan) MoveDay(from, to int) ([]Modification, error) {
	fromDate, err := p.DayDate(from)
	if err != nil {
		return nil, err
	}
	toDate, err := p.DayDate(to)
	if err != nil {
		return nil, err
	}
	if from == to {
		return nil, nil
	}
	var mods []Modification
	next := p.NextOrder(toDate)
	for _, d := range p.DayItems(fromDate) {
		day := toDate
		d.VisitDate = &day
		mods = append(mods, Modification{ItemID: d.ID.String(), DestinationID: d.DestinationID, Field: "visit_date", OldValue: fromDate.Format(DateLayout), NewValue: toDate.Format(DateLayout)})
		if d.OrderInDay != next {
			mods = append(mods, Modification{ItemID: d.ID.String(), DestinationID: d.DestinationID, Field: "order_in_day", OldValue: strconv.Itoa(d.OrderInDay), NewValue: strconv.Itoa(next)})
		}
		d.OrderInDay = next
		next++
	}
	return mods, nil
}

func (p *Plan) moveWithinDay(item *PlanDestination, order int) []Modification {
	items := p.DayItems(*item.VisitDate)
	if order < 1 {
		order = 1
	}
	if order > len(items) {
		order = len(items)
	}
	reordered := make([]*PlanDestination, 0, len(items))
	for _, d := range items {
		if d != item {
			reordered = append(reordered, d)
		}
	}
	reordered = append(reordered[:order-1], append([]*PlanDestination{item}, reordered[order-1:]...)...)
	return assignOrders(reordered)
}

func (p *Plan) renumberDay(day time.Time) []Modification {
	return assignOrders(p.DayItems(day))
}

func assignOrders(items []*PlanDestination) []Modification {
	var mods []Modification
	for i, d := range items {
		want := i + 1
		if d.OrderInDay != want {
			mods = append(mods, Modification{ItemID: d.ID.String(), DestinationID: d.DestinationID, Field: "order_in_day", OldValue: strconv.Itoa(d.OrderInDay), NewValue: strconv.Itoa(want)})
			d.OrderInDay = want
		}
	}
	return mods
}

// CheckInvariants проверяет инварианты плана после редактирования.
func (p *Plan) CheckInvariants() error {
	orders := map[string]map[int]bool{}
	originals := map[string]bool{}
	for _, d := range p.Destinations {
		if !d.IsRepeated {
			originals[d.DestinationID] = true
		}
	}
	for _, d := range p.Destinations {
		if d.IsRepeated {
			if d.Kind == KindAttraction {
				return errors.ErrAttractionClone
			}
			if !originals[d.DestinationID] {
				return errors.ErrInvalidRequest.WithMessage("repeated destination %s has no original", d.DestinationID)
			}
		}
		if d.VisitDate == nil {
			continue
		}
		if !p.InRange(*d.VisitDate) {
			return errors.ErrDateOutOfRange
		}
		key := d.VisitDate.Format(DateLayout)
		if orders[key] == nil {
			orders[key] = map[int]bool{}
		}
		if d.OrderInDay < 1 || orders[key][d.OrderInDay] {
			return errors.ErrDuplicateOrder.WithMessage("duplicate or invalid order %d on %s", d.OrderInDay, key)
		}
		orders[key][d.OrderInDay] = true
	}
	for key, set := range orders {
		for i := 1; i <= len(set); i++ {
			if !set[i] {
				return errors.ErrDuplicateOrder.WithMessage("gap in order_in_day on %s", key)
			}
		}
	}
	return nil
}

// SortDestinations - по дате (без даты в конце), затем по order_in_day
func SortDestinations(ds []PlanDestination) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if (a.VisitDate == nil) != (b.VisitDate == nil) {
			return a.VisitDate != nil
		}
		if a.VisitDate != nil && !sameDay(*a.VisitDate, *b.VisitDate) {
			return a.VisitDate.Before(*b.VisitDate)
		}
		return a.OrderInDay < b.OrderInDay
	})
}

// Clone - глубокая копия для редактирования без изменения исходного плана
func (p *Plan) Clone() *Plan {
	c := *p
	c.Members = append([]PlanMember(nil), p.Members...)
	c.Destinations = make([]PlanDestination, len(p.Destinations))
	for i, d := range p.Destinations {
		if d.VisitDate != nil {
			day := *d.VisitDate
			d.VisitDate = &day
		}
		if d.EstimatedCost != nil {
			v := *d.EstimatedCost
			d.EstimatedCost = &v
		}
		c.Destinations[i] = d
	}
	if p.BudgetLimit != nil {
		v := *p.BudgetLimit
		c.BudgetLimit = &v
	}
	return &c
}
