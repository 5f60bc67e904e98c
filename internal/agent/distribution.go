package agent

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/trip-planner/internal/domain"
)

// DistributionAgent раскладывает пункты плана по дням и слотам.
type DistributionAgent struct {
	shape DailyShape
}

func NewDistributionAgent(shape DailyShape) *DistributionAgent {
	return &DistributionAgent{shape: shape}
}

func (a *DistributionAgent) Name() string {
	return domain.AgentDistribution
}

// DistributionResult - результат распределения вместе с итоговым списком пунктов.
// Новые повторы приходят с пустым ID.
type DistributionResult struct {
	domain.AgentResult
	Destinations  []domain.DestinationSnapshot `json:"destinations"`
	Redistributed bool                         `json:"redistributed"`
}

type workItem struct {
	dest    domain.DestinationSnapshot
	before  *domain.DestinationSnapshot
	kind    domain.DestinationKind
	dropped bool
}

var kindPlural = map[domain.DestinationKind]string{
	domain.KindAttraction:    "attractions",
	domain.KindRestaurant:    "restaurants",
	domain.KindAccommodation: "accommodations",
}

func (a *DistributionAgent) Process(_ context.Context, plan *domain.PlanSnapshot, _ string) (*domain.AgentResult, error) {
	res, err := a.Distribute(plan)
	if err != nil {
		return nil, err
	}
	return &res.AgentResult, nil
}

// Distribute строит расписание. Повторный вызов на собственном результате ничего не меняет.
func (a *DistributionAgent) Distribute(plan *domain.PlanSnapshot) (*DistributionResult, error) {
	start, end, err := planRange(plan)
	if err != nil {
		return nil, err
	}
	days := tripDays(start, end)

	res := &DistributionResult{AgentResult: domain.AgentResult{Success: true}}
	if len(plan.Destinations) == 0 {
		res.Message = "no destinations to distribute"
		res.Destinations = []domain.DestinationSnapshot{}
		return res, nil
	}

	items := prepare(plan.Destinations)
	items, warnings := a.expand(items, days)
	live := liveItems(items)

	if needsRedistribution(live, start, end, days) {
		warnings = append(warnings, a.fill(live, start, days)...)
		res.Redistributed = true
		res.Message = fmt.Sprintf("distributed %d destinations over %d days", len(live), days)
	} else {
		rebalanced := a.preserve(live)
		if rebalanced > 0 {
			res.Message = fmt.Sprintf("schedule kept; rebalanced time slots on %d day(s)", rebalanced)
		} else {
			res.Message = "schedule already balanced"
		}
	}

	res.Warnings = domain.MergeWarnings(warnings)
	res.Destinations, res.Modifications = collect(items)
	return res, nil
}

// prepare копирует пункты и сортирует их: по дате (без даты в конце), затем по порядку
func prepare(src []domain.DestinationSnapshot) []*workItem {
	items := make([]*workItem, 0, len(src))
	for i := range src {
		before := src[i]
		it := &workItem{dest: src[i], before: &before}
		it.kind = effectiveKind(&it.dest)
		items = append(items, it)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return lessSchedule(&items[i].dest, &items[j].dest)
	})
	return items
}

func lessSchedule(a, b *domain.DestinationSnapshot) bool {
	if (a.VisitDate == "") != (b.VisitDate == "") {
		return a.VisitDate != ""
	}
	if a.VisitDate != b.VisitDate {
		return a.VisitDate < b.VisitDate
	}
	return a.OrderInDay < b.OrderInDay
}

func liveItems(items []*workItem) []*workItem {
	live := make([]*workItem, 0, len(items))
	for _, it := range items {
		if !it.dropped {
			live = append(live, it)
		}
	}
	return live
}

func (a *DistributionAgent) perDay(kind domain.DestinationKind) int {
	switch kind {
	case domain.KindRestaurant:
		return a.shape.RestaurantsPerDay
	case domain.KindAccommodation:
		return a.shape.AccommodationsPerDay
	}
	return 0
}

// expand добавляет повторы для видов с суточной потребностью и убирает лишние повторы.
// Достопримечательности никогда не повторяются, недостача уходит в предупреждение.
func (a *DistributionAgent) expand(items []*workItem, days int) ([]*workItem, []domain.Warning) {
	var warnings []domain.Warning

	for _, kind := range []domain.DestinationKind{domain.KindRestaurant, domain.KindAccommodation} {
		demand := a.perDay(kind) * days
		var originals, clones []*workItem
		for _, it := range items {
			if it.kind != kind {
				continue
			}
			if it.dest.IsRepeated {
				clones = append(clones, it)
			} else {
				originals = append(originals, it)
			}
		}
		current := len(originals) + len(clones)

		switch {
		case current > demand && len(clones) > 0:
			surplus := current - demand
			if surplus > len(clones) {
				surplus = len(clones)
			}
			sort.SliceStable(clones, func(i, j int) bool { return clones[i].dest.RepeatIndex > clones[j].dest.RepeatIndex })
			for _, c := range clones[:surplus] {
				c.dropped = true
			}
		case current < demand && len(originals) == 0:
			warnings = append(warnings, warn(domain.AgentDistribution,
				fmt.Sprintf("%s: no originals to repeat; %d short of daily demand", kindPlural[kind], demand-current)))
		case current < demand:
			next := 1
			for _, c := range clones {
				if c.dest.RepeatIndex >= next {
					next = c.dest.RepeatIndex + 1
				}
			}
			for i := 0; i < demand-current; i++ {
				orig := originals[(len(clones)+i)%len(originals)]
				clone := orig.dest
				clone.ID = ""
				clone.Kind = string(kind)
				clone.IsRepeated = true
				clone.RepeatIndex = next
				clone.VisitDate = ""
				clone.TimeSlot = ""
				clone.OrderInDay = 0
				items = append(items, &workItem{dest: clone, kind: kind})
				next++
			}
		}
	}

	attractions := 0
	for _, it := range items {
		if it.kind == domain.KindAttraction && !it.dropped {
			attractions++
		}
	}
	if attractions < days {
		warnings = append(warnings, warn(domain.AgentDistribution,
			fmt.Sprintf("attractions: %d short of daily demand; will not clone.", days-attractions)))
	}
	return items, warnings
}

// needsRedistribution: есть пункты без даты или вне диапазона, всё свалено в один день
// многодневной поездки, либо у большинства нет слота.
func needsRedistribution(items []*workItem, start, end time.Time, days int) bool {
	seenDays := map[string]bool{}
	missingSlot := 0
	for _, it := range items {
		if it.dest.VisitDate == "" {
			return true
		}
		t, err := domain.ParseDate(it.dest.VisitDate)
		if err != nil || t.Before(start) || t.After(end) {
			return true
		}
		seenDays[it.dest.VisitDate] = true
		if it.dest.TimeSlot == "" {
			missingSlot++
		}
	}
	if days > 1 && len(seenDays) == 1 && len(items) > 3 {
		return true
	}
	return missingSlot*2 > len(items)
}

// fill - распределение с нуля: по дням утро для достопримечательностей, обед и ужин,
// вечером заселение. Прочие виды ставятся днём, равными блоками по дням.
func (a *DistributionAgent) fill(items []*workItem, start time.Time, days int) []domain.Warning {
	queues := map[domain.DestinationKind][]*workItem{}
	var others []*workItem
	for _, it := range items {
		it.dest.VisitDate = ""
		it.dest.TimeSlot = ""
		it.dest.OrderInDay = 0
		switch it.kind {
		case domain.KindAttraction, domain.KindRestaurant, domain.KindAccommodation:
			queues[it.kind] = append(queues[it.kind], it)
		default:
			others = append(others, it)
		}
	}

	counters := make([]int, days)
	byDay := make([][]*workItem, days)
	place := func(it *workItem, day int, slot domain.TimeSlot) {
		it.dest.VisitDate = start.AddDate(0, 0, day).Format(domain.DateLayout)
		it.dest.TimeSlot = string(slot)
		counters[day]++
		it.dest.OrderInDay = counters[day]
		byDay[day] = append(byDay[day], it)
	}
	pop := func(kind domain.DestinationKind) (*workItem, bool) {
		q := queues[kind]
		if len(q) == 0 {
			return nil, false
		}
		queues[kind] = q[1:]
		return q[0], true
	}

	for day := 0; day < days; day++ {
		for i := 0; i < a.shape.MaxAttractionsPerDay; i++ {
			if it, ok := pop(domain.KindAttraction); ok {
				place(it, day, domain.SlotMorning)
			}
		}
		for i := 0; i < a.shape.RestaurantsPerDay; i++ {
			slot := domain.SlotEvening
			if i == 0 {
				slot = domain.SlotAfternoon
			}
			if it, ok := pop(domain.KindRestaurant); ok {
				place(it, day, slot)
			}
		}
		for i := 0; i < a.shape.AccommodationsPerDay; i++ {
			if it, ok := pop(domain.KindAccommodation); ok {
				place(it, day, domain.SlotEvening)
			}
		}
	}
	for i, it := range others {
		place(it, i*days/len(others), domain.SlotAfternoon)
	}

	var warnings []domain.Warning
	for _, kind := range []domain.DestinationKind{domain.KindAttraction, domain.KindRestaurant, domain.KindAccommodation} {
		if n := len(queues[kind]); n > 0 {
			warnings = append(warnings, warn(domain.AgentDistribution,
				fmt.Sprintf("%s: %d left unscheduled; daily capacity reached", kindPlural[kind], n)))
		}
	}

	for _, dayItems := range byDay {
		orderBySlot(dayItems)
		rebalanceDay(dayItems)
	}
	return warnings
}

// orderBySlot - порядок в дне следует слотам: утро, день, вечер; внутри слота порядок размещения
func orderBySlot(dayItems []*workItem) {
	sort.SliceStable(dayItems, func(i, j int) bool {
		return domain.TimeSlot(dayItems[i].dest.TimeSlot).Rank() < domain.TimeSlot(dayItems[j].dest.TimeSlot).Rank()
	})
	for i, it := range dayItems {
		it.dest.OrderInDay = i + 1
	}
}

// preserve сохраняет раскладку: перенумеровывает дни и перераспределяет слоты
// в днях, где три и больше пункта стоят в одном слоте. Возвращает число таких дней.
func (a *DistributionAgent) preserve(items []*workItem) int {
	byDate := map[string][]*workItem{}
	var dates []string
	for _, it := range items {
		if _, ok := byDate[it.dest.VisitDate]; !ok {
			dates = append(dates, it.dest.VisitDate)
		}
		byDate[it.dest.VisitDate] = append(byDate[it.dest.VisitDate], it)
	}
	sort.Strings(dates)

	rebalanced := 0
	for _, date := range dates {
		dayItems := byDate[date]
		sort.SliceStable(dayItems, func(i, j int) bool { return dayItems[i].dest.OrderInDay < dayItems[j].dest.OrderInDay })
		for i, it := range dayItems {
			if it.dest.TimeSlot == "" {
				it.dest.TimeSlot = string(defaultSlot(it.kind))
			}
			it.dest.OrderInDay = i + 1
		}
		if rebalanceDay(dayItems) {
			rebalanced++
		}
	}
	return rebalanced
}

func defaultSlot(kind domain.DestinationKind) domain.TimeSlot {
	switch kind {
	case domain.KindAttraction:
		return domain.SlotMorning
	case domain.KindAccommodation:
		return domain.SlotEvening
	}
	return domain.SlotAfternoon
}

var spreadSlots = []domain.TimeSlot{domain.SlotMorning, domain.SlotAfternoon, domain.SlotEvening}

// rebalanceDay раздаёт слоты по видам, если все пункты дня (3+) в одном слоте:
// рестораны чередуют обед и ужин, жильё вечером, остальное по кругу утро-день-вечер.
// Затем порядок пересчитывается по слотам.
func rebalanceDay(dayItems []*workItem) bool {
	if len(dayItems) < 3 {
		return false
	}
	first := dayItems[0].dest.TimeSlot
	for _, it := range dayItems[1:] {
		if it.dest.TimeSlot != first {
			return false
		}
	}

	restaurants, others := 0, 0
	for _, it := range dayItems {
		switch it.kind {
		case domain.KindRestaurant:
			if restaurants%2 == 0 {
				it.dest.TimeSlot = string(domain.SlotAfternoon)
			} else {
				it.dest.TimeSlot = string(domain.SlotEvening)
			}
			restaurants++
		case domain.KindAccommodation:
			it.dest.TimeSlot = string(domain.SlotEvening)
		default:
			it.dest.TimeSlot = string(spreadSlots[others%len(spreadSlots)])
			others++
		}
	}

	ordered := append([]*workItem(nil), dayItems...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return domain.TimeSlot(ordered[i].dest.TimeSlot).Rank() < domain.TimeSlot(ordered[j].dest.TimeSlot).Rank()
	})
	for i, it := range ordered {
		it.dest.OrderInDay = i + 1
	}
	return true
}

// collect собирает итоговый список и изменения по полям
func collect(items []*workItem) ([]domain.DestinationSnapshot, []domain.Modification) {
	out := make([]domain.DestinationSnapshot, 0, len(items))
	var mods []domain.Modification

	for _, it := range items {
		d := &it.dest
		if it.dropped {
			mods = append(mods, domain.Modification{
				Agent: domain.AgentDistribution, ItemID: d.ID, DestinationID: d.DestinationID,
				Field: "removed", OldValue: "repeat_index " + strconv.Itoa(d.RepeatIndex),
			})
			continue
		}
		out = append(out, *d)

		old := domain.DestinationSnapshot{}
		if it.before != nil {
			old = *it.before
		} else {
			mods = append(mods, domain.Modification{
				Agent: domain.AgentDistribution, DestinationID: d.DestinationID,
				Field: "repeat_index", NewValue: strconv.Itoa(d.RepeatIndex),
			})
		}
		mods = append(mods, fieldChanges(d, &old)...)
	}

	sort.SliceStable(out, func(i, j int) bool { return lessSchedule(&out[i], &out[j]) })
	return out, mods
}

func fieldChanges(d, old *domain.DestinationSnapshot) []domain.Modification {
	var mods []domain.Modification
	add := func(field, from, to string) {
		if from == to {
			return
		}
		mods = append(mods, domain.Modification{
			Agent: domain.AgentDistribution, ItemID: d.ID, DestinationID: d.DestinationID,
			Field: field, OldValue: from, NewValue: to,
		})
	}
	add("visit_date", old.VisitDate, d.VisitDate)
	add("time_slot", old.TimeSlot, d.TimeSlot)
	add("order_in_day", orderString(old.OrderInDay), orderString(d.OrderInDay))
	return mods
}

func orderString(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
