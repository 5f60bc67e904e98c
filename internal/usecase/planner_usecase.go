package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/agent"
	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/intent"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/usecase/dto"
)

const (
	defaultSuggestions  = 5
	defaultReplyTimeout = 30 * time.Second
)

// PlannerConfig - параметры оркестратора
type PlannerConfig struct {
	ReplyTimeout time.Duration
	Suggestions  int
}

// PlannerUseCase - оркестратор: разбор реплики, правка плана, суб-агенты, ответ
type PlannerUseCase struct {
	planRepo    repository.PlanRepository
	stateRepo   repository.ConversationStateRepository
	clusterRepo repository.ClusterRepository
	parser      *intent.Parser
	catalog     *DestinationUseCase
	recs        *RecommendationUseCase
	runner      *AgentRunner
	generator   repository.TextGenerator
	cfg         PlannerConfig
	logger      *zap.Logger
}

// NewPlannerUseCase - создание нового PlannerUseCase. generator может быть nil.
func NewPlannerUseCase(
	planRepo repository.PlanRepository,
	stateRepo repository.ConversationStateRepository,
	clusterRepo repository.ClusterRepository,
	catalog *DestinationUseCase,
	recs *RecommendationUseCase,
	runner *AgentRunner,
	generator repository.TextGenerator,
	cfg PlannerConfig,
	logger *zap.Logger,
) *PlannerUseCase {
	if cfg.ReplyTimeout <= 0 {
		cfg.ReplyTimeout = defaultReplyTimeout
	}
	if cfg.Suggestions <= 0 {
		cfg.Suggestions = defaultSuggestions
	}
	return &PlannerUseCase{
		planRepo:    planRepo,
		stateRepo:   stateRepo,
		clusterRepo: clusterRepo,
		parser:      intent.NewParser(),
		catalog:     catalog,
		recs:        recs,
		runner:      runner,
		generator:   generator,
		cfg:         cfg,
		logger:      logger,
	}
}

// turn - состояние обработки одной реплики
type turn struct {
	userID  string
	roomID  string
	parsed  domain.ParsedIntent
	state   *domain.ConversationState
	plan    *domain.Plan
	working *domain.Plan

	message     string
	mods        []domain.Modification
	missing     []string
	suggestions []string
	edited      bool
	declined    bool
}

// ProcessUtterance обрабатывает реплику пользователя в комнате
func (uc *PlannerUseCase) ProcessUtterance(ctx context.Context, userID, roomID, text string) (*dto.UtteranceResponse, error) {
	state, err := uc.stateRepo.Get(ctx, roomID)
	if err != nil {
		uc.logger.Error("Failed to load conversation state", zap.String("room_id", roomID), zap.Error(err))
		return nil, err
	}

	t := &turn{userID: userID, roomID: roomID, state: state, parsed: uc.parser.Parse(text)}
	if t.parsed.Intent == domain.IntentUnknown && state.HasPending() && t.parsed.Entities.HasEntities() {
		uc.logger.Debug("Resuming pending intent",
			zap.String("room_id", roomID),
			zap.String("intent", string(state.CurrentIntent)))
		t.parsed.Intent = state.CurrentIntent
	}

	uc.logger.Info("Utterance parsed",
		zap.String("room_id", roomID),
		zap.String("user_id", userID),
		zap.String("intent", string(t.parsed.Intent)),
		zap.Float64("confidence", t.parsed.Confidence))

	switch t.parsed.Intent {
	case domain.IntentUnknown:
		// состояние не трогаем: незавершённое намерение комнаты должно пережить непонятую реплику
		return &dto.UtteranceResponse{
			OK:            false,
			Message:       "Sorry, I did not understand. Try \"add <place> day 2\", \"remove item 2 day 1\" or \"show my plan\".",
			Warnings:      []domain.Warning{},
			Modifications: []domain.Modification{},
			Intent:        t.parsed,
			MissingParams: []string{domain.ParamIntent},
		}, nil
	case domain.IntentGetWeather, domain.IntentGetRoute:
		return &dto.UtteranceResponse{
			OK:            false,
			Message:       fmt.Sprintf("%s is not supported yet.", humanIntent(t.parsed.Intent)),
			Warnings:      []domain.Warning{},
			Modifications: []domain.Modification{},
			Intent:        t.parsed,
		}, nil
	}

	if needsPlan(t.parsed.Intent) {
		if t.plan, err = uc.activePlan(ctx, userID, state); err != nil {
			return nil, err
		}
		if err := t.plan.CanView(userID); err != nil {
			return nil, err
		}
		t.working = t.plan.Clone()
	} else if plan, err := uc.activePlan(ctx, userID, state); err == nil && plan.CanView(userID) == nil {
		t.plan = plan
		t.working = plan.Clone()
	}

	if err := uc.dispatch(ctx, t); err != nil {
		return nil, err
	}

	if len(t.missing) > 0 {
		return uc.askForMissing(ctx, t)
	}
	return uc.complete(ctx, t, text)
}

func needsPlan(i domain.Intent) bool {
	switch i {
	case domain.IntentSuggest, domain.IntentSearchDestination:
		return false
	}
	return true
}

func humanIntent(i domain.Intent) string {
	switch i {
	case domain.IntentGetWeather:
		return "Weather lookup"
	case domain.IntentGetRoute:
		return "Route planning"
	}
	return strings.ToLower(string(i))
}

// activePlan - план из контекста комнаты, иначе первый план пользователя
func (uc *PlannerUseCase) activePlan(ctx context.Context, userID string, state *domain.ConversationState) (*domain.Plan, error) {
	if state.ActivePlanID != "" {
		if id, err := uuid.Parse(state.ActivePlanID); err == nil {
			plan, err := uc.planRepo.GetByID(ctx, id)
			if err == nil {
				return plan, nil
			}
			if errors.KindOf(err) != errors.CodeNotFound {
				return nil, err
			}
			uc.logger.Warn("Active plan is gone, falling back to owned plan",
				zap.String("plan_id", state.ActivePlanID))
		}
	}
	plan, err := uc.planRepo.FirstOwnedBy(ctx, userID)
	if err != nil {
		if errors.KindOf(err) == errors.CodeNotFound {
			return nil, errors.ErrPlanNotFound.WithMessage("user %s has no plan yet; create one first", userID)
		}
		return nil, err
	}
	return plan, nil
}

func (uc *PlannerUseCase) dispatch(ctx context.Context, t *turn) error {
	switch t.parsed.Intent {
	case domain.IntentAdd:
		return uc.handleAdd(ctx, t)
	case domain.IntentRemove:
		return uc.handleRemove(t)
	case domain.IntentModifyTime:
		return uc.handleModifyTime(t)
	case domain.IntentModifyDay:
		return uc.handleModifyDay(t)
	case domain.IntentModifyLocation:
		return uc.handleModifyLocation(ctx, t)
	case domain.IntentChangeBudget:
		return uc.handleChangeBudget(t)
	case domain.IntentViewPlan:
		t.message = "Here is your plan."
		return nil
	case domain.IntentSuggest:
		return uc.handleSuggest(ctx, t)
	case domain.IntentSearchDestination:
		return uc.handleSearch(ctx, t)
	}
	return errors.ErrInvalidRequest.WithMessage("unsupported intent %s", t.parsed.Intent)
}

func (uc *PlannerUseCase) handleAdd(ctx context.Context, t *turn) error {
	if err := t.plan.CanEdit(t.userID); err != nil {
		return err
	}
	ents := t.parsed.Entities

	var dest *domain.Destination
	var err error
	switch {
	case ents.Location != "":
		dest, err = uc.catalog.Resolve(ctx, ents.Location)
	case t.state.LastDestination != "":
		dest, err = uc.catalog.Get(ctx, t.state.LastDestination)
	default:
		t.missing = append(t.missing, domain.ParamDestination)
	}
	if err != nil {
		return err
	}
	if dest != nil {
		t.state.LastDestination = dest.ID
	}

	date, ok, err := uc.entityDate(t, ents.Day)
	if err != nil {
		return err
	}
	if !ok {
		t.missing = append(t.missing, domain.ParamVisitDate)
	}
	if len(t.missing) > 0 {
		return nil
	}

	// хранится вид по типам места; классификатор по названию влияет только на слот
	kind := domain.KindFromPlaceTypes(dest.Types)
	slot := ents.TimeSlot
	if slot == "" {
		slot = defaultSlotFor(agent.KindOf(kind, dest.Name))
	}
	added, err := t.working.AppendDestination(domain.PlanDestination{
		DestinationID: dest.ID,
		Name:          dest.Name,
		Kind:          kind,
		VisitDate:     &date,
		TimeSlot:      slot,
	})
	if err != nil {
		return err
	}

	t.edited = true
	t.mods = append(t.mods, domain.Modification{
		Agent:         domain.AgentPlanner,
		ItemID:        added.ID.String(),
		DestinationID: added.DestinationID,
		Field:         "added",
		NewValue:      date.Format(domain.DateLayout),
	})
	t.state.LastDate = date.Format(domain.DateLayout)
	t.state.LastTimeSlot = slot
	t.message = fmt.Sprintf("Added %s to day %d (%s).", dest.Name, t.working.DayNumber(date), slot)

	if err := uc.clusterRepo.RecordActivity(ctx, t.userID, dest.ID, domain.ActivitySave); err != nil {
		uc.logger.Warn("Failed to record activity", zap.String("destination_id", dest.ID), zap.Error(err))
	}
	return nil
}

// entityDate - дата по номеру дня, иначе последняя упомянутая дата
func (uc *PlannerUseCase) entityDate(t *turn, day *int) (time.Time, bool, error) {
	if day != nil {
		d, err := t.working.DayDate(*day)
		return d, err == nil, err
	}
	if t.state.LastDate != "" {
		d, err := domain.ParseDate(t.state.LastDate)
		if err == nil && t.working.InRange(d) {
			return d, true, nil
		}
	}
	return time.Time{}, false, nil
}

func defaultSlotFor(kind domain.DestinationKind) domain.TimeSlot {
	switch kind {
	case domain.KindAttraction:
		return domain.SlotMorning
	case domain.KindAccommodation:
		return domain.SlotEvening
	}
	return domain.SlotAfternoon
}

// locateItem находит пункт по (день, порядок), по имени или по последнему упомянутому месту.
// usedDay сообщает, что номер дня ушёл на поиск и не является новым значением.
func (uc *PlannerUseCase) locateItem(t *turn, name string) (item *domain.PlanDestination, usedDay bool, err error) {
	ents := t.parsed.Entities
	switch {
	case ents.OrderInDay != nil:
		var date time.Time
		var ok bool
		if ents.Day != nil {
			if date, err = t.working.DayDate(*ents.Day); err != nil {
				return nil, false, err
			}
			ok, usedDay = true, true
		} else if t.working.TripDays() == 1 {
			date, ok = t.working.StartDate, true
		} else if date, ok, err = uc.entityDate(t, nil); err != nil {
			return nil, false, err
		}
		if !ok {
			t.missing = append(t.missing, domain.ParamDay)
			return nil, false, nil
		}
		item = t.working.FindByDayOrder(date, *ents.OrderInDay)
		if item == nil {
			return nil, false, errors.ErrPlanItemNotFound.WithMessage("no item %d on day %d", *ents.OrderInDay, t.working.DayNumber(date))
		}
	case name != "":
		item = findByName(t.working, name)
		if item == nil {
			return nil, false, errors.ErrPlanItemNotFound.WithMessage("%q is not in the plan", name)
		}
	case t.state.LastDestination != "":
		item = t.working.FindByDestination(t.state.LastDestination)
		if item == nil {
			return nil, false, errors.ErrPlanItemNotFound.WithMessage("the last mentioned place is not in the plan")
		}
	default:
		t.missing = append(t.missing, domain.ParamItem)
	}
	return item, usedDay, nil
}

// findByName - совпадение по id или имени без учёта регистра; оригиналы важнее повторов
func findByName(plan *domain.Plan, name string) *domain.PlanDestination {
	needle := strings.ToLower(strings.TrimSpace(name))
	var exact, partial, repeat *domain.PlanDestination
	for i := range plan.Destinations {
		d := &plan.Destinations[i]
		hay := strings.ToLower(d.Name)
		matched := d.DestinationID == name || hay == needle
		switch {
		case matched && !d.IsRepeated:
			if exact == nil {
				exact = d
			}
		case hay != "" && strings.Contains(hay, needle) && !d.IsRepeated:
			if partial == nil {
				partial = d
			}
		case matched || (hay != "" && strings.Contains(hay, needle)):
			if repeat == nil {
				repeat = d
			}
		}
	}
	switch {
	case exact != nil:
		return exact
	case partial != nil:
		return partial
	}
	return repeat
}

func (uc *PlannerUseCase) handleRemove(t *turn) error {
	if err := t.plan.CanEdit(t.userID); err != nil {
		return err
	}
	item, _, err := uc.locateItem(t, t.parsed.Entities.Target)
	if err != nil || item == nil {
		return err
	}
	name := item.Name
	mods, err := t.working.RemoveItem(item.ID)
	if err != nil {
		return err
	}
	t.edited = true
	t.mods = append(t.mods, tagPlanner(mods)...)
	t.message = fmt.Sprintf("Removed %s.", orID(name, mods[0].DestinationID))
	return nil
}

func (uc *PlannerUseCase) handleModifyTime(t *turn) error {
	if err := t.plan.CanEdit(t.userID); err != nil {
		return err
	}
	ents := t.parsed.Entities
	item, usedDay, err := uc.locateItem(t, ents.Target)
	if err != nil || item == nil {
		return err
	}

	var date *time.Time
	newDay := ents.Day
	if usedDay {
		newDay = ents.TargetDay
	}
	if newDay != nil {
		d, err := t.working.DayDate(*newDay)
		if err != nil {
			return err
		}
		date = &d
	}
	var slot *domain.TimeSlot
	if ents.TimeSlot != "" {
		s := ents.TimeSlot
		slot = &s
	}
	if date == nil && slot == nil {
		t.missing = append(t.missing, domain.ParamTime)
		return nil
	}

	mods, err := t.working.Reschedule(item.ID, date, slot, nil)
	if err != nil {
		return err
	}
	t.edited = len(mods) > 0
	t.mods = append(t.mods, tagPlanner(mods)...)
	if item.VisitDate != nil {
		t.state.LastDate = item.VisitDate.Format(domain.DateLayout)
	}
	t.state.LastDestination = item.DestinationID
	if len(mods) == 0 {
		t.message = fmt.Sprintf("%s is already scheduled there.", orID(item.Name, item.DestinationID))
	} else {
		t.message = fmt.Sprintf("Rescheduled %s.", orID(item.Name, item.DestinationID))
	}
	return nil
}

func (uc *PlannerUseCase) handleModifyDay(t *turn) error {
	if err := t.plan.CanEdit(t.userID); err != nil {
		return err
	}
	ents := t.parsed.Entities
	if ents.Day == nil {
		t.missing = append(t.missing, domain.ParamDay)
	}
	if ents.TargetDay == nil {
		t.missing = append(t.missing, domain.ParamTargetDay)
	}
	if len(t.missing) > 0 {
		return nil
	}
	mods, err := t.working.MoveDay(*ents.Day, *ents.TargetDay)
	if err != nil {
		return err
	}
	t.edited = len(mods) > 0
	t.mods = append(t.mods, tagPlanner(mods)...)
	if to, err := t.working.DayDate(*ents.TargetDay); err == nil {
		t.state.LastDate = to.Format(domain.DateLayout)
	}
	t.message = fmt.Sprintf("Moved day %d to day %d.", *ents.Day, *ents.TargetDay)
	return nil
}

func (uc *PlannerUseCase) handleModifyLocation(ctx context.Context, t *turn) error {
	if err := t.plan.CanEdit(t.userID); err != nil {
		return err
	}
	ents := t.parsed.Entities
	if ents.Location == "" {
		t.missing = append(t.missing, domain.ParamDestination)
		return nil
	}
	item, _, err := uc.locateItem(t, ents.Target)
	if err != nil || item == nil {
		return err
	}
	if item.IsRepeated {
		return errors.ErrInvalidRequest.WithMessage("%s is a repeat; change the original instead", orID(item.Name, item.DestinationID))
	}

	dest, err := uc.catalog.Resolve(ctx, ents.Location)
	if err != nil {
		return err
	}
	if dest.ID == item.DestinationID {
		t.message = fmt.Sprintf("%s is already in that slot.", dest.Name)
		return nil
	}

	// повторы старого места удаляются, расписание пункта сохраняется
	oldID, oldName := item.DestinationID, item.Name
	itemID := item.ID
	kept := t.working.Destinations[:0]
	for _, d := range t.working.Destinations {
		if d.IsRepeated && d.DestinationID == oldID {
			t.mods = append(t.mods, domain.Modification{Agent: domain.AgentPlanner, ItemID: d.ID.String(), DestinationID: d.DestinationID, Field: "removed", OldValue: domain.FormatDate(d.VisitDate)})
			continue
		}
		kept = append(kept, d)
	}
	t.working.Destinations = kept
	_, item = t.working.FindItem(itemID)

	item.DestinationID = dest.ID
	item.Name = dest.Name
	item.Kind = domain.KindFromPlaceTypes(dest.Types)
	t.mods = append(t.mods, domain.Modification{
		Agent:         domain.AgentPlanner,
		ItemID:        item.ID.String(),
		DestinationID: dest.ID,
		Field:         "destination_id",
		OldValue:      oldID,
		NewValue:      dest.ID,
	})
	for _, day := range uniqueDays(t.working) {
		t.mods = append(t.mods, tagPlanner(renumber(t.working, day))...)
	}
	t.edited = true
	t.state.LastDestination = dest.ID
	t.message = fmt.Sprintf("Replaced %s with %s.", orID(oldName, oldID), dest.Name)
	return nil
}

func (uc *PlannerUseCase) handleChangeBudget(t *turn) error {
	if err := t.plan.RequireOwner(t.userID); err != nil {
		return err
	}
	budget := t.parsed.Entities.Budget
	if budget == nil {
		t.missing = append(t.missing, domain.ParamBudget)
		return nil
	}
	if *budget < 0 {
		return errors.ErrNegativeBudget
	}
	old := ""
	if t.working.BudgetLimit != nil {
		if *t.working.BudgetLimit == *budget {
			t.message = fmt.Sprintf("Budget is already %.0f.", *budget)
			return nil
		}
		old = strconv.FormatFloat(*t.working.BudgetLimit, 'f', -1, 64)
	}
	b := *budget
	t.working.BudgetLimit = &b
	t.edited = true
	t.mods = append(t.mods, domain.Modification{
		Agent:    domain.AgentPlanner,
		Field:    "budget_limit",
		OldValue: old,
		NewValue: strconv.FormatFloat(b, 'f', -1, 64),
	})
	t.message = fmt.Sprintf("Budget set to %.0f.", b)
	return nil
}

func (uc *PlannerUseCase) handleSuggest(ctx context.Context, t *turn) error {
	ids, err := uc.recs.ForUser(ctx, t.userID, uc.cfg.Suggestions, true)
	if err != nil {
		if errors.KindOf(err) == errors.CodeNotFound {
			t.declined = true
			t.message = "Tell me your travel preferences first so I can suggest places."
			return nil
		}
		return err
	}
	places := uc.catalog.PlaceInfo(ctx, ids)
	for _, id := range ids {
		name := id
		if p, ok := places[id]; ok && p.Name != "" {
			name = p.Name
		}
		t.suggestions = append(t.suggestions, name)
	}
	if len(ids) == 0 {
		t.message = "I have no new places to suggest right now."
	} else {
		t.message = fmt.Sprintf("Here are %d places you might like.", len(ids))
	}
	return nil
}

func (uc *PlannerUseCase) handleSearch(ctx context.Context, t *turn) error {
	query := t.parsed.Entities.Location
	if query == "" {
		query = t.parsed.Entities.Target
	}
	if query == "" {
		t.missing = append(t.missing, domain.ParamQuery)
		return nil
	}
	places, err := uc.catalog.Search(ctx, query)
	if err != nil {
		return err
	}
	hits := make([]dto.SearchHit, 0, len(places))
	for _, p := range places {
		hits = append(hits, dto.SearchHit{DestinationID: p.PlaceID, Name: p.Name, Address: p.Address, Rating: p.Rating})
	}
	hits = uc.recs.Rerank(ctx, t.userID, hits)
	for _, h := range hits {
		t.suggestions = append(t.suggestions, orID(h.Name, h.DestinationID))
	}
	if len(hits) > 0 {
		t.state.LastDestination = hits[0].DestinationID
		t.message = fmt.Sprintf("Found %d places for %q.", len(hits), query)
	} else {
		t.message = fmt.Sprintf("Nothing found for %q.", query)
	}
	return nil
}

// askForMissing запоминает незавершённое намерение и просит недостающее
func (uc *PlannerUseCase) askForMissing(ctx context.Context, t *turn) (*dto.UtteranceResponse, error) {
	t.state.CurrentIntent = t.parsed.Intent
	t.state.PendingAction = strings.ToLower(string(t.parsed.Intent))
	t.state.MissingParams = t.missing
	if t.plan != nil {
		t.state.ActivePlanID = t.plan.ID.String()
	}
	if err := uc.stateRepo.Save(ctx, t.roomID, t.state); err != nil {
		uc.logger.Error("Failed to save conversation state", zap.String("room_id", t.roomID), zap.Error(err))
		return nil, err
	}

	var snap *domain.PlanSnapshot
	if t.plan != nil {
		s := domain.NewPlanSnapshot(t.plan)
		snap = &s
	}
	return &dto.UtteranceResponse{
		OK:            false,
		Message:       missingPrompt(t.parsed.Intent, t.missing),
		Plan:          snap,
		Warnings:      []domain.Warning{},
		Modifications: []domain.Modification{},
		Intent:        t.parsed,
		MissingParams: t.missing,
	}, nil
}

var paramQuestions = map[string]string{
	domain.ParamDestination: "which place",
	domain.ParamVisitDate:   "which day (for example \"day 2\")",
	domain.ParamItem:        "which item (for example \"item 2 day 1\")",
	domain.ParamBudget:      "the new budget amount",
	domain.ParamDay:         "which day to move",
	domain.ParamTargetDay:   "the day to move it to",
	domain.ParamQuery:       "what to search for",
	domain.ParamTime:        "the new day or time",
}

func missingPrompt(i domain.Intent, missing []string) string {
	parts := make([]string, 0, len(missing))
	for _, p := range missing {
		if q, ok := paramQuestions[p]; ok {
			parts = append(parts, q)
		} else {
			parts = append(parts, p)
		}
	}
	return fmt.Sprintf("To %s I still need %s.", strings.ToLower(strings.ReplaceAll(string(i), "_", " ")), strings.Join(parts, " and "))
}

// complete прогоняет агентов, сохраняет правку и состояние, собирает ответ
func (uc *PlannerUseCase) complete(ctx context.Context, t *turn, text string) (*dto.UtteranceResponse, error) {
	resp := &dto.UtteranceResponse{
		OK:            !t.declined,
		Intent:        t.parsed,
		Warnings:      []domain.Warning{},
		Modifications: nonNil(t.mods),
		Suggestions:   t.suggestions,
	}

	var snap *domain.PlanSnapshot
	if t.working != nil {
		s := snapshotWithPlaces(ctx, uc.catalog, t.working)
		report := uc.runner.Run(ctx, &s, strings.ToLower(string(t.parsed.Intent)))
		resp.Warnings = report.Warnings
		resp.Modifications = append(resp.Modifications, report.Modifications...)
		resp.Suggestions = append(resp.Suggestions, report.Suggestions...)
		snap = &s
	}

	if t.edited {
		if err := t.working.CheckInvariants(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, errors.ErrUpstreamTimeout.WithMessage("utterance cancelled before save: %v", err)
		}
		t.working.UpdatedAt = time.Now().UTC()
		if err := uc.planRepo.Save(ctx, t.working); err != nil {
			uc.logger.Error("Failed to save plan", zap.String("plan_id", t.working.ID.String()), zap.Error(err))
			return nil, err
		}
		uc.logger.Info("Plan edited",
			zap.String("plan_id", t.working.ID.String()),
			zap.String("intent", string(t.parsed.Intent)),
			zap.Int("modifications", len(t.mods)))
	}

	t.state.ClearPending()
	if t.working != nil {
		t.state.ActivePlanID = t.working.ID.String()
	}
	if err := uc.stateRepo.Save(ctx, t.roomID, t.state); err != nil {
		uc.logger.Warn("Failed to save conversation state", zap.String("room_id", t.roomID), zap.Error(err))
	}

	resp.Plan = snap
	resp.Message = uc.reply(ctx, t.roomID, text, t.message, snap, resp.Warnings, resp.Suggestions)
	return resp, nil
}

// reply - текст от LLM в пределах таймаута, иначе детерминированный шаблон
func (uc *PlannerUseCase) reply(ctx context.Context, roomID, utterance, base string, snap *domain.PlanSnapshot, warnings []domain.Warning, suggestions []string) string {
	if uc.generator == nil {
		return FallbackReply(base, snap, warnings, suggestions)
	}
	genCtx, cancel := context.WithTimeout(ctx, uc.cfg.ReplyTimeout)
	defer cancel()

	text, err := uc.generator.Generate(genCtx, replyPrompt(utterance, base, snap, warnings, suggestions))
	if err != nil || strings.TrimSpace(text) == "" {
		uc.logger.Warn("Reply generator failed, using template", zap.String("room_id", roomID), zap.Error(err))
		return FallbackReply(base, snap, warnings, suggestions)
	}
	return strings.TrimSpace(text)
}

func tagPlanner(mods []domain.Modification) []domain.Modification {
	for i := range mods {
		mods[i].Agent = domain.AgentPlanner
	}
	return mods
}

func orID(name, id string) string {
	if name != "" {
		return name
	}
	return id
}

func uniqueDays(plan *domain.Plan) []time.Time {
	seen := map[time.Time]bool{}
	var days []time.Time
	for _, d := range plan.Destinations {
		if d.VisitDate != nil && !seen[*d.VisitDate] {
			seen[*d.VisitDate] = true
			days = append(days, *d.VisitDate)
		}
	}
	return days
}

func renumber(plan *domain.Plan, day time.Time) []domain.Modification {
	var mods []domain.Modification
	for i, d := range plan.DayItems(day) {
		if d.OrderInDay != i+1 {
			mods = append(mods, domain.Modification{ItemID: d.ID.String(), DestinationID: d.DestinationID, Field: "order_in_day", OldValue: strconv.Itoa(d.OrderInDay), NewValue: strconv.Itoa(i + 1)})
			d.OrderInDay = i + 1
		}
	}
	return mods
}
