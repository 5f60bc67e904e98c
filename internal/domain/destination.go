package domain

import (
	"strconv"
	"strings"
	"time"
)

// Destination - запись каталога мест (внешний place id как ключ)
type Destination struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Types           []string      `json:"types,omitempty"`
	Address         string        `json:"address,omitempty"`
	Rating          *float64      `json:"rating,omitempty"`
	Description     string        `json:"description,omitempty"`
	PhotoURL        string        `json:"photo_url,omitempty"`
	OpeningHours    *OpeningHours `json:"opening_hours,omitempty"`
	TypicalDuration time.Duration `json:"typical_duration,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// PlaceDetails - ответ Place Resolver
type PlaceDetails struct {
	PlaceID      string        `json:"place_id"`
	Name         string        `json:"name"`
	Types        []string      `json:"types,omitempty"`
	Address      string        `json:"address,omitempty"`
	Rating       *float64      `json:"rating,omitempty"`
	Photos       []string      `json:"photos,omitempty"`
	OpeningHours *OpeningHours `json:"opening_hours,omitempty"`
	Description  string        `json:"description,omitempty"`
}

func (p *PlaceDetails) ToDestination() Destination {
	d := Destination{
		ID:           p.PlaceID,
		Name:         p.Name,
		Types:        p.Types,
		Address:      p.Address,
		Rating:       p.Rating,
		Description:  p.Description,
		OpeningHours: p.OpeningHours,
	}
	if len(p.Photos) > 0 {
		d.PhotoURL = p.Photos[0]
	}
	return d
}

// KindFromPlaceTypes сводит типы Google Places к виду пункта плана.
func KindFromPlaceTypes(types []string) DestinationKind {
	for _, t := range types {
		switch t {
		case "restaurant", "cafe", "food", "bakery", "bar", "meal_takeaway", "meal_delivery":
			return KindRestaurant
		case "lodging", "hotel", "hostel", "campground", "rv_park":
			return KindAccommodation
		case "transit_station", "bus_station", "train_station", "airport", "subway_station", "taxi_stand", "ferry_terminal":
			return KindTransport
		}
	}
	return KindAttraction
}

const (
	minutesPerDay  = 24 * 60
	minutesPerWeek = 7 * minutesPerDay
)

type OpeningHours struct {
	Periods []OpeningPeriod `json:"periods"`
}

// OpeningPeriod - интервал работы; время в формате HHMM. Пустое Close означает круглосуточно.
type OpeningPeriod struct {
	OpenDay   time.Weekday `json:"open_day"`
	OpenTime  string       `json:"open_time"`
	CloseDay  time.Weekday `json:"close_day"`
	CloseTime string       `json:"close_time,omitempty"`
}

// SlotWindow - окно слота в минутах от полуночи
func SlotWindow(slot TimeSlot) (from, to int) {
	switch slot {
	case SlotMorning:
		return 6 * 60, 12 * 60
	case SlotAfternoon:
		return 12 * 60, 18 * 60
	case SlotEvening:
		return 18 * 60, 23 * 60
	}
	return 0, minutesPerDay
}

func parseHHMM(s string) (int, bool) {
	s = strings.ReplaceAll(s, ":", "")
	if len(s) != 4 {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	h, m := v/100, v%100
	if h > 24 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// OpenDuring сообщает, пересекается ли хотя бы один период работы с окном [from, to) дня day.
// Пустое расписание считается неизвестным и трактуется как "открыто".
func (h *OpeningHours) OpenDuring(day time.Weekday, from, to int) bool {
	if h == nil || len(h.Periods) == 0 {
		return true
	}
	wFrom := int(day)*minutesPerDay + from
	wTo := int(day)*minutesPerDay + to
	for _, p := range h.Periods {
		open, ok := parseHHMM(p.OpenTime)
		if !ok {
			continue
		}
		if p.CloseTime == "" {
			return true
		}
		closeMin, ok := parseHHMM(p.CloseTime)
		if !ok {
			continue
		}
		start := int(p.OpenDay)*minutesPerDay + open
		end := int(p.CloseDay)*minutesPerDay + closeMin
		if end <= start {
			end += minutesPerWeek
		}
		for _, shift := range []int{0, minutesPerWeek, -minutesPerWeek} {
			if start+shift < wTo && wFrom < end+shift {
				return true
			}
		}
	}
	return false
}
