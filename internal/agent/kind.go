package agent

import (
	"strings"
	"unicode"

	"github.com/trip-planner/internal/domain"
)

var restaurantKeywords = []string{
	"phở", "cơm", "bún", "bánh", "quán", "nhà hàng", "ăn",
	"restaurant", "cafe", "coffee", "food", "kitchen", "dining", "grill", "bistro", "buffet", "canteen",
}

// KindOf - вид пункта для планирования. Достопримечательность, в названии или заметке
// которой есть ресторанное слово, планируется как ресторан. Сохранённый вид не меняется.
func KindOf(declared domain.DestinationKind, texts ...string) domain.DestinationKind {
	if declared != domain.KindAttraction {
		return declared
	}
	for _, t := range texts {
		if containsRestaurantWord(strings.ToLower(t)) {
			return domain.KindRestaurant
		}
	}
	return declared
}

func effectiveKind(d *domain.DestinationSnapshot) domain.DestinationKind {
	return KindOf(domain.DestinationKind(d.Kind), d.Note, d.Name)
}

func containsRestaurantWord(s string) bool {
	words := strings.FieldsFunc(s, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
	joined := " " + strings.Join(words, " ") + " "
	for _, kw := range restaurantKeywords {
		if strings.Contains(joined, " "+kw+" ") {
			return true
		}
	}
	return false
}
