// Package intent классифицирует реплики пользователя (вьетнамский и английский)
// в операции над планом.
package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/trip-planner/internal/domain"
	"golang.org/x/text/unicode/norm"
)

// MinConfidence - ниже этого порога результат UNKNOWN
const MinConfidence = 0.5

const (
	lengthBonusPerRune = 0.015
	maxLengthBonus     = 0.15
	entityBonus        = 0.1
)

var (
	dayRe    = regexp.MustCompile(`(?:^|[^\p{L}])(?:ngày|day)\s*(?:thứ\s*|số\s*|#)?(\d{1,2})(?:[^\d]|$)`)
	timeRe   = regexp.MustCompile(`(?:^|[^\d])([01]?\d|2[0-3])\s*(?::([0-5]\d)|h([0-5]\d)?|\s*giờ(?:\s*([0-5]\d))?)(?:[^\p{L}\d]|$)`)
	orderRe  = regexp.MustCompile(`(?:^|[^\p{L}])(?:item|mục|số|vị trí|thứ tự|position|#)\s*(\d{1,2})(?:[^\d]|$)`)
	amountRe = regexp.MustCompile(`(\$)?\s*(\d+(?:[.,]\d+)*)\s*(k|nghìn|ngàn|triệu|tr|million|m|vnd|vnđ|đồng|đ|usd|\$)?(?:[^\p{L}\d]|$)`)
	// "thay X bằng Y" / "replace X with Y"
	replaceRe = regexp.MustCompile(`(?:thay thế|thay|replace|swap)\s+(.+?)\s+(?:bằng|thành|with|by|for)\s+(.+)`)
	thousands = regexp.MustCompile(`^\d{1,3}([.,]\d{3})+$`)
)

// Parser - детерминированный классификатор без состояния, безопасен для конкурентного использования.
type Parser struct {
	rules []rule
}

func NewParser() *Parser {
	return &Parser{rules: rules}
}

// utterance - исходный и нижний регистр текста с совпадающими позициями рун
type utterance struct {
	orig  []rune
	lower []rune
	text  string
}

func newUtterance(text string) *utterance {
	text = norm.NFC.String(strings.TrimSpace(text))
	text = strings.Join(strings.Fields(text), " ")
	orig := []rune(text)
	lower := make([]rune, len(orig))
	for i, r := range orig {
		lower[i] = unicode.ToLower(r)
	}
	return &utterance{orig: orig, lower: lower, text: string(lower)}
}

// runeIndex переводит байтовое смещение в lower-строке в индекс руны
func (u *utterance) runeIndex(byteOff int) int {
	return utf8.RuneCountInString(u.text[:byteOff])
}

func (u *utterance) original(byteStart, byteEnd int) string {
	return string(u.orig[u.runeIndex(byteStart):u.runeIndex(byteEnd)])
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

// findWord ищет ключевое слово по границам слов, возвращает индекс первой руны или -1.
func findWord(hay []rune, word string, from int) int {
	w := []rune(word)
	for i := from; i+len(w) <= len(hay); i++ {
		match := true
		for j, r := range w {
			if hay[i+j] != r {
				match = false
				break
			}
		}
		if !match {
			continue
		}
		if i > 0 && isWordRune(hay[i-1]) && isWordRune(w[0]) {
			continue
		}
		end := i + len(w)
		if end < len(hay) && isWordRune(hay[end]) && isWordRune(w[len(w)-1]) {
			continue
		}
		return i
	}
	return -1
}

type candidate struct {
	intent     domain.Intent
	confidence float64
	keyword    string
	at         int
}

// Parse разбирает фразу. Никогда не возвращает ошибку: неоднозначность - это UNKNOWN.
func (p *Parser) Parse(text string) domain.ParsedIntent {
	u := newUtterance(text)
	result := domain.ParsedIntent{Intent: domain.IntentUnknown, Text: text}
	if len(u.orig) == 0 {
		return result
	}

	ents := extractEntities(u)

	var best *candidate
	for i := range p.rules {
		r := &p.rules[i]
		c := p.score(u, r, &ents)
		if c == nil {
			continue
		}
		if best == nil || c.confidence > best.confidence ||
			(c.confidence == best.confidence && utf8.RuneCountInString(c.keyword) > utf8.RuneCountInString(best.keyword)) {
			best = c
		}
	}

	if best != nil {
		fillPhrases(u, best.intent, best.at+utf8.RuneCountInString(best.keyword), &ents)
	}

	result.Entities = ents
	if best == nil || best.confidence < MinConfidence {
		return result
	}
	result.Intent = best.intent
	result.Confidence = best.confidence
	result.Keyword = best.keyword
	return result
}

// score выбирает самое длинное совпавшее слово правила и считает уверенность.
func (p *Parser) score(u *utterance, r *rule, ents *domain.Entities) *candidate {
	keyword, at := longestMatch(u.lower, r.strong)
	if keyword == "" && r.anchor != nil {
		if ents.Location == "" && r.intent == domain.IntentAdd {
			// для ADD якорь - название места после слова
			if kw, pos := longestMatch(u.lower, r.weak); kw != "" && phraseAfter(u, pos+utf8.RuneCountInString(kw)) != "" {
				keyword, at = kw, pos
			}
		} else if r.anchor(ents) {
			keyword, at = longestMatch(u.lower, r.weak)
		}
	}
	if keyword == "" {
		return nil
	}

	conf := r.base + lengthBonus(keyword)
	withPhrases := *ents
	fillPhrases(u, r.intent, at+utf8.RuneCountInString(keyword), &withPhrases)
	if r.bonus != nil && r.bonus(&withPhrases) {
		conf += entityBonus
	}
	if conf > 1 {
		conf = 1
	}
	return &candidate{intent: r.intent, confidence: conf, keyword: keyword, at: at}
}

func lengthBonus(keyword string) float64 {
	b := float64(utf8.RuneCountInString(keyword)) * lengthBonusPerRune
	if b > maxLengthBonus {
		return maxLengthBonus
	}
	return b
}

func longestMatch(hay []rune, words []string) (string, int) {
	best, at := "", -1
	for _, w := range words {
		if utf8.RuneCountInString(w) <= utf8.RuneCountInString(best) {
			continue
		}
		if i := findWord(hay, w, 0); i >= 0 {
			best, at = w, i
		}
	}
	return best, at
}

// fillPhrases дополняет сущности названиями из текста после ключевого слова
func fillPhrases(u *utterance, i domain.Intent, start int, e *domain.Entities) {
	switch i {
	case domain.IntentAdd, domain.IntentSearchDestination:
		if e.Location == "" {
			e.Location = phraseAfter(u, start)
		}
	case domain.IntentRemove:
		if e.Target == "" && e.OrderInDay == nil {
			e.Target = phraseAfter(u, start)
		}
	case domain.IntentModifyTime:
		// "move Ben Thanh Market to day 3": пункт между глаголом и новым временем
		if e.Target == "" && e.OrderInDay == nil {
			e.Target = targetPhrase(u, start)
		}
	case domain.IntentModifyLocation:
		// "change location of Saigon Zoo to Landmark 81"
		if e.Target == "" && e.OrderInDay == nil {
			e.Target = targetPhrase(u, start)
		}
		if e.Location == "" {
			if at := firstWord(u.lower, replacementConnectors, start); at >= 0 {
				if loc := phraseAfter(u, at); !scheduleOnly(loc) {
					e.Location = loc
				}
			}
		}
	}
}

// targetPhrase - название пункта плана; время, день и местоимения целью не считаются
func targetPhrase(u *utterance, start int) string {
	phrase := phraseUntil(u, start, targetStops)
	if scheduleOnly(phrase) || pronouns[strings.ToLower(phrase)] {
		return ""
	}
	return phrase
}

// firstWord - позиция сразу после самого раннего из слов, или -1
func firstWord(hay []rune, words []string, from int) int {
	best, end := -1, -1
	for _, w := range words {
		if i := findWord(hay, w, from); i >= 0 && (best < 0 || i < best) {
			best, end = i, i+utf8.RuneCountInString(w)
		}
	}
	return end
}

// scheduleOnly - во фразе нет ничего, кроме дня, времени, порядкового номера и слов о части дня
func scheduleOnly(phrase string) bool {
	s := strings.ToLower(phrase)
	for _, re := range []*regexp.Regexp{dayRe, timeRe, orderRe} {
		s = re.ReplaceAllString(s, " ")
	}
	for _, words := range slotWords {
		for _, w := range words {
			s = strings.ReplaceAll(s, w, " ")
		}
	}
	for _, f := range strings.Fields(s) {
		if scheduleFillers[f] {
			continue
		}
		for _, r := range f {
			if unicode.IsLetter(r) {
				return false
			}
		}
	}
	return true
}

// phraseAfter - текст после ключевого слова до первого стоп-маркера, в исходном регистре.
func phraseAfter(u *utterance, start int) string {
	return phraseUntil(u, start, locationStops)
}

func phraseUntil(u *utterance, start int, stops []string) string {
	if start >= len(u.lower) {
		return ""
	}
	end := len(u.lower)
	for _, stop := range stops {
		if i := findWord(u.lower, stop, start); i >= 0 && i < end {
			end = i
		}
	}
	phrase := strings.TrimSpace(string(u.orig[start:end]))
	lowered := strings.ToLower(phrase)
	for _, f := range leadingFillers {
		if strings.HasPrefix(lowered, f) {
			phrase = strings.TrimSpace(phrase[len(f):])
			lowered = strings.ToLower(phrase)
		}
	}
	return strings.Trim(phrase, " \"'“”")
}

func extractEntities(u *utterance) domain.Entities {
	var e domain.Entities
	masked := u.text

	dayMatches := dayRe.FindAllStringSubmatchIndex(masked, -1)
	for i, m := range dayMatches {
		n, _ := strconv.Atoi(masked[m[2]:m[3]])
		switch i {
		case 0:
			e.Day = &n
		case 1:
			e.TargetDay = &n
		}
	}
	masked = mask(masked, dayMatches)

	if m := timeRe.FindStringSubmatchIndex(masked); m != nil {
		h, _ := strconv.Atoi(masked[m[2]:m[3]])
		mins := 0
		for _, g := range []int{4, 6, 8} {
			if m[g] >= 0 {
				mins, _ = strconv.Atoi(masked[m[g]:m[g+1]])
			}
		}
		e.Time = twoDigits(h) + ":" + twoDigits(mins)
		e.TimeSlot = SlotForHour(h)
		masked = mask(masked, [][]int{m})
	}

	if m := orderRe.FindStringSubmatchIndex(masked); m != nil {
		n, _ := strconv.Atoi(masked[m[2]:m[3]])
		e.OrderInDay = &n
		masked = mask(masked, [][]int{m})
	}

	if e.TimeSlot == "" {
		e.TimeSlot = detectSlot(u)
	}

	if amount, currency, ok := extractBudget(masked); ok {
		e.Budget = &amount
		e.Currency = currency
	}

	if m := replaceRe.FindStringSubmatchIndex(u.text); m != nil {
		target := strings.TrimSpace(u.original(m[2], m[3]))
		loc := phraseAfter(u, u.runeIndex(m[4]))
		if target != "" && loc != "" {
			e.Target = target
			e.Location = loc
		}
	}
	return e
}

// mask заменяет совпадения пробелами той же байтовой длины
func mask(s string, matches [][]int) string {
	if len(matches) == 0 {
		return s
	}
	b := []byte(s)
	for _, m := range matches {
		for i := m[0]; i < m[1]; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// SlotForHour: до 12 - утро, до 18 - день, иначе вечер
func SlotForHour(h int) domain.TimeSlot {
	switch {
	case h < 12:
		return domain.SlotMorning
	case h < 18:
		return domain.SlotAfternoon
	default:
		return domain.SlotEvening
	}
}

func detectSlot(u *utterance) domain.TimeSlot {
	lower := []rune(strings.ReplaceAll(string(u.lower), "tối đa", strings.Repeat(" ", 6)))
	type hit struct {
		slot domain.TimeSlot
		at   int
	}
	var hits []hit
	for slot, words := range slotWords {
		for _, w := range words {
			if i := findWord(lower, w, 0); i >= 0 {
				hits = append(hits, hit{slot: slot, at: i})
			}
		}
	}
	if len(hits) == 0 {
		return ""
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].at != hits[j].at {
			return hits[i].at < hits[j].at
		}
		return hits[i].slot.Rank() < hits[j].slot.Rank()
	})
	return hits[0].slot
}

// extractBudget ищет сумму. Без единицы измерения число считается бюджетом
// только если в тексте есть слово про бюджет.
func extractBudget(s string) (float64, string, bool) {
	hasBudgetWord := false
	for _, w := range budgetWords {
		if strings.Contains(s, w) {
			hasBudgetWord = true
			break
		}
	}
	matches := amountRe.FindAllStringSubmatch(s, -1)
	// сначала суммы с единицей измерения, затем голые числа
	for _, withUnit := range []bool{true, false} {
		if !withUnit && !hasBudgetWord {
			break
		}
		for _, m := range matches {
			prefix, number, unit := m[1], m[2], m[3]
			if withUnit != (unit != "" || prefix != "") {
				continue
			}
			v, ok := parseNumber(number)
			if !ok {
				continue
			}
			currency := "VND"
			switch unit {
			case "k", "nghìn", "ngàn":
				v *= 1_000
			case "triệu", "tr", "million", "m":
				v *= 1_000_000
			case "usd", "$":
				currency = "USD"
			}
			if prefix == "$" {
				currency = "USD"
			}
			return v, currency, true
		}
	}
	return 0, "", false
}

func parseNumber(s string) (float64, bool) {
	if thousands.MatchString(s) {
		s = strings.NewReplacer(".", "", ",", "").Replace(s)
	} else {
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
