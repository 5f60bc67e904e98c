package utils

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/trip-planner/internal/pkg/errors"
)

// isoDuration - ISO 8601 без лет и месяцев: P1D, PT3H, PT1H30M, PT45.5S
var isoDuration = regexp.MustCompile(`^P(?:(\d+(?:\.\d+)?)D)?(?:T(?:(\d+(?:\.\d+)?)H)?(?:(\d+(?:\.\d+)?)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// ParseDuration разбирает длительность, которую внешние API отдают в разных формах:
// число секунд, {"seconds": n}, {"value": n}, строку "123s" или ISO 8601 ("PT3H").
func ParseDuration(v interface{}) (time.Duration, error) {
	switch t := v.(type) {
	case nil:
		return 0, errors.ErrInvalidDuration
	case float64:
		return secondsToDuration(t)
	case float32:
		return secondsToDuration(float64(t))
	case int:
		return secondsToDuration(float64(t))
	case int64:
		return secondsToDuration(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, errors.ErrInvalidDuration.Wrap(err)
		}
		return secondsToDuration(f)
	case string:
		s := strings.TrimSpace(t)
		if strings.HasPrefix(strings.ToUpper(s), "P") {
			return parseISODuration(strings.ToUpper(s))
		}
		s = strings.TrimSuffix(s, "s")
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, errors.ErrInvalidDuration.Wrap(err)
		}
		return secondsToDuration(f)
	case map[string]interface{}:
		if sec, ok := t["seconds"]; ok {
			return ParseDuration(sec)
		}
		if val, ok := t["value"]; ok {
			return ParseDuration(val)
		}
		return 0, errors.ErrInvalidDuration
	case json.RawMessage:
		if len(t) == 0 {
			return 0, errors.ErrInvalidDuration
		}
		var decoded interface{}
		if err := json.Unmarshal(t, &decoded); err != nil {
			return 0, errors.ErrInvalidDuration.Wrap(err)
		}
		return ParseDuration(decoded)
	default:
		return 0, errors.ErrInvalidDuration
	}
}

func parseISODuration(s string) (time.Duration, error) {
	m := isoDuration.FindStringSubmatch(s)
	if m == nil || s == "P" || strings.HasSuffix(s, "T") {
		return 0, errors.ErrInvalidDuration
	}
	units := []float64{86400, 3600, 60, 1}
	total := 0.0
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		f, err := strconv.ParseFloat(m[i+1], 64)
		if err != nil {
			return 0, errors.ErrInvalidDuration.Wrap(err)
		}
		total += f * unit
	}
	return secondsToDuration(total)
}

func secondsToDuration(sec float64) (time.Duration, error) {
	if sec < 0 || math.IsNaN(sec) || math.IsInf(sec, 0) {
		return 0, errors.ErrInvalidDuration
	}
	return time.Duration(sec * float64(time.Second)), nil
}
