package validation

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-intake/pkg/answers"
	"github.com/goliatone/go-intake/pkg/locale"
	"github.com/goliatone/go-intake/pkg/schema"
)

// Rule inspects one answer and reports a message when it fails. Rules only
// fire on present values unless they say otherwise.
type Rule func(q schema.Question, v answers.Value, m Messages) (string, bool)

// Messages resolves default texts for rules that have no override configured.
type Messages interface {
	Message(id string, data map[string]any) string
}

// Required fires when a required question has no answer.
func Required(q schema.Question, v answers.Value, m Messages) (string, bool) {
	if !q.Required || !v.Empty() {
		return "", false
	}
	return pick(q.RequiredError, m, locale.ValidationRequired, nil), true
}

// Pattern searches the answer with the question's expression. The match is
// unanchored unless the expression anchors itself. Expressions that do not
// compile never fire.
func Pattern(q schema.Question, v answers.Value, m Messages) (string, bool) {
	if q.Pattern == "" || v.Empty() {
		return "", false
	}
	re, ok := compile(q.Pattern)
	if !ok {
		return "", false
	}
	if re.MatchString(v.String()) {
		return "", false
	}
	return pick(q.PatternError, m, locale.ValidationPattern, nil), true
}

// NumberRange compares a numeric answer with min and max. When both fail the
// max message wins.
func NumberRange(q schema.Question, v answers.Value, m Messages) (string, bool) {
	if v.Empty() || (q.Min == nil && q.Max == nil) {
		return "", false
	}
	num, ok := parseNumber(v.Text())
	if !ok {
		return "", false
	}

	var (
		msg   string
		fired bool
	)
	if q.Min != nil {
		if lo, ok := q.Min.Float(); ok && num < lo {
			msg, fired = pick(q.MinError, m, locale.ValidationMinNumber, map[string]any{"Min": formatNumber(lo)}), true
		}
	}
	if q.Max != nil {
		if hi, ok := q.Max.Float(); ok && num > hi {
			msg, fired = pick(q.MaxError, m, locale.ValidationMaxNumber, map[string]any{"Max": formatNumber(hi)}), true
		}
	}
	return msg, fired
}

// DateRange compares a date answer with min and max as calendar times.
func DateRange(q schema.Question, v answers.Value, m Messages) (string, bool) {
	if v.Empty() || (q.Min == nil && q.Max == nil) {
		return "", false
	}
	when, ok := schema.ParseDate(v.Text())
	if !ok {
		return "", false
	}

	var (
		msg   string
		fired bool
	)
	if q.Min != nil {
		if lo, ok := q.Min.Time(); ok && when.Before(lo) {
			msg, fired = pick(q.MinError, m, locale.ValidationMinDate, map[string]any{"Min": q.Min.String()}), true
		}
	}
	if q.Max != nil {
		if hi, ok := q.Max.Time(); ok && when.After(hi) {
			msg, fired = pick(q.MaxError, m, locale.ValidationMaxDate, map[string]any{"Max": q.Max.String()}), true
		}
	}
	return msg, fired
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email checks the address shape when the question carries no pattern of its
// own.
func Email(q schema.Question, v answers.Value, m Messages) (string, bool) {
	if q.Pattern != "" || v.Empty() {
		return "", false
	}
	if emailPattern.MatchString(v.Text()) {
		return "", false
	}
	return pick(q.PatternError, m, locale.ValidationEmail, nil), true
}

// Length applies min and max as character counts to free-text answers.
func Length(q schema.Question, v answers.Value, m Messages) (string, bool) {
	if v.Empty() || (q.Min == nil && q.Max == nil) {
		return "", false
	}
	n := len([]rune(v.Text()))

	var (
		msg   string
		fired bool
	)
	if q.Min != nil {
		if lo, ok := q.Min.Float(); ok && float64(n) < lo {
			msg, fired = pick(q.MinError, m, locale.ValidationMinLength, map[string]any{"Min": formatNumber(lo), "Count": int(lo)}), true
		}
	}
	if q.Max != nil {
		if hi, ok := q.Max.Float(); ok && float64(n) > hi {
			msg, fired = pick(q.MaxError, m, locale.ValidationMaxLength, map[string]any{"Max": formatNumber(hi), "Count": int(hi)}), true
		}
	}
	return msg, fired
}

// Documents rechecks accepted types and size limits of a file answer. Counts
// and sizes are enforced at selection time; this covers answers restored from
// storage after the configuration changed.
func Documents(q schema.Question, v answers.Value, m Messages) (string, bool) {
	files := v.Files()
	if len(files) == 0 {
		return "", false
	}
	if q.MaxFilesAllowed > 0 && len(files) > q.MaxFilesAllowed {
		return m.Message(locale.FilesTooMany, map[string]any{"Max": q.MaxFilesAllowed, "Count": q.MaxFilesAllowed}), true
	}
	for _, f := range files {
		if q.MaxFileSize > 0 && float64(f.Size) > q.MaxFileSize*1024*1024 {
			return m.Message(locale.ValidationFileSize, map[string]any{"Max": formatNumber(q.MaxFileSize)}), true
		}
		if len(q.Filetype) > 0 && !Accepts(q.Filetype, f) {
			label := f.Type
			if label == "" {
				label = f.Name
			}
			return m.Message(locale.ValidationFileType, map[string]any{"Type": label}), true
		}
	}
	return "", false
}

// Accepts matches a file against accept-style entries: exact MIME types,
// wildcard families such as image/*, and extensions with or without the dot.
func Accepts(accept []string, f answers.File) bool {
	ext := ""
	if idx := strings.LastIndex(f.Name, "."); idx >= 0 {
		ext = strings.ToLower(f.Name[idx:])
	}
	mime := strings.ToLower(f.Type)
	for _, raw := range accept {
		entry := strings.ToLower(strings.TrimSpace(raw))
		switch {
		case entry == "":
			continue
		case strings.HasPrefix(entry, "."):
			if entry == ext {
				return true
			}
		case strings.HasSuffix(entry, "/*"):
			if mime != "" && strings.HasPrefix(mime, strings.TrimSuffix(entry, "*")) {
				return true
			}
		case !strings.Contains(entry, "/"):
			if "."+entry == ext {
				return true
			}
		default:
			if entry == mime {
				return true
			}
		}
	}
	return false
}

func pick(override string, m Messages, id string, data map[string]any) string {
	if override != "" {
		return override
	}
	return m.Message(id, data)
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var patternCache sync.Map

func compile(expr string) (*regexp.Regexp, bool) {
	if cached, ok := patternCache.Load(expr); ok {
		re, _ := cached.(*regexp.Regexp)
		return re, re != nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		patternCache.Store(expr, (*regexp.Regexp)(nil))
		return nil, false
	}
	patternCache.Store(expr, re)
	return re, true
}
