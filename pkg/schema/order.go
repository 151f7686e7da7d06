package schema

import "sort"

// Sorted returns a deep copy of the config with pages ordered by Order and
// every question list (follow-ups included) ordered by Order. Ties keep their
// declaration order.
func (c Config) Sorted() Config {
	pages := make([]Page, len(c.Pages))
	for i, page := range c.Pages {
		page.Questions = sortQuestions(page.Questions)
		if len(page.Widgets) > 0 {
			page.Widgets = append([]Widget(nil), page.Widgets...)
		}
		pages[i] = page
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Order < pages[j].Order
	})
	return Config{Pages: pages}
}

func sortQuestions(in []Question) []Question {
	if in == nil {
		return nil
	}
	out := make([]Question, len(in))
	for i, q := range in {
		q.Followups = sortQuestions(q.Followups)
		if len(q.Options) > 0 {
			q.Options = append([]Option(nil), q.Options...)
		}
		out[i] = q
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Order < out[j].Order
	})
	return out
}

// PageIndex resolves a page code to its position in the walk order. The config
// must already be sorted.
func (c Config) PageIndex(code string) (int, bool) {
	for i, page := range c.Pages {
		if page.Code == code {
			return i, true
		}
	}
	return -1, false
}

// Question finds a question by code anywhere in the config.
func (c Config) Question(code string) (Question, bool) {
	for _, page := range c.Pages {
		if q, ok := FindQuestion(page.Questions, code); ok {
			return q, true
		}
	}
	return Question{}, false
}

// FindQuestion searches a question tree by code.
func FindQuestion(questions []Question, code string) (Question, bool) {
	var (
		found Question
		ok    bool
	)
	Walk(questions, func(q Question, _ int) bool {
		if ok {
			return false
		}
		if q.Code == code {
			found, ok = q, true
			return false
		}
		return true
	})
	return found, ok
}
