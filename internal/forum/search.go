package forum

import (
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/wuwenbin0122/fakeso/internal/models"
)

// Order names an arrangement of the question list.
type Order string

const (
	OrderNewest     Order = "newest"
	OrderUnanswered Order = "unanswered"
	OrderActive     Order = "active"
	OrderMostViewed Order = "mostViewed"
)

// ParseOrder falls back to OrderNewest for empty or unknown values.
func ParseOrder(raw string) Order {
	switch o := Order(strings.TrimSpace(raw)); o {
	case OrderUnanswered, OrderActive, OrderMostViewed:
		return o
	default:
		return OrderNewest
	}
}

// Apply returns the questions arranged by o. The input slice is not modified.
func (o Order) Apply(questions []models.PopulatedQuestion) []models.PopulatedQuestion {
	out := slices.Clone(questions)
	if out == nil {
		out = []models.PopulatedQuestion{}
	}

	byNewest := func(a, b models.PopulatedQuestion) int {
		return b.AskDateTime.Compare(a.AskDateTime)
	}

	switch o {
	case OrderUnanswered:
		out = lo.Filter(out, func(q models.PopulatedQuestion, _ int) bool { return len(q.Answers) == 0 })
		slices.SortStableFunc(out, byNewest)
	case OrderActive:
		slices.SortStableFunc(out, func(a, b models.PopulatedQuestion) int {
			la, lb := lastAnswered(a), lastAnswered(b)
			switch {
			case la.IsZero() && lb.IsZero():
				return byNewest(a, b)
			case la.IsZero():
				return 1
			case lb.IsZero():
				return -1
			}
			if c := lb.Compare(la); c != 0 {
				return c
			}
			return byNewest(a, b)
		})
	case OrderMostViewed:
		slices.SortStableFunc(out, func(a, b models.PopulatedQuestion) int {
			if c := len(b.Views) - len(a.Views); c != 0 {
				return c
			}
			return byNewest(a, b)
		})
	default:
		slices.SortStableFunc(out, byNewest)
	}

	return out
}

func lastAnswered(q models.PopulatedQuestion) time.Time {
	var latest time.Time
	for _, a := range q.Answers {
		if a.AnsDateTime.After(latest) {
			latest = a.AnsDateTime
		}
	}
	return latest
}

// Search is a parsed search string: bracketed words name tags, the rest are keywords.
type Search struct {
	Tags     []string
	Keywords []string
}

func ParseSearch(raw string) Search {
	var s Search
	for _, token := range strings.Fields(strings.ToLower(raw)) {
		if len(token) > 2 && strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]") {
			s.Tags = append(s.Tags, token[1:len(token)-1])
			continue
		}
		s.Keywords = append(s.Keywords, token)
	}
	return s
}

// Matches reports whether q carries any searched tag or contains any keyword in its
// title or text. An empty search matches everything.
func (s Search) Matches(q models.PopulatedQuestion) bool {
	if len(s.Tags) == 0 && len(s.Keywords) == 0 {
		return true
	}

	for _, tag := range q.Tags {
		if slices.Contains(s.Tags, strings.ToLower(tag.Name)) {
			return true
		}
	}

	title, text := strings.ToLower(q.Title), strings.ToLower(q.Text)
	return lo.SomeBy(s.Keywords, func(k string) bool {
		return strings.Contains(title, k) || strings.Contains(text, k)
	})
}
