package yamlrulebook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aalvaropc/diagroute/internal/domain"
)

// mapRulebook validates yr and layers it over base. Categories present in yr
// replace the base list; topics, when given, replace the base topics.
func mapRulebook(path string, yr yamlRulebook, base domain.Rulebook) (domain.Rulebook, error) {
	rb := domain.Rulebook{
		Name:         base.Name,
		DefaultTopic: base.DefaultTopic,
		Vocabulary:   make(map[domain.Category][]string, len(base.Vocabulary)),
		Topics:       append([]domain.TopicRule(nil), base.Topics...),
	}
	for c, words := range base.Vocabulary {
		rb.Vocabulary[c] = append([]string(nil), words...)
	}

	if strings.TrimSpace(yr.Name) != "" {
		rb.Name = strings.TrimSpace(yr.Name)
	}
	if strings.TrimSpace(yr.DefaultTopic) != "" {
		rb.DefaultTopic = strings.TrimSpace(yr.DefaultTopic)
	}

	// Sorted for deterministic error reporting.
	cats := make([]string, 0, len(yr.Vocabulary))
	for c := range yr.Vocabulary {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	for _, name := range cats {
		cat := domain.Category(strings.TrimSpace(name))
		field := "vocabulary." + name
		if !cat.Known() {
			return domain.Rulebook{}, invalidField(path, field, "unknown category")
		}

		words := yr.Vocabulary[name]
		if len(words) == 0 {
			return domain.Rulebook{}, invalidField(path, field, "at least one keyword is required")
		}
		clean := make([]string, 0, len(words))
		for i, w := range words {
			w = strings.TrimSpace(w)
			if w == "" || w == "$" {
				return domain.Rulebook{}, invalidField(path, fmt.Sprintf("%s[%d]", field, i), "keyword is empty")
			}
			clean = append(clean, w)
		}
		rb.Vocabulary[cat] = clean
	}

	if len(yr.Topics) > 0 {
		rb.Topics = make([]domain.TopicRule, 0, len(yr.Topics))
		for i, t := range yr.Topics {
			field := fmt.Sprintf("topics[%d]", i)
			if strings.TrimSpace(t.Topic) == "" {
				return domain.Rulebook{}, invalidField(path, field+".topic", "topic name is required")
			}
			if len(t.Categories) == 0 {
				return domain.Rulebook{}, invalidField(path, field+".categories", "at least one category is required")
			}
			tr := domain.TopicRule{Topic: strings.TrimSpace(t.Topic)}
			for j, c := range t.Categories {
				cat := domain.Category(strings.TrimSpace(c))
				if !cat.Known() {
					return domain.Rulebook{}, invalidField(path, fmt.Sprintf("%s.categories[%d]", field, j), fmt.Sprintf("unknown category %q", c))
				}
				tr.Categories = append(tr.Categories, cat)
			}
			rb.Topics = append(rb.Topics, tr)
		}
	}

	return rb, nil
}

func invalidField(path, field, msg string) error {
	return &domain.OpError{
		Op:   "yamlrulebook.validate",
		Kind: domain.KindInvalidConfig,
		Path: path,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, domain.ErrInvalidConfig),
	}
}
