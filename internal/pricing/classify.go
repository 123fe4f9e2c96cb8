package pricing

import "strings"

// DefaultRelevanceKeywords mark page content as pricing related.
var DefaultRelevanceKeywords = []string{"price", "package", "fee", "$"}

// Classifier decides whether a URL or its content carries pricing information.
type Classifier struct {
	keywords []string
}

// NewClassifier creates a classifier for keywords. Empty keywords use the defaults.
func NewClassifier(keywords []string) Classifier {
	if len(keywords) == 0 {
		keywords = DefaultRelevanceKeywords
	}
	lowered := make([]string, len(keywords))
	for i, kw := range keywords {
		lowered[i] = strings.ToLower(kw)
	}
	return Classifier{keywords: lowered}
}

// IsRelevant reports whether url points at a PDF or content mentions a pricing keyword.
// Empty strings mean the value is absent.
func (c Classifier) IsRelevant(url, content string) bool {
	if strings.HasSuffix(strings.ToLower(url), ".pdf") {
		return true
	}
	if content == "" {
		return false
	}
	text := strings.ToLower(content)
	for _, kw := range c.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
