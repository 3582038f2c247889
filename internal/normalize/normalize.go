package normalize

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var spacesRe = regexp.MustCompile(`\s+`)

type Options struct {
	TrimNBSP        bool `yaml:"trim_nbsp"`
	CollapseSpaces  bool `yaml:"collapse_spaces"`
	MaxPreviewChars int  `yaml:"max_preview_chars"`
}

type Normalizer struct {
	opts Options
}

func NewNormalizer(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// CleanText приводит текст заголовка к виду, пригодному для сравнения и вывода
func (n *Normalizer) CleanText(text string) string {
	if n.opts.TrimNBSP {
		// Заменяем NBSP (\u00A0) на обычный пробел
		text = strings.ReplaceAll(text, "\u00A0", " ")
	}

	if n.opts.CollapseSpaces {
		text = spacesRe.ReplaceAllString(text, " ")
	}

	return strings.TrimSpace(text)
}

// TruncatePreview обрезает текст по ширине отображения (CJK и эмодзи занимают две колонки)
func (n *Normalizer) TruncatePreview(text string) string {
	limit := n.opts.MaxPreviewChars
	if limit <= 0 || runewidth.StringWidth(text) <= limit {
		return text
	}

	// Находим последний пробел перед лимитом
	truncated := runewidth.Truncate(text, limit-1, "")
	if lastSpace := strings.LastIndex(truncated, " "); lastSpace > 0 {
		truncated = truncated[:lastSpace]
	}

	return truncated + "…"
}
