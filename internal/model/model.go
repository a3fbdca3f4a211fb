package model

import (
	"html/template"
	"slices"
	"strings"
	"time"
)

// DateLayout is the display format of an article date.
const DateLayout = "2006-01-02"

// Article represents one published post.
type Article struct {
	Title    string
	Date     time.Time
	Contents template.HTML
	// Filename is the output page name, "<date><suffix>.html".
	Filename string
	Source   string
	Summary  string
	Params   map[string]any
}

// FormattedDate returns the article date as YYYY-MM-DD.
func (a *Article) FormattedDate() string {
	return a.Date.Format(DateLayout)
}

// SortArticles orders articles by Filename, ascending. Filenames start with a
// zero-padded date, so this is also chronological order.
func SortArticles(articles []*Article) {
	slices.SortStableFunc(articles, func(a, b *Article) int {
		return strings.Compare(a.Filename, b.Filename)
	})
}
