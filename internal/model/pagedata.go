package model

import "html/template"

// ArticleData is the view of an article handed to templates.
type ArticleData struct {
	Title    string
	Date     string
	Contents template.HTML
	Filename string
	Summary  string
	Params   map[string]any
}

// BuildContext is the data the index template is executed with.
type BuildContext struct {
	Title    string
	Articles []ArticleData
}

// NewArticleData converts an article for template execution.
func NewArticleData(a *Article) ArticleData {
	return ArticleData{
		Title:    a.Title,
		Date:     a.FormattedDate(),
		Contents: a.Contents,
		Filename: a.Filename,
		Summary:  a.Summary,
		Params:   a.Params,
	}
}

// NewBuildContext builds the index context from already ordered articles.
func NewBuildContext(siteTitle string, articles []*Article) BuildContext {
	data := make([]ArticleData, 0, len(articles))
	for _, a := range articles {
		data = append(data, NewArticleData(a))
	}
	return BuildContext{Title: siteTitle, Articles: data}
}
