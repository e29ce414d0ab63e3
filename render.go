package inkwell

import (
	"fmt"
	"html"
	"strings"

	"github.com/inkwell-blog/inkwell/blog"
)

// The render functions are a deliberately plain stand-in for a template
// engine: each context type becomes an HTML page string that the express
// envelope then ships.

func renderPage(siteTitle string, meta PageMeta, body string) string {
	var b strings.Builder
	b.Grow(len(body) + 512)
	b.WriteString("<!DOCTYPE html>\n<html><head><title>")
	b.WriteString(html.EscapeString(meta.Title))
	b.WriteString(" - ")
	b.WriteString(html.EscapeString(siteTitle))
	b.WriteString("</title></head>\n<body>\n<h1>")
	b.WriteString(html.EscapeString(meta.Title))
	b.WriteString("</h1>\n")
	b.WriteString(body)
	b.WriteString(fmt.Sprintf(
		"\n<footer>%d page views &middot; %d total views &middot; generated in %s</footer>",
		meta.PageHits, meta.TotalHits, meta.Generated))
	b.WriteString("\n</body></html>\n")
	return b.String()
}

func alertDanger(msg string) string {
	return `<div class="alert alert-danger">` + html.EscapeString(msg) + "</div>"
}

func renderArticleSummary(b *strings.Builder, a blog.Article) {
	b.WriteString(`<div class="article-summary"><h2><a href="/article/`)
	fmt.Fprintf(b, "%d", a.AID)
	b.WriteString(`">`)
	b.WriteString(html.EscapeString(a.Title))
	b.WriteString("</a></h2><p>")
	desc := a.Description
	if desc == "" {
		desc = blog.Truncate(a.Body, blog.DescriptionLimit)
	}
	b.WriteString(html.EscapeString(desc))
	b.WriteString("</p><small>by ")
	b.WriteString(html.EscapeString(a.UserName))
	b.WriteString(" on ")
	b.WriteString(a.Posted.Format("2006-01-02"))
	b.WriteString("</small></div>\n")
}

func renderArticles(siteTitle string, ctx ArticlesContext) string {
	var b strings.Builder
	for _, a := range ctx.Articles {
		renderArticleSummary(&b, a)
	}
	b.WriteString("<p>")
	b.WriteString(ctx.Info)
	b.WriteString("</p>\n")
	b.WriteString(ctx.Navigation)
	return renderPage(siteTitle, ctx.Meta, b.String())
}

func renderArticle(siteTitle string, ctx ArticleContext) string {
	a := ctx.Article
	var b strings.Builder
	b.Grow(len(a.Body) + 256)
	if a.Image != "" {
		b.WriteString(`<img src="`)
		b.WriteString(html.EscapeString(a.Image))
		b.WriteString("\">\n")
	}
	b.WriteString(`<div class="article-body">`)
	// body is markdown-rendered or raw HTML upstream of the store
	b.WriteString(a.Body)
	b.WriteString("</div>\n<p>Tags:")
	for _, tag := range a.Tags {
		b.WriteString(` <a href="/tag/`)
		b.WriteString(html.EscapeString(strings.ToLower(tag)))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(tag))
		b.WriteString("</a>")
	}
	b.WriteString("</p>\n<small>by ")
	b.WriteString(html.EscapeString(a.UserName))
	b.WriteString(" on ")
	b.WriteString(a.Posted.Format("2006-01-02"))
	b.WriteString("</small>")
	return renderPage(siteTitle, ctx.Meta, b.String())
}

func renderTags(siteTitle string, ctx TagsContext) string {
	var b strings.Builder
	b.WriteString(`<div class="tag-cloud">`)
	for _, tc := range ctx.Tags {
		b.WriteString(` <a href="/tag/`)
		b.WriteString(html.EscapeString(strings.ToLower(tc.Tag)))
		b.WriteString(`">`)
		b.WriteString(html.EscapeString(tc.Tag))
		fmt.Fprintf(&b, " (%d)</a>", tc.Count)
	}
	b.WriteString("</div>")
	return renderPage(siteTitle, ctx.Meta, b.String())
}

func renderError(siteTitle string, ctx ErrorContext) string {
	return renderPage(siteTitle, ctx.Meta, alertDanger(ctx.Message))
}
