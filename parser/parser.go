package parser

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// ErrNoContent is returned when no extractor finds readable text.
var ErrNoContent = errors.New("no readable content found")

// Article is the main content extracted from a web page.
type Article struct {
	Title   string
	Excerpt string
	Text    string
	Source  string
}

// ParseArticle extracts the main text of htmlStr. Readability runs first and
// trafilatura is used when it yields nothing. pageURL may be nil.
func ParseArticle(htmlStr string, pageURL *url.URL) (*Article, error) {
	doc, err := html.Parse(strings.NewReader(htmlStr))
	if err != nil {
		return nil, err
	}

	if a, err := parseWithReadability(doc, pageURL); err == nil && a.Text != "" {
		return a, nil
	}
	if a, err := parseWithTrafilatura(htmlStr, pageURL); err == nil && a.Text != "" {
		return a, nil
	}

	// 마지막 수단: 문서의 텍스트 노드를 그대로 모은다.
	if text := strings.TrimSpace(plainText(doc)); text != "" {
		return &Article{Title: documentTitle(doc), Text: text, Source: "html"}, nil
	}
	return nil, ErrNoContent
}

func parseWithReadability(doc *html.Node, pageURL *url.URL) (*Article, error) {
	article, err := readability.FromDocument(doc, pageURL)
	if err != nil {
		return nil, err
	}
	return &Article{
		Title:   strings.TrimSpace(article.Title),
		Excerpt: strings.TrimSpace(article.Excerpt),
		Text:    strings.TrimSpace(article.TextContent),
		Source:  "readability",
	}, nil
}

func parseWithTrafilatura(htmlStr string, pageURL *url.URL) (*Article, error) {
	opts := trafilatura.Options{OriginalURL: pageURL}

	result, err := trafilatura.Extract(strings.NewReader(htmlStr), opts)
	if err != nil {
		return nil, err
	}
	return &Article{
		Title:   strings.TrimSpace(result.Metadata.Title),
		Excerpt: strings.TrimSpace(result.Metadata.Description),
		Text:    strings.TrimSpace(result.ContentText),
		Source:  "trafilatura",
	}, nil
}

func plainText(doc *html.Node) string {
	var b strings.Builder

	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "head") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				b.WriteString(text)
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}

	f(doc)
	return b.String()
}

func documentTitle(doc *html.Node) string {
	var title string
	var f func(*html.Node)
	f = func(n *html.Node) {
		if title != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			title = strings.TrimSpace(n.FirstChild.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(doc)
	return title
}
