package site

import (
	"html/template"
	"io"
)

type pageData struct {
	Page
	Version string
	Index   string
	Body    template.HTML
}

type indexData struct {
	Version string
	Links   []indexLink
}

type indexLink struct {
	Page
	Href string
}

// WritePage writes a complete HTML page around a rendered body, with a
// navigation link to index.
func WritePage(w io.Writer, page Page, version, index string, body []byte) error {
	return pageTemplate.Execute(w, pageData{
		Page:    page,
		Version: version,
		Index:   index,
		Body:    template.HTML(body),
	})
}

// WriteIndex writes an HTML index of pages, linking to each at href(page).
func WriteIndex(w io.Writer, version string, pages []Page, href func(Page) string) error {
	links := make([]indexLink, len(pages))
	for i, page := range pages {
		links[i] = indexLink{Page: page, Href: href(page)}
	}
	return indexTemplate.Execute(w, indexData{
		Version: version,
		Links:   links,
	})
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }} ({{ .Version }})</title>
</head>
<body>
<nav><a href="{{ .Index }}">index</a> / {{ .Source }}</nav>
<main>
{{ .Body }}
</main>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Documentation ({{ .Version }})</title>
</head>
<body>
<h1>Documentation {{ .Version }}</h1>
<ul>
{{- range .Links }}
<li><a href="{{ .Href }}">{{ .Title }}</a> <small>{{ .Source }}</small></li>
{{- end }}
</ul>
</body>
</html>
`))
