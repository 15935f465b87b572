package report

import "html/template"

var artifactPageTemplate = template.Must(template.New("artifact").Parse(`<!DOCTYPE html>
<html>
<head><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>Digest: <code>{{.Digest}}</code> &middot; Size: {{.Size}} &middot; Generated: {{.GeneratedAt}}</p>

<h2>Parents</h2>
<ul>
{{range .Parents}}<li>{{.}}</li>
{{else}}<li>(top-level artifact)</li>
{{end}}
</ul>

<h2>Summary</h2>
<p>{{.Summary}}</p>

{{if .Descriptions}}
<h2>Descriptions</h2>
<ul>{{range .Descriptions}}<li>{{.}}</li>{{end}}</ul>
{{end}}

{{if .Comments}}
<h2>Comments</h2>
<ul>{{range .Comments}}<li>{{.}}</li>{{end}}</ul>
{{end}}

{{if .Children}}
<h2>Derivation</h2>
<ul>{{range .Children}}<li>{{.}}</li>{{end}}</ul>
{{end}}

{{range .Interpretations}}
<h2>{{.Owner}}</h2>
{{.HTML}}
{{end}}

{{if .Hexdump}}
<h2>Hexdump</h2>
<pre>{{.Hexdump}}</pre>
{{end}}
</body>
</html>
`))

var indexPageTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head><title>Excavation {{.ID}}</title></head>
<body>
<h1>Excavation {{.ID}}</h1>
<p>{{.ArtifactCount}} artifacts total. Generated: {{.GeneratedAt}}</p>

<h2>Top-level artifacts</h2>
<ul>{{range .TopLevel}}<li>{{.}}</li>{{end}}</ul>

<h2>Keyword index</h2>
<ul>
{{range .Keywords}}<li><strong>{{.Key}}</strong>: {{range .Entries}}{{.}} {{end}}</li>
{{end}}
</ul>
</body>
</html>
`))
