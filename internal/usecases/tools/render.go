package tools

import (
	"fmt"
	"strings"
)

// renderExamples writes the markdown document for the requested formats.
// Unknown formats are skipped.
func renderExamples(ex *examples, formats []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s examples\n\n", ex.Method, ex.Path)
	fmt.Fprintf(&b, "**Server:** %s\n", ex.ServerURL)
	if len(ex.Parameters) > 0 {
		b.WriteString("\n## Parameters\n\n```json\n" + marshalIndent(ex.Parameters, "  ") + "\n```\n")
	}

	for _, format := range formats {
		var section string
		switch format {
		case "json":
			section = renderJSON(ex)
		case "curl":
			section = renderCurl(ex)
		case "python":
			section = renderPython(ex)
		case "javascript":
			section = renderJavaScript(ex)
		case "http":
			section = renderHTTP(ex)
		case "postman":
			section = renderPostman(ex)
		default:
			continue
		}
		b.WriteString("\n" + section)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (ex *examples) url() string {
	return ex.ServerURL + ex.Path
}

// headers returns the request headers in a stable order.
func (ex *examples) headers() [][2]string {
	var headers [][2]string
	if ex.Body != nil {
		headers = append(headers, [2]string{"Content-Type", ex.Body.ContentType})
	}
	if ex.Auth != nil && ex.Auth.Header != "" {
		name, value, _ := strings.Cut(ex.Auth.Header, ": ")
		headers = append(headers, [2]string{name, value})
	}
	return headers
}

func (ex *examples) headerMap() map[string]string {
	m := make(map[string]string)
	for _, h := range ex.headers() {
		m[h[0]] = h[1]
	}
	return m
}

func renderJSON(ex *examples) string {
	var b strings.Builder
	b.WriteString("## JSON\n\n")
	if ex.Body != nil {
		b.WriteString("### Request body\n\n```json\n" + marshalIndent(ex.Body.Data, "  ") + "\n```\n\n")
	}
	if ex.Response != nil {
		fmt.Fprintf(&b, "### Response %s", ex.Response.Status)
		if ex.Response.Description != "" {
			b.WriteString(" - " + ex.Response.Description)
		}
		b.WriteString("\n\n")
		if ex.Response.HasData {
			b.WriteString("```json\n" + marshalIndent(ex.Response.Data, "  ") + "\n```\n")
		}
	}
	return b.String()
}

func renderCurl(ex *examples) string {
	parts := []string{"curl -X " + ex.Method}
	for _, h := range ex.headers() {
		parts = append(parts, fmt.Sprintf("-H '%s: %s'", h[0], h[1]))
	}
	if ex.Body != nil {
		parts = append(parts, "-d '"+marshalIndent(ex.Body.Data, "")+"'")
	}
	parts = append(parts, "'"+ex.url()+"'")
	return "## cURL\n\n```bash\n" + strings.Join(parts, " \\\n  ") + "\n```\n"
}

func renderPython(ex *examples) string {
	lines := []string{"## Python", "", "```python", "import requests", "", fmt.Sprintf("url = %q", ex.url())}
	lines = append(lines, "headers = "+marshalIndent(ex.headerMap(), "    "))

	call := fmt.Sprintf("response = requests.request(%q, url, headers=headers", ex.Method)
	if ex.Body != nil {
		lines = append(lines, "data = "+pythonLiteral(marshalIndent(ex.Body.Data, "    ")))
		call += ", json=data"
	}
	lines = append(lines, "", call+")", "print(response.json())", "```", "")
	return strings.Join(lines, "\n")
}

// pythonLiteral converts JSON literals that differ in Python.
func pythonLiteral(s string) string {
	return strings.NewReplacer(": true", ": True", ": false", ": False", ": null", ": None").Replace(s)
}

func renderJavaScript(ex *examples) string {
	lines := []string{"## JavaScript", "", "```javascript", fmt.Sprintf("const url = %q;", ex.url())}
	lines = append(lines, "const headers = "+marshalIndent(ex.headerMap(), "  ")+";")
	options := []string{fmt.Sprintf("  method: %q", ex.Method), "  headers"}
	if ex.Body != nil {
		lines = append(lines, "const data = "+marshalIndent(ex.Body.Data, "  ")+";")
		options = append(options, "  body: JSON.stringify(data)")
	}
	lines = append(lines, "", "fetch(url, {", strings.Join(options, ",\n"), "})",
		"  .then(response => response.json())",
		"  .then(data => console.log(data));",
		"```", "")
	return strings.Join(lines, "\n")
}

func renderHTTP(ex *examples) string {
	lines := []string{"## HTTP", "", "```http", fmt.Sprintf("%s %s HTTP/1.1", ex.Method, ex.url())}
	for _, h := range ex.headers() {
		lines = append(lines, h[0]+": "+h[1])
	}
	if ex.Body != nil {
		lines = append(lines, "", marshalIndent(ex.Body.Data, "  "))
	}
	lines = append(lines, "```", "")
	return strings.Join(lines, "\n")
}

func renderPostman(ex *examples) string {
	headers := make([]map[string]string, 0)
	for _, h := range ex.headers() {
		headers = append(headers, map[string]string{"key": h[0], "value": h[1]})
	}

	host := strings.TrimPrefix(strings.TrimPrefix(ex.ServerURL, "https://"), "http://")
	request := map[string]interface{}{
		"method": ex.Method,
		"header": headers,
		"url": map[string]interface{}{
			"raw":  ex.url(),
			"host": []string{host},
			"path": strings.Split(strings.Trim(ex.Path, "/"), "/"),
		},
	}
	if ex.Body != nil {
		request["body"] = map[string]interface{}{
			"mode":    "raw",
			"raw":     marshalIndent(ex.Body.Data, "  "),
			"options": map[string]interface{}{"raw": map[string]string{"language": "json"}},
		}
	}
	collection := map[string]interface{}{
		"info": map[string]string{
			"name":        ex.Method + " " + ex.Path,
			"description": "Generated API request",
		},
		"item": []interface{}{
			map[string]interface{}{"name": ex.Path, "request": request},
		},
	}
	return "## Postman collection\n\n```json\n" + marshalIndent(collection, "  ") + "\n```\n"
}
