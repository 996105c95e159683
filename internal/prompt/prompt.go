// Package prompt builds the three completion prompts used to synthesize a
// project scaffold. Every builder is a pure function of its input.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

// ScaffoldAnchor is the first line of every human-readable scaffold. The
// structure prompt ends with it, so the model's continuation must be
// prefixed with it to obtain the full tree.
const ScaffoldAnchor = "/public\n"

// JSONSeed opens the JSON object the model is asked to continue.
const JSONSeed = "{"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.tmpl"))

// BuildReformPrompt asks the model to rewrite a free-text description as a
// clause continuing "I am hoping to build a webapp that ...".
func BuildReformPrompt(description string) string {
	return render("reform.tmpl", struct{ Description string }{description})
}

// BuildScaffoldPrompt embeds the reference Next.js folder grammar and the
// reformed description, and leaves the model to continue a plaintext tree
// that starts at ScaffoldAnchor.
func BuildScaffoldPrompt(reformed string) string {
	return render("scaffold.tmpl", struct{ Reformed, Anchor string }{reformed, ScaffoldAnchor})
}

// BuildJSONFromScaffold asks the model to continue a JSON object literal
// describing the given human-readable tree.
func BuildJSONFromScaffold(scaffold string) string {
	return render("json.tmpl", struct{ Scaffold, Seed string }{scaffold, JSONSeed})
}

// render executes an embedded template. The templates only interpolate
// strings, so execution cannot fail once they have parsed.
func render(name string, data any) string {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		panic(fmt.Sprintf("prompt: executing %s: %v", name, err))
	}
	// Template files end with a newline that is not part of the prompt.
	return strings.TrimSuffix(buf.String(), "\n")
}
