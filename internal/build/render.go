package build

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"github.com/alexanderramin/showcase/internal/domain"
)

// DefaultTemplate wraps the site JSON in a global assignment the page script reads.
const DefaultTemplate = `// Auto-generated by showcase - DO NOT EDIT
const DEMO_DATA = {{ .JSON }};
`

// TemplateData is what an output template is executed with.
type TemplateData struct {
	Locale string
	JSON   string
	Site   *domain.Site
}

var dataJSPattern = regexp.MustCompile(`const DEMO_DATA = (\{[\s\S]*\});`)

// LoadTemplate parses the template at path, or DefaultTemplate when path is "".
func LoadTemplate(path string) (*template.Template, error) {
	text := DefaultTemplate
	name := "data.js"
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		text = string(data)
		name = path
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return tmpl, nil
}

// EncodeSite renders the site as two-space indented JSON without HTML
// escaping and without a trailing newline.
func EncodeSite(site *domain.Site) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(site); err != nil {
		return "", fmt.Errorf("encoding site: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Render produces the data file content for one locale.
func Render(tmpl *template.Template, locale string, site *domain.Site) ([]byte, error) {
	payload, err := EncodeSite(site)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, TemplateData{Locale: locale, JSON: payload, Site: site}); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", locale, err)
	}
	return buf.Bytes(), nil
}

// ParseDataJS extracts the JSON payload from a generated data file.
func ParseDataJS(content []byte) (json.RawMessage, error) {
	m := dataJSPattern.FindSubmatch(content)
	if m == nil {
		return nil, errors.New("no DEMO_DATA assignment found")
	}
	if !json.Valid(m[1]) {
		return nil, errors.New("DEMO_DATA payload is not valid JSON")
	}
	return json.RawMessage(m[1]), nil
}

// DataFileName is data.js for the default locale and data_<locale>.js otherwise.
func DataFileName(locale, defaultLocale string) string {
	if locale == defaultLocale {
		return "data.js"
	}
	return fmt.Sprintf("data_%s.js", locale)
}
