package letter

import (
	"bytes"
	_ "embed"
	"html/template"
	"os"
	"time"
)

//go:embed template.html
var defaultTemplate string

type renderData struct {
	Date           string
	CompanyName    string
	HiringManager  string
	JobTitle       string
	BodyParagraphs []string
}

// Render fills the letter into the HTML template. templatePath may be
// empty, in which case the embedded default is used.
func Render(l Letter, templatePath string) (string, error) {
	text := defaultTemplate
	if templatePath != "" {
		b, err := os.ReadFile(templatePath)
		if err != nil {
			return "", err
		}
		text = string(b)
	}

	tmpl, err := template.New("letter").Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, renderData{
		Date:           time.Now().Format("January 2, 2006"),
		CompanyName:    l.CompanyName,
		HiringManager:  l.HiringManager,
		JobTitle:       l.JobTitle,
		BodyParagraphs: l.BodyParagraphs,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
