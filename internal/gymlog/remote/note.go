package remote

import (
	"bytes"
	"html/template"
	"strings"
)

var noteTemplate = template.Must(template.New("note").Parse(
	`{{if .Memo}}<p>{{.Memo}}</p>{{end}}` +
		`{{if .Video}}<p><a href="{{.Video}}" target="_blank" rel="noopener noreferrer">{{.Video}}</a></p>{{end}}`,
))

// RenderNote renders the memo and video link of an exercise. It returns an
// empty string when both are empty.
func RenderNote(memo, video string) (string, error) {
	data := struct {
		Memo  string
		Video string
	}{
		Memo:  strings.TrimSpace(memo),
		Video: strings.TrimSpace(video),
	}
	if data.Memo == "" && data.Video == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := noteTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// OpenNote shows the memo popup. No request is made: memo and video come from
// the trigger element. Nothing is opened when both are empty.
func (l *Loader) OpenNote(memo, video string) (bool, error) {
	html, err := RenderNote(memo, video)
	if err != nil {
		return false, err
	}
	if html == "" {
		return false, nil
	}
	l.modal.Open(html)
	return true, nil
}
