package notify

import (
	"bytes"
	"text/template"
)

// Certificate carries everything a renderer needs to produce one
// artifact.
type Certificate struct {
	CertificateID string
	EventName     string
	SubjectName   string
	Kind          string
	Payload       map[string]any
}

type Renderer interface {
	Render(c Certificate) ([]byte, string, error)
}

var certTmpl = template.Must(template.New("cert").Parse(`CERTIFICADO {{.CertificateID}}

Evento: {{.EventName}}
Otorgado a: {{.SubjectName}}
{{- if eq .Kind "P"}}
Constancia de participacion.
{{- else if eq .Kind "E"}}
Constancia de labor como evaluador ({{index .Payload "trabajos_evaluated"}} trabajos evaluados).
{{- else}}
{{index .Payload "award_label"}} (posicion {{index .Payload "position"}}).
{{- end}}
{{- if index .Payload "final_score"}}
Puntuacion final: {{index .Payload "final_score"}}
{{- end}}
`))

// TextRenderer produces a plain-text artifact. It stands in for the PDF
// pipeline of the production deployment; the emission flow only needs
// bytes and a filename.
type TextRenderer struct{}

func (TextRenderer) Render(c Certificate) ([]byte, string, error) {
	var buf bytes.Buffer
	if err := certTmpl.Execute(&buf, c); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), c.CertificateID + ".txt", nil
}
