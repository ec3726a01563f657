package contact

import (
	"bytes"
	"fmt"
	"html/template"
)

var notificationTemplate = template.Must(template.New("notification").Parse(`
<div style="font-family: sans-serif; padding: 20px; border: 1px solid #eaeaea; border-radius: 10px;">
  <h2>New Inquiry Received</h2>
  <p><strong>From:</strong> {{.Name}} ({{.Email}})</p>
  <p><strong>Time:</strong> {{.SentAt}}</p>
  <hr style="border: 0; border-top: 1px solid #eaeaea; margin: 20px 0;" />
  <p style="font-size: 16px; color: #333;">{{.Message}}</p>
</div>
`))

type notificationData struct {
	Name    string
	Email   string
	Message string
	SentAt  string
}

func subject(name string) string {
	return "New Message from " + name
}

func renderNotification(d notificationData) (string, error) {
	var buf bytes.Buffer
	if err := notificationTemplate.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("render notification: %w", err)
	}
	return buf.String(), nil
}
