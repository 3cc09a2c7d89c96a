package stats

import (
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/mfreith1/MotionSensingLighting/internal/logic"
)

var statusTmpl = template.Must(template.New("status").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"rfc3339": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
	"eventLine": func(e logic.Event) string {
		return fmt.Sprintf("%9v  %-12s %s/%s", e.Uptime.Truncate(time.Millisecond), e.Type, e.Mode, e.Zone)
	},
}).Parse(statusText))

const statusText = `mode:     {{.Mode}}
zone:     {{.Zone}}
button:   {{.Button}}
uptime:   {{uptime .Uptime}} (engine {{uptime .EngineUptime}})
started:  {{rfc3339 .StartTime}}
switches: {{.Counts.ZoneSwitches}} zone, {{.Counts.ModeChanges}} mode
presses:  {{.Counts.Clicks}} clicks, {{.Counts.Holds}} holds
config:   tick {{.Config.TickMs}}ms, sleep timeout {{.Config.SleepTimeoutMs}}ms, heartbeat {{.Config.HeartbeatMs}}ms, {{.Config.Zones}} zones
{{- if .Recent}}
recent:
{{- range .Recent}}
  {{eventLine .}}
{{- end}}
{{- end}}
`

// RenderText writes the human-readable status block shown on the console
// for the on-demand dump.
func RenderText(w io.Writer, snap Snapshot) error {
	return statusTmpl.Execute(w, snap)
}
