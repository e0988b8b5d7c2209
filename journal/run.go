package journal

import (
	"bytes"
	"os"
	"text/template"
	"time"

	"github.com/pkg/errors"
)

// ReplayRun summarises one sizing replay.
type ReplayRun struct {
	RunID   string
	Created time.Time
	Dataset string

	Strategy string
	Symbol   string

	// Sizing parameters
	RiskedMoney    float64
	RiskMultiplier float64
	MaxStreak      int
	MinLots        float64
	MaxLots        float64
	SizeDecimals   int

	Start time.Time
	End   time.Time

	Trades     int
	Wins       int
	Losses     int
	Breakeven  int
	LongestRun int // longest loss streak
	PeakLots   float64
	NetPL      float64

	OrgPath string
	Notes   []string
}

func (r ReplayRun) WinRate() float64 {
	decided := r.Wins + r.Losses
	if decided == 0 {
		return 0
	}
	return float64(r.Wins) / float64(decided)
}

var replayOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var replayOrg = template.Must(template.New("replay").Funcs(replayOrgFuncs).Parse(ReplayOrgTemplate))

// FormatOrg renders the run as an Org-mode section.
func (r *ReplayRun) FormatOrg() (string, error) {
	buf := new(bytes.Buffer)
	if err := replayOrg.Execute(buf, r); err != nil {
		return "", errors.Wrap(err, "render replay org")
	}
	return buf.String(), nil
}

// WriteOrg writes the run to OrgPath.
func (r *ReplayRun) WriteOrg() error {
	if r.OrgPath == "" {
		return errors.New("replay run has no org path")
	}
	s, err := r.FormatOrg()
	if err != nil {
		return err
	}
	return os.WriteFile(r.OrgPath, []byte(s), 0644)
}

const ReplayOrgTemplate = `
* REPLAY: {{.Strategy}} {{.Symbol}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:STRATEGY:    {{.Strategy}}
:SYMBOL:      {{.Symbol}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{.Start.Format "2006-01-02"}}
:END_DATE:    {{.End.Format "2006-01-02"}}
:TRADES:      {{.Trades}}
:WINS:        {{.Wins}}
:LOSSES:      {{.Losses}}
:BREAKEVEN:   {{.Breakeven}}
:NET_PL:      {{printf "%.2f" .NetPL}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Sizing Parameters
| Parameter       | Value |
|-----------------+-------|
| Risked Money    | {{printf "%.2f" .RiskedMoney}} |
| Risk Multiplier | {{printf "%.2f" .RiskMultiplier}} |
| Max Streak      | {{.MaxStreak}} |
| Min Lots        | {{.MinLots}} |
| Max Lots        | {{.MaxLots}} |
| Size Decimals   | {{.SizeDecimals}} |

** Summary
- Net P/L:             *{{printf "%.2f" .NetPL}}*
- Win Rate:            *{{printf "%.2f" (mul100 .WinRate)}}%*
- Longest Loss Streak: *{{.LongestRun}}*
- Peak Size (lots):    *{{.PeakLots}}*

{{- if .Notes }}
** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
