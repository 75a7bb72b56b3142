package journal

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/tradejournal/equity"
	"github.com/rustyeddy/tradejournal/metrics"
	"github.com/rustyeddy/tradejournal/trade"
)

// FormatTradeOrg renders a trade as an Org-mode block suitable for pasting into a journal.
// Structured facts go in the PROPERTIES drawer, fills in a table, followed by
// Thesis/Execution/Review placeholders.
func FormatTradeOrg(t *trade.Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Symbol, t.Side, shortID(t.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":ID: %s\n", t.ID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", t.Side))
	if t.StrategyID != "" {
		b.WriteString(fmt.Sprintf(":STRATEGY: %s\n", t.StrategyID))
	}
	b.WriteString(fmt.Sprintf(":STATUS: %s\n", status(t)))
	b.WriteString(fmt.Sprintf(":ENTRY: %s\n", orgStamp(t.EntryDate, t.EntryTime)))
	b.WriteString(fmt.Sprintf(":EXIT: %s\n", orgStamp(t.ExitDate, t.ExitTime)))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.4f\n", t.EntryPrice))
	b.WriteString(fmt.Sprintf(":ENTRY_QTY: %g\n", t.EntryQuantity))
	b.WriteString(fmt.Sprintf(":EXIT_PRICE: %.4f\n", t.ExitPrice))
	b.WriteString(fmt.Sprintf(":EXIT_QTY: %g\n", t.ExitQuantity))
	b.WriteString(fmt.Sprintf(":COMMISSION: %.2f\n", t.Commission))
	b.WriteString(fmt.Sprintf(":REALIZED_PL: %.2f\n", t.RealizedPnL))
	b.WriteString(fmt.Sprintf(":HOLD_TIME: %s\n", metrics.FormatHoldTime(metrics.HoldTime(t))))
	b.WriteString(":END:\n")

	if len(t.Fills) > 0 {
		b.WriteString("\n*** Fills\n")
		b.WriteString("| Date       | Time     | Side  |      Price |   Qty | Comm |\n")
		b.WriteString("|------------+----------+-------+------------+-------+------|\n")
		for _, f := range t.Fills {
			b.WriteString(fmt.Sprintf("| %s | %s | %-5s | %10.4f | %5g | %.2f |\n",
				trade.FormatDate(f.Date), f.Time, f.Side, f.Price, f.Quantity, f.Commission))
		}
	}

	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []*trade.Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}

func orgStamp(date time.Time, tod *trade.TimeOfDay) string {
	if date.IsZero() {
		return "(open)"
	}
	if tod == nil {
		return "[" + date.Format("2006-01-02 Mon") + "]"
	}
	return "[" + tod.On(date).Format("2006-01-02 Mon 15:04:05") + "]"
}

// ReportOrg is the data behind an Org-mode performance report.
type ReportOrg struct {
	Title   string
	Created time.Time
	Filter  Filter
	PValue  string
	Report  metrics.Report
	Timing  []equity.DayCount
	Shapes  []equity.Shape
}

var reportOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "*"
		}
		return t.Format("2006-01-02")
	},
	"pf": func(x float64) string {
		if x >= metrics.UnboundedProfitFactor {
			return "unbounded"
		}
		return fmt.Sprintf("%.2f", x)
	},
	"count": func(m map[equity.Shape]int, s equity.Shape) int { return m[s] },
}

var reportOrgTemplate = template.Must(template.New("report").Funcs(reportOrgFuncs).Parse(ReportOrgTemplate))

// Render executes ReportOrgTemplate.
func (v *ReportOrg) Render() (string, error) {
	if v.Shapes == nil {
		v.Shapes = equity.Shapes
	}
	buf := new(bytes.Buffer)
	if err := reportOrgTemplate.Execute(buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteFile renders the report to path.
func (v *ReportOrg) WriteFile(path string) error {
	s, err := v.Render()
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const ReportOrgTemplate = `
* PERFORMANCE: {{if .Title}}{{.Title}}{{else}}All trades{{end}}
:PROPERTIES:
:SYMBOL:      {{if .Filter.Symbol}}{{.Filter.Symbol}}{{else}}*{{end}}
:SIDE:        {{if .Filter.Side}}{{.Filter.Side}}{{else}}*{{end}}
:STRATEGY:    {{if .Filter.StrategyID}}{{.Filter.StrategyID}}{{else}}*{{end}}
:FROM:        {{date .Filter.From}}
:TO:          {{date .Filter.To}}
:TRADES:      {{.Report.TotalTrades}}
:NET_PL:      {{printf "%.2f" .Report.Net.TotalPnL}}
:GROSS_PL:    {{printf "%.2f" .Report.Gross.TotalPnL}}
:COMMISSIONS: {{printf "%.2f" .Report.TotalCommissions}}
:P_VALUE:     {{printf "%.4f" .Report.Net.PValue}}{{if .PValue}} ({{.PValue}}){{end}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Summary
| Metric          |        Net |      Gross |
|-----------------+------------+------------|
| Total P/L       | {{printf "%10.2f" .Report.Net.TotalPnL}} | {{printf "%10.2f" .Report.Gross.TotalPnL}} |
| Win Rate %      | {{printf "%10.2f" .Report.Net.WinRate}} | {{printf "%10.2f" .Report.Gross.WinRate}} |
| Avg Win         | {{printf "%10.2f" .Report.Net.AvgWin}} | {{printf "%10.2f" .Report.Gross.AvgWin}} |
| Avg Loss        | {{printf "%10.2f" .Report.Net.AvgLoss}} | {{printf "%10.2f" .Report.Gross.AvgLoss}} |
| Profit Factor   | {{pf .Report.Net.ProfitFactor}} | {{pf .Report.Gross.ProfitFactor}} |
| Max Drawdown    | {{printf "%10.2f" .Report.Net.MaxDrawdown}} | {{printf "%10.2f" .Report.Gross.MaxDrawdown}} |
| Sharpe          | {{printf "%10.2f" .Report.Net.SharpeRatio}} | {{printf "%10.2f" .Report.Gross.SharpeRatio}} |
| SQN             | {{printf "%10.2f" .Report.Net.SQN}} | {{printf "%10.2f" .Report.Gross.SQN}} |
| K-Ratio         | {{printf "%10.2f" .Report.Net.KRatio}} | {{printf "%10.2f" .Report.Gross.KRatio}} |
| Kelly %         | {{printf "%10.2f" .Report.Net.KellyPercent}} | {{printf "%10.2f" .Report.Gross.KellyPercent}} |
| Max Win Streak  | {{printf "%10d" .Report.Net.MaxConsecutiveWins}} | {{printf "%10d" .Report.Gross.MaxConsecutiveWins}} |
| Max Loss Streak | {{printf "%10d" .Report.Net.MaxConsecutiveLosses}} | {{printf "%10d" .Report.Gross.MaxConsecutiveLosses}} |

** Hold Time
- Overall:   {{.Report.AvgHoldTimeOverall}}
- Winners:   {{.Report.AvgHoldTimeWinners}}
- Losers:    {{.Report.AvgHoldTimeLosers}}
- Scratches: {{.Report.AvgHoldTimeScratches}}

** Excursion
- Avg MFE: *{{printf "%.2f" .Report.AvgMFE}}*
- Avg MAE: *{{printf "%.2f" .Report.AvgMAE}}*

{{- if .Report.Best }}

** Best Trades
| Symbol | Trade | P/L |
|--------+-------+-----|
{{- range .Report.Best }}
| {{.Symbol}} | {{.ID}} | {{printf "%.2f" .ProfitLoss}} |
{{- end }}
{{- end }}

{{- if .Report.Worst }}

** Worst Trades
| Symbol | Trade | P/L |
|--------+-------+-----|
{{- range .Report.Worst }}
| {{.Symbol}} | {{.ID}} | {{printf "%.2f" .ProfitLoss}} |
{{- end }}
{{- end }}

{{- if .Timing }}

** Entry Timing
| Date |{{range $.Shapes}} {{.}} |{{end}}
{{- range $day := .Timing }}
| {{date $day.Date}} |{{range $.Shapes}} {{count $day.Counts .}} |{{end}}
{{- end }}
{{- end }}
`
