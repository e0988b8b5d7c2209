package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatOrderOrg renders an OrderRecord as an Org-mode block suitable for
// pasting into a journal. Structured facts go in the PROPERTIES drawer and a
// Review heading is left for notes.
func FormatOrderOrg(r OrderRecord) string {
	heading := fmt.Sprintf("** Order: %s %s %s (%s)", r.Strategy, r.Symbol, r.Side, shortID(r.ID))
	open := r.OpenTime.UTC().Format(time.RFC3339)
	close := r.CloseTime.UTC().Format(time.RFC3339)

	outcome := "loss"
	switch {
	case r.IsBalance():
		outcome = "balance"
	case r.PL() > 0:
		outcome = "win"
	}

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ID: %s\n", r.ID))
	b.WriteString(fmt.Sprintf(":STRATEGY: %s\n", r.Strategy))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", r.Symbol))
	b.WriteString(fmt.Sprintf(":SIDE: %s\n", r.Side))
	b.WriteString(fmt.Sprintf(":SIZE: %g\n", r.Size))
	b.WriteString(fmt.Sprintf(":OPEN_PRICE: %.5f\n", r.OpenPrice))
	b.WriteString(fmt.Sprintf(":CLOSE_PRICE: %.5f\n", r.ClosePrice))
	b.WriteString(fmt.Sprintf(":OPEN_TIME: %s\n", open))
	b.WriteString(fmt.Sprintf(":CLOSE_TIME: %s\n", close))
	b.WriteString(fmt.Sprintf(":REALIZED_PL: %.2f\n", r.RealizedPL))
	b.WriteString(fmt.Sprintf(":OUTCOME: %s\n", outcome))
	b.WriteString(fmt.Sprintf(":REASON: %s\n", r.Reason))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatOrdersOrg renders multiple orders separated by blank lines.
func FormatOrdersOrg(recs []OrderRecord) string {
	var b strings.Builder
	for i, r := range recs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatOrderOrg(r))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
