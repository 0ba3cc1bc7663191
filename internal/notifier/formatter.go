package notifier

import (
	"fmt"
	"strings"
	"time"

	"PriceSweep/internal/model"
)

// FormatRunReport formats a finished cleaning run into a Telegram message.
func FormatRunReport(s *model.Summary) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🧹 <b>PriceSweep run</b> | %s\n\n", s.StartedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Source: %s\n", s.Source))
	b.WriteString(fmt.Sprintf("Records: %d (%d accepted, %d rejected)\n", s.Total, s.Accepted, s.Rejected))
	b.WriteString(fmt.Sprintf("Reject ratio: %.1f%%\n", s.RejectRatio()*100))
	if s.Accepted > 0 {
		b.WriteString(fmt.Sprintf("Price range: %.2f / %.2f\n", s.LowPrice, s.HighPrice))
	}
	b.WriteString(fmt.Sprintf("Filter: window %d, threshold %.1f%%, reference %s\n",
		s.WindowSize, s.Threshold*100, s.Reference))
	b.WriteString(fmt.Sprintf("Output: %s\n", s.Output))

	return b.String()
}

// FormatDegradationAlert formats a data quality warning for a run whose
// reject ratio crossed the alert threshold.
func FormatDegradationAlert(s *model.Summary, alertRatio float64, consecutive int) string {
	var b strings.Builder

	b.WriteString("⚠️ <b>Data quality alert</b>\n\n")
	b.WriteString(fmt.Sprintf("Reject ratio %.1f%% exceeded the %.1f%% threshold.\n",
		s.RejectRatio()*100, alertRatio*100))
	b.WriteString(fmt.Sprintf("Source: %s\n", s.Source))
	b.WriteString(fmt.Sprintf("Rejected %d of %d records.\n", s.Rejected, s.Total))
	if consecutive > 1 {
		b.WriteString(fmt.Sprintf("Noisy runs in a row: %d\n", consecutive))
	}
	b.WriteString("\nConsider re-checking the feed or retuning acceptable_pcnt_change.")

	return b.String()
}

// FormatFailureAlert formats a run that aborted without producing output.
func FormatFailureAlert(source string, runErr error) string {
	var b strings.Builder
	b.WriteString("❌ <b>Cleaning run failed</b>\n\n")
	b.WriteString(fmt.Sprintf("Source: %s\n", source))
	b.WriteString(fmt.Sprintf("Error: %v\n", runErr))
	return b.String()
}

// FormatJournal formats the accumulated run journal for display.
func FormatJournal(st *model.RunState) string {
	var b strings.Builder
	b.WriteString("📒 <b>Run journal</b>\n\n")
	b.WriteString(fmt.Sprintf("Total runs: %d\n", st.TotalRuns))
	b.WriteString(fmt.Sprintf("Total records: %d\n", st.TotalRecords))
	b.WriteString(fmt.Sprintf("Total rejections: %d\n", st.TotalRejections))
	if st.TotalRuns > 0 {
		b.WriteString(fmt.Sprintf("Last run: %s (reject ratio %.1f%%)\n",
			st.LastRunAt.Format("2006-01-02 15:04"), st.LastRejectRatio*100))
	}
	if st.LastError != "" {
		b.WriteString(fmt.Sprintf("Last error: %s\n", st.LastError))
	}
	b.WriteString(fmt.Sprintf("Updated: %s\n", st.UpdatedAt.Format(time.RFC3339)))
	return b.String()
}
