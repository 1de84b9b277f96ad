package diagnostics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const percentageMultiplier = 100

// Report summarizes a recommend run. Results keep the order of Config.Users.
type Report struct {
	StartTime time.Time      `json:"startTime"`
	EndTime   time.Time      `json:"endTime"`
	Duration  time.Duration  `json:"duration"`
	Outcomes  map[string]int `json:"outcomes"`
	Results   []UserResult   `json:"results"`
}

func (r *Report) tally() {
	r.Outcomes = make(map[string]int, len(r.Results))
	for _, res := range r.Results {
		r.Outcomes[res.Outcome]++
	}
}

// SuccessRate is the share of users answered with 200, in percent.
func (r *Report) SuccessRate() float64 {
	if len(r.Results) == 0 {
		return 0
	}
	ok := r.Outcomes[OutcomeOK] + r.Outcomes[OutcomeEmpty]
	return float64(ok) / float64(len(r.Results)) * percentageMultiplier
}

// Failed reports whether any user timed out or failed.
func (r *Report) Failed() bool {
	return r.Outcomes[OutcomeTimeout]+r.Outcomes[OutcomeFailed] > 0
}

// WriteText prints one line per user followed by totals.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&b, "%-24s %-9s count=%-3d top=%-3d latency=%s",
			res.UserID, res.Outcome, res.Count, res.TopScore, res.Latency.Round(time.Millisecond))
		if res.Error != "" {
			fmt.Fprintf(&b, " error=%q", res.Error)
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "\nusers=%d ok=%d empty=%d not_found=%d busy=%d timeout=%d failed=%d success=%.1f%% duration=%s\n",
		len(r.Results),
		r.Outcomes[OutcomeOK], r.Outcomes[OutcomeEmpty], r.Outcomes[OutcomeNotFound],
		r.Outcomes[OutcomeBusy], r.Outcomes[OutcomeTimeout], r.Outcomes[OutcomeFailed],
		r.SuccessRate(), r.Duration.Round(time.Millisecond))
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON encodes the report.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
