package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const commentPreviewLen = 40

// Format 以表格形式输出汇总和各评分档位的分析
func Format(w io.Writer, rep Report, samples []RatingSample) error {
	if rep.Empty() {
		_, err := fmt.Fprintln(w, "No feedback yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Total feedback:\t%d\n", rep.Total)
	fmt.Fprintf(tw, "Positive:\t%d (%d%%)\n", rep.PositiveCount, *rep.PositivePercentage)
	fmt.Fprintf(tw, "Neutral:\t%d\n", rep.NeutralCount)
	fmt.Fprintf(tw, "Negative:\t%d\n", rep.NegativeCount)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "ID\tRATING\tSENTIMENT\tCOMMENT")
	for _, f := range rep.SortedListing {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", f.ID, stars(f.Rating), f.Sentiment, preview(f.Comment))
	}

	if len(samples) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "RATING\tID\tSENTIMENT\tPRAISES\tISSUES\tFEEDBACK")
		for _, s := range samples {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
				s.Rating,
				s.Feedback.ID,
				s.Analysis.Sentiment,
				joinOrDash(s.Analysis.KeyPraises),
				joinOrDash(s.Analysis.KeyIssues),
				s.Analysis.RatingFeedback,
			)
		}
	}

	return tw.Flush()
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	return strings.Repeat("*", rating)
}

func preview(comment string) string {
	comment = strings.Join(strings.Fields(comment), " ")
	if comment == "" {
		return "-"
	}
	r := []rune(comment)
	if len(r) > commentPreviewLen {
		return string(r[:commentPreviewLen]) + "..."
	}
	return comment
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
