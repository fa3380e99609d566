package main

import (
	"io"
	"time"

	"bridge/monitor"
	"bridge/population"

	"github.com/fatih/color"
)

func printSummary(w io.Writer, r *population.Report) {
	head := color.New(color.Bold)
	ok := color.New(color.FgHiGreen)
	bad := color.New(color.FgHiRed)

	head.Fprintf(w, "%-11s %9s %9s %6s %9s %9s %9s\n",
		"class", "completed", "abandoned", "peak", "overtaken", "mean wait", "max wait")
	for _, c := range monitor.Classes {
		line := ok
		if r.Abandoned[c] > 0 {
			line = bad
		}
		line.Fprintf(w, "%-11s %9d %9d %6d %9d %9s %9s\n",
			c, r.Completed[c], r.Abandoned[c], r.Peak[c], r.Overtaken[c],
			r.MeanWait[c].Round(time.Millisecond), r.LongestWait[c].Round(time.Millisecond))
	}
	if r.Shared > 0 {
		bad.Fprintf(w, "lane shared by two classes in %d observed states\n", r.Shared)
	} else {
		ok.Fprintln(w, "lane never shared between classes")
	}
	head.Fprintf(w, "elapsed %s\n", r.Elapsed.Round(time.Millisecond))
}
