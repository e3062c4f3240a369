package cmd

import (
	"fmt"
	"io"

	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// printSummary prints the mean and maximum of episode lengths
func printSummary(w io.Writer, title string, lengths []int,
	explorationRate float64) {
	au := aurora.NewAurora(!noColor)

	fmt.Fprintln(w, au.Bold(title))
	if len(lengths) == 0 {
		fmt.Fprintln(w, au.Red("no episodes completed"))
		return
	}

	l := make([]float64, len(lengths))
	for i := range lengths {
		l[i] = float64(lengths[i])
	}

	fmt.Fprintf(w, "episodes: %v\n", au.Blue(len(lengths)))
	fmt.Fprintf(w, "mean length: %v\n", au.Green(fmt.Sprintf("%.2f",
		stat.Mean(l, nil))))
	fmt.Fprintf(w, "max length: %v\n", au.Green(floats.Max(l)))
	fmt.Fprintf(w, "last length: %v\n", au.Green(lengths[len(lengths)-1]))
	fmt.Fprintf(w, "exploration rate: %v\n", au.Yellow(fmt.Sprintf("%.4f",
		explorationRate)))
}
