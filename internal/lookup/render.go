package lookup

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
)

// NoData is printed when a lookup matches nothing.
const NoData = "No data is available for specified criteria"

// Render writes results as an aligned table.
func Render(w io.Writer, results []Result) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, NoData)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "city\tcountry\tpopulation_M\tcelsius\tfahrenheit\tmeasured_at")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.City,
			r.Country,
			formatOptional(r.Population),
			formatNumber(r.Celsius),
			formatNumber(r.Fahrenheit),
			r.Date(),
		)
	}
	return tw.Flush()
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return formatNumber(*v)
}
