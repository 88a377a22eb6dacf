package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/weather-station-etl/internal/lookup"
	"github.com/spf13/cobra"
)

const prompt = "Please type city name to see recent temperature values (type q/Q to quit): "

var lookupCmd = &cobra.Command{
	Use:   "lookup [CITY]",
	Short: "Show recent measurements for a city",
	Long: `Prints the measurements of CITY within the lookup window, joined with
country metadata. Without CITY, prompts for cities until q or Q.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	gw, repo, err := state.openMeasurements(ctx)
	if err != nil {
		return err
	}
	defer gw.Close() //nolint:errcheck // nothing to flush

	svc, err := state.lookupService(repo)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		return lookupOnce(ctx, svc, args[0], out)
	}
	return lookupLoop(ctx, svc, os.Stdin, out)
}

type lookuper interface {
	Lookup(ctx context.Context, city string) ([]lookup.Result, error)
}

func lookupOnce(ctx context.Context, svc lookuper, city string, out io.Writer) error {
	results, err := svc.Lookup(ctx, city)
	if err != nil {
		return err
	}
	return lookup.Render(out, results)
}

// lookupLoop prompts for cities until q, Q, or end of input. Blank input
// prompts again.
func lookupLoop(ctx context.Context, svc lookuper, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		city := strings.TrimSpace(scanner.Text())
		switch {
		case city == "":
			continue
		case strings.EqualFold(city, "q"):
			return nil
		}

		if err := lookupOnce(ctx, svc, city, out); err != nil {
			return err
		}
	}
}
