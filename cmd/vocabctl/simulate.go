package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/phrazzld/vocabquest-api/internal/domain"
	"github.com/phrazzld/vocabquest-api/internal/domain/srs"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

type simulateOptions struct {
	quality   int
	qualities []int
	reviews   int
	ease      float64
	start     string
	timezone  string
}

func newSimulateCmd() *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Print the schedule produced by a series of reviews",
		Long: `Simulate reviews a new word on each due date and prints the resulting
repetitions, interval, ease factor and next due date.

Use --quality with --reviews for a constant grade, or --qualities for an
explicit sequence such as --qualities 4,4,2,5.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&opts.quality, "quality", "q", 4, "quality (0-5) given on every review")
	f.IntSliceVar(&opts.qualities, "qualities", nil, "explicit quality sequence; overrides --quality and --reviews")
	f.IntVarP(&opts.reviews, "reviews", "n", 8, "number of reviews to simulate")
	f.Float64Var(&opts.ease, "ease", 2.5, "starting ease factor")
	f.StringVar(&opts.start, "start", "", "date of the first review (YYYY-MM-DD, default today)")
	f.StringVar(&opts.timezone, "timezone", "UTC", "IANA timezone whose midnight starts a review day")

	return cmd
}

func runSimulate(cmd *cobra.Command, opts *simulateOptions) error {
	loc, err := time.LoadLocation(opts.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", opts.timezone, err)
	}

	svc, err := srs.NewServiceWithParams(srs.NewParams(srs.ParamsConfig{Location: loc}))
	if err != nil {
		return err
	}

	now := time.Now().In(loc)
	if opts.start != "" {
		now, err = time.ParseInLocation(dateLayout, opts.start, loc)
		if err != nil {
			return fmt.Errorf("invalid start date %q: %w", opts.start, err)
		}
	}

	sequence := opts.qualities
	if len(sequence) == 0 {
		if opts.reviews < 1 {
			return fmt.Errorf("reviews must be at least 1")
		}
		sequence = make([]int, opts.reviews)
		for i := range sequence {
			sequence[i] = opts.quality
		}
	}

	if opts.ease < domain.MinEaseFactor {
		return fmt.Errorf("ease must be at least %.1f", domain.MinEaseFactor)
	}

	initial := srs.DefaultState()
	state := &domain.WordState{
		Repetitions:  initial.Repetitions,
		IntervalDays: initial.IntervalDays,
		EaseFactor:   opts.ease,
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tREVIEWED\tQUALITY\tREPS\tINTERVAL\tEASE\tLAPSES\tDUE")

	for i, q := range sequence {
		next, err := svc.ProcessReview(state, domain.Quality(q), now)
		if err != nil {
			return fmt.Errorf("review %d: %w", i+1, err)
		}

		fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%d\t%.2f\t%d\t%s\n",
			i+1,
			now.Format(dateLayout),
			q,
			next.Repetitions,
			next.IntervalDays,
			next.EaseFactor,
			next.Lapses,
			next.DueAt.Format(dateLayout))

		state = next
		now = *next.DueAt
	}

	return w.Flush()
}
