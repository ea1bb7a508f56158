package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/simlap-service-go/pkg/cmd/cmdutil"
	"github.com/mpapenbr/simlap-service-go/pkg/coach"
	"github.com/mpapenbr/simlap-service-go/pkg/model"
	"github.com/mpapenbr/simlap-service-go/pkg/telemetry"
)

type options struct {
	file      string
	demo      bool
	reference string
	simType   string
	trackName string
	carName   string
	sampleHz  float64
}

// Output is written as json to stdout
type Output struct {
	Metrics    *model.LapMetrics       `json:"telemetryData"`
	Analysis   *model.AnalysisResult   `json:"analysis"`
	Comparison *model.SectorComparison `json:"comparison,omitempty"`
}

func NewAnalyzeCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "analyzes a lap offline and prints the result as json",
		Example: "  simlap analyze --file lap.csv --track Monza\n" +
			"  simlap analyze --demo --reference best.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdutil.SetupLogger()
			return run(cmd.Context(), os.Stdout, opts, cmdutil.NewAnalyzer())
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "telemetry csv file")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "analyze a generated demo lap")
	cmd.Flags().StringVarP(&opts.reference, "reference", "r", "",
		"reference lap csv for a sector comparison")
	cmd.Flags().StringVar(&opts.simType, "sim-type", "unknown", "source of the telemetry")
	cmd.Flags().StringVar(&opts.trackName, "track", "", "track name")
	cmd.Flags().StringVar(&opts.carName, "car", "", "car name")
	cmd.Flags().Float64Var(&opts.sampleHz, "sample-rate", telemetry.AssumedSampleRateHz,
		"sample rate in Hz used when the file has no time column")
	cmd.MarkFlagsMutuallyExclusive("file", "demo")
	cmd.MarkFlagsOneRequired("file", "demo")
	cmdutil.AddCoachFlags(cmd)
	return cmd
}

func run(ctx context.Context, out io.Writer, opts *options, analyzer coach.Analyzer) error {
	extractor := telemetry.NewExtractor(telemetry.WithAssumedSampleRate(opts.sampleHz))
	var metrics *model.LapMetrics
	var err error
	if opts.demo {
		metrics = telemetry.GenerateDemo(opts.trackName, opts.carName)
	} else {
		if metrics, err = fromFile(extractor, opts.file, opts.simType); err != nil {
			return err
		}
		metrics.TrackName = opts.trackName
		metrics.CarName = opts.carName
	}

	result := Output{Metrics: metrics}
	if result.Analysis, err = analyzer.Analyze(ctx, metrics); err != nil {
		return err
	}
	if opts.reference != "" {
		ref, err := fromFile(extractor, opts.reference, opts.simType)
		if err != nil {
			return fmt.Errorf("reference: %w", err)
		}
		if result.Comparison, err = coach.Compare(metrics, ref); err != nil {
			return err
		}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func fromFile(e *telemetry.Extractor, name, simType string) (*model.LapMetrics, error) {
	if name == "" {
		return nil, errors.New("no file given")
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	//nolint:errcheck // read only
	defer f.Close()
	records, err := telemetry.DecodeCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return e.Extract(records, simType)
}
