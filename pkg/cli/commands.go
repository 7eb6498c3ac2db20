package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ishuide/Car-price-prediction/pkg/cli/ui"
	"github.com/ishuide/Car-price-prediction/pkg/pipeline"
)

func newLoadCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "load",
		Short: "Load, clean and store the raw dataset",
		Long: `Reads the raw CSV or XLSX file, drops unused columns and duplicates, fills
missing cells and replaces the stored table with the result.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.ingest(cmd.Context())
		},
	}
}

func newTrainCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train and save the price model",
		Long: `Fits the linear price model on the stored table, scores it on a seeded
holdout split and saves it for later predictions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := rt.app.Train(cmd.Context())
			if err != nil {
				return rt.fail(fmt.Errorf("training failed: %w", err))
			}
			PrintReport(r)
			return nil
		},
	}
}

func newPredictCmd(rt *runtime) *cobra.Command {
	var (
		fuel                        string
		year, km, hp, doors, isAuto int
		example                     bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate the price of one car",
		Long: `Prices a single car with the saved model. Flags that are not given are
treated as unknown and filled with training averages.`,
		Example: `  $ carprice predict --fuel-type Petrol --year 2002 --km 65000 --hp 90 --doors 4 --automatic 0
  $ carprice predict --example`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := pipeline.ExampleRequest()
			if !example {
				req = pipeline.Request{}
				flags := cmd.Flags()
				if flags.Changed("fuel-type") {
					req.FuelType = &fuel
				}
				for name, dst := range map[string]struct {
					v   *int
					out **int
				}{
					"year":      {&year, &req.MfgYear},
					"km":        {&km, &req.KM},
					"hp":        {&hp, &req.HP},
					"doors":     {&doors, &req.Doors},
					"automatic": {&isAuto, &req.Automatic},
				} {
					if flags.Changed(name) {
						*dst.out = dst.v
					}
				}
			}
			p, err := rt.app.Predict(req)
			if err != nil {
				return rt.fail(err)
			}
			PrintPrediction(req, p)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&fuel, "fuel-type", "", "fuel type (Petrol, Diesel, CNG)")
	f.IntVar(&year, "year", 0, "manufacturing year")
	f.IntVar(&km, "km", 0, "kilometers driven")
	f.IntVar(&hp, "hp", 0, "horsepower")
	f.IntVar(&doors, "doors", 0, "number of doors")
	f.IntVar(&isAuto, "automatic", 0, "1 for automatic, 0 for manual")
	f.BoolVar(&example, "example", false, "price the built-in example car")
	return cmd
}

func newMenuCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive menu on the stored dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return NewMenu(rt.app, rt.prompt).Run(cmd.Context())
		},
	}
}

func newPlotCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "plot",
		Short: "Render charts of the stored dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := rt.app.Charts(cmd.Context())
			if err != nil {
				return rt.fail(err)
			}
			for _, p := range paths {
				ui.PrintSuccess("Saved %s", p)
			}
			return nil
		},
	}
}
