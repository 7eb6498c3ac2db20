package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/go-gota/gota/dataframe"

	"github.com/ishuide/Car-price-prediction/pkg/cli/ui"
	"github.com/ishuide/Car-price-prediction/pkg/config"
	"github.com/ishuide/Car-price-prediction/pkg/data"
	"github.com/ishuide/Car-price-prediction/pkg/pipeline"
	"github.com/ishuide/Car-price-prediction/pkg/store"
)

// Prompter asks the user for input. The survey implementation is used on a
// terminal, tests plug in a scripted one.
type Prompter interface {
	Select(message string, options []string) (string, error)
	Input(message, help string) (string, error)
}

type surveyPrompter struct{}

// SurveyPrompter returns the interactive terminal prompter.
func SurveyPrompter() Prompter { return surveyPrompter{} }

func (surveyPrompter) Select(message string, options []string) (string, error) {
	var choice string
	prompt := &survey.Select{Message: message, Options: options, PageSize: len(options)}
	err := survey.AskOne(prompt, &choice)
	return choice, err
}

func (surveyPrompter) Input(message, help string) (string, error) {
	var answer string
	err := survey.AskOne(&survey.Input{Message: message, Help: help}, &answer)
	return answer, err
}

// Menu entries.
const (
	OptViewAll     = "View all cars"
	OptSearchFuel  = "Search cars by fuel type"
	OptSearchYear  = "Search cars by year range"
	OptSearchKM    = "Search cars by KM range"
	OptStatistics  = "Show basic statistics"
	OptTrain       = "Train price model"
	OptPredict     = "Predict car price"
	OptCharts      = "Render charts"
	OptExit        = "Exit"
	resultRowLimit = 10
)

var menuOptions = []string{
	OptViewAll, OptSearchFuel, OptSearchYear, OptSearchKM, OptStatistics,
	OptTrain, OptPredict, OptCharts, OptExit,
}

// Menu is the interactive session over a stored dataset.
type Menu struct {
	app    *App
	prompt Prompter
}

func NewMenu(app *App, prompt Prompter) *Menu {
	return &Menu{app: app, prompt: prompt}
}

// Run shows the menu until the user exits or interrupts. A failing action
// prints its cause and returns to the menu.
func (m *Menu) Run(ctx context.Context) error {
	for {
		choice, err := m.prompt.Select("Choose an option", menuOptions)
		if errors.Is(err, terminal.InterruptErr) {
			ui.PrintInfo("Exiting. Thank you!")
			return nil
		}
		if err != nil {
			return err
		}
		if choice == OptExit {
			ui.PrintInfo("Exiting. Thank you!")
			return nil
		}
		if err := m.dispatch(ctx, choice); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				continue
			}
			m.report(err)
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, choice string) error {
	switch choice {
	case OptViewAll:
		return m.viewAll(ctx)
	case OptSearchFuel:
		return m.searchFuel(ctx)
	case OptSearchYear:
		return m.searchRange(ctx, pipeline.ColMfgYear, "year", "e.g. 2000", "e.g. 2004")
	case OptSearchKM:
		return m.searchRange(ctx, pipeline.ColKM, "KM", "e.g. 0", "e.g. 50000")
	case OptStatistics:
		return m.statistics(ctx)
	case OptTrain:
		return m.train(ctx)
	case OptPredict:
		return m.predict()
	case OptCharts:
		return m.charts(ctx)
	default:
		ui.PrintWarning("Invalid option. Try again.")
		return nil
	}
}

func (m *Menu) report(err error) { reportError(m.app.Config, err) }

// reportError prints err with the location that would fix it.
func reportError(cfg *config.Config, err error) {
	switch {
	case errors.Is(err, pipeline.ErrModelNotFound):
		ui.PrintError("Trained model not found at %s. Choose %q first.", cfg.Model.ArtifactPath, OptTrain)
	case errors.Is(err, store.ErrTableNotFound):
		ui.PrintError("No stored dataset in %s (table %s). Run 'carprice load' first.", cfg.Data.DBPath, cfg.Data.Table)
	default:
		ui.PrintError("%v", err)
	}
}

func (m *Menu) table(ctx context.Context) (dataframe.DataFrame, error) {
	s, err := m.app.Store(ctx)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	return s.ReadAll(ctx)
}

func (m *Menu) viewAll(ctx context.Context) error {
	df, err := m.table(ctx)
	if err != nil {
		return err
	}
	ui.PrintFrame(data.Head(df, resultRowLimit), df.Nrow())
	return nil
}

func (m *Menu) searchFuel(ctx context.Context) error {
	df, err := m.table(ctx)
	if err != nil {
		return err
	}
	help := ""
	if fuels, err := data.Distinct(df, pipeline.ColFuelType); err == nil {
		help = "Known: " + strings.Join(fuels, ", ")
	}
	fuel, err := m.prompt.Input("Enter fuel type (e.g., Petrol, Diesel, CNG):", help)
	if err != nil {
		return err
	}
	out, err := data.MatchFold(df, pipeline.ColFuelType, fuel)
	if err != nil {
		return err
	}
	ui.PrintFrame(data.Head(out, resultRowLimit), out.Nrow())
	return nil
}

func (m *Menu) askInt(message, help string) (int, error) {
	s, err := m.prompt.Input(message, help)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return n, nil
}

func (m *Menu) searchRange(ctx context.Context, col, label, minHelp, maxHelp string) error {
	df, err := m.table(ctx)
	if err != nil {
		return err
	}
	lo, err := m.askInt(fmt.Sprintf("Enter minimum %s:", label), minHelp)
	if err != nil {
		return err
	}
	hi, err := m.askInt(fmt.Sprintf("Enter maximum %s:", label), maxHelp)
	if err != nil {
		return err
	}
	out, err := data.Between(df, col, float64(lo), float64(hi))
	if err != nil {
		return err
	}
	ui.PrintFrame(data.Head(out, resultRowLimit), out.Nrow())
	return nil
}

func (m *Menu) statistics(ctx context.Context) error {
	df, err := m.table(ctx)
	if err != nil {
		return err
	}
	numeric, categorical, err := data.Summary(df)
	if err != nil {
		return err
	}
	ui.PrintBold("📊 Numerical Features Summary")
	ui.Println(ui.RenderFrame(numeric))
	if categorical.Ncol() > 0 {
		ui.PrintBold("🗂  Categorical Features Summary")
		ui.Println(ui.RenderFrame(categorical))
	}
	return nil
}

func (m *Menu) train(ctx context.Context) error {
	r, err := m.app.Train(ctx)
	if err != nil {
		return err
	}
	PrintReport(r)
	return nil
}

// askOptionalInt returns nil for a blank answer.
func (m *Menu) askOptionalInt(message, help string) (*int, error) {
	s, err := m.prompt.Input(message, help)
	if err != nil {
		return nil, err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("%q is not a whole number", s)
	}
	return &n, nil
}

func (m *Menu) predict() error {
	ui.PrintBold("🔮 Enter car details for price prediction (leave blank if unknown)")
	var req pipeline.Request
	fields := []struct {
		message, help string
		dst           **int
	}{
		{"Manufacturing year:", "e.g. 2002", &req.MfgYear},
		{"Kilometers driven:", "e.g. 65000", &req.KM},
		{"Horsepower:", "e.g. 90", &req.HP},
		{"Number of doors:", "3, 4 or 5", &req.Doors},
	}
	for _, f := range fields {
		v, err := m.askOptionalInt(f.message, f.help)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	fuel, err := m.prompt.Input("Fuel type:", "Petrol, Diesel or CNG")
	if err != nil {
		return err
	}
	if fuel = strings.TrimSpace(fuel); fuel != "" {
		req.FuelType = &fuel
	}
	if req.Automatic, err = m.askOptionalInt("Automatic? (1 = yes, 0 = no):", ""); err != nil {
		return err
	}

	p, err := m.app.Predict(req)
	if err != nil {
		return err
	}
	PrintPrediction(req, p)
	return nil
}

func (m *Menu) charts(ctx context.Context) error {
	paths, err := m.app.Charts(ctx)
	if err != nil {
		return err
	}
	for _, p := range paths {
		ui.PrintSuccess("Saved %s", p)
	}
	return nil
}

// PrintReport prints the metrics and top coefficients of a training run.
func PrintReport(r *pipeline.Report) {
	ui.PrintSuccessBox("Model trained",
		fmt.Sprintf("run      %s\ntrain    %d rows\ntest     %d rows\nMAE      %.2f\nRMSE     %.2f\nR2       %.3f\nsaved to %s",
			r.RunID, r.TrainCount, r.TestCount, r.MAE, r.RMSE, r.R2, r.ArtifactPath))
	rows := make([][]string, len(r.TopCoefficients))
	for i, c := range r.TopCoefficients {
		rows[i] = []string{c.Name, strconv.FormatFloat(c.Weight, 'f', 2, 64)}
	}
	ui.PrintBold("Top coefficients")
	ui.Println(ui.RenderTable([]string{"feature", "weight"}, rows))
}

// PrintPrediction prints an estimate with the fields the request left out
// and the labels the model did not know.
func PrintPrediction(req pipeline.Request, p pipeline.Prediction) {
	if missing := req.MissingFields(); len(missing) > 0 {
		ui.PrintWarning("not given: %s (estimated from training averages)", strings.Join(missing, ", "))
	}
	for _, w := range p.Warnings {
		if w.Label == "" {
			continue
		}
		ui.PrintWarning("%s", w)
	}
	ui.PrintSuccess("💰 Estimated Price: $ %.2f", p.Rounded())
}
