// cmd/backtest/main.go
package main

import (
	"fmt"
	"log"
	"math"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/capstone-itrack/backend-go/internal/domain"
	"github.com/capstone-itrack/backend-go/internal/forecast"
	"github.com/capstone-itrack/backend-go/internal/repository"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

// Holdout backtest: for every item with enough history, hide the last
// `horizon` months, forecast them from the rest, and score the miss. This is
// the offline answer to "how wrong are the restock numbers likely to be".

type itemResult struct {
	name   string
	months int
	method string
	mae    float64
	mape   float64 // -1 when every holdout month had zero actual demand
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "backtest",
		Usage: "Evaluate forecast accuracy on held-out months",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "horizon",
				Usage: "Months to hold out and forecast",
				Value: 3,
			},
			&cli.IntFlag{
				Name:  "min-months",
				Usage: "Minimum populated months in the training window",
				Value: 6,
			},
			&cli.StringFlag{
				Name:  "source",
				Usage: "History source: auto, db or xlsx",
				Value: "auto",
			},
			&cli.StringFlag{
				Name:    "data-file",
				Usage:   "History workbook for the xlsx source",
				Value:   "./data/uploads/history.xlsx",
				EnvVars: []string{"APP_HISTORY_FILE"},
			},
			&cli.IntFlag{
				Name:  "top",
				Usage: "How many worst items to highlight",
				Value: 10,
			},
			&cli.StringFlag{
				Name:    "db-url",
				Usage:   "Database connection string (db and auto sources)",
				EnvVars: []string{"DATABASE_URL"},
			},
		},
		Action: runBacktest,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runBacktest(c *cli.Context) error {
	horizon := c.Int("horizon")
	minMonths := c.Int("min-months")
	if horizon < 1 {
		return fmt.Errorf("horizon must be at least 1")
	}
	if minMonths < 1 {
		return fmt.Errorf("min-months must be at least 1")
	}

	records, source, err := loadRecords(c)
	if err != nil {
		return err
	}
	log.Printf("Loaded %d history rows from %s", len(records), source)

	agg := forecast.AggregateMonthly(records)
	fitter := forecast.NewFitter(minMonths)

	var results []itemResult
	for _, key := range agg.Keys() {
		series := agg.Items[key]
		if len(series.Points) < minMonths+horizon {
			continue
		}

		res, ok := evaluateItem(series, fitter, horizon, minMonths)
		if !ok {
			continue
		}
		results = append(results, res)
	}

	if len(results) == 0 {
		return fmt.Errorf("no item has the %d months required (min-months + horizon)", minMonths+horizon)
	}

	printResults(results, horizon, c.Int("top"))
	return nil
}

func loadRecords(c *cli.Context) ([]domain.HistoryRecord, string, error) {
	source := c.String("source")
	dataFile := c.String("data-file")
	dbURL := c.String("db-url")

	switch source {
	case "db":
		if dbURL == "" {
			return nil, "", fmt.Errorf("--db-url is required for the db source")
		}
		records, err := loadFromDB(c, dbURL)
		if err != nil {
			return nil, "", err
		}
		return records, "db", nil

	case "xlsx":
		records, err := forecast.ReadHistoryWorkbook(dataFile)
		if err != nil {
			return nil, "", err
		}
		return records, dataFile, nil

	case "auto":
		if dbURL != "" {
			records, err := loadFromDB(c, dbURL)
			if err != nil {
				log.Printf("db load failed (%v), trying workbook", err)
			} else if len(records) > 0 {
				return records, "db", nil
			}
		}
		records, err := forecast.ReadHistoryWorkbook(dataFile)
		if err != nil {
			return nil, "", err
		}
		return records, dataFile, nil

	default:
		return nil, "", fmt.Errorf("unknown source %q (want auto, db or xlsx)", source)
	}
}

func loadFromDB(c *cli.Context, dbURL string) ([]domain.HistoryRecord, error) {
	db, err := sqlx.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return repository.NewHistoryRepository(db).LoadHistory(c.Context)
}

// evaluateItem trains on everything but the last horizon months and scores
// the forecast against what actually happened in them.
func evaluateItem(series domain.MonthlySeries, fitter forecast.Fitter, horizon, minMonths int) (itemResult, bool) {
	cut := len(series.Points) - horizon
	train := domain.MonthlySeries{Key: series.Key, Name: series.Name, Points: series.Points[:cut]}
	actuals := series.Points[cut:]

	preds, method := forecastWindow(train, fitter, horizon, minMonths)
	if preds == nil {
		return itemResult{}, false
	}

	var absErrSum, pctErrSum float64
	pctMonths := 0
	for i, pt := range actuals {
		served := math.Max(0, math.Round(preds[i]))
		diff := math.Abs(served - pt.Quantity)
		absErrSum += diff
		if pt.Quantity > 0 {
			pctErrSum += diff / pt.Quantity
			pctMonths++
		}
	}

	res := itemResult{
		name:   series.Name,
		months: len(series.Points),
		method: method,
		mae:    absErrSum / float64(horizon),
		mape:   -1,
	}
	if pctMonths > 0 {
		res.mape = pctErrSum / float64(pctMonths) * 100
	}
	return res, true
}

func forecastWindow(train domain.MonthlySeries, fitter forecast.Fitter, horizon, minMonths int) ([]float64, string) {
	if forecast.Eligible(train, minMonths) {
		model, err := fitter.Fit(train.Values())
		if err == nil {
			return model.Predict(horizon), model.Kind()
		}
		log.Printf("fit failed for %s (%v), using fallback", train.Name, err)
	}

	mean, ok := forecast.FallbackEstimate(train)
	if !ok {
		return nil, ""
	}
	preds := make([]float64, horizon)
	for i := range preds {
		preds[i] = mean
	}
	return preds, "fallback"
}

func printResults(results []itemResult, horizon, top int) {
	sort.Slice(results, func(i, j int) bool { return results[i].name < results[j].name })

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ITEM\tMONTHS\tMETHOD\tMAE\tMAPE%")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%s\t%.2f\t%s\n", r.name, r.months, r.method, r.mae, mapeLabel(r.mape))
	}
	w.Flush()

	var maeSum, mapeSum float64
	mapeItems := 0
	for _, r := range results {
		maeSum += r.mae
		if r.mape >= 0 {
			mapeSum += r.mape
			mapeItems++
		}
	}

	fmt.Printf("\nEvaluated %d items over a %d-month holdout\n", len(results), horizon)
	fmt.Printf("Mean MAE: %.2f\n", maeSum/float64(len(results)))
	if mapeItems > 0 {
		fmt.Printf("Mean MAPE: %.2f%% (%d items with non-zero actuals)\n", mapeSum/float64(mapeItems), mapeItems)
	}

	if top <= 0 || len(results) == 0 {
		return
	}
	worst := append([]itemResult(nil), results...)
	sort.Slice(worst, func(i, j int) bool {
		if worst[i].mae != worst[j].mae {
			return worst[i].mae > worst[j].mae
		}
		return worst[i].name < worst[j].name
	})
	if top > len(worst) {
		top = len(worst)
	}

	fmt.Printf("\nWorst %d items by MAE:\n", top)
	for i := 0; i < top; i++ {
		fmt.Printf("  %2d. %s (MAE %.2f, MAPE %s)\n", i+1, worst[i].name, worst[i].mae, mapeLabel(worst[i].mape))
	}
}

func mapeLabel(mape float64) string {
	if mape < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", mape)
}
