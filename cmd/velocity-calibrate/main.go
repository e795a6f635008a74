// Command velocity-calibrate fits velocity-versus-depth models to field
// velocity picks stored in the archive database, to help an operator choose
// layer velocities for a stack. Picks are externally measured values; this
// tool never computes travel times itself.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	_ "github.com/lib/pq"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// VelocityPick is one field-measured velocity sample at a depth
type VelocityPick struct {
	Time     time.Time
	Depth    float64 // altitude in meters, negative below datum
	Velocity float64 // m/s
}

// ModelType represents different velocity-profile models
type ModelType string

const (
	ModelConstant  ModelType = "constant"
	ModelLinear    ModelType = "linear"
	ModelQuadratic ModelType = "quadratic"
	ModelCubic     ModelType = "cubic"
)

// CalibrationResult contains the analysis results for a specific model
type CalibrationResult struct {
	ModelType            ModelType
	ModelName            string
	Coefficients         []float64 // v(z) = c0 + c1*z + c2*z² + ...
	RSquared             float64
	AdjustedRSquared     float64
	MeanAbsoluteError    float64
	RootMeanSquaredError float64
	AIC                  float64
	BIC                  float64
	SampleCount          int
	DepthRange           [2]float64
	VelocityRange        [2]float64
}

// ComparisonResults contains all model results for comparison
type ComparisonResults struct {
	Models    []CalibrationResult
	BestByR2  CalibrationResult
	BestByAIC CalibrationResult
	BestByBIC CalibrationResult
}

func main() {
	var (
		dbHost    = flag.String("db-host", "localhost", "Database host")
		dbPort    = flag.Int("db-port", 5432, "Database port")
		dbUser    = flag.String("db-user", "postgres", "Database user")
		dbPass    = flag.String("db-pass", "", "Database password")
		dbName    = flag.String("db-name", "raypath", "Database name")
		modelName = flag.String("model", "", "Restrict picks to one model name (empty = all)")
		days      = flag.Int("days", 30, "Number of days of picks to analyze")
	)
	flag.Parse()

	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		*dbHost, *dbPort, *dbUser, *dbPass, *dbName)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		fmt.Fprintf(os.Stderr, "Error pinging database: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Velocity Profile Calibration\n")
	fmt.Printf("============================\n\n")
	fmt.Printf("Configuration:\n")
	fmt.Printf("  Model filter:    %s\n", orAll(*modelName))
	fmt.Printf("  Analysis period: %d days\n\n", *days)

	picks := fetchPicks(db, *modelName, *days)
	if len(picks) < 10 {
		fmt.Fprintf(os.Stderr, "Error: Not enough picks (%d). Need at least 10.\n", len(picks))
		os.Exit(1)
	}
	fmt.Printf("Collected %d velocity picks\n\n", len(picks))

	results := testAllModels(picks)
	displayComparison(results)
	displayBestModelDetails(results.BestByAIC)
}

func orAll(name string) string {
	if name == "" {
		return "(all models)"
	}
	return name
}

func fetchPicks(db *sql.DB, modelName string, days int) []VelocityPick {
	query := `
		SELECT time, depth, velocity
		FROM velocity_picks
		WHERE time >= NOW() - INTERVAL '1 day' * $1
		  AND ($2 = '' OR modelname = $2)
		  AND depth IS NOT NULL
		  AND velocity IS NOT NULL
		ORDER BY depth
	`

	rows, err := db.Query(query, days, modelName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error querying picks: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	var picks []VelocityPick
	for rows.Next() {
		var p VelocityPick
		if err := rows.Scan(&p.Time, &p.Depth, &p.Velocity); err != nil {
			fmt.Fprintf(os.Stderr, "Error scanning row: %v\n", err)
			continue
		}
		picks = append(picks, p)
	}

	return picks
}

func testAllModels(picks []VelocityPick) ComparisonResults {
	models := []CalibrationResult{
		fitConstantModel(picks),
		fitLinearModel(picks),
		fitPolynomialModel(picks, 2),
		fitPolynomialModel(picks, 3),
	}

	var comparison ComparisonResults
	comparison.Models = models

	bestR2 := models[0]
	for _, m := range models {
		if m.RSquared > bestR2.RSquared {
			bestR2 = m
		}
	}
	comparison.BestByR2 = bestR2

	// AIC balances fit quality with model complexity; lower is better
	bestAIC := models[0]
	for _, m := range models {
		if m.AIC < bestAIC.AIC {
			bestAIC = m
		}
	}
	comparison.BestByAIC = bestAIC

	// BIC penalizes complexity more than AIC
	bestBIC := models[0]
	for _, m := range models {
		if m.BIC < bestBIC.BIC {
			bestBIC = m
		}
	}
	comparison.BestByBIC = bestBIC

	return comparison
}

func extract(picks []VelocityPick) (depths, velocities []float64) {
	depths = make([]float64, len(picks))
	velocities = make([]float64, len(picks))
	for i, p := range picks {
		depths[i] = p.Depth
		velocities[i] = p.Velocity
	}
	return depths, velocities
}

func fitConstantModel(picks []VelocityPick) CalibrationResult {
	n := len(picks)
	depths, velocities := extract(picks)

	meanVel := stat.Mean(velocities, nil)

	result := CalibrationResult{
		ModelType:    ModelConstant,
		ModelName:    "Constant Velocity",
		Coefficients: []float64{meanVel},
		SampleCount:  n,
	}

	predict := func(z float64) float64 { return meanVel }
	result.RSquared = 0.0 // constant model explains no variance
	result.AdjustedRSquared = 0.0
	result.MeanAbsoluteError = calculateMAE(depths, velocities, predict)
	result.RootMeanSquaredError = calculateRMSE(depths, velocities, predict)
	result.AIC = calculateAIC(float64(n), result.RootMeanSquaredError, 1)
	result.BIC = calculateBIC(float64(n), result.RootMeanSquaredError, 1)
	fillRanges(&result, depths, velocities)

	return result
}

func fitLinearModel(picks []VelocityPick) CalibrationResult {
	n := len(picks)
	depths, velocities := extract(picks)

	// Linear gradient: v(z) = c0 + c1*z
	slope, intercept := stat.LinearRegression(depths, velocities, nil, false)

	result := CalibrationResult{
		ModelType:    ModelLinear,
		ModelName:    "Linear Gradient",
		Coefficients: []float64{intercept, slope},
		SampleCount:  n,
	}

	predict := func(z float64) float64 { return intercept + slope*z }
	result.RSquared = calculateRSquared(depths, velocities, predict)
	result.AdjustedRSquared = calculateAdjustedRSquared(result.RSquared, float64(n), 2)
	result.MeanAbsoluteError = calculateMAE(depths, velocities, predict)
	result.RootMeanSquaredError = calculateRMSE(depths, velocities, predict)
	result.AIC = calculateAIC(float64(n), result.RootMeanSquaredError, 2)
	result.BIC = calculateBIC(float64(n), result.RootMeanSquaredError, 2)
	fillRanges(&result, depths, velocities)

	return result
}

func fitPolynomialModel(picks []VelocityPick, degree int) CalibrationResult {
	n := len(picks)
	depths, velocities := extract(picks)

	// Build Vandermonde matrix for polynomial regression
	X := mat.NewDense(n, degree+1, nil)
	for i := 0; i < n; i++ {
		for j := 0; j <= degree; j++ {
			X.Set(i, j, math.Pow(depths[i], float64(j)))
		}
	}

	y := mat.NewVecDense(n, velocities)

	// Solve using QR decomposition
	var qr mat.QR
	qr.Factorize(X)

	coeffs := mat.NewVecDense(degree+1, nil)
	if err := qr.SolveVecTo(coeffs, false, y); err != nil {
		fmt.Fprintf(os.Stderr, "Error solving polynomial regression: %v\n", err)
		return CalibrationResult{}
	}

	coeff := make([]float64, degree+1)
	for i := 0; i <= degree; i++ {
		coeff[i] = coeffs.AtVec(i)
	}

	modelType := ModelQuadratic
	modelName := "Quadratic"
	if degree == 3 {
		modelType = ModelCubic
		modelName = "Cubic"
	}

	result := CalibrationResult{
		ModelType:    modelType,
		ModelName:    modelName,
		Coefficients: coeff,
		SampleCount:  n,
	}

	predict := func(z float64) float64 {
		pred := 0.0
		for i, c := range coeff {
			pred += c * math.Pow(z, float64(i))
		}
		return pred
	}

	result.RSquared = calculateRSquared(depths, velocities, predict)
	result.AdjustedRSquared = calculateAdjustedRSquared(result.RSquared, float64(n), float64(degree+1))
	result.MeanAbsoluteError = calculateMAE(depths, velocities, predict)
	result.RootMeanSquaredError = calculateRMSE(depths, velocities, predict)
	result.AIC = calculateAIC(float64(n), result.RootMeanSquaredError, float64(degree+1))
	result.BIC = calculateBIC(float64(n), result.RootMeanSquaredError, float64(degree+1))
	fillRanges(&result, depths, velocities)

	return result
}

func fillRanges(result *CalibrationResult, depths, velocities []float64) {
	minDepth, maxDepth := minMax(depths)
	minVel, maxVel := minMax(velocities)
	result.DepthRange = [2]float64{minDepth, maxDepth}
	result.VelocityRange = [2]float64{minVel, maxVel}
}

func calculateRSquared(x, y []float64, predict func(float64) float64) float64 {
	meanY := stat.Mean(y, nil)

	var ssTot, ssRes float64
	for i := range y {
		predicted := predict(x[i])
		ssTot += math.Pow(y[i]-meanY, 2)
		ssRes += math.Pow(y[i]-predicted, 2)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func calculateAdjustedRSquared(r2, n, k float64) float64 {
	if n-k-1 <= 0 {
		return r2
	}
	return 1 - (1-r2)*(n-1)/(n-k-1)
}

func calculateMAE(x, y []float64, predict func(float64) float64) float64 {
	var sum float64
	for i := range y {
		sum += math.Abs(y[i] - predict(x[i]))
	}
	return sum / float64(len(y))
}

func calculateRMSE(x, y []float64, predict func(float64) float64) float64 {
	var sum float64
	for i := range y {
		sum += math.Pow(y[i]-predict(x[i]), 2)
	}
	return math.Sqrt(sum / float64(len(y)))
}

func calculateAIC(n, rmse, k float64) float64 {
	return n*math.Log(rmse*rmse) + 2*k
}

func calculateBIC(n, rmse, k float64) float64 {
	return n*math.Log(rmse*rmse) + k*math.Log(n)
}

func minMax(values []float64) (float64, float64) {
	min, max := values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func displayComparison(results ComparisonResults) {
	fmt.Printf("Model Comparison\n")
	fmt.Printf("----------------\n")
	fmt.Printf("%-18s %10s %10s %10s %10s %10s\n", "Model", "R²", "Adj R²", "RMSE", "AIC", "BIC")
	for _, m := range results.Models {
		fmt.Printf("%-18s %10.4f %10.4f %10.2f %10.1f %10.1f\n",
			m.ModelName, m.RSquared, m.AdjustedRSquared, m.RootMeanSquaredError, m.AIC, m.BIC)
	}
	fmt.Printf("\nBest by R²:  %s\n", results.BestByR2.ModelName)
	fmt.Printf("Best by AIC: %s\n", results.BestByAIC.ModelName)
	fmt.Printf("Best by BIC: %s\n", results.BestByBIC.ModelName)
}

func displayBestModelDetails(result CalibrationResult) {
	fmt.Printf("\nRecommended Model: %s\n", result.ModelName)
	fmt.Printf("-------------------\n")
	fmt.Printf("  Samples:        %d\n", result.SampleCount)
	fmt.Printf("  Depth range:    %.1f to %.1f m\n", result.DepthRange[0], result.DepthRange[1])
	fmt.Printf("  Velocity range: %.1f to %.1f m/s\n", result.VelocityRange[0], result.VelocityRange[1])
	fmt.Printf("  MAE:            %.2f m/s\n", result.MeanAbsoluteError)
	fmt.Printf("  RMSE:           %.2f m/s\n", result.RootMeanSquaredError)
	fmt.Printf("  v(z) = ")
	for i, c := range result.Coefficients {
		if i == 0 {
			fmt.Printf("%.4f", c)
		} else {
			fmt.Printf(" + %.6f*z^%d", c, i)
		}
	}
	fmt.Printf("\n")
}
