package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/i474232898/crop-recommendation/internal/app"
	"github.com/i474232898/crop-recommendation/internal/config"
	"github.com/i474232898/crop-recommendation/internal/ecology"
	"github.com/i474232898/crop-recommendation/internal/recommend"
	"github.com/i474232898/crop-recommendation/internal/scoring"
)

var (
	catalogFile string
	strict      bool
	asJSON      bool
)

var rootCmd = &cobra.Command{
	Use:           "cropctl",
	Short:         "Crop suitability tooling",
	Long:          `Score crops offline against a catalog, validate catalog files, or run a live recommendation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Rank crops for given environmental values",
	Long:  `Rank every crop in the catalog against the supplied temperature, rainfall, altitude, latitude and month. No network calls are made.`,
	RunE:  runScore,
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Catalog maintenance",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load a catalog file and report problems",
	RunE:  runValidate,
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Fetch live conditions for a point and rank crops",
	Long:  `Runs the same pipeline as the HTTP service, configured from the environment (.env is honoured).`,
	RunE:  runRecommend,
}

var (
	temperature float64
	rainfall    float64
	altitude    float64
	latitude    float64
	longitude   float64
	month       int
	soilPH      float64
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&catalogFile, "catalog", "c", "data/crop_ecology.csv", "Catalog file (.csv, .yaml)")
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Reject inconsistent catalog profiles")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")

	scoreCmd.Flags().Float64VarP(&temperature, "temp", "t", 0, "Temperature in °C")
	scoreCmd.Flags().Float64VarP(&rainfall, "rainfall", "r", 0, "Annual rainfall in mm")
	scoreCmd.Flags().Float64VarP(&altitude, "altitude", "a", 0, "Altitude in m")
	scoreCmd.Flags().Float64Var(&latitude, "lat", 0, "Latitude")
	scoreCmd.Flags().IntVarP(&month, "month", "m", int(time.Now().UTC().Month()), "Month (1-12)")
	scoreCmd.Flags().Float64Var(&soilPH, "ph", 0, "Soil pH (omit to skip the pH factor)")
	_ = scoreCmd.MarkFlagRequired("temp")
	_ = scoreCmd.MarkFlagRequired("rainfall")
	_ = scoreCmd.MarkFlagRequired("altitude")
	_ = scoreCmd.MarkFlagRequired("lat")

	recommendCmd.Flags().Float64Var(&latitude, "lat", 0, "Latitude")
	recommendCmd.Flags().Float64Var(&longitude, "lon", 0, "Longitude")
	recommendCmd.Flags().Float64Var(&soilPH, "ph", 0, "Soil pH (optional)")
	_ = recommendCmd.MarkFlagRequired("lat")
	_ = recommendCmd.MarkFlagRequired("lon")

	catalogCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(scoreCmd, catalogCmd, recommendCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadCatalog(ctx context.Context) (*ecology.Catalog, error) {
	return ecology.FileSource{Path: catalogFile, Strict: strict}.Load(ctx)
}

// optionalPH returns the --ph flag value only when it was set.
func optionalPH(cmd *cobra.Command) *float64 {
	if !cmd.Flags().Changed("ph") {
		return nil
	}
	v := soilPH
	return &v
}

func runScore(cmd *cobra.Command, _ []string) error {
	q := recommend.ConditionsQuery{
		TemperatureC: temperature,
		Rainfall:     rainfall,
		AltitudeM:    altitude,
		Latitude:     latitude,
		Month:        month,
		SoilPH:       optionalPH(cmd),
	}
	if err := q.Validate(); err != nil {
		return err
	}
	cat, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}

	ranked := scoring.Score(q.Environment(), q.Month, q.SoilPH, cat.Profiles())
	return printRanking(ranked)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cat, err := loadCatalog(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d crops loaded\n", catalogFile, cat.Len())
	return nil
}

func runRecommend(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogPath = catalogFile
		cfg.CatalogDSN = ""
	}
	if cmd.Flags().Changed("strict") {
		cfg.CatalogStrict = strict
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	rec, err := application.Pipeline.Recommend(ctx, recommend.LocationQuery{
		Latitude:  latitude,
		Longitude: longitude,
		SoilPH:    optionalPH(cmd),
	})
	if err != nil {
		return err
	}

	if asJSON {
		return printJSON(rec)
	}
	env := rec.Environment
	fmt.Printf("%s, %s  %.1f°C %s  rainfall %.2f mm  altitude %.0f m  month %d\n\n",
		env.LocationName, env.Country, env.TemperatureC, env.Condition,
		env.AnnualRainfallMM, env.AltitudeM, env.ObservedMonth)
	return printRanking(rec.Crops)
}

func printRanking(ranked []scoring.ScoredCrop) error {
	if asJSON {
		return printJSON(ranked)
	}
	if len(ranked) == 0 {
		fmt.Println("no suitable crops")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCROP\tSCORE\tPLANTING\tHARVESTING")
	for i, c := range ranked {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\n", i+1, c.Crop, c.Score, yesNo(c.Planting), yesNo(c.Harvesting))
	}
	return w.Flush()
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
