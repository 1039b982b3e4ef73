package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/card-optimizer/internal/catalog"
	"github.com/dvloznov/card-optimizer/internal/chat"
	"github.com/dvloznov/card-optimizer/internal/classifier"
	"github.com/dvloznov/card-optimizer/internal/config"
	"github.com/dvloznov/card-optimizer/internal/logger"
	"github.com/dvloznov/card-optimizer/internal/pipeline"
	"github.com/dvloznov/card-optimizer/internal/rewards"
	"github.com/dvloznov/card-optimizer/internal/statement"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "help", "-h", "--help":
		printUsage()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log := logger.New()
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log := logger.NewWithLevel(logger.ParseLevel(cfg.LogLevel))

	switch os.Args[1] {
	case "analyze":
		runAnalyze(cfg, log)
	case "classify":
		runClassify(log)
	case "cards":
		runCards(cfg, log)
	case "chat":
		runChat(cfg, log)
	case "export":
		runExport(cfg, log)
	case "seed":
		runSeed(cfg, log)
	case "upload":
		runUpload(cfg, log)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Card Reward Optimizer CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  analyze   Recommend the best card for every spend in a statement")
	fmt.Println("  classify  Show the category of a transaction description")
	fmt.Println("  cards     List the card catalog")
	fmt.Println("  chat      Ask questions about a statement and the catalog")
	fmt.Println("  export    Write the catalog as YAML")
	fmt.Println("  seed      Create and fill the credit_cards table in BigQuery, Postgres or Notion")
	fmt.Println("  upload    Upload a statement file to GCS")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nThe catalog is read from CATALOG_SOURCE (builtin, yaml, bigquery, postgres, notion).")
	fmt.Println("Run 'cli <command> -h' for more information on a command.")
}

// openCatalog opens and loads the configured catalog.
func openCatalog(ctx context.Context, cfg *config.Config, log zerolog.Logger) (catalog.Source, *catalog.Snapshot, func()) {
	src, closeSource, err := catalog.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("source", cfg.Catalog.Source).Msg("Failed to open card catalog")
	}
	snap, err := catalog.Load(ctx, src)
	if err != nil {
		closeSource()
		log.Fatal().Err(err).Msg("Failed to load card catalog")
	}
	return src, snap, closeSource
}

// analyzeStatement runs the analysis pipeline for one statement.
func analyzeStatement(ctx context.Context, cfg *config.Config, log zerolog.Logger, uri string) (*pipeline.AnalysisState, func()) {
	src, snap, closeSource := openCatalog(ctx, cfg, log)

	loader := statement.NewCloudLoader(ctx, cfg.Gemini.Model)
	state := &pipeline.AnalysisState{StatementURI: uri, Catalog: snap}
	if err := pipeline.NewAnalysisPipeline(loader, classifier.Default(), src).Execute(ctx, state); err != nil {
		closeSource()
		log.Fatal().Err(err).Msg("Analysis failed")
	}
	return state, closeSource
}

func runAnalyze(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	uri := fs.String("statement", "", "Statement path or gs:// URI (.csv, .xlsx, .pdf)")
	top := fs.Int("top", 10, "Number of top recommendations to show")
	asJSON := fs.Bool("json", false, "Print the full report as JSON")
	fs.Parse(os.Args[2:])

	if *uri == "" {
		log.Fatal().Msg("Usage: cli analyze -statement PATH [-top N] [-json]")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	state, closeSource := analyzeStatement(ctx, cfg, log, *uri)
	defer closeSource()

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]interface{}{
			"stats":   state.Statement.Stats,
			"report":  state.Report,
			"summary": state.Summary,
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to write report")
		}
		return
	}

	printReport(os.Stdout, state, *top)
}

func printReport(out io.Writer, state *pipeline.AnalysisState, top int) {
	stats := state.Statement.Stats
	fmt.Fprintf(out, "\nStatement: %s (%d rows, %d debit spends kept)\n", state.StatementURI, stats.Rows, stats.Kept)
	fmt.Fprintf(out, "Total optimized savings: %s\n", inr(state.Report.TotalSavings))

	fmt.Fprintln(out, "\n=== Savings by category ===")
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSPENDS\tSPENT\tSAVINGS\tBEST CARD")
	for _, s := range state.Summary {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", s.Category, s.Transactions, inr(s.TotalSpend), inr(s.TotalSavings), s.TopCard)
	}
	tw.Flush()

	fmt.Fprintf(out, "\n=== Top %d optimized transactions ===\n", top)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tDESCRIPTION\tCATEGORY\tAMOUNT\tCARD\tSAVES")
	for _, r := range rewards.TopBySavings(state.Report.Recommendations, top) {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Transaction.Date, r.Transaction.Description, r.Transaction.Category,
			inr(r.Transaction.Amount), r.RecommendedCard, inr(r.SavedINR))
	}
	tw.Flush()
	fmt.Fprintln(out)
}

func inr(v float64) string {
	return "₹" + decimal.NewFromFloat(v).StringFixed(2)
}

func runClassify(log zerolog.Logger) {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	description := fs.String("description", "", "Transaction description")
	fs.Parse(os.Args[2:])

	if *description == "" {
		log.Fatal().Msg("Usage: cli classify -description TEXT")
	}

	fmt.Println(classifier.Classify(*description))
}

func runCards(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("cards", flag.ExitOnError)
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	_, snap, closeSource := openCatalog(ctx, cfg, log)
	defer closeSource()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCARD\tJOINING\tRENEWAL\tWAIVER AT\tMULTIPLIERS")
	for _, c := range snap.Cards {
		mults := catalog.EncodeMultipliers(c.Multipliers)
		if c.Malformed() {
			mults = "malformed: " + c.DecodeErr.Error()
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.DisplayName(), inr(c.JoiningFee), inr(c.RenewalFee), inr(c.WaiverSpendLimit), mults)
	}
	tw.Flush()
	fmt.Printf("\n%d cards from %s (%d malformed)\n", len(snap.Cards), snap.Source, snap.Malformed)
}

func runChat(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	uri := fs.String("statement", "", "Statement to discuss (optional; catalog questions work without one)")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)

	var agent *chat.Agent
	if *uri != "" {
		state, closeSource := analyzeStatement(ctx, cfg, log, *uri)
		defer closeSource()
		agent = chat.NewAgent(state.Catalog.Cards, state.Report)
	} else {
		_, snap, closeSource := openCatalog(ctx, cfg, log)
		defer closeSource()
		agent = chat.NewAgent(snap.Cards, nil)
	}

	fmt.Println("Card advisor ready. Type 'help' for ideas or 'exit' to quit.")
	runChatLoop(os.Stdin, os.Stdout, agent)
}

// runChatLoop answers one message per input line until an exit message or EOF.
func runChatLoop(in io.Reader, out io.Writer, agent *chat.Agent) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\nyou> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return
		}
		if strings.TrimSpace(scanner.Text()) == "" {
			continue
		}

		reply := agent.Respond(scanner.Text())
		fmt.Fprintln(out, reply.Text)
		for _, row := range reply.Rows {
			fmt.Fprintf(out, "  - %s: %s\n", row.Card, row.Detail)
		}
		if reply.Done {
			return
		}
	}
}

func runExport(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	outPath := fs.String("out", "", "Output file (defaults to stdout)")
	fs.Parse(os.Args[2:])

	ctx := logger.WithContext(context.Background(), log)
	_, snap, closeSource := openCatalog(ctx, cfg, log)
	defer closeSource()

	var out io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create output file")
		}
		defer f.Close()
		out = f
	}

	if err := catalog.EncodeYAML(out, snap.Cards); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}
}

func runSeed(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	target := fs.String("target", "", "Store to seed: bigquery, postgres or notion")
	fs.Parse(os.Args[2:])

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	rows := catalog.SeedRows

	switch *target {
	case config.SourceBigQuery:
		if cfg.BigQuery.ProjectID == "" {
			log.Fatal().Msg("BIGQUERY_PROJECT is required to seed BigQuery")
		}
		client, err := bigquery.NewClient(ctx, cfg.BigQuery.ProjectID)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create BigQuery client")
		}
		defer client.Close()
		if err := catalog.SeedBigQuery(ctx, client, cfg.BigQuery.Dataset, cfg.BigQuery.Table, rows); err != nil {
			log.Fatal().Err(err).Msg("Seeding BigQuery failed")
		}

	case config.SourcePostgres:
		if cfg.Database.URL == "" {
			log.Fatal().Msg("DATABASE_URL is required to seed Postgres")
		}
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Postgres")
		}
		defer pool.Close()
		if err := catalog.SeedPostgres(ctx, pool, rows); err != nil {
			log.Fatal().Err(err).Msg("Seeding Postgres failed")
		}

	case config.SourceNotion:
		if cfg.Notion.Token == "" || cfg.Notion.CardsDBID == "" {
			log.Fatal().Msg("NOTION_TOKEN and NOTION_CARDS_DB_ID are required to seed Notion")
		}
		client := catalog.NewNotionClient(cfg.Notion.Token)
		if err := catalog.SeedNotion(ctx, client, cfg.Notion.CardsDBID, rows); err != nil {
			log.Fatal().Err(err).Msg("Seeding Notion failed")
		}

	default:
		log.Fatal().Msg("Usage: cli seed -target bigquery|postgres|notion")
	}

	fmt.Printf("Seeded %d cards into %s.\n", len(rows), *target)
}

func runUpload(cfg *config.Config, log zerolog.Logger) {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)
	bucketName := fs.String("bucket", cfg.Storage.Bucket, "GCS bucket name (or set GCS_BUCKET env)")
	objectName := fs.String("object", "", "GCS object name (defaults to statements/<file name>)")
	filePath := fs.String("file", "", "Path to local statement file")
	fs.Parse(os.Args[2:])

	if *bucketName == "" || *filePath == "" {
		log.Fatal().Msg("Usage: cli upload -bucket NAME -file PATH [-object NAME]")
	}

	ctx := logger.WithContext(context.Background(), log)

	log.Info().
		Str("bucket", *bucketName).
		Str("file", *filePath).
		Msg("Uploading statement to GCS")

	uri, err := statement.Upload(ctx, *bucketName, *objectName, *filePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Upload failed")
	}

	fmt.Printf("Uploaded %s to %s\n", *filePath, uri)
	fmt.Printf("Analyse it with: cli analyze -statement %s\n", uri)
}
