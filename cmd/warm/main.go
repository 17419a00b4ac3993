package main

import (
	"bufio"
	"context"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/yshiba/webqa/internal/config"
	"github.com/yshiba/webqa/internal/database"
	"github.com/yshiba/webqa/internal/fetcher"
	"github.com/yshiba/webqa/internal/repository"
	"github.com/yshiba/webqa/internal/search"
	"github.com/yshiba/webqa/internal/services"
	"github.com/yshiba/webqa/pkg/utils"
)

// Cache warmer: reads questions (one per line, # comments allowed) and
// runs the full pipeline for each one that has no cached answer yet.

var (
	questionsFile = flag.String("questions", "questions.txt", "File with one question per line")
	dryRun        = flag.Bool("dry-run", false, "Only report which questions would be warmed")
	verbose       = flag.Bool("verbose", false, "Enable verbose logging")
	limit         = flag.Int("limit", 0, "Limit number of questions to process (0 = all)")
	delay         = flag.Duration("delay", 2*time.Second, "Delay between questions")
)

func main() {
	flag.Parse()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.Info("Starting qa cache warmer...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	questions, err := loadQuestions(*questionsFile)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load questions file")
	}
	if *limit > 0 && *limit < len(questions) {
		questions = questions[:*limit]
		logger.WithField("limit", *limit).Info("Limited questions to process")
	}
	logger.WithField("total_questions", len(questions)).Info("Questions loaded")

	if err := cfg.ValidateBrave(); err != nil {
		logger.WithError(err).Fatal("Search provider configuration validation failed")
	}

	dbManager, err := database.NewManager(&database.Config{
		DatabaseURL: cfg.Database.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	qaCache := repository.NewQACacheRepository(dbManager.DB)
	searchClient := search.NewClient(cfg.Brave.BaseURL, cfg.Brave.APIKey, cfg.Pipeline.WebRequestTimeout, logger)
	pageFetcher := fetcher.New(cfg.Pipeline.WebRequestTimeout, logger)
	answerService := services.NewAnswerService(
		qaCache,
		searchClient,
		pageFetcher,
		cfg.Pipeline.MaxContentURLs,
		cfg.Pipeline.MaxParagraphs,
		logger,
	)

	ctx := context.Background()
	warmed := 0
	skipped := 0
	failed := 0

	for i, question := range questions {
		entry := logger.WithFields(logrus.Fields{
			"question": question,
			"progress": i + 1,
			"total":    len(questions),
		})

		_, found, err := qaCache.LookupAnswer(question)
		if err != nil {
			entry.WithError(err).Error("Cache lookup failed")
		}
		if found {
			entry.Debug("Answer already cached, skipping")
			skipped++
			continue
		}

		if *dryRun {
			entry.Info("DRY RUN: Would warm question")
			continue
		}

		entry.Info("Warming question")
		if _, err := answerService.Ask(ctx, question); err != nil {
			entry.WithError(err).Error("Failed to answer question")
			failed++
		} else {
			warmed++
		}

		// Be polite to the search provider between questions
		if i < len(questions)-1 {
			time.Sleep(*delay)
		}
	}

	logger.WithFields(logrus.Fields{
		"warmed":  warmed,
		"skipped": skipped,
		"failed":  failed,
	}).Info("Cache warming completed")

	if failed > 0 {
		os.Exit(1)
	}
}

func loadQuestions(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var questions []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		questions = append(questions, line)
	}

	return questions, scanner.Err()
}
