// Command migrate-claims grants {storeId, role: owner} custom claims to every app user
// who owns a store and has no storeId claim yet, then writes a JSON report.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/db"
	"github.com/example/storefront/internal/identity"
	"github.com/example/storefront/internal/migration"
)

func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	dryRun := flag.Bool("dry-run", false, "report what would change without writing claims")
	outDir := flag.String("out", ".", "directory for the JSON report")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to initialize zap logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clients, err := db.InitFirebase(ctx, appConfig, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	if !*dryRun && !*yes && !confirm(appConfig.FirebaseProjectID) {
		logger.Info("Aborted")
		return
	}

	migrator := migration.NewClaimsMigrator(
		identity.NewFirebaseProvider(clients.Auth),
		db.NewFirestoreStoreRepository(clients.Firestore),
		db.NewFirestoreUserRepository(clients.Firestore),
		logger,
	)

	started := time.Now()
	report, runErr := migrator.Run(ctx, *dryRun)
	if report != nil {
		path, err := writeReport(*outDir, started, report)
		if err != nil {
			logger.Error("Failed to write report", zap.Error(err))
		} else {
			logger.Info("Report written", zap.String("path", path))
		}
		logger.Info("Migration finished",
			zap.Bool("dry_run", report.DryRun),
			zap.Int("total", report.Stats.Total),
			zap.Int("migrated", report.Stats.Migrated),
			zap.Int("already_has_claims", report.Stats.AlreadyHasClaims),
			zap.Int("no_store", report.Stats.NoStore),
			zap.Int("errors", report.Stats.Errors),
		)
	}
	if runErr != nil {
		logger.Fatal("Migration stopped early", zap.Error(runErr))
	}
	if report.Stats.Errors > 0 {
		os.Exit(1)
	}
}

func confirm(projectID string) bool {
	fmt.Printf("This will set owner claims and revoke sessions for store owners in project %q.\nContinue? [y/N]: ", projectID)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

func writeReport(dir string, started time.Time, report *migration.Report) (string, error) {
	path := filepath.Join(dir, migration.ReportFileName(started))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := report.WriteJSON(f); err != nil {
		return "", err
	}
	return path, nil
}
