package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/mathachew7/JoslaSync/internal/infrastructure/logger"
	"github.com/mathachew7/JoslaSync/internal/repository"
	"github.com/mathachew7/JoslaSync/internal/service"
	"github.com/mathachew7/JoslaSync/internal/tenant"
	"github.com/mathachew7/JoslaSync/pkg/config"
	"github.com/mathachew7/JoslaSync/pkg/database"
)

// Operator tool for tenant maintenance. Its main job is healing a company
// whose registration committed the master record but failed partway through
// tenant-side provisioning: every step it re-runs is idempotent.
func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "ensure-schema":
		runEnsureSchema(args)
	case "heal":
		runHeal(args)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Usage: joslasync-admin <command>

Commands:
  ensure-schema <db_name>    apply the tenant schema to a tenant database
  heal <company_name>        re-run tenant provisioning for a registered company
  help                       show this message`)
}

func setup() (*config.Config, *sql.DB, *tenant.Registry, context.Context, context.CancelFunc) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewLogger(cfg.LogLevel)

	dbCfg := &database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.MasterDBName,
		SSLMode:  cfg.DBSSLMode,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	masterDB, err := database.Connect(ctx, dbCfg, log)
	if err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "failed to connect to master database: %v\n", err)
		os.Exit(1)
	}

	return cfg, masterDB, tenant.NewRegistry(masterDB, dbCfg, log), ctx, cancel
}

func runEnsureSchema(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: joslasync-admin ensure-schema <db_name>")
		os.Exit(1)
	}
	dbName := args[0]

	_, masterDB, registry, ctx, cancel := setup()
	defer cancel()
	defer masterDB.Close()
	defer registry.Close()

	if err := registry.CreateDatabaseIfMissing(ctx, dbName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create database: %v\n", err)
		os.Exit(1)
	}
	if err := registry.EnsureSchema(ctx, dbName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("schema ensured for %s\n", dbName)
}

func runHeal(args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: joslasync-admin heal <company_name>")
		os.Exit(1)
	}
	companyName := args[0]

	_, masterDB, registry, ctx, cancel := setup()
	defer cancel()
	defer masterDB.Close()
	defer registry.Close()

	directory := repository.NewPostgresCompanyDirectory(masterDB, nil)
	record, err := directory.GetByName(ctx, companyName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "company not found in master directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("healing %s (db %s)\n", record.CompanyName, record.DBName)

	if err := registry.CreateDatabaseIfMissing(ctx, record.DBName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create database: %v\n", err)
		os.Exit(1)
	}
	if err := registry.EnsureSchema(ctx, record.DBName); err != nil {
		fmt.Fprintf(os.Stderr, "failed to ensure schema: %v\n", err)
		os.Exit(1)
	}

	sess, err := registry.OpenSession(ctx, record.DBName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open tenant session: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	settings := service.NewSettingsService(nil)
	if _, err := settings.GetOrCreate(ctx, sess); err != nil {
		fmt.Fprintf(os.Stderr, "failed to seed settings: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("heal complete for %s\n", record.CompanyName)
}
