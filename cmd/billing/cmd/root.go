package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Kopoklesz/EmployeeManager/internal/backend"
	"github.com/Kopoklesz/EmployeeManager/internal/backend/billingo"
	"github.com/Kopoklesz/EmployeeManager/internal/backend/szamlazz"
	"github.com/Kopoklesz/EmployeeManager/internal/config"
	"github.com/Kopoklesz/EmployeeManager/internal/httpclient"
	"github.com/Kopoklesz/EmployeeManager/internal/logger"
	"github.com/Kopoklesz/EmployeeManager/internal/render"
	"github.com/Kopoklesz/EmployeeManager/internal/service"
	"github.com/Kopoklesz/EmployeeManager/internal/store"
)

var (
	version = "1.0.0"

	// Global flags
	verbose     bool
	dbPath      string
	backendName string
)

var rootCmd = &cobra.Command{
	Use:   "billing",
	Short: "Issue and manage Hungarian invoices",
	Long: `Billing is the invoice lifecycle engine: it computes amounts, allocates
gap-free invoice numbers, drives the invoice state machine and issues the
document through the configured billing backend.

Backends:
  - local_xml  tax-authority data-export XML, no credential needed
  - szamlazz   Számlázz.hu agent API
  - billingo   Billingo v3 API

Examples:
  # Create a draft from a JSON file
  billing create draft.json

  # Issue a draft through the configured backend
  billing issue inv_01J9ZK5T2V

  # Export the data-export XML
  billing export inv_01J9ZK5T2V -o invoice.xml

  # List configured backends
  billing backends

  # Start the HTTP API
  billing serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "Billing backend override (local_xml, szamlazz, billingo)")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env is optional; real deployments configure through the environment
	_ = godotenv.Load()
}

// app bundles everything a command needs.
type app struct {
	cfg      *config.Configuration
	log      *logger.Logger
	invoices *service.InvoiceService
	selector *backend.Selector
}

func newApp() (*app, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if backendName != "" {
		cfg.Billing.Backend = backendName
	}

	var log *logger.Logger
	if verbose {
		log = logger.NewDevelopment()
	} else {
		log, err = logger.New()
		if err != nil {
			return nil, err
		}
	}

	settings := cfg.CompanySettings()

	st, err := store.OpenSQLite(cfg.Database.Path, settings.SequencePrefix)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewDefaultClient()
	selector := backend.NewSelector(log,
		backend.NewLocal(settings),
		szamlazz.New(szamlazz.Config{AgentKey: settings.SzamlazzAgentKey}, settings, client, log),
		billingo.New(billingo.Config{
			APIKey:  settings.BillingoAPIKey,
			BlockID: settings.BillingoBlockID,
		}, client, log),
	)

	invoices := service.New(service.Params{
		Store:    st,
		Settings: settings,
		Selector: selector,
		Renderer: render.NewPDF(),
		Logger:   log,
	})

	return &app{cfg: cfg, log: log, invoices: invoices, selector: selector}, nil
}
