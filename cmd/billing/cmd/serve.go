package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Kopoklesz/EmployeeManager/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start the HTTP API the desktop UI talks to.

Endpoints:
  - GET    /api/v1/invoices             - List invoices
  - POST   /api/v1/invoices             - Create a draft
  - GET    /api/v1/invoices/:id         - Get one invoice
  - PUT    /api/v1/invoices/:id         - Update a draft
  - DELETE /api/v1/invoices/:id         - Delete a draft
  - POST   /api/v1/invoices/:id/issue   - Issue through the backend
  - POST   /api/v1/invoices/:id/resend  - Retry transmission
  - POST   /api/v1/invoices/:id/pay     - Mark paid
  - POST   /api/v1/invoices/:id/cancel  - Cancel
  - GET    /api/v1/invoices/:id/xml     - Data-export XML
  - GET    /api/v1/invoices/:id/pdf     - Printable PDF
  - GET    /api/v1/backends             - Backend availability
  - GET    /health                      - Health check

Examples:
  billing serve
  billing serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from config)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 60*time.Second, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	addr := serverAddr
	if addr == "" {
		addr = app.cfg.Server.Address
	}

	config := &server.Config{
		Address:      addr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug || app.cfg.Server.Debug,
	}

	srv := server.NewServer(config, app.invoices, app.selector, app.cfg.Billing.Backend, app.log)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		fmt.Println("\nShutting down server...")
		os.Exit(0)
	}()

	fmt.Printf("Starting server on %s\n", addr)
	return srv.Run()
}
