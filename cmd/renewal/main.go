package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"github.com/uwbench/renewal/internal/api"
	"github.com/uwbench/renewal/internal/calculation"
	"github.com/uwbench/renewal/internal/config"
	"github.com/uwbench/renewal/internal/output"
)

// simpleCLILogger implements calculation.Logger using the standard log package
type simpleCLILogger struct{}

func (simpleCLILogger) Debugf(format string, args ...any) { log.Printf("DEBUG: "+format, args...) }
func (simpleCLILogger) Infof(format string, args ...any)  { log.Printf("INFO: "+format, args...) }
func (simpleCLILogger) Warnf(format string, args ...any)  { log.Printf("WARN: "+format, args...) }
func (simpleCLILogger) Errorf(format string, args ...any) { log.Printf("ERROR: "+format, args...) }

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "renewal",
	Short: "Group renewal premium projection CLI",
	Long:  "Projects renewal premiums from claims experience using carrier-specific rating methodologies",
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [input-file]",
	Short: "Run a renewal projection from a YAML input file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		parser := config.NewInputParser()
		input, err := parser.LoadFromFile(args[0])
		if err != nil {
			log.Fatal(err)
		}

		dispatcher := calculation.NewDispatcher()
		if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
			dispatcher.SetLogger(simpleCLILogger{})
		}

		result, err := dispatcher.Dispatch(context.Background(), input)
		if err != nil {
			log.Fatal(err)
		}

		format, _ := cmd.Flags().GetString("format")
		formatter, err := output.NewFormatter(format)
		if err != nil {
			log.Fatal(err)
		}
		rendered, err := formatter.FormatRenewal(result)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintln(os.Stdout, rendered)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the renewal HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		dispatcher := calculation.NewDispatcher()
		if debugMode, _ := cmd.Flags().GetBool("debug"); debugMode {
			dispatcher.SetLogger(simpleCLILogger{})
		}

		addr, _ := cmd.Flags().GetString("addr")
		handler := api.NewHandler(dispatcher)
		server := &http.Server{
			Addr:              addr,
			Handler:           api.NewRouter(handler),
			ReadHeaderTimeout: 10 * time.Second,
		}

		log.Printf("INFO: listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	},
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "renewal %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

func main() {
	calculateCmd.Flags().String("format", "console", "Output format (console, json, csv)")
	calculateCmd.Flags().Bool("debug", false, "Enable debug logging")
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
