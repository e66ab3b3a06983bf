package main

import (
	"fmt"
	"net/http"
	"os"

	parleyhttp "github.com/aretw0/parley/pkg/adapters/http"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve scenario sessions over HTTP",
	Long:  `Starts a session server: POST /sessions creates and starts a session, POST /sessions/{id}/tools/{name} invokes a tool, GET /sessions/{id}/events streams context updates over SSE. Prometheus metrics are exposed on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadScenario(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
		handler, err := parleyhttp.NewHandler(cfg, "http", parleyhttp.WithHooks(metrics.Hooks()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		port, _ := cmd.Flags().GetInt("port")
		addr := fmt.Sprintf(":%d", port)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/", handler)

		fmt.Printf("parley-http listening on %s\n", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
