package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/eluss/chromabet/internal/infrastructure/config"
	"github.com/eluss/chromabet/internal/infrastructure/logger"
	"github.com/eluss/chromabet/internal/infrastructure/postgres"
)

var (
	baseURL string
	token   string
	timeout time.Duration

	// Swappable for tests.
	bcryptGenerate = bcrypt.GenerateFromPassword
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "chromabet-cli",
		Short: "Chromabet CLI tool",
		Long:  `A command line interface for operating the Chromabet API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the Chromabet API")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "Bearer token for authenticated endpoints")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	roundCmd := &cobra.Command{
		Use:   "round",
		Short: "Round operations",
	}
	roundCmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the currently open round",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/rounds/current")
		},
	})
	roundCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List recent rounds",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/rounds/")
		},
	})
	roundCmd.AddCommand(forceOutcomeCmd())
	rootCmd.AddCommand(roundCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show house-wide aggregates",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/admin/stats")
		},
	}
	statsCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Run: func(cmd *cobra.Command, args []string) {
			checkConsistency()
		},
	})
	rootCmd.AddCommand(statsCmd)

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(hashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func forceOutcomeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "force-outcome <round-id> <color>",
		Short: "Force a round's outcome before settlement",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			body, _ := json.Marshal(map[string]string{"outcome": args[1]})
			post("/api/v1/admin/rounds/"+args[0]+"/outcome", body)
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(false)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the last migration",
		Run: func(cmd *cobra.Command, args []string) {
			runMigrations(true)
		},
	})

	return cmd
}

func runMigrations(down bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: "console"})

	if down {
		err = postgres.RunMigrationsDown(cfg.DatabaseURL, cfg.MigrationsPath, log)
	} else {
		err = postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log)
	}
	if err != nil {
		fmt.Printf("Migration failed: %v\n", err)
		os.Exit(1)
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Hash a password for seeding users",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			hashed, err := bcryptGenerate([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				fmt.Printf("Failed to hash password: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(hashed))
		},
	}
}

func checkConsistency() {
	resp, body := request(http.MethodGet, "/api/v1/admin/stats/consistency", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Consistency check FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	fmt.Printf("Consistency check PASSED\n")
}

func get(path string) {
	resp, body := request(http.MethodGet, path, nil)
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	printRawJSON(body)
}

func post(path string, payload []byte) {
	resp, body := request(http.MethodPost, path, payload)
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		fmt.Printf("Request failed (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	printRawJSON(body)
}

func request(method, path string, payload []byte) (*http.Response, []byte) {
	client := &http.Client{Timeout: timeout}

	req, err := http.NewRequest(method, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}

	body, _ := io.ReadAll(resp.Body)

	return resp, body
}

func printRawJSON(body []byte) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		fmt.Println(string(body))
		return
	}
	printJSON(data)
}

func printJSON(data any) {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Printf("Failed to format response: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
