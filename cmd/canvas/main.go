package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinical-canvas/canvas/internal/config"
	"github.com/clinical-canvas/canvas/internal/domain/canvas"
	"github.com/clinical-canvas/canvas/internal/domain/notes"
	"github.com/clinical-canvas/canvas/internal/domain/record"
	"github.com/clinical-canvas/canvas/internal/platform/apiclient"
	"github.com/clinical-canvas/canvas/internal/platform/mockapi"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "canvas",
		Short: "Clinical documentation canvas workspace",
	}

	rootCmd.AddCommand(patientsCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(soapCmd())
	rootCmd.AddCommand(healthCmd())
	rootCmd.AddCommand(mockServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired services behind every subcommand.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	client  *apiclient.Client
	records *record.Service
	notes   *notes.Service
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	client := apiclient.New(apiclient.Config{
		BaseURL:               cfg.APIBaseURL,
		Timeout:               cfg.RequestTimeout(),
		RetryAttempts:         cfg.RetryAttempts,
		RetryDelay:            cfg.RetryDelay(),
		AuthToken:             cfg.AuthToken,
		LoggingEnabled:        cfg.LoggingEnabled,
		ErrorReportingEnabled: cfg.ErrorReportingEnabled,
		ErrorReportURL:        cfg.ErrorReportURL,
		CacheTTLPatient:       cfg.CacheTTLPatient(),
		CacheTTLPatientList:   cfg.CacheTTLPatientList(),
		CacheTTLNotes:         cfg.CacheTTLNotes(),
	}, logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		client:  client,
		records: record.NewService(client, cfg.MockFallbackEnabled, logger),
		notes:   notes.NewService(client, logger),
	}, nil
}

func patientsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "patients",
		Short: "List available patients",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			patients, err := a.records.ListPatients(cmd.Context())
			if err != nil {
				return err
			}
			for _, p := range patients {
				fmt.Printf("%-16s %-12s %3d  %s\n", p.ID, p.Name, p.Age, p.Gender)
			}
			return nil
		},
	}
}

func fetchCmd() *cobra.Command {
	var role string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "fetch <patient-id>",
		Short: "Load a patient onto the canvas and print the hydrated widgets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			if role == "" {
				role = a.cfg.DefaultRole
			}

			store := canvas.NewStore(a.records, a.logger)
			store.SetRole(cmd.Context(), role)
			store.SetPatient(cmd.Context(), args[0])
			store.Wait()

			if _, loadErr := store.Status(); loadErr != nil {
				return loadErr
			}
			rec := store.Record()
			if rec == nil {
				return fmt.Errorf("no record loaded for %s", args[0])
			}

			if asJSON {
				return printJSON(rec)
			}

			fmt.Printf("%s (%d, %s)  urgency=%s  confidence=%.2f\n\n",
				rec.Patient.Name, rec.Patient.Age, rec.Patient.Gender, rec.Urgency, rec.Confidence)
			fmt.Println(rec.ClinicalSummary)
			fmt.Println()

			projector := canvas.NewProjector(a.records)
			for _, node := range store.Nodes() {
				fmt.Printf("-- %s (%s)\n", node.ID, node.Type)
				data := projector.ProjectNodeData(node.Type, node.Data, rec)
				b, err := json.MarshalIndent(data, "   ", "  ")
				if err != nil {
					return err
				}
				fmt.Printf("   %s\n", b)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", "", "session role (defaults to DEFAULT_ROLE)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw clinical record as JSON")
	return cmd
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <patient-id> <question...>",
		Short: "Ask a question about a patient",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			pair, err := a.records.Ask(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Println(pair.Answer)
			fmt.Printf("\nconfidence=%.2f source=%s", pair.Confidence, pair.SourceDocument)
			if pair.SourcePage != nil {
				fmt.Printf(" page=%d", *pair.SourcePage)
			}
			fmt.Println()
			return nil
		},
	}
}

func soapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soap",
		Short: "Generate and manage SOAP notes",
	}

	var save bool
	generateCmd := &cobra.Command{
		Use:   "generate <patient-id>",
		Short: "Draft a SOAP note from the patient's clinical data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			note, err := a.notes.Generate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if save {
				if note, err = a.notes.Save(cmd.Context(), args[0], note); err != nil {
					return err
				}
			}
			return printJSON(note)
		},
	}
	generateCmd.Flags().BoolVar(&save, "save", false, "persist the drafted note")
	cmd.AddCommand(generateCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "list <patient-id>",
		Short: "List a patient's saved SOAP notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			saved, err := a.notes.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(saved) == 0 {
				fmt.Println("no saved notes")
				return nil
			}
			return printJSON(saved)
		},
	})

	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			if !a.client.HealthCheck(ctx) {
				fmt.Println("backend unreachable")
				os.Exit(1)
			}
			fmt.Println("backend healthy")
			return nil
		},
	}
}

func mockServeCmd() *cobra.Command {
	var addr, secret string
	cmd := &cobra.Command{
		Use:   "mock-serve",
		Short: "Run the local fixture backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			return mockapi.New([]byte(secret), a.logger).Start(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	cmd.Flags().StringVar(&secret, "secret", "", "enable bearer auth with this HS256 secret")
	return cmd
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
