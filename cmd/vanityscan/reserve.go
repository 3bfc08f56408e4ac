package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/solvik/vanityscan/internal/config"
	"github.com/solvik/vanityscan/internal/id/uuid"
	"github.com/solvik/vanityscan/internal/logging"
	"github.com/solvik/vanityscan/internal/nova"
	"github.com/solvik/vanityscan/internal/reserve"
	"github.com/solvik/vanityscan/internal/scan"
)

func newReserveCmd() *cobra.Command {
	var (
		signupVariant string
		planVariant   string
		name          string
		email         string
		nationalID    string
		address       string
		zip           string
	)

	cmd := &cobra.Command{
		Use:   "reserve NUMBER",
		Short: "Walk the reservation flow for a number found by a scan.",
		Long: `reserve creates a fresh cart, locks the given number into it, attaches
contact information, and confirms the cart contents. It stops there:
payment and order completion are left to the operator.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			retry := scan.NewRetryPolicy(
				cfg.HTTP.MaxRetries,
				time.Duration(cfg.HTTP.BackoffInitialMs)*time.Millisecond,
				time.Duration(cfg.HTTP.BackoffMaxMs)*time.Millisecond,
			)
			client := nova.NewClient(nova.Config{
				Endpoint:    cfg.HTTP.Endpoint,
				Origin:      cfg.HTTP.Origin,
				UserAgent:   cfg.HTTP.UserAgent,
				Timeout:     cfg.RequestTimeout(),
				Concurrency: 1,
			}, retry, uuid.NewGenerator(), logger.Named("nova"))

			flow := reserve.NewFlow(client, reserve.Config{
				SignupVariantID: signupVariant,
				PlanVariantID:   planVariant,
				Contact: reserve.Contact{
					Name:       name,
					Email:      email,
					NationalID: nationalID,
					Address:    address,
					Zip:        zip,
				},
			}, logger.Named("reserve"))

			receipt, err := flow.Run(cmd.Context(), args[0])
			if err != nil {
				logger.Error("reservation aborted",
					zap.String("number", args[0]),
					zap.String("state", string(receipt.State)),
					zap.Error(err),
				)
				return fmt.Errorf("reserve %s: %w", args[0], err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "reserved %s (cart %s, state %s)\n",
				receipt.Number, receipt.CartID, receipt.State)
			return nil
		},
	}

	cmd.Flags().StringVar(&signupVariant, "signup-variant", "frelsi-oskrad-ferdamadur", "catalog id of the signup item that seeds the cart")
	cmd.Flags().StringVar(&planVariant, "plan-variant", "farsimi-otakmarkad-ferdamadur-1", "catalog id of the plan item the number is locked into")
	cmd.Flags().StringVar(&name, "name", "Distant Traveller", "contact name")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().StringVar(&nationalID, "national-id", "9999999999", "contact national id")
	cmd.Flags().StringVar(&address, "address", "", "contact street address")
	cmd.Flags().StringVar(&zip, "zip", "", "contact postal code")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
