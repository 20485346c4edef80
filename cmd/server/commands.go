package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/iliyamo/order-desk/internal/config"
	"github.com/iliyamo/order-desk/internal/database"
	"github.com/iliyamo/order-desk/internal/queue"
	"github.com/iliyamo/order-desk/internal/seed"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the schema if it does not exist and list applied migrations.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := database.AppliedMigrations(cmd.Context(), db)
		if err != nil {
			return err
		}
		for _, name := range applied {
			fmt.Printf("%s %s\n", color.GreenString("applied"), name)
		}
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <file>",
	Short: "Load historical orders from a JSON file in one transaction.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := seed.ReadFile(args[0])
		if err != nil {
			return err
		}
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		res, err := seed.Load(cmd.Context(), db, records)
		if err != nil {
			return fmt.Errorf("seed %s: %w", args[0], err)
		}
		color.Green("Seeded %d records", len(records))
		fmt.Printf("  customers:   %d\n", res.Customers)
		fmt.Printf("  items:       %d\n", res.Items)
		fmt.Printf("  orders:      %d\n", res.Orders)
		fmt.Printf("  order lines: %d\n", res.OrderLines)
		return nil
	},
}

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Consume order events and append them to orders.log.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		color.Cyan("Consuming %s into %s", queue.OrdersQueueName, cfg.OrderLogDir)
		err = queue.StartOrderConsumer(cmd.Context(), cfg.RabbitURL, cfg.OrderLogDir)
		if cmd.Context().Err() != nil {
			return nil
		}
		return err
	},
}
