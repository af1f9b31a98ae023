/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/shoplite/apiserver/config"
	"github.com/shoplite/apiserver/internal/db"
	"github.com/shoplite/apiserver/internal/store"
	"github.com/shoplite/apiserver/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "password"

// seedCmd loads a development data set: one admin, one regular user,
// and a handful of products (active and inactive).
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with development data",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		ctx := cmd.Context()

		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer dbConn.Close()

		hashed, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		users := store.NewUserRepository(dbConn)
		for _, user := range []types.User{
			{Name: "Admin", Email: "admin@example.com", Role: types.RoleAdmin, PasswordHash: string(hashed)},
			{Name: "User", Email: "user@example.com", Role: types.RoleUser, PasswordHash: string(hashed)},
		} {
			if _, err := users.UpsertByEmail(ctx, user); err != nil {
				return fmt.Errorf("seed user %s: %w", user.Email, err)
			}
		}

		products := store.NewProductRepository(dbConn)
		existing, err := products.List(ctx)
		if err != nil {
			return fmt.Errorf("list products: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}

		for _, product := range sampleProducts() {
			if _, err := products.Create(ctx, product); err != nil {
				return fmt.Errorf("seed product %s: %w", product.Name, err)
			}
		}
		return nil
	},
}

func sampleProducts() []types.Product {
	price := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return []types.Product{
		{Name: "Espresso Machine", Description: "Compact 15-bar espresso machine.", Price: price("249.99"), Status: types.ProductStatusActive},
		{Name: "Burr Grinder", Description: "Conical burr grinder with 40 settings.", Price: price("89.50"), Status: types.ProductStatusActive},
		{Name: "Gooseneck Kettle", Description: "1L pour-over kettle.", Price: price("54.00"), Status: types.ProductStatusActive},
		{Name: "Ceramic Dripper", Price: price("24.25"), Status: types.ProductStatusActive},
		{Name: "Digital Scale", Description: "0.1g precision brewing scale.", Price: price("39.99"), Status: types.ProductStatusActive},
		{Name: "Discontinued Press", Description: "No longer sold.", Price: price("19.00"), Status: types.ProductStatusInactive},
		{Name: "Legacy Filter Pack", Price: price("6.75"), Status: types.ProductStatusInactive},
	}
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
