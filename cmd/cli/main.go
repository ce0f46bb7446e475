// Command cli runs administrative tasks against the sales database.
//
//	cli add-user -name N -surname S -email E -password P
//	cli seed-products
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/egannguyen/sales-orders/internal/auth"
	"github.com/egannguyen/sales-orders/internal/config"
	"github.com/egannguyen/sales-orders/internal/database"
	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/repository"
	"github.com/egannguyen/sales-orders/internal/repository/postgres"
	"github.com/egannguyen/sales-orders/internal/service"
	"github.com/google/uuid"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: cli add-user|seed-products [flags]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, cfg, os.Args[1], os.Args[2:]); err != nil {
		slog.Error("Command failed", "cmd", os.Args[1], "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, cmd string, args []string) error {
	db, err := database.Open(database.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return err
		}
	}
	repos := postgres.NewStore(db).Repositories()

	switch cmd {
	case "add-user":
		return addUser(ctx, repos, cfg, args)
	case "seed-products":
		return seedProducts(ctx, repos.Products)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func addUser(ctx context.Context, repos repository.Repositories, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("add-user", flag.ContinueOnError)
	var p service.RegisterUserParams
	fs.StringVar(&p.Name, "name", "", "first name")
	fs.StringVar(&p.Surname, "surname", "", "last name")
	fs.StringVar(&p.Email, "email", "", "login email")
	fs.StringVar(&p.Password, "password", "", "login password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	users := service.NewUserService(repos.Users, auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL))
	u, err := users.Register(ctx, p)
	if err != nil {
		return err
	}
	slog.Info("User created", "id", u.ID, "email", u.Email)
	return nil
}

func seedProducts(ctx context.Context, products repository.ProductRepository) error {
	now := time.Now().UTC()
	seed := []entity.Product{
		{Name: "Wireless Noise-Cancelling Headphones", Price: 349.99, Stock: 50},
		{Name: "Mechanical Keyboard RGB", Price: 179.99, Stock: 120},
		{Name: "Ultrawide Curved Monitor 34\"", Price: 699.99, Stock: 30},
		{Name: "Ergonomic Office Chair", Price: 549.99, Stock: 25},
		{Name: "Smart LED Desk Lamp", Price: 89.99, Stock: 200},
		{Name: "Premium Laptop Backpack", Price: 129.99, Stock: 80},
	}
	for i := range seed {
		seed[i].ID = uuid.NewString()
		seed[i].CreatedAt = now
	}

	if err := products.Seed(ctx, seed); err != nil {
		return err
	}
	slog.Info("Seeded products", "count", len(seed))
	return nil
}
