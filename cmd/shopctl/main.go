package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"go-shop-client/internal/app"
	"go-shop-client/internal/config"
	"go-shop-client/internal/logger"
	"go-shop-client/internal/model"
)

const usage = `shopctl - storefront client

Usage:
  shopctl login -email <email> -password <password>
  shopctl signup -email <email> -password <password> [-name <name>] [-phone <phone>]
  shopctl logout
  shopctl whoami
  shopctl products [-search <query>] [-category <slug>] [-page N]
  shopctl cart
  shopctl cart-add <product-id> [quantity]
  shopctl cart-set <line-id> <quantity>
  shopctl cart-rm <line-id>
  shopctl cart-clear
  shopctl orders
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logHandler := logger.NewPrettyHandler(os.Stderr, &slog.HandlerOptions{
		Level: logger.ParseLevel(cfg.LogLevel),
	})
	slog.SetDefault(slog.New(logHandler))

	application, err := app.NewWithConfig(cfg)
	if err != nil {
		slog.Error("failed to initialize client", "error", err)
		os.Exit(1)
	}

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(2)
	}

	ctx := context.Background()
	if err := run(ctx, application, os.Args[1], os.Args[2:]); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, a *app.App, command string, args []string) error {
	switch command {
	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Parse(args)

		user, err := a.Login(ctx, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("signed in as %s\n", user.Email)
		printCart(a.Cart.Cached())
		return nil

	case "signup":
		fs := flag.NewFlagSet("signup", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		name := fs.String("name", "", "full name")
		phone := fs.String("phone", "", "phone number")
		fs.Parse(args)

		user, err := a.Signup(ctx, model.SignupRequest{
			Email:    *email,
			Password: *password,
			FullName: *name,
			Phone:    *phone,
		})
		if err != nil {
			return err
		}
		fmt.Printf("account created for %s\n", user.Email)
		return nil

	case "logout":
		if err := a.Logout(ctx); err != nil {
			return err
		}
		fmt.Println("signed out")
		return nil

	case "whoami":
		user, err := a.Bootstrap(ctx)
		if err != nil {
			return err
		}
		if user == nil {
			fmt.Println("not signed in")
			return nil
		}
		fmt.Printf("%s (%s)\n", user.Email, user.ID)
		return nil

	case "products":
		fs := flag.NewFlagSet("products", flag.ExitOnError)
		search := fs.String("search", "", "search query")
		category := fs.String("category", "", "category slug")
		page := fs.Int("page", 1, "page number")
		fs.Parse(args)

		list, err := a.Products.List(ctx, model.ProductFilter{
			Search:   *search,
			Category: *category,
			Page:     *page,
		})
		if err != nil {
			return err
		}
		for _, p := range list.Items {
			fmt.Printf("%-36s  %8.2f  %s\n", p.ID, p.Price, p.Name)
		}
		fmt.Printf("page %d/%d (%d products)\n", list.Page, list.TotalPages, list.Total)
		return nil

	case "cart":
		snapshot, err := a.Cart.Snapshot(ctx)
		if err != nil {
			return err
		}
		printCart(snapshot)
		return nil

	case "cart-add":
		if len(args) < 1 {
			return fmt.Errorf("usage: shopctl cart-add <product-id> [quantity]")
		}
		quantity := 1
		if len(args) > 1 {
			if _, err := fmt.Sscanf(args[1], "%d", &quantity); err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
		}

		product, err := a.Products.Get(ctx, args[0])
		if err != nil {
			return err
		}
		if err := a.Cart.Add(ctx, product, quantity); err != nil {
			return err
		}
		printCart(a.Cart.Cached())
		return nil

	case "cart-set":
		if len(args) != 2 {
			return fmt.Errorf("usage: shopctl cart-set <line-id> <quantity>")
		}
		quantity := 0
		if _, err := fmt.Sscanf(args[1], "%d", &quantity); err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}
		if err := a.Cart.UpdateQuantity(ctx, args[0], quantity); err != nil {
			return err
		}
		printCart(a.Cart.Cached())
		return nil

	case "cart-rm":
		if len(args) != 1 {
			return fmt.Errorf("usage: shopctl cart-rm <line-id>")
		}
		if err := a.Cart.Remove(ctx, args[0]); err != nil {
			return err
		}
		printCart(a.Cart.Cached())
		return nil

	case "cart-clear":
		if err := a.Cart.Clear(ctx); err != nil {
			return err
		}
		fmt.Println("cart cleared")
		return nil

	case "orders":
		list, err := a.Orders.ListMine(ctx, 1, 20, "")
		if err != nil {
			return err
		}
		for _, o := range list.Items {
			fmt.Printf("%-20s  %-10s  %8.2f\n", o.OrderNumber, o.Status, o.TotalAmount)
		}
		return nil

	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func printCart(snapshot model.CartSnapshot) {
	if len(snapshot.Lines) == 0 {
		fmt.Println("cart is empty")
		return
	}

	for _, line := range snapshot.Lines {
		fmt.Printf("%-36s  %3d x %8.2f  %s\n", line.ID, line.Quantity, line.UnitPrice, line.Name)
	}
	fmt.Printf("total: %d items, %.2f\n", snapshot.TotalItems, snapshot.Subtotal)
}
