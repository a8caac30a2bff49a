package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/coffeeshop-api/internal/domain/customer"
	"github.com/xenking/coffeeshop-api/internal/domain/menu"
	"github.com/xenking/coffeeshop-api/internal/domain/order"
	"github.com/xenking/coffeeshop-api/internal/repository"
)

type customerJSON struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email"`
}

type menuItemJSON struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	IsAvailable *bool           `json:"is_available"`
}

type seedJSON struct {
	Customers []customerJSON `json:"customers"`
	MenuItems []menuItemJSON `json:"menu_items"`
}

func main() {
	var (
		databaseURL string
		seedFile    string
		demoOrders  bool
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&seedFile, "seed-file", "", "optional JSON seed file (may be gzip-compressed), defaults to built-in data")
	flag.BoolVar(&demoOrders, "demo-orders", true, "create a couple of demo orders for the seeded customers")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, seedFile, demoOrders); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, seedFile string, demoOrders bool) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	customers := repository.NewCustomerRepository(pool)
	menuItems := repository.NewMenuRepository(pool)
	orders := repository.NewOrderRepository(pool)

	existing, err := customers.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list customers")
	}
	if len(existing) > 0 {
		slog.Info("database already seeded, nothing to do", slog.Int("customers", len(existing)))
		return nil
	}

	seed := defaultSeed()
	if seedFile != "" {
		seed, err = readSeedFile(seedFile)
		if err != nil {
			return errors.Wrapf(err, "read seed file %s", seedFile)
		}
	}

	seededCustomers, err := seedCustomers(ctx, customers, seed.Customers)
	if err != nil {
		return errors.Wrap(err, "seed customers")
	}

	seededItems, err := seedMenu(ctx, menuItems, seed.MenuItems)
	if err != nil {
		return errors.Wrap(err, "seed menu")
	}

	if demoOrders {
		if err := seedOrders(ctx, orders, seededCustomers, seededItems); err != nil {
			return errors.Wrap(err, "seed demo orders")
		}
	}

	return nil
}

// readSeedFile loads seed data from a JSON file, transparently
// decompressing it when the path ends in .gz.
func readSeedFile(path string) (seedJSON, error) {
	var seed seedJSON

	f, err := os.Open(path)
	if err != nil {
		return seed, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return seed, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	if err := json.NewDecoder(r).Decode(&seed); err != nil {
		return seed, errors.Wrap(err, "parse seed JSON")
	}

	return seed, nil
}

func defaultSeed() seedJSON {
	email := func(s string) *string { return &s }

	return seedJSON{
		Customers: []customerJSON{
			{Name: "Ivan Petrov", Phone: "+79991234567", Email: email("ivan@example.com")},
			{Name: "Maria Sidorova", Phone: "+79997654321", Email: email("maria@example.com")},
			{Name: "Alex Kozlov", Phone: "+79995554433"},
		},
		MenuItems: []menuItemJSON{
			{Name: "Cappuccino", Category: "coffee", Price: decimal.NewFromInt(180)},
			{Name: "Latte", Category: "coffee", Price: decimal.NewFromInt(190)},
			{Name: "Espresso", Category: "coffee", Price: decimal.NewFromInt(120)},
			{Name: "Americano", Category: "coffee", Price: decimal.NewFromInt(150)},
			{Name: "Croissant", Category: "dessert", Price: decimal.NewFromInt(120)},
			{Name: "Cheesecake", Category: "dessert", Price: decimal.NewFromInt(200)},
		},
	}
}

func seedCustomers(ctx context.Context, repo *repository.CustomerRepository, seed []customerJSON) ([]customer.Customer, error) {
	slog.Info("seeding customers", slog.Int("count", len(seed)))

	out := make([]customer.Customer, 0, len(seed))
	for _, c := range seed {
		cust := customer.Customer{
			Name:  c.Name,
			Phone: c.Phone,
			Email: c.Email,
		}
		if err := repo.Create(ctx, &cust); err != nil {
			return nil, errors.Wrapf(err, "create customer %s", c.Name)
		}

		slog.Info("created customer", slog.Int64("id", cust.ID), slog.String("name", cust.Name))
		out = append(out, cust)
	}

	return out, nil
}

func seedMenu(ctx context.Context, repo *repository.MenuRepository, seed []menuItemJSON) ([]menu.Item, error) {
	slog.Info("seeding menu items", slog.Int("count", len(seed)))

	out := make([]menu.Item, 0, len(seed))
	for _, m := range seed {
		it := menu.Item{
			Name:        m.Name,
			Category:    m.Category,
			Price:       m.Price,
			IsAvailable: m.IsAvailable == nil || *m.IsAvailable,
		}
		if err := repo.Create(ctx, &it); err != nil {
			return nil, errors.Wrapf(err, "create menu item %s", m.Name)
		}

		slog.Info("created menu item",
			slog.Int64("id", it.ID),
			slog.String("name", it.Name),
			slog.String("price", it.Price.String()),
		)
		out = append(out, it)
	}

	return out, nil
}

// seedOrders creates two demo orders: a completed and paid one, and a
// paid one still waiting to be served. Order totals are recomputed from
// the stored items on every insert, so the orders start at zero.
func seedOrders(ctx context.Context, repo *repository.OrderRepository, customers []customer.Customer, items []menu.Item) error {
	if len(customers) < 2 || len(items) < 3 {
		slog.Info("not enough seed data for demo orders, skipping")
		return nil
	}

	byName := make(map[string]menu.Item, len(items))
	for _, it := range items {
		byName[it.Name] = it
	}

	first := order.Order{CustomerID: customers[0].ID, Status: order.StatusCreated, PaymentStatus: order.PaymentPending}
	if err := repo.Create(ctx, &first); err != nil {
		return errors.Wrap(err, "create first order")
	}
	if err := addDemoItem(ctx, repo, first.ID, byName["Cappuccino"], 2); err != nil {
		return err
	}
	if _, err := repo.MarkPaid(ctx, first.ID); err != nil {
		return errors.Wrap(err, "mark first order paid")
	}
	if _, err := repo.MarkCompleted(ctx, first.ID, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "mark first order completed")
	}

	second := order.Order{CustomerID: customers[1].ID, Status: order.StatusCreated, PaymentStatus: order.PaymentPending}
	if err := repo.Create(ctx, &second); err != nil {
		return errors.Wrap(err, "create second order")
	}
	if err := addDemoItem(ctx, repo, second.ID, byName["Latte"], 1); err != nil {
		return err
	}
	if err := addDemoItem(ctx, repo, second.ID, byName["Croissant"], 1); err != nil {
		return err
	}
	if _, err := repo.MarkPaid(ctx, second.ID); err != nil {
		return errors.Wrap(err, "mark second order paid")
	}

	slog.Info("created demo orders", slog.Int64("first", first.ID), slog.Int64("second", second.ID))

	return nil
}

func addDemoItem(ctx context.Context, repo *repository.OrderRepository, orderID int64, mi menu.Item, qty int) error {
	it := order.Item{
		OrderID:    orderID,
		MenuItemID: mi.ID,
		Quantity:   qty,
		Price:      mi.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
	if err := repo.AddItem(ctx, &it); err != nil {
		return errors.Wrapf(err, "add %s to order %d", mi.Name, orderID)
	}

	return nil
}
