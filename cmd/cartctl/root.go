package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/foodtuck/internal/cart"
	"github.com/vladislavdragonenkov/foodtuck/internal/catalog"
	"github.com/vladislavdragonenkov/foodtuck/internal/domain"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/file"
	"github.com/vladislavdragonenkov/foodtuck/internal/storage/sqlite"
)

const (
	driverSQLite = "sqlite"
	driverFile   = "file"
)

type rootOptions struct {
	driver     string
	sqlitePath string
	dir        string
	key        string
	jsonOutput bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Локальная корзина foodtuck",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.driver, "driver", driverSQLite, "slot storage: sqlite|file")
	flags.StringVar(&opts.sqlitePath, "sqlite-path", "foodtuck-cart.db", "sqlite database path")
	flags.StringVar(&opts.dir, "dir", "carts", "directory for the file slot")
	flags.StringVar(&opts.key, "key", cart.DefaultStorageKey, "storage key of the cart slot")
	flags.BoolVar(&opts.jsonOutput, "json", false, "print cart as JSON")

	root.AddCommand(
		newAddCmd(opts),
		itemCmd(opts, "remove", "Удалить позицию", func(ctx context.Context, s *cart.Store, id string) cart.Snapshot {
			return s.RemoveFromCart(ctx, id)
		}),
		itemCmd(opts, "inc", "Увеличить количество на 1", func(ctx context.Context, s *cart.Store, id string) cart.Snapshot {
			return s.IncrementQuantity(ctx, id)
		}),
		itemCmd(opts, "dec", "Уменьшить количество на 1", func(ctx context.Context, s *cart.Store, id string) cart.Snapshot {
			return s.DecrementQuantity(ctx, id)
		}),
		&cobra.Command{
			Use:   "clear",
			Short: "Очистить корзину",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(cmd, opts, func(ctx context.Context, s *cart.Store) (cart.Snapshot, error) {
					return s.ClearCart(ctx), nil
				})
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Показать корзину",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStore(cmd, opts, func(_ context.Context, s *cart.Store) (cart.Snapshot, error) {
					return s.Snapshot(), nil
				})
			},
		},
		newWatchCmd(opts),
	)
	return root
}

func newAddCmd(opts *rootOptions) *cobra.Command {
	var (
		name        string
		price       string
		image       string
		quantity    int
		catalogPath string
	)

	cmd := &cobra.Command{
		Use:   "add <id>",
		Short: "Добавить позицию (из каталога или с явной ценой)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := resolveItem(args[0], name, price, image, quantity, catalogPath)
			if err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, s *cart.Store) (cart.Snapshot, error) {
				return s.AddToCart(ctx, item), nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "item name")
	cmd.Flags().StringVar(&price, "price", "", "unit price, e.g. 9.5")
	cmd.Flags().StringVar(&image, "image", "", "image URL")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "quantity to add")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog seed to resolve the item by product id")
	return cmd
}

// resolveItem берёт name/price/image из каталога, если он задан, иначе из флагов.
func resolveItem(id, name, price, image string, quantity int, catalogPath string) (domain.CartItem, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.CartItem{}, errors.New("item id is required")
	}

	if catalogPath != "" {
		repo, err := catalog.NewMemoryRepositoryFromFile(catalogPath)
		if err != nil {
			return domain.CartItem{}, err
		}
		product, err := repo.GetProduct(context.Background(), id)
		if err != nil {
			return domain.CartItem{}, fmt.Errorf("product %q: %w", id, err)
		}
		return product.ToCartItem(quantity), nil
	}

	if strings.TrimSpace(price) == "" {
		return domain.CartItem{}, errors.New("--price is required without --catalog")
	}
	parsed, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("invalid price %q: %w", price, err)
	}
	if parsed.IsNegative() {
		return domain.CartItem{}, fmt.Errorf("price must not be negative: %s", price)
	}
	if name == "" {
		name = id
	}
	return domain.CartItem{ID: id, Name: name, Price: parsed, Image: image, Quantity: quantity}, nil
}

func itemCmd(opts *rootOptions, use, short string, apply func(context.Context, *cart.Store, string) cart.Snapshot) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, opts, func(ctx context.Context, s *cart.Store) (cart.Snapshot, error) {
				return apply(ctx, s, args[0]), nil
			})
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Печатать корзину при каждом изменении слота (только file)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.driver != driverFile {
				return fmt.Errorf("watch requires --driver=%s", driverFile)
			}
			storage, err := file.NewCartStorage(opts.dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			store := cart.NewStore(opts.key, storage)
			store.Hydrate(cmd.Context())
			if err := printSnapshot(out, store.Snapshot(), opts.jsonOutput); err != nil {
				return err
			}

			return storage.Watch(cmd.Context(), opts.key, func(data []byte, err error) {
				items := []domain.CartItem{}
				switch {
				case errors.Is(err, domain.ErrCartSnapshotNotFound):
				case err != nil:
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "read slot: %v\n", err)
					return
				default:
					decoded, decErr := cart.Decode(data)
					if decErr != nil {
						_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "slot is corrupted: %v\n", decErr)
						return
					}
					items = decoded
				}
				snapshot := snapshotOf(items)
				snapshot.Persisted = true
				_ = printSnapshot(out, snapshot, opts.jsonOutput)
			})
		},
	}
}

// openStorage открывает слот; close освобождает ресурсы хранилища.
func openStorage(ctx context.Context, opts *rootOptions) (domain.CartStorage, func() error, error) {
	switch opts.driver {
	case driverSQLite:
		storage, err := sqlite.Open(ctx, opts.sqlitePath)
		if err != nil {
			return nil, nil, err
		}
		return storage, storage.Close, nil
	case driverFile:
		storage, err := file.NewCartStorage(opts.dir)
		if err != nil {
			return nil, nil, err
		}
		return storage, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported driver %q (use %s|%s)", opts.driver, driverSQLite, driverFile)
	}
}

func withStore(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, *cart.Store) (cart.Snapshot, error)) error {
	ctx := cmd.Context()
	storage, closeFn, err := openStorage(ctx, opts)
	if err != nil {
		return err
	}
	defer closeFn()

	store := cart.NewStore(opts.key, storage)
	store.Hydrate(ctx)

	snapshot, err := fn(ctx, store)
	if err != nil {
		return err
	}
	if persistErr := store.PersistErr(); persistErr != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: cart is not saved: %v\n", persistErr)
	}
	return printSnapshot(cmd.OutOrStdout(), snapshot, opts.jsonOutput)
}

func snapshotOf(items []domain.CartItem) cart.Snapshot {
	store := cart.NewStore("", nil)
	for _, item := range items {
		store.AddToCart(context.Background(), item)
	}
	return store.Snapshot()
}

type itemView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal string `json:"subtotal"`
}

type cartView struct {
	Items      []itemView `json:"items"`
	TotalItems int        `json:"total_items"`
	TotalPrice string     `json:"total_price"`
	Persisted  bool       `json:"persisted"`
}

func printSnapshot(out io.Writer, snapshot cart.Snapshot, asJSON bool) error {
	view := cartView{
		Items:      make([]itemView, 0, len(snapshot.Items)),
		TotalItems: snapshot.TotalItems,
		TotalPrice: snapshot.TotalPrice.StringFixed(2),
		Persisted:  snapshot.Persisted,
	}
	for _, item := range snapshot.Items {
		view.Items = append(view.Items, itemView{
			ID:       item.ID,
			Name:     item.Name,
			Price:    item.Price.StringFixed(2),
			Quantity: item.Quantity,
			Subtotal: item.Subtotal().StringFixed(2),
		})
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tSUBTOTAL")
	for _, item := range view.Items {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", item.ID, item.Name, item.Price, strconv.Itoa(item.Quantity), item.Subtotal)
	}
	_, _ = fmt.Fprintf(tw, "TOTAL\t\t\t%d\t%s\n", view.TotalItems, view.TotalPrice)
	return tw.Flush()
}
