// Package commands holds the gnomeshade-admin subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gnomeshade/internal/core"
	"gnomeshade/internal/log"
	"gnomeshade/internal/services"
	"gnomeshade/internal/storage"
)

// OpenFunc opens and migrates the database. The caller closes the DB.
type OpenFunc func(ctx context.Context) (*storage.DB, *storage.Store, error)

// AdminCommandHandler runs administrative tasks directly against the
// database, without going through the API.
type AdminCommandHandler struct {
	open   OpenFunc
	logger *log.Logger
	now    func() time.Time
}

func NewAdminCommandHandler(open OpenFunc, logger *log.Logger) *AdminCommandHandler {
	if logger == nil {
		logger = log.Discard()
	}
	return &AdminCommandHandler{open: open, logger: logger.WithComponent(log.ComponentAdmin), now: time.Now}
}

// withStore opens the database for the duration of fn.
func (h *AdminCommandHandler) withStore(ctx context.Context, fn func(*storage.Store) error) error {
	db, store, err := h.open(ctx)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	return fn(store)
}

// MigrateCmd applies pending migrations. Opening the store migrates, so
// there is nothing else to do.
func (h *AdminCommandHandler) MigrateCmd(cmd *cobra.Command, _ []string) error {
	return h.withStore(cmd.Context(), func(*storage.Store) error {
		fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
		return nil
	})
}

func (h *AdminCommandHandler) CreateUserCmd(cmd *cobra.Command, _ []string) error {
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")
	fullName, _ := cmd.Flags().GetString("full-name")
	if fullName == "" {
		fullName = username
	}

	return h.withStore(cmd.Context(), func(store *storage.Store) error {
		user, err := services.NewUserService(store, nil, h.logger).Register(cmd.Context(), username, password, fullName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created user %s (%s)\n", user.Username, user.ID)
		return nil
	})
}

func (h *AdminCommandHandler) AddCurrencyCmd(cmd *cobra.Command, _ []string) error {
	code, _ := cmd.Flags().GetString("code")
	name, _ := cmd.Flags().GetString("name")
	numeric, _ := cmd.Flags().GetInt("numeric")
	minorUnit, _ := cmd.Flags().GetInt("minor-unit")

	c := core.Currency{
		ID:             uuid.New(),
		CreatedAt:      h.now().UTC(),
		Name:           strings.TrimSpace(name),
		AlphabeticCode: strings.ToUpper(strings.TrimSpace(code)),
		NumericCode:    numeric,
		MinorUnit:      minorUnit,
	}
	if err := c.Validate(); err != nil {
		return err
	}
	return h.withStore(cmd.Context(), func(store *storage.Store) error {
		existing, err := store.Currencies.FindByCode(cmd.Context(), c.AlphabeticCode)
		switch {
		case err == nil:
			return fmt.Errorf("currency %s already exists (%s): %w", existing.AlphabeticCode, existing.ID, core.ErrConflict)
		case !errors.Is(err, core.ErrNotFound):
			return err
		}
		if err := store.Currencies.Add(cmd.Context(), &c); err != nil {
			return err
		}
		h.logger.InfoContext(cmd.Context(), "Currency added", "code", c.AlphabeticCode, "id", c.ID.String())
		fmt.Fprintf(cmd.OutOrStdout(), "Added currency %s (%s)\n", c.AlphabeticCode, c.ID)
		return nil
	})
}

func (h *AdminCommandHandler) ListCurrenciesCmd(cmd *cobra.Command, _ []string) error {
	return h.withStore(cmd.Context(), func(store *storage.Store) error {
		currencies, err := store.Currencies.Get(cmd.Context())
		if err != nil {
			return err
		}
		return writeCurrencies(cmd.OutOrStdout(), currencies)
	})
}

func writeCurrencies(out io.Writer, currencies []core.Currency) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNUMERIC\tMINOR\tNAME\tID")
	for _, c := range currencies {
		fmt.Fprintf(w, "%s\t%03d\t%d\t%s\t%s\n", c.AlphabeticCode, c.NumericCode, c.MinorUnit, c.Name, c.ID)
	}
	return w.Flush()
}

// InitAdminCommands registers every admin subcommand on rootCmd.
func InitAdminCommands(rootCmd *cobra.Command, handler *AdminCommandHandler) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE:  handler.MigrateCmd,
	})

	userCmd := &cobra.Command{Use: "user", Short: "Manage users"}
	createUserCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user and their counterparty",
		Args:  cobra.NoArgs,
		RunE:  handler.CreateUserCmd,
	}
	createUserCmd.Flags().String("username", "", "Login name (at least 3 characters)")
	createUserCmd.Flags().String("password", "", "Password (8 to 72 characters)")
	createUserCmd.Flags().String("full-name", "", "Display name, also used for the user's counterparty (default: username)")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")
	userCmd.AddCommand(createUserCmd)
	rootCmd.AddCommand(userCmd)

	currencyCmd := &cobra.Command{Use: "currency", Short: "Manage currencies"}
	addCurrencyCmd := &cobra.Command{
		Use:   "add",
		Short: "Add an ISO 4217 currency",
		Args:  cobra.NoArgs,
		RunE:  handler.AddCurrencyCmd,
	}
	addCurrencyCmd.Flags().String("code", "", "Alphabetic code, e.g. NOK")
	addCurrencyCmd.Flags().String("name", "", "Currency name")
	addCurrencyCmd.Flags().Int("numeric", 0, "Numeric code, e.g. 578")
	addCurrencyCmd.Flags().Int("minor-unit", 2, "Digits after the decimal separator")
	_ = addCurrencyCmd.MarkFlagRequired("code")
	_ = addCurrencyCmd.MarkFlagRequired("name")
	currencyCmd.AddCommand(addCurrencyCmd)
	currencyCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List currencies",
		Args:  cobra.NoArgs,
		RunE:  handler.ListCurrenciesCmd,
	})
	rootCmd.AddCommand(currencyCmd)
}
