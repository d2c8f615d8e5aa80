package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simaogato/estateflow-backend/internal/adapter/presenter"
	"github.com/simaogato/estateflow-backend/internal/domain"
	"github.com/simaogato/estateflow-backend/internal/usecase/pricing"
	"github.com/simaogato/estateflow-backend/internal/usecase/scheduler"
	"github.com/simaogato/estateflow-backend/internal/usecase/seeder"
)

type quoteOptions struct {
	priceExcludeLandTax string
	landTax             string
	vat                 string
	maintenanceFee      string
	managementFee       string
	deposit             string
	area                string
	depositDate         string
	today               string
	plusDays            int
	precision           int32
	discounts           []string
	asJSON              bool
}

// newQuoteCmd prices a property and lays out its payment schedule without touching the database.
// Discounts are picked from the standard catalog by ID.
func newQuoteCmd() *cobra.Command {
	opts := quoteOptions{}

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print the price view and payment schedule for the given figures",
		Example: `  estateflow quote --price 900000000 --land-tax 100000000 --vat 100000000 \
    --maintenance-fee 20000000 --deposit 50000000 --deposit-date 2024-01-01 --area 80`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuote(cmd.OutOrStdout(), opts, time.Now())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.priceExcludeLandTax, "price", "0", "Price excluding land tax")
	f.StringVar(&opts.landTax, "land-tax", "0", "Land tax")
	f.StringVar(&opts.vat, "vat", "0", "VAT")
	f.StringVar(&opts.maintenanceFee, "maintenance-fee", "0", "Maintenance fee")
	f.StringVar(&opts.managementFee, "management-fee", "0", "Monthly management fee per m²")
	f.StringVar(&opts.deposit, "deposit", "0", "Deposit")
	f.StringVar(&opts.area, "area", "0", "Land area in m²")
	f.StringVar(&opts.depositDate, "deposit-date", "", "Deposit date (YYYY-MM-DD), defaults to today")
	f.StringVar(&opts.today, "today", "", "Evaluate the schedule as of this date (YYYY-MM-DD)")
	f.IntVar(&opts.plusDays, "plus-days", scheduler.DefaultPlusDays, "Days between the deposit and the top-up milestone")
	f.Int32Var(&opts.precision, "precision", domain.DefaultCurrency.Precision, "Rounding precision of money amounts")
	f.StringSliceVar(&opts.discounts, "discount", nil, "Standard catalog discount ID, repeatable")
	f.BoolVar(&opts.asJSON, "json", false, "Print JSON even on a terminal")

	return cmd
}

func runQuote(out io.Writer, opts quoteOptions, now time.Time) error {
	product := &domain.ProductSnapshot{ID: uuid.Nil, Name: "quote"}

	amounts := []struct {
		flag  string
		value string
		dst   *decimal.Decimal
	}{
		{"price", opts.priceExcludeLandTax, &product.PriceExcludeLandTax},
		{"land-tax", opts.landTax, &product.LandTax},
		{"vat", opts.vat, &product.VATTax},
		{"maintenance-fee", opts.maintenanceFee, &product.MaintenanceFee},
		{"management-fee", opts.managementFee, &product.ManagementFee},
		{"deposit", opts.deposit, &product.Deposit},
		{"area", opts.area, &product.Area},
	}
	for _, a := range amounts {
		value, err := decimal.NewFromString(a.value)
		if err != nil {
			return fmt.Errorf("invalid --%s %q: %w", a.flag, a.value, err)
		}
		if value.IsNegative() {
			return fmt.Errorf("--%s cannot be negative", a.flag)
		}
		*a.dst = value
	}

	today := domain.DateOf(now)
	if opts.today != "" {
		parsed, err := domain.ParseDate(opts.today)
		if err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
		today = parsed
	}
	if opts.depositDate != "" {
		parsed, err := domain.ParseDate(opts.depositDate)
		if err != nil {
			return fmt.Errorf("invalid --deposit-date: %w", err)
		}
		product.DepositDate = &parsed
	}

	catalog := make(map[uuid.UUID]*domain.DiscountDefinition)
	for _, d := range seeder.StandardCatalog() {
		catalog[d.ID] = &d
	}
	for _, raw := range opts.discounts {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid --discount %q: %w", raw, err)
		}
		product.SelectedDiscountIDs = append(product.SelectedDiscountIDs, id)
	}

	currency := domain.Currency{Code: domain.DefaultCurrency.Code, Precision: opts.precision}
	if err := currency.Validate(); err != nil {
		return err
	}

	view := pricing.Derive(product, catalog, currency)
	anchor := scheduler.ResolveAnchor(nil, product, today)
	schedule := scheduler.Generate(product, anchor, today, currency, scheduler.Config{PlusDays: opts.plusDays})

	if opts.asJSON || !isTerminal(out) {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"price":    presenter.PriceView(view),
			"schedule": presenter.Schedule(schedule),
		})
	}
	return printQuote(out, view, schedule)
}

func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printQuote(out io.Writer, view *pricing.PriceView, schedule *domain.Schedule) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Price incl. land tax\t%s\n", view.PriceIncludeLandTax)
	fmt.Fprintf(w, "List price\t%s\n", view.ListPrice)
	fmt.Fprintf(w, "Price per m²\t%s\n", view.PricePerM2)
	for _, d := range view.Discounts {
		fmt.Fprintf(w, "  - %s\t%s\n", d.Name, d.Amount)
	}
	for _, d := range view.Skipped {
		fmt.Fprintf(w, "  ! %s\t%s\n", d.ID, d.Reason)
	}
	fmt.Fprintf(w, "Final price\t%s\n\n", view.FinalPrice)

	fmt.Fprintln(w, "#\tDATE\tMILESTONE\tPRINCIPAL\tVAT\tBANK")
	for _, m := range schedule.Milestones {
		date := "-"
		if m.Date != nil {
			date = m.Date.Format(domain.DateLayout)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n", m.Sequence, date, m.Label, m.Principal, m.VATAmount, m.BankAmount)
	}
	fmt.Fprintf(w, "\tTOTAL\t\t%s\t%s\t\n", schedule.TotalPrincipal(), schedule.TotalVAT())

	return w.Flush()
}
