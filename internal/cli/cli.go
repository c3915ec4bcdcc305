// Package cli implements the mqb command line tool.
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"

	querybuilder "github.com/niklucky/mysql-query-builder"
	"github.com/niklucky/mysql-query-builder/internal/config"
)

// OpenFunc opens the database statements are executed on.
type OpenFunc func(cfg *mysql.Config) (*sql.DB, error)

func openMySQL(cfg *mysql.Config) (*sql.DB, error) {
	conn, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(conn), nil
}

type app struct {
	open OpenFunc

	configFile string
	dsn        string
	inline     bool
	noColor    bool
	exec       bool

	cfg    *config.Config
	logger *slog.Logger
}

// NewRootCommand builds the mqb command tree. A nil open executes on MySQL.
func NewRootCommand(open OpenFunc) *cobra.Command {
	a := &app{open: open}
	if a.open == nil {
		a.open = openMySQL
	}

	root := &cobra.Command{
		Use:           "mqb",
		Short:         "Compile MySQL statements from clause flags",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default ./mqb.yaml)")
	pf.StringVar(&a.dsn, "dsn", "", "MySQL DSN, overrides the configured one")
	pf.BoolVar(&a.inline, "inline", false, "inline values instead of ? placeholders")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&a.exec, "exec", false, "execute the statement against the database")

	root.AddCommand(
		a.selectCommand(),
		a.insertCommand(),
		a.updateCommand(),
		a.deleteCommand(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.dsn != "" {
		cfg.DSN = a.dsn
	}
	if a.inline {
		cfg.Inline = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if a.noColor {
		color.NoColor = true
	}

	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.Level()}))
	return nil
}

func (a *app) builder() *querybuilder.Builder {
	return querybuilder.New(a.cfg.Options(a.logger)...)
}

// finish compiles the draft, prints it and executes it when asked to.
func (a *app) finish(cmd *cobra.Command, b *querybuilder.Builder) error {
	out := cmd.OutOrStdout()

	if !a.exec {
		stmt, err := b.Build()
		if err != nil {
			return err
		}
		printStatement(out, stmt)
		return nil
	}

	mc, err := a.cfg.MySQL()
	if err != nil {
		return err
	}
	db, err := a.open(mc)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	stmt, rows, res, err := b.Run(cmd.Context(), db)
	if err != nil {
		return err
	}
	printStatement(out, stmt)

	if rows != nil {
		defer rows.Close()
		if err := printRows(out, rows); err != nil {
			return err
		}
	}
	if res != nil {
		if n, err := res.RowsAffected(); err == nil {
			fmt.Fprintf(out, "rows affected: %d\n", n)
		}
	}

	if e, ok := b.Log().Entry(stmt.ID); ok && e.Executed {
		color.New(color.FgGreen).Fprintf(out, "executed in %s\n", e.Elapsed)
	}
	return nil
}

func printStatement(out io.Writer, stmt querybuilder.Statement) {
	color.New(color.FgCyan, color.Bold).Fprintln(out, stmt.SQL)
	if len(stmt.Args) > 0 {
		color.New(color.FgYellow).Fprintf(out, "args: %v\n", stmt.Args)
	}
}

func printRows(out io.Writer, rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strings.Join(cols, "\t"))

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		cells := make([]string, len(vals))
		for i, v := range vals {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			cells[i] = fmt.Sprint(v)
		}
		fmt.Fprintln(out, strings.Join(cells, "\t"))
	}
	return rows.Err()
}
