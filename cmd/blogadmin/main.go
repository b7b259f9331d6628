// Command blogadmin manages the records the web UI has no pages for.
//
//	blogadmin [-db-driver sqlite3] [-dsn ./blog.db] category add NAME
//	blogadmin category list
//	blogadmin category delete SLUG
//	blogadmin user list
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"blog/internal/app"
	"blog/internal/db"
	"blog/internal/store"
)

var errUsage = errors.New("usage: blogadmin [flags] category add NAME | category list | category delete SLUG | user list")

func main() {
	cfg, err := app.LoadConfig(nil)
	app.Must(err)

	fs := flag.NewFlagSet("blogadmin", flag.ExitOnError)
	fs.StringVar(&cfg.DatabaseDriver, "db-driver", cfg.DatabaseDriver, "database driver: sqlite3 or postgres")
	fs.StringVar(&cfg.DatabaseURL, "dsn", cfg.DatabaseURL, "database DSN or SQLite file path")
	_ = fs.Parse(os.Args[1:])

	ctx := context.Background()
	conn, dialect, err := db.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	app.Must(err)
	defer conn.Close()
	app.Must(db.Migrate(ctx, conn, dialect))

	log := app.NewLogger(os.Stderr, cfg)
	if err := run(ctx, store.New(conn, dialect, store.WithLogger(log)), fs.Args(), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func run(ctx context.Context, s *store.Store, args []string, out io.Writer) error {
	if len(args) < 2 {
		return errUsage
	}
	switch args[0] + " " + args[1] {
	case "category add":
		name := strings.TrimSpace(strings.Join(args[2:], " "))
		if name == "" {
			return errUsage
		}
		c, err := s.Categories().Create(ctx, name)
		if err != nil {
			return fmt.Errorf("add category %q: %w", name, err)
		}
		fmt.Fprintf(out, "added %d %s (%s)\n", c.ID, c.Name, c.Slug)
		return nil

	case "category list":
		cats, err := s.Categories().List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tSLUG\tNAME")
		for _, c := range cats {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", c.ID, c.Slug, c.Name)
		}
		return tw.Flush()

	case "category delete":
		if len(args) != 3 {
			return errUsage
		}
		c, err := s.Categories().BySlug(ctx, args[2])
		if err != nil {
			return fmt.Errorf("category %q: %w", args[2], err)
		}
		if err := s.Categories().Delete(ctx, c.ID); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted %s\n", c.Slug)
		return nil

	case "user list":
		users, err := s.Users().List(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tUSERNAME\tNAME\tEMAIL\tJOINED")
		for _, u := range users {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Username, u.FullName(), u.Email, u.DateJoined.Format("2006-01-02"))
		}
		return tw.Flush()
	}
	return errUsage
}
