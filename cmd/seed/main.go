package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"

	"realtysite/internal/database"
	"realtysite/internal/domain"
	"realtysite/internal/remote"
	"realtysite/internal/remote/sqlbackend"
)

const SeedVersion = "0.1.0"

//go:embed listings.json
var demoListings []byte

func main() {
	usage := `Realty site database tool.

The database defaults to $DATABASE_URL, then realty.db.

Usage:
    seed migrate [--db=<dsn>]
    seed listings [--db=<dsn>]
    seed user [--db=<dsn>] --email=<email> --password=<password> [--confirmed]
    seed confirm [--db=<dsn>] --email=<email>

Options:
    -h --help              Show this screen.
    --version              Show version.
    --db=<dsn>             PostgreSQL DSN or SQLite path.
    --email=<email>
    --password=<password>
    --confirmed            Confirm the account right away.`

	// glog reads its own flags; keep them out of docopt.
	_ = flag.Set("logtostderr", "true")
	defer glog.Flush()

	opts, err := docopt.ParseArgs(usage, os.Args[1:], SeedVersion)
	if err != nil {
		glog.Fatal(err)
	}

	backend := open(opts)
	ctx := context.Background()

	if migrate_, _ := opts.Bool("migrate"); migrate_ {
		glog.Infof("schema is up to date")
	} else if listings_, _ := opts.Bool("listings"); listings_ {
		seedListings(ctx, backend)
	} else if user_, _ := opts.Bool("user"); user_ {
		createUser(ctx, backend, opts)
	} else if confirm_, _ := opts.Bool("confirm"); confirm_ {
		email, _ := opts.String("--email")
		if err := backend.ConfirmUser(ctx, email); err != nil {
			glog.Fatalf("confirm %s: %v", email, err)
		}
		glog.Infof("confirmed %s", email)
	}
}

func open(opts docopt.Opts) *sqlbackend.Backend {
	dsn, _ := opts.String("--db")
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	if dsn == "" {
		dsn = "realty.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		glog.Fatalf("db connection failed: %v", err)
	}
	backend := sqlbackend.New(db, sqlbackend.Options{JWTSecret: "seed"})
	if err := backend.Migrate(); err != nil {
		glog.Fatalf("migrate failed: %v", err)
	}
	return backend
}

// seedListings inserts the demo catalog, overwriting listings with the same id.
func seedListings(ctx context.Context, backend *sqlbackend.Backend) {
	props, err := loadListings(demoListings)
	if err != nil {
		glog.Fatal(err)
	}

	var created, updated int
	for _, p := range props {
		err := backend.Insert(ctx, remote.TableProperties, p.ToRow())
		if errors.Is(err, remote.ErrConflict) {
			patch := p.ToRow()
			delete(patch, domain.ColID)
			err = backend.Update(ctx, remote.TableProperties, patch, remote.Eq(domain.ColID, p.ID))
			updated++
		} else if err == nil {
			created++
		}
		if err != nil {
			glog.Fatalf("seed listing %s: %v", p.ID, err)
		}
	}
	glog.Infof("listings seeded: created=%d updated=%d", created, updated)
}

func loadListings(raw []byte) ([]domain.Property, error) {
	var rows []remote.Row
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	props := make([]domain.Property, 0, len(rows))
	for i, row := range rows {
		p, err := domain.PropertyFromRow(row)
		if err != nil {
			return nil, fmt.Errorf("listing %d: %w", i, err)
		}
		props = append(props, domain.NormalizeDraft(p))
	}
	return props, nil
}

func createUser(ctx context.Context, backend *sqlbackend.Backend, opts docopt.Opts) {
	email, _ := opts.String("--email")
	password, _ := opts.String("--password")
	confirmed, _ := opts.Bool("--confirmed")

	acc, err := backend.SignUp(ctx, email, password)
	if err != nil {
		glog.Fatalf("create %s: %v", email, err)
	}
	if confirmed && !acc.Confirmed {
		if err := backend.ConfirmUser(ctx, email); err != nil {
			glog.Fatalf("confirm %s: %v", email, err)
		}
	}
	glog.Infof("user %s created id=%s", email, acc.User.ID)
}
