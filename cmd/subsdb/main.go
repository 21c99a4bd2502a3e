// Command subsdb creates and seeds subscription databases.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"subs/internal/config"
	"subs/internal/domain"
	"subs/internal/store"
)

const usage = `usage: subsdb [-db path] command [args]

commands:
  init                             create the database
  tag NAME                         add a tag, print its id
  sub TYPE EXT_ID NAME             add a subscription (TYPE is lbry or youtube), print its id
  video [-date D] [-watched] SUB EXT_ID TITLE
                                   add a video to subscription SUB, print its id
  tag-sub SUB TAG                  tag a subscription
  watch VIDEO                      toggle the watched flag of a video
  ls [-width N]                    print the source pane rows
`

var errUsage = errors.New("invalid arguments")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		fmt.Fprintf(os.Stderr, "subsdb: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("subsdb", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	dbPath := fs.String("db", "", "Path to the subscription database")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	if *dbPath == "" {
		*dbPath = config.DefaultConfig().Database
	}

	db, err := store.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "init":
		return expect(rest, 0)
	case "tag":
		if err := expect(rest, 1); err != nil {
			return err
		}
		return printID(out)(db.AddTag(ctx, rest[0]))
	case "sub":
		if err := expect(rest, 3); err != nil {
			return err
		}
		typ, ok := domain.ParseSubType(rest[0])
		if !ok {
			return fmt.Errorf("%w: unknown subscription type %q", errUsage, rest[0])
		}
		return printID(out)(db.AddSubscription(ctx, typ, rest[1], rest[2]))
	case "video":
		return addVideo(ctx, db, rest, out)
	case "tag-sub":
		ids, err := parseIDs(rest, 2)
		if err != nil {
			return err
		}
		return db.TagSubscription(ctx, ids[0], ids[1])
	case "watch":
		ids, err := parseIDs(rest, 1)
		if err != nil {
			return err
		}
		return db.ToggleWatched(ctx, ids[0])
	case "ls":
		return listSources(ctx, db, rest, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func addVideo(ctx context.Context, db *store.SQLite, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("video", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	date := fs.String("date", "", "Publication date (YYYY-MM-DD), defaults to now")
	watched := fs.Bool("watched", false, "Mark the video as watched")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := expect(fs.Args(), 3); err != nil {
		return err
	}
	sub, err := strconv.ParseInt(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad subscription id %q", errUsage, fs.Arg(0))
	}
	published := time.Now()
	if *date != "" {
		published, err = time.ParseInLocation(time.DateOnly, *date, time.Local)
		if err != nil {
			return fmt.Errorf("%w: bad date %q", errUsage, *date)
		}
	}
	return printID(out)(db.AddVideo(ctx, sub, fs.Arg(1), fs.Arg(2), published, *watched))
}

func listSources(ctx context.Context, db *store.SQLite, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	width := fs.Int("width", 32, "Row width")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	rows, err := db.Sources(ctx, *width)
	if err != nil {
		return err
	}
	for _, r := range rows {
		fmt.Fprintln(out, r.Line)
	}
	return nil
}

func expect(args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: expected %d arguments, got %d", errUsage, n, len(args))
	}
	return nil
}

func parseIDs(args []string, n int) ([]int64, error) {
	if err := expect(args, n); err != nil {
		return nil, err
	}
	ids := make([]int64, n)
	for i, a := range args {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad id %q", errUsage, a)
		}
		ids[i] = id
	}
	return ids, nil
}

func printID(out io.Writer) func(int64, error) error {
	return func(id int64, err error) error {
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, id)
		return err
	}
}
