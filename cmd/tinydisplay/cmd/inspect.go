package cmd

import (
	"flag"
	"fmt"

	"github.com/go-drift/tinydisplay/pkg/store"
)

func init() {
	RegisterCommand(&Command{
		Name:  "inspect",
		Short: "Inspect a persisted engine session",
		Long: `Inspect opens a tinydisplay persistence database (applying any
pending schema migrations, as store.Open does) and prints its schema
version, an animation's last known row, and the timeline events
recorded in a tick range.`,
		Usage: "tinydisplay inspect [-animation ID] [-from N] [-to N] <db-path>",
		Run:   runInspect,
	})
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	animationID := fs.String("animation", "", "print the last known row for this animation id")
	from := fs.Int64("from", 0, "first tick (inclusive) of the event range to print")
	to := fs.Int64("to", 1<<62, "last tick (inclusive) of the event range to print")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("inspect requires a database path")
	}
	path := fs.Arg(0)

	db, err := store.Open(path, 1)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	version, err := db.SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Printf("schema_version: %d\n", version)

	if *animationID != "" {
		row, err := db.Animation(*animationID)
		if err != nil {
			return err
		}
		if row == nil {
			fmt.Printf("animation %q: no recorded row\n", *animationID)
		} else {
			fmt.Printf("animation %q: active=%v updated_at=%d\n", row.AnimationID, row.Active, row.UpdatedAt)
		}
	}

	events, err := db.EventsInRange(*from, *to)
	if err != nil {
		return err
	}
	fmt.Printf("events in [%d, %d]: %d\n", *from, *to, len(events))
	for _, ev := range events {
		fmt.Printf("  tick=%-8d kind=%-22s primitive=%s\n", ev.Tick, ev.Kind, ev.PrimitiveID)
	}
	return nil
}
