package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-drift/tinydisplay/pkg/marquee"
)

func init() {
	RegisterCommand(&Command{
		Name:  "marquee",
		Short: "Validate and resolve a marquee program from a script file",
		Long: `Marquee reads a line-oriented marquee script and builds it with
pkg/marquee's ProgramBuilder, reporting the first compile error if the
program is invalid, or the resolved widget's position at a handful of
sample ticks if it is valid.

Script grammar, one statement per line:

  move <up|down|left|right> <distance> <step>
  pause <ticks>
  sync <event>
  waitfor <event> <timeout_ticks>
  loop <count|infinite>
  end

loop/end nest; blank lines and lines starting with # are ignored.`,
		Usage: "tinydisplay marquee <script-file>",
		Run:   runMarquee,
	})
}

func runMarquee(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("marquee requires a script file path")
	}
	path := args[0]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := readLines(f)
	if err != nil {
		return err
	}

	b := marquee.NewProgramBuilder()
	if _, err := parseBlock(b, lines, 0); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	prog, err := b.Build()
	if err != nil {
		return fmt.Errorf("invalid program: %w", err)
	}

	resolver := marquee.NewResolver(240)
	resolver.AddWidget("widget", 0, prog)
	result := resolver.Resolve()

	pt, ok := result.Timelines["widget"]
	if !ok || !pt.Converged {
		fmt.Println("program did not converge within the resolution horizon")
		return nil
	}
	fmt.Println("program compiled and resolved")
	for _, t := range []uint64{0, 10, 50, 100, 200} {
		x, y := pt.PositionAt(t)
		fmt.Printf("  t=%-4d x=%-5d y=%d\n", t, x, y)
	}
	return nil
}

func readLines(f *os.File) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, sc.Err()
}

// parseBlock consumes lines[i:] into b until it sees "end" or runs out of
// input, returning the index just past what it consumed.
func parseBlock(b *marquee.ProgramBuilder, lines []string, i int) (int, error) {
	for i < len(lines) {
		line := lines[i]
		if line == "end" {
			return i + 1, nil
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "move":
			if len(fields) != 4 {
				return i, fmt.Errorf("line %d: move requires direction, distance, step", i+1)
			}
			dir, err := parseDirection(fields[1])
			if err != nil {
				return i, fmt.Errorf("line %d: %w", i+1, err)
			}
			distance, err1 := strconv.Atoi(fields[2])
			step, err2 := strconv.Atoi(fields[3])
			if err1 != nil || err2 != nil {
				return i, fmt.Errorf("line %d: distance and step must be integers", i+1)
			}
			b.Move(dir, distance, step)
			i++

		case "pause":
			if len(fields) != 2 {
				return i, fmt.Errorf("line %d: pause requires a tick count", i+1)
			}
			ticks, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return i, fmt.Errorf("line %d: pause ticks must be a non-negative integer", i+1)
			}
			b.Pause(ticks)
			i++

		case "sync":
			if len(fields) != 2 {
				return i, fmt.Errorf("line %d: sync requires an event name", i+1)
			}
			b.Sync(fields[1])
			i++

		case "waitfor":
			if len(fields) != 3 {
				return i, fmt.Errorf("line %d: waitfor requires an event name and timeout", i+1)
			}
			timeout, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return i, fmt.Errorf("line %d: waitfor timeout must be a non-negative integer", i+1)
			}
			b.WaitFor(fields[1], timeout)
			i++

		case "loop":
			if len(fields) != 2 {
				return i, fmt.Errorf("line %d: loop requires a count or \"infinite\"", i+1)
			}
			count := marquee.Infinite
			if fields[1] != "infinite" {
				n, err := strconv.Atoi(fields[1])
				if err != nil {
					return i, fmt.Errorf("line %d: loop count must be an integer or \"infinite\"", i+1)
				}
				count = n
			}
			next, bodyErr := bodyEnd(lines, i+1)
			if bodyErr != nil {
				return i, bodyErr
			}
			body := lines[i+1 : next]
			var blockErr error
			b.Loop(count, func(nested *marquee.ProgramBuilder) {
				if _, err := parseBlock(nested, body, 0); err != nil {
					blockErr = err
				}
			})
			if blockErr != nil {
				return i, blockErr
			}
			i = next + 1

		default:
			return i, fmt.Errorf("line %d: unknown statement %q", i+1, fields[0])
		}
	}
	return i, nil
}

// bodyEnd finds the index of the "end" matching a loop opened at lines[start-1],
// accounting for nested loop/end pairs.
func bodyEnd(lines []string, start int) (int, error) {
	depth := 0
	for i := start; i < len(lines); i++ {
		switch {
		case strings.HasPrefix(lines[i], "loop "):
			depth++
		case lines[i] == "end":
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, fmt.Errorf("unterminated loop starting before line %d", start)
}

func parseDirection(s string) (marquee.Direction, error) {
	switch s {
	case "up":
		return marquee.Up, nil
	case "down":
		return marquee.Down, nil
	case "left":
		return marquee.Left, nil
	case "right":
		return marquee.Right, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}
