package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to. The real
// App type satisfies this interface; tests can provide a lightweight stub.
// Every handler receives the words after the command name.
type execIface interface {
	New(ctx context.Context, args []string) error
	Edit(ctx context.Context, args []string) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Analyze(ctx context.Context, args []string) error
	Sync(ctx context.Context, args []string) error
	Recover(ctx context.Context, args []string) error
	Discard(ctx context.Context, args []string) error

	Link(ctx context.Context, args []string) error
	Unlink(ctx context.Context, args []string) error
	AggregatorStatus(ctx context.Context, args []string) error
	Push(ctx context.Context, args []string) error

	Pair(ctx context.Context, args []string) error
	Join(ctx context.Context, args []string) error
	Viewers(ctx context.Context, args []string) error
	Sharers(ctx context.Context, args []string) error
	Disconnect(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  new [date]          write an entry (edits the existing one for that date)
  edit <id|date>      edit an entry
  (l)ist              list entries, newest first
  show <id|date>      show one entry
  delete <id|date>    delete an entry
  analyze <id|date>   request analysis for an entry
  sync                push local changes and pull from the server
  recover | discard   continue or drop a draft left by an interrupted save
  link <code>         link the aggregator
  unlink              remove the aggregator link
  aggregator          show the aggregator link
  push                send the aggregator summary now
  pair [new]          show or issue a pairing code
  join <code>         use someone's pairing code
  viewers | sharers   list who views my diary / whose diaries I view
  disconnect <id>     end a relationship
  exit | quit         leave the program`

// runREPL reads commands from reader until EOF or "exit"/"quit" and
// dispatches them to a. The prompt shows statusFn. Handler errors are
// reported by the handlers themselves; the loop only keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("diary %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpText)

		case "new":
			_ = a.New(ctx, args)
		case "edit":
			_ = a.Edit(ctx, args)
		case "l", "list":
			_ = a.List(ctx, args)
		case "show":
			_ = a.Show(ctx, args)
		case "delete":
			_ = a.Delete(ctx, args)
		case "analyze":
			_ = a.Analyze(ctx, args)
		case "sync":
			_ = a.Sync(ctx, args)
		case "recover":
			_ = a.Recover(ctx, args)
		case "discard":
			_ = a.Discard(ctx, args)

		case "link":
			_ = a.Link(ctx, args)
		case "unlink":
			_ = a.Unlink(ctx, args)
		case "aggregator":
			_ = a.AggregatorStatus(ctx, args)
		case "push":
			_ = a.Push(ctx, args)

		case "pair":
			_ = a.Pair(ctx, args)
		case "join":
			_ = a.Join(ctx, args)
		case "viewers":
			_ = a.Viewers(ctx, args)
		case "sharers":
			_ = a.Sharers(ctx, args)
		case "disconnect":
			_ = a.Disconnect(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
