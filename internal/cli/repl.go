package cli

import (
	"context"
	"fmt"
	"strings"
)

// repl reads commands until EOF or quit. Command handlers report their own
// errors; the loop itself only does I/O.
func (a *App) repl(ctx context.Context) {
	fmt.Println("Car record book (type 'help' for commands)")

	for {
		fmt.Printf("carlog%s> ", a.promptSuffix())

		line, err := a.reader.ReadString('\n')
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			fmt.Println("Available commands: (l)ist, add, edit, del, report, sync, pull, export, import, status, exit")
		case "list", "l":
			a.List()
		case "add", "a":
			a.Add(ctx)
		case "edit":
			a.Edit(ctx, args)
		case "del", "rm":
			a.Delete(ctx, args)
		case "report":
			a.Report(args)
		case "sync":
			a.Sync(ctx, false)
		case "pull":
			a.Sync(ctx, true)
		case "export":
			a.Export(args)
		case "import":
			a.Import(ctx, args)
		case "status":
			a.SyncStatus()
		case "exit", "quit", "q":
			return
		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}
	}
}

func (a *App) promptSuffix() string {
	if a.svc.Meta().Dirty {
		return " *"
	}
	return ""
}
