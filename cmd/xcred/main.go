package main

import (
	"os"

	"github.com/zx06/xcred/internal/app"
	"github.com/zx06/xcred/internal/errors"
	"github.com/zx06/xcred/internal/output"

	_ "github.com/zx06/xcred/internal/store/file"
	_ "github.com/zx06/xcred/internal/store/memory"
	_ "github.com/zx06/xcred/internal/store/oskeyring"
	_ "github.com/zx06/xcred/internal/store/secretservice"
	_ "github.com/zx06/xcred/internal/store/wincred"
)

func main() {
	exit := run()
	os.Exit(exit)
}

// run is the main entry point
func run() int {
	a := app.New(version, commit, date)
	w := output.New(os.Stdout, os.Stderr)

	root := NewRootCommand()

	root.AddCommand(NewSpecCommand(&a, &w))
	root.AddCommand(NewVersionCommand(&a, &w))
	root.AddCommand(NewListCommand(&w))
	root.AddCommand(NewGetCommand(&w))
	root.AddCommand(NewSetCommand(&w))
	root.AddCommand(NewDeleteCommand(&w))
	root.AddCommand(NewProfileCommand(&w))
	root.AddCommand(NewMCPCommand())

	if err := root.Execute(); err != nil {
		xe := normalizeErr(err)
		format := resolveFormatForError(GlobalConfig.FormatStr)
		_ = w.WriteError(format, xe)
		return int(errors.ExitCodeFor(xe.Code))
	}

	return int(errors.ExitOK)
}
