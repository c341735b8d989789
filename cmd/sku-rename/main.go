package main

import (
	"context"
	"os"

	"sku-renamer/internal/startup"

	"github.com/charmbracelet/fang"
)

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(startup.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
