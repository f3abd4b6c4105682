package main

import (
	"context"
	"fmt"
	"os"

	"github.com/photomart/cli/internal/app"
)

func main() {
	ctx := context.Background()
	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "photomart:", err)
		os.Exit(1)
	}
}
