package main

import (
	"context"
	"fmt"
	"os"

	"routa/internal/config"
	dispatchservice "routa/internal/dispatch-service"
	"routa/internal/mylogger"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot load config:", err)
		os.Exit(1)
	}

	mylog, err := mylogger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot create logger:", err)
		os.Exit(1)
	}

	if err := dispatchservice.Execute(context.Background(), mylog, cfg); err != nil {
		mylog.Error("service stopped with error", err)
		os.Exit(1)
	}
}
