// Command clinicq serves the clinic queue API and the live room dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/kbukum/clinicq/config"
	"github.com/kbukum/clinicq/internal/app"
	"github.com/kbukum/clinicq/version"
)

func main() {
	configFile := flag.String("config", "", "path to config.yml (default: search standard locations)")
	envFile := flag.String("env", "", "path to .env file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	if err := run(*configFile, *envFile); err != nil {
		fmt.Fprintf(os.Stderr, "clinicq: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, envFile string) error {
	var opts []config.LoaderOption
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}

	cfg := &app.Config{}
	if err := config.LoadConfig(app.ServiceName, cfg, opts...); err != nil {
		return err
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	return a.Run(context.Background())
}
