package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/quanttoolbox/optionsbacktester/config"
	"github.com/quanttoolbox/optionsbacktester/engine"
	"github.com/quanttoolbox/optionsbacktester/log"
	"github.com/quanttoolbox/optionsbacktester/strategies"
)

var (
	configPath string
	verbose    bool
)

func main() {
	app := cli.NewApp()
	app.Name = "optionsbacktester"
	app.Usage = "event driven intraday options backtester"
	app.EnableBashCompletion = true
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Value:       "config.yaml",
			Usage:       "path to the run configuration file",
			Destination: &configPath,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "enable debug logging",
			Destination: &verbose,
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:   "strategies",
			Usage:  "list the registered strategies",
			Action: listStrategies,
		},
	}
	app.Action = runBacktest

	if err := app.Run(os.Args); err != nil {
		log.Errorf(log.Global, "%v", err)
		os.Exit(1)
	}
}

func runBacktest(_ *cli.Context) error {
	cfg, err := config.ReadConfigFromFile(configPath)
	if err != nil {
		return err
	}
	log.SetVerbose(verbose || cfg.Run.Verbose)
	cfg.PrintSetting()

	bt, err := engine.NewFromConfig(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closer, ok := bt.Source.(io.Closer); ok {
			if closeErr := closer.Close(); closeErr != nil {
				log.Errorf(log.Engine, "close source: %v", closeErr)
			}
		}
	}()

	if err = bt.Run(); err != nil {
		return err
	}
	bt.Statistic.PrintResults()
	return nil
}

func listStrategies(_ *cli.Context) error {
	for _, s := range strategies.GetStrategies() {
		fmt.Printf("%s\t%s\n", s.Name(), s.Description())
	}
	return nil
}
