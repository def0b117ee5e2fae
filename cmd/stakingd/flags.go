package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:   "config",
		Value:  "configs/config.yaml",
		EnvVar: "CONFIG_PATH",
		Usage:  "path to the YAML configuration file",
	}
	runOnStartFlag = cli.BoolFlag{
		Name:   "run-on-start",
		EnvVar: "RUN_ON_START",
		Usage:  "refresh the price and send a pool report immediately",
	}
)
