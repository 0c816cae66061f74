package main

import (
	"flag"
	"fmt"
	"os"
)

var (
	hf         bool
	configPath string
	logLevel   string
	inputDir   string
)

func InitFlag() {
	flag.BoolVar(&hf, "h", false, "this help")
	flag.StringVar(&configPath, "c", "./conf/conf.toml", "set config `file`")
	flag.StringVar(&logLevel, "l", "info", "set log level (default: info)")
	flag.StringVar(&inputDir, "i", "", "set input `directory` of base images, overrides config")
	// 改变默认的 Usage
	flag.Usage = usage
	flag.Parse()

	if hf {
		flag.Usage()
		os.Exit(0)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `pyramider version: pyramider/v0.1.0
Usage: pyramider [-h] [-c filename] [-l logLevel] [-i inputDir]
`)
	flag.PrintDefaults()
}
