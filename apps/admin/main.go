package main

import (
	"log"
	"os"

	"github.com/trezcool/deptportal/core"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	cli := commandLine{
		conf: core.NewConfig(),
		out:  os.Stdout,
	}
	err := cli.run(os.Args)
	if closeErr := cli.close(); closeErr != nil {
		logger.Printf("closing storage: %s\n", closeErr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
