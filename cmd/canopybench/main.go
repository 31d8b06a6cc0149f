// Command canopybench builds a small synthetic fault tree and estimates
// its root probability via the Monte Carlo pipeline, exercising config
// loading, structured logging and the CLI stack end to end. It is a demo
// harness, not part of the pipeline package's public contract.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("canopybench: failed")
		os.Exit(1)
	}
}
