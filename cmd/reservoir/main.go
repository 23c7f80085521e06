package main

import (
	"github.com/michaelquigley/pfxlog"
	_ "github.com/openziti/reservoir/cmd/reservoir/burst"
	_ "github.com/openziti/reservoir/cmd/reservoir/ctrl"
	_ "github.com/openziti/reservoir/cmd/reservoir/influx"
	"github.com/openziti/reservoir/cmd/reservoir/reservoir"
	"github.com/sirupsen/logrus"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
)

func init() {
	pfxlog.Global(logrus.InfoLevel)
	pfxlog.SetPrefix("github.com/openziti/")
}

func main() {
	defer logrus.Debugf("finished")

	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGQUIT)
		buf := make([]byte, 1<<20)
		for {
			<-sigs
			stacklen := runtime.Stack(buf, true)
			log.Printf("=== received SIGQUIT ===\n*** goroutine dump...\n%s\n*** end\n", buf[:stacklen])
		}
	}()

	if err := reservoir.RootCmd.Execute(); err != nil {
		logrus.Fatalf("error (%v)", err)
	}
}
