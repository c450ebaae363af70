package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ratel-online/core/log"
	"github.com/ratel-online/core/util/async"
	"github.com/ratel-online/landlord/config"
	"github.com/ratel-online/landlord/database"
	"github.com/ratel-online/landlord/network"
	"github.com/ratel-online/landlord/rule"
)

var (
	configPath = flag.String("config", "", "YAML configuration file")
	dumpRules  = flag.String("dump-rules", "", "write the generated rule catalog to this file and exit")
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Println("main", err)
			async.PrintStackTrace(err)
		}
	}()
	flag.Parse()
	if *dumpRules != "" {
		if err := dump(*dumpRules); err != nil {
			log.Error(err)
			os.Exit(1)
		}
		return
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	settings, err := cfg.Settings()
	if err != nil {
		log.Error(err)
		os.Exit(1)
	}
	database.Setup(settings)
	log.Infof("rule catalog loaded, %d specs\n", settings.Catalog.Size())

	stop := make(chan struct{})
	defer close(stop)
	database.Janitor(time.Minute, stop)

	async.Async(func() {
		log.Error(network.NewWebsocketServer(cfg.Server.WsAddr).Serve())
	})
	log.Error(network.NewTcpServer(cfg.Server.TcpAddr).Serve())
}

func dump(path string) error {
	catalog, err := rule.Generate()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := catalog.WriteTo(f); err != nil {
		return err
	}
	log.Infof("rule catalog written to %s\n", path)
	return nil
}
