package main

import (
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.vocdoni.io/dvote/log"

	"github.com/boriskantorovich/nonprofit-donation-form/api"
	"github.com/boriskantorovich/nonprofit-donation-form/stripe"
)

func main() {
	// define flags
	flag.StringP("host", "h", "0.0.0.0", "listen address")
	flag.IntP("port", "p", 4242, "listen port")
	flag.StringP("logLevel", "l", "info", "log level (debug, info, warn, error)")
	// parse flags
	flag.Parse()
	// initialize Viper
	viper.SetEnvPrefix("DONATIONS")
	if err := viper.BindPFlags(flag.CommandLine); err != nil {
		panic(err)
	}
	viper.AutomaticEnv()
	// read the configuration
	host := viper.GetString("host")
	port := viper.GetInt("port")
	log.Init(viper.GetString("logLevel"), "stdout", nil)
	// read the Stripe configuration from the environment
	stripeConfig, err := stripe.NewConfig()
	if err != nil {
		log.Fatalf("invalid Stripe configuration: %v", err)
	}
	stripeService, err := stripe.NewService(stripeConfig)
	if err != nil {
		log.Fatalf("could not create the Stripe service: %v", err)
	}
	// create the local API server
	api.New(&api.Config{
		Host:   host,
		Port:   port,
		Stripe: stripeService,
	}).Start()
	// wait forever, as the server is running in a goroutine
	log.Infow("server started", "host", host, "port", port)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}
