package main

import (
	"github.com/dussaanushka1605/bloodsetu/authentication"
	"github.com/dussaanushka1605/bloodsetu/configuration"
	"github.com/dussaanushka1605/bloodsetu/controllers"
	"github.com/dussaanushka1605/bloodsetu/jobs"
	"github.com/dussaanushka1605/bloodsetu/routes"
)

func Init() {
	configuration.InitLogger()
	configuration.ConfigDB()
	configuration.InitRedis()

	controllers.Broker = authentication.NewOTPBroker(
		configuration.Client,
		authentication.EmailSender{},
		controllers.CheckDuplicateIdentity,
		configuration.Logger,
	)
}

func main() {
	Init()
	defer controllers.Broker.Stop()

	stop := make(chan struct{})
	defer close(stop)
	jobs.StartCampSweeper(stop)

	r := routes.SetupRouter()
	if err := r.Run(); err != nil {
		panic(err)
	}
}
