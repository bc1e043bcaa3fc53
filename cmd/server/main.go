// Command server runs the thin API surface: it accepts
// job/transcription/search requests, starts C8 workflows on the
// Temporal client, and reads Job rows back for status polling and
// progress subscription. The actual pipeline work happens in
// cmd/worker's separate process.
package main

import (
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"ingestpipe/internal/api"
	"ingestpipe/seedwork/infrastructure/container"
)

func main() {
	c, err := container.NewContainer()
	if err != nil {
		panic(err)
	}
	defer c.Log.Sync()

	temporalClient, err := client.Dial(client.Options{
		HostPort:  c.Config.Temporal.HostPort,
		Namespace: c.Config.Temporal.Namespace,
	})
	if err != nil {
		c.Log.Fatal("failed to connect to temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	router := api.NewRouter(c, temporalClient)

	c.Log.Info("starting api server", zap.String("port", c.Config.Server.Port))
	if err := router.Run(":" + c.Config.Server.Port); err != nil {
		c.Log.Fatal("server stopped with error", zap.Error(err))
	}
}
