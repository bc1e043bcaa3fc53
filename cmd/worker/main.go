// Command worker starts the Temporal worker process that executes C8's
// DownloadWorkflow and TranscribeWorkflow plus their activities. It is
// a separate OS process from cmd/server, so API request handling never
// shares a process with long-running pipeline work.
package main

import (
	"log"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"ingestpipe/internal/workflow"
	"ingestpipe/seedwork/infrastructure/container"
)

func main() {
	c, err := container.NewContainer()
	if err != nil {
		log.Fatalf("failed to build container: %v", err)
	}
	defer c.Log.Sync()

	if err := c.ContentStore.SweepStaging(time.Hour); err != nil {
		c.Log.Warn("staging sweep failed at startup", zap.Error(err))
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  c.Config.Temporal.HostPort,
		Namespace: c.Config.Temporal.Namespace,
	})
	if err != nil {
		c.Log.Fatal("failed to connect to temporal", zap.Error(err))
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, c.Config.Temporal.TaskQueue, worker.Options{})

	activities := workflow.NewActivities(
		c.MediaService,
		c.MediaFileRepo,
		c.TranscriptionRepo,
		c.ChunkRepo,
		c.JobRepo,
		c.TranscriptionTopic,
		c.Transcriber,
		c.Chunker,
		c.Embedder,
		c.Classifier,
		c.ProgressBus,
		c.Log,
	)

	w.RegisterWorkflow(workflow.DownloadWorkflow)
	w.RegisterWorkflow(workflow.TranscribeWorkflow)
	w.RegisterActivity(activities.DownloadActivity)
	w.RegisterActivity(activities.TranscribeActivity)
	w.RegisterActivity(activities.ChunkActivity)
	w.RegisterActivity(activities.AssignTopicsActivity)
	w.RegisterActivity(activities.EmbedActivity)
	w.RegisterActivity(activities.CompleteJobActivity)
	w.RegisterActivity(activities.FailJobActivity)

	c.Log.Info("starting temporal worker",
		zap.String("task_queue", c.Config.Temporal.TaskQueue),
		zap.String("host_port", c.Config.Temporal.HostPort),
	)

	if err := w.Run(worker.InterruptCh()); err != nil {
		c.Log.Fatal("worker stopped with error", zap.Error(err))
	}
}
