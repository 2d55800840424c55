// cmd/chronocost/workers.go
package main

import (
	"fmt"
	"time"

	"chronocost/internal/common/camunda"
	"chronocost/internal/common/config"
	"chronocost/internal/common/logger"
	"chronocost/internal/docstore"
	"chronocost/internal/notify"
	"chronocost/internal/risk"
	"chronocost/pkg/registry"

	cpr "chronocost/internal/workers/project/create-project-record"
	er "chronocost/internal/workers/project/estimate-risk"
	ihc "chronocost/internal/workers/project/ingest-historical-csv"
	nps "chronocost/internal/workers/project/notify-project-submitted"
)

type workerSet struct {
	client  *camunda.Client
	workers []*camunda.CamundaWorker
	log     logger.Logger
}

func (s *workerSet) Stop() {
	for _, w := range s.workers {
		w.Stop()
	}
	if err := s.client.Close(); err != nil {
		s.log.Error("Error closing Zeebe client", map[string]interface{}{"error": err.Error()})
	}
}

func startWorkers(cfg *config.Config, store docstore.Store, weights risk.Weights, notifier *notify.Notifier, log logger.Logger) (*workerSet, error) {
	var client *camunda.Client
	err := retryWithBackoff(func() error {
		var err error
		client, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		return nil, err
	}
	log.Info("Zeebe client connected successfully", nil)

	handlers := map[string]camunda.HandlerFunc{}

	if wcfg := config.GetWorkerConfig(cfg, ihc.TaskType); wcfg.Enabled {
		c := ihc.LoadConfig()
		c.Timeout = config.GetDuration(wcfg.Timeout)
		c.MaxBytes = int(cfg.HTTP.MaxUploadBytes)
		handlers[ihc.TaskType] = ihc.NewHandler(c, log).Handle
	}

	if wcfg := config.GetWorkerConfig(cfg, er.TaskType); wcfg.Enabled {
		handlers[er.TaskType] = er.NewHandler(&er.Config{
			Timeout: config.GetDuration(wcfg.Timeout),
			Weights: weights,
		}, log).Handle
	}

	if wcfg := config.GetWorkerConfig(cfg, cpr.TaskType); wcfg.Enabled {
		handlers[cpr.TaskType] = cpr.NewHandler(&cpr.Config{
			Timeout:            config.GetDuration(wcfg.Timeout),
			DatabaseID:         cfg.DocumentStore.DatabaseID,
			ProjectsCollection: cfg.DocumentStore.ProjectsCollection,
		}, store, log).Handle
	}

	if wcfg := config.GetWorkerConfig(cfg, nps.TaskType); wcfg.Enabled {
		handlers[nps.TaskType] = nps.NewHandler(&nps.Config{
			Timeout: config.GetDuration(wcfg.Timeout),
		}, notifier, log).Handle
	}

	checkRegistry(cfg.Registry.Path, handlers, log)

	set := &workerSet{client: client, log: log}
	for taskType, handle := range handlers {
		set.workers = append(set.workers,
			camunda.NewWorker(client.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), handle, log))
	}
	log.Info(fmt.Sprintf("%d workers registered", len(set.workers)), nil)
	return set, nil
}

// checkRegistry warns about workers the activity registry does not list.
func checkRegistry(path string, handlers map[string]camunda.HandlerFunc, log logger.Logger) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry unavailable", map[string]interface{}{"path": path, "error": err.Error()})
		return
	}

	taskTypes := make([]string, 0, len(handlers))
	for tt := range handlers {
		taskTypes = append(taskTypes, tt)
	}
	for _, missing := range reg.Missing(taskTypes) {
		log.Warn("worker not listed in activity registry", map[string]interface{}{"taskType": missing})
	}
}
