package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/incognitochain/merklemine-workers/utils"
	"github.com/incognitochain/merklemine-workers/workers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	quit       chan os.Signal
	finish     chan error
	workers    []workers.Worker
	metricsSrv *http.Server
}

func NewServer(cfg *workers.ClaimConfig) (*Server, error) {
	listWorkers := []workers.Worker{}
	notifier := utils.NewSlackNotifier(cfg.AlertWebhookURL, cfg.InfoWebhookURL)

	claimMiner := &workers.ClaimMiner{}
	err := claimMiner.Init(workers.ClaimMinerWorkerID, workers.ClaimMinerWorkerName, cfg, notifier)
	if err != nil {
		return nil, fmt.Errorf("Can't init %v: %w", workers.ClaimMinerWorkerName, err)
	}
	listWorkers = append(listWorkers, claimMiner)

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	}

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	return &Server{
		quit:       quitChan,
		finish:     make(chan error, len(listWorkers)),
		workers:    listWorkers,
		metricsSrv: metricsSrv,
	}, nil
}

func (s *Server) NotifyQuitSignal(cancel context.CancelFunc, workers []workers.Worker) {
	sig, ok := <-s.quit
	if !ok {
		return
	}
	fmt.Printf("Caught sig: %+v \n", sig)
	cancel()
	// notify all workers about quit signal
	for _, a := range workers {
		select {
		case a.GetQuitChan() <- true:
		default:
		}
	}
}

// Run blocks until every worker finished and returns the first fatal error reported by one of them
func (s *Server) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if s.metricsSrv != nil {
		go func() {
			if err := s.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("Could not serve metrics on %v - with err: %v", s.metricsSrv.Addr, err)
			}
		}()
	}

	workers := s.workers
	go s.NotifyQuitSignal(cancel, workers)
	for _, a := range workers {
		go executeWorker(ctx, s.finish, a)
	}

	var fatalErr error
	for range workers {
		err := <-s.finish
		if err != nil && fatalErr == nil {
			fatalErr = err
			// one fatal worker takes the others down
			cancel()
			for _, a := range workers {
				select {
				case a.GetQuitChan() <- true:
				default:
				}
			}
		}
	}

	s.shutdown()
	return fatalErr
}

func (s *Server) shutdown() {
	signal.Stop(s.quit)
	close(s.quit)
	for _, a := range s.workers {
		if closer, ok := a.(interface{ Close() }); ok {
			closer.Close()
		}
	}
	if s.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.metricsSrv.Shutdown(ctx)
	}
}

func executeWorker(ctx context.Context, finish chan error, worker workers.Worker) {
	worker.Execute(ctx) // execute as soon as starting up
	if worker.GetFrequency() <= 0 {
		select {
		case err := <-worker.GetFatalChan():
			finish <- err
		default:
			finish <- nil
		}
		return
	}
	for {
		select {
		case err := <-worker.GetFatalChan():
			fmt.Printf("Task for %s failed: %v\n", worker.GetName(), err)
			finish <- err
			return
		case <-worker.GetQuitChan():
			fmt.Printf("Finishing task for %s ...\n", worker.GetName())
			time.Sleep(time.Second * 1)
			fmt.Printf("Task for %s done! \n", worker.GetName())
			finish <- nil
			return
		case <-time.After(time.Duration(worker.GetFrequency()) * time.Second):
			worker.Execute(ctx)
		}
	}
}
