package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/helper"
	"github.com/relloyd/sparkify-dwh/logger"
	"github.com/relloyd/sparkify-dwh/stats"
)

type WebServerConfig struct {
	Dag              DagConfig
	Scheme           string `errorTxt:"scheme" mandatory:"no"`
	Addr             net.IP `errorTxt:"address" mandatory:"no"`
	Port             int    `errorTxt:"port" mandatory:"yes"`
	NoSchedule       bool   // serve the API and accept triggers without starting the cron loop
	StackDumpOnPanic bool
}

// DagService is what the HTTP handlers act on.
type DagService struct {
	Schedulers map[string]*dag.Scheduler
	Registry   *dag.RunRegistry
	Metrics    http.Handler
	Now        func() time.Time
}

func (s *DagService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// RunScheduler runs sparkify_dag on its schedule and serves the HTTP API until SIGINT or GET /stop.
func RunScheduler(web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	if err := helper.ValidateStructIsPopulated(web); err != nil {
		return err
	}
	log := newLogger(web.Dag.LogLevel, web.StackDumpOnPanic)
	recorder := stats.NewPrometheusRecorder()
	d, s, closeFn, err := buildSparkifyDag(log, &web.Dag, recorder)
	if err != nil {
		return err
	}
	defer closeFn()
	registry := dag.NewRunRegistry()
	runner := dag.NewRunner(log, recorder, registry)
	runner.MaxActiveTasks = s.MaxActiveTasks
	sched, err := dag.NewScheduler(log, runner, d)
	if err != nil {
		return err
	}
	svc := &DagService{
		Schedulers: map[string]*dag.Scheduler{d.ID: sched},
		Registry:   registry,
		Metrics:    recorder.Handler(),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if web.NoSchedule {
		log.Info("Scheduling is paused, runs start only when triggered")
		sched.SetPaused(true)
	}
	sched.Start(ctx)
	srv, chanStopServer := runServer(log, web, svc)
	return waitForServer(log, srv, chanStopServer, svc)
}

// runServer starts a web server and returns it with a channel that stops it.
func runServer(log logger.Logger, web *WebServerConfig, svc *DagService) (*http.Server, chan string) {
	chanStopServer := make(chan string, 1)
	srv := &http.Server{ // timeouts guard against slow clients holding connections.
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      newRouter(log, svc, chanStopServer),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Panic(err)
			}
		}
	}()
	log.Info(fmt.Sprintf("Listening on %v://%v:%v", strings.ToLower(web.Scheme), web.Addr, web.Port))
	return srv, chanStopServer
}

func newRouter(log logger.Logger, svc *DagService, chanStopServer chan string) *mux.Router {
	r := mux.NewRouter()
	r.Path("/stop").Methods(http.MethodGet).HandlerFunc(GetHandlerStopServer(log, chanStopServer))
	r.Path("/health").Methods(http.MethodGet).HandlerFunc(GetHandlerHealth(log))
	r.Path("/dags").Methods(http.MethodGet).HandlerFunc(GetHandlerDagList(log, svc))
	r.Path("/dags/{dagId}/trigger").Methods(http.MethodPost).HandlerFunc(GetHandlerDagTrigger(log, svc))
	r.Path("/runs").Methods(http.MethodGet).HandlerFunc(GetHandlerRunList(log, svc))
	r.Path("/runs/{runId}/status").Methods(http.MethodGet).HandlerFunc(GetHandlerRunStatus(log, svc))
	r.Path("/runs/{runId}/stop").Methods(http.MethodPost).HandlerFunc(GetHandlerRunStop(log, svc))
	if svc.Metrics != nil {
		r.Path("/metrics").Methods(http.MethodGet).Handler(svc.Metrics)
	}
	return r
}

func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string, svc *DagService) error {
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C).
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt)
	defer signal.Stop(chanOS)
	select {
	case <-chanStopServer:
	case <-chanOS:
	}
	fmt.Println() // new line after ^C.
	log.Info("Shutting down web server...")
	// Cancel active runs, then stop the schedulers which waits for their tasks to exit.
	if stopped := svc.Registry.StopAll(); len(stopped) > 0 {
		log.Info("Stopping runs ", strings.Join(stopped, ", "))
	}
	for _, s := range svc.Schedulers {
		s.Stop()
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()
	return srv.Shutdown(ctx) // waits for open connections until the deadline.
}
