package actions

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/sparkify-dwh/dag"
	"github.com/relloyd/sparkify-dwh/logger"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		return nil, fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseDagList struct {
	Status WebServerResponse `json:"status"`
	Dags   []DagListItem     `json:"dags"`
}

type DagListItem struct {
	Description dag.Description `json:"dag"`
	Paused      bool            `json:"paused"`
	NextRun     time.Time       `json:"nextRun"`
}

type ResponseDagTrigger struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	DagId   string            `json:"dagId"`
	RunId   string            `json:"runId,omitempty"`
}

// TriggerRequest is the optional body of POST /dags/{dagId}/trigger.
type TriggerRequest struct {
	LogicalDate string `json:"logicalDate"`
}

type ResponseRunList struct {
	Status WebServerResponse `json:"status"`
	Runs   []RunListItem     `json:"runs"`
}

type RunListItem struct {
	RunId       string    `json:"runId"`
	DagId       string    `json:"dagId"`
	LogicalDate time.Time `json:"logicalDate"`
	State       dag.State `json:"state"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime,omitempty"`
}

type ResponseRunStatus struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	Run     *dag.RunResult    `json:"run,omitempty"`
}

type ResponseRunStop struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunId   string            `json:"runId"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case chanStop <- "stop":
			log.Info("Stop signal sent")
		default: // a stop is already pending.
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerDagList(log logger.Logger, svc *DagService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		items := make([]DagListItem, 0, len(svc.Schedulers))
		for _, s := range svc.Schedulers {
			items = append(items, DagListItem{
				Description: s.Dag().Describe(),
				Paused:      s.Paused(),
				NextRun:     s.Next(svc.now()).UTC(),
			})
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseDagList{Status: Okay, Dags: items})
	}
}

func GetHandlerDagTrigger(log logger.Logger, svc *DagService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["dagId"]
		s, ok := svc.Schedulers[id]
		if !ok {
			log.Info("HTTP request to trigger DAG ", id, " that doesn't exist.")
			w.WriteHeader(http.StatusNotFound)
			respond(log, w, ResponseDagTrigger{Status: Error, Message: "dag does not exist", DagId: id})
			return
		}
		req := TriggerRequest{}
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			logAndRespond(log, err, w, http.StatusBadRequest,
				ResponseDagTrigger{Status: Error, Message: fmt.Sprintf("error reading request body: %v", err), DagId: id})
			return
		}
		if len(b) > 0 {
			if err := json.Unmarshal(b, &req); err != nil {
				logAndRespond(log, err, w, http.StatusBadRequest,
					ResponseDagTrigger{Status: Error, Message: fmt.Sprintf("error unmarshalling JSON: %v", err), DagId: id})
				return
			}
		}
		logicalDate, err := parseLogicalDate(req.LogicalDate, svc.now())
		if err != nil {
			logAndRespond(log, err, w, http.StatusBadRequest, ResponseDagTrigger{Status: Error, Message: err.Error(), DagId: id})
			return
		}
		runID, err := s.Trigger(logicalDate, dag.RunTypeManual)
		if err != nil {
			code := http.StatusServiceUnavailable
			if errors.Is(err, dag.ErrRunActive) {
				code = http.StatusConflict
			}
			logAndRespond(log, err, w, code, ResponseDagTrigger{Status: Error, Message: err.Error(), DagId: id})
			return
		}
		log.Info("Triggered run ", runID)
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseDagTrigger{Status: Okay, Message: "run triggered", DagId: id, RunId: runID})
	}
}

func GetHandlerRunList(log logger.Logger, svc *DagService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		runs := svc.Registry.List()
		items := make([]RunListItem, 0, len(runs))
		for _, run := range runs {
			items = append(items, RunListItem{
				RunId:       run.RunID,
				DagId:       run.DagID,
				LogicalDate: run.LogicalDate,
				State:       run.State,
				StartTime:   run.StartTime,
				EndTime:     run.EndTime,
			})
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunList{Status: Okay, Runs: items})
	}
}

func GetHandlerRunStatus(log logger.Logger, svc *DagService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		run, ok := svc.Registry.Load(id)
		if !ok {
			log.Info("HTTP request for status of run ", id, " that doesn't exist.")
			w.WriteHeader(http.StatusNotFound)
			respond(log, w, ResponseRunStatus{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
			return
		}
		w.WriteHeader(http.StatusOK)
		respond(log, w, ResponseRunStatus{Status: Okay, Run: run})
	}
}

func GetHandlerRunStop(log logger.Logger, svc *DagService) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		err := svc.Registry.Stop(id)
		switch {
		case errors.Is(err, dag.ErrRunNotFound):
			log.Info("HTTP request to stop run ", id, " that doesn't exist.")
			w.WriteHeader(http.StatusNotFound)
			respond(log, w, ResponseRunStop{Status: Error, Message: "run does not exist", RunId: id})
		case err != nil:
			log.Info("HTTP request to stop run ", id, ": ", err)
			w.WriteHeader(http.StatusConflict)
			respond(log, w, ResponseRunStop{Status: Error, Message: err.Error(), RunId: id})
		default:
			log.Info("Stopping run ", id)
			w.WriteHeader(http.StatusOK)
			respond(log, w, ResponseRunStop{Status: Okay, Message: "shutting down", RunId: id})
		}
	}
}

// logAndRespond will log the error, write the status code and r to w.
func logAndRespond(log logger.Logger, err error, w http.ResponseWriter, code int, r interface{}) {
	log.Error(err)
	w.WriteHeader(code)
	respond(log, w, r)
}

// respond will marshal i to a string and write it to w.
func respond(log logger.Logger, w http.ResponseWriter, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error(err)
		return
	}
	if _, err = fmt.Fprint(w, string(j)); err != nil {
		log.Error(err)
	}
}
