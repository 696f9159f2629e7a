package logger_test

import (
	"bytes"
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/relloyd/sparkify-dwh/logger"
	log "github.com/sirupsen/logrus"
)

var _ = Describe("Logger", func() {
	var (
		l         *logger.LoggerImpl
		logOutput *bytes.Buffer
	)

	readLine := func() map[string]interface{} {
		var actual map[string]interface{}
		Expect(json.Unmarshal(logOutput.Bytes(), &actual)).To(Succeed())
		return actual
	}

	BeforeEach(func() {
		l = logger.NewLogger("test-service", "debug", false)
		logOutput = bytes.NewBufferString("")
		l.SetOutput(logOutput)
		l.SetFormatter(&log.JSONFormatter{})
	})

	It("Should have `test-service` as service name", func() {
		l.Info("Testing")
		Expect(readLine()["service"]).To(Equal("test-service"))
	})

	It("Should have info as log level", func() {
		l.Info("Testing")
		Expect(readLine()["level"]).To(Equal("info"))
	})

	It("Should have warning as log level", func() {
		l.Warn("Testing")
		Expect(readLine()["level"]).To(Equal("warning"))
	})

	It("Should only add a stack trace to errors when asked", func() {
		l.Error("Testing")
		Expect(readLine()["stackTrace"]).To(BeNil())

		l.PrintStackDump = true
		logOutput.Reset()
		l.Error("Testing")
		actual := readLine()
		Expect(actual["level"]).To(Equal("error"))
		Expect(actual["stackTrace"]).ToNot(BeNil())
	})

	It("Should have `Testing` as msg", func() {
		l.Info("Testing")
		Expect(readLine()["msg"]).To(Equal("Testing"))
	})

	It("Should carry fields added by WithField", func() {
		l.WithField("task", "Stage_events").WithField("try", 2).Info("Testing")
		actual := readLine()
		Expect(actual["task"]).To(Equal("Stage_events"))
		Expect(actual["try"]).To(BeEquivalentTo(2))
		Expect(actual["service"]).To(Equal("test-service"))
	})

	It("Should suppress debug lines at info level", func() {
		quiet := logger.NewLogger("test-service", "info", false)
		quiet.SetOutput(logOutput)
		quiet.Debug("hidden")
		Expect(logOutput.Len()).To(Equal(0))
	})
})
