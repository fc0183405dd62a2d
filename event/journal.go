package event

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"heyo-service/config"

	"github.com/google/uuid"
)

const (
	RabbitMQInLogFile  string = "log/in.log"
	RabbitMQOutLogFile string = "log/out.log"
)

type EventLogData struct {
	ID      string `json:"id"`
	Time    int64  `json:"time"`
	Service string `json:"service"`
	Action  string `json:"action"`
	Data    string `json:"data"`
}

var (
	journalMu  sync.Mutex
	InLogFile  *os.File
	OutLogFile *os.File
)

// InitJournal opens the event journal when EVENT_MODE is LOG.
func InitJournal() {
	if config.Config("EVENT_MODE") != "LOG" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(RabbitMQInLogFile), 0o755); err != nil {
		panic(err)
	}

	var err error
	InLogFile, err = os.OpenFile(RabbitMQInLogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
	OutLogFile, err = os.OpenFile(RabbitMQOutLogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0600)
	if err != nil {
		panic(err)
	}
}

func InLog(service string, action string, data []byte) {
	writeJournal(&InLogFile, service, action, data)
}

func OutLog(service string, action string, data []byte) {
	writeJournal(&OutLogFile, service, action, data)
}

// writeJournal dereferences target under journalMu so CloseJournal can run
// concurrently.
func writeJournal(target **os.File, service string, action string, data []byte) {
	journalMu.Lock()
	defer journalMu.Unlock()

	file := *target
	if file == nil {
		return
	}

	line, _ := json.Marshal(EventLogData{
		ID:      uuid.NewString(),
		Time:    time.Now().UnixMicro(),
		Service: service,
		Action:  action,
		Data:    string(data),
	})
	if _, err := file.Write(append(line, '\n')); err != nil {
		log.Printf("[event] journal write failed: %v", err)
	}
}

func CloseJournal() {
	journalMu.Lock()
	defer journalMu.Unlock()

	if InLogFile != nil {
		InLogFile.Close()
		InLogFile = nil
	}
	if OutLogFile != nil {
		OutLogFile.Close()
		OutLogFile = nil
	}
}
