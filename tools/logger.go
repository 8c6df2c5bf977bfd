package tools

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang/glog"
)

var isEnabled = true
var printTimestamp = true

func EnableLogger() {
	isEnabled = true
}

func DisableLogger() {
	isEnabled = false
}

func EnableLoggerTimestamp() {
	printTimestamp = true
}

func DisableLoggerTimestamp() {
	printTimestamp = false
}

// Prints a user facing message on the console and mirrors it in the glog
// info log
func LogOutput(val ...interface{}) {
	msg := strings.TrimSuffix(fmt.Sprintln(val...), "\n")
	glog.InfoDepth(1, msg)
	if !isEnabled {
		return
	}
	if printTimestamp {
		msg = "[" + time.Now().Format("2006-01-02 15:04:05.000") + "] " + msg
	}
	log.Println(msg)
}
