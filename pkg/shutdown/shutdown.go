package shutdown

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"pairlink/pkg/logger"
)

type crashDump struct {
	Time   string `json:"time"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
	Stack  string `json:"stack"`
}

// Abort handles a fatal startup failure: it logs, writes a crash dump
// under <dbPath>/state/crash and exits. The short delay gives log sinks
// time to flush.
func Abort(contextMsg string, err error, dbPath string, delaySeconds ...int) {
	delay := 2
	if len(delaySeconds) > 0 && delaySeconds[0] >= 0 {
		delay = delaySeconds[0]
	}
	logger.Error("startup_fatal", "msg", contextMsg, "error", err)

	if path, derr := writeCrashDump(dbPath, contextMsg, err); derr != nil {
		fmt.Fprintf(os.Stderr, "FAILED TO WRITE CRASH DUMP: %v\n", derr)
	} else {
		logger.Error("startup_fatal_crashdump", "path", path)
	}

	time.Sleep(time.Duration(delay) * time.Second)
	os.Exit(2)
}

func writeCrashDump(dbPath, reason string, err error) (string, error) {
	dir := filepath.Join(dbPath, "state", "crash")
	if dbPath == "" {
		dir = "crash"
	}
	if merr := os.MkdirAll(dir, 0o700); merr != nil {
		return "", merr
	}
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	dump := crashDump{
		Time:   time.Now().UTC().Format(time.RFC3339),
		Reason: reason,
		Stack:  string(buf[:n]),
	}
	if err != nil {
		dump.Error = err.Error()
	}
	b, merr := json.MarshalIndent(dump, "", "  ")
	if merr != nil {
		return "", merr
	}
	fname := filepath.Join(dir, "crash-"+time.Now().UTC().Format("20060102T150405Z")+".json")
	if werr := os.WriteFile(fname, b, 0o600); werr != nil {
		return "", werr
	}
	return fname, nil
}
