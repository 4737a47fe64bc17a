package storage

import (
	"os"
	"testing"

	"github.com/annel0/resinfarm/internal/logging"
)

// Файловые логи компонентов пишутся во временный каталог
func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "resinfarm-logs-")
	if err != nil {
		panic(err)
	}
	logging.LogsDir = dir

	code := m.Run()

	logging.GetLoggerManager().CloseAll()
	os.RemoveAll(dir)
	os.Exit(code)
}
