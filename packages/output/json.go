package output

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
)

// JSONEntry is one line written by JSONLogger.
type JSONEntry struct {
	Time   string       `json:"time"`
	Tag    string       `json:"tag"`
	Record rhttp.Fields `json:"record"`
}

// JSONLogger writes every record as a JSON line.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	now    func() time.Time
}

type JSONOption func(*JSONLogger)

func WithJSONWriter(w io.Writer) JSONOption {
	return func(l *JSONLogger) {
		l.writer = w
	}
}

func NewJSONLogger(opts ...JSONOption) *JSONLogger {
	l := &JSONLogger{
		writer: os.Stderr,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *JSONLogger) Log(tag string, record rhttp.Fields) {
	entry := JSONEntry{
		Time:   l.now().UTC().Format(time.RFC3339Nano),
		Tag:    tag,
		Record: record,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		data, _ = json.Marshal(JSONEntry{Time: entry.Time, Tag: tag, Record: rhttp.NewFields("error", err.Error())})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.writer.Write(append(data, '\n'))
}
