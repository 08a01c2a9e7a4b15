// Package report records per-device outcomes: a JSON-lines run log on disk
// and a human summary on the console.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/confpush/confpush/pkg/cli"
)

// Logger is the run log sink.
type Logger interface {
	Log(event *Event) error
	Close() error
}

// FileLogger appends events to a JSON-lines file, rotating by size.
type FileLogger struct {
	path     string
	file     *os.File
	encoder  *json.Encoder
	mu       sync.Mutex
	rotation RotationConfig
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    int64 // max file size in bytes before rotation, 0 disables
	MaxBackups int   // max number of rotated files to retain, 0 keeps all
}

// NewFileLogger opens (or creates) the run log at path.
func NewFileLogger(path string, rotation RotationConfig) (*FileLogger, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run log directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}

	return &FileLogger{
		path:     path,
		file:     file,
		encoder:  json.NewEncoder(file),
		rotation: rotation,
	}, nil
}

// Log appends an event, rotating first if the file has outgrown MaxSize.
func (l *FileLogger) Log(event *Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.rotation.MaxSize > 0 {
		if info, err := l.file.Stat(); err == nil && info.Size() >= l.rotation.MaxSize {
			if err := l.rotate(); err != nil {
				return fmt.Errorf("rotating run log: %w", err)
			}
		}
	}

	return l.encoder.Encode(event)
}

// Close closes the log file.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *FileLogger) rotate() error {
	if err := l.file.Close(); err != nil {
		return err
	}

	timestamp := time.Now().Format("20060102-150405")
	if err := os.Rename(l.path, l.path+"."+timestamp); err != nil {
		return err
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	l.file = file
	l.encoder = json.NewEncoder(file)

	if l.rotation.MaxBackups > 0 {
		l.cleanupOldFiles()
	}
	return nil
}

func (l *FileLogger) cleanupOldFiles() {
	matches, err := filepath.Glob(l.path + ".*")
	if err != nil {
		return
	}

	type fileInfo struct {
		path    string
		modTime time.Time
	}
	var files []fileInfo
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		files = append(files, fileInfo{path, info.ModTime()})
	}

	if len(files) > l.rotation.MaxBackups {
		sort.Slice(files, func(i, j int) bool {
			return files[i].modTime.Before(files[j].modTime)
		})
		for i := 0; i < len(files)-l.rotation.MaxBackups; i++ {
			os.Remove(files[i].path)
		}
	}
}

// Discard is a Logger that drops all events. Used for dry runs.
type Discard struct{}

func (Discard) Log(*Event) error { return nil }
func (Discard) Close() error     { return nil }

// WriteSummary prints the per-device outcome table and a final count line.
func WriteSummary(w io.Writer, events []*Event) {
	width := 0
	for _, ev := range events {
		if len(ev.Device) > width {
			width = len(ev.Device)
		}
	}
	width += 12

	passed, failed := 0, 0
	for _, ev := range events {
		if ev.Success {
			passed++
			saved := ""
			if ev.Saved {
				saved = " (saved)"
			}
			fmt.Fprintf(w, "  %s %s%s\n", cli.DotPad(ev.Device, width), cli.Green("PASS"), saved)
		} else {
			failed++
			fmt.Fprintf(w, "  %s %s %s\n", cli.DotPad(ev.Device, width), cli.Red("FAIL"), ev.Error)
		}
	}

	line := fmt.Sprintf("Run complete: %d succeeded, %d failed.", passed, failed)
	if failed > 0 {
		fmt.Fprintln(w, cli.Yellow(line))
	} else {
		fmt.Fprintln(w, cli.Green(line))
	}
}
