package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Builder assembles a zerolog logger writing to a writer or an append-only file.
type Builder struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

type Log struct {
	zerolog.Logger
	file *os.File
}

func New() *Builder {
	return &Builder{writer: os.Stderr, level: zerolog.InfoLevel}
}

func (b *Builder) FromWriter(w io.Writer) *Builder {
	if w != nil {
		b.writer = w
	}
	return b
}

func (b *Builder) FromPath(path string) *Builder {
	b.path = strings.TrimSpace(path)
	return b
}

// Level sets the minimum level by name; unknown names keep the current level.
func (b *Builder) Level(name string) *Builder {
	name = strings.TrimSpace(name)
	if name == "" {
		return b
	}
	if lvl, err := zerolog.ParseLevel(strings.ToLower(name)); err == nil {
		b.level = lvl
	}
	return b
}

func (b *Builder) Make() (*Log, error) {
	l := &Log{}
	w := b.writer
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		l.file = f
		w = zerolog.SyncWriter(f)
	}
	l.Logger = zerolog.New(w).Level(b.level).With().Timestamp().Logger()
	return l, nil
}

func (l *Log) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
