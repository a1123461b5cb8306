// Package loader reads CHIP-8 program images.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrogolib/log"
)

// Errors returned while loading a program.
var (
	ErrFileOpen = errors.New("could not open file")
	ErrFileRead = errors.New("could not read file")
)

// Loader reads program images from disk or a reader.
type Loader struct {
	logger *log.Logger
}

// New creates a new program loader.
func New(logger *log.Logger) *Loader {
	return &Loader{
		logger: logger,
	}
}

// Load reads the program file at path. Data beyond the program space of
// the machine is dropped.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrFileOpen, path, err)
	}
	defer func() { _ = file.Close() }()

	data, err := l.Read(file)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Program loaded", log.String("file", path), log.Int("size", len(data)))
	return data, nil
}

// Read reads a program image from the reader.
func (l *Loader) Read(r io.Reader) ([]byte, error) {
	// one extra byte detects oversized images
	data, err := io.ReadAll(io.LimitReader(r, cpu.MaxProgramSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileRead, err)
	}

	if len(data) > cpu.MaxProgramSize {
		l.logger.Warn("Program exceeds program memory and is truncated",
			log.Int("max_size", cpu.MaxProgramSize))
		data = data[:cpu.MaxProgramSize]
	}
	return data, nil
}
