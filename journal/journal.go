package journal

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

var ErrClosed = errors.New("journal is closed")

// Journal is an append-only log of commands, one JSON document per line.
type Journal struct {
	filename string
	file     *os.File
	writer   *bufio.Writer
	mu       sync.Mutex
}

func Open(filename string) (*Journal, error) {
	j := &Journal{
		filename: filename,
	}
	err := j.open()
	if err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Journal) open() error {
	f, err := os.OpenFile(j.filename, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil {
		return fmt.Errorf("open journal for write: %w", err)
	}
	j.file = f
	j.writer = bufio.NewWriterSize(f, 64*1024)
	return nil
}

func (j *Journal) Filename() string {
	return j.filename
}

// Append writes command to the buffer. Uuid and Timestamp are filled when
// empty. Data reaches the OS on Flush and the disk on Sync.
func (j *Journal) Append(command *Command) error {

	stamp(command)

	data, err := encode(command)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return ErrClosed
	}

	_, err = j.writer.Write(data)
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}

	return nil
}

func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return ErrClosed
	}
	return j.writer.Flush()
}

// Sync flushes the buffer and fsyncs the file.
func (j *Journal) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return ErrClosed
	}
	if err := j.writer.Flush(); err != nil {
		return err
	}
	return j.file.Sync()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return nil
	}

	if err := j.writer.Flush(); err != nil {
		return err
	}
	if err := j.file.Sync(); err != nil {
		return err
	}
	err := j.file.Close()
	j.file = nil
	return err
}

// Rewrite replaces the whole journal with commands. The file is swapped
// atomically, a crash leaves either the old or the new journal.
func (j *Journal) Rewrite(commands []*Command) error {

	buf := &bytes.Buffer{}
	for _, command := range commands {
		stamp(command)
		data, err := encode(command)
		if err != nil {
			return err
		}
		buf.Write(data)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if j.file == nil {
		return ErrClosed
	}

	err := atomic.WriteFile(j.filename, buf)
	if err != nil {
		return fmt.Errorf("rewrite journal: %w", err)
	}

	// the old writer is dropped unflushed: its commands are superseded
	err = j.file.Close()
	if err != nil {
		fmt.Printf("WARNING: close replaced journal '%s': %s\n", j.filename, err.Error())
	}
	return j.open()
}

// Replay decodes the journal from the beginning and calls f for every
// command. A missing file is an empty journal. Decoding stops at the first
// malformed command.
func Replay(filename string, f func(command *Command) error) error {

	file, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open journal for read: %w", err)
	}
	defer file.Close()

	decoder := jsontext.NewDecoder(bufio.NewReaderSize(file, 1024*1024))
	for n := 1; ; n++ {
		command := &Command{}
		err := json.UnmarshalDecode(decoder, command)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode command %d at byte %d: %w", n, decoder.InputOffset(), err)
		}

		err = f(command)
		if err != nil {
			return fmt.Errorf("apply command %d '%s': %w", n, command.Name, err)
		}
	}
}

// StartFlusher syncs the journal every interval until stop is called.
func StartFlusher(j *Journal, interval time.Duration) (stop func()) {

	stopChan := make(chan struct{})
	done := make(chan struct{})

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				err := j.Sync()
				if err == ErrClosed {
					return
				}
				if err != nil {
					fmt.Printf("ERROR: sync journal '%s': %s\n", j.filename, err.Error())
				}
			case <-stopChan:
				return
			}
		}
	}()

	once := &sync.Once{}
	return func() {
		once.Do(func() {
			close(stopChan)
		})
		<-done
	}
}

func stamp(command *Command) {
	if command.Uuid == "" {
		command.Uuid = uuid.New().String()
	}
	if command.Timestamp == 0 {
		command.Timestamp = time.Now().UnixNano()
	}
}

func encode(command *Command) ([]byte, error) {
	data, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("json encode command: %w", err)
	}
	return append(data, '\n'), nil
}
