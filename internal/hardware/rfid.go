package hardware

import (
	"bufio"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lazypower/sensorgraph/internal/presence"
)

// ErrInvalidTag is reported for reader output that is not a hex UID.
var ErrInvalidTag = errors.New("invalid tag id")

// NormalizeTagID lower-cases a UID and strips the separators readers like to
// print between bytes, so "04:A3:B2:C1" and "04a3b2c1" name the same tag.
func NormalizeTagID(raw string) (string, error) {
	id := strings.Map(func(r rune) rune {
		switch r {
		case ':', '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(raw)))

	if id == "" || len(id)%2 != 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, raw)
	}
	if _, err := hex.DecodeString(id); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTag, raw)
	}
	return id, nil
}

// LineReader turns a stream of tag UIDs, one per line, into arrivals. It fits
// serial and keyboard-wedge readers that print each UID they see.
type LineReader struct {
	src      io.Reader
	now      func() time.Time
	arrivals chan presence.Arrival
	errs     chan error
	done     chan struct{}
	once     sync.Once
}

// OpenTagDevice starts a LineReader on a character device or FIFO.
func OpenTagDevice(path string) (*LineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rfid device: %w", err)
	}
	return NewLineReader(f), nil
}

// NewLineReader starts reading src in the background.
func NewLineReader(src io.Reader) *LineReader {
	lr := &LineReader{
		src:      src,
		now:      time.Now,
		arrivals: make(chan presence.Arrival, 64),
		errs:     make(chan error, 8),
		done:     make(chan struct{}),
	}
	go lr.loop()
	return lr
}

func (lr *LineReader) Arrivals() <-chan presence.Arrival { return lr.arrivals }
func (lr *LineReader) Errors() <-chan error              { return lr.errs }

// Close stops the reader and closes the underlying device if it has one.
func (lr *LineReader) Close() error {
	var err error
	lr.once.Do(func() {
		close(lr.done)
		if c, ok := lr.src.(io.Closer); ok {
			err = c.Close()
		}
	})
	return err
}

func (lr *LineReader) loop() {
	defer close(lr.arrivals)
	defer close(lr.errs)

	sc := bufio.NewScanner(lr.src)
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		id, err := NormalizeTagID(line)
		if err != nil {
			if !lr.sendErr(err) {
				return
			}
			continue
		}
		select {
		case lr.arrivals <- presence.Arrival{ID: id, At: lr.now()}:
		case <-lr.done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		lr.sendErr(fmt.Errorf("rfid read: %w", err))
	}
}

func (lr *LineReader) sendErr(err error) bool {
	select {
	case lr.errs <- err:
		return true
	case <-lr.done:
		return false
	}
}
