// Package textio collects small reader, writer, and scanner helpers shared by
// the docfence commands.
package textio

import (
	"io"
	"os"
	"path/filepath"
)

// Scanner abstracts over tokenizing scanners, like bufio.Scanner.
type Scanner interface {
	Scan() bool
	Bytes() []byte
}

// ErrScanner is a Scanner that may stop on a read or split error.
type ErrScanner interface {
	Scanner
	Err() error
}

// ScanError returns any scan error retained by sc, see ErrScanner.
func ScanError(sc Scanner) (err error) {
	if esc, ok := sc.(ErrScanner); ok {
		err = esc.Err()
	}
	return err
}

// CopyScanner writes every token scanned from src into dst.
// Stops on the first write error; otherwise returns any scan error.
func CopyScanner(dst io.Writer, src Scanner) (n int64, err error) {
	for err == nil && src.Scan() {
		var m int
		m, err = dst.Write(src.Bytes())
		n += int64(m)
	}
	if err == nil {
		err = ScanError(src)
	}
	return n, err
}

// FindUp looks for a named file in dir and then in every parent of dir,
// returning the absolute path of the first one found, or "" if there is none.
func FindUp(dir, name string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
