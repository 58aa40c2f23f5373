package service

import (
	"fmt"
	"os"

	"github.com/edsrzf/mmap-go"
)

// readOutput maps the program's output file and copies it into a string.
// A missing file reads as empty output.
func readOutput(path string) (string, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0666)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("open output file failed: %w", err)
	}
	defer file.Close()

	fi, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("stat output file failed: %w", err)
	}
	// 空文件无法 mmap
	if fi.Size() == 0 {
		return "", nil
	}

	m, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		return "", fmt.Errorf("mmap output file failed: %w", err)
	}
	defer m.Unmap()
	return string(m), nil
}
