package buffer

import (
	"os"
	"sync"
	"syscall"
)

// mappedSource is a whole file mapped read-only. Region workers share the one
// mapping; it goes away on Release.
type mappedSource struct {
	data []byte
	once sync.Once
}

func mapFile(f *os.File, size int) (*mappedSource, error) {
	data, err := syscall.Mmap(int(f.Fd()), 0, size, syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &mappedSource{data: data}, nil
}

func (m *mappedSource) Data() []byte {
	return m.data
}

func (m *mappedSource) Len() int {
	return len(m.data)
}

func (m *mappedSource) Release() {
	m.once.Do(func() {
		_ = syscall.Munmap(m.data)
		m.data = nil
	})
}
