// Package id generates identifiers for events and simulation runs.
package id

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

var (
	generatorMutex        sync.Mutex
	generatorInstantiated bool
	generator             IDGenerator
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

// NewSequentialIDGenerator returns a generator whose first emitted ID is "1".
func NewSequentialIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewParallelIDGenerator returns a generator that is safe to share between
// engines. The IDs it generates are not deterministic.
func NewParallelIDGenerator() IDGenerator {
	return parallelIDGenerator{}
}

// UseSequentialIDGenerator configures the process-wide generator to emit
// sequential IDs. It must be called before any ID is generated.
func UseSequentialIDGenerator() {
	use(NewSequentialIDGenerator())
}

// UseParallelIDGenerator configures the process-wide generator to emit xid
// based IDs. It must be called before any ID is generated.
func UseParallelIDGenerator() {
	use(NewParallelIDGenerator())
}

func use(g IDGenerator) {
	generatorMutex.Lock()
	defer generatorMutex.Unlock()

	if generatorInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	generator = g
	generatorInstantiated = true
}

// Generate returns a new ID from the process-wide generator. The sequential
// generator is used if none was configured.
func Generate() string {
	generatorMutex.Lock()
	if !generatorInstantiated {
		generator = NewSequentialIDGenerator()
		generatorInstantiated = true
	}
	g := generator
	generatorMutex.Unlock()

	return g.Generate()
}

type sequentialIDGenerator struct {
	nextID uint64
}

func (g *sequentialIDGenerator) Generate() string {
	idNumber := atomic.AddUint64(&g.nextID, 1)
	id := strconv.FormatUint(idNumber, 10)

	return id
}

type parallelIDGenerator struct {
}

func (g parallelIDGenerator) Generate() string {
	return xid.New().String()
}
