// Package id generates identifiers for events, tasks and simulation runs.
package id

import (
	"log"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
)

// IDGenerator can generate IDs.
type IDGenerator interface {
	// Generate an ID
	Generate() string
}

var (
	generatorMutex        sync.Mutex
	generatorInstantiated bool
	generator             IDGenerator
)

// NewIDGenerator returns a generator that produces sequential IDs.
func NewIDGenerator() IDGenerator {
	return &sequentialIDGenerator{}
}

// NewParallelIDGenerator returns a generator that produces globally unique IDs.
// The IDs are not deterministic.
func NewParallelIDGenerator() IDGenerator {
	return parallelIDGenerator{}
}

// UseSequentialIDGenerator configures the package-level generator to produce
// sequential IDs.
func UseSequentialIDGenerator() {
	setGenerator(&sequentialIDGenerator{})
}

// UseParallelIDGenerator configures the package-level generator to produce
// xid-based IDs.
func UseParallelIDGenerator() {
	setGenerator(parallelIDGenerator{})
}

func setGenerator(g IDGenerator) {
	generatorMutex.Lock()
	defer generatorMutex.Unlock()

	if generatorInstantiated {
		log.Panic("cannot change id generator type after using it")
	}

	generator = g
	generatorInstantiated = true
}

// Generate returns an ID from the package-level generator. The sequential
// generator is used unless another one was selected before the first call.
func Generate() string {
	generatorMutex.Lock()
	if !generatorInstantiated {
		generator = &sequentialIDGenerator{}
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
