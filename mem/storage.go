// Package mem provides the backing storage of memory models.
package mem

import (
	"encoding/binary"
	"sync"

	"github.com/pkg/errors"
)

// ErrOutOfCapacity is returned when an access falls outside a storage.
var ErrOutOfCapacity = errors.New("mem: access beyond the storage capacity")

// Units of storage capacity.
const (
	_         = iota
	KB uint64 = 1 << (10 * iota)
	MB
	GB
)

// A Storage keeps the content of a memory.
//
// The storage is managed in units, similar to pages. No memory is allocated
// for units that were never touched by Read or Write. Untouched bytes read as
// zero.
type Storage struct {
	sync.Mutex

	unitSize uint64
	capacity uint64
	data     map[uint64][]byte
}

// NewStorage creates a storage object with the specified capacity in bytes.
func NewStorage(capacity uint64) *Storage {
	return NewStorageWithUnitSize(capacity, 4*KB)
}

// NewStorageWithUnitSize creates a storage that allocates memory in units of
// the given size.
func NewStorageWithUnitSize(capacity, unitSize uint64) *Storage {
	if unitSize == 0 {
		panic("unit size cannot be 0")
	}

	return &Storage{
		unitSize: unitSize,
		capacity: capacity,
		data:     make(map[uint64][]byte),
	}
}

// Capacity returns the size of the storage in bytes.
func (s *Storage) Capacity() uint64 {
	return s.capacity
}

func (s *Storage) checkRange(address, length uint64) error {
	if address >= s.capacity || length > s.capacity-address {
		return errors.Wrapf(ErrOutOfCapacity,
			"access [%d, %d) with capacity %d",
			address, address+length, s.capacity)
	}

	return nil
}

func (s *Storage) unit(address uint64) []byte {
	baseAddr, _ := s.parseAddress(address)

	unit, ok := s.data[baseAddr]
	if !ok {
		unit = make([]byte, s.unitSize)
		s.data[baseAddr] = unit
	}

	return unit
}

func (s *Storage) parseAddress(addr uint64) (baseAddr, inUnitAddr uint64) {
	inUnitAddr = addr % s.unitSize
	baseAddr = addr - inUnitAddr

	return
}

// Read returns a copy of length bytes starting at address.
func (s *Storage) Read(address, length uint64) ([]byte, error) {
	s.Lock()
	defer s.Unlock()

	if err := s.checkRange(address, length); err != nil {
		return nil, err
	}

	res := make([]byte, length)
	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		unit := s.unit(currAddr)
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToRead := min(length-dataOffset, baseAddr+s.unitSize-currAddr)

		copy(res[dataOffset:dataOffset+lenToRead],
			unit[inUnitAddr:inUnitAddr+lenToRead])

		dataOffset += lenToRead
		currAddr += lenToRead
	}

	return res, nil
}

// Write copies data into the storage starting at address.
func (s *Storage) Write(address uint64, data []byte) error {
	s.Lock()
	defer s.Unlock()

	length := uint64(len(data))
	if err := s.checkRange(address, length); err != nil {
		return err
	}

	currAddr := address
	dataOffset := uint64(0)

	for dataOffset < length {
		unit := s.unit(currAddr)
		baseAddr, inUnitAddr := s.parseAddress(currAddr)
		lenToWrite := min(length-dataOffset, baseAddr+s.unitSize-currAddr)

		copy(unit[inUnitAddr:inUnitAddr+lenToWrite],
			data[dataOffset:dataOffset+lenToWrite])

		dataOffset += lenToWrite
		currAddr += lenToWrite
	}

	return nil
}

// ReadWord reads the little-endian word at the given word index.
func (s *Storage) ReadWord(index uint64, bytesPerWord int) (uint64, error) {
	mustBeValidWordSize(bytesPerWord)

	raw, err := s.Read(index*uint64(bytesPerWord), uint64(bytesPerWord))
	if err != nil {
		return 0, err
	}

	buf := make([]byte, 8)
	copy(buf, raw)

	return binary.LittleEndian.Uint64(buf), nil
}

// WriteWord writes a little-endian word at the given word index. Bits that do
// not fit the word are dropped.
func (s *Storage) WriteWord(index uint64, bytesPerWord int, v uint64) error {
	mustBeValidWordSize(bytesPerWord)

	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)

	return s.Write(index*uint64(bytesPerWord), buf[:bytesPerWord])
}

// NumAllocatedUnits returns how many units have been touched.
func (s *Storage) NumAllocatedUnits() int {
	s.Lock()
	defer s.Unlock()

	return len(s.data)
}

func mustBeValidWordSize(bytesPerWord int) {
	if bytesPerWord < 1 || bytesPerWord > 8 {
		panic("word size must be between 1 and 8 bytes")
	}
}

// BytesPerWord returns the number of bytes needed to hold a word of the
// given number of bits.
func BytesPerWord(bits int) int {
	return (bits + 7) / 8
}
