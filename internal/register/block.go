// internal/register/block.go
package register

import "fmt"

// NoIndex marks a read block that does not address a per-module array slot.
const NoIndex = -1

// MaxReadCount is the Modbus limit for one register read.
const MaxReadCount = 125

// ReadBlock describes one register read and where its values land.
type ReadBlock struct {
	FC      FunctionCode
	Address uint16
	Count   uint16

	// Target names the decode routine that consumes the block.
	Target string
	// Index selects the array slot for per-module targets, NoIndex otherwise.
	Index int

	// Alias permits this block to overlap other blocks of the same map.
	Alias bool
}

// Block builds a read block without an array index.
func Block(fc FunctionCode, addr, count uint16, target string) ReadBlock {
	return ReadBlock{FC: fc, Address: addr, Count: count, Target: target, Index: NoIndex}
}

// IndexedBlock builds a read block addressing array slot idx.
func IndexedBlock(fc FunctionCode, addr, count uint16, target string, idx int) ReadBlock {
	return ReadBlock{FC: fc, Address: addr, Count: count, Target: target, Index: idx}
}

// End returns the last address covered by the block (inclusive).
func (b ReadBlock) End() uint32 {
	return uint32(b.Address) + uint32(b.Count) - 1
}

func (b ReadBlock) String() string {
	if b.Index == NoIndex {
		return fmt.Sprintf("fc=0x%02X addr=0x%04X count=%d target=%s", uint8(b.FC), b.Address, b.Count, b.Target)
	}
	return fmt.Sprintf("fc=0x%02X addr=0x%04X count=%d target=%s[%d]", uint8(b.FC), b.Address, b.Count, b.Target, b.Index)
}

func (b ReadBlock) sameGeometry(o ReadBlock) bool {
	return b.FC == o.FC && b.Address == o.Address && b.Count == o.Count &&
		b.Target == o.Target && b.Index == o.Index
}

func (b ReadBlock) overlaps(o ReadBlock) bool {
	if b.FC != o.FC {
		return false
	}
	return !(b.End() < uint32(o.Address) || uint32(b.Address) > o.End())
}

// Sequence is an ordered, named group of read blocks executed as one cycle.
type Sequence struct {
	Name   string
	Blocks []ReadBlock
}
