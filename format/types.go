package format

// Form selects which of the two mutually exclusive binary layouts a bytecode
// buffer is expected to be in. The forms carry complementary magic numbers so
// a corrupted header cannot accidentally match the other form.
type Form uint8

const (
	Execution Form = 0x1 // Execution is the default form, laid out for direct execution by a VM.
	Delta     Form = 0x2 // Delta is laid out to minimize binary diffs between builds; not executable.
)

func (f Form) String() string {
	switch f {
	case Execution:
		return "Execution"
	case Delta:
		return "Delta"
	default:
		return "Unknown"
	}
}
