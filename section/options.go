package section

// Masks for the BytecodeOptions byte.
const (
	StaticBuiltinsMask = 0x01 // bit 0: static builtins enabled
)

// BytecodeOptions is the single-byte option set stored in the file header.
// It is kept as a raw byte with named accessors so it can be compared and
// serialized as one value without relying on struct memory layout.
type BytecodeOptions uint8

// HasStaticBuiltins returns whether the file was compiled with static
// builtins enabled.
func (o BytecodeOptions) HasStaticBuiltins() bool {
	return (o & StaticBuiltinsMask) != 0
}

// WithStaticBuiltins enables the static builtins option.
func (o *BytecodeOptions) WithStaticBuiltins() {
	*o |= StaticBuiltinsMask
}

// WithoutStaticBuiltins disables the static builtins option.
func (o *BytecodeOptions) WithoutStaticBuiltins() {
	*o &^= StaticBuiltinsMask
}
