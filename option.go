package quokkalua

// Option configures a [VM] at construction time (spec §4.9).
type Option func(*vmConfig)

// WithMaxCallDepth caps how many nested Lua calls (script or native) a
// VM will allow before raising ErrStackOverflow. The default is 200,
// matching the reference implementation's LUAI_MAXCCALLS-scale default.
func WithMaxCallDepth(depth int) Option {
	return func(c *vmConfig) {
		c.maxCallDepth = depth
	}
}

// WithMaxRegisters caps the total size the shared register stack may
// grow to across all active frames.
func WithMaxRegisters(n int) Option {
	return func(c *vmConfig) {
		c.maxRegisters = n
	}
}
