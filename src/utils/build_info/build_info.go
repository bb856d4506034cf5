package build_info

// Set by the linker upon release
var (
	Version   = "dev"
	BuildDate = "unknown"
)
