package corefile

// Plugin identity, unchanged from the host debugger's plugin manifest.
const (
	PluginName        = "mach-o-core"
	PluginDescription = "Mach-O core file debugging plug-in."
	PluginVersion     = 1
)

// LoaderPluginName values. These are consumed as opaque strings by the host
// debugger's dynamic-loader plugin dispatch; this backend never loads the
// plugins itself.
const (
	LoaderPluginDyld         = "dyld-macosx"
	LoaderPluginDarwinKernel = "darwin-kernel"
)

// KernelSearchFunc is the callback a darwin-kernel dynamic-loader plugin
// supplies: given the session, search it (by whatever means that plugin
// knows, not 0x1000-stride scanning) for the kernel's Mach-O header, or
// return InvalidAddr.
type KernelSearchFunc func(s *Session) uint64

// LoaderPlugin bundles a plugin's identity and (for the kernel variant) its
// refinement callback. This backend's Loader consumes exactly one of these
// without ever constructing or registering it.
type LoaderPlugin struct {
	Name         string
	SearchKernel KernelSearchFunc
}

// DyldPlugin identifies the user-space dynamic linker loader. It has no
// kernel-search behavior.
var DyldPlugin = LoaderPlugin{Name: LoaderPluginDyld}

// NewDarwinKernelPlugin builds a darwin-kernel LoaderPlugin around the given
// search callback. A nil callback means "no refinement available" — the
// loader then keeps whatever the 0x1000-stride sweep found.
func NewDarwinKernelPlugin(search KernelSearchFunc) LoaderPlugin {
	return LoaderPlugin{Name: LoaderPluginDarwinKernel, SearchKernel: search}
}
