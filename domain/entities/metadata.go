package entities

// ExportInfo describes one exported entry point as the host sees it.
type ExportInfo struct {
	// Name is the symbol the host looks up.
	Name string `json:"name"`

	// Params lists argument kinds in positional order.
	Params []string `json:"params"`

	// Result is the kind of the single returned value.
	Result string `json:"result"`

	// Arity is len(Params).
	Arity int `json:"arity"`
}

// ModuleMetadata describes the export table offered to a host.
type ModuleMetadata struct {
	// Name is the module name the host imports from.
	Name string `json:"name"`

	// ABIVersion is the semantic version of the calling convention.
	ABIVersion string `json:"abi_version"`

	// Exports is sorted by name.
	Exports []ExportInfo `json:"exports"`
}

// Export returns the entry with the given name.
func (m ModuleMetadata) Export(name string) (ExportInfo, bool) {
	for _, e := range m.Exports {
		if e.Name == name {
			return e, true
		}
	}
	return ExportInfo{}, false
}
