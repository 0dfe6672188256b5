package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// source header scanning
	SynInfo            Code = 2000
	SynMalformedHeader Code = 2001

	// file system
	IOInfo          Code = 4000
	IOInspectFailed Code = 4001
	IOWalkFailed    Code = 4002

	// project layout and module graph
	ProjInfo              Code = 5000
	ProjMissingSourceRoot Code = 5001
	ProjMissingLibrary    Code = 5002
	ProjPackageMismatch   Code = 5003
	ProjImportCycle       Code = 5004
	ProjInvalidModuleName Code = 5005
	ProjLayoutFallback    Code = 5006

	// compiler / runtime invocation
	ExecInfo          Code = 6000
	ExecCompileFailed Code = 6001
	ExecTimeout       Code = 6002
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	SynInfo:               "Source information",
	SynMalformedHeader:    "Malformed package or import declaration",
	IOInfo:                "I/O information",
	IOInspectFailed:       "Failed to read source file",
	IOWalkFailed:          "Failed to walk source root",
	ProjInfo:              "Project information",
	ProjMissingSourceRoot: "Source root does not exist",
	ProjMissingLibrary:    "Library path does not exist",
	ProjPackageMismatch:   "Declared package does not match directory",
	ProjImportCycle:       "Modules compiled together due to a dependency cycle",
	ProjInvalidModuleName: "Module name is not a valid Java name",
	ProjLayoutFallback:    "Project layout fell back to defaults",
	ExecInfo:              "Execution information",
	ExecCompileFailed:     "Compilation batch failed",
	ExecTimeout:           "Process timed out",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("EXE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
