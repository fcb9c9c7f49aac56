package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// Header and configuration shape
	HdrMissing        Code = 1001
	HdrSyntax         Code = 1002
	HdrDuplicateName  Code = 1003
	HdrDuplicateMacro Code = 1004
	HdrMissingPrompt  Code = 1005
	HdrHooksNotList   Code = 1006
	HdrHookMissingDo  Code = 1007
	HdrHookUnknownOn  Code = 1008

	// References between entities
	RefUnknownInterlocutor Code = 2001
	RefUnknownAgent        Code = 2002
	RefUnknownKit          Code = 2003

	// Links
	LnkRelativeFileURL Code = 3001

	// Models
	MdlUnknownModel Code = 4001
)

var codeTitle = map[Code]string{
	UnknownCode:            "Unknown error",
	HdrMissing:             "Missing header",
	HdrSyntax:              "Invalid YAML",
	HdrDuplicateName:       "Duplicate interlocutor name",
	HdrDuplicateMacro:      "Duplicate macro name",
	HdrMissingPrompt:       "Missing prompt",
	HdrHooksNotList:        "Hooks must be a list",
	HdrHookMissingDo:       "Hook without do",
	HdrHookUnknownOn:       "Unknown hook event",
	RefUnknownInterlocutor: "Unknown interlocutor",
	RefUnknownAgent:        "Unknown agent tool target",
	RefUnknownKit:          "Unknown kit",
	LnkRelativeFileURL:     "Relative file URL",
	MdlUnknownModel:        "Unknown model",
}

// ID returns the stable identifier, e.g. "LEC1003".
func (c Code) ID() string {
	if c == UnknownCode {
		return "LEC0000"
	}
	return fmt.Sprintf("LEC%04d", int(c))
}

func (c Code) Title() string {
	if t, ok := codeTitle[c]; ok {
		return t
	}
	return codeTitle[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
