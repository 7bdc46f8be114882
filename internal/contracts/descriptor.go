package contracts

// ProgramDescriptor is the static description of a program's task, used to
// build the meta-prompt an instruction-candidate generator conditions on.
type ProgramDescriptor struct {
	// Name identifies the program (its signature name, typically).
	Name string
	// TaskDescription is a short natural-language summary of what the
	// program does.
	TaskDescription string
	// InputFields names the fields a caller must supply.
	InputFields []string
	// OutputFields names the fields the program produces.
	OutputFields []string
}

// Describer is implemented by anything that can describe itself for
// instruction-candidate generation — typically a signature.
type Describer interface {
	Describe() ProgramDescriptor
}
