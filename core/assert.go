package core

// ContractViolation is the panic value raised when a caller breaks a
// documented precondition. These are programming errors, not runtime
// conditions, so they are never returned as errors.
type ContractViolation struct {
	Op  string // Operation whose precondition failed
	Msg string
}

func (c *ContractViolation) Error() string {
	return c.Op + ": " + c.Msg
}

// Require panics with a ContractViolation if cond is false.
func Require(cond bool, op, msg string) {
	if !cond {
		panic(&ContractViolation{Op: op, Msg: msg})
	}
}
